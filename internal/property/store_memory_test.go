package property

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *MemoryStore {
	s := NewMemoryStore()
	s.Seed(
		Record{TitleNumber: "DN100001", Address: "1 High Street", CompanyName: "Smith Properties Ltd", CompanyNumber: "12345678"},
		Record{TitleNumber: "DN100002", Address: "2 High Street", CompanyName: "Smith Properties Ltd", CompanyNumber: "12345678"},
		Record{TitleNumber: "DN200001", Address: "9 Low Road", CompanyName: "Jones Holdings Ltd", CompanyNumber: "87654321"},
		Record{TitleNumber: "DN300001", Address: "4 Mill Lane", CompanyName: "Unrelated Ventures Plc"},
	)
	return s
}

func TestMemoryStoreFindByCompanyNumber(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	t.Run("matches ordered by title number", func(t *testing.T) {
		refs, err := s.FindByCompanyNumber(ctx, "12345678")
		require.NoError(t, err)
		assert.Equal(t, []Ref{
			{TitleNumber: "DN100001", Address: "1 High Street"},
			{TitleNumber: "DN100002", Address: "2 High Street"},
		}, refs)
	})

	t.Run("no match is an empty slice", func(t *testing.T) {
		refs, err := s.FindByCompanyNumber(ctx, "00000000")
		require.NoError(t, err)
		assert.Empty(t, refs)
		assert.NotNil(t, refs)
	})

	t.Run("rows without a number never match the empty string", func(t *testing.T) {
		refs, err := s.FindByCompanyNumber(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, refs)
	})
}

func TestMemoryStoreFindByNameSimilarity(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	t.Run("exact name ranks first", func(t *testing.T) {
		refs, err := s.FindByNameSimilarity(ctx, "Smith Properties Ltd")
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "DN100001", refs[0].TitleNumber)
	})

	t.Run("case insensitive", func(t *testing.T) {
		refs, err := s.FindByNameSimilarity(ctx, "SMITH PROPERTIES LTD")
		require.NoError(t, err)
		assert.Len(t, refs, 2)
	})

	t.Run("dissimilar names fall below the floor", func(t *testing.T) {
		refs, err := s.FindByNameSimilarity(ctx, "Completely Different Name")
		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("result cap", func(t *testing.T) {
		big := NewMemoryStore()
		for i := 0; i < FuzzyResultCap+20; i++ {
			big.Seed(Record{
				TitleNumber: "T" + string(rune('A'+i%26)) + string(rune('A'+(i/26)%26)) + string(rune('0'+i%10)),
				CompanyName: "Capped Estates Ltd",
			})
		}
		refs, err := big.FindByNameSimilarity(ctx, "Capped Estates Ltd")
		require.NoError(t, err)
		assert.Len(t, refs, FuzzyResultCap)
	})
}

func TestMemoryStoreBulk(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	require.NoError(t, s.Truncate(ctx))
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.UpsertBatch(ctx, []Record{
		{TitleNumber: "DN400001", CompanyName: "Fresh Ltd", Address: "old address"},
	}))
	require.NoError(t, s.UpsertBatch(ctx, []Record{
		{TitleNumber: "DN400001", CompanyName: "Fresh Ltd", Address: "new address"},
	}))
	assert.Equal(t, 1, s.Len())

	refs, err := s.FindByNameSimilarity(ctx, "Fresh Ltd")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "new address", refs[0].Address)
}

func TestTrigramSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, trigramSimilarity("Smith Ltd", "smith ltd"))
	assert.Greater(t, trigramSimilarity("Smith Properties Ltd", "Smith Properties Ltd."), SimilarityFloor)
	assert.Less(t, trigramSimilarity("Smith Ltd", "Jones Plc"), SimilarityFloor)
	assert.Zero(t, trigramSimilarity("", "Smith Ltd"))
}
