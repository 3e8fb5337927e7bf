package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFromPath(t *testing.T) {
	f := FilterFromPath("motorola-solutions", "apx-series", "apx-portable-radios")
	assert.Equal(t, CategoryID("apx-portable-radios"), f.SubSubCategory)
	assert.Empty(t, f.SubSubSubCategory)
	assert.Equal(t, 3, f.Depth())
	assert.Equal(t, []CategoryID{"motorola-solutions", "apx-series", "apx-portable-radios"}, f.Path())
	assert.True(t, f.Valid())
	assert.False(t, f.IsZero())

	assert.True(t, Filter{}.IsZero())
	assert.True(t, Filter{}.Valid())
	assert.Empty(t, Filter{}.Path())
}

func TestFilterValidRejectsGaps(t *testing.T) {
	assert.False(t, Filter{Category: "a", SubSubCategory: "c"}.Valid())
	assert.False(t, Filter{SubCategory: "b"}.Valid())
	assert.False(t, Filter{Category: "a", SubCategory: "b", SubSubSubCategory: "d"}.Valid())
}

func TestMainImage(t *testing.T) {
	p := Product{}
	_, ok := p.MainImage()
	assert.False(t, ok)

	p.Images = []Image{{AssetRef: "first"}, {AssetRef: "main", IsMainImage: true}, {AssetRef: "other", IsMainImage: true}}
	img, ok := p.MainImage()
	require.True(t, ok)
	assert.Equal(t, "main", img.AssetRef)

	p.Images = []Image{{AssetRef: "first"}, {AssetRef: "second"}}
	img, ok = p.MainImage()
	require.True(t, ok)
	assert.Equal(t, "first", img.AssetRef)
}

func TestProductComplete(t *testing.T) {
	p := Product{ID: "1", Slug: "apx-next", Title: "APX NEXT", MainCategory: "motorola-solutions", SubCategory: "apx-series"}
	assert.True(t, p.Complete())

	p.SubSubSubCategory = "apx-next"
	assert.False(t, p.Complete())

	missingTitle := Product{ID: "1", Slug: "apx-next", MainCategory: "motorola-solutions"}
	assert.False(t, missingTitle.Complete())
}

func TestOrder(t *testing.T) {
	p := Product{}
	assert.Zero(t, p.Order())
	v := 2.5
	p.SortOrder = &v
	assert.Equal(t, 2.5, p.Order())
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, key)

	for _, k := range SortKeys {
		parsed, err := ParseSortKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err = ParseSortKey("price-asc")
	assert.Error(t, err)
}

func TestProjectStatus(t *testing.T) {
	assert.True(t, ProjectCompleted.Valid())
	assert.True(t, ProjectInProgress.Valid())
	assert.False(t, ProjectStatus("archived").Valid())
}
