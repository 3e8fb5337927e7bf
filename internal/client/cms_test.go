package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiolink/catalog/internal/config"
	"radiolink/catalog/internal/domain"
)

const productsResponse = `{
  "ms": 4,
  "query": "*",
  "result": [
    {
      "_id": "p1",
      "_createdAt": "2024-03-01T10:00:00Z",
      "title": "  APX NEXT ",
      "slug": {"current": "apx-next"},
      "mainCategory": "motorola-solutions",
      "subCategory": "apx-series",
      "images": [
        {"_type": "image", "asset": {"_ref": "image-aaa-800x600-jpg", "_type": "reference"}},
        {"_type": "image", "asset": {"_ref": "image-bbb-1200x900-png", "_type": "reference"}, "isMainImage": true, "alt": "front"}
      ],
      "cardDescription": "<p>Smart <b>P25</b> radio &amp; more</p>",
      "shortDescription": [{"_type": "block", "children": [{"_type": "span", "text": "ignored"}]}],
      "sortOrder": 2
    },
    {
      "_id": "p2",
      "_createdAt": "2024-01-01T10:00:00.123Z",
      "title": "Talkabout T82",
      "slug": {"current": "talkabout-t82"},
      "mainCategory": "motorola-solutions",
      "subCategory": "talkabout",
      "shortDescription": [
        {"_type": "block", "children": [{"_type": "span", "text": "Two-way "}, {"_type": "span", "text": "radio."}]},
        {"_type": "image"},
        {"_type": "block", "children": [{"_type": "span", "text": "IPX4."}]}
      ],
      "fullDescription": null
    },
    {"_id": "broken", "title": "No slug"}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) CMSClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCMSClient(config.CMSConfig{
		ProjectID:  "13zwx11y",
		Dataset:    "production",
		APIVersion: "2024-02-02",
		BaseURL:    srv.URL,
		Timeout:    5,
		MaxRetries: 0,
	})
}

func TestFetchProducts(t *testing.T) {
	var gotPath, gotQuery, gotPerspective string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotPerspective = r.URL.Query().Get("perspective")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(productsResponse))
	})

	products, err := c.FetchProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/v2024-02-02/data/query/production", gotPath)
	assert.Contains(t, gotQuery, `_type == "product"`)
	assert.Equal(t, "published", gotPerspective)

	require.Len(t, products, 2)
	first := products[0]
	assert.Equal(t, "p1", first.ID)
	assert.Equal(t, "apx-next", first.Slug)
	assert.Equal(t, "APX NEXT", first.Title)
	assert.Equal(t, domain.CategoryID("apx-series"), first.SubCategory)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt)
	assert.Equal(t, "Smart P25 radio & more", first.CardDescription)
	require.NotNil(t, first.SortOrder)
	assert.Equal(t, 2.0, *first.SortOrder)

	main, ok := first.MainImage()
	require.True(t, ok)
	assert.Equal(t, "front", main.Alt)
	assert.Equal(t, "https://cdn.sanity.io/images/13zwx11y/production/bbb-1200x900.png", main.URL)

	second := products[1]
	assert.Equal(t, "Two-way radio. IPX4.", second.CardDescription)
	assert.Nil(t, second.FullDescription)
	assert.Nil(t, second.SortOrder)
}

func TestFetchProjects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{{
				"_id":          "prj1",
				"_createdAt":   "2023-05-05T00:00:00Z",
				"title":        "Airport TETRA rollout",
				"slug":         map[string]string{"current": "airport-tetra"},
				"category":     "completed",
				"location":     "Tashkent",
				"client":       "Airport authority",
				"contractDate": "2023-01-15",
				"image":        map[string]any{"asset": map[string]string{"_ref": "image-ccc-10x20-webp"}},
			}},
		})
	})

	projects, err := c.FetchProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, domain.ProjectCompleted, projects[0].Status)
	assert.Equal(t, "airport-tetra", projects[0].Slug)
	require.NotNil(t, projects[0].Image)
	assert.Equal(t, "https://cdn.sanity.io/images/13zwx11y/production/ccc-10x20.webp", projects[0].Image.URL)
}

func TestFetchErrorsAreUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.FetchProducts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	})
	_, err = c.FetchProducts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ms":1,"result":null}`))
	})
	products, err := c.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://cdn.sanity.io/images/p/d/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg",
		ImageURL("p", "d", "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg"))
	assert.Empty(t, ImageURL("p", "d", "file-abc-pdf"))
	assert.Empty(t, ImageURL("p", "d", "image-abc"))
	assert.Empty(t, ImageURL("p", "d", "image-abc-jpg"))
	assert.Empty(t, ImageURL("", "d", "image-abc-1x1-jpg"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain text", PlainText("  plain \n text "))
	assert.Equal(t, "Rugged IP68", PlainText("<div>Rugged <em>IP68</em></div>"))
	assert.Equal(t, "", PlainText(""))
}

func TestFetchProductBySlug(t *testing.T) {
	var gotSlug string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSlug = r.URL.Query().Get("$slug")
		if gotSlug == `"apx-next"` {
			w.Write([]byte(`{"result":{"_id":"p1","title":"APX NEXT","slug":{"current":"apx-next"},"mainCategory":"motorola-solutions"}}`))
			return
		}
		w.Write([]byte(`{"result":null}`))
	})

	product, err := c.FetchProductBySlug(context.Background(), "apx-next")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, `"apx-next"`, gotSlug)

	product, err = c.FetchProductBySlug(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, product)
}
