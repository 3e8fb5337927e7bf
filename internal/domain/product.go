package domain

import (
	"encoding/json"
	"time"
)

// Image is a CMS image reference attached to a product.
type Image struct {
	AssetRef    string `json:"assetRef"`
	Alt         string `json:"alt,omitempty"`
	IsMainImage bool   `json:"isMainImage,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Product is a catalog entry as published by the CMS. It is read-only once
// loaded into a snapshot.
type Product struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title"`

	MainCategory      CategoryID `json:"mainCategory"`
	SubCategory       CategoryID `json:"subCategory,omitempty"`
	SubSubCategory    CategoryID `json:"subSubCategory,omitempty"`
	SubSubSubCategory CategoryID `json:"subSubSubCategory,omitempty"`

	CardDescription  string          `json:"cardDescription,omitempty"`
	ShortDescription json.RawMessage `json:"shortDescription,omitempty"` // portable text
	FullDescription  json.RawMessage `json:"fullDescription,omitempty"`  // portable text
	Images           []Image         `json:"images,omitempty"`
	SortOrder        *float64        `json:"sortOrder,omitempty"`
}

// Classification returns the product's categories as a filter so it can be
// compared field by field with an active selection.
func (p *Product) Classification() Filter {
	return Filter{
		Category:          p.MainCategory,
		SubCategory:       p.SubCategory,
		SubSubCategory:    p.SubSubCategory,
		SubSubSubCategory: p.SubSubSubCategory,
	}
}

// Order is the default sort weight; a missing sortOrder counts as 0.
func (p *Product) Order() float64 {
	if p.SortOrder == nil {
		return 0
	}
	return *p.SortOrder
}

// MainImage returns the first image flagged as main, falling back to the
// first image.
func (p *Product) MainImage() (Image, bool) {
	if len(p.Images) == 0 {
		return Image{}, false
	}
	for _, img := range p.Images {
		if img.IsMainImage {
			return img, true
		}
	}
	return p.Images[0], true
}

// Complete reports whether the snapshot carries the fields every view relies on.
func (p *Product) Complete() bool {
	return p.ID != "" && p.Slug != "" && p.Title != "" && p.MainCategory != "" && p.Classification().Valid()
}
