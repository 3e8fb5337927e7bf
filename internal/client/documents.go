package client

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/domain"
)

type slugField struct {
	Current string `json:"current"`
}

type imageDocument struct {
	Asset struct {
		Ref string `json:"_ref"`
	} `json:"asset"`
	Alt         string `json:"alt"`
	IsMainImage bool   `json:"isMainImage"`
}

func (d imageDocument) toImage(images imageURLBuilder) domain.Image {
	return domain.Image{
		AssetRef:    d.Asset.Ref,
		Alt:         d.Alt,
		IsMainImage: d.IsMainImage,
		URL:         images.URL(d.Asset.Ref),
	}
}

type productDocument struct {
	ID                string          `json:"_id"`
	CreatedAt         string          `json:"_createdAt"`
	Title             string          `json:"title"`
	Slug              slugField       `json:"slug"`
	MainCategory      string          `json:"mainCategory"`
	SubCategory       string          `json:"subCategory"`
	SubSubCategory    string          `json:"subSubCategory"`
	SubSubSubCategory string          `json:"subSubSubCategory"`
	Images            []imageDocument `json:"images"`
	CardDescription   string          `json:"cardDescription"`
	ShortDescription  json.RawMessage `json:"shortDescription"`
	FullDescription   json.RawMessage `json:"fullDescription"`
	SortOrder         *float64        `json:"sortOrder"`
}

func (d productDocument) toProduct(images imageURLBuilder) (domain.Product, bool) {
	if d.ID == "" || d.Slug.Current == "" {
		return domain.Product{}, false
	}

	product := domain.Product{
		ID:                d.ID,
		Slug:              d.Slug.Current,
		CreatedAt:         parseTimestamp(d.ID, d.CreatedAt),
		Title:             strings.TrimSpace(d.Title),
		MainCategory:      domain.CategoryID(d.MainCategory),
		SubCategory:       domain.CategoryID(d.SubCategory),
		SubSubCategory:    domain.CategoryID(d.SubSubCategory),
		SubSubSubCategory: domain.CategoryID(d.SubSubSubCategory),
		ShortDescription:  nullable(d.ShortDescription),
		FullDescription:   nullable(d.FullDescription),
		Images:            make([]domain.Image, 0, len(d.Images)),
		SortOrder:         d.SortOrder,
	}
	for _, img := range d.Images {
		product.Images = append(product.Images, img.toImage(images))
	}

	product.CardDescription = PlainText(d.CardDescription)
	if product.CardDescription == "" {
		product.CardDescription = PortableTextSummary(d.ShortDescription)
	}

	return product, true
}

type projectDocument struct {
	ID              string          `json:"_id"`
	CreatedAt       string          `json:"_createdAt"`
	Title           string          `json:"title"`
	Slug            slugField       `json:"slug"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	ContractDate    string          `json:"contractDate"`
	Location        string          `json:"location"`
	Client          string          `json:"client"`
	Image           *imageDocument  `json:"image"`
	FullDescription json.RawMessage `json:"fullDescription"`
	SortOrder       *float64        `json:"sortOrder"`
}

func (d projectDocument) toProject(images imageURLBuilder) domain.Project {
	project := domain.Project{
		ID:              d.ID,
		Slug:            d.Slug.Current,
		CreatedAt:       parseTimestamp(d.ID, d.CreatedAt),
		Title:           strings.TrimSpace(d.Title),
		Description:     PlainText(d.Description),
		Status:          domain.ProjectStatus(d.Category),
		ContractDate:    d.ContractDate,
		Location:        d.Location,
		Client:          d.Client,
		FullDescription: nullable(d.FullDescription),
		SortOrder:       d.SortOrder,
	}
	if d.Image != nil {
		img := d.Image.toImage(images)
		project.Image = &img
	}
	return project
}

func parseTimestamp(id, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		log.Debugf("Unparseable _createdAt %q on %s: %v", value, id, err)
		return time.Time{}
	}
	return t
}

func nullable(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

// PlainText strips markup editors paste into plain text fields and collapses
// whitespace.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

type portableTextBlock struct {
	Type     string `json:"_type"`
	Children []struct {
		Text string `json:"text"`
	} `json:"children"`
}

// PortableTextSummary joins the span text of the text blocks of a portable
// text value.
func PortableTextSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var blocks []portableTextBlock
	if err := sonic.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Type != "block" {
			continue
		}
		var sb strings.Builder
		for _, span := range block.Children {
			sb.WriteString(span.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
