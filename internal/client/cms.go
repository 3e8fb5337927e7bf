package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"radiolink/catalog/internal/config"
	"radiolink/catalog/internal/domain"
)

// ErrUnavailable wraps every failure to reach the CMS or read its answer.
var ErrUnavailable = errors.New("cms unavailable")

type CMSClient interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	// FetchProductBySlug returns nil when no published product has the slug.
	FetchProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FetchProjects(ctx context.Context) ([]domain.Project, error)
}

const (
	productsQuery = `*[_type == "product"] | order(sortOrder asc, _createdAt desc) {
  _id,
  _createdAt,
  title,
  slug,
  mainCategory,
  subCategory,
  subSubCategory,
  subSubSubCategory,
  images,
  cardDescription,
  shortDescription,
  fullDescription,
  sortOrder
}`

	productBySlugQuery = `*[_type == "product" && slug.current == $slug][0] {
  _id,
  _createdAt,
  title,
  slug,
  mainCategory,
  subCategory,
  subSubCategory,
  subSubSubCategory,
  images,
  cardDescription,
  shortDescription,
  fullDescription,
  sortOrder
}`

	projectsQuery = `*[_type == "project"] | order(sortOrder asc, _createdAt desc) {
  _id,
  _createdAt,
  title,
  slug,
  description,
  category,
  contractDate,
  location,
  client,
  image,
  fullDescription,
  sortOrder
}`
)

type cmsClient struct {
	rl         ratelimit.Limiter
	config     config.CMSConfig
	httpClient *resty.Client
	images     imageURLBuilder
}

func NewCMSClient(cfg config.CMSConfig) CMSClient {
	client := resty.New().
		SetBaseURL(baseURL(cfg)).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")

	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &cmsClient{
		rl:         rl,
		config:     cfg,
		httpClient: client,
		images:     imageURLBuilder{projectID: cfg.ProjectID, dataset: cfg.Dataset},
	}
}

func baseURL(cfg config.CMSConfig) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	if cfg.UseCDN {
		return fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
	}
	return fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
}

func (c *cmsClient) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var docs []productDocument
	if err := c.query(ctx, productsQuery, nil, &docs); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		product, ok := doc.toProduct(c.images)
		if !ok {
			log.Warnf("⚠️ Skipping product document %q without id or slug", doc.ID)
			continue
		}
		products = append(products, product)
	}

	log.Debugf("Fetched %d products from CMS", len(products))
	return products, nil
}

func (c *cmsClient) FetchProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var doc *productDocument
	if err := c.query(ctx, productBySlugQuery, map[string]string{"slug": slug}, &doc); err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", slug, err)
	}
	if doc == nil {
		return nil, nil
	}

	product, ok := doc.toProduct(c.images)
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (c *cmsClient) FetchProjects(ctx context.Context) ([]domain.Project, error) {
	var docs []projectDocument
	if err := c.query(ctx, projectsQuery, nil, &docs); err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(docs))
	for _, doc := range docs {
		projects = append(projects, doc.toProject(c.images))
	}

	log.Debugf("Fetched %d projects from CMS", len(projects))
	return projects, nil
}

type queryResponse struct {
	Ms     int             `json:"ms"`
	Result json.RawMessage `json:"result"`
}

// query runs a GROQ query against the published perspective and decodes its
// result into dest. Params are bound as $name string values.
func (c *cmsClient) query(ctx context.Context, groq string, params map[string]string, dest any) error {
	c.rl.Take()

	req := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("query", groq).
		SetQueryParam("perspective", "published")
	for name, value := range params {
		encoded, err := sonic.MarshalString(value)
		if err != nil {
			return fmt.Errorf("failed to encode param %s: %w", name, err)
		}
		req.SetQueryParam("$"+name, encoded)
	}

	path := fmt.Sprintf("/v%s/data/query/%s", c.config.APIVersion, c.config.Dataset)
	resp, err := req.Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.IsError() {
		return fmt.Errorf("%w: HTTP error: %d %s", ErrUnavailable, resp.StatusCode(), resp.Status())
	}

	var body queryResponse
	if err := sonic.UnmarshalString(resp.String(), &body); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	if len(body.Result) == 0 || string(body.Result) == "null" {
		return nil
	}
	if err := sonic.Unmarshal(body.Result, dest); err != nil {
		return fmt.Errorf("%w: malformed result: %v", ErrUnavailable, err)
	}

	log.Debugf("CMS query answered in %dms", body.Ms)
	return nil
}
