package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"radiolink/catalog/internal/catalog"
	"radiolink/catalog/internal/client"
	"radiolink/catalog/internal/config"
	"radiolink/catalog/internal/domain"
	"radiolink/catalog/internal/metrics"
	"radiolink/catalog/internal/queue"
	"radiolink/catalog/internal/repository"
	"radiolink/catalog/internal/taxonomy"
)

// Source tells where the served snapshot came from.
type Source string

const (
	SourceCMS      Source = "cms"
	SourceSnapshot Source = "snapshot"
	SourceEmpty    Source = "empty"
)

// snapshot is an immutable view of the catalog. Counts are computed once per
// refresh and shared by every request.
type snapshot struct {
	products  []domain.Product // default order
	projects  []domain.Project
	counts    catalog.NodeCounts
	source    Source
	fetchedAt time.Time
}

var emptySnapshot = &snapshot{counts: catalog.NodeCounts{}, source: SourceEmpty}

type Service struct {
	tree            *taxonomy.Tree
	client          client.CMSClient
	repository      repository.ProductRepository
	queue           queue.Queue
	metrics         *metrics.Metrics
	pageSize        int
	relatedLimit    int
	refreshInterval time.Duration
	maxRetries      int
	groupName       string
	minIdleTime     time.Duration

	current   atomic.Pointer[snapshot]
	refreshMu sync.Mutex
}

func NewService(
	tree *taxonomy.Tree,
	client client.CMSClient,
	repository repository.ProductRepository,
	queue queue.Queue,
	metrics *metrics.Metrics,
	catalogCfg config.CatalogConfig,
	maxRetries int,
	groupName string,
	minIdleTime int,
) *Service {
	return &Service{
		tree:            tree,
		client:          client,
		repository:      repository,
		queue:           queue,
		metrics:         metrics,
		pageSize:        catalogCfg.PageSize,
		relatedLimit:    catalogCfg.RelatedLimit,
		refreshInterval: time.Duration(catalogCfg.RefreshInterval) * time.Second,
		maxRetries:      maxRetries,
		groupName:       groupName,
		minIdleTime:     time.Duration(minIdleTime) * time.Second,
	}
}

func (s *Service) snapshot() *snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// Source reports the origin of the served catalog and when it was fetched.
func (s *Service) Source() (Source, time.Time) {
	snap := s.snapshot()
	return snap.source, snap.fetchedAt
}

// Refresh reloads products and projects from the CMS. When the CMS cannot be
// reached the service keeps what it is serving; before the first successful
// load that is the last stored snapshot, or an empty catalog.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	products, projects, err := s.fetch(ctx)
	if err != nil {
		log.Errorf("❌ Catalog refresh failed: %v", err)
		if s.current.Load() == nil {
			s.fallback(ctx)
		} else {
			log.Warnf("⚠️ Keeping %s catalog fetched at %s", s.snapshot().source, s.snapshot().fetchedAt.Format(time.RFC3339))
		}
		return fmt.Errorf("failed to refresh catalog: %w", err)
	}

	snap := s.install(products, projects, SourceCMS)

	if err := s.repository.SaveSnapshot(ctx, snap.products, snap.projects); err != nil {
		log.Warnf("⚠️ Failed to store catalog snapshot: %v", err)
	}

	log.Infof("✅ Catalog refreshed: %d products, %d projects", len(snap.products), len(snap.projects))
	return nil
}

func (s *Service) fetch(ctx context.Context) ([]domain.Product, []domain.Project, error) {
	var (
		products []domain.Product
		projects []domain.Project
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.client.FetchProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.client.FetchProjects(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return products, projects, nil
}

func (s *Service) fallback(ctx context.Context) {
	products, projects, err := s.repository.LoadSnapshot(ctx)
	if err != nil {
		log.Errorf("❌ Stored snapshot unavailable, serving an empty catalog: %v", err)
		s.install(nil, nil, SourceEmpty)
		return
	}

	snap := s.install(products, projects, SourceSnapshot)
	log.Warnf("⚠️ Serving stored snapshot: %d products, %d projects", len(snap.products), len(snap.projects))
}

func (s *Service) install(products []domain.Product, projects []domain.Project, source Source) *snapshot {
	valid := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !p.Complete() {
			log.Warnf("⚠️ Dropping product %q with incomplete classification", p.Slug)
			continue
		}
		valid = append(valid, p)
	}

	snap := &snapshot{
		products:  catalog.Sort(valid, domain.SortDefault),
		projects:  catalog.SortProjects(projects),
		counts:    catalog.CountNodes(s.tree, valid),
		source:    source,
		fetchedAt: time.Now(),
	}
	s.current.Store(snap)
	s.metrics.ObserveRefresh(string(source), len(snap.products), len(snap.projects))
	return snap
}
