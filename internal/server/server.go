package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/config"
	"radiolink/catalog/internal/domain"
	"radiolink/catalog/internal/metrics"
	"radiolink/catalog/internal/service"
	"radiolink/catalog/internal/state"
)

// Catalog is the read side of the catalog service plus refresh requests.
type Catalog interface {
	ListAll(sort domain.SortKey, page int) (*service.Listing, error)
	ListCategory(segments []string, sort domain.SortKey, page int) (*service.Listing, error)
	Categories() []service.CategoryNode
	Product(ctx context.Context, slug string) (*service.ProductDetail, error)
	ProductByID(id string) (domain.Product, error)
	Projects(status domain.ProjectStatus) ([]domain.Project, error)
	Source() (service.Source, time.Time)
	EnqueueRefresh(ctx context.Context, reason, documentID string) (string, error)
}

type Server struct {
	catalog       Catalog
	compare       state.CompareStateManager
	sessions      *compareSessions
	metrics       *metrics.Metrics
	cookieName    string
	sessionTTL    time.Duration
	webhookSecret string
	decoder       *schema.Decoder
	httpServer    *http.Server
}

func New(
	catalog Catalog,
	compare state.CompareStateManager,
	metrics *metrics.Metrics,
	serverCfg config.ServerConfig,
	compareCfg config.CompareConfig,
	webhookSecret string,
) *Server {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	s := &Server{
		catalog:       catalog,
		compare:       compare,
		sessions:      newCompareSessions(compareCfg.CacheSize, compareCfg.TTL()),
		metrics:       metrics,
		cookieName:    compareCfg.CookieName,
		sessionTTL:    compareCfg.TTL(),
		webhookSecret: webhookSecret,
		decoder:       decoder,
	}
	s.httpServer = &http.Server{
		Addr:         serverCfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(serverCfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(serverCfg.WriteTimeout) * time.Second,
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleProducts)
		r.Get("/products/{slug}", s.handleProduct)
		r.Get("/category/*", s.handleCategory)
		r.Get("/categories", s.handleCategories)
		r.Get("/projects", s.handleProjects)

		r.Route("/compare", func(r chi.Router) {
			r.Use(s.session)
			r.Get("/", s.handleCompare)
			r.Delete("/", s.handleCompareClear)
			r.Post("/{id}", s.handleCompareAdd)
			r.Delete("/{id}", s.handleCompareRemove)
			r.Post("/{id}/toggle", s.handleCompareToggle)
		})

		r.Post("/webhooks/cms", s.handleWebhook)
	})

	return r
}

// Run serves until ctx is cancelled, then drains open requests.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("❌ HTTP server shutdown failed: %v", err)
		}
	}()

	log.Infof("🌐 Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	log.Info("🛑 HTTP server stopped")
	return nil
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, ww.Status())
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
