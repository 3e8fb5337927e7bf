package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/compare"
	"radiolink/catalog/internal/domain"
)

type sessionKey struct{}

const defaultSessionCacheSize = 10000

// session makes sure every compare request carries a session id cookie.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(s.cookieName); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		// refreshed on every request so active sessions do not expire
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.sessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

// compareSession holds the in-memory compare set of one browser. Requests of
// the same session are serialised on mu.
type compareSession struct {
	mu  sync.Mutex
	set *compare.Set
}

type compareSessions struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *compareSession]
}

func newCompareSessions(size int, ttl time.Duration) *compareSessions {
	if size <= 0 {
		size = defaultSessionCacheSize
	}
	return &compareSessions{cache: expirable.NewLRU[string, *compareSession](size, nil, ttl)}
}

func (c *compareSessions) get(id string) *compareSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess, ok := c.cache.Get(id); ok {
		return sess
	}
	sess := &compareSession{}
	c.cache.Add(id, sess)
	return sess
}

// withCompareSet runs fn on the session's compare set while holding the
// session lock. A set that could not be restored is retried on every request
// and replaced once the store answers.
func (s *Server) withCompareSet(r *http.Request, fn func(set *compare.Set)) {
	id, _ := r.Context().Value(sessionKey{}).(string)
	sess := s.sessions.get(id)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.set == nil || !sess.set.Restored() {
		fresh := compare.Restore(r.Context(), s.compare.ForSession(id), compare.WithObserver(s.metrics.ObserveCompare))
		if sess.set == nil || fresh.Restored() {
			sess.set = fresh
		}
	}
	fn(sess.set)
}

type compareResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
	Capacity int              `json:"capacity"`
	Full     bool             `json:"full"`
}

func newCompareResponse(set *compare.Set) compareResponse {
	return compareResponse{
		Products: set.Products(),
		Count:    set.Len(),
		Capacity: compare.Capacity,
		Full:     set.Full(),
	}
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var resp compareResponse
	s.withCompareSet(r, func(set *compare.Set) {
		resp = newCompareResponse(set)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompareToggle(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.ProductByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var resp compareResponse
	s.withCompareSet(r, func(set *compare.Set) {
		set.Toggle(r.Context(), product)
		resp = newCompareResponse(set)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompareAdd(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.ProductByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var resp compareResponse
	s.withCompareSet(r, func(set *compare.Set) {
		set.Add(r.Context(), product)
		resp = newCompareResponse(set)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompareRemove(w http.ResponseWriter, r *http.Request) {
	var resp compareResponse
	s.withCompareSet(r, func(set *compare.Set) {
		set.Remove(r.Context(), chi.URLParam(r, "id"))
		resp = newCompareResponse(set)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompareClear(w http.ResponseWriter, r *http.Request) {
	var resp compareResponse
	s.withCompareSet(r, func(set *compare.Set) {
		set.Clear(r.Context())
		resp = newCompareResponse(set)
	})
	writeJSON(w, http.StatusOK, resp)
}

// webhookPayload is the projection the CMS webhook is configured to send.
type webhookPayload struct {
	ID   string `json:"_id"`
	Type string `json:"_type"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookSecret != "" {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.webhookSecret)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid webhook secret"})
			return
		}
	}

	var payload webhookPayload
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&payload); err != nil && r.ContentLength != 0 {
		log.Debugf("Ignoring unreadable webhook body: %v", err)
	}

	id, err := s.catalog.EnqueueRefresh(r.Context(), "webhook", payload.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Infof("📨 Refresh requested by CMS webhook (%s %s)", payload.Type, payload.ID)
	writeJSON(w, http.StatusAccepted, map[string]string{"taskId": id})
}
