// Package fakeapi is an in-memory KnowledgeHub backend for tests and offline
// demos. It speaks the same HTTP contract as the real service under /api,
// including bearer-token authentication, ownership checks and the AI
// endpoints, which it answers with simple deterministic rewrites.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// localDateTime is the backend's zone-less timestamp layout.
const localDateTime = "2006-01-02T15:04:05.999999"

type user struct {
	id       int64
	username string
	email    string
	password string
}

type article struct {
	id        int64
	title     string
	content   string
	summary   string
	category  string
	tags      string
	author    *user
	createdAt time.Time
	updatedAt time.Time
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	mu       sync.Mutex
	users    map[string]*user  // by lower-cased email
	tokens   map[string]*user  // bearer token → user
	articles map[int64]*article
	nextUser int64
	nextID   int64
	now      func() time.Time

	aiStatus  int
	aiMessage string
	requests  int
}

// New returns an empty Server.
func New() *Server {
	return &Server{
		users:    map[string]*user{},
		tokens:   map[string]*user{},
		articles: map[int64]*article{},
		now:      time.Now,
	}
}

// Handler returns the HTTP API rooted at /api.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(recoverMiddleware, s.countMiddleware)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)

	api.HandleFunc("/articles", s.listArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles/my", s.requireUser(s.myArticles)).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}", s.getArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles", s.requireUser(s.createArticle)).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id:[0-9]+}", s.requireUser(s.updateArticle)).Methods(http.MethodPut)
	api.HandleFunc("/articles/{id:[0-9]+}", s.requireUser(s.deleteArticle)).Methods(http.MethodDelete)

	api.HandleFunc("/ai/improve", s.requireUser(s.aiImprove)).Methods(http.MethodPost)
	api.HandleFunc("/ai/summary", s.requireUser(s.aiSummary)).Methods(http.MethodPost)
	api.HandleFunc("/ai/tags", s.requireUser(s.aiTags)).Methods(http.MethodPost)

	return router
}

// SeedUser registers an account and returns a valid token for it.
func (s *Server) SeedUser(username, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUser(username, email, password)
	return s.issueToken(u)
}

// SeedArticle stores an article written by the account registered under
// authorEmail and returns its id. It panics for an unknown author.
func (s *Server) SeedArticle(authorEmail, title, content, category, tags string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(authorEmail)]
	if !ok {
		panic("fakeapi: unknown author " + authorEmail)
	}
	return s.addArticle(u, title, content, category, tags, "").id
}

// FailAI makes every AI endpoint answer with status and an optional message
// until called again with status 0.
func (s *Server) FailAI(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiStatus, s.aiMessage = status, message
}

// ExpireTokens invalidates every issued token, as a backend restart with a
// new signing key would.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]*user{}
}

// Requests returns the number of requests served so far.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// ------------------------- helpers -------------------------

// addUser and the helpers below expect s.mu to be held.
func (s *Server) addUser(username, email, password string) *user {
	s.nextUser++
	u := &user{id: s.nextUser, username: username, email: email, password: password}
	s.users[strings.ToLower(email)] = u
	return u
}

func (s *Server) issueToken(u *user) string {
	token := uuid.NewString()
	s.tokens[token] = u
	return token
}

func (s *Server) addArticle(u *user, title, content, category, tags, summary string) *article {
	s.nextID++
	now := s.now()
	if strings.TrimSpace(summary) == "" {
		summary = summarize(content, 150)
	}
	a := &article{
		id: s.nextID, title: title, content: content, summary: summary,
		category: category, tags: tags, author: u, createdAt: now, updatedAt: now,
	}
	s.articles[a.id] = a
	return a
}

// requireUser rejects requests without a valid bearer token with 401.
func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		u := s.tokens[token]
		s.mu.Unlock()
		if !ok || u == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, u)
	}
}

func (s *Server) countMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns handler panics into a 500.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Bytes("stack", debug.Stack()).
					Msg("fakeapi: panic recovered")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("fakeapi: failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"status":  status,
		"message": message,
	})
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}
