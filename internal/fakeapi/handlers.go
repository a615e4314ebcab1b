package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"
)

type authRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

type articleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
	Summary  string `json:"summary"`
}

type articleResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content,omitempty"`
	Summary        string `json:"summary"`
	Category       string `json:"category"`
	Tags           string `json:"tags"`
	AuthorUsername string `json:"authorUsername"`
	AuthorEmail    string `json:"authorEmail,omitempty"`
	AuthorID       int64  `json:"authorId,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

func (a *article) response(full bool) articleResponse {
	out := articleResponse{
		ID:             a.id,
		Title:          a.title,
		Summary:        a.summary,
		Category:       a.category,
		Tags:           a.tags,
		AuthorUsername: a.author.username,
		CreatedAt:      a.createdAt.Format(localDateTime),
	}
	if full {
		out.Content = a.content
		out.AuthorEmail = a.author.email
		out.AuthorID = a.author.id
		out.UpdatedAt = a.updatedAt.Format(localDateTime)
	}
	return out
}

// ------------------------- auth -------------------------

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !decode(w, r, &req) {
		return
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Username)); n < 3 || n > 50 {
		writeError(w, http.StatusBadRequest, "Username must be between 3 and 50 characters")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := s.addUser(strings.TrimSpace(req.Username), req.Email, req.Password)
	writeJSON(w, http.StatusOK, authResponse{Token: s.issueToken(u), Username: u.username, Email: u.email, Message: "Signup successful"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(req.Email)]
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: s.issueToken(u), Username: u.username, Email: u.email, Message: "Login successful"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ------------------------- articles -------------------------

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []articleResponse{}
	for _, a := range s.sorted() {
		if category != "" && !strings.EqualFold(a.category, category) {
			continue
		}
		if query != "" && !matches(a, query) {
			continue
		}
		out = append(out, a.response(false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) myArticles(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []articleResponse{}
	for _, a := range s.sorted() {
		if a.author == u {
			out = append(out, a.response(false))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.response(true))
}

func (s *Server) createArticle(w http.ResponseWriter, r *http.Request, u *user) {
	var req articleRequest
	if !decode(w, r, &req) || !validArticle(w, req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.addArticle(u, req.Title, req.Content, req.Category, req.Tags, req.Summary)
	writeJSON(w, http.StatusOK, a.response(true))
}

func (s *Server) updateArticle(w http.ResponseWriter, r *http.Request, u *user) {
	var req articleRequest
	if !decode(w, r, &req) || !validArticle(w, req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if a.author != u {
		writeError(w, http.StatusForbidden, "You are not authorized to edit this article")
		return
	}
	a.title, a.content, a.category, a.tags = req.Title, req.Content, req.Category, req.Tags
	a.summary = req.Summary
	if strings.TrimSpace(a.summary) == "" {
		a.summary = summarize(a.content, 150)
	}
	a.updatedAt = s.now()
	writeJSON(w, http.StatusOK, a.response(true))
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if a.author != u {
		writeError(w, http.StatusForbidden, "You are not authorized to delete this article")
		return
	}
	delete(s.articles, a.id)
	w.WriteHeader(http.StatusNoContent)
}

// lookup resolves the {id} route variable; s.mu must be held.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*article, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid article id")
		return nil, false
	}
	a, ok := s.articles[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Article not found")
		return nil, false
	}
	return a, true
}

// sorted returns articles newest first; s.mu must be held.
func (s *Server) sorted() []*article {
	out := make([]*article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].createdAt.After(out[j].createdAt)
		}
		return out[i].id > out[j].id
	})
	return out
}

func matches(a *article, query string) bool {
	for _, field := range []string{a.title, a.tags, a.author.username} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func validArticle(w http.ResponseWriter, req articleRequest) bool {
	switch {
	case strings.TrimSpace(req.Title) == "":
		writeError(w, http.StatusBadRequest, "Title is required")
	case strings.TrimSpace(req.Content) == "":
		writeError(w, http.StatusBadRequest, "Content is required")
	case strings.TrimSpace(req.Category) == "":
		writeError(w, http.StatusBadRequest, "Category is required")
	default:
		return true
	}
	return false
}
