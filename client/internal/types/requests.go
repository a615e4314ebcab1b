package types

// ------------------------------
// Request Types
// ------------------------------

// LoginRequest holds credentials for /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest holds parameters for a new account.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ArticleRequest is the body of create and update.
type ArticleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
	Summary  string `json:"summary,omitempty"`
}

// AIRequest is the body of every AI endpoint. Fields an endpoint does not use
// are omitted.
type AIRequest struct {
	Content string `json:"content"`
	Action  string `json:"action,omitempty"`
	Title   string `json:"title,omitempty"`
}
