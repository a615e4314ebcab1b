package types

// ------------------------------
// Response Types
// ------------------------------

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message,omitempty"`
}

// AIResponse carries the text result of rewrite and summary.
type AIResponse struct {
	Result  string `json:"result"`
	Action  string `json:"action,omitempty"`
	Success bool   `json:"success"`
}

// TagsResponse carries suggested tags.
type TagsResponse struct {
	Tags    []string `json:"tags"`
	Success bool     `json:"success"`
}

// MessageResponse is the acknowledgement body of logout and delete.
type MessageResponse struct {
	Message string `json:"message"`
}
