package api

import (
	"context"
	"net/http"

	"github.com/HashtagPatil/KnowledgeHub/client/internal/types"
)

// Login exchanges credentials for a token.
func Login(ctx context.Context, httpClient HTTPClient, baseURL string, req types.LoginRequest) (*types.AuthResponse, error) {
	var out types.AuthResponse
	if err := Do(ctx, httpClient, baseURL, http.MethodPost, "/auth/login", req, nil, &out, "login"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account and returns its token.
func Signup(ctx context.Context, httpClient HTTPClient, baseURL string, req types.SignupRequest) (*types.AuthResponse, error) {
	var out types.AuthResponse
	if err := Do(ctx, httpClient, baseURL, http.MethodPost, "/auth/signup", req, nil, &out, "signup"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend the token is no longer in use.
func Logout(ctx context.Context, httpClient HTTPClient, baseURL string) error {
	return Do(ctx, httpClient, baseURL, http.MethodPost, "/auth/logout", nil, nil, nil, "logout")
}
