package client

import "github.com/HashtagPatil/KnowledgeHub/client/internal/types"

// Public type aliases so consumers can import only the client package.
type (
	// Requests
	ArticleRequest = types.ArticleRequest

	// Domain entities
	ArticleSummary = types.ArticleSummary
	Article        = types.Article
	Timestamp      = types.Timestamp

	// Responses
	AuthResponse = types.AuthResponse
)

// SplitTags splits a comma-joined tag string, trimming and dropping blanks.
func SplitTags(s string) []string { return types.SplitTags(s) }
