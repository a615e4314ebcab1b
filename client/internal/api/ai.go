package api

import (
	"context"
	"net/http"

	"github.com/HashtagPatil/KnowledgeHub/client/internal/types"
)

// Rewrite runs one of the rewrite-style actions (improve, grammar, concise,
// title) and returns the generated text.
func Rewrite(ctx context.Context, httpClient HTTPClient, baseURL string, req types.AIRequest) (string, error) {
	var out types.AIResponse
	if err := Do(ctx, httpClient, baseURL, http.MethodPost, "/ai/improve", req, nil, &out, "ai "+req.Action); err != nil {
		return "", err
	}
	return out.Result, nil
}

// Summarize returns a short summary of content.
func Summarize(ctx context.Context, httpClient HTTPClient, baseURL, content string) (string, error) {
	var out types.AIResponse
	req := types.AIRequest{Content: content}
	if err := Do(ctx, httpClient, baseURL, http.MethodPost, "/ai/summary", req, nil, &out, "ai summary"); err != nil {
		return "", err
	}
	return out.Result, nil
}

// SuggestTags returns tags suggested for the article.
func SuggestTags(ctx context.Context, httpClient HTTPClient, baseURL, content, title string) ([]string, error) {
	var out types.TagsResponse
	req := types.AIRequest{Content: content, Title: title}
	if err := Do(ctx, httpClient, baseURL, http.MethodPost, "/ai/tags", req, nil, &out, "ai tags"); err != nil {
		return nil, err
	}
	return out.Tags, nil
}
