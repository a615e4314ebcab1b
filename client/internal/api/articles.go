package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/HashtagPatil/KnowledgeHub/client/internal/types"
)

// ListArticles lists articles, filtered by query and category when non-blank.
func ListArticles(ctx context.Context, httpClient HTTPClient, baseURL, query, category string) ([]types.ArticleSummary, error) {
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("query", q)
	}
	if c := strings.TrimSpace(category); c != "" {
		params.Set("category", c)
	}
	var out []types.ArticleSummary
	if err := Do(ctx, httpClient, baseURL, http.MethodGet, "/articles", nil, params, &out, "list articles"); err != nil {
		return nil, err
	}
	return out, nil
}

// MyArticles lists the signed-in user's articles.
func MyArticles(ctx context.Context, httpClient HTTPClient, baseURL string) ([]types.ArticleSummary, error) {
	var out []types.ArticleSummary
	if err := Do(ctx, httpClient, baseURL, http.MethodGet, "/articles/my", nil, nil, &out, "list my articles"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetArticle retrieves a single article including its content.
func GetArticle(ctx context.Context, httpClient HTTPClient, baseURL string, id int64) (*types.Article, error) {
	var out types.Article
	if err := Do(ctx, httpClient, baseURL, http.MethodGet, fmt.Sprintf("/articles/%d", id), nil, nil, &out, "get article"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateArticle publishes a new article.
func CreateArticle(ctx context.Context, httpClient HTTPClient, baseURL string, req types.ArticleRequest) (*types.Article, error) {
	var out types.Article
	if err := Do(ctx, httpClient, baseURL, http.MethodPost, "/articles", req, nil, &out, "create article"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateArticle replaces an existing article.
func UpdateArticle(ctx context.Context, httpClient HTTPClient, baseURL string, id int64, req types.ArticleRequest) (*types.Article, error) {
	var out types.Article
	if err := Do(ctx, httpClient, baseURL, http.MethodPut, fmt.Sprintf("/articles/%d", id), req, nil, &out, "update article"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteArticle removes an article.
func DeleteArticle(ctx context.Context, httpClient HTTPClient, baseURL string, id int64) error {
	return Do(ctx, httpClient, baseURL, http.MethodDelete, fmt.Sprintf("/articles/%d", id), nil, nil, nil, "delete article")
}
