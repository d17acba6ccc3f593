package dto

import (
	"time"

	"github.com/tagmark/tagmark/internal/model"
)

// CreateArticleRequest represents the request body for creating an article.
type CreateArticleRequest struct {
	URL    string   `json:"url"`
	Title  string   `json:"title"`
	Memo   string   `json:"memo,omitempty"`
	IsRead bool     `json:"is_read,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// UpdateArticleRequest represents the request body for updating an article.
// Omitted fields are left unchanged; tags, when present, replace the set.
type UpdateArticleRequest struct {
	URL    *string   `json:"url,omitempty"`
	Title  *string   `json:"title,omitempty"`
	Memo   *string   `json:"memo,omitempty"`
	IsRead *bool     `json:"is_read,omitempty"`
	Tags   *[]string `json:"tags,omitempty"`
}

// ArticleResponse represents an article in API responses.
type ArticleResponse struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Memo      string        `json:"memo,omitempty"`
	IsRead    bool          `json:"is_read"`
	Tags      []TagResponse `json:"tags"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ArticleListResponse represents a list of articles.
type ArticleListResponse struct {
	Data []ArticleResponse `json:"data"`
}

// ToArticleResponse converts an Article model to ArticleResponse DTO.
func ToArticleResponse(article *model.Article) *ArticleResponse {
	tags := make([]TagResponse, len(article.Tags))
	for i, tag := range article.Tags {
		tags[i] = *ToTagResponse(tag)
	}
	return &ArticleResponse{
		ID:        article.ID,
		URL:       article.URL,
		Title:     article.Title,
		Memo:      article.Memo,
		IsRead:    article.IsRead,
		Tags:      tags,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}

// ToArticleListResponse converts a slice of Article models to ArticleListResponse.
func ToArticleListResponse(articles []*model.Article) *ArticleListResponse {
	responses := make([]ArticleResponse, len(articles))
	for i, article := range articles {
		responses[i] = *ToArticleResponse(article)
	}
	return &ArticleListResponse{Data: responses}
}
