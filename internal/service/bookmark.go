package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tagmark/tagmark/internal/metrics"
	"github.com/tagmark/tagmark/internal/model"
	"github.com/tagmark/tagmark/internal/repository"
)

// Bookmark service errors.
var (
	ErrInvalidURL      = errors.New("invalid article URL")
	ErrURLTooLong      = errors.New("article URL too long")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title too long")
	ErrMemoTooLong     = errors.New("memo too long")
	ErrInvalidTagName  = errors.New("invalid tag name")
	ErrTooManyTags     = errors.New("too many tags")
	ErrArticleNotFound = errors.New("article not found")
	ErrTagNotFound     = errors.New("tag not found")
)

// Tag name: 1-64 chars, no whitespace control characters.
var tagNameRegex = regexp.MustCompile(`^[^\s][^\n\r\t]{0,63}$`)

const (
	maxURLLength      = 2048
	maxTitleLength    = 512
	maxMemoLength     = 4096
	maxTagsPerArticle = 20
)

// ArticleStore is the persistence surface the bookmark service needs.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *model.Article, tagNames []string) error
	GetArticle(ctx context.Context, id, ownerID string) (*model.Article, error)
	ListArticlesByOwner(ctx context.Context, ownerID string) ([]*model.Article, error)
	UpdateArticle(ctx context.Context, article *model.Article, tagNames []string) error
	DeleteArticle(ctx context.Context, id, ownerID string) error
	ListTagsByOwner(ctx context.Context, ownerID string) ([]model.Tag, error)
	DeleteTag(ctx context.Context, id, ownerID string) error
}

// BookmarkService handles article and tag business logic.
// Every operation is scoped to the owner passed in; the service never
// reaches across user boundaries.
type BookmarkService struct {
	store   ArticleStore
	metrics metrics.Recorder
}

// NewBookmarkService creates a new BookmarkService.
func NewBookmarkService(store ArticleStore, recorder metrics.Recorder) *BookmarkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BookmarkService{
		store:   store,
		metrics: recorder,
	}
}

// CreateArticleInput defines input for creating an article.
type CreateArticleInput struct {
	URL    string
	Title  string
	Memo   string
	IsRead bool
	Tags   []string
}

// CreateArticle validates input and stores a new article for the owner.
func (s *BookmarkService) CreateArticle(ctx context.Context, ownerID string, input CreateArticleInput) (*model.Article, error) {
	if err := validateArticleFields(input.URL, input.Title, input.Memo); err != nil {
		return nil, err
	}
	if err := validateTagNames(input.Tags); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article := &model.Article{
		ID:        ulid.Make().String(),
		URL:       input.URL,
		Title:     input.Title,
		Memo:      input.Memo,
		IsRead:    input.IsRead,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateArticle(ctx, article, input.Tags); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.metrics.IncArticleCreated()
	return article, nil
}

// GetArticle returns one of the owner's articles.
func (s *BookmarkService) GetArticle(ctx context.Context, id, ownerID string) (*model.Article, error) {
	article, err := s.store.GetArticle(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// ListArticles returns all of the owner's articles with their tags.
func (s *BookmarkService) ListArticles(ctx context.Context, ownerID string) ([]*model.Article, error) {
	articles, err := s.store.ListArticlesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// UpdateArticleInput defines a partial update. Nil fields are unchanged.
type UpdateArticleInput struct {
	URL    *string
	Title  *string
	Memo   *string
	IsRead *bool
	Tags   *[]string
}

// UpdateArticle applies a partial update to one of the owner's articles.
func (s *BookmarkService) UpdateArticle(ctx context.Context, id, ownerID string, input UpdateArticleInput) (*model.Article, error) {
	article, err := s.GetArticle(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.URL != nil {
		article.URL = *input.URL
	}
	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Memo != nil {
		article.Memo = *input.Memo
	}
	if input.IsRead != nil {
		article.IsRead = *input.IsRead
	}

	if err := validateArticleFields(article.URL, article.Title, article.Memo); err != nil {
		return nil, err
	}

	// A nil tag list means "leave tags alone"; the store applies the field
	// update and the tag replacement in one transaction.
	var tagNames []string
	if input.Tags != nil {
		if err := validateTagNames(*input.Tags); err != nil {
			return nil, err
		}
		tagNames = *input.Tags
		if tagNames == nil {
			tagNames = []string{}
		}
	}

	article.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateArticle(ctx, article, tagNames); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}

	s.metrics.IncArticleUpdated()
	return article, nil
}

// DeleteArticle removes one of the owner's articles.
func (s *BookmarkService) DeleteArticle(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteArticle(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}

	s.metrics.IncArticleDeleted()
	return nil
}

// ListTags returns all of the owner's tags.
func (s *BookmarkService) ListTags(ctx context.Context, ownerID string) ([]model.Tag, error) {
	tags, err := s.store.ListTagsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes one of the owner's tags and its article links.
func (s *BookmarkService) DeleteTag(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteTag(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// validateArticleFields checks url, title and memo constraints.
func validateArticleFields(rawURL, title, memo string) error {
	if len(rawURL) > maxURLLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ErrInvalidURL
	}

	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if len(memo) > maxMemoLength {
		return ErrMemoTooLong
	}

	return nil
}

// validateTagNames checks each tag name and the overall count.
func validateTagNames(names []string) error {
	if len(names) > maxTagsPerArticle {
		return ErrTooManyTags
	}
	for _, name := range names {
		if !tagNameRegex.MatchString(name) {
			return ErrInvalidTagName
		}
	}
	return nil
}
