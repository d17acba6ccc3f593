package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/tagmark/tagmark/internal/model"
)

// ErrArticleNotFound is returned when an article does not exist or is not
// owned by the requesting user. The two cases are deliberately
// indistinguishable.
var ErrArticleNotFound = errors.New("article not found")

// articleColumns selects article fields plus aggregated tag ids and names.
// Tags are aggregated into parallel text[] columns so a row scans in one pass.
const articleColumns = `
	a.id, a.url, a.title, a.memo, a.is_read, a.owner_id, a.created_at, a.updated_at,
	COALESCE(array_agg(t.id ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}') AS tag_ids,
	COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}') AS tag_names
`

const articleJoins = `
	LEFT JOIN article_tags at ON at.article_id = a.id
	LEFT JOIN tags t ON t.id = at.tag_id
`

// CreateArticle inserts a new article with its tags in a single transaction.
// Tag names are created for the owner on first use. On success the article's
// Tags field holds the stored tags.
func (r *Repository) CreateArticle(ctx context.Context, article *model.Article, tagNames []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO articles (id, url, title, memo, is_read, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, query,
		article.ID,
		article.URL,
		article.Title,
		article.Memo,
		article.IsRead,
		article.OwnerID,
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}

	tags, err := upsertTags(ctx, tx, article.OwnerID, tagNames)
	if err != nil {
		return err
	}
	if err := linkArticleTags(ctx, tx, article.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	article.Tags = tags
	return nil
}

// GetArticle retrieves one article with its tags, scoped to the owner.
func (r *Repository) GetArticle(ctx context.Context, id, ownerID string) (*model.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles a
		` + articleJoins + `
		WHERE a.id = $1 AND a.owner_id = $2
		GROUP BY a.id
	`

	article, err := scanArticle(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// ListArticlesByOwner returns all of the owner's articles with their tags,
// newest first.
func (r *Repository) ListArticlesByOwner(ctx context.Context, ownerID string) ([]*model.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles a
		` + articleJoins + `
		WHERE a.owner_id = $1
		GROUP BY a.id
		ORDER BY a.created_at DESC, a.id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*model.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// UpdateArticle updates the article's mutable fields and, when tagNames is
// non-nil, replaces its tag set, all in one transaction. A nil tagNames
// leaves the tags untouched. Scoped to the owner: the row update and the
// tag replacement commit together or not at all.
func (r *Repository) UpdateArticle(ctx context.Context, article *model.Article, tagNames []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE articles
		SET url = $1, title = $2, memo = $3, is_read = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
	`

	tag, err := tx.Exec(ctx, query,
		article.URL,
		article.Title,
		article.Memo,
		article.IsRead,
		article.UpdatedAt,
		article.ID,
		article.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	var tags []model.Tag
	if tagNames != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, article.ID); err != nil {
			return fmt.Errorf("failed to clear article tags: %w", err)
		}

		tags, err = upsertTags(ctx, tx, article.OwnerID, tagNames)
		if err != nil {
			return err
		}
		if err := linkArticleTags(ctx, tx, article.ID, tags); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if tagNames != nil {
		article.Tags = tags
	}
	return nil
}

// DeleteArticle removes an article and its tag links, scoped to the owner.
func (r *Repository) DeleteArticle(ctx context.Context, id, ownerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM article_tags WHERE article_id IN (
			SELECT id FROM articles WHERE id = $1 AND owner_id = $2
		)`, id, ownerID,
	); err != nil {
		return fmt.Errorf("failed to delete article tags: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM articles WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanArticle scans an article row with aggregated tag arrays.
func scanArticle(row rowScanner) (*model.Article, error) {
	var (
		article  model.Article
		tagIDs   []string
		tagNames []string
	)

	err := row.Scan(
		&article.ID,
		&article.URL,
		&article.Title,
		&article.Memo,
		&article.IsRead,
		&article.OwnerID,
		&article.CreatedAt,
		&article.UpdatedAt,
		pq.Array(&tagIDs),
		pq.Array(&tagNames),
	)
	if err != nil {
		return nil, err
	}

	article.Tags = make([]model.Tag, 0, len(tagIDs))
	for i := range tagIDs {
		article.Tags = append(article.Tags, model.Tag{
			ID:      tagIDs[i],
			Name:    tagNames[i],
			OwnerID: article.OwnerID,
		})
	}

	return &article, nil
}

// linkArticleTags inserts join rows for the article's tags.
func linkArticleTags(ctx context.Context, tx pgx.Tx, articleID string, tags []model.Tag) error {
	for _, t := range tags {
		_, err := tx.Exec(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			articleID, t.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to link article tag: %w", err)
		}
	}
	return nil
}
