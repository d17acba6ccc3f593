// Package model defines domain entities for the application.
package model

import "time"

// Article represents a saved bookmark owned by exactly one user.
type Article struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Memo      string    `json:"memo,omitempty"`
	IsRead    bool      `json:"is_read"`
	OwnerID   string    `json:"owner_id"`
	Tags      []Tag     `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
