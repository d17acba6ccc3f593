// Package model defines domain entities for the application.
package model

import "time"

// Tag labels articles within a single user's collection.
// Tag names are namespaced per owner: two users may independently own
// same-named tags as distinct rows. Uniqueness is (owner_id, name).
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
