package models

import "time"

// Note holds client-encrypted content. Notes with AutoDeleteAfterRead can
// be fetched exactly once.
type Note struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"-"`
	Title               string     `json:"title"`
	EncryptedContent    string     `json:"encrypted_content,omitempty"`
	AutoDeleteAfterRead bool       `json:"auto_delete_after_read"`
	HasBeenRead         bool       `json:"has_been_read"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
