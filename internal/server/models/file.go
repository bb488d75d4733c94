package models

import "time"

const (
	UploadStatusPending   = "pending"
	UploadStatusCompleted = "completed"
)

// File is the metadata of an encrypted blob kept in object storage under
// StorageKey.
type File struct {
	ID                string     `json:"id"`
	UserID            string     `json:"-"`
	Filename          string     `json:"filename"`
	StorageKey        string     `json:"-"`
	FileSize          int64      `json:"file_size"`
	PasswordProtected bool       `json:"password_protected"`
	PasswordHash      string     `json:"-"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	MaxDownloads      *int64     `json:"max_downloads,omitempty"`
	DownloadCount     int64      `json:"download_count"`
	WatermarkEnabled  bool       `json:"watermark_enabled"`
	UploadStatus      string     `json:"upload_status"`
	CreatedAt         time.Time  `json:"created_at"`
}
