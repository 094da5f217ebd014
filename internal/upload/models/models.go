// Package models defines uploaded files: registration documents and plan
// images. The database rows carry metadata; bytes live in the file store.
package models

import (
	"fmt"
	"time"
)

// UploadedDocument is a supporting document attached to a registration. It
// is deleted together with its registration.
type UploadedDocument struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	FileName       string    `json:"file_name"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	StoragePath    string    `json:"storage_path"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// FormattedSize renders the byte count for API responses.
func (d *UploadedDocument) FormattedSize() string { return FormatSize(d.SizeBytes) }

// UploadedImage is a plan's hero image.
type UploadedImage struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"plan_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// FormattedSize renders the byte count for API responses.
func (i *UploadedImage) FormattedSize() string { return FormatSize(i.SizeBytes) }

// FormatSize renders bytes as B, KB, or MB with one decimal.
func FormatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
