package upload

import (
	"context"

	"treasurehunt/internal/upload/models"
)

// Store persists upload metadata rows.
type Store interface {
	// CreateDocument inserts a document row.
	CreateDocument(ctx context.Context, doc *models.UploadedDocument) error

	// FindDocument returns one document or sentinel.ErrNotFound.
	FindDocument(ctx context.Context, id string) (*models.UploadedDocument, error)

	// ListDocuments returns a registration's documents, newest first.
	ListDocuments(ctx context.Context, registrationID string) ([]*models.UploadedDocument, error)

	// DeleteDocument removes a document row.
	DeleteDocument(ctx context.Context, id string) error

	// CreateImage inserts an image row.
	CreateImage(ctx context.Context, img *models.UploadedImage) error

	// FindImageByPlan returns a plan's current image or sentinel.ErrNotFound.
	FindImageByPlan(ctx context.Context, planID string) (*models.UploadedImage, error)

	// DeleteImage removes an image row.
	DeleteImage(ctx context.Context, id string) error
}
