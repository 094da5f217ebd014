package upload

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"treasurehunt/internal/upload/models"
	"treasurehunt/internal/platform/database"
	"treasurehunt/pkg/platform/sentinel"
)

// PostgresStore persists upload metadata in PostgreSQL.
type PostgresStore struct {
	db database.Querier
}

// NewPostgres constructs a PostgreSQL-backed upload store.
func NewPostgres(db database.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.UploadedDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploaded_documents (id, registration_id, file_name, content_type, size_bytes, storage_path, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, doc.ID, doc.RegistrationID, doc.FileName, doc.ContentType, doc.SizeBytes, doc.StoragePath, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindDocument(ctx context.Context, id string) (*models.UploadedDocument, error) {
	var doc models.UploadedDocument
	err := s.db.QueryRowContext(ctx, `
		SELECT id, registration_id, file_name, content_type, size_bytes, storage_path, uploaded_at
		FROM uploaded_documents
		WHERE id = $1
	`, id).Scan(&doc.ID, &doc.RegistrationID, &doc.FileName, &doc.ContentType, &doc.SizeBytes, &doc.StoragePath, &doc.UploadedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, registrationID string) ([]*models.UploadedDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, registration_id, file_name, content_type, size_bytes, storage_path, uploaded_at
		FROM uploaded_documents
		WHERE registration_id = $1
		ORDER BY uploaded_at DESC
	`, registrationID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.UploadedDocument
	for rows.Next() {
		var doc models.UploadedDocument
		if err := rows.Scan(&doc.ID, &doc.RegistrationID, &doc.FileName, &doc.ContentType, &doc.SizeBytes, &doc.StoragePath, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM uploaded_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) CreateImage(ctx context.Context, img *models.UploadedImage) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploaded_images (id, plan_id, file_name, content_type, size_bytes, storage_path, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, img.ID, img.PlanID, img.FileName, img.ContentType, img.SizeBytes, img.StoragePath, img.UploadedAt)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindImageByPlan(ctx context.Context, planID string) (*models.UploadedImage, error) {
	var img models.UploadedImage
	err := s.db.QueryRowContext(ctx, `
		SELECT id, plan_id, file_name, content_type, size_bytes, storage_path, uploaded_at
		FROM uploaded_images
		WHERE plan_id = $1
		ORDER BY uploaded_at DESC
		LIMIT 1
	`, planID).Scan(&img.ID, &img.PlanID, &img.FileName, &img.ContentType, &img.SizeBytes, &img.StoragePath, &img.UploadedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find plan image: %w", err)
	}
	return &img, nil
}

func (s *PostgresStore) DeleteImage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM uploaded_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
