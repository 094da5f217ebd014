package upload

import (
	"context"
	"errors"
	"log/slog"

	planmodels "treasurehunt/internal/plan/models"
	regmodels "treasurehunt/internal/registration/models"
	"treasurehunt/internal/upload/models"
	"treasurehunt/internal/validation"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/sentinel"
)

// PlanImageSetter is the slice of the plan service uploads need: existence
// checks and pointing a plan at its image.
type PlanImageSetter interface {
	Get(ctx context.Context, id string) (*planmodels.Plan, error)
	SetImagePath(ctx context.Context, id, path string) error
}

// RegistrationGetter confirms a registration exists before a document is
// attached to it.
type RegistrationGetter interface {
	Get(ctx context.Context, id string) (*regmodels.Registration, error)
}

// Service validates uploads, writes their bytes to the file store, and
// records metadata rows.
type Service struct {
	store         Store
	files         FileStore
	plans         PlanImageSetter
	registrations RegistrationGetter
	validator     *validation.Service
	logger        *slog.Logger
}

func NewService(store Store, files FileStore, plans PlanImageSetter, registrations RegistrationGetter, validator *validation.Service, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		files:         files,
		plans:         plans,
		registrations: registrations,
		validator:     validator,
		logger:        logger,
	}
}

// UploadDocument attaches a supporting document to a registration.
func (s *Service) UploadDocument(ctx context.Context, registrationID, fileName, contentType string, data []byte) (*models.UploadedDocument, error) {
	errs := s.validator.ValidateDocumentFile(fileName, contentType, int64(len(data)))
	if err := validation.ValidateAndThrow(errs, "document"); err != nil {
		return nil, err
	}
	if _, err := s.registrations.Get(ctx, registrationID); err != nil {
		return nil, err
	}

	path, err := s.files.Save("documents", fileName, data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store document")
	}
	doc := &models.UploadedDocument{
		RegistrationID: registrationID,
		FileName:       fileName,
		ContentType:    contentType,
		SizeBytes:      int64(len(data)),
		StoragePath:    path,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			s.logger.Warn("orphaned document file", "path", path, "error", rmErr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create document")
	}
	s.logger.Info("document uploaded", "document_id", doc.ID, "registration_id", registrationID, "size", doc.SizeBytes)
	return doc, nil
}

// ListDocuments returns a registration's documents, newest first.
func (s *Service) ListDocuments(ctx context.Context, registrationID string) ([]*models.UploadedDocument, error) {
	if _, err := s.registrations.Get(ctx, registrationID); err != nil {
		return nil, err
	}
	docs, err := s.store.ListDocuments(ctx, registrationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list documents")
	}
	return docs, nil
}

// GetDocument returns one document's metadata.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.UploadedDocument, error) {
	doc, err := s.store.FindDocument(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "document %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find document")
	}
	return doc, nil
}

// DeleteDocument removes a document's metadata row and its file.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "document %s not found", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete document")
	}
	if err := s.files.Remove(doc.StoragePath); err != nil {
		s.logger.Warn("document file not removed", "path", doc.StoragePath, "error", err)
	}
	return nil
}

// UploadPlanImage sets a plan's hero image, replacing any previous one.
func (s *Service) UploadPlanImage(ctx context.Context, planID, fileName, contentType string, data []byte) (*models.UploadedImage, error) {
	errs := s.validator.ValidatePhotoFile(fileName, contentType, int64(len(data)))
	if err := validation.ValidateAndThrow(errs, "image"); err != nil {
		return nil, err
	}
	if _, err := s.plans.Get(ctx, planID); err != nil {
		return nil, err
	}

	previous, err := s.store.FindImageByPlan(ctx, planID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find plan image")
	}

	path, err := s.files.Save("images", fileName, data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store image")
	}
	img := &models.UploadedImage{
		PlanID:      planID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		StoragePath: path,
	}
	if err := s.store.CreateImage(ctx, img); err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			s.logger.Warn("orphaned image file", "path", path, "error", rmErr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create image")
	}
	if err := s.plans.SetImagePath(ctx, planID, path); err != nil {
		return nil, err
	}

	if previous != nil {
		if err := s.store.DeleteImage(ctx, previous.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.Warn("previous image row not removed", "image_id", previous.ID, "error", err)
		}
		if err := s.files.Remove(previous.StoragePath); err != nil {
			s.logger.Warn("previous image file not removed", "path", previous.StoragePath, "error", err)
		}
	}
	s.logger.Info("plan image uploaded", "image_id", img.ID, "plan_id", planID, "size", img.SizeBytes)
	return img, nil
}

// GetPlanImage returns a plan's current image metadata.
func (s *Service) GetPlanImage(ctx context.Context, planID string) (*models.UploadedImage, error) {
	img, err := s.store.FindImageByPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "plan %s has no image", planID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find plan image")
	}
	return img, nil
}

// DeletePlanImage removes a plan's image and clears the plan's image path.
func (s *Service) DeletePlanImage(ctx context.Context, planID string) error {
	img, err := s.GetPlanImage(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteImage(ctx, img.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "plan %s has no image", planID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete image")
	}
	if err := s.files.Remove(img.StoragePath); err != nil {
		s.logger.Warn("image file not removed", "path", img.StoragePath, "error", err)
	}
	if err := s.plans.SetImagePath(ctx, planID, ""); err != nil {
		return err
	}
	return nil
}
