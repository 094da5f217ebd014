package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planmodels "treasurehunt/internal/plan/models"
	regmodels "treasurehunt/internal/registration/models"
	"treasurehunt/internal/validation"
	dErrors "treasurehunt/pkg/domain-errors"
)

type fakeFiles struct {
	saved   map[string][]byte
	removed []string
	nextID  int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{saved: make(map[string][]byte)}
}

func (f *fakeFiles) Save(category, fileName string, data []byte) (string, error) {
	f.nextID++
	path := fmt.Sprintf("/uploads/%s/%d-%s", category, f.nextID, fileName)
	f.saved[path] = data
	return path, nil
}

func (f *fakeFiles) Remove(path string) error {
	delete(f.saved, path)
	f.removed = append(f.removed, path)
	return nil
}

type fakePlans struct {
	plans      map[string]*planmodels.Plan
	imagePaths map[string]string
}

func newFakePlans(ids ...string) *fakePlans {
	f := &fakePlans{plans: make(map[string]*planmodels.Plan), imagePaths: make(map[string]string)}
	for _, id := range ids {
		f.plans[id] = &planmodels.Plan{ID: id, Name: "Jungle Quest"}
	}
	return f
}

func (f *fakePlans) Get(_ context.Context, id string) (*planmodels.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "plan %s not found", id)
	}
	return p, nil
}

func (f *fakePlans) SetImagePath(_ context.Context, id, path string) error {
	f.imagePaths[id] = path
	return nil
}

type fakeRegistrations struct {
	ids map[string]bool
}

func (f *fakeRegistrations) Get(_ context.Context, id string) (*regmodels.Registration, error) {
	if !f.ids[id] {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "registration %s not found", id)
	}
	return &regmodels.Registration{ID: id}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(planIDs, registrationIDs []string) (*Service, *fakeFiles, *fakePlans) {
	files := newFakeFiles()
	plans := newFakePlans(planIDs...)
	regs := &fakeRegistrations{ids: make(map[string]bool)}
	for _, id := range registrationIDs {
		regs.ids[id] = true
	}
	svc := NewService(NewInMemoryStore(), files, plans, regs, validation.New(), discardLogger())
	return svc, files, plans
}

func TestUploadDocument(t *testing.T) {
	svc, files, _ := newTestService(nil, []string{"reg-1"})
	ctx := context.Background()

	doc, err := svc.UploadDocument(ctx, "reg-1", "waiver.pdf", "application/pdf", []byte("pdf bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "waiver.pdf", doc.FileName)
	assert.Equal(t, int64(9), doc.SizeBytes)
	assert.Contains(t, files.saved, doc.StoragePath)

	docs, err := svc.ListDocuments(ctx, "reg-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func TestUploadDocumentRejectsBadType(t *testing.T) {
	svc, files, _ := newTestService(nil, []string{"reg-1"})

	_, err := svc.UploadDocument(context.Background(), "reg-1", "malware.exe", "application/octet-stream", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
	assert.Empty(t, files.saved, "nothing written for a rejected upload")
}

func TestUploadDocumentUnknownRegistration(t *testing.T) {
	svc, _, _ := newTestService(nil, nil)

	_, err := svc.UploadDocument(context.Background(), "missing", "waiver.pdf", "application/pdf", []byte("x"))
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestDeleteDocumentRemovesFile(t *testing.T) {
	svc, files, _ := newTestService(nil, []string{"reg-1"})
	ctx := context.Background()

	doc, err := svc.UploadDocument(ctx, "reg-1", "waiver.pdf", "application/pdf", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(ctx, doc.ID))
	assert.Contains(t, files.removed, doc.StoragePath)

	_, err = svc.GetDocument(ctx, doc.ID)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestUploadPlanImageReplacesPrevious(t *testing.T) {
	svc, files, plans := newTestService([]string{"plan-1"}, nil)
	ctx := context.Background()

	first, err := svc.UploadPlanImage(ctx, "plan-1", "old.jpg", "image/jpeg", []byte("old"))
	require.NoError(t, err)
	assert.Equal(t, first.StoragePath, plans.imagePaths["plan-1"])

	second, err := svc.UploadPlanImage(ctx, "plan-1", "new.png", "image/png", []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, second.StoragePath, plans.imagePaths["plan-1"])
	assert.Contains(t, files.removed, first.StoragePath, "old file is cleaned up")

	current, err := svc.GetPlanImage(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestUploadPlanImageRejectsOversized(t *testing.T) {
	svc, _, _ := newTestService([]string{"plan-1"}, nil)

	big := make([]byte, validation.MaxPhotoBytes+1)
	_, err := svc.UploadPlanImage(context.Background(), "plan-1", "huge.jpg", "image/jpeg", big)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestDeletePlanImageClearsPath(t *testing.T) {
	svc, files, plans := newTestService([]string{"plan-1"}, nil)
	ctx := context.Background()

	img, err := svc.UploadPlanImage(ctx, "plan-1", "hero.webp", "image/webp", []byte("img"))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePlanImage(ctx, "plan-1"))
	assert.Empty(t, plans.imagePaths["plan-1"])
	assert.Contains(t, files.removed, img.StoragePath)

	err = svc.DeletePlanImage(ctx, "plan-1")
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}
