package campaign

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/internal/campaign/models"
	"treasurehunt/internal/validation"
	dErrors "treasurehunt/pkg/domain-errors"
)

type fakeQueue struct {
	expanded  int
	cancelled int
	sent      int
	failed    int
	pending   int
	expandErr error
}

func (f *fakeQueue) ExpandCampaign(_ context.Context, c *models.Campaign) (int, error) {
	if f.expandErr != nil {
		return 0, f.expandErr
	}
	f.expanded++
	return len(c.Recipients), nil
}

func (f *fakeQueue) CancelCampaignEntries(_ context.Context, _ string) (int, error) {
	f.cancelled++
	return f.pending, nil
}

func (f *fakeQueue) CampaignCounts(_ context.Context, _ string) (int, int, int, error) {
	return f.sent, f.failed, f.pending, nil
}

func (f *fakeQueue) HasTemplate(name string) bool {
	return name == "event_update"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(queue *fakeQueue) (*Service, *InMemoryStore) {
	store := NewInMemoryStore()
	return NewService(store, queue, validation.New(), discardLogger()), store
}

func validCampaign() *models.Campaign {
	return &models.Campaign{
		Name:       "Spring opener",
		Subject:    "New hunts this spring",
		Body:       "<p>Three new adventures just opened.</p>",
		Priority:   5,
		Recipients: []string{"maya@example.com", "arthur@example.com"},
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	svc, _ := newTestService(&fakeQueue{})

	created, err := svc.Create(context.Background(), validCampaign())
	require.NoError(t, err)
	assert.Equal(t, models.CampaignDraft, created.Status)
	assert.Equal(t, 2, created.TotalCount)
	assert.NotEmpty(t, created.ID)
}

func TestCreateWithScheduleIsScheduled(t *testing.T) {
	svc, _ := newTestService(&fakeQueue{})

	c := validCampaign()
	at := time.Now().Add(48 * time.Hour)
	c.ScheduledDate = &at
	created, err := svc.Create(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignScheduled, created.Status)
}

func TestCreateRejectsInvalidCampaign(t *testing.T) {
	svc, _ := newTestService(&fakeQueue{})

	c := validCampaign()
	c.Name = ""
	c.Recipients = []string{"not-an-address"}
	_, err := svc.Create(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
	assert.True(t, len(dErrors.DetailsOf(err)) >= 2)
}

func TestCreateRejectsUnknownTemplate(t *testing.T) {
	svc, _ := newTestService(&fakeQueue{})

	c := validCampaign()
	c.TemplateName = "quarterly_digest"
	_, err := svc.Create(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	c.TemplateName = "event_update"
	created, err := svc.Create(context.Background(), c)
	require.NoError(t, err)

	// Updates go through the same check.
	created.TemplateName = "quarterly_digest"
	_, err = svc.Update(context.Background(), created)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestSendExpandsIntoQueue(t *testing.T) {
	queue := &fakeQueue{}
	svc, _ := newTestService(queue)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)

	sent, err := svc.Send(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSending, sent.Status)
	assert.Equal(t, 2, sent.PendingCount)
	assert.Equal(t, 1, queue.expanded)

	_, err = svc.Send(ctx, created.ID)
	assert.Equal(t, dErrors.CodeBusinessRule, dErrors.CodeOf(err))
}

func TestSendFailureMarksCampaignFailed(t *testing.T) {
	queue := &fakeQueue{expandErr: dErrors.New(dErrors.CodeInternal, "queue down")}
	svc, store := newTestService(queue)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)

	_, err = svc.Send(ctx, created.ID)
	require.Error(t, err)

	stored, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignFailed, stored.Status)
}

func TestGetSettlesFinishedCampaign(t *testing.T) {
	queue := &fakeQueue{}
	svc, _ := newTestService(queue)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)
	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)

	queue.sent, queue.failed, queue.pending = 1, 1, 1
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSending, got.Status, "still pending entries")
	assert.Equal(t, 1, got.SentCount)

	queue.sent, queue.failed, queue.pending = 1, 1, 0
	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSent, got.Status)

	// A fully failed run settles as FAILED.
	other, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)
	_, err = svc.Send(ctx, other.ID)
	require.NoError(t, err)
	queue.sent, queue.failed, queue.pending = 0, 2, 0
	got, err = svc.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignFailed, got.Status)
}

func TestScheduleRequiresDraftAndFutureDate(t *testing.T) {
	svc, _ := newTestService(&fakeQueue{})
	ctx := context.Background()

	created, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)

	_, err = svc.Schedule(ctx, created.ID, time.Now().Add(-time.Hour))
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	scheduled, err := svc.Schedule(ctx, created.ID, time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.CampaignScheduled, scheduled.Status)

	_, err = svc.Schedule(ctx, created.ID, time.Now().Add(24*time.Hour))
	assert.Equal(t, dErrors.CodeBusinessRule, dErrors.CodeOf(err))
}

func TestPauseOnlyWhileSending(t *testing.T) {
	queue := &fakeQueue{}
	svc, _ := newTestService(queue)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)

	_, err = svc.Pause(ctx, created.ID)
	assert.Equal(t, dErrors.CodeBusinessRule, dErrors.CodeOf(err))

	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)

	paused, err := svc.Pause(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignPaused, paused.Status)
	assert.Equal(t, 1, queue.cancelled)
}

func TestCancelStopsUnsentEntries(t *testing.T) {
	queue := &fakeQueue{}
	svc, _ := newTestService(queue)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)
	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignCancelled, cancelled.Status)
	assert.Equal(t, 1, queue.cancelled)

	_, err = svc.Cancel(ctx, created.ID)
	assert.Equal(t, dErrors.CodeBusinessRule, dErrors.CodeOf(err))
}

func TestDeleteForbiddenWhileSending(t *testing.T) {
	queue := &fakeQueue{}
	svc, _ := newTestService(queue)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCampaign())
	require.NoError(t, err)
	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID)
	assert.Equal(t, dErrors.CodeBusinessRule, dErrors.CodeOf(err))

	_, err = svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}
