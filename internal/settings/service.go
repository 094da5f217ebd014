package settings

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"treasurehunt/internal/settings/models"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/sentinel"
)

// Well-known setting keys.
const (
	KeyRegistrationOpen   = "registration_open"
	KeyMaxTeamSize        = "max_team_size"
	KeyContactEmail       = "contact_email"
	KeyConfirmationWindow = "confirmation_window"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_.]{1,62}[a-z0-9]$`)

// Service reads and writes settings. The typed getters never fail: a
// missing row or an unparseable value falls back to the caller's default.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetString returns the raw value or def when the key is absent.
func (s *Service) GetString(ctx context.Context, key, def string) string {
	setting, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.Warn("setting read failed", "key", key, "error", err)
		}
		return def
	}
	return setting.Value
}

// GetInt parses the value as an integer, falling back to def.
func (s *Service) GetInt(ctx context.Context, key string, def int) int {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("setting is not an integer", "key", key, "value", raw)
		return def
	}
	return n
}

// GetBool parses the value with strconv.ParseBool, falling back to def.
func (s *Service) GetBool(ctx context.Context, key string, def bool) bool {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("setting is not a boolean", "key", key, "value", raw)
		return def
	}
	return b
}

// GetDuration parses the value with time.ParseDuration, falling back to def.
func (s *Service) GetDuration(ctx context.Context, key string, def time.Duration) time.Duration {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		s.logger.Warn("setting is not a duration", "key", key, "value", raw)
		return def
	}
	return d
}

// Get returns one setting row.
func (s *Service) Get(ctx context.Context, key string) (*models.AppSetting, error) {
	setting, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "setting %q not found", key)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get setting")
	}
	return setting, nil
}

// Set writes a setting. Keys are lowercase snake case, 3 to 64 characters.
func (s *Service) Set(ctx context.Context, key, value string) (*models.AppSetting, error) {
	if !keyPattern.MatchString(key) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "setting key %q is invalid", key)
	}
	setting, err := s.store.Set(ctx, key, value)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "set setting")
	}
	s.logger.Info("setting updated", "key", key)
	return setting, nil
}

// List returns all settings ordered by key.
func (s *Service) List(ctx context.Context) ([]*models.AppSetting, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list settings")
	}
	return out, nil
}

// Delete removes a setting, returning reads to their defaults.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "setting %q not found", key)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete setting")
	}
	s.logger.Info("setting deleted", "key", key)
	return nil
}
