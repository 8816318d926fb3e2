// Package preferences implements lookup-or-create and partial merge over the
// per-user preference record.
package preferences

import (
	"context"

	"nightlife-sync/pkg/apperr"
	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/metrics"
	"nightlife-sync/pkg/models"
)

// Service validates requests and drives the Store.
type Service struct {
	store Store
	log   *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log.With("component", "preferences")}
}

// GetOrCreate returns the record for userID, creating it with defaults on
// first access. Concurrent first accesses converge on a single record.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*models.UserPreference, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, userID)
	if err == nil {
		metrics.PreferenceOps.WithLabelValues("get_or_create", "found").Inc()
		return p, nil
	}
	if !apperr.IsNotFound(err) {
		metrics.PreferenceOps.WithLabelValues("get_or_create", "error").Inc()
		return nil, err
	}

	def := models.DefaultPreferences(userID)
	err = s.store.Create(ctx, &def)
	switch {
	case err == nil:
		s.log.Info("Created default preferences", "user_id", userID)
		metrics.PreferenceOps.WithLabelValues("get_or_create", "created").Inc()
	case apperr.IsConflict(err):
		s.log.Debug("Preferences created concurrently, re-reading", "user_id", userID)
		metrics.PreferenceOps.WithLabelValues("get_or_create", "conflict").Inc()
	default:
		s.log.Error("Failed to create preferences", "user_id", userID, "error", err)
		metrics.PreferenceOps.WithLabelValues("get_or_create", "error").Inc()
		return nil, err
	}

	return s.store.Get(ctx, userID)
}

type mergeOptions struct {
	create bool
}

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

// CreateIfMissing lets Merge create a default record before overlaying the
// update instead of failing with NotFoundError.
func CreateIfMissing() MergeOption {
	return func(o *mergeOptions) {
		o.create = true
	}
}

// Merge validates update and overlays its present fields onto the stored
// record under a row lock. Nothing is written when validation fails.
func (s *Service) Merge(ctx context.Context, userID string, update models.PreferenceUpdate, opts ...MergeOption) (*models.UserPreference, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		metrics.PreferenceOps.WithLabelValues("merge", "invalid").Inc()
		return nil, err
	}

	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}

	p, err := s.store.Update(ctx, userID, o.create, update.ApplyTo)
	if err != nil {
		if apperr.IsNotFound(err) {
			metrics.PreferenceOps.WithLabelValues("merge", "not_found").Inc()
		} else {
			s.log.Error("Failed to merge preferences", "user_id", userID, "error", err)
			metrics.PreferenceOps.WithLabelValues("merge", "error").Inc()
		}
		return nil, err
	}

	metrics.PreferenceOps.WithLabelValues("merge", "ok").Inc()
	s.log.Info("Merged preferences", "user_id", userID)
	return p, nil
}

// Exists reports whether userID has a record.
func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return false, err
	}
	return s.store.Exists(ctx, userID)
}
