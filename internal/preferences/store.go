package preferences

import (
	"context"
	"errors"

	"nightlife-sync/pkg/apperr"
	"nightlife-sync/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const resource = "preferences"

// Store is the keyed persistence the Service runs on.
type Store interface {
	// Get returns *apperr.NotFoundError when userID has no record.
	Get(ctx context.Context, userID string) (*models.UserPreference, error)
	// Create inserts p unless a record for p.UserID exists, in which case it
	// returns *apperr.ConflictError.
	Create(ctx context.Context, p *models.UserPreference) error
	Exists(ctx context.Context, userID string) (bool, error)
	// Update locks the row for userID, calls apply and persists the result in
	// one transaction. With create set, a default row is inserted first when
	// none exists.
	Update(ctx context.Context, userID string, create bool, apply func(*models.UserPreference)) (*models.UserPreference, error)
}

// GormStore implements Store on the user_preferences table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the table and its unique index. Production schemas come
// from pkg/postgres migrations; tests use this.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&models.UserPreference{})
}

var onUserConflictDoNothing = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}},
	DoNothing: true,
}

func (s *GormStore) Get(ctx context.Context, userID string) (*models.UserPreference, error) {
	var row models.UserPreference
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Resource: resource, Key: userID}
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) Create(ctx context.Context, p *models.UserPreference) error {
	res := s.db.WithContext(ctx).Clauses(onUserConflictDoNothing).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return &apperr.ConflictError{Resource: resource, Key: p.UserID, Err: res.Error}
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperr.ConflictError{Resource: resource, Key: p.UserID}
	}
	return nil
}

func (s *GormStore) Exists(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.UserPreference{}).Where("user_id = ?", userID).Count(&n).Error
	return n > 0, err
}

func (s *GormStore) Update(ctx context.Context, userID string, create bool, apply func(*models.UserPreference)) (*models.UserPreference, error) {
	var row models.UserPreference
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if create {
			def := models.DefaultPreferences(userID)
			if err := tx.Clauses(onUserConflictDoNothing).Create(&def).Error; err != nil {
				return err
			}
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Resource: resource, Key: userID}
		}
		if err != nil {
			return err
		}

		apply(&row)
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}
