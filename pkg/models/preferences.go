package models

import (
	"time"

	"nightlife-sync/pkg/apperr"
	"nightlife-sync/pkg/validation"
)

type NotificationType string

const (
	NotificationAll     NotificationType = "all"
	NotificationFriends NotificationType = "friends"
	NotificationNone    NotificationType = "none"
)

type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

type DistanceUnit string

const (
	DistanceMiles      DistanceUnit = "mi"
	DistanceKilometers DistanceUnit = "km"
)

const (
	MinSearchRadiusMi     = 1
	MaxSearchRadiusMi     = 100
	DefaultSearchRadiusMi = 25
	DefaultLanguage       = "en"
)

// UserPreference is the per-user settings record. There is at most one per
// user, enforced by the unique index on user_id.
type UserPreference struct {
	ID                 uint             `json:"-" gorm:"primaryKey"`
	UserID             string           `json:"userId" gorm:"size:36;not null;uniqueIndex"`
	PushNotifications  bool             `json:"pushNotifications" gorm:"not null"`
	EmailNotifications bool             `json:"emailNotifications" gorm:"not null"`
	SMSNotifications   bool             `json:"smsNotifications" gorm:"column:sms_notifications;not null"`
	PlanReminders      bool             `json:"planReminders" gorm:"not null"`
	NotificationType   NotificationType `json:"notificationType" gorm:"size:16;not null"`
	ThemeMode          ThemeMode        `json:"themeMode" gorm:"size:16;not null"`
	DistanceUnit       DistanceUnit     `json:"distanceUnit" gorm:"size:8;not null"`
	Language           string           `json:"language" gorm:"size:35;not null"`
	AutoCheckin        bool             `json:"autoCheckin" gorm:"not null"`
	SearchRadiusMi     int              `json:"searchRadiusMi" gorm:"not null"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

func (UserPreference) TableName() string { return "user_preferences" }

// DefaultPreferences returns the record created on first access for userID.
func DefaultPreferences(userID string) UserPreference {
	return UserPreference{
		UserID:             userID,
		PushNotifications:  true,
		EmailNotifications: true,
		SMSNotifications:   false,
		PlanReminders:      true,
		NotificationType:   NotificationAll,
		ThemeMode:          ThemeSystem,
		DistanceUnit:       DistanceMiles,
		Language:           DefaultLanguage,
		AutoCheckin:        false,
		SearchRadiusMi:     DefaultSearchRadiusMi,
	}
}

// PreferenceUpdate is a partial update. Nil fields are absent and leave the
// stored value untouched.
type PreferenceUpdate struct {
	PushNotifications  *bool             `json:"pushNotifications,omitempty"`
	EmailNotifications *bool             `json:"emailNotifications,omitempty"`
	SMSNotifications   *bool             `json:"smsNotifications,omitempty"`
	PlanReminders      *bool             `json:"planReminders,omitempty"`
	NotificationType   *NotificationType `json:"notificationType,omitempty" validate:"omitempty,oneof=all friends none"`
	ThemeMode          *ThemeMode        `json:"themeMode,omitempty" validate:"omitempty,oneof=light dark system"`
	DistanceUnit       *DistanceUnit     `json:"distanceUnit,omitempty" validate:"omitempty,oneof=mi km"`
	Language           *string           `json:"language,omitempty" validate:"omitempty,max=35,bcp47_language_tag"`
	AutoCheckin        *bool             `json:"autoCheckin,omitempty"`
	SearchRadiusMi     *int              `json:"searchRadiusMi,omitempty" validate:"omitempty,min=1,max=100"`
}

// Validate checks every present field against its constraint.
func (u PreferenceUpdate) Validate() error {
	return validation.Struct(&u)
}

// IsEmpty reports whether no field is present.
func (u PreferenceUpdate) IsEmpty() bool {
	return u == PreferenceUpdate{}
}

// ApplyTo overlays the present fields onto p.
func (u PreferenceUpdate) ApplyTo(p *UserPreference) {
	if u.PushNotifications != nil {
		p.PushNotifications = *u.PushNotifications
	}
	if u.EmailNotifications != nil {
		p.EmailNotifications = *u.EmailNotifications
	}
	if u.SMSNotifications != nil {
		p.SMSNotifications = *u.SMSNotifications
	}
	if u.PlanReminders != nil {
		p.PlanReminders = *u.PlanReminders
	}
	if u.NotificationType != nil {
		p.NotificationType = *u.NotificationType
	}
	if u.ThemeMode != nil {
		p.ThemeMode = *u.ThemeMode
	}
	if u.DistanceUnit != nil {
		p.DistanceUnit = *u.DistanceUnit
	}
	if u.Language != nil {
		p.Language = *u.Language
	}
	if u.AutoCheckin != nil {
		p.AutoCheckin = *u.AutoCheckin
	}
	if u.SearchRadiusMi != nil {
		p.SearchRadiusMi = *u.SearchRadiusMi
	}
}

// ValidateUserID rejects an empty user key.
func ValidateUserID(userID string) error {
	if userID == "" {
		return apperr.NewValidation("userId", "is required")
	}
	return nil
}
