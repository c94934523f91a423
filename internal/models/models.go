package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	GoogleID string `gorm:"index" json:"-"`

	// Google OAuth session, used for Gmail access.
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenType    string    `json:"-"`
	TokenExpiry  time.Time `json:"-"`

	// Gmail history bookmark for incremental sync.
	LastHistoryID uint64 `json:"-"`
}

// HasGmailAccess reports whether a Google token is stored for the user.
func (u *User) HasGmailAccess() bool {
	return u.RefreshToken != "" || u.AccessToken != ""
}

type Application struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Company     string                     `gorm:"not null" json:"company"`
	Position    string                     `gorm:"not null" json:"position"`
	Location    string                     `json:"location,omitempty"`
	Status      Status                     `gorm:"type:varchar(20);default:'applied'" json:"status"`
	JobType     JobType                    `gorm:"type:varchar(20)" json:"jobType"`
	AppliedDate Date                       `json:"appliedDate"`
	LastUpdated Date                       `json:"lastUpdated"`
	Salary      *float64                   `json:"salary,omitempty"`
	JobURL      string                     `json:"jobUrl,omitempty"`
	Notes       string                     `gorm:"type:text" json:"notes,omitempty"`
	Skills      datatypes.JSONSlice[Skill] `json:"skills"`
	Stages      datatypes.JSONSlice[Stage] `json:"stages"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ApplicationEvent is an audit row written on every status change.
type ApplicationEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	ApplicationID string    `gorm:"type:varchar(36);index" json:"applicationId"`
	EventType     string    `json:"eventType"`
	FromStatus    Status    `gorm:"type:varchar(20)" json:"fromStatus"`
	ToStatus      Status    `gorm:"type:varchar(20)" json:"toStatus"`
	Details       string    `gorm:"type:text" json:"details"`
}

const (
	EventStatusChange = "STATUS_CHANGE"
	EventEmailUpdate  = "EMAIL_UPDATE"
)

type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`

	FullName string                     `json:"fullName"`
	Headline string                     `json:"headline"`
	Location string                     `json:"location"`
	Phone    string                     `json:"phone"`
	Bio      string                     `gorm:"type:text" json:"bio"`
	Website  string                     `json:"website"`
	LinkedIn string                     `json:"linkedin"`
	GitHub   string                     `json:"github"`
	Skills   datatypes.JSONSlice[Skill] `json:"skills"`
}

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	UserID    uint   `gorm:"primaryKey"`
	CreatedAt time.Time
}
