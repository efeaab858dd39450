package models

import (
	"time"

	"github.com/google/uuid"
)

type GroupInvite struct {
	BaseModel
	Token       string     `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
	GroupID     uuid.UUID  `json:"groupID" gorm:"type:uuid;not null;index"`
	Email       *string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	InvitedByID uuid.UUID  `json:"invitedByID" gorm:"type:uuid;not null;index"`
	ExpiresAt   time.Time  `json:"expiresAt" gorm:"not null"`
	Used        bool       `json:"used" gorm:"not null;default:false"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
	UsedByID    *uuid.UUID `json:"usedByID,omitempty" gorm:"type:uuid"`
	Group       Group      `json:"-" gorm:"foreignKey:GroupID"`
}

func (i *GroupInvite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// UsedBy reports whether the invite was consumed by userID.
func (i *GroupInvite) UsedBy(userID uuid.UUID) bool {
	return i.Used && i.UsedByID != nil && *i.UsedByID == userID
}
