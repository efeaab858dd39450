package models

import "github.com/google/uuid"

// Share grants one user read access to one photo.
type Share struct {
	BaseModel
	PhotoID  uuid.UUID `json:"photoID" gorm:"type:uuid;not null;uniqueIndex:idx_photo_recipient"`
	ToUserID uuid.UUID `json:"toUserID" gorm:"type:uuid;not null;index;uniqueIndex:idx_photo_recipient"`
	Photo    Photo     `json:"photo,omitempty" gorm:"foreignKey:PhotoID"`
}

func (Share) TableName() string {
	return "shares"
}
