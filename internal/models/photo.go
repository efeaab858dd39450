package models

import "github.com/google/uuid"

type Photo struct {
	BaseModel
	OwnerID      uuid.UUID `json:"ownerID" gorm:"type:uuid;not null;index"`
	OriginalName string    `json:"originalName" gorm:"type:varchar(255);not null"`
	StoragePath  string    `json:"-" gorm:"type:text;not null"`
	MimeType     string    `json:"mimeType" gorm:"type:varchar(100);not null"`
	Size         int64     `json:"size" gorm:"not null"`
	Owner        *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
