package models

import "strings"

type User struct {
	BaseModel
	Email            string            `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name             string            `json:"name" gorm:"type:varchar(150);not null"`
	PasswordHash     string            `json:"-" gorm:"type:text;not null"`
	SelfiePath       string            `json:"-" gorm:"type:text"`
	GroupMemberships []GroupMembership `json:"-" gorm:"foreignKey:UserID"`
	Photos           []Photo           `json:"-" gorm:"foreignKey:OwnerID"`
}

// NormalizeEmail trims surrounding whitespace. Case is kept: emails are
// stored and matched exactly as entered.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
