package models

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupMembershipRole string

const (
	GroupRoleOwner  GroupMembershipRole = "owner"
	GroupRoleMember GroupMembershipRole = "member"
)

// ErrOwnerMembership is returned when something tries to delete the owner's
// membership row.
var ErrOwnerMembership = errors.New("owner membership cannot be removed")

type GroupMembership struct {
	BaseModel
	UserID  uuid.UUID           `json:"userID" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_group"`
	GroupID uuid.UUID           `json:"groupID" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_group"`
	Role    GroupMembershipRole `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	User    User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Group   Group               `json:"-" gorm:"foreignKey:GroupID"`
}

// BeforeDelete only sees loaded rows. Group deletion removes memberships with
// a bulk delete by group_id, which does not pass through this hook.
func (m *GroupMembership) BeforeDelete(_ *gorm.DB) error {
	if m.Role == GroupRoleOwner {
		return ErrOwnerMembership
	}
	return nil
}
