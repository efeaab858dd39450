package services

import "errors"

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrNotOwner           = errors.New("group not found or you are not the owner")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyMember      = errors.New("user is already a member")
	ErrCannotRemoveOwner  = errors.New("cannot remove group owner")
	ErrMemberNotFound     = errors.New("member not found")
	ErrInvalidToken       = errors.New("invalid invite token")
	ErrInviteUsed         = errors.New("invite has already been used")
	ErrInviteExpired      = errors.New("invite has expired")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPhotoNotFound      = errors.New("photo not found")
)
