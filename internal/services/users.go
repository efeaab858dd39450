package services

import (
	"context"
	"errors"

	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type NewUser struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Password   string
	SelfiePath string
}

func (s *UserService) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

// Register stores a new account. A concurrent registration for the same
// email loses on the unique index and is reported as ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, in NewUser) (*models.User, error) {
	taken, err := s.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		BaseModel:    models.BaseModel{ID: in.ID},
		Email:        models.NormalizeEmail(in.Email),
		Name:         in.Name,
		PasswordHash: hash,
		SelfiePath:   in.SelfiePath,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if taken, checkErr := s.EmailTaken(ctx, in.Email); checkErr == nil && taken {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "email = ?", models.NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
