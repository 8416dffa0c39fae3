package service

import (
	"errors"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
)

// AdminUserInput is what an admin may change on any account
type AdminUserInput struct {
	ProfileInput
	IsAdmin    *bool
	IsVerified *bool
}

// UserService backs the admin user console
type UserService interface {
	List() ([]model.User, error)
	Get(id uint) (*model.User, error)
	Update(id uint, input AdminUserInput) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List() ([]model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *userService) Get(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) Update(id uint, input AdminUserInput) (*model.User, error) {
	logger.Info("Admin updating user", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	unique := func(selfID uint, username, email string) error {
		return ensureUniqueUser(s.userRepo, selfID, username, email)
	}
	if err := applyProfileChanges(user, input.ProfileInput, unique); err != nil {
		return nil, err
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}
	if input.IsVerified != nil {
		user.IsVerified = *input.IsVerified
		if user.IsVerified {
			user.VerificationToken = ""
			user.VerificationExpires = nil
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("User updated by admin", map[string]interface{}{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
	})
	return user, nil
}
