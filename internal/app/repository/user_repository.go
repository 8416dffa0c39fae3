package repository

import (
	"errors"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByVerificationToken(token string) (*model.User, error)
	FindByResetToken(token string) (*model.User, error)
	FindAll() ([]model.User, error)
	Update(user *model.User) error
	Delete(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"username": user.Username,
			"email":    user.Email,
		})
		return translateError(err)
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	logger.Debug("User found by ID in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	return r.findOne("email", email)
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	return r.findOne("username", username)
}

func (r *userRepository) FindByVerificationToken(token string) (*model.User, error) {
	return r.findOne("verification_token", token)
}

func (r *userRepository) FindByResetToken(token string) (*model.User, error) {
	return r.findOne("reset_password_token", token)
}

// findOne looks a user up by a single unique column; column is never user input
func (r *userRepository) findOne(column, value string) (*model.User, error) {
	logger.Debug("Finding user in database", map[string]interface{}{
		"by": column,
	})

	var user model.User
	if err := r.db.Where(column+" = ?", value).First(&user).Error; err != nil {
		// not found is an expected outcome for lookups by credential
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user in database", err, map[string]interface{}{
				"by": column,
			})
		}
		return nil, err
	}

	logger.Debug("User found in database", map[string]interface{}{
		"user_id": user.ID,
		"by":      column,
	})
	return &user, nil
}

func (r *userRepository) FindAll() ([]model.User, error) {
	logger.Debug("Listing users in database")

	var users []model.User
	if err := r.db.Order("created_at DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users in database", err)
		return nil, err
	}

	logger.Debug("Users listed in database", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return translateError(err)
	}

	logger.Debug("User updated in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	logger.Debug("User deleted from database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}
