package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                 // user ID
	Username             string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"` // login name
	Email                string         `gorm:"uniqueIndex;not null" json:"email"`                    // email (also accepted as login)
	PasswordHash         string         `gorm:"not null" json:"-"`                                    // bcrypt hash
	Name                 string         `json:"name"`                                                 // display name
	Phone                string         `gorm:"type:varchar(30)" json:"phone"`                        // contact number
	IsAdmin              bool           `gorm:"default:false" json:"is_admin"`                        // admin console access
	IsVerified           bool           `gorm:"default:false" json:"is_verified"`                     // email verified
	VerificationToken    string         `gorm:"type:varchar(64);index" json:"-"`                      // email verification token
	VerificationExpires  *time.Time     `json:"-"`                                                    // verification token expiry
	ResetPasswordToken   string         `gorm:"type:varchar(64);index" json:"-"`                      // password reset token
	ResetPasswordExpires *time.Time     `json:"-"`                                                    // reset token expiry
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
