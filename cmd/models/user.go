package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name                  string    `gorm:"column:name;size:255;not null" json:"name"`
	Email                 string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash          string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role                  string    `gorm:"column:role;size:50;not null;default:user" json:"role"`
	EmailVerified         bool      `gorm:"column:email_verified;default:false" json:"email_verified"`
	EmailVerificationCode string    `gorm:"size:6" json:"-"`
	VerificationExpiry    time.Time `gorm:"" json:"-"`
	Refresh               string    `gorm:"column:refresh_token;size:255" json:"-"`
	RefreshTokenExpiredAt time.Time `gorm:"column:refresh_token_expired_at" json:"-"`

	ChefProfile *ChefProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"chef_profile,omitempty"`
}

type ChefProfile struct {
	gorm.Model
	UserID             uint    `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	ProfilePicturePath string  `gorm:"column:profile_picture_path;size:255" json:"profile_picture_path"`
	Experience         string  `gorm:"column:experience;type:text" json:"experience"`
	Expertise          string  `gorm:"column:expertise;size:255" json:"expertise"`
	Location           string  `gorm:"column:location;size:255" json:"location"`
	AverageRating      float64 `gorm:"column:average_rating;default:0" json:"average_rating"`
	TotalRatings       int     `gorm:"column:total_ratings;default:0" json:"total_ratings"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null"`
	Token     string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (ChefProfile) TableName() string {
	return "chef_profiles"
}
