package models

import "gorm.io/gorm"

type RecipeReview struct {
	gorm.Model
	RecipeID uint   `gorm:"column:recipe_id;not null;index" json:"recipe_id"`
	UserID   uint   `gorm:"column:user_id;not null" json:"user_id"`
	Rating   int    `gorm:"column:rating;not null" json:"rating"`
	Comment  string `gorm:"column:comment;type:text" json:"comment"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type ChefReview struct {
	gorm.Model
	ChefID  uint   `gorm:"column:chef_id;not null;index" json:"chef_id"`
	UserID  uint   `gorm:"column:user_id;not null" json:"user_id"`
	Rating  int    `gorm:"column:rating;not null" json:"rating"`
	Comment string `gorm:"column:comment;type:text" json:"comment"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (RecipeReview) TableName() string {
	return "recipe_reviews"
}

func (ChefReview) TableName() string {
	return "chef_reviews"
}
