package models

import "gorm.io/gorm"

// Favorite bookmarks either a chef or a recipe for a user. Exactly one of
// ChefID or RecipeID is set.
type Favorite struct {
	gorm.Model
	UserID   uint  `gorm:"column:user_id;not null;index" json:"user_id"`
	ChefID   *uint `gorm:"column:chef_id" json:"chef_id,omitempty"`
	RecipeID *uint `gorm:"column:recipe_id" json:"recipe_id,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}
