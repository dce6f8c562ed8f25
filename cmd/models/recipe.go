package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Recipe struct {
	gorm.Model
	ChefID      uint           `gorm:"column:chef_id;not null;index" json:"chef_id"`
	Title       string         `gorm:"column:title;size:255;not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	CategoryID  uint           `gorm:"column:category_id;index" json:"category_id"`
	Tags        pq.StringArray `gorm:"type:text[];column:tags" json:"tags,omitempty"`

	Chef        *User        `gorm:"foreignKey:ChefID" json:"chef,omitempty"`
	Ingredients []Ingredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;" json:"ingredients,omitempty"`
	Steps       []Step       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;" json:"steps,omitempty"`
}

type Ingredient struct {
	gorm.Model
	RecipeID uint   `gorm:"column:recipe_id;not null;index" json:"recipe_id"`
	Name     string `gorm:"column:name;size:255;not null" json:"name"`
	Quantity string `gorm:"column:quantity;size:100" json:"quantity"`
}

type Step struct {
	gorm.Model
	RecipeID    uint   `gorm:"column:recipe_id;not null;index" json:"recipe_id"`
	StepNumber  int    `gorm:"column:step_number;not null" json:"step_number"`
	Description string `gorm:"column:description;type:text;not null" json:"description"`
}

func (Recipe) TableName() string {
	return "recipes"
}
