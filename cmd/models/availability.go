package models

import "gorm.io/gorm"

// Availability is a contiguous block of time a chef has opened for booking.
// Date and times are stored as UTC strings (ISO date, HH:MM:SS) because
// the matching queries compare date and time-of-day independently.
type Availability struct {
	gorm.Model
	ChefID        uint     `gorm:"column:chef_id;not null;index:idx_chef_date" json:"chef_id"`
	AvailableDate string   `gorm:"column:available_date;type:date;not null;index:idx_chef_date" json:"available_date"`
	StartTime     string   `gorm:"column:start_time;type:time;not null" json:"start_time"`
	EndTime       string   `gorm:"column:end_time;type:time;not null" json:"end_time"`
	OnlineRate    *float64 `gorm:"column:online_rate" json:"online_rate,omitempty"`
	OfflineRate   *float64 `gorm:"column:offline_rate" json:"offline_rate,omitempty"`
	Timezone      string   `gorm:"column:timezone;size:50;default:UTC" json:"timezone"`

	Chef *User `gorm:"foreignKey:ChefID" json:"-"`
}

func (Availability) TableName() string {
	return "chef_availability"
}
