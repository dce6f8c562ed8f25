package models

import "gorm.io/gorm"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	ServiceTypeOnline  = "online"
	ServiceTypeOffline = "offline"
)

// Booking reserves a sub-window of exactly one availability slot. The rate
// is frozen at creation time from the slot's rate for the chosen service type.
type Booking struct {
	gorm.Model
	UserID          uint    `gorm:"column:user_id;not null;index" json:"user_id"`
	ChefID          uint    `gorm:"column:chef_id;not null;index" json:"chef_id"`
	BookingDate     string  `gorm:"column:booking_date;type:date;not null" json:"booking_date"`
	StartTime       string  `gorm:"column:start_time;type:time;not null" json:"start_time"`
	EndTime         string  `gorm:"column:end_time;type:time;not null" json:"end_time"`
	ServiceType     string  `gorm:"column:service_type;size:20;not null" json:"service_type"`
	Rate            float64 `gorm:"column:rate;not null" json:"rate"`
	Status          string  `gorm:"column:status;size:20;not null;default:pending" json:"status"`
	PaymentIntentID string  `gorm:"column:payment_intent_id;size:255" json:"payment_intent_id,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Chef *User `gorm:"foreignKey:ChefID" json:"chef,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}
