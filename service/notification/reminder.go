package notification

import (
	"log"
	"time"

	"github.com/recipemania/recipe-mania-server/cmd/models"
	"gorm.io/gorm"
)

// ReminderJob emails users about confirmed bookings starting within the
// next 24 hours. It runs from the cron schedule wired up in main.
type ReminderJob struct {
	db *gorm.DB
}

func NewReminderJob(db *gorm.DB) *ReminderJob {
	return &ReminderJob{db: db}
}

func (j *ReminderJob) Run() {
	now := time.Now().UTC()
	today := now.Format("2006-01-02")
	tomorrow := now.Add(24 * time.Hour).Format("2006-01-02")

	var bookings []models.Booking
	if err := j.db.Where("status = ? AND booking_date IN ?",
		models.BookingStatusConfirmed, []string{today, tomorrow}).
		Preload("User").Preload("Chef").Find(&bookings).Error; err != nil {
		log.Printf("Reminder job: error loading bookings: %v", err)
		return
	}

	for _, booking := range bookings {
		if booking.User == nil || booking.Chef == nil {
			continue
		}

		start, err := time.Parse("2006-01-02 15:04:05", booking.BookingDate+" "+booking.StartTime)
		if err != nil || start.Before(now) || start.After(now.Add(24*time.Hour)) {
			continue
		}

		details := BookingDetails{
			UserName:  booking.User.Name,
			ChefName:  booking.Chef.Name,
			Date:      booking.BookingDate,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
		}
		if err := SendBookingReminder(booking.User.Email, details); err != nil {
			log.Printf("Reminder job: error sending reminder for booking %d: %v", booking.ID, err)
		}
	}
}
