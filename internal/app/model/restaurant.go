package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                              // restaurant ID
	Name                 string         `gorm:"not null" json:"name"`                              // display name
	Description          string         `gorm:"type:text" json:"description"`                      // about text
	Address              string         `gorm:"type:text" json:"address"`                          // street address
	Phone                string         `gorm:"type:varchar(30)" json:"phone"`                     // contact number
	Email                string         `json:"email"`                                             // contact email
	OpeningTime          string         `gorm:"type:varchar(5)" json:"opening_time"`               // e.g. "07:00"
	ClosingTime          string         `gorm:"type:varchar(5)" json:"closing_time"`               // e.g. "22:00"
	CuisineType          string         `gorm:"type:varchar(50)" json:"cuisine_type"`              // e.g. "Street Food"
	PriceRange           string         `gorm:"type:varchar(10)" json:"price_range"`               // e.g. "$$"
	ImageURL             string         `json:"image_url"`                                         // cover image
	Features             pq.StringArray `gorm:"type:text" json:"features"`                         // e.g. {"Outdoor Seating","Wi-Fi"}
	Rating               float64        `gorm:"type:decimal(2,1);default:0" json:"rating"`         // 0.0 - 5.0
	RequiresConfirmation bool           `gorm:"default:false" json:"requires_confirmation"`        // new reservations start pending
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Tables []Table `gorm:"foreignKey:RestaurantID" json:"tables,omitempty"` // seating layout
}

func (Restaurant) TableName() string {
	return "restaurants"
}

// InitialReservationStatus is the status a new booking at this restaurant starts in
func (r Restaurant) InitialReservationStatus() ReservationStatus {
	if r.RequiresConfirmation {
		return ReservationStatusPending
	}
	return ReservationStatusConfirmed
}
