package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ReservationStatus string // reservation lifecycle state

const (
	ReservationStatusPending   ReservationStatus = "pending"   // awaiting restaurant confirmation
	ReservationStatusConfirmed ReservationStatus = "confirmed" // holds the slot
	ReservationStatusCompleted ReservationStatus = "completed" // guest was seated, terminal
	ReservationStatusCancelled ReservationStatus = "cancelled" // released the slot, terminal
)

// ErrInvalidTransition is returned for a status move the lifecycle does not allow
var ErrInvalidTransition = errors.New("invalid reservation status transition")

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCancelled, ReservationStatusCompleted},
}

// ActiveReservationStatuses are the statuses that hold a slot
var ActiveReservationStatuses = []ReservationStatus{ReservationStatusPending, ReservationStatusConfirmed}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch status := ReservationStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCompleted, ReservationStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("unknown reservation status %q", s)
}

// IsActive reports whether a reservation in this status occupies its slot
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// IsTerminal reports whether no further transition is possible
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next if the move is legal; staying in place is a no-op
func (s ReservationStatus) TransitionTo(next ReservationStatus) (ReservationStatus, error) {
	if s == next {
		return s, nil
	}
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

type Reservation struct {
	ID              uint              `gorm:"primarykey" json:"id"`                                            // reservation ID
	RestaurantID    uint              `gorm:"not null;index" json:"restaurant_id"`                             // restaurant
	UserID          uint              `gorm:"not null;index" json:"user_id"`                                   // booking owner
	TableID         uint              `gorm:"not null;index" json:"table_id"`                                  // booked table
	Date            BookingDate       `gorm:"column:slot_date;type:varchar(10);not null;index" json:"date"`    // YYYY-MM-DD
	Time            SlotTime          `gorm:"column:slot_time;type:varchar(5);not null" json:"time"`           // HH:MM
	Guests          int               `gorm:"not null" json:"guests"`                                          // party size
	Occasion        string            `gorm:"type:varchar(50)" json:"occasion,omitempty"`                      // e.g. "Birthday"
	SpecialRequests string            `gorm:"type:text" json:"special_requests,omitempty"`                     // free text
	Status          ReservationStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`     // lifecycle state
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	Table      *Table      `gorm:"foreignKey:TableID" json:"table,omitempty"`
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// StartsAt is the slot start in loc
func (r Reservation) StartsAt(loc *time.Location) time.Time {
	return r.Date.At(r.Time, loc)
}

// IsUpcoming reports whether the slot is strictly after now
func (r Reservation) IsUpcoming(now time.Time) bool {
	return r.StartsAt(now.Location()).After(now)
}
