package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	bookingDateLayout = "2006-01-02"
	slotTimeLayout    = "15:04"
)

var (
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTime = errors.New("invalid time, expected HH:MM")
)

// BookingDate is a calendar day in YYYY-MM-DD form.
// The canonical form sorts lexicographically like the dates it names.
type BookingDate string

func ParseBookingDate(s string) (BookingDate, error) {
	t, err := time.Parse(bookingDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return BookingDate(t.Format(bookingDateLayout)), nil
}

// BookingDateOf returns the calendar day of t in t's location
func BookingDateOf(t time.Time) BookingDate {
	return BookingDate(t.Format(bookingDateLayout))
}

func (d BookingDate) String() string {
	return string(d)
}

// Before reports whether d is an earlier day than other
func (d BookingDate) Before(other BookingDate) bool {
	return d < other
}

// At combines the day with a slot start in loc
func (d BookingDate) At(slot SlotTime, loc *time.Location) time.Time {
	t, err := time.ParseInLocation(bookingDateLayout+" "+slotTimeLayout, string(d)+" "+string(slot), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SlotTime is a reservation start in 24h HH:MM form
type SlotTime string

var slotTimeInputLayouts = []string{slotTimeLayout, "15:04:05", "3:04 PM", "3:04PM"}

// ParseSlotTime accepts 24h ("18:30", "18:30:00") and 12h ("6:30 PM") labels
func ParseSlotTime(s string) (SlotTime, error) {
	in := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range slotTimeInputLayouts {
		if t, err := time.Parse(layout, in); err == nil {
			return SlotTime(t.Format(slotTimeLayout)), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

func SlotTimeOf(t time.Time) SlotTime {
	return SlotTime(t.Format(slotTimeLayout))
}

func (s SlotTime) String() string {
	return string(s)
}

// Label renders the slot the way the booking widget shows it, e.g. "6:30 PM"
func (s SlotTime) Label() string {
	t, err := time.Parse(slotTimeLayout, string(s))
	if err != nil {
		return string(s)
	}
	return t.Format("3:04 PM")
}
