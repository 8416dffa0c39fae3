package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type TableStatus string // operational flag of a physical table

const (
	TableStatusAvailable   TableStatus = "available"   // bookable
	TableStatusReserved    TableStatus = "reserved"    // informational only, still bookable per slot
	TableStatusMaintenance TableStatus = "maintenance" // out of service, never offered
)

// ParseTableStatus rejects anything outside the closed set
func ParseTableStatus(s string) (TableStatus, error) {
	switch status := TableStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case TableStatusAvailable, TableStatusReserved, TableStatusMaintenance:
		return status, nil
	}
	return "", fmt.Errorf("unknown table status %q", s)
}

type Table struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                  // table ID
	RestaurantID uint           `gorm:"not null;index" json:"restaurant_id"`                   // owning restaurant
	TableNumber  string         `gorm:"type:varchar(20);not null" json:"table_number"`         // label shown to guests
	Capacity     int            `gorm:"not null" json:"capacity"`                              // max guests
	Location     string         `gorm:"type:varchar(50)" json:"location"`                      // e.g. "window", "patio"
	Status       TableStatus    `gorm:"type:varchar(20);default:'available'" json:"status"`    // operational flag
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
}

func (Table) TableName() string {
	return "tables"
}

// Bookable reports whether the table may be offered at all
func (t Table) Bookable() bool {
	return t.Status != TableStatusMaintenance
}
