package repository

import (
	"testing"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedFloor creates a restaurant with tables of the given capacities
func seedFloor(t *testing.T, testDB *gorm.DB, capacities ...int) (*model.Restaurant, []model.Table) {
	t.Helper()

	restaurant := &model.Restaurant{Name: "Test Bistro", OpeningTime: "07:00", ClosingTime: "22:00"}
	require.NoError(t, testDB.Create(restaurant).Error)

	tables := make([]model.Table, 0, len(capacities))
	for i, capacity := range capacities {
		table := model.Table{
			RestaurantID: restaurant.ID,
			TableNumber:  "T" + string(rune('1'+i)),
			Capacity:     capacity,
			Status:       model.TableStatusAvailable,
		}
		require.NoError(t, testDB.Create(&table).Error)
		tables = append(tables, table)
	}
	return restaurant, tables
}

func seedReservation(t *testing.T, testDB *gorm.DB, r model.Reservation) *model.Reservation {
	t.Helper()

	if r.UserID == 0 {
		r.UserID = 1
	}
	if r.Guests == 0 {
		r.Guests = 2
	}
	require.NoError(t, testDB.Create(&r).Error)
	return &r
}
