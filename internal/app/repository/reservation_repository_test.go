package repository

import (
	"testing"
	"time"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReservationTest(t *testing.T) (*gorm.DB, ReservationRepository, *model.Restaurant, []model.Table) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	restaurant, tables := seedFloor(t, testDB, 2, 4)
	return testDB, NewReservationRepository(testDB), restaurant, tables
}

func TestReservationRepository_CreateRejectsSecondActiveBooking(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	first := &model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID, UserID: 1,
		Date: "2025-04-20", Time: "19:00", Guests: 2, Status: model.ReservationStatusConfirmed,
	}
	require.NoError(t, repo.Create(first))
	assert.NotZero(t, first.ID)

	dup := *first
	dup.ID = 0
	dup.UserID = 2
	dup.Status = model.ReservationStatusPending
	assert.ErrorIs(t, repo.Create(&dup), ErrDuplicateKey)
}

func TestReservationRepository_HasActiveReservation(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	held := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-20", Time: "19:00", Status: model.ReservationStatusConfirmed,
	})
	seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[1].ID,
		Date: "2025-04-20", Time: "19:00", Status: model.ReservationStatusCancelled,
	})

	tests := []struct {
		name      string
		tableID   uint
		slot      model.SlotTime
		excludeID uint
		want      bool
	}{
		{name: "held slot", tableID: tables[0].ID, slot: "19:00", want: true},
		{name: "held slot excluding itself", tableID: tables[0].ID, slot: "19:00", excludeID: held.ID, want: false},
		{name: "other time", tableID: tables[0].ID, slot: "19:30", want: false},
		{name: "cancelled only", tableID: tables[1].ID, slot: "19:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken, err := repo.HasActiveReservation(restaurant.ID, tt.tableID, "2025-04-20", tt.slot, tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, taken)
		})
	}
}

func TestReservationRepository_FindByUserIDAndID(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	later := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID, UserID: 7,
		Date: "2025-04-21", Time: "12:00", Status: model.ReservationStatusConfirmed,
	})
	earlier := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[1].ID, UserID: 7,
		Date: "2025-04-20", Time: "19:00", Status: model.ReservationStatusCancelled,
	})
	seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[1].ID, UserID: 8,
		Date: "2025-04-20", Time: "20:00", Status: model.ReservationStatusConfirmed,
	})

	reservations, err := repo.FindByUserID(7)
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, earlier.ID, reservations[0].ID)
	assert.Equal(t, later.ID, reservations[1].ID)

	found, err := repo.FindByID(later.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Table)
	require.NotNil(t, found.Restaurant)
	assert.Equal(t, tables[0].TableNumber, found.Table.TableNumber)
	assert.Equal(t, restaurant.Name, found.Restaurant.Name)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReservationRepository_FindAll(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	otherRestaurant, otherTables := seedFloor(t, testDB, 4)

	seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-20", Time: "19:00", Status: model.ReservationStatusConfirmed,
	})
	seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-21", Time: "19:00", Status: model.ReservationStatusConfirmed,
	})
	seedReservation(t, testDB, model.Reservation{
		RestaurantID: otherRestaurant.ID, TableID: otherTables[0].ID,
		Date: "2025-04-20", Time: "18:00", Status: model.ReservationStatusPending,
	})

	date := model.BookingDate("2025-04-20")
	rid := restaurant.ID

	tests := []struct {
		name   string
		filter ReservationFilter
		want   int
	}{
		{name: "no filter", filter: ReservationFilter{}, want: 3},
		{name: "by date", filter: ReservationFilter{Date: &date}, want: 2},
		{name: "by restaurant", filter: ReservationFilter{RestaurantID: &rid}, want: 2},
		{name: "by date and restaurant", filter: ReservationFilter{Date: &date, RestaurantID: &rid}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reservations, err := repo.FindAll(tt.filter)
			require.NoError(t, err)
			assert.Len(t, reservations, tt.want)
		})
	}

	t.Run("unfiltered listing is newest first", func(t *testing.T) {
		reservations, err := repo.FindAll(ReservationFilter{})
		require.NoError(t, err)
		assert.Equal(t, model.BookingDate("2025-04-21"), reservations[0].Date)
	})
}

func TestReservationRepository_FindAll_Cap(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first := model.BookingDateOf(start)
	for i := 0; i <= defaultListLimit; i++ {
		seedReservation(t, testDB, model.Reservation{
			RestaurantID: restaurant.ID, TableID: tables[0].ID,
			Date: model.BookingDateOf(start.AddDate(0, 0, i)), Time: "19:00", Status: model.ReservationStatusConfirmed,
		})
	}

	capped, err := repo.FindAll(ReservationFilter{})
	require.NoError(t, err)
	assert.Len(t, capped, defaultListLimit)
	assert.NotEqual(t, first, capped[len(capped)-1].Date, "the oldest row falls outside the cap")

	all, err := repo.FindAll(ReservationFilter{All: true})
	require.NoError(t, err)
	require.Len(t, all, defaultListLimit+1)
	assert.Equal(t, first, all[0].Date, "uncapped listings run oldest first")
}

func TestReservationRepository_FindForUpdate(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	held := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-20", Time: "19:00", Status: model.ReservationStatusConfirmed,
	})

	err := testDB.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).FindForUpdate(held.ID)
		require.NoError(t, err)
		assert.Equal(t, held.ID, locked.ID)
		assert.Equal(t, model.ReservationStatusConfirmed, locked.Status)
		assert.Nil(t, locked.Table)
		return nil
	})
	require.NoError(t, err)

	_, err = repo.FindForUpdate(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReservationRepository_CompleteStartedBefore(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	yesterday := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-19", Time: "20:00", Status: model.ReservationStatusConfirmed,
	})
	earlierToday := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-20", Time: "12:00", Status: model.ReservationStatusConfirmed,
	})
	laterToday := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-20", Time: "19:00", Status: model.ReservationStatusConfirmed,
	})
	pending := seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[1].ID,
		Date: "2025-04-19", Time: "20:00", Status: model.ReservationStatusPending,
	})

	count, err := repo.CompleteStartedBefore("2025-04-20", "15:00")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	expect := map[uint]model.ReservationStatus{
		yesterday.ID:    model.ReservationStatusCompleted,
		earlierToday.ID: model.ReservationStatusCompleted,
		laterToday.ID:   model.ReservationStatusConfirmed,
		pending.ID:      model.ReservationStatusPending,
	}
	for id, status := range expect {
		found, err := repo.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, status, found.Status, "reservation %d", id)
	}
}

func TestReservationRepository_CountActiveForTableFrom(t *testing.T) {
	testDB, repo, restaurant, tables := setupReservationTest(t)
	defer db.CleanupTestDB(testDB)

	seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-19", Time: "20:00", Status: model.ReservationStatusConfirmed,
	})
	seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-22", Time: "20:00", Status: model.ReservationStatusPending,
	})
	seedReservation(t, testDB, model.Reservation{
		RestaurantID: restaurant.ID, TableID: tables[0].ID,
		Date: "2025-04-23", Time: "20:00", Status: model.ReservationStatusCancelled,
	})

	count, err := repo.CountActiveForTableFrom(tables[0].ID, "2025-04-20")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
