package repository

import (
	"testing"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestaurantRepository(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewRestaurantRepository(testDB)

	bistro := &model.Restaurant{
		Name:        "Harbour Bistro",
		CuisineType: "Seafood",
		Features:    []string{"Outdoor Seating", "Wi-Fi"},
	}
	require.NoError(t, repo.Create(bistro))
	require.NoError(t, repo.Create(&model.Restaurant{Name: "Nyama Choma Corner", CuisineType: "Grill"}))
	require.NoError(t, testDB.Create(&model.Table{RestaurantID: bistro.ID, TableNumber: "B1", Capacity: 4}).Error)

	t.Run("find by ID with tables", func(t *testing.T) {
		found, err := repo.FindByID(bistro.ID, true)
		require.NoError(t, err)
		assert.Len(t, found.Tables, 1)
		assert.Equal(t, []string{"Outdoor Seating", "Wi-Fi"}, []string(found.Features))
	})

	t.Run("search matches name or cuisine", func(t *testing.T) {
		found, err := repo.FindAll(RestaurantFilter{Search: "grill"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Nyama Choma Corner", found[0].Name)

		all, err := repo.FindAll(RestaurantFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("update", func(t *testing.T) {
		bistro.RequiresConfirmation = true
		require.NoError(t, repo.Update(bistro))

		found, err := repo.FindByID(bistro.ID, false)
		require.NoError(t, err)
		assert.True(t, found.RequiresConfirmation)
	})
}
