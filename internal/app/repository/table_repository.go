package repository

import (
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeStatuses are the reservation statuses that hold a slot
var activeStatuses = []string{
	string(model.ReservationStatusPending),
	string(model.ReservationStatusConfirmed),
}

// AvailabilityFilter selects tables free at one slot
type AvailabilityFilter struct {
	RestaurantID uint
	Date         model.BookingDate
	Time         model.SlotTime
	Guests       int
}

type TableRepository interface {
	Create(table *model.Table) error
	Update(table *model.Table) error
	Delete(id uint) error
	FindByID(id uint) (*model.Table, error)
	FindByRestaurantID(restaurantID uint) ([]model.Table, error)
	FindForUpdate(restaurantID, id uint) (*model.Table, error)
	FindAvailable(filter AvailabilityFilter) ([]model.Table, error)
	WithTx(tx *gorm.DB) TableRepository
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) WithTx(tx *gorm.DB) TableRepository {
	return &tableRepository{db: tx}
}

func (r *tableRepository) Create(table *model.Table) error {
	logger.Debug("Creating table in database", map[string]interface{}{
		"restaurant_id": table.RestaurantID,
		"table_number":  table.TableNumber,
		"capacity":      table.Capacity,
	})

	if err := r.db.Create(table).Error; err != nil {
		logger.Error("Failed to create table in database", err, map[string]interface{}{
			"restaurant_id": table.RestaurantID,
			"table_number":  table.TableNumber,
		})
		return translateError(err)
	}

	logger.Debug("Table created in database", map[string]interface{}{
		"table_id":      table.ID,
		"restaurant_id": table.RestaurantID,
	})
	return nil
}

func (r *tableRepository) Update(table *model.Table) error {
	logger.Debug("Updating table in database", map[string]interface{}{
		"table_id": table.ID,
		"status":   table.Status,
	})

	if err := r.db.Omit("Restaurant").Save(table).Error; err != nil {
		logger.Error("Failed to update table in database", err, map[string]interface{}{
			"table_id": table.ID,
		})
		return translateError(err)
	}

	logger.Debug("Table updated in database", map[string]interface{}{
		"table_id": table.ID,
	})
	return nil
}

func (r *tableRepository) Delete(id uint) error {
	logger.Debug("Deleting table from database", map[string]interface{}{
		"table_id": id,
	})

	if err := r.db.Delete(&model.Table{}, id).Error; err != nil {
		logger.Error("Failed to delete table from database", err, map[string]interface{}{
			"table_id": id,
		})
		return err
	}

	logger.Debug("Table deleted from database", map[string]interface{}{
		"table_id": id,
	})
	return nil
}

func (r *tableRepository) FindByID(id uint) (*model.Table, error) {
	logger.Debug("Finding table by ID in database", map[string]interface{}{
		"table_id": id,
	})

	var table model.Table
	if err := r.db.First(&table, id).Error; err != nil {
		logger.Error("Failed to find table by ID in database", err, map[string]interface{}{
			"table_id": id,
		})
		return nil, err
	}

	logger.Debug("Table found by ID in database", map[string]interface{}{
		"table_id":      table.ID,
		"restaurant_id": table.RestaurantID,
	})
	return &table, nil
}

func (r *tableRepository) FindByRestaurantID(restaurantID uint) ([]model.Table, error) {
	logger.Debug("Finding tables by restaurant ID in database", map[string]interface{}{
		"restaurant_id": restaurantID,
	})

	var tables []model.Table
	if err := r.db.Where("restaurant_id = ?", restaurantID).
		Order("capacity ASC, id ASC").
		Find(&tables).Error; err != nil {
		logger.Error("Failed to find tables by restaurant ID in database", err, map[string]interface{}{
			"restaurant_id": restaurantID,
		})
		return nil, err
	}

	logger.Debug("Tables found by restaurant ID in database", map[string]interface{}{
		"restaurant_id": restaurantID,
		"count":         len(tables),
	})
	return tables, nil
}

// FindForUpdate loads the table with a row lock held until the surrounding transaction ends.
// The lock serializes writers booking the same table.
func (r *tableRepository) FindForUpdate(restaurantID, id uint) (*model.Table, error) {
	logger.Debug("Locking table in database", map[string]interface{}{
		"table_id":      id,
		"restaurant_id": restaurantID,
	})

	var table model.Table
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		First(&table).Error; err != nil {
		logger.Error("Failed to lock table in database", err, map[string]interface{}{
			"table_id":      id,
			"restaurant_id": restaurantID,
		})
		return nil, err
	}

	return &table, nil
}

// FindAvailable returns bookable tables seating filter.Guests with no active reservation at the slot,
// smallest first.
func (r *tableRepository) FindAvailable(filter AvailabilityFilter) ([]model.Table, error) {
	logger.Debug("Finding available tables in database", map[string]interface{}{
		"restaurant_id": filter.RestaurantID,
		"date":          filter.Date,
		"time":          filter.Time,
		"guests":        filter.Guests,
	})

	booked := r.db.Model(&model.Reservation{}).
		Select("table_id").
		Where("restaurant_id = ? AND slot_date = ? AND slot_time = ? AND status IN ?",
			filter.RestaurantID, string(filter.Date), string(filter.Time), activeStatuses)

	var tables []model.Table
	if err := r.db.
		Where("restaurant_id = ? AND capacity >= ? AND status <> ?",
			filter.RestaurantID, filter.Guests, string(model.TableStatusMaintenance)).
		Where("id NOT IN (?)", booked).
		Order("capacity ASC, id ASC").
		Find(&tables).Error; err != nil {
		logger.Error("Failed to find available tables in database", err, map[string]interface{}{
			"restaurant_id": filter.RestaurantID,
		})
		return nil, err
	}

	logger.Debug("Available tables found in database", map[string]interface{}{
		"restaurant_id": filter.RestaurantID,
		"count":         len(tables),
	})
	return tables, nil
}
