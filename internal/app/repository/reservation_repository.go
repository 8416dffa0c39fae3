package repository

import (
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultListLimit caps an unfiltered admin listing
const defaultListLimit = 100

type ReservationFilter struct {
	Date         *model.BookingDate
	RestaurantID *uint
	// All lifts the cap on unfiltered listings
	All bool
}

type ReservationRepository interface {
	Create(reservation *model.Reservation) error
	Update(reservation *model.Reservation) error
	FindByID(id uint) (*model.Reservation, error)
	FindForUpdate(id uint) (*model.Reservation, error)
	FindByUserID(userID uint) ([]model.Reservation, error)
	FindAll(filter ReservationFilter) ([]model.Reservation, error)
	HasActiveReservation(restaurantID, tableID uint, date model.BookingDate, slot model.SlotTime, excludeID uint) (bool, error)
	CountActiveForTableFrom(tableID uint, from model.BookingDate) (int64, error)
	CompleteStartedBefore(date model.BookingDate, slot model.SlotTime) (int64, error)
	WithTx(tx *gorm.DB) ReservationRepository
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) WithTx(tx *gorm.DB) ReservationRepository {
	return &reservationRepository{db: tx}
}

func (r *reservationRepository) preloadReservation() *gorm.DB {
	return r.db.Preload("Restaurant").Preload("Table")
}

func (r *reservationRepository) Create(reservation *model.Reservation) error {
	logger.Debug("Creating reservation in database", map[string]interface{}{
		"restaurant_id": reservation.RestaurantID,
		"table_id":      reservation.TableID,
		"user_id":       reservation.UserID,
		"date":          reservation.Date,
		"time":          reservation.Time,
	})

	if err := r.db.Omit("Restaurant", "Table", "User").Create(reservation).Error; err != nil {
		logger.Error("Failed to create reservation in database", err, map[string]interface{}{
			"table_id": reservation.TableID,
			"date":     reservation.Date,
			"time":     reservation.Time,
		})
		return translateError(err)
	}

	logger.Debug("Reservation created in database", map[string]interface{}{
		"reservation_id": reservation.ID,
		"status":         reservation.Status,
	})
	return nil
}

func (r *reservationRepository) Update(reservation *model.Reservation) error {
	logger.Debug("Updating reservation in database", map[string]interface{}{
		"reservation_id": reservation.ID,
		"status":         reservation.Status,
	})

	if err := r.db.Omit("Restaurant", "Table", "User").Save(reservation).Error; err != nil {
		logger.Error("Failed to update reservation in database", err, map[string]interface{}{
			"reservation_id": reservation.ID,
		})
		return translateError(err)
	}

	logger.Debug("Reservation updated in database", map[string]interface{}{
		"reservation_id": reservation.ID,
		"status":         reservation.Status,
	})
	return nil
}

func (r *reservationRepository) FindByID(id uint) (*model.Reservation, error) {
	logger.Debug("Finding reservation by ID in database", map[string]interface{}{
		"reservation_id": id,
	})

	var reservation model.Reservation
	if err := r.preloadReservation().First(&reservation, id).Error; err != nil {
		logger.Error("Failed to find reservation by ID in database", err, map[string]interface{}{
			"reservation_id": id,
		})
		return nil, err
	}

	logger.Debug("Reservation found by ID in database", map[string]interface{}{
		"reservation_id": reservation.ID,
		"user_id":        reservation.UserID,
		"status":         reservation.Status,
	})
	return &reservation, nil
}

// FindForUpdate loads the reservation with a row lock held until the surrounding transaction ends.
// Relations are not loaded.
func (r *reservationRepository) FindForUpdate(id uint) (*model.Reservation, error) {
	logger.Debug("Locking reservation in database", map[string]interface{}{
		"reservation_id": id,
	})

	var reservation model.Reservation
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reservation, id).Error; err != nil {
		logger.Error("Failed to lock reservation in database", err, map[string]interface{}{
			"reservation_id": id,
		})
		return nil, err
	}
	return &reservation, nil
}

// FindByUserID returns the user's reservations, earliest slot first
func (r *reservationRepository) FindByUserID(userID uint) ([]model.Reservation, error) {
	logger.Debug("Finding reservations by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var reservations []model.Reservation
	if err := r.preloadReservation().
		Where("user_id = ?", userID).
		Order("slot_date ASC, slot_time ASC, id ASC").
		Find(&reservations).Error; err != nil {
		logger.Error("Failed to find reservations by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Reservations found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(reservations),
	})
	return reservations, nil
}

// FindAll lists reservations for the admin console; without filters only the most recent are returned
// unless filter.All is set
func (r *reservationRepository) FindAll(filter ReservationFilter) ([]model.Reservation, error) {
	logger.Debug("Finding reservations in database", map[string]interface{}{
		"date":          filter.Date,
		"restaurant_id": filter.RestaurantID,
		"all":           filter.All,
	})

	query := r.preloadReservation().Preload("User")
	filtered := false
	if filter.Date != nil {
		query = query.Where("slot_date = ?", string(*filter.Date))
		filtered = true
	}
	if filter.RestaurantID != nil {
		query = query.Where("restaurant_id = ?", *filter.RestaurantID)
		filtered = true
	}

	if filtered || filter.All {
		query = query.Order("slot_date ASC, slot_time ASC, id ASC")
	} else {
		query = query.Order("slot_date DESC, slot_time DESC, id DESC").Limit(defaultListLimit)
	}

	var reservations []model.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		logger.Error("Failed to find reservations in database", err)
		return nil, err
	}

	logger.Debug("Reservations found in database", map[string]interface{}{
		"count": len(reservations),
	})
	return reservations, nil
}

// HasActiveReservation reports whether another pending or confirmed reservation holds the slot.
// excludeID skips the reservation being edited; pass 0 on create.
func (r *reservationRepository) HasActiveReservation(restaurantID, tableID uint, date model.BookingDate, slot model.SlotTime, excludeID uint) (bool, error) {
	query := r.db.Model(&model.Reservation{}).
		Where("restaurant_id = ? AND table_id = ? AND slot_date = ? AND slot_time = ? AND status IN ?",
			restaurantID, tableID, string(date), string(slot), activeStatuses)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check reservation conflict in database", err, map[string]interface{}{
			"table_id": tableID,
			"date":     date,
			"time":     slot,
		})
		return false, err
	}

	logger.Debug("Checked reservation conflict in database", map[string]interface{}{
		"table_id": tableID,
		"date":     date,
		"time":     slot,
		"taken":    count > 0,
	})
	return count > 0, nil
}

// CountActiveForTableFrom counts active reservations holding the table on or after from
func (r *reservationRepository) CountActiveForTableFrom(tableID uint, from model.BookingDate) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Reservation{}).
		Where("table_id = ? AND slot_date >= ? AND status IN ?", tableID, string(from), activeStatuses).
		Count(&count).Error; err != nil {
		logger.Error("Failed to count active reservations for table", err, map[string]interface{}{
			"table_id": tableID,
		})
		return 0, err
	}
	return count, nil
}

// CompleteStartedBefore marks confirmed reservations whose slot started before (date, slot) as completed
func (r *reservationRepository) CompleteStartedBefore(date model.BookingDate, slot model.SlotTime) (int64, error) {
	logger.Debug("Completing past reservations in database", map[string]interface{}{
		"before_date": date,
		"before_time": slot,
	})

	result := r.db.Model(&model.Reservation{}).
		Where("status = ?", string(model.ReservationStatusConfirmed)).
		Where("(slot_date < ? OR (slot_date = ? AND slot_time < ?))", string(date), string(date), string(slot)).
		Update("status", string(model.ReservationStatusCompleted))
	if result.Error != nil {
		logger.Error("Failed to complete past reservations in database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Past reservations completed in database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
