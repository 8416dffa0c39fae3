package db

import (
	"fmt"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"gorm.io/gorm"
)

// ActiveSlotIndex guarantees one pending/confirmed reservation per table slot.
// PostgreSQL and SQLite both support partial unique indexes with this syntax.
const ActiveSlotIndex = "idx_reservations_active_slot"

const activeSlotIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS ` + ActiveSlotIndex + `
	ON reservations (restaurant_id, table_id, slot_date, slot_time)
	WHERE status IN ('pending', 'confirmed')`

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Restaurant{},
		&model.Table{},
		&model.Reservation{},
	}
}

// migrateSchema is shared by production migrations and the test database
func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeSlotIndexSQL).Error; err != nil {
		return fmt.Errorf("create %s: %w", ActiveSlotIndex, err)
	}
	return nil
}
