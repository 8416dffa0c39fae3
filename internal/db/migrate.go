package db

import (
	"errors"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"github.com/kcastreetfood/reservation-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	defaultRestaurantName = "KCA Streetfood"
	defaultAdminUsername  = "admin"
	defaultAdminEmail     = "admin@kcastreetfood.com"
	defaultAdminPassword  = "admin123"
)

// Migrate runs database migrations and seeds the initial data
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	if err := migrateSchema(db); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := Seed(db); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(Models()),
	})
	return nil
}

// Seed adds the default restaurant, its tables and an admin account when absent
func Seed(db *gorm.DB) error {
	logger.Info("Seeding initial data...")

	restaurant, err := seedRestaurant(db)
	if err != nil {
		logger.Error("Failed to seed restaurant", err)
		return err
	}

	if err := seedTables(db, restaurant.ID); err != nil {
		logger.Error("Failed to seed tables", err, map[string]interface{}{
			"restaurant_id": restaurant.ID,
		})
		return err
	}

	if err := seedAdmin(db); err != nil {
		logger.Error("Failed to seed admin user", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedRestaurant(db *gorm.DB) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := db.Where("name = ?", defaultRestaurantName).First(&restaurant).Error
	if err == nil {
		logger.Info("Restaurant already seeded, skipping...", map[string]interface{}{
			"restaurant_id": restaurant.ID,
		})
		return &restaurant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	restaurant = model.Restaurant{
		Name:        defaultRestaurantName,
		Description: "Authentic street food from around the world, served fresh on campus.",
		Address:     "KCA University, Thika Road, Nairobi",
		Phone:       "+254 700 000 000",
		Email:       "hello@kcastreetfood.com",
		OpeningTime: "07:00",
		ClosingTime: "22:00",
		CuisineType: "Street Food",
		PriceRange:  "$$",
		Features:    []string{"Outdoor Seating", "Wi-Fi", "Takeaway"},
		Rating:      4.5,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		return nil, err
	}

	logger.Info("Restaurant seeded", map[string]interface{}{
		"restaurant_id": restaurant.ID,
	})
	return &restaurant, nil
}

func seedTables(db *gorm.DB, restaurantID uint) error {
	var count int64
	if err := db.Model(&model.Table{}).Where("restaurant_id = ?", restaurantID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Tables already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	tables := []model.Table{
		{TableNumber: "T1", Capacity: 2, Location: "window"},
		{TableNumber: "T2", Capacity: 2, Location: "window"},
		{TableNumber: "T3", Capacity: 4, Location: "main"},
		{TableNumber: "T4", Capacity: 4, Location: "main"},
		{TableNumber: "T5", Capacity: 6, Location: "patio"},
		{TableNumber: "T6", Capacity: 8, Location: "private"},
	}
	for i := range tables {
		tables[i].RestaurantID = restaurantID
		tables[i].Status = model.TableStatusAvailable
	}
	if err := db.Create(&tables).Error; err != nil {
		return err
	}

	logger.Info("Tables seeded successfully", map[string]interface{}{
		"total_tables": len(tables),
	})
	return nil
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", defaultAdminUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := util.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     defaultAdminUsername,
		Email:        defaultAdminEmail,
		PasswordHash: hash,
		Name:         "Administrator",
		IsAdmin:      true,
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Warn("Default admin account created, change its password", map[string]interface{}{
		"username": defaultAdminUsername,
	})
	return nil
}
