package repository

import (
	"strings"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"gorm.io/gorm"
)

type RestaurantFilter struct {
	Search        string // name or cuisine, case insensitive
	IncludeTables bool
}

type RestaurantRepository interface {
	Create(restaurant *model.Restaurant) error
	Update(restaurant *model.Restaurant) error
	FindByID(id uint, includeTables bool) (*model.Restaurant, error)
	FindAll(filter RestaurantFilter) ([]model.Restaurant, error)
	WithTx(tx *gorm.DB) RestaurantRepository
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) WithTx(tx *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: tx}
}

func (r *restaurantRepository) Create(restaurant *model.Restaurant) error {
	logger.Debug("Creating restaurant in database", map[string]interface{}{
		"name": restaurant.Name,
	})

	if err := r.db.Create(restaurant).Error; err != nil {
		logger.Error("Failed to create restaurant in database", err, map[string]interface{}{
			"name": restaurant.Name,
		})
		return translateError(err)
	}

	logger.Debug("Restaurant created in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})
	return nil
}

func (r *restaurantRepository) Update(restaurant *model.Restaurant) error {
	logger.Debug("Updating restaurant in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
	})

	if err := r.db.Omit("Tables").Save(restaurant).Error; err != nil {
		logger.Error("Failed to update restaurant in database", err, map[string]interface{}{
			"restaurant_id": restaurant.ID,
		})
		return translateError(err)
	}

	logger.Debug("Restaurant updated in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
	})
	return nil
}

func (r *restaurantRepository) FindByID(id uint, includeTables bool) (*model.Restaurant, error) {
	logger.Debug("Finding restaurant by ID in database", map[string]interface{}{
		"restaurant_id":  id,
		"include_tables": includeTables,
	})

	query := r.db
	if includeTables {
		query = query.Preload("Tables", func(db *gorm.DB) *gorm.DB {
			return db.Order("capacity ASC, id ASC")
		})
	}

	var restaurant model.Restaurant
	if err := query.First(&restaurant, id).Error; err != nil {
		logger.Error("Failed to find restaurant by ID in database", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return nil, err
	}

	logger.Debug("Restaurant found by ID in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"tables":        len(restaurant.Tables),
	})
	return &restaurant, nil
}

func (r *restaurantRepository) FindAll(filter RestaurantFilter) ([]model.Restaurant, error) {
	logger.Debug("Finding restaurants in database", map[string]interface{}{
		"search":         filter.Search,
		"include_tables": filter.IncludeTables,
	})

	query := r.db.Model(&model.Restaurant{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(cuisine_type) LIKE ?", like, like)
	}
	if filter.IncludeTables {
		query = query.Preload("Tables")
	}

	var restaurants []model.Restaurant
	if err := query.Order("name ASC").Find(&restaurants).Error; err != nil {
		logger.Error("Failed to find restaurants in database", err)
		return nil, err
	}

	logger.Debug("Restaurants found in database", map[string]interface{}{
		"count": len(restaurants),
	})
	return restaurants, nil
}
