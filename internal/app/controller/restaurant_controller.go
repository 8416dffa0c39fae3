package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
)

type RestaurantController struct {
	restaurantService service.RestaurantService
	tableService      service.TableService
}

func NewRestaurantController(restaurantService service.RestaurantService, tableService service.TableService) *RestaurantController {
	return &RestaurantController{
		restaurantService: restaurantService,
		tableService:      tableService,
	}
}

type RestaurantRequest struct {
	Name                 *string  `json:"name"`
	Description          *string  `json:"description"`
	Address              *string  `json:"address"`
	Phone                *string  `json:"phone"`
	Email                *string  `json:"email" binding:"omitempty,email"`
	OpeningTime          *string  `json:"opening_time"`
	ClosingTime          *string  `json:"closing_time"`
	CuisineType          *string  `json:"cuisine_type"`
	PriceRange           *string  `json:"price_range"`
	ImageURL             *string  `json:"image_url"`
	Features             []string `json:"features"`
	Rating               *float64 `json:"rating"`
	RequiresConfirmation *bool    `json:"requires_confirmation"`
}

func (r RestaurantRequest) input() service.RestaurantInput {
	return service.RestaurantInput{
		Name:                 r.Name,
		Description:          r.Description,
		Address:              r.Address,
		Phone:                r.Phone,
		Email:                r.Email,
		OpeningTime:          r.OpeningTime,
		ClosingTime:          r.ClosingTime,
		CuisineType:          r.CuisineType,
		PriceRange:           r.PriceRange,
		ImageURL:             r.ImageURL,
		Features:             r.Features,
		Rating:               r.Rating,
		RequiresConfirmation: r.RequiresConfirmation,
	}
}

// ListRestaurants lists restaurants, optionally filtered by ?q=
// GET /api/v1/restaurants
func (ctrl *RestaurantController) ListRestaurants(c *gin.Context) {
	restaurants, err := ctrl.restaurantService.List(c.Query("q"))
	if err != nil {
		respondError(c, err, "list restaurants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
		"count":       len(restaurants),
	})
}

// GetRestaurant returns one restaurant with its tables
// GET /api/v1/restaurants/:id
func (ctrl *RestaurantController) GetRestaurant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.Get(id, true)
	if err != nil {
		respondError(c, err, "get restaurant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// ListTables lists a restaurant's tables
// GET /api/v1/restaurants/:id/tables
func (ctrl *RestaurantController) ListTables(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tables, err := ctrl.tableService.ListByRestaurant(id)
	if err != nil {
		respondError(c, err, "list tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tables": tables,
		"count":  len(tables),
	})
}

// CreateRestaurant creates a restaurant (admin)
// POST /api/v1/admin/restaurants
func (ctrl *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "restaurant")
		return
	}

	restaurant, err := ctrl.restaurantService.Create(req.input())
	if err != nil {
		respondError(c, err, "create restaurant")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Restaurant created",
		"restaurant": restaurant,
	})
}

// UpdateRestaurant updates the given fields of a restaurant (admin)
// PUT /api/v1/admin/restaurants/:id
func (ctrl *RestaurantController) UpdateRestaurant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "restaurant")
		return
	}

	restaurant, err := ctrl.restaurantService.Update(id, req.input())
	if err != nil {
		respondError(c, err, "update restaurant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Restaurant updated",
		"restaurant": restaurant,
	})
}
