package service

import (
	"strings"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
)

// RestaurantInput is used for create (all fields) and update (nil fields are kept)
type RestaurantInput struct {
	Name                 *string
	Description          *string
	Address              *string
	Phone                *string
	Email                *string
	OpeningTime          *string
	ClosingTime          *string
	CuisineType          *string
	PriceRange           *string
	ImageURL             *string
	Features             []string
	Rating               *float64
	RequiresConfirmation *bool
}

type RestaurantService interface {
	List(search string) ([]model.Restaurant, error)
	Get(id uint, includeTables bool) (*model.Restaurant, error)
	Create(input RestaurantInput) (*model.Restaurant, error)
	Update(id uint, input RestaurantInput) (*model.Restaurant, error)
	SetImage(id uint, imageURL string) (*model.Restaurant, error)
}

type restaurantService struct {
	restaurantRepo repository.RestaurantRepository
}

func NewRestaurantService(restaurantRepo repository.RestaurantRepository) RestaurantService {
	return &restaurantService{restaurantRepo: restaurantRepo}
}

func (s *restaurantService) List(search string) ([]model.Restaurant, error) {
	restaurants, err := s.restaurantRepo.FindAll(repository.RestaurantFilter{Search: search})
	if err != nil {
		return nil, err
	}
	if restaurants == nil {
		restaurants = []model.Restaurant{}
	}
	return restaurants, nil
}

func (s *restaurantService) Get(id uint, includeTables bool) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id, includeTables)
	if err != nil {
		return nil, notFoundOr(err, ErrRestaurantNotFound)
	}
	return restaurant, nil
}

func (s *restaurantService) Create(input RestaurantInput) (*model.Restaurant, error) {
	restaurant := &model.Restaurant{}
	if err := applyRestaurantChanges(restaurant, input); err != nil {
		return nil, err
	}

	logger.Info("Creating restaurant", map[string]interface{}{
		"name": restaurant.Name,
	})

	if err := s.restaurantRepo.Create(restaurant); err != nil {
		return nil, err
	}

	logger.Info("Restaurant created", map[string]interface{}{
		"restaurant_id": restaurant.ID,
	})
	return restaurant, nil
}

func (s *restaurantService) Update(id uint, input RestaurantInput) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id, false)
	if err != nil {
		return nil, notFoundOr(err, ErrRestaurantNotFound)
	}

	if err := applyRestaurantChanges(restaurant, input); err != nil {
		return nil, err
	}
	if err := s.restaurantRepo.Update(restaurant); err != nil {
		return nil, err
	}

	logger.Info("Restaurant updated", map[string]interface{}{
		"restaurant_id": restaurant.ID,
	})
	return restaurant, nil
}

// SetImage records the public URL of an uploaded cover image
func (s *restaurantService) SetImage(id uint, imageURL string) (*model.Restaurant, error) {
	return s.Update(id, RestaurantInput{ImageURL: &imageURL})
}

func applyRestaurantChanges(r *model.Restaurant, input RestaurantInput) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	set(&r.Name, input.Name)
	set(&r.Description, input.Description)
	set(&r.Address, input.Address)
	set(&r.Phone, input.Phone)
	set(&r.Email, input.Email)
	set(&r.CuisineType, input.CuisineType)
	set(&r.PriceRange, input.PriceRange)
	set(&r.ImageURL, input.ImageURL)

	if input.OpeningTime != nil {
		opening, err := parseHour(*input.OpeningTime)
		if err != nil {
			return err
		}
		r.OpeningTime = opening
	}
	if input.ClosingTime != nil {
		closing, err := parseHour(*input.ClosingTime)
		if err != nil {
			return err
		}
		r.ClosingTime = closing
	}
	if input.Features != nil {
		r.Features = append([]string{}, input.Features...)
	}
	if input.Rating != nil {
		if *input.Rating < 0 || *input.Rating > 5 {
			return ErrInvalidRestaurant
		}
		r.Rating = *input.Rating
	}
	if input.RequiresConfirmation != nil {
		r.RequiresConfirmation = *input.RequiresConfirmation
	}

	if r.Name == "" {
		return ErrInvalidRestaurant
	}
	if r.OpeningTime != "" && r.ClosingTime != "" && r.ClosingTime <= r.OpeningTime {
		return ErrInvalidRestaurant
	}
	return nil
}

// parseHour normalizes an opening hour to HH:MM; empty clears it
func parseHour(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	slot, err := model.ParseSlotTime(raw)
	if err != nil {
		return "", ErrInvalidRestaurant
	}
	return slot.String(), nil
}
