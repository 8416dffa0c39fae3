package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	apperrors "github.com/kcastreetfood/reservation-backend/internal/errors"
	"github.com/kcastreetfood/reservation-backend/internal/middleware"
)

type ReservationController struct {
	reservationService service.ReservationService
}

func NewReservationController(reservationService service.ReservationService) *ReservationController {
	return &ReservationController{reservationService: reservationService}
}

type CreateReservationRequest struct {
	RestaurantID    uint   `json:"restaurant_id" binding:"required"`
	TableID         uint   `json:"table_id" binding:"required"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	Guests          int    `json:"guests" binding:"required"`
	Occasion        string `json:"occasion" binding:"max=50"`
	SpecialRequests string `json:"special_requests" binding:"max=1000"`
}

type UpdateReservationRequest struct {
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	TableID         *uint   `json:"table_id"`
	Guests          *int    `json:"guests"`
	Occasion        *string `json:"occasion" binding:"omitempty,max=50"`
	SpecialRequests *string `json:"special_requests" binding:"omitempty,max=1000"`
	Status          *string `json:"status"`
}

// input parses the typed fields, returning per-field messages for anything malformed
func (r UpdateReservationRequest) input() (service.UpdateReservationInput, map[string]string) {
	input := service.UpdateReservationInput{
		TableID:         r.TableID,
		Guests:          r.Guests,
		Occasion:        r.Occasion,
		SpecialRequests: r.SpecialRequests,
	}
	fields := map[string]string{}

	if r.Date != nil {
		date, err := model.ParseBookingDate(*r.Date)
		if err != nil {
			fields["date"] = "must be YYYY-MM-DD"
		}
		input.Date = &date
	}
	if r.Time != nil {
		slot, err := model.ParseSlotTime(*r.Time)
		if err != nil {
			fields["time"] = "must be HH:MM or h:mm AM/PM"
		}
		input.Time = &slot
	}
	if r.Status != nil {
		status, err := model.ParseReservationStatus(*r.Status)
		if err != nil {
			fields["status"] = "must be pending, confirmed, completed or cancelled"
		}
		input.Status = &status
	}
	return input, fields
}

// CreateReservation books a table for the current user
// POST /api/v1/reservations
func (ctrl *ReservationController) CreateReservation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "reservation")
		return
	}

	fields := map[string]string{}
	date, err := model.ParseBookingDate(req.Date)
	if err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	slot, err := model.ParseSlotTime(req.Time)
	if err != nil {
		fields["time"] = "must be HH:MM or h:mm AM/PM"
	}
	if len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return
	}

	reservation, err := ctrl.reservationService.Create(service.CreateReservationInput{
		UserID:          caller.UserID,
		RestaurantID:    req.RestaurantID,
		TableID:         req.TableID,
		Date:            date,
		Time:            slot,
		Guests:          req.Guests,
		Occasion:        req.Occasion,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondError(c, err, "create reservation")
		return
	}

	log.Info("Reservation booked", map[string]interface{}{
		"reservation_id": reservation.ID,
		"user_id":        caller.UserID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Reservation created",
		"reservation": reservation,
	})
}

// MyReservations returns both partitions for the current user
// GET /api/v1/reservations/my
func (ctrl *ReservationController) MyReservations(c *gin.Context) {
	result, ok := ctrl.listForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpcomingReservations returns reservations that have not started yet
// GET /api/v1/reservations/upcoming
func (ctrl *ReservationController) UpcomingReservations(c *gin.Context) {
	result, ok := ctrl.listForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reservations": result.Upcoming,
		"count":        len(result.Upcoming),
	})
}

// PastReservations returns started reservations, most recent first
// GET /api/v1/reservations/past
func (ctrl *ReservationController) PastReservations(c *gin.Context) {
	result, ok := ctrl.listForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reservations": result.Past,
		"count":        len(result.Past),
	})
}

func (ctrl *ReservationController) listForCaller(c *gin.Context) (*service.UserReservations, bool) {
	caller, ok := currentCaller(c)
	if !ok {
		return nil, false
	}

	result, err := ctrl.reservationService.ListForUser(caller.UserID)
	if err != nil {
		respondError(c, err, "list reservations")
		return nil, false
	}
	return result, true
}

// GetReservation returns one reservation owned by the caller (or any, for admins)
// GET /api/v1/reservations/:id
func (ctrl *ReservationController) GetReservation(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := ctrl.reservationService.Get(caller, id)
	if err != nil {
		respondError(c, err, "get reservation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservation": reservation})
}

// UpdateReservation changes the given fields of a reservation
// PUT /api/v1/reservations/:id
func (ctrl *ReservationController) UpdateReservation(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "reservation")
		return
	}
	input, fields := req.input()
	if len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return
	}

	reservation, err := ctrl.reservationService.Update(caller, id, input)
	if err != nil {
		respondError(c, err, "update reservation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Reservation updated",
		"reservation": reservation,
	})
}

// CancelReservation cancels a pending or confirmed reservation
// PUT /api/v1/reservations/:id/cancel
func (ctrl *ReservationController) CancelReservation(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := ctrl.reservationService.Cancel(caller, id)
	if err != nil {
		respondError(c, err, "cancel reservation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Reservation cancelled",
		"reservation": reservation,
	})
}
