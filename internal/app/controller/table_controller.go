package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	apperrors "github.com/kcastreetfood/reservation-backend/internal/errors"
)

type TableController struct {
	tableService       service.TableService
	reservationService service.ReservationService
}

func NewTableController(tableService service.TableService, reservationService service.ReservationService) *TableController {
	return &TableController{
		tableService:       tableService,
		reservationService: reservationService,
	}
}

type CreateTableRequest struct {
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	TableNumber  string `json:"table_number" binding:"required"`
	Capacity     int    `json:"capacity" binding:"required,min=1"`
	Location     string `json:"location"`
	Status       string `json:"status"`
}

type UpdateTableRequest struct {
	TableNumber *string `json:"table_number"`
	Capacity    *int    `json:"capacity" binding:"omitempty,min=1"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
}

// AvailableTables runs the availability query
// GET /api/v1/tables/available?restaurant_id=&date=&time=&guests=
func (ctrl *TableController) AvailableTables(c *gin.Context) {
	query, fields := parseAvailabilityQuery(c)
	if len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return
	}

	tables, err := ctrl.reservationService.FindAvailableTables(query)
	if err != nil {
		respondError(c, err, "find available tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tables": tables,
		"count":  len(tables),
	})
}

func parseAvailabilityQuery(c *gin.Context) (service.AvailabilityQuery, map[string]string) {
	var query service.AvailabilityQuery
	fields := map[string]string{}

	restaurantID, err := parseOptionalUint(c.Query("restaurant_id"))
	switch {
	case err != nil:
		fields["restaurant_id"] = err.Error()
	case restaurantID == nil:
		fields["restaurant_id"] = "required"
	default:
		query.RestaurantID = *restaurantID
	}

	date, err := model.ParseBookingDate(c.Query("date"))
	if err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	query.Date = date

	slot, err := model.ParseSlotTime(c.Query("time"))
	if err != nil {
		fields["time"] = "must be HH:MM or h:mm AM/PM"
	}
	query.Time = slot

	guests, err := strconv.Atoi(c.Query("guests"))
	if err != nil {
		fields["guests"] = "must be a number"
	}
	query.Guests = guests

	return query, fields
}

// GetTable returns one table
// GET /api/v1/tables/:id
func (ctrl *TableController) GetTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	table, err := ctrl.tableService.GetByID(id)
	if err != nil {
		respondError(c, err, "get table")
		return
	}

	c.JSON(http.StatusOK, gin.H{"table": table})
}

// CreateTable adds a table (admin)
// POST /api/v1/admin/tables
func (ctrl *TableController) CreateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "table")
		return
	}

	var status model.TableStatus
	if req.Status != "" {
		parsed, err := model.ParseTableStatus(req.Status)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Status must be available, reserved or maintenance")
			return
		}
		status = parsed
	}

	table, err := ctrl.tableService.Create(service.CreateTableInput{
		RestaurantID: req.RestaurantID,
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		Location:     req.Location,
		Status:       status,
	})
	if err != nil {
		respondError(c, err, "create table")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Table created",
		"table":   table,
	})
}

// UpdateTable updates the given fields of a table (admin)
// PUT /api/v1/admin/tables/:id
func (ctrl *TableController) UpdateTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "table")
		return
	}

	input := service.UpdateTableInput{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Location:    req.Location,
	}
	if req.Status != nil {
		status, err := model.ParseTableStatus(*req.Status)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Status must be available, reserved or maintenance")
			return
		}
		input.Status = &status
	}

	table, err := ctrl.tableService.Update(id, input)
	if err != nil {
		respondError(c, err, "update table")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Table updated",
		"table":   table,
	})
}

// DeleteTable removes a table (admin)
// DELETE /api/v1/admin/tables/:id
func (ctrl *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.tableService.Delete(id); err != nil {
		respondError(c, err, "delete table")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Table deleted"})
}
