package controller

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	apperrors "github.com/kcastreetfood/reservation-backend/internal/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminController serves the admin console's reservation and user views
type AdminController struct {
	reservationService service.ReservationService
	exportService      service.ExportService
	userService        service.UserService
}

func NewAdminController(
	reservationService service.ReservationService,
	exportService service.ExportService,
	userService service.UserService,
) *AdminController {
	return &AdminController{
		reservationService: reservationService,
		exportService:      exportService,
		userService:        userService,
	}
}

type AdminUpdateUserRequest struct {
	Username   *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	IsAdmin    *bool   `json:"is_admin"`
	IsVerified *bool   `json:"is_verified"`
}

// reservationFilter reads ?date=&restaurant_id=
func reservationFilter(c *gin.Context) (repository.ReservationFilter, map[string]string) {
	var filter repository.ReservationFilter
	fields := map[string]string{}

	if raw := c.Query("date"); raw != "" {
		date, err := model.ParseBookingDate(raw)
		if err != nil {
			fields["date"] = "must be YYYY-MM-DD"
		} else {
			filter.Date = &date
		}
	}

	restaurantID, err := parseOptionalUint(c.Query("restaurant_id"))
	if err != nil {
		fields["restaurant_id"] = err.Error()
	}
	filter.RestaurantID = restaurantID

	return filter, fields
}

// ListReservations lists reservations across users
// GET /api/v1/admin/reservations
func (ctrl *AdminController) ListReservations(c *gin.Context) {
	filter, fields := reservationFilter(c)
	if len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return
	}

	reservations, err := ctrl.reservationService.ListAll(filter)
	if err != nil {
		respondError(c, err, "list reservations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"count":        len(reservations),
	})
}

// ExportReservations downloads the filtered reservations as XLSX
// GET /api/v1/admin/reservations/export
func (ctrl *AdminController) ExportReservations(c *gin.Context) {
	filter, fields := reservationFilter(c)
	if len(fields) > 0 {
		apperrors.RespondWithValidationError(c, fields)
		return
	}

	buf, filename, err := ctrl.exportService.ExportReservations(filter)
	if err != nil {
		respondError(c, err, "export reservations")
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListUsers lists all accounts
// GET /api/v1/admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	users, err := ctrl.userService.List()
	if err != nil {
		respondError(c, err, "list users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"count": len(out),
	})
}

// GetUser returns one account
// GET /api/v1/admin/users/:id
func (ctrl *AdminController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.userService.Get(id)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// UpdateUser edits any account, including the admin flag
// PUT /api/v1/admin/users/:id
func (ctrl *AdminController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "user update")
		return
	}

	user, err := ctrl.userService.Update(id, service.AdminUserInput{
		ProfileInput: service.ProfileInput{
			Username: req.Username,
			Email:    req.Email,
			Name:     req.Name,
			Phone:    req.Phone,
		},
		IsAdmin:    req.IsAdmin,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated",
		"user":    userResponse(user),
	})
}
