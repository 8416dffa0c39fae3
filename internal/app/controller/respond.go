package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	apperrors "github.com/kcastreetfood/reservation-backend/internal/errors"
	"github.com/kcastreetfood/reservation-backend/internal/middleware"
)

// specific errors with their own response code; checked before the kind fallback
var errorCodes = []struct {
	err  error
	code string
}{
	{service.ErrPastDate, apperrors.ReservationPastDate},
	{service.ErrInvalidPartySize, apperrors.ReservationPartySize},
	{service.ErrExceedsCapacity, apperrors.ReservationPartySize},
	{service.ErrSlotNotOffered, apperrors.ValidationInvalidRange},
	{service.ErrInvalidVerificationToken, apperrors.AuthCodeInvalid},
	{service.ErrInvalidResetToken, apperrors.AuthCodeInvalid},
	{service.ErrVerificationExpired, apperrors.AuthCodeExpired},

	{service.ErrRestaurantNotFound, apperrors.RestaurantNotFound},
	{service.ErrTableNotFound, apperrors.TableNotFound},
	{service.ErrReservationNotFound, apperrors.ReservationNotFound},

	{service.ErrSlotUnavailable, apperrors.ReservationSlotTaken},
	{service.ErrTableMaintenance, apperrors.ReservationSlotTaken},
	{service.ErrTableInUse, apperrors.TableInUse},
	{service.ErrEmailAlreadyExists, apperrors.AuthEmailAlreadyExists},
	{service.ErrUsernameTaken, apperrors.AuthUsernameExists},
	{service.ErrAlreadyVerified, apperrors.AuthAlreadyVerified},

	{service.ErrNotReservationOwner, apperrors.AuthzOwnerOnly},
	{service.ErrAdminOnlyStatus, apperrors.AuthzAdminOnly},

	{service.ErrInvalidCredentials, apperrors.AuthInvalidCredentials},
	{service.ErrEmailNotVerified, apperrors.AuthEmailNotVerified},
	{service.ErrRefreshTokenInvalid, apperrors.AuthTokenInvalid},
}

var errorKinds = []struct {
	kind    error
	respond func(c *gin.Context, code, message string)
	code    string
}{
	{service.ErrInvalidArgument, apperrors.BadRequest, apperrors.ValidationInvalidInput},
	{service.ErrUnauthenticated, withStatus(http.StatusUnauthorized), apperrors.AuthUnauthorized},
	{service.ErrForbidden, withStatus(http.StatusForbidden), apperrors.AuthzForbidden},
	{service.ErrNotFound, apperrors.NotFound, apperrors.ResourceNotFound},
	{service.ErrConflict, apperrors.Conflict, apperrors.ResourceConflict},
	{service.ErrInvalidState, apperrors.UnprocessableEntity, apperrors.ReservationInvalidState},
}

func withStatus(status int) func(c *gin.Context, code, message string) {
	return func(c *gin.Context, code, message string) {
		apperrors.RespondWithError(c, status, code, message)
	}
}

// respondError writes a service error; unknown errors become 500 via ParseAndRespond
func respondError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	for _, k := range errorKinds {
		if !errors.Is(err, k.kind) {
			continue
		}
		code := k.code
		for _, e := range errorCodes {
			if errors.Is(err, e.err) {
				code = e.code
				break
			}
		}
		log.Debug("Request rejected", map[string]interface{}{
			"context": context,
			"code":    code,
			"reason":  err.Error(),
		})
		k.respond(c, code, errorMessage(err))
		return
	}

	log.Error("Request failed", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
}

// errorMessage drops the "kind: " prefix, leaving the human readable part
func errorMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return "Request rejected"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+strings.ReplaceAll(name, "_", " "))
		return 0, false
	}
	return uint(id), true
}

func parseOptionalUint(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, errors.New("must be a positive integer")
	}
	id := uint(v)
	return &id, nil
}

// currentCaller must run after Authenticate
func currentCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, IsAdmin: middleware.IsAdmin(c)}, true
}

func bindFailed(c *gin.Context, err error, what string) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"request": what,
		"error":   err.Error(),
	})
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid "+what+" request")
}
