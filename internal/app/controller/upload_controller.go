package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	apperrors "github.com/kcastreetfood/reservation-backend/internal/errors"
	"github.com/kcastreetfood/reservation-backend/internal/middleware"
	"github.com/kcastreetfood/reservation-backend/internal/storage"
)

// ImageUploader is satisfied by *storage.S3Storage
type ImageUploader interface {
	PresignRestaurantImage(ctx context.Context, restaurantID uint, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type UploadController struct {
	uploader          ImageUploader
	restaurantService service.RestaurantService
}

// NewUploadController accepts a nil uploader when S3 is not configured
func NewUploadController(uploader ImageUploader, restaurantService service.RestaurantService) *UploadController {
	return &UploadController{
		uploader:          uploader,
		restaurantService: restaurantService,
	}
}

type RestaurantImageRequest struct {
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	Filename     string `json:"filename" binding:"required"`
	ContentType  string `json:"content_type" binding:"required"`
}

// RestaurantImageURL generates a presigned PUT URL and points the restaurant's image_url at the new object
// POST /api/v1/admin/uploads/restaurant-image
func (ctrl *UploadController) RestaurantImageURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.uploader == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadNotConfigured, "Image uploads are not configured")
		return
	}

	var req RestaurantImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "upload")
		return
	}

	if _, err := ctrl.restaurantService.Get(req.RestaurantID, false); err != nil {
		respondError(c, err, "presign restaurant image")
		return
	}

	presigned, err := ctrl.uploader.PresignRestaurantImage(c.Request.Context(), req.RestaurantID, req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, WEBP)")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"restaurant_id": req.RestaurantID,
			"content_type":  req.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	if _, err := ctrl.restaurantService.SetImage(req.RestaurantID, presigned.FileURL); err != nil {
		respondError(c, err, "set restaurant image")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"restaurant_id": req.RestaurantID,
		"key":           presigned.Key,
	})

	c.JSON(http.StatusOK, presigned)
}
