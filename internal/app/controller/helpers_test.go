package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/config"
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/kcastreetfood/reservation-backend/internal/middleware"
	"github.com/kcastreetfood/reservation-backend/internal/storage"
	"github.com/kcastreetfood/reservation-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

type stubUploader struct {
	calls int
}

func (s *stubUploader) PresignRestaurantImage(_ context.Context, restaurantID uint, filename, contentType string) (*storage.PresignedURLResponse, error) {
	if err := storage.ValidateContentType(contentType, storage.ImageContentTypes); err != nil {
		return nil, err
	}
	s.calls++
	key := "restaurants/1/" + filename
	return &storage.PresignedURLResponse{
		UploadURL: "https://bucket.example.com/" + key + "?X-Amz-Signature=abc",
		FileURL:   "https://cdn.example.com/" + key,
		Key:       key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

// memoryRevoker stands in for the Redis blacklist
type memoryRevoker struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (m *memoryRevoker) BlacklistToken(_ context.Context, id string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = true
	return nil
}

func (m *memoryRevoker) RevokeOnce(_ context.Context, id string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids[id] {
		return false, nil
	}
	m.ids[id] = true
	return true, nil
}

func (m *memoryRevoker) IsTokenBlacklisted(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[id], nil
}

type apiFixture struct {
	router     *gin.Engine
	db         *gorm.DB
	restaurant *model.Restaurant
	table2     *model.Table // capacity 2
	table6     *model.Table // capacity 6
	guest      *model.User
	admin      *model.User
	guestToken string
	adminToken string
	uploader   *stubUploader
	date       string // a week from today
}

func setupAPITest(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	restaurantRepo := repository.NewRestaurantRepository(testDB)
	tableRepo := repository.NewTableRepository(testDB)
	reservationRepo := repository.NewReservationRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	policy, err := service.NewBookingPolicy(10, config.DefaultTimeSlots, time.UTC)
	require.NoError(t, err)

	reservationService := service.NewReservationService(testDB, restaurantRepo, tableRepo, reservationRepo, policy)
	tableService := service.NewTableService(testDB, restaurantRepo, tableRepo, reservationRepo, time.UTC)
	restaurantService := service.NewRestaurantService(restaurantRepo)
	revoker := &memoryRevoker{ids: map[string]bool{}}
	authService := service.NewAuthService(userRepo, revoker, testJWTSecret, 15*time.Minute, 24*time.Hour)
	userService := service.NewUserService(userRepo)
	exportService := service.NewExportService(reservationRepo)

	uploader := &stubUploader{}
	authCtrl := NewAuthController(authService, true)
	restaurantCtrl := NewRestaurantController(restaurantService, tableService)
	tableCtrl := NewTableController(tableService, reservationService)
	reservationCtrl := NewReservationController(reservationService)
	adminCtrl := NewAdminController(reservationService, exportService, userService)
	uploadCtrl := NewUploadController(uploader, restaurantService)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, revoker)

	router := gin.New()
	router.POST("/auth/register", authCtrl.Register)
	router.GET("/auth/verify-email", authCtrl.VerifyEmail)
	router.POST("/auth/login", authCtrl.Login)
	router.POST("/auth/refresh", authCtrl.RefreshToken)
	router.POST("/auth/forgot-password", authCtrl.ForgotPassword)
	router.POST("/auth/reset-password", authCtrl.ResetPassword)
	router.POST("/auth/logout", authMiddleware.Authenticate(), authCtrl.Logout)
	router.GET("/users/me", authMiddleware.Authenticate(), authCtrl.GetMe)
	router.PUT("/users/me", authMiddleware.Authenticate(), authCtrl.UpdateMe)

	router.GET("/restaurants", restaurantCtrl.ListRestaurants)
	router.GET("/restaurants/:id", restaurantCtrl.GetRestaurant)
	router.GET("/restaurants/:id/tables", restaurantCtrl.ListTables)
	router.GET("/tables/available", tableCtrl.AvailableTables)
	router.GET("/tables/:id", tableCtrl.GetTable)

	reservations := router.Group("/reservations", authMiddleware.Authenticate())
	reservations.POST("", reservationCtrl.CreateReservation)
	reservations.GET("/my", reservationCtrl.MyReservations)
	reservations.GET("/upcoming", reservationCtrl.UpcomingReservations)
	reservations.GET("/past", reservationCtrl.PastReservations)
	reservations.GET("/:id", reservationCtrl.GetReservation)
	reservations.PUT("/:id", reservationCtrl.UpdateReservation)
	reservations.PUT("/:id/cancel", reservationCtrl.CancelReservation)

	admin := router.Group("/admin", authMiddleware.Authenticate(), authMiddleware.RequireAdmin())
	admin.GET("/reservations", adminCtrl.ListReservations)
	admin.GET("/reservations/export", adminCtrl.ExportReservations)
	admin.POST("/tables", tableCtrl.CreateTable)
	admin.PUT("/tables/:id", tableCtrl.UpdateTable)
	admin.DELETE("/tables/:id", tableCtrl.DeleteTable)
	admin.POST("/restaurants", restaurantCtrl.CreateRestaurant)
	admin.PUT("/restaurants/:id", restaurantCtrl.UpdateRestaurant)
	admin.POST("/uploads/restaurant-image", uploadCtrl.RestaurantImageURL)
	admin.GET("/users", adminCtrl.ListUsers)
	admin.GET("/users/:id", adminCtrl.GetUser)
	admin.PUT("/users/:id", adminCtrl.UpdateUser)

	restaurant := &model.Restaurant{Name: "Kowloon Street Kitchen", OpeningTime: "07:00", ClosingTime: "22:00"}
	require.NoError(t, testDB.Create(restaurant).Error)
	table2 := &model.Table{RestaurantID: restaurant.ID, TableNumber: "T1", Capacity: 2, Status: model.TableStatusAvailable}
	table6 := &model.Table{RestaurantID: restaurant.ID, TableNumber: "T2", Capacity: 6, Status: model.TableStatusAvailable}
	require.NoError(t, testDB.Create(table2).Error)
	require.NoError(t, testDB.Create(table6).Error)

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)
	guest := &model.User{Username: "guest", Email: "guest@example.com", PasswordHash: hash, IsVerified: true}
	adminUser := &model.User{Username: "admin", Email: "admin@example.com", PasswordHash: hash, IsVerified: true, IsAdmin: true}
	require.NoError(t, testDB.Create(guest).Error)
	require.NoError(t, testDB.Create(adminUser).Error)

	return &apiFixture{
		router:     router,
		db:         testDB,
		restaurant: restaurant,
		table2:     table2,
		table6:     table6,
		guest:      guest,
		admin:      adminUser,
		guestToken: accessToken(t, guest),
		adminToken: accessToken(t, adminUser),
		uploader:   uploader,
		date:       time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
	}
}

func accessToken(t *testing.T, user *model.User) string {
	t.Helper()
	pair, err := util.GenerateTokenPair(user.ID, user.Username, user.IsAdmin, testJWTSecret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// book creates a reservation through the API and returns its id
func (f *apiFixture) book(t *testing.T, tableID uint, slot string, guests int) uint {
	t.Helper()
	w := f.do(t, http.MethodPost, "/reservations", f.guestToken, gin.H{
		"restaurant_id": f.restaurant.ID,
		"table_id":      tableID,
		"date":          f.date,
		"time":          slot,
		"guests":        guests,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reservation := decode(t, w)["reservation"].(map[string]interface{})
	return uint(reservation["id"].(float64))
}
