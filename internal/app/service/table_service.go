package service

import (
	"strings"
	"time"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"gorm.io/gorm"
)

type CreateTableInput struct {
	RestaurantID uint
	TableNumber  string
	Capacity     int
	Location     string
	Status       model.TableStatus // empty means available
}

// UpdateTableInput carries only the fields being changed
type UpdateTableInput struct {
	TableNumber *string
	Capacity    *int
	Location    *string
	Status      *model.TableStatus
}

type TableService interface {
	ListByRestaurant(restaurantID uint) ([]model.Table, error)
	GetByID(id uint) (*model.Table, error)
	Create(input CreateTableInput) (*model.Table, error)
	Update(id uint, input UpdateTableInput) (*model.Table, error)
	Delete(id uint) error
}

type tableService struct {
	db              *gorm.DB
	restaurantRepo  repository.RestaurantRepository
	tableRepo       repository.TableRepository
	reservationRepo repository.ReservationRepository
	loc             *time.Location
	now             func() time.Time
}

type TableServiceOption func(*tableService)

func WithTableClock(now func() time.Time) TableServiceOption {
	return func(s *tableService) {
		s.now = now
	}
}

func NewTableService(
	db *gorm.DB,
	restaurantRepo repository.RestaurantRepository,
	tableRepo repository.TableRepository,
	reservationRepo repository.ReservationRepository,
	loc *time.Location,
	opts ...TableServiceOption,
) TableService {
	if loc == nil {
		loc = time.Local
	}
	s := &tableService{
		db:              db,
		restaurantRepo:  restaurantRepo,
		tableRepo:       tableRepo,
		reservationRepo: reservationRepo,
		loc:             loc,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tableService) ListByRestaurant(restaurantID uint) ([]model.Table, error) {
	if _, err := s.restaurantRepo.FindByID(restaurantID, false); err != nil {
		return nil, notFoundOr(err, ErrRestaurantNotFound)
	}

	tables, err := s.tableRepo.FindByRestaurantID(restaurantID)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []model.Table{}
	}
	return tables, nil
}

func (s *tableService) GetByID(id uint) (*model.Table, error) {
	table, err := s.tableRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, ErrTableNotFound)
	}
	return table, nil
}

func (s *tableService) Create(input CreateTableInput) (*model.Table, error) {
	logger.Info("Creating table", map[string]interface{}{
		"restaurant_id": input.RestaurantID,
		"table_number":  input.TableNumber,
		"capacity":      input.Capacity,
	})

	table := &model.Table{
		RestaurantID: input.RestaurantID,
		TableNumber:  strings.TrimSpace(input.TableNumber),
		Capacity:     input.Capacity,
		Location:     strings.TrimSpace(input.Location),
		Status:       input.Status,
	}
	if table.Status == "" {
		table.Status = model.TableStatusAvailable
	}
	if err := validateTable(table); err != nil {
		return nil, err
	}

	if _, err := s.restaurantRepo.FindByID(input.RestaurantID, false); err != nil {
		return nil, notFoundOr(err, ErrRestaurantNotFound)
	}
	if err := s.ensureNumberFree(table); err != nil {
		return nil, err
	}

	if err := s.tableRepo.Create(table); err != nil {
		return nil, err
	}

	logger.Info("Table created", map[string]interface{}{
		"table_id": table.ID,
	})
	return table, nil
}

func (s *tableService) Update(id uint, input UpdateTableInput) (*model.Table, error) {
	logger.Info("Updating table", map[string]interface{}{
		"table_id": id,
	})

	table, err := s.tableRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, ErrTableNotFound)
	}
	table.Restaurant = nil

	renamed := false
	if input.TableNumber != nil {
		number := strings.TrimSpace(*input.TableNumber)
		renamed = number != table.TableNumber
		table.TableNumber = number
	}
	if input.Capacity != nil {
		table.Capacity = *input.Capacity
	}
	if input.Location != nil {
		table.Location = strings.TrimSpace(*input.Location)
	}
	if input.Status != nil {
		table.Status = *input.Status
	}

	if err := validateTable(table); err != nil {
		return nil, err
	}
	if renamed {
		if err := s.ensureNumberFree(table); err != nil {
			return nil, err
		}
	}

	if err := s.tableRepo.Update(table); err != nil {
		return nil, err
	}

	logger.Info("Table updated", map[string]interface{}{
		"table_id": table.ID,
		"status":   table.Status,
	})
	return table, nil
}

// Delete removes a table unless active reservations from today onwards still hold it
func (s *tableService) Delete(id uint) error {
	logger.Info("Deleting table", map[string]interface{}{
		"table_id": id,
	})

	today := model.BookingDateOf(s.now().In(s.loc))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tables := s.tableRepo.WithTx(tx)

		table, err := tables.FindByID(id)
		if err != nil {
			return notFoundOr(err, ErrTableNotFound)
		}
		// same lock the reservation writer takes, so no booking can slip in
		if _, err := tables.FindForUpdate(table.RestaurantID, table.ID); err != nil {
			return notFoundOr(err, ErrTableNotFound)
		}

		active, err := s.reservationRepo.WithTx(tx).CountActiveForTableFrom(table.ID, today)
		if err != nil {
			return err
		}
		if active > 0 {
			logger.Warn("Refusing to delete table with active reservations", map[string]interface{}{
				"table_id": table.ID,
				"active":   active,
			})
			return ErrTableInUse
		}

		return tables.Delete(table.ID)
	})
	if err != nil {
		return err
	}

	logger.Info("Table deleted", map[string]interface{}{
		"table_id": id,
	})
	return nil
}

func validateTable(table *model.Table) error {
	if table.TableNumber == "" || table.Capacity <= 0 {
		return ErrInvalidTable
	}
	if _, err := model.ParseTableStatus(string(table.Status)); err != nil {
		return ErrInvalidTable
	}
	return nil
}

func (s *tableService) ensureNumberFree(table *model.Table) error {
	existing, err := s.tableRepo.FindByRestaurantID(table.RestaurantID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != table.ID && strings.EqualFold(other.TableNumber, table.TableNumber) {
			return ErrTableNumberTaken
		}
	}
	return nil
}
