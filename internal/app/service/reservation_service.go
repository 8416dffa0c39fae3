package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"gorm.io/gorm"
)

// completionGrace is how long after its start a confirmed reservation counts as finished
const completionGrace = 2 * time.Hour

// BookingPolicy holds the rules every requested slot is checked against
type BookingPolicy struct {
	MaxPartySize int
	TimeSlots    []model.SlotTime
	Location     *time.Location
}

// NewBookingPolicy parses the permitted slot labels
func NewBookingPolicy(maxPartySize int, slots []string, loc *time.Location) (BookingPolicy, error) {
	if maxPartySize <= 0 {
		return BookingPolicy{}, fmt.Errorf("max party size must be positive, got %d", maxPartySize)
	}
	if loc == nil {
		loc = time.Local
	}

	parsed := make([]model.SlotTime, 0, len(slots))
	for _, raw := range slots {
		slot, err := model.ParseSlotTime(raw)
		if err != nil {
			return BookingPolicy{}, err
		}
		parsed = append(parsed, slot)
	}
	if len(parsed) == 0 {
		return BookingPolicy{}, errors.New("at least one time slot is required")
	}

	return BookingPolicy{MaxPartySize: maxPartySize, TimeSlots: parsed, Location: loc}, nil
}

func (p BookingPolicy) offers(slot model.SlotTime) bool {
	for _, s := range p.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func (p BookingPolicy) checkPartySize(guests int) error {
	if guests <= 0 || guests > p.MaxPartySize {
		return ErrInvalidPartySize
	}
	return nil
}

// checkSlot validates a requested slot relative to today
func (p BookingPolicy) checkSlot(date model.BookingDate, slot model.SlotTime, today model.BookingDate) error {
	if date.Before(today) {
		return ErrPastDate
	}
	if !p.offers(slot) {
		return ErrSlotNotOffered
	}
	return nil
}

// Caller is the authenticated identity behind a request
type Caller struct {
	UserID  uint
	IsAdmin bool
}

func (c Caller) owns(r *model.Reservation) bool {
	return c.IsAdmin || r.UserID == c.UserID
}

type AvailabilityQuery struct {
	RestaurantID uint
	Date         model.BookingDate
	Time         model.SlotTime
	Guests       int
}

type CreateReservationInput struct {
	UserID          uint
	RestaurantID    uint
	TableID         uint
	Date            model.BookingDate
	Time            model.SlotTime
	Guests          int
	Occasion        string
	SpecialRequests string
}

// UpdateReservationInput carries only the fields being changed
type UpdateReservationInput struct {
	Date            *model.BookingDate
	Time            *model.SlotTime
	TableID         *uint
	Guests          *int
	Occasion        *string
	SpecialRequests *string
	Status          *model.ReservationStatus
}

type UserReservations struct {
	Upcoming []model.Reservation `json:"upcoming"`
	Past     []model.Reservation `json:"past"`
}

type ReservationService interface {
	FindAvailableTables(query AvailabilityQuery) ([]model.Table, error)
	Create(input CreateReservationInput) (*model.Reservation, error)
	Update(caller Caller, id uint, input UpdateReservationInput) (*model.Reservation, error)
	Cancel(caller Caller, id uint) (*model.Reservation, error)
	Get(caller Caller, id uint) (*model.Reservation, error)
	ListForUser(userID uint) (*UserReservations, error)
	ListAll(filter repository.ReservationFilter) ([]model.Reservation, error)
	CompletePastReservations() (int64, error)
}

type reservationService struct {
	db              *gorm.DB
	restaurantRepo  repository.RestaurantRepository
	tableRepo       repository.TableRepository
	reservationRepo repository.ReservationRepository
	policy          BookingPolicy
	now             func() time.Time
}

type ReservationServiceOption func(*reservationService)

// WithClock replaces time.Now, used by tests pinned to a fixed day
func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *reservationService) {
		s.now = now
	}
}

func NewReservationService(
	db *gorm.DB,
	restaurantRepo repository.RestaurantRepository,
	tableRepo repository.TableRepository,
	reservationRepo repository.ReservationRepository,
	policy BookingPolicy,
	opts ...ReservationServiceOption,
) ReservationService {
	s := &reservationService{
		db:              db,
		restaurantRepo:  restaurantRepo,
		tableRepo:       tableRepo,
		reservationRepo: reservationRepo,
		policy:          policy,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reservationService) localNow() time.Time {
	return s.now().In(s.policy.Location)
}

func (s *reservationService) today() model.BookingDate {
	return model.BookingDateOf(s.localNow())
}

func (s *reservationService) FindAvailableTables(query AvailabilityQuery) ([]model.Table, error) {
	logger.Debug("Finding available tables", map[string]interface{}{
		"restaurant_id": query.RestaurantID,
		"date":          query.Date,
		"time":          query.Time,
		"guests":        query.Guests,
	})

	if err := s.checkRequest(query.Date, query.Time, query.Guests); err != nil {
		return nil, err
	}

	if _, err := s.restaurantRepo.FindByID(query.RestaurantID, false); err != nil {
		return nil, notFoundOr(err, ErrRestaurantNotFound)
	}

	tables, err := s.tableRepo.FindAvailable(repository.AvailabilityFilter{
		RestaurantID: query.RestaurantID,
		Date:         query.Date,
		Time:         query.Time,
		Guests:       query.Guests,
	})
	if err != nil {
		logger.Error("Failed to query available tables", err, map[string]interface{}{
			"restaurant_id": query.RestaurantID,
		})
		return nil, err
	}
	if tables == nil {
		tables = []model.Table{}
	}

	logger.Debug("Available tables found", map[string]interface{}{
		"restaurant_id": query.RestaurantID,
		"count":         len(tables),
	})
	return tables, nil
}

func (s *reservationService) checkRequest(date model.BookingDate, slot model.SlotTime, guests int) error {
	if err := s.policy.checkSlot(date, slot, s.today()); err != nil {
		logger.Warn("Rejected slot request", map[string]interface{}{
			"date":   date,
			"time":   slot,
			"reason": err.Error(),
		})
		return err
	}
	if err := s.policy.checkPartySize(guests); err != nil {
		logger.Warn("Rejected party size", map[string]interface{}{
			"guests": guests,
			"max":    s.policy.MaxPartySize,
		})
		return err
	}
	return nil
}

// lockTable loads and locks the table a reservation will hold, then checks it can seat guests
func lockTable(tables repository.TableRepository, restaurantID, tableID uint, guests int) (*model.Table, error) {
	table, err := tables.FindForUpdate(restaurantID, tableID)
	if err != nil {
		return nil, notFoundOr(err, ErrTableNotFound)
	}
	if !table.Bookable() {
		logger.Warn("Table under maintenance", map[string]interface{}{
			"table_id": table.ID,
		})
		return nil, ErrTableMaintenance
	}
	if guests > table.Capacity {
		logger.Warn("Party exceeds table capacity", map[string]interface{}{
			"table_id": table.ID,
			"capacity": table.Capacity,
			"guests":   guests,
		})
		return nil, ErrExceedsCapacity
	}
	return table, nil
}

func (s *reservationService) Create(input CreateReservationInput) (*model.Reservation, error) {
	logger.Info("Creating reservation", map[string]interface{}{
		"user_id":       input.UserID,
		"restaurant_id": input.RestaurantID,
		"table_id":      input.TableID,
		"date":          input.Date,
		"time":          input.Time,
		"guests":        input.Guests,
	})

	if err := s.checkRequest(input.Date, input.Time, input.Guests); err != nil {
		return nil, err
	}

	var created *model.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reservations := s.reservationRepo.WithTx(tx)

		restaurant, err := s.restaurantRepo.WithTx(tx).FindByID(input.RestaurantID, false)
		if err != nil {
			return notFoundOr(err, ErrRestaurantNotFound)
		}

		if _, err := lockTable(s.tableRepo.WithTx(tx), input.RestaurantID, input.TableID, input.Guests); err != nil {
			return err
		}

		taken, err := reservations.HasActiveReservation(input.RestaurantID, input.TableID, input.Date, input.Time, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotUnavailable
		}

		reservation := &model.Reservation{
			RestaurantID:    input.RestaurantID,
			UserID:          input.UserID,
			TableID:         input.TableID,
			Date:            input.Date,
			Time:            input.Time,
			Guests:          input.Guests,
			Occasion:        input.Occasion,
			SpecialRequests: input.SpecialRequests,
			Status:          restaurant.InitialReservationStatus(),
		}
		if err := reservations.Create(reservation); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrSlotUnavailable
			}
			return err
		}

		created = reservation
		return nil
	})
	if err != nil {
		s.logRejection("Reservation creation failed", err, map[string]interface{}{
			"user_id":  input.UserID,
			"table_id": input.TableID,
			"date":     input.Date,
			"time":     input.Time,
		})
		return nil, err
	}

	logger.Info("Reservation created", map[string]interface{}{
		"reservation_id": created.ID,
		"status":         created.Status,
	})
	return s.reload(created)
}

func (s *reservationService) Get(caller Caller, id uint) (*model.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, ErrReservationNotFound)
	}
	if !caller.owns(reservation) {
		logger.Warn("Reservation access denied", map[string]interface{}{
			"reservation_id": id,
			"user_id":        caller.UserID,
		})
		return nil, ErrNotReservationOwner
	}
	return reservation, nil
}

func (s *reservationService) Update(caller Caller, id uint, input UpdateReservationInput) (*model.Reservation, error) {
	logger.Info("Updating reservation", map[string]interface{}{
		"reservation_id": id,
		"user_id":        caller.UserID,
		"is_admin":       caller.IsAdmin,
	})

	var updated model.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reservations := s.reservationRepo.WithTx(tx)

		// read under the row lock; Update writes every column back
		current, err := reservations.FindForUpdate(id)
		if err != nil {
			return notFoundOr(err, ErrReservationNotFound)
		}
		if !caller.owns(current) {
			return ErrNotReservationOwner
		}
		if current.Status.IsTerminal() {
			return ErrReservationLocked
		}

		updated = *current
		applyReservationChanges(&updated, input)

		if input.Status != nil {
			if !caller.IsAdmin && *input.Status != current.Status && *input.Status != model.ReservationStatusCancelled {
				return ErrAdminOnlyStatus
			}
			next, err := current.Status.TransitionTo(*input.Status)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidState, err)
			}
			updated.Status = next
		}

		slotChanged := updated.Date != current.Date || updated.Time != current.Time || updated.TableID != current.TableID
		guestsChanged := updated.Guests != current.Guests

		if slotChanged {
			if err := s.policy.checkSlot(updated.Date, updated.Time, s.today()); err != nil {
				return err
			}
		}
		if guestsChanged {
			if err := s.policy.checkPartySize(updated.Guests); err != nil {
				return err
			}
		}

		if updated.Status.IsActive() && (slotChanged || guestsChanged) {
			if _, err := lockTable(s.tableRepo.WithTx(tx), updated.RestaurantID, updated.TableID, updated.Guests); err != nil {
				return err
			}
			if slotChanged {
				taken, err := reservations.HasActiveReservation(updated.RestaurantID, updated.TableID, updated.Date, updated.Time, updated.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrSlotUnavailable
				}
			}
		}

		if err := reservations.Update(&updated); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrSlotUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.logRejection("Reservation update failed", err, map[string]interface{}{
			"reservation_id": id,
			"user_id":        caller.UserID,
		})
		return nil, err
	}

	logger.Info("Reservation updated", map[string]interface{}{
		"reservation_id": updated.ID,
		"status":         updated.Status,
	})
	return s.reload(&updated)
}

func applyReservationChanges(r *model.Reservation, input UpdateReservationInput) {
	if input.Date != nil {
		r.Date = *input.Date
	}
	if input.Time != nil {
		r.Time = *input.Time
	}
	if input.TableID != nil {
		r.TableID = *input.TableID
	}
	if input.Guests != nil {
		r.Guests = *input.Guests
	}
	if input.Occasion != nil {
		r.Occasion = *input.Occasion
	}
	if input.SpecialRequests != nil {
		r.SpecialRequests = *input.SpecialRequests
	}
}

func (s *reservationService) Cancel(caller Caller, id uint) (*model.Reservation, error) {
	logger.Info("Cancelling reservation", map[string]interface{}{
		"reservation_id": id,
		"user_id":        caller.UserID,
	})

	var cancelled model.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reservations := s.reservationRepo.WithTx(tx)

		// read under the row lock; Update writes every column back
		current, err := reservations.FindForUpdate(id)
		if err != nil {
			return notFoundOr(err, ErrReservationNotFound)
		}
		if !caller.owns(current) {
			return ErrNotReservationOwner
		}
		if !current.Status.CanTransitionTo(model.ReservationStatusCancelled) {
			return ErrReservationLocked
		}

		cancelled = *current
		cancelled.Status = model.ReservationStatusCancelled
		return reservations.Update(&cancelled)
	})
	if err != nil {
		s.logRejection("Reservation cancellation failed", err, map[string]interface{}{
			"reservation_id": id,
			"user_id":        caller.UserID,
		})
		return nil, err
	}

	logger.Info("Reservation cancelled", map[string]interface{}{
		"reservation_id": id,
	})
	return s.reload(&cancelled)
}

// ListForUser splits a user's reservations around the current moment
func (s *reservationService) ListForUser(userID uint) (*UserReservations, error) {
	all, err := s.reservationRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to list user reservations", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	now := s.localNow()
	result := &UserReservations{
		Upcoming: []model.Reservation{},
		Past:     []model.Reservation{},
	}
	for _, r := range all {
		if r.IsUpcoming(now) {
			result.Upcoming = append(result.Upcoming, r)
		} else {
			result.Past = append(result.Past, r)
		}
	}
	// repository order is ascending, past is shown most recent first
	for i, j := 0, len(result.Past)-1; i < j; i, j = i+1, j-1 {
		result.Past[i], result.Past[j] = result.Past[j], result.Past[i]
	}

	logger.Debug("User reservations listed", map[string]interface{}{
		"user_id":  userID,
		"upcoming": len(result.Upcoming),
		"past":     len(result.Past),
	})
	return result, nil
}

func (s *reservationService) ListAll(filter repository.ReservationFilter) ([]model.Reservation, error) {
	reservations, err := s.reservationRepo.FindAll(filter)
	if err != nil {
		logger.Error("Failed to list reservations", err)
		return nil, err
	}
	return reservations, nil
}

// CompletePastReservations closes out confirmed reservations once their seating window has passed
func (s *reservationService) CompletePastReservations() (int64, error) {
	cutoff := s.localNow().Add(-completionGrace)

	count, err := s.reservationRepo.CompleteStartedBefore(model.BookingDateOf(cutoff), model.SlotTimeOf(cutoff))
	if err != nil {
		logger.Error("Failed to complete past reservations", err)
		return 0, err
	}

	if count > 0 {
		logger.Info("Past reservations completed", map[string]interface{}{
			"count":  count,
			"cutoff": cutoff.Format(time.RFC3339),
		})
	}
	return count, nil
}

func (s *reservationService) reload(r *model.Reservation) (*model.Reservation, error) {
	loaded, err := s.reservationRepo.FindByID(r.ID)
	if err != nil {
		logger.Error("Failed to reload reservation", err, map[string]interface{}{
			"reservation_id": r.ID,
		})
		return nil, err
	}
	return loaded, nil
}

// logRejection logs business rejections at warn and everything else at error
func (s *reservationService) logRejection(msg string, err error, fields map[string]interface{}) {
	if isBusinessError(err) {
		fields["reason"] = err.Error()
		logger.Warn(msg, fields)
		return
	}
	logger.Error(msg, err, fields)
}

func isBusinessError(err error) bool {
	for _, kind := range []error{ErrInvalidArgument, ErrNotFound, ErrForbidden, ErrConflict, ErrInvalidState, ErrUnauthenticated} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// notFoundOr maps gorm.ErrRecordNotFound to notFound and passes other errors through
func notFoundOr(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
