package service

import (
	"bytes"
	"fmt"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const reservationSheet = "Reservations"

var reservationColumns = []struct {
	title string
	width float64
}{
	{"ID", 8},
	{"Date", 12},
	{"Time", 10},
	{"Table", 10},
	{"Guests", 8},
	{"Status", 12},
	{"Guest", 22},
	{"Email", 28},
	{"Phone", 16},
	{"Occasion", 16},
	{"Special requests", 40},
}

// ExportService renders reservation listings as spreadsheets
type ExportService interface {
	// ExportReservations returns the XLSX content and a suggested filename
	ExportReservations(filter repository.ReservationFilter) (*bytes.Buffer, string, error)
}

type exportService struct {
	reservationRepo repository.ReservationRepository
}

func NewExportService(reservationRepo repository.ReservationRepository) ExportService {
	return &exportService{reservationRepo: reservationRepo}
}

// ExportReservations writes every matching reservation; unlike the admin listing it is never capped
func (s *exportService) ExportReservations(filter repository.ReservationFilter) (*bytes.Buffer, string, error) {
	filter.All = true
	reservations, err := s.reservationRepo.FindAll(filter)
	if err != nil {
		logger.Error("Failed to load reservations for export", err)
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(reservationSheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", err
	}

	for i, col := range reservationColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(reservationSheet, name, name, col.width); err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(reservationSheet, cell(i+1, 1), col.title); err != nil {
			return nil, "", err
		}
	}
	lastHeader := cell(len(reservationColumns), 1)
	if err := f.SetCellStyle(reservationSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, "", err
	}

	for i, r := range reservations {
		if err := f.SetSheetRow(reservationSheet, cell(1, i+2), reservationRow(r)); err != nil {
			return nil, "", err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		logger.Error("Failed to write reservation export", err)
		return nil, "", err
	}

	logger.Info("Reservations exported", map[string]interface{}{
		"rows": len(reservations),
	})
	return buf, exportFilename(filter), nil
}

func reservationRow(r model.Reservation) *[]interface{} {
	var tableNumber, guestName, email, phone string
	if r.Table != nil {
		tableNumber = r.Table.TableNumber
	}
	if r.User != nil {
		guestName = r.User.Name
		if guestName == "" {
			guestName = r.User.Username
		}
		email = r.User.Email
		phone = r.User.Phone
	}

	row := []interface{}{
		r.ID,
		r.Date.String(),
		r.Time.Label(),
		tableNumber,
		r.Guests,
		string(r.Status),
		guestName,
		email,
		phone,
		r.Occasion,
		r.SpecialRequests,
	}
	return &row
}

func exportFilename(filter repository.ReservationFilter) string {
	name := "reservations"
	if filter.RestaurantID != nil {
		name += fmt.Sprintf("_restaurant-%d", *filter.RestaurantID)
	}
	if filter.Date != nil {
		name += "_" + filter.Date.String()
	}
	return name + ".xlsx"
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
