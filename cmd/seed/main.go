package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kcastreetfood/reservation-backend/config"
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// column order of the import sheet; the first row is a header
const (
	colRestaurantID = iota
	colTableNumber
	colCapacity
	colLocation
	colStatus
	minColumns = colCapacity + 1
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <tables.xlsx>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	restaurantRepo := repository.NewRestaurantRepository(database)
	tableRepo := repository.NewTableRepository(database)
	reservationRepo := repository.NewReservationRepository(database)
	tableService := service.NewTableService(database, restaurantRepo, tableRepo, reservationRepo, cfg.Booking.Location())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	tables, err := readTablesFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total tables to import: %d\n", len(tables))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported, failed := 0, 0
	for _, input := range tables {
		if _, err := tableService.Create(input); err != nil {
			failed++
			fmt.Printf("  skipped restaurant %d table %s: %v\n", input.RestaurantID, input.TableNumber, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed!")
	fmt.Printf("  Imported: %d\n", imported)
	fmt.Printf("  Failed:   %d\n", failed)
}

func readTablesFromXLSX(filePath string) ([]service.CreateTableInput, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	return parseTableRows(rows[1:]), nil
}

// parseTableRows drops malformed rows and repeats of a table number within a restaurant
func parseTableRows(rows [][]string) []service.CreateTableInput {
	var tables []service.CreateTableInput
	seen := make(map[string]bool)
	skipped := 0

	for _, row := range rows {
		if len(row) < minColumns {
			skipped++
			continue
		}

		restaurantID, err := strconv.ParseUint(strings.TrimSpace(row[colRestaurantID]), 10, 64)
		if err != nil || restaurantID == 0 {
			skipped++
			continue
		}
		number := strings.TrimSpace(row[colTableNumber])
		capacity, err := strconv.Atoi(strings.TrimSpace(row[colCapacity]))
		if number == "" || err != nil || capacity <= 0 {
			skipped++
			continue
		}

		input := service.CreateTableInput{
			RestaurantID: uint(restaurantID),
			TableNumber:  number,
			Capacity:     capacity,
		}
		if len(row) > colLocation {
			input.Location = strings.TrimSpace(row[colLocation])
		}
		if len(row) > colStatus && strings.TrimSpace(row[colStatus]) != "" {
			status, err := model.ParseTableStatus(row[colStatus])
			if err != nil {
				skipped++
				continue
			}
			input.Status = status
		}

		key := fmt.Sprintf("%d|%s", input.RestaurantID, strings.ToLower(number))
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		tables = append(tables, input)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows:   %d\n", len(rows))
	fmt.Printf("  Valid tables: %d\n", len(tables))
	fmt.Printf("  Skipped rows: %d\n", skipped)

	return tables
}
