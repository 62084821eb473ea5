// Package sheet persists the catalog and ledger in an xlsx workbook with one
// sheet per logical table, mirroring the spreadsheet layout the data came
// from: a header row followed by append-only data rows addressed by their
// 1-based row number.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/macroledger/backend/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	foodHeader = []interface{}{"Food", "Unit", "Protein", "Carbs", "Fats", "Calories", "Timestamp"}
	logHeader  = []interface{}{"Date", "Food", "Quantity", "Unit", "Protein", "Carbs", "Fats", "Calories"}
)

// Store is the workbook-backed implementation of domain.SheetStore. A mutex
// serializes access to the file: there is one writer path per interaction and
// the workbook cannot be written concurrently.
type Store struct {
	path      string
	foodSheet string
	logSheet  string
	mu        sync.Mutex
}

// NewStore opens the workbook at path, creating it with both sheets and their
// header rows when it does not exist yet.
func NewStore(path, foodSheet, logSheet string) (*Store, error) {
	if foodSheet == "" {
		foodSheet = "FoodDatabase"
	}
	if logSheet == "" {
		logSheet = "FoodLog"
	}
	s := &Store{path: path, foodSheet: foodSheet, logSheet: logSheet}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.bootstrap(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat workbook: %w", err)
	}
	return s, nil
}

// bootstrap writes a fresh workbook containing both tables with header rows.
func (s *Store) bootstrap() error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(defaultSheet, s.foodSheet); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	if _, err := f.NewSheet(s.logSheet); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	if err := f.SetSheetRow(s.foodSheet, "A1", &foodHeader); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	if err := f.SetSheetRow(s.logSheet, "A1", &logHeader); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

func (s *Store) sheetName(table domain.Table) (string, error) {
	switch table {
	case domain.TableFoods:
		return s.foodSheet, nil
	case domain.TableLog:
		return s.logSheet, nil
	}
	return "", fmt.Errorf("unknown table %q", table)
}

// FetchFoods reads the whole FoodDatabase sheet. Rows that fail the typed
// parse are counted and skipped, never propagated as dynamic records.
func (s *Store) FetchFoods(ctx context.Context) (*domain.CatalogSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(s.foodSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.foodSheet, err)
	}

	snapshot := &domain.CatalogSnapshot{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		profile, ok := parseFoodRow(row, i+1)
		if !ok {
			snapshot.Skipped++
			continue
		}
		snapshot.Foods = append(snapshot.Foods, profile)
	}
	return snapshot, nil
}

// AppendFood appends one food row to the FoodDatabase sheet.
func (s *Store) AppendFood(ctx context.Context, profile domain.FoodProfile) error {
	timestamp := ""
	if !profile.CreatedAt.IsZero() {
		timestamp = profile.CreatedAt.Format(timestampLayout)
	}
	return s.appendRow(ctx, s.foodSheet, []interface{}{
		profile.Name,
		profile.Unit,
		profile.Protein,
		profile.Carbs,
		profile.Fats,
		profile.Calories,
		timestamp,
	})
}

// FetchEntries reads the whole FoodLog sheet. Rows with malformed dates or
// unparseable numbers are counted in Skipped and excluded from aggregation.
func (s *Store) FetchEntries(ctx context.Context) (*domain.LedgerSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(s.logSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.logSheet, err)
	}

	snapshot := &domain.LedgerSnapshot{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		entry, ok := parseLogRow(row, i+1)
		if !ok {
			snapshot.Skipped++
			continue
		}
		snapshot.Entries = append(snapshot.Entries, entry)
	}
	return snapshot, nil
}

// AppendEntry appends one entry row to the FoodLog sheet. Dates are always
// written in the dd/mm/yyyy storage format.
func (s *Store) AppendEntry(ctx context.Context, entry domain.LogEntry) error {
	return s.appendRow(ctx, s.logSheet, []interface{}{
		domain.FormatDate(entry.Date),
		entry.Food,
		entry.Quantity,
		entry.Unit,
		entry.Protein,
		entry.Carbs,
		entry.Fats,
		entry.Calories,
	})
}

// DeleteRow removes one data row by its 1-based sheet row number. Row 1 is the
// header and cannot be deleted.
func (s *Store) DeleteRow(ctx context.Context, table domain.Table, row int) error {
	name, err := s.sheetName(table)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if row < 2 || row > len(rows) {
		return fmt.Errorf("%w: %d (sheet %s has rows 2..%d)", domain.ErrRowOutOfRange, row, name, len(rows))
	}

	if err := f.RemoveRow(name, row); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

// ExportCSV serializes one table to UTF-8 CSV with the header row first,
// columns in sheet order.
func (s *Store) ExportCSV(ctx context.Context, table domain.Table) ([]byte, error) {
	name, err := s.sheetName(table)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		// GetRows trims trailing empty cells; pad back to header width.
		for len(row) < width {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// appendRow writes values into the first free row of a sheet and saves.
func (s *Store) appendRow(ctx context.Context, sheetName string, values []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

// parseFoodRow converts one FoodDatabase row into a typed profile. Layout:
// Food | Unit | Protein | Carbs | Fats | Calories | Timestamp.
func parseFoodRow(row []string, sheetRow int) (domain.FoodProfile, bool) {
	name := cell(row, 0)
	if name == "" {
		return domain.FoodProfile{}, false
	}

	macros, ok := parseMacros(row, 2)
	if !ok {
		return domain.FoodProfile{}, false
	}

	profile := domain.FoodProfile{
		Name:   name,
		Unit:   cell(row, 1),
		Macros: macros,
		Row:    sheetRow,
	}
	if ts := cell(row, 6); ts != "" {
		if created, err := time.Parse(timestampLayout, ts); err == nil {
			profile.CreatedAt = created.UTC()
		}
	}
	return profile, true
}

// parseLogRow converts one FoodLog row into a typed entry. Layout:
// Date | Food | Quantity | Unit | Protein | Carbs | Fats | Calories.
func parseLogRow(row []string, sheetRow int) (domain.LogEntry, bool) {
	date, err := domain.ParseDate(cell(row, 0))
	if err != nil {
		return domain.LogEntry{}, false
	}
	food := cell(row, 1)
	if food == "" {
		return domain.LogEntry{}, false
	}
	quantity, err := strconv.ParseFloat(cell(row, 2), 64)
	if err != nil || quantity <= 0 {
		return domain.LogEntry{}, false
	}
	macros, ok := parseMacros(row, 4)
	if !ok {
		return domain.LogEntry{}, false
	}

	return domain.LogEntry{
		Date:     date,
		Food:     food,
		Quantity: quantity,
		Unit:     cell(row, 3),
		Macros:   macros,
		Row:      sheetRow,
	}, true
}

// parseMacros reads four consecutive numeric cells starting at offset. Empty
// cells count as zero; negative or unparseable values fail the row.
func parseMacros(row []string, offset int) (domain.Macros, bool) {
	values := make([]float64, 4)
	for i := range values {
		raw := cell(row, offset+i)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return domain.Macros{}, false
		}
		values[i] = v
	}
	return domain.Macros{
		Protein:  values[0],
		Carbs:    values[1],
		Fats:     values[2],
		Calories: values[3],
	}, true
}

// cell returns the trimmed value at index i, tolerating short rows.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
