package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	apperrors "equipment-system/pkg/errors"
)

var importDateLayouts = []string{exportDateFormat, "02.01.2006", "2006-01-02"}

type registerColumns struct {
	code, name, kind, supplier, price, purchased, warranty, description int
}

func (c registerColumns) found() bool {
	return c.code != -1 && c.name != -1 && c.kind != -1
}

// detectRegisterHeader scans the first rows of a sheet for a Code/Name/Type header.
func detectRegisterHeader(rows [][]string) (int, registerColumns) {
	for rIdx, row := range rows {
		if rIdx > 10 {
			break
		}
		cols := registerColumns{-1, -1, -1, -1, -1, -1, -1, -1}
		for cIdx, colName := range row {
			cLower := strings.ToLower(strings.TrimSpace(colName))
			switch {
			case cLower == "code" || cLower == "inventory code":
				cols.code = cIdx
			case cLower == "name":
				cols.name = cIdx
			case cLower == "type" || cLower == "equipment type":
				cols.kind = cIdx
			case strings.Contains(cLower, "supplier"):
				cols.supplier = cIdx
			case strings.Contains(cLower, "price"):
				cols.price = cIdx
			case strings.Contains(cLower, "purchase"):
				cols.purchased = cIdx
			case strings.Contains(cLower, "warranty"):
				cols.warranty = cIdx
			case strings.Contains(cLower, "description"):
				cols.description = cIdx
			}
		}
		if cols.found() {
			return rIdx, cols
		}
	}
	return -1, registerColumns{}
}

// ImportRegister reads an equipment register workbook, the same layout ExportRegister writes,
// and creates one equipment per data row. Rows that fail are reported, the rest are kept.
func (s *EquipmentService) ImportRegister(ctx context.Context, r io.Reader) (*dto.ImportRegisterResultDTO, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "File is not a valid xlsx workbook", err, nil)
	}
	defer f.Close()

	var rows [][]string
	headerRow := -1
	var cols registerColumns
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if idx, c := detectRegisterHeader(sheetRows); idx != -1 {
			rows, headerRow, cols = sheetRows, idx, c
			break
		}
	}
	if headerRow == -1 {
		return nil, apperrors.NewValidationError("File", "Header row with Code, Name and Type columns was not found")
	}

	result := &dto.ImportRegisterResultDTO{}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		code := cell(row, cols.code)
		if code == "" || isTotalRow(code) { // пустые строки и итог пропускаем
			continue
		}
		result.TotalRows++
		lineNum := i + 1

		payload, err := s.importRow(row, cols)
		if err == nil {
			equipment, createErr := s.CreateEquipment(ctx, *payload)
			if createErr == nil {
				result.CreatedCount++
				result.CreatedIDs = append(result.CreatedIDs, equipment.ID)
				continue
			}
			err = createErr
		}

		var vErr *apperrors.ValidationError
		if !errors.As(err, &vErr) {
			return nil, fmt.Errorf("import row %d: %w", lineNum, err)
		}
		result.FailureCount++
		result.Errors = append(result.Errors, dto.ImportRowErrorDTO{Row: lineNum, Code: code, Message: vErr.Error()})
	}

	s.logger.Info("equipment register imported",
		zap.Int("rows", result.TotalRows),
		zap.Int("created", result.CreatedCount),
		zap.Int("failed", result.FailureCount),
	)
	return result, nil
}

func (s *EquipmentService) importRow(row []string, cols registerColumns) (*dto.CreateEquipmentDTO, error) {
	payload := &dto.CreateEquipmentDTO{
		Code: cell(row, cols.code),
		Name: cell(row, cols.name),
		Type: cell(row, cols.kind),
	}
	if payload.Name == "" {
		return nil, apperrors.NewValidationError("Name", "Name is required")
	}
	if payload.Type == "" {
		return nil, apperrors.NewValidationError("Type", "Type is required")
	}
	if v := cell(row, cols.supplier); v != "" {
		payload.Supplier = null.StringFrom(v)
	}
	if v := cell(row, cols.description); v != "" {
		payload.Description = null.StringFrom(v)
	}
	if v := cell(row, cols.price); v != "" {
		// Excel с русской локалью пишет запятую вместо точки
		price, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil || price < 0 {
			return nil, apperrors.NewValidationError("Price", fmt.Sprintf("Invalid price %q", v))
		}
		payload.Price = price
	}
	if v := cell(row, cols.purchased); v != "" {
		t, ok := parseImportDate(v)
		if !ok {
			return nil, apperrors.NewValidationError("PurchaseDate", fmt.Sprintf("Invalid purchase date %q", v))
		}
		if t.After(s.now()) {
			return nil, apperrors.NewValidationError("PurchaseDate", "Purchase date cannot be in the future")
		}
		payload.PurchaseDate = null.TimeFrom(t)
	}
	if v := cell(row, cols.warranty); v != "" {
		t, ok := parseImportDate(v)
		if !ok {
			return nil, apperrors.NewValidationError("WarrantyEndDate", fmt.Sprintf("Invalid warranty end date %q", v))
		}
		payload.WarrantyEndDate = null.TimeFrom(t)
	}
	return payload, nil
}

func parseImportDate(v string) (time.Time, bool) {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isTotalRow(v string) bool {
	v = strings.ToLower(v)
	return strings.HasPrefix(v, "total")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
