package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"equipment-system/internal/entities"
	"equipment-system/pkg/utils"
)

const exportDateFormat = "02.01.2006 15:04"

var ledgerHeaders = []interface{}{
	"№", "Date", "Equipment type", "Type", "Quantity", "Reason", "Performed by", "Transaction ID",
}

var equipmentHeaders = []interface{}{
	"№", "Code", "Name", "Type", "Status", "Supplier", "Price", "Purchase date", "Warranty end", "Version",
}

func buildLedgerWorkbook(entries []entities.LedgerEntry) ([]byte, error) {
	rows := make([][]interface{}, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []interface{}{
			i + 1,
			e.TransactionDate.Format(exportDateFormat),
			e.EquipmentType,
			e.Type.String(),
			e.Quantity,
			utils.SafeDeref(e.Reason),
			e.PerformedBy,
			e.ID.String(),
		})
	}
	return writeWorkbook("Warehouse ledger", ledgerHeaders, rows, map[string]float64{"B": 18, "C": 25, "F": 50, "G": 25, "H": 38})
}

func buildEquipmentWorkbook(list []entities.Equipment) ([]byte, error) {
	rows := make([][]interface{}, 0, len(list))
	for i, e := range list {
		var purchased, warranty string
		if e.PurchaseDate != nil {
			purchased = e.PurchaseDate.Format(exportDateFormat)
		}
		if e.WarrantyEndDate != nil {
			warranty = e.WarrantyEndDate.Format(exportDateFormat)
		}
		rows = append(rows, []interface{}{
			i + 1, e.Code, e.Name, e.Type, e.Status.String(), utils.SafeDeref(e.Supplier),
			e.Price, purchased, warranty, e.Version,
		})
	}
	return writeWorkbook("Equipment register", equipmentHeaders, rows, map[string]float64{"B": 15, "C": 35, "D": 20, "F": 25, "H": 18, "I": 18})
}

func writeWorkbook(sheet string, headers []interface{}, rows [][]interface{}, widths map[string]float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
