package transport

import (
	"bytes"
	"fmt"
	"time"

	"catalog-api/internal/dto"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/dustin/go-humanize"
)

const (
	productSheet = "Products"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportTime   = "2006-01-02 15:04:05"
)

var (
	headerStyleJSON = `{
		"border": [
			{"type": "left", "color": "#000000", "style": 1},
			{"type": "top", "color": "#000000", "style": 1},
			{"type": "right", "color": "#000000", "style": 1},
			{"type": "bottom", "color": "#000000", "style": 1}
		],
		"fill": {"type": "pattern", "pattern": 1, "color": ["#96b753"]},
		"font": {"bold": true},
		"alignment": {"shrink_to_fit": true, "horizontal": "center"}
	}`
	dataStyleJSON = `{
		"border": [
			{"type": "left", "color": "#000000", "style": 1},
			{"type": "top", "color": "#000000", "style": 1},
			{"type": "right", "color": "#000000", "style": 1},
			{"type": "bottom", "color": "#000000", "style": 1}
		],
		"alignment": {"shrink_to_fit": true}
	}`

	productColumns = []string{"ID", "Name", "Description", "Price", "Stock", "Category", "Created At", "Updated At"}
)

// productWorkbook renders products as a single-sheet xlsx file.
func productWorkbook(products []dto.ProductDTO) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	f.NewSheet(productSheet)
	f.DeleteSheet("Sheet1")

	if err := f.SetColWidth(productSheet, "A", "A", 10); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(productSheet, "B", "H", 30); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(headerStyleJSON)
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(dataStyleJSON)
	if err != nil {
		return nil, err
	}

	sw, err := f.NewStreamWriter(productSheet)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(productColumns))
	for i, title := range productColumns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: title}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}

	for n, p := range products {
		category := "-"
		if p.Category != nil {
			category = p.Category.Name
		}

		row := []interface{}{
			excelize.Cell{StyleID: dataStyle, Value: p.ID},
			excelize.Cell{StyleID: dataStyle, Value: p.Name},
			excelize.Cell{StyleID: dataStyle, Value: p.Description},
			excelize.Cell{StyleID: dataStyle, Value: humanize.FormatFloat("#,###.##", p.Price.InexactFloat64())},
			excelize.Cell{StyleID: dataStyle, Value: humanize.Comma(int64(p.StockQuantity))},
			excelize.Cell{StyleID: dataStyle, Value: category},
			excelize.Cell{StyleID: dataStyle, Value: formatExportTime(p.CreatedAt)},
			excelize.Cell{StyleID: dataStyle, Value: updatedLabel(p.CreatedAt, p.UpdatedAt)},
		}

		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func exportFileName(now time.Time) string {
	return fmt.Sprintf("products_%s.xlsx", now.UTC().Format("20060102_150405"))
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(exportTime)
}

// updatedLabel shows "-" for rows never changed after creation.
func updatedLabel(created, updated *time.Time) string {
	if updated == nil || (created != nil && updated.Equal(*created)) {
		return "-"
	}
	return formatExportTime(updated)
}
