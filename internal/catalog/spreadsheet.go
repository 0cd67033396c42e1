package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
)

const sheetName = "Products"

var sheetHeaders = []string{
	"ID", "Name", "Brand", "Category", "Colors", "Description",
	"Base Price", "Unit", "Stock", "Image URL", "Active", "Created At", "Updated At",
}

// ImportResult tallies a spreadsheet import.
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ExportXLSX writes every product, active or not, as a single-sheet workbook.
func (s *service) ExportXLSX(ctx context.Context, w io.Writer) error {
	products, err := s.all(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sheet")
	}

	header := sheet.AddRow()
	for _, h := range sheetHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Brand)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(strings.Join(p.Colors, ", "))
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.BasePrice.StringFixed(2))
		row.AddCell().SetValue(string(p.UnitType))
		row.AddCell().SetValue(p.StockQuantity)
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetValue(strconv.FormatBool(p.IsActive))
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write workbook")
	}
	return nil
}

// ImportXLSX upserts the rows of a workbook laid out like ExportXLSX output.
// Rows that fail validation are skipped and reported; the rest are applied.
func (s *service) ImportXLSX(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "workbook could not be parsed")
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook is empty or missing header row")
	}

	result := &ImportResult{}
	sheet := file.Sheets[0]
	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if row == nil || len(row.Cells) < 11 {
			result.Skipped++
			continue
		}
		input, err := inputFromRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		created := input.ID == ""
		if !created {
			existing, err := s.repo.FindByID(ctx, input.ID)
			switch {
			case err == nil:
				input.Specifications = existing.Specifications
				input.BrochureURL = existing.BrochureURL
			case errors.Is(err, ErrNotFound):
				created = true
			default:
				return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
		}

		if _, err := s.Upsert(ctx, input); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func inputFromRow(row *xlsx.Row) (UpsertInput, error) {
	get := func(index int) string {
		if index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}

	price, err := decimal.NewFromString(get(6))
	if err != nil {
		return UpsertInput{}, fmt.Errorf("invalid base price %q", get(6))
	}
	stock, err := strconv.Atoi(get(8))
	if err != nil {
		return UpsertInput{}, fmt.Errorf("invalid stock %q", get(8))
	}
	unit, err := enums.ParseUnitType(strings.ToLower(get(7)))
	if err != nil {
		return UpsertInput{}, err
	}
	active, err := strconv.ParseBool(strings.ToLower(get(10)))
	if err != nil {
		return UpsertInput{}, fmt.Errorf("invalid active flag %q", get(10))
	}

	return UpsertInput{
		ID:            get(0),
		Name:          get(1),
		Brand:         get(2),
		Category:      get(3),
		Colors:        strings.Split(get(4), ","),
		Description:   get(5),
		BasePrice:     price,
		UnitType:      unit,
		StockQuantity: stock,
		ImageURL:      get(9),
		IsActive:      active,
	}, nil
}
