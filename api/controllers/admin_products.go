package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	"github.com/wirebazaar/wirebazaar-backend/api/validators"
	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

const (
	maxImportBytes = 5 << 20
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type productRequest struct {
	Name           string            `json:"name" validate:"required"`
	Brand          string            `json:"brand" validate:"required"`
	Category       string            `json:"category" validate:"required"`
	Colors         []string          `json:"colors" validate:"required,min=1"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
	BasePrice      decimal.Decimal   `json:"base_price"`
	UnitType       string            `json:"unit_type" validate:"required"`
	StockQuantity  int               `json:"stock_quantity" validate:"min=0"`
	ImageURL       string            `json:"image_url"`
	BrochureURL    *string           `json:"brochure_url"`
	IsActive       *bool             `json:"is_active"`
}

func (p productRequest) toInput(id string) (catalog.UpsertInput, error) {
	unit, err := enums.ParseUnitType(p.UnitType)
	if err != nil {
		return catalog.UpsertInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit type")
	}
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return catalog.UpsertInput{
		ID:             id,
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		Colors:         p.Colors,
		Description:    p.Description,
		Specifications: p.Specifications,
		BasePrice:      p.BasePrice,
		UnitType:       unit,
		StockQuantity:  p.StockQuantity,
		ImageURL:       p.ImageURL,
		BrochureURL:    p.BrochureURL,
		IsActive:       active,
	}, nil
}

// AdminProductsList returns every product, including inactive ones.
func AdminProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		products, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return adminProductUpsert(svc, logg, http.StatusCreated, func(*http.Request) string { return "" })
}

func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return adminProductUpsert(svc, logg, http.StatusOK, func(r *http.Request) string { return chi.URLParam(r, "productId") })
}

func adminProductUpsert(svc catalog.Service, logg *logger.Logger, status int, idFrom func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput(idFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Upsert(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, product)
	}
}

func AdminProductToggle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		product, err := svc.ToggleActive(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminProductsExport downloads the catalog as an xlsx workbook.
func AdminProductsExport(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		filename := "products-" + time.Now().UTC().Format("20060102") + ".xlsx"
		err := responses.WriteAttachment(w, filename, xlsxMIME, func(out io.Writer) error {
			return svc.ExportXLSX(r.Context(), out)
		})
		if err != nil && logg != nil {
			logg.Error(r.Context(), "products.export_failed", err)
		}
	}
}

// AdminProductsImport upserts products from an uploaded xlsx workbook (form
// field "file").
func AdminProductsImport(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload an xlsx file up to 5 MB"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		result, err := svc.ImportXLSX(r.Context(), file, header.Size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
