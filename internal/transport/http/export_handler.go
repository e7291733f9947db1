package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coffeepulse/internal/dataset"
	apierrors "coffeepulse/internal/errors"
)

// ExportHandler serves the downloadable artifacts.
type ExportHandler struct {
	service      ExportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service ExportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/workbook", h.GetWorkbook)
	r.Get("/trend.png", h.GetTrendPNG)

	return r
}

// GetWorkbook handles GET /api/export/workbook: the full xlsx dump.
func (h *ExportHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Workbook(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("coffee_trade_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}

// GetTrendPNG handles GET /api/export/trend.png?dataset=production.
func (h *ExportHandler) GetTrendPNG(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("dataset")
	if name == "" {
		name = string(dataset.KindProduction)
	}

	kind, ok := rankableKinds[name]
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dataset", fmt.Sprintf("unknown dataset: %s", name)))
		return
	}

	data, err := h.service.TrendPNG(r.Context(), kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}
