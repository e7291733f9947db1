package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"coffeepulse/internal/dataset"
	apierrors "coffeepulse/internal/errors"
)

// rankableKinds maps ranking path segments to dataset kinds.
var rankableKinds = map[string]dataset.Kind{
	"production":  dataset.KindProduction,
	"consumption": dataset.KindConsumption,
	"import":      dataset.KindImport,
	"export":      dataset.KindExport,
}

// DataHandler serves the dropdown options and ranking tables.
type DataHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler.
func NewDataHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/countries", h.GetCountries)
	r.Get("/ranking/{tab}", h.GetRanking)

	return r
}

// GetCountries handles GET /api/countries: every dropdown option set.
func (h *DataHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Countries())
}

// GetRanking handles GET /api/ranking/{tab}.
func (h *DataHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	tab := chi.URLParam(r, "tab")

	kind, ok := rankableKinds[tab]
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTabNotFound)
		return
	}

	// Absent year means the all-years ranking.
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "must be an integer"))
			return
		}
		year = parsed
	}

	ranked, err := h.service.Ranking(kind, year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"tab":     tab,
		"ranking": ranked,
	})
}
