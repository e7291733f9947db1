package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "coffeepulse/internal/errors"
	"coffeepulse/internal/services"
)

// ChartHandler serves the dashboard render endpoint with RFC 7807
// error responses.
type ChartHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes.
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/{tab}", h.GetTab)

	return r
}

// GetTab handles GET /api/charts/{tab}. Dropdown values arrive as
// query parameters and default sensibly when absent.
func (h *ChartHandler) GetTab(w http.ResponseWriter, r *http.Request) {
	state, err := stateFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Render(r.Context(), state)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// stateFromRequest decodes the selection state from path and query.
func stateFromRequest(r *http.Request) (services.State, error) {
	state := services.State{
		Tab:      chi.URLParam(r, "tab"),
		Country:  r.URL.Query().Get("country"),
		Exporter: r.URL.Query().Get("exporter"),
		Importer: r.URL.Query().Get("importer"),
	}

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return state, apierrors.ErrValidation("year", "year must be an integer")
		}
		state.Year = year
	}

	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return state, apierrors.ErrValidation("top_n", "top_n must be an integer")
		}
		state.TopN = n
	}

	if raw := r.URL.Query().Get("log_scale"); raw != "" {
		logScale, err := strconv.ParseBool(raw)
		if err != nil {
			return state, apierrors.ErrValidation("log_scale", "log_scale must be a boolean")
		}
		state.LogScale = logScale
	}

	return state, nil
}
