package services

import (
	"github.com/go-playground/validator/v10"

	apierrors "coffeepulse/internal/errors"
)

// Tab names accepted by the dashboard.
const (
	TabProduction  = "production"
	TabConsumption = "consumption"
	TabImport      = "import"
	TabExport      = "export"
	TabCompare     = "compare"
	TabTrade       = "trade"
)

// Tabs lists every dashboard tab in display order.
var Tabs = []string{
	TabProduction,
	TabConsumption,
	TabImport,
	TabExport,
	TabCompare,
	TabTrade,
}

// State is one dashboard selection: the active tab plus the dropdown
// values that key a render. A zero Year means the latest dataset year.
type State struct {
	Tab      string `json:"tab" validate:"required,oneof=production consumption import export compare trade"`
	Year     int    `json:"year" validate:"omitempty,min=1990,max=2019"`
	Country  string `json:"country,omitempty"`
	Exporter string `json:"exporter,omitempty"`
	Importer string `json:"importer,omitempty"`
	TopN     int    `json:"top_n,omitempty" validate:"omitempty,min=1,max=50"`
	LogScale bool   `json:"log_scale,omitempty"`
}

// newValidate builds the validator shared by the services.
func newValidate() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validateState runs struct validation and converts failures into the
// API error shape.
func validateState(v *validator.Validate, state State) error {
	err := v.Struct(state)
	if err == nil {
		return nil
	}

	if invalid, ok := err.(*validator.InvalidValidationError); ok {
		return apierrors.NewValidationError(invalid.Error())
	}

	var fields []apierrors.ValidationError
	for _, fe := range err.(validator.ValidationErrors) {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fe.Tag(),
		})
	}
	return apierrors.NewValidationErrors(fields)
}
