package validator

import (
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

func RegisterCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("latstr", validateLatString)
	validate.RegisterValidation("lngstr", validateLngString)
}

// Coordinates cross the wire as decimal strings, e.g. "12.9716".
func validateLatString(fl validator.FieldLevel) bool {
	lat, err := strconv.ParseFloat(fl.Field().String(), 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return false
	}
	return lat >= -90.0 && lat <= 90.0
}

func validateLngString(fl validator.FieldLevel) bool {
	lng, err := strconv.ParseFloat(fl.Field().String(), 64)
	if err != nil || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lng >= -180.0 && lng <= 180.0
}
