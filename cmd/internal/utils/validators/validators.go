package validators

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// IsIsoDate accepts calendar dates in the YYYY-MM-DD form.
func IsIsoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// IsClockTime accepts 24h wall-clock times in the HH:MM form.
func IsClockTime(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("isodate", IsIsoDate)
	_ = validate.RegisterValidation("clocktime", IsClockTime)
}
