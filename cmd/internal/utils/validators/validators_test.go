package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Date  string `validate:"isodate"`
	Time  string `validate:"clocktime"`
	Phone string `validate:"e164"`
}

func TestRegisteredValidators(t *testing.T) {
	validate := validator.New()
	Register(validate)

	assert.NoError(t, validate.Struct(&sample{Date: "2025-09-14", Time: "09:30", Phone: "+919876543210"}))

	cases := []sample{
		{Date: "14-09-2025", Time: "09:30", Phone: "+919876543210"},
		{Date: "2025-02-30", Time: "09:30", Phone: "+919876543210"},
		{Date: "2025-09-14", Time: "25:00", Phone: "+919876543210"},
		{Date: "2025-09-14", Time: "9am", Phone: "+919876543210"},
		{Date: "2025-09-14", Time: "09:30", Phone: "9876543210"},
		{Date: "2025-09-14", Time: "09:30", Phone: "+91 98765"},
	}
	for _, c := range cases {
		assert.Error(t, validate.Struct(&c), "%+v", c)
	}
}
