package utils

import (
	"fmt"
	"time"

	"github.com/meinhoongagan/nhs-staffing/models"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD value into the UTC midnight form dates are stored in.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Reason: fmt.Sprintf("must be a date formatted %s", DateLayout)}
	}
	return t, nil
}
