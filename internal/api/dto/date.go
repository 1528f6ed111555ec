package dto

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates (dd/MM/yyyy).
const DateLayout = "02/01/2006"

// Date is a calendar date serialized as dd/MM/yyyy.
type Date time.Time

// NewDate returns nil for a nil time.
func NewDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := Date(*t)
	return &d
}

// Time returns the underlying time.
func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a string in dd/MM/yyyy format")
	}
	t, err := time.Parse(DateLayout, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("date must use dd/MM/yyyy format: %w", err)
	}
	*d = Date(t)
	return nil
}
