package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component.
type Date struct {
	value time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{value: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(moment time.Time) Date {
	return NewDate(moment.Year(), moment.Month(), moment.Day())
}

func ParseDate(rawDate string) (Date, error) {
	parsedTime, parseError := time.Parse(DateLayout, rawDate)
	if parseError != nil {
		return Date{}, fmt.Errorf("%w: got %q", ErrInvalidDate, rawDate)
	}
	return Date{value: parsedTime}, nil
}

func (date Date) IsZero() bool {
	return date.value.IsZero()
}

func (date Date) Time() time.Time {
	return date.value
}

func (date Date) String() string {
	if date.IsZero() {
		return ""
	}
	return date.value.Format(DateLayout)
}

func (date Date) MarshalJSON() ([]byte, error) {
	if date.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(date.String())
}

func (date *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*date = Date{}
		return nil
	}

	var rawDate string
	unmarshalError := json.Unmarshal(data, &rawDate)
	if unmarshalError != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}

	parsedDate, parseError := ParseDate(rawDate)
	if parseError != nil {
		return parseError
	}

	*date = parsedDate
	return nil
}

// Scan accepts the representations returned by the postgres and sqlite drivers.
func (date *Date) Scan(source any) error {
	switch typedSource := source.(type) {
	case time.Time:
		*date = DateOf(typedSource)
		return nil
	case string:
		return date.scanText(typedSource)
	case []byte:
		return date.scanText(string(typedSource))
	case nil:
		*date = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into domain.Date", source)
	}
}

func (date *Date) scanText(rawDate string) error {
	if len(rawDate) > len(DateLayout) {
		rawDate = rawDate[:len(DateLayout)]
	}

	parsedDate, parseError := ParseDate(rawDate)
	if parseError != nil {
		return parseError
	}

	*date = parsedDate
	return nil
}

func (date Date) Value() (driver.Value, error) {
	if date.IsZero() {
		return nil, nil
	}
	return date.String(), nil
}
