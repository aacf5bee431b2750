package booking

import (
	"fmt"
	"strings"
	"time"
)

// MaxGuests is the largest headcount an inquiry or quote may carry.
const MaxGuests = 10000

// EventType is the kind of occasion being catered.
type EventType string

const (
	EventTypeWedding     EventType = "wedding"
	EventTypeBirthday    EventType = "birthday"
	EventTypeCorporate   EventType = "corporate"
	EventTypeDebut       EventType = "debut"
	EventTypeChristening EventType = "christening"
	EventTypeOther       EventType = "other"
)

// IsValid returns true if the event type is recognized.
func (e EventType) IsValid() bool {
	switch e {
	case EventTypeWedding, EventTypeBirthday, EventTypeCorporate, EventTypeDebut, EventTypeChristening, EventTypeOther:
		return true
	}
	return false
}

// ServiceStyle is how food is served at the event.
type ServiceStyle string

const (
	ServiceStyleBuffet   ServiceStyle = "buffet"
	ServiceStylePlated   ServiceStyle = "plated"
	ServiceStyleFamily   ServiceStyle = "family_style"
	ServiceStyleCocktail ServiceStyle = "cocktail"
	ServiceStyleDropOff  ServiceStyle = "drop_off"
)

// IsValid returns true if the service style is recognized.
func (s ServiceStyle) IsValid() bool {
	switch s {
	case ServiceStyleBuffet, ServiceStylePlated, ServiceStyleFamily, ServiceStyleCocktail, ServiceStyleDropOff:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of event dates.
const DateLayout = "2006-01-02"

// ParseEventDate parses a YYYY-MM-DD date as midnight UTC.
func ParseEventDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Customer is the contact who submitted the inquiry.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// EventDetails is the immutable description of the event captured at submission.
type EventDetails struct {
	Date           time.Time    `json:"date"`
	StartTime      string       `json:"start_time"`
	EndTime        string       `json:"end_time"`
	Guests         int          `json:"guests"`
	BudgetEstimate Money        `json:"budget_estimate"`
	EventType      EventType    `json:"event_type"`
	ServiceStyle   ServiceStyle `json:"service_style"`
	Venue          string       `json:"venue"`
	Notes          string       `json:"notes"`
}

func (c Customer) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("customer email is required")
	}
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("invalid customer email: %s", c.Email)
	}
	return nil
}

func (e EventDetails) validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("event date is required")
	}
	if e.Guests < 0 {
		return fmt.Errorf("guest count cannot be negative")
	}
	if e.Guests > MaxGuests {
		return fmt.Errorf("guest count cannot exceed %d", MaxGuests)
	}
	if e.BudgetEstimate < 0 {
		return fmt.Errorf("budget estimate cannot be negative")
	}
	if e.EventType != "" && !e.EventType.IsValid() {
		return fmt.Errorf("invalid event type: %s", e.EventType)
	}
	if e.ServiceStyle != "" && !e.ServiceStyle.IsValid() {
		return fmt.Errorf("invalid service style: %s", e.ServiceStyle)
	}
	if e.StartTime != "" {
		if _, err := time.Parse("15:04", e.StartTime); err != nil {
			return fmt.Errorf("invalid start time %q, expected HH:MM", e.StartTime)
		}
	}
	if e.EndTime != "" {
		if _, err := time.Parse("15:04", e.EndTime); err != nil {
			return fmt.Errorf("invalid end time %q, expected HH:MM", e.EndTime)
		}
	}
	return nil
}
