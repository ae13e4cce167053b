package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ListQuery narrows an event listing to a time window and optional free-text
// match, expanded to single events.
type ListQuery struct {
	TimeMin    string
	TimeMax    string
	Query      string
	MaxResults int64
}

// Event is the slice of a calendar event the booking flows use. Start and end
// are all-day dates in YYYY-MM-DD form.
type Event struct {
	ID          string
	Summary     string
	Description string
	StartDate   string
	EndDate     string
}

// EventsAPI abstracts the calendar backend so the booking flows can be tested
// without network access.
type EventsAPI interface {
	List(ctx context.Context, calendarID string, q ListQuery) ([]Event, error)
	Insert(ctx context.Context, calendarID string, ev Event) (Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

// AvailabilityResult is the outcome of an availability check.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Property  string `json:"property,omitempty"`
	CheckIn   string `json:"check_in,omitempty"`
	CheckOut  string `json:"check_out,omitempty"`
	Message   string `json:"message"`
}

// BookingResult is the outcome of a booking creation.
type BookingResult struct {
	Success   bool   `json:"success"`
	BookingID string `json:"booking_id,omitempty"`
	Property  string `json:"property,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
	CheckIn   string `json:"check_in,omitempty"`
	CheckOut  string `json:"check_out,omitempty"`
	Message   string `json:"message"`
}

// CancelResult is the outcome of a cancellation.
type CancelResult struct {
	Success   bool   `json:"success"`
	Property  string `json:"property,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
	CheckIn   string `json:"check_in,omitempty"`
	Message   string `json:"message"`
}

// Client runs the three booking flows against a calendar backend. Backend
// failures never escape as errors: each flow degrades to a result whose
// message tells the guest to try again, so one flaky calendar call cannot
// take down an agent turn.
type Client struct {
	events EventsAPI
	props  *PropertyMap
	logger *slog.Logger
}

// NewClient builds a Client. events may be nil when the calendar integration
// is not configured; every flow then reports the try-again message.
func NewClient(events EventsAPI, props *PropertyMap, logger *slog.Logger) *Client {
	return &Client{events: events, props: props, logger: logger}
}

// Properties lists the property names this client can book.
func (c *Client) Properties() []string {
	return c.props.Names()
}

// CheckAvailability reports whether the property has any event overlapping
// the stay. An unknown property is answered without touching the backend.
func (c *Client) CheckAvailability(ctx context.Context, propertyName, checkIn, checkOut string) AvailabilityResult {
	calendarID := c.props.Resolve(propertyName)
	if calendarID == "" {
		return AvailabilityResult{
			Available: false,
			Message:   fmt.Sprintf("Unknown property: %s. Please choose from the available properties.", propertyName),
		}
	}
	if c.events == nil {
		return AvailabilityResult{Available: false, Message: "Unable to check availability right now. Please try again."}
	}

	events, err := c.events.List(ctx, calendarID, ListQuery{
		TimeMin:    checkIn + "T00:00:00Z",
		TimeMax:    checkOut + "T23:59:59Z",
		MaxResults: 5,
	})
	if err != nil {
		c.logger.Error("check availability failed", "property", propertyName, "error", err)
		return AvailabilityResult{Available: false, Message: "Unable to check availability right now. Please try again."}
	}

	if len(events) == 0 {
		return AvailabilityResult{
			Available: true,
			Property:  propertyName,
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			Message:   fmt.Sprintf("Yes! %s is available from %s to %s.", propertyName, checkIn, checkOut),
		}
	}
	return AvailabilityResult{
		Available: false,
		Property:  propertyName,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Message: fmt.Sprintf("Sorry, %s is already booked from %s to %s. "+
			"Would you like to check other dates or explore our other properties?", propertyName, checkIn, checkOut),
	}
}

// CreateBooking records a booking as an all-day event from check-in to
// check-out. Guest email and phone are optional and only appear in the event
// description when set.
func (c *Client) CreateBooking(ctx context.Context, propertyName, checkIn, checkOut, guestName, guestEmail, guestPhone string) BookingResult {
	calendarID := c.props.Resolve(propertyName)
	if calendarID == "" {
		return BookingResult{Success: false, Message: fmt.Sprintf("Unknown property: %s.", propertyName)}
	}
	if c.events == nil {
		return BookingResult{Success: false, Message: "Unable to create the booking right now. Please try again."}
	}

	description := "Guest: " + guestName
	if guestEmail != "" {
		description += "\nEmail: " + guestEmail
	}
	if guestPhone != "" {
		description += "\nPhone: " + guestPhone
	}

	created, err := c.events.Insert(ctx, calendarID, Event{
		Summary:     "Booking: " + guestName,
		Description: description,
		StartDate:   checkIn,
		EndDate:     checkOut,
	})
	if err != nil {
		c.logger.Error("create booking failed", "property", propertyName, "error", err)
		return BookingResult{Success: false, Message: "Unable to create the booking right now. Please try again."}
	}

	c.logger.Info("booking created",
		"property", propertyName, "guest", guestName, "booking_id", created.ID)
	return BookingResult{
		Success:   true,
		BookingID: created.ID,
		Property:  propertyName,
		GuestName: guestName,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Message: fmt.Sprintf("Booking confirmed! %s has booked %s from %s to %s. Confirmation ID: %s",
			guestName, propertyName, checkIn, checkOut, created.ID),
	}
}

// CancelBooking searches the check-in day for an event matching the guest
// name and deletes the first match.
func (c *Client) CancelBooking(ctx context.Context, propertyName, guestName, checkIn string) CancelResult {
	calendarID := c.props.Resolve(propertyName)
	if calendarID == "" {
		return CancelResult{Success: false, Message: fmt.Sprintf("Unknown property: %s.", propertyName)}
	}
	if c.events == nil {
		return CancelResult{Success: false, Message: "Unable to cancel the booking right now. Please try again."}
	}

	checkInDay, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		c.logger.Error("cancel booking failed", "property", propertyName, "error", err)
		return CancelResult{Success: false, Message: "Unable to cancel the booking right now. Please try again."}
	}
	nextDay := checkInDay.AddDate(0, 0, 1).Format("2006-01-02")

	events, err := c.events.List(ctx, calendarID, ListQuery{
		TimeMin:    checkIn + "T00:00:00Z",
		TimeMax:    nextDay + "T00:00:00Z",
		Query:      guestName,
		MaxResults: 10,
	})
	if err != nil {
		c.logger.Error("cancel booking failed", "property", propertyName, "error", err)
		return CancelResult{Success: false, Message: "Unable to cancel the booking right now. Please try again."}
	}

	if len(events) == 0 {
		return CancelResult{
			Success:   false,
			Property:  propertyName,
			GuestName: guestName,
			CheckIn:   checkIn,
			Message: fmt.Sprintf("Sorry, I couldn't find a booking for %s at %s on %s. "+
				"Please check the details and try again, or contact us directly for assistance.",
				guestName, propertyName, checkIn),
		}
	}

	if err := c.events.Delete(ctx, calendarID, events[0].ID); err != nil {
		c.logger.Error("cancel booking failed", "property", propertyName, "error", err)
		return CancelResult{Success: false, Message: "Unable to cancel the booking right now. Please try again."}
	}

	c.logger.Info("booking cancelled",
		"property", propertyName, "guest", guestName, "booking_id", events[0].ID)
	return CancelResult{
		Success:   true,
		Property:  propertyName,
		GuestName: guestName,
		CheckIn:   checkIn,
		Message: fmt.Sprintf("Booking cancelled successfully! %s's reservation for %s on %s has been cancelled.",
			guestName, propertyName, checkIn),
	}
}
