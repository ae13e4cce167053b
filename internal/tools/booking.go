package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/verdevalley/concierge/internal/calendar"
	"github.com/verdevalley/concierge/internal/schema"
)

// BookingService runs the calendar-backed booking flows. It is satisfied by
// *calendar.Client.
type BookingService interface {
	CheckAvailability(ctx context.Context, propertyName, checkIn, checkOut string) calendar.AvailabilityResult
	CreateBooking(ctx context.Context, propertyName, checkIn, checkOut, guestName, guestEmail, guestPhone string) calendar.BookingResult
	CancelBooking(ctx context.Context, propertyName, guestName, checkIn string) calendar.CancelResult
}

// propertyNameList is spliced into JSON schema strings, so the double-quoted
// names carry literal backslash escapes.
const propertyNameList = `'The Glasshouse', 'The River Cottage', 'The Olive Lodge', ` +
	`'The Barn Loft', \"The Potter's Cabin\", \"The Stargazer's Pod\"`

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

// --- check_availability ---

// CheckAvailabilityTool answers whether a property is free for a date range.
type CheckAvailabilityTool struct {
	bookings BookingService
}

var _ schema.Tool = (*CheckAvailabilityTool)(nil)

func NewCheckAvailabilityTool(bookings BookingService) *CheckAvailabilityTool {
	return &CheckAvailabilityTool{bookings: bookings}
}

func (t *CheckAvailabilityTool) Name() string {
	return "check_availability"
}

func (t *CheckAvailabilityTool) Description() string {
	return "Check if a specific property is available for a given date range. " +
		"Use this when a guest asks whether a property is free on certain dates."
}

func (t *CheckAvailabilityTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"property_name": {
				"type": "string",
				"description": "Exact property name. Must be one of: ` + propertyNameList + `"
			},
			"check_in_date": {
				"type": "string",
				"description": "Check-in date in YYYY-MM-DD format"
			},
			"check_out_date": {
				"type": "string",
				"description": "Check-out date in YYYY-MM-DD format"
			}
		},
		"required": ["property_name", "check_in_date", "check_out_date"]
	}`)
}

type availabilityRequest struct {
	PropertyName string `json:"property_name"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

func (t *CheckAvailabilityTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req availabilityRequest
	if err := decodeArgs(params, &req); err != nil {
		return "", err
	}
	switch {
	case req.PropertyName == "":
		return "", missingField("property_name")
	case req.CheckInDate == "":
		return "", missingField("check_in_date")
	case req.CheckOutDate == "":
		return "", missingField("check_out_date")
	}

	result := t.bookings.CheckAvailability(ctx, req.PropertyName, req.CheckInDate, req.CheckOutDate)
	return marshalResult(result)
}

// --- create_booking ---

// CreateBookingTool records a confirmed booking for a guest.
type CreateBookingTool struct {
	bookings BookingService
}

var _ schema.Tool = (*CreateBookingTool)(nil)

func NewCreateBookingTool(bookings BookingService) *CreateBookingTool {
	return &CreateBookingTool{bookings: bookings}
}

func (t *CreateBookingTool) Name() string {
	return "create_booking"
}

func (t *CreateBookingTool) Description() string {
	return "Create a booking for a guest at a specific property. " +
		"Only use this after confirming availability. " +
		"Always collect guest name and email before calling this tool."
}

func (t *CreateBookingTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"property_name": {
				"type": "string",
				"description": "Exact property name (same options as check_availability)"
			},
			"check_in_date": {
				"type": "string",
				"description": "Check-in date in YYYY-MM-DD format"
			},
			"check_out_date": {
				"type": "string",
				"description": "Check-out date in YYYY-MM-DD format"
			},
			"guest_name": {
				"type": "string",
				"description": "Full name of the guest"
			},
			"guest_email": {
				"type": "string",
				"description": "Guest's email address"
			},
			"guest_phone": {
				"type": "string",
				"description": "Guest's phone number (optional)"
			}
		},
		"required": ["property_name", "check_in_date", "check_out_date", "guest_name", "guest_email"]
	}`)
}

type createBookingRequest struct {
	PropertyName string `json:"property_name"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	GuestName    string `json:"guest_name"`
	GuestEmail   string `json:"guest_email"`
	GuestPhone   string `json:"guest_phone"`
}

func (t *CreateBookingTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req createBookingRequest
	if err := decodeArgs(params, &req); err != nil {
		return "", err
	}
	switch {
	case req.PropertyName == "":
		return "", missingField("property_name")
	case req.CheckInDate == "":
		return "", missingField("check_in_date")
	case req.CheckOutDate == "":
		return "", missingField("check_out_date")
	case req.GuestName == "":
		return "", missingField("guest_name")
	case req.GuestEmail == "":
		return "", missingField("guest_email")
	}

	result := t.bookings.CreateBooking(ctx,
		req.PropertyName, req.CheckInDate, req.CheckOutDate,
		req.GuestName, req.GuestEmail, req.GuestPhone)
	return marshalResult(result)
}

// --- cancel_booking ---

// CancelBookingTool cancels an existing booking by guest name and check-in date.
type CancelBookingTool struct {
	bookings BookingService
}

var _ schema.Tool = (*CancelBookingTool)(nil)

func NewCancelBookingTool(bookings BookingService) *CancelBookingTool {
	return &CancelBookingTool{bookings: bookings}
}

func (t *CancelBookingTool) Name() string {
	return "cancel_booking"
}

func (t *CancelBookingTool) Description() string {
	return "Cancel an existing booking. " +
		"Use this when a guest asks to cancel their reservation. " +
		"Try to extract guest name and booking details from the conversation before asking."
}

func (t *CancelBookingTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"property_name": {
				"type": "string",
				"description": "Exact property name (same options as check_availability)"
			},
			"guest_name": {
				"type": "string",
				"description": "Full name of the guest whose booking should be cancelled"
			},
			"check_in_date": {
				"type": "string",
				"description": "Check-in date of the booking to cancel in YYYY-MM-DD format"
			}
		},
		"required": ["property_name", "guest_name", "check_in_date"]
	}`)
}

type cancelBookingRequest struct {
	PropertyName string `json:"property_name"`
	GuestName    string `json:"guest_name"`
	CheckInDate  string `json:"check_in_date"`
}

func (t *CancelBookingTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req cancelBookingRequest
	if err := decodeArgs(params, &req); err != nil {
		return "", err
	}
	switch {
	case req.PropertyName == "":
		return "", missingField("property_name")
	case req.GuestName == "":
		return "", missingField("guest_name")
	case req.CheckInDate == "":
		return "", missingField("check_in_date")
	}

	result := t.bookings.CancelBooking(ctx, req.PropertyName, req.GuestName, req.CheckInDate)
	return marshalResult(result)
}
