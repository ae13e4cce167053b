package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/verdevalley/concierge/internal/calendar"
)

// fakeBookings records calls and returns canned results.
type fakeBookings struct {
	availability calendar.AvailabilityResult
	booking      calendar.BookingResult
	cancel       calendar.CancelResult
	lastCall     string
}

func (f *fakeBookings) CheckAvailability(_ context.Context, propertyName, checkIn, checkOut string) calendar.AvailabilityResult {
	f.lastCall = strings.Join([]string{"check", propertyName, checkIn, checkOut}, "|")
	return f.availability
}

func (f *fakeBookings) CreateBooking(_ context.Context, propertyName, checkIn, checkOut, guestName, guestEmail, guestPhone string) calendar.BookingResult {
	f.lastCall = strings.Join([]string{"create", propertyName, checkIn, checkOut, guestName, guestEmail, guestPhone}, "|")
	return f.booking
}

func (f *fakeBookings) CancelBooking(_ context.Context, propertyName, guestName, checkIn string) calendar.CancelResult {
	f.lastCall = strings.Join([]string{"cancel", propertyName, guestName, checkIn}, "|")
	return f.cancel
}

func TestCheckAvailabilityTool(t *testing.T) {
	svc := &fakeBookings{availability: calendar.AvailabilityResult{
		Available: true,
		Property:  "The Glasshouse",
		Message:   "Yes! The Glasshouse is available from 2026-09-01 to 2026-09-04.",
	}}
	tool := NewCheckAvailabilityTool(svc)

	out, err := tool.Execute(context.Background(), map[string]any{
		"property_name":  "The Glasshouse",
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-04",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.lastCall != "check|The Glasshouse|2026-09-01|2026-09-04" {
		t.Errorf("unexpected call %q", svc.lastCall)
	}

	var result calendar.AvailabilityResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if !result.Available || result.Property != "The Glasshouse" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestCheckAvailabilityTool_MissingField(t *testing.T) {
	tool := NewCheckAvailabilityTool(&fakeBookings{})

	_, err := tool.Execute(context.Background(), map[string]any{
		"property_name": "The Glasshouse",
		"check_in_date": "2026-09-01",
	})
	if err == nil {
		t.Fatal("expected error for missing check_out_date")
	}
	if !strings.Contains(err.Error(), "check_out_date") {
		t.Errorf("expected missing-field error naming check_out_date, got %v", err)
	}
}

func TestCreateBookingTool_OptionalPhone(t *testing.T) {
	svc := &fakeBookings{booking: calendar.BookingResult{Success: true, BookingID: "evt123"}}
	tool := NewCreateBookingTool(svc)

	_, err := tool.Execute(context.Background(), map[string]any{
		"property_name":  "The Barn Loft",
		"check_in_date":  "2026-10-01",
		"check_out_date": "2026-10-03",
		"guest_name":     "June Park",
		"guest_email":    "june@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error without guest_phone: %v", err)
	}
	if svc.lastCall != "create|The Barn Loft|2026-10-01|2026-10-03|June Park|june@example.com|" {
		t.Errorf("unexpected call %q", svc.lastCall)
	}
}

func TestCreateBookingTool_RequiresEmail(t *testing.T) {
	tool := NewCreateBookingTool(&fakeBookings{})

	_, err := tool.Execute(context.Background(), map[string]any{
		"property_name":  "The Barn Loft",
		"check_in_date":  "2026-10-01",
		"check_out_date": "2026-10-03",
		"guest_name":     "June Park",
	})
	if err == nil || !strings.Contains(err.Error(), "guest_email") {
		t.Errorf("expected missing guest_email error, got %v", err)
	}
}

func TestCancelBookingTool(t *testing.T) {
	svc := &fakeBookings{cancel: calendar.CancelResult{Success: true}}
	tool := NewCancelBookingTool(svc)

	out, err := tool.Execute(context.Background(), map[string]any{
		"property_name": "The Potter's Cabin",
		"guest_name":    "June Park",
		"check_in_date": "2026-10-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.lastCall != "cancel|The Potter's Cabin|June Park|2026-10-01" {
		t.Errorf("unexpected call %q", svc.lastCall)
	}

	var result calendar.CancelResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if !result.Success {
		t.Errorf("expected success, got %+v", result)
	}
}

func TestBookingTool_BadInputType(t *testing.T) {
	tool := NewCancelBookingTool(&fakeBookings{})

	_, err := tool.Execute(context.Background(), map[string]any{
		"property_name": 12345,
		"guest_name":    "June Park",
		"check_in_date": "2026-10-01",
	})
	if err == nil {
		t.Fatal("expected error for non-string property_name")
	}
}
