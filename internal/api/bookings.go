package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"innkeeper/internal/metrics"
)

// CreateBooking creates a public booking for the current guest.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid booking request: %w", err)
	}
	var b Booking
	if err := c.doPost(ctx, "/bookings", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateWalkIn creates a staff-assisted booking for a guest at the desk.
func (c *Client) CreateWalkIn(ctx context.Context, req WalkInBookingRequest) (*Booking, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid walk-in request: %w", err)
	}
	var b Booking
	if err := c.doPost(ctx, "/bookings/walk-in", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// MyBookings lists the current guest's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.doGet(ctx, "/bookings/my-bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBooking fetches one booking.
func (c *Client) GetBooking(ctx context.Context, bookingID int64) (*Booking, error) {
	var b Booking
	if err := c.doGet(ctx, fmt.Sprintf("/bookings/%d", bookingID), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// HotelBookings lists all bookings of a hotel (staff).
func (c *Client) HotelBookings(ctx context.Context, hotelID int64) ([]Booking, error) {
	var bookings []Booking
	if err := c.doGet(ctx, fmt.Sprintf("/bookings/hotel/%d", hotelID), nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// TodayCheckIns lists bookings due to check in today (staff).
func (c *Client) TodayCheckIns(ctx context.Context, hotelID int64) ([]Booking, error) {
	var bookings []Booking
	if err := c.doGet(ctx, fmt.Sprintf("/bookings/hotel/%d/today-checkins", hotelID), nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// TodayCheckOuts lists bookings due to check out today (staff).
func (c *Client) TodayCheckOuts(ctx context.Context, hotelID int64) ([]Booking, error) {
	var bookings []Booking
	if err := c.doGet(ctx, fmt.Sprintf("/bookings/hotel/%d/today-checkouts", hotelID), nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// The transition calls below return the server's view of the booking;
// callers replace their local copy with it and never flip status
// themselves.

// ConfirmBooking requests CREATED -> CONFIRMED.
func (c *Client) ConfirmBooking(ctx context.Context, bookingID int64) (*Booking, error) {
	return c.transition(ctx, bookingID, "confirm", struct{}{})
}

// CancelBooking requests cancellation; the reason is mandatory.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64, req CancelBookingRequest) (*Booking, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid cancel request: %w", err)
	}
	return c.transition(ctx, bookingID, "cancel", req)
}

// CheckInBooking requests CONFIRMED -> CHECKED_IN.
func (c *Client) CheckInBooking(ctx context.Context, bookingID int64, req CheckInRequest) (*Booking, error) {
	return c.transition(ctx, bookingID, "check-in", req)
}

// CheckOutBooking requests CHECKED_IN -> CHECKED_OUT.
func (c *Client) CheckOutBooking(ctx context.Context, bookingID int64, req CheckOutRequest) (*Booking, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid check-out request: %w", err)
	}
	return c.transition(ctx, bookingID, "check-out", req)
}

func (c *Client) transition(ctx context.Context, bookingID int64, action string, body any) (*Booking, error) {
	var b Booking
	err := c.doPost(ctx, fmt.Sprintf("/bookings/%d/%s", bookingID, action), body, &b)
	if err != nil {
		metrics.IncBookingTransition(action, "error")
		return nil, err
	}
	metrics.IncBookingTransition(action, "ok")
	return &b, nil
}

// CheckAvailability asks which rooms of a hotel are free for
// [checkIn, checkOut). The result is single-shot: a changed range means a
// new call, never a merge with a previous result.
func (c *Client) CheckAvailability(ctx context.Context, hotelID int64, checkIn, checkOut string) (*Availability, error) {
	query := url.Values{
		"hotelId":  []string{strconv.FormatInt(hotelID, 10)},
		"checkIn":  []string{checkIn},
		"checkOut": []string{checkOut},
	}
	var av Availability
	if err := c.doGet(ctx, "/bookings/check-availability", query, &av); err != nil {
		return nil, err
	}
	return &av, nil
}
