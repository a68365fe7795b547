package api

import (
	"context"
	"fmt"
)

// BillByBooking fetches the bill generated for a booking.
func (c *Client) BillByBooking(ctx context.Context, bookingID int64) (*Bill, error) {
	var bill Bill
	if err := c.doGet(ctx, fmt.Sprintf("/bills/booking/%d", bookingID), nil, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// GenerateBill asks the server to generate the bill for a booking. The
// server side is idempotent: generating twice yields the same bill.
func (c *Client) GenerateBill(ctx context.Context, bookingID int64) (*Bill, error) {
	var bill Bill
	if err := c.doPost(ctx, fmt.Sprintf("/bills/generate/%d", bookingID), struct{}{}, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// EnsureBill looks a bill up and recovers a "not found" by requesting
// generation once. Bills are created server-side when a booking is
// confirmed or taken as a walk-in, but the lookup can race that
// generation.
func (c *Client) EnsureBill(ctx context.Context, bookingID int64) (*Bill, error) {
	bill, err := c.BillByBooking(ctx, bookingID)
	if err == nil {
		return bill, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	return c.GenerateBill(ctx, bookingID)
}

// MarkBillPaid records payment of a bill; PENDING -> PAID happens exactly
// once server-side.
func (c *Client) MarkBillPaid(ctx context.Context, billID int64, req MarkBillPaidRequest) (*Bill, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid payment request: %w", err)
	}
	var bill Bill
	if err := c.doPost(ctx, fmt.Sprintf("/bills/%d/mark-paid", billID), req, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// MyPayments lists the current account's payment history.
func (c *Client) MyPayments(ctx context.Context) ([]Payment, error) {
	var payments []Payment
	if err := c.doGet(ctx, "/bills/my-payments", nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// AllPayments lists every payment record (staff).
func (c *Client) AllPayments(ctx context.Context) ([]Payment, error) {
	var payments []Payment
	if err := c.doGet(ctx, "/bills/payments", nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
