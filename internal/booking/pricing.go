package booking

import (
	"errors"
	"math"
	"time"
)

// DefaultTaxRate applies whenever the server does not supply a rate.
const DefaultTaxRate = 0.18

var (
	// ErrEmptyStay is returned when the range covers no nights, including
	// the same-day case: checkIn == checkOut is rejected, not treated as
	// one night.
	ErrEmptyStay = errors.New("check-out date must be after check-in date")
)

// Nights returns the number of nights in the half-open range
// [checkIn, checkOut). Partial days round up.
func Nights(checkIn, checkOut time.Time) (int, error) {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0, ErrEmptyStay
	}
	return int(math.Ceil(d.Hours() / 24)), nil
}

// Quote derives display totals from a room price and a stay range. It holds
// inputs only; Subtotal, Taxes and GrandTotal are recomputed on every call
// so that editing a date or price can never surface a stale total.
type Quote struct {
	PricePerNight float64
	CheckIn       time.Time
	CheckOut      time.Time
	// TaxRate of zero means "server supplied none"; DefaultTaxRate is used.
	TaxRate float64
}

func (q Quote) rate() float64 {
	if q.TaxRate <= 0 {
		return DefaultTaxRate
	}
	return q.TaxRate
}

// Nights returns the billable nights for the quote's range.
func (q Quote) Nights() (int, error) {
	return Nights(q.CheckIn, q.CheckOut)
}

// Subtotal is pricePerNight times nights.
func (q Quote) Subtotal() (float64, error) {
	n, err := q.Nights()
	if err != nil {
		return 0, err
	}
	return q.PricePerNight * float64(n), nil
}

// Taxes is the subtotal times the effective tax rate.
func (q Quote) Taxes() (float64, error) {
	sub, err := q.Subtotal()
	if err != nil {
		return 0, err
	}
	return sub * q.rate(), nil
}

// GrandTotal is subtotal plus taxes.
func (q Quote) GrandTotal() (float64, error) {
	sub, err := q.Subtotal()
	if err != nil {
		return 0, err
	}
	return sub + sub*q.rate(), nil
}
