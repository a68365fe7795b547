package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
		wantErr  error
	}{
		{"one night", date(2026, 3, 10), date(2026, 3, 11), 1, nil},
		{"three nights", date(2026, 3, 10), date(2026, 3, 13), 3, nil},
		{"across month end", date(2026, 1, 30), date(2026, 2, 2), 3, nil},
		{"partial day rounds up", date(2026, 3, 10), date(2026, 3, 11).Add(6 * time.Hour), 2, nil},
		{"same day rejected", date(2026, 3, 10), date(2026, 3, 10), 0, ErrEmptyStay},
		{"inverted rejected", date(2026, 3, 11), date(2026, 3, 10), 0, ErrEmptyStay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Nights(tt.checkIn, tt.checkOut)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuoteTotals(t *testing.T) {
	q := Quote{
		PricePerNight: 100,
		CheckIn:       date(2026, 3, 10),
		CheckOut:      date(2026, 3, 13),
	}

	nights, err := q.Nights()
	require.NoError(t, err)
	assert.Equal(t, 3, nights)

	sub, err := q.Subtotal()
	require.NoError(t, err)
	assert.InDelta(t, 300.0, sub, 1e-9)

	taxes, err := q.Taxes()
	require.NoError(t, err)
	assert.InDelta(t, 300.0*DefaultTaxRate, taxes, 1e-9)

	total, err := q.GrandTotal()
	require.NoError(t, err)
	// grandTotal = price * nights * (1 + rate)
	assert.InDelta(t, 100*3*(1+DefaultTaxRate), total, 1e-9)
}

func TestQuoteExplicitRate(t *testing.T) {
	q := Quote{
		PricePerNight: 80,
		CheckIn:       date(2026, 5, 1),
		CheckOut:      date(2026, 5, 3),
		TaxRate:       0.05,
	}
	total, err := q.GrandTotal()
	require.NoError(t, err)
	assert.InDelta(t, 80*2*1.05, total, 1e-9)
}

// Totals must always reflect the current inputs: editing a date on the
// quote changes every derived number on the next read.
func TestQuoteRecomputesAfterEdit(t *testing.T) {
	q := Quote{
		PricePerNight: 100,
		CheckIn:       date(2026, 3, 10),
		CheckOut:      date(2026, 3, 11),
	}
	first, err := q.GrandTotal()
	require.NoError(t, err)

	q.CheckOut = date(2026, 3, 14)
	second, err := q.GrandTotal()
	require.NoError(t, err)

	assert.InDelta(t, 100*1*(1+DefaultTaxRate), first, 1e-9)
	assert.InDelta(t, 100*4*(1+DefaultTaxRate), second, 1e-9)
}

func TestQuoteEmptyStay(t *testing.T) {
	q := Quote{
		PricePerNight: 100,
		CheckIn:       date(2026, 3, 10),
		CheckOut:      date(2026, 3, 10),
	}
	_, err := q.GrandTotal()
	assert.ErrorIs(t, err, ErrEmptyStay)
	_, err = q.Subtotal()
	assert.ErrorIs(t, err, ErrEmptyStay)
}
