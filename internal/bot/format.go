package bot

import (
	"fmt"
	"strings"

	"innkeeper/internal/api"
	"innkeeper/internal/booking"
)

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func statusEmoji(s booking.Status) string {
	switch s {
	case booking.StatusCreated:
		return "🆕"
	case booking.StatusConfirmed:
		return "✅"
	case booking.StatusCheckedIn:
		return "🛏"
	case booking.StatusCheckedOut:
		return "🏁"
	case booking.StatusCancelled:
		return "❌"
	}
	return "❔"
}

func formatHotel(h *api.HotelDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏨 *%s* (%s)\n", h.Name, h.Category)
	if h.StarRating > 0 {
		fmt.Fprintf(&sb, "⭐ %.1f\n", h.StarRating)
	}
	fmt.Fprintf(&sb, "📍 %s, %s\n", h.Address, h.City)
	if h.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", h.Description)
	}
	if h.Amenities != "" {
		fmt.Fprintf(&sb, "\n🛎 %s\n", h.Amenities)
	}
	fmt.Fprintf(&sb, "\nRooms available: %d of %d", h.AvailableRooms, h.TotalRooms)
	return sb.String()
}

func formatHotelLine(i int, h api.Hotel) string {
	line := fmt.Sprintf("%d. *%s* — %s", i, h.Name, h.City)
	if h.StarRating > 0 {
		line += fmt.Sprintf(" ⭐%.1f", h.StarRating)
	}
	return line
}

func formatBooking(b *api.Booking) string {
	status, _ := booking.ParseStatus(b.Status)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *Booking #%d* — %s\n", statusEmoji(status), b.ID, b.Status)
	fmt.Fprintf(&sb, "📅 %s → %s\n", b.CheckInDate, b.CheckOutDate)
	if b.RoomNumber != "" {
		fmt.Fprintf(&sb, "🛏 Room %s (%s)\n", b.RoomNumber, b.RoomType)
	}
	fmt.Fprintf(&sb, "👥 %d guest(s)\n", b.NumberOfGuests)
	fmt.Fprintf(&sb, "💰 %s\n", money(b.TotalAmount))
	if b.GuestName != "" {
		fmt.Fprintf(&sb, "👤 %s\n", b.GuestName)
	}
	if booking.ParseSource(b.BookingSource) == booking.SourceWalkIn {
		sb.WriteString("🛎 Walk-in\n")
	}
	if b.CancellationReason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", b.CancellationReason)
	}
	return sb.String()
}

func formatBill(bill *api.Bill) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 *Bill %s*\n", bill.BillNumber)
	fmt.Fprintf(&sb, "Booking #%d\n", bill.BookingID)
	fmt.Fprintf(&sb, "📅 %s → %s\n", bill.CheckInDate, bill.CheckOutDate)
	fmt.Fprintf(&sb, "💰 Total: %s\n", money(bill.TotalAmount))
	fmt.Fprintf(&sb, "Status: %s\n", bill.Status)
	if bill.PaidAt != "" {
		fmt.Fprintf(&sb, "Paid at: %s\n", bill.PaidAt)
	}
	return sb.String()
}

// formatQuote renders the live price preview for a drafted stay. Totals
// are computed fresh from the quote on every render.
func formatQuote(d *stayDraft, q booking.Quote) (string, error) {
	nights, err := q.Nights()
	if err != nil {
		return "", err
	}
	subtotal, err := q.Subtotal()
	if err != nil {
		return "", err
	}
	taxes, err := q.Taxes()
	if err != nil {
		return "", err
	}
	total, err := q.GrandTotal()
	if err != nil {
		return "", err
	}

	room := d.room()
	var sb strings.Builder
	sb.WriteString("📋 *Booking summary*\n\n")
	fmt.Fprintf(&sb, "🏨 %s\n", d.HotelName)
	fmt.Fprintf(&sb, "🛏 Room %s (%s)\n", room.RoomNumber, room.RoomType)
	fmt.Fprintf(&sb, "📅 %s → %s (%d night(s))\n", d.CheckIn, d.CheckOut, nights)
	fmt.Fprintf(&sb, "👥 %d guest(s)\n\n", d.Guests)
	fmt.Fprintf(&sb, "Subtotal: %s\n", money(subtotal))
	fmt.Fprintf(&sb, "Taxes: %s\n", money(taxes))
	fmt.Fprintf(&sb, "*Total: %s*\n\nConfirm?", money(total))
	return sb.String(), nil
}

func formatDashboard(title string, d *api.Dashboard) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *%s*\n\n", title)
	fmt.Fprintf(&sb, "💰 Total revenue: %s\n", money(d.TotalRevenue))
	fmt.Fprintf(&sb, "📆 Monthly revenue: %s\n", money(d.MonthlyRevenue))
	fmt.Fprintf(&sb, "📖 Bookings: %d\n", d.TotalBookings)
	fmt.Fprintf(&sb, "📥 Check-ins: %d\n", d.TotalCheckIns)
	fmt.Fprintf(&sb, "📤 Check-outs: %d\n", d.TotalCheckOuts)
	fmt.Fprintf(&sb, "⭐ Average rating: %.1f\n", d.AverageRating)
	if len(d.RevenueByHotel) > 0 {
		sb.WriteString("\n*Revenue by hotel:*\n")
		for _, h := range d.RevenueByHotel {
			fmt.Fprintf(&sb, "• %s: %s\n", h.HotelName, money(h.Revenue))
		}
	}
	if len(d.BookingStatusDistribution) > 0 {
		sb.WriteString("\n*Bookings by status:*\n")
		for _, s := range d.BookingStatusDistribution {
			fmt.Fprintf(&sb, "• %s: %d\n", s.Status, s.Count)
		}
	}
	return sb.String()
}

func formatPayment(p api.Payment) string {
	line := fmt.Sprintf("💳 %s — %s (%s)", money(p.Amount), p.PaymentMethod, p.PaidAt)
	if p.TransactionID != "" {
		line += fmt.Sprintf("\n    txn %s", p.TransactionID)
	}
	return line
}
