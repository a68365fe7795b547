package bot

import (
	"context"
	"fmt"
	"time"

	"innkeeper/internal/api"
	"innkeeper/internal/booking"
)

// StartReminders schedules a daily pass that pings every logged-in chat
// about bookings checking in tomorrow.
func (b *Bot) StartReminders(ctx context.Context) {
	go func() {
		// First wait until the next 09:00 local time, then tick every 24h.
		wait := timeUntilNextHour(9)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders(ctx context.Context) {
	l := b.logger.With().Str("job", "reminders").Logger()
	tomorrow := time.Now().AddDate(0, 0, 1).Format(dateLayout)

	for _, chatID := range b.sessions.ChatIDs() {
		reqCtx := b.requestCtx(ctx, chatID)
		bookings, err := b.api.MyBookings(reqCtx)
		if err != nil {
			l.Warn().Err(err).Int64("chat_id", chatID).Msg("reminder: list bookings")
			continue
		}
		for i := range bookings {
			bk := &bookings[i]
			if bk.CheckInDate != tomorrow {
				continue
			}
			status, err := booking.ParseStatus(bk.Status)
			if err != nil || !shouldRemindStatus(status) {
				continue
			}
			b.reply(chatID, reminderMessage(bk))
		}
	}
}

// shouldRemindStatus limits reminders to stays that are actually going
// to happen.
func shouldRemindStatus(s booking.Status) bool {
	return s == booking.StatusCreated || s == booking.StatusConfirmed
}

func reminderMessage(bk *api.Booking) string {
	return fmt.Sprintf("⏰ Reminder: booking #%d checks in tomorrow (%s). Status: %s.",
		bk.ID, bk.CheckInDate, bk.Status)
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
