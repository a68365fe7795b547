package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"innkeeper/internal/api"
	"innkeeper/internal/auth"
	"innkeeper/internal/booking"
	"innkeeper/internal/store"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func (b *Bot) handleHotels(ctx context.Context, chatID int64) {
	b.sendHotelPage(ctx, chatID, 0)
}

func (b *Bot) handleHotelPage(ctx context.Context, chatID int64, pageStr string) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		page = 0
	}
	b.sendHotelPage(ctx, chatID, page)
}

func (b *Bot) startSearch(ctx context.Context, chatID int64) {
	st := b.state.resetFlow(chatID)
	st.Step = stepSearchCity
	prompt := "Which city?"
	if prefs, err := b.db.GetPreferences(ctx, chatID); err == nil && prefs.DefaultCity != "" {
		prompt = fmt.Sprintf("Which city? Send \".\" for %s.", prefs.DefaultCity)
	}
	b.reply(chatID, prompt)
}

func (b *Bot) runSearch(ctx context.Context, chatID int64, st *chatState, city string) {
	city = strings.TrimSpace(city)
	if city == "." {
		prefs, err := b.db.GetPreferences(ctx, chatID)
		if err != nil || prefs.DefaultCity == "" {
			b.reply(chatID, "No usual city saved yet. Which city?")
			return
		}
		city = prefs.DefaultCity
	}
	st.Step = stepNone
	hotels, err := b.api.SearchHotels(ctx, city, "")
	if err != nil {
		b.reply(chatID, api.Message(err, "Search failed."))
		return
	}
	if len(hotels) == 0 {
		b.reply(chatID, fmt.Sprintf("No hotels found in %s.", city))
		return
	}
	// Remember the city that produced results as the chat's usual one.
	if err := b.db.UpsertPreferences(ctx, &store.Preferences{ChatID: chatID, DefaultCity: city}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("save search preference failed")
	}
	b.sendHotelList(chatID, fmt.Sprintf("🔎 Hotels in %s:", city), hotels)
}

func (b *Bot) handleHotelDetail(ctx context.Context, chatID int64, idStr string) {
	hotelID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.reply(chatID, "Bad hotel reference.")
		return
	}
	hotel, err := b.api.GetHotel(ctx, hotelID)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the hotel."))
		return
	}
	msg := tgbotapi.NewMessage(chatID, formatHotel(hotel))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Book a stay", fmt.Sprintf("book:%d", hotel.ID)),
		),
	)
	_, _ = b.tg.Send(msg)
}

// handleBookCallback starts the public booking dialog for a hotel.
func (b *Bot) handleBookCallback(ctx context.Context, chatID int64, _ *chatState, idStr string) {
	if b.requireSession(chatID) == nil {
		return
	}
	hotelID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.reply(chatID, "Bad hotel reference.")
		return
	}
	name := fmt.Sprintf("Hotel #%d", hotelID)
	if hotel, err := b.api.GetHotel(ctx, hotelID); err == nil {
		name = hotel.Name
	}
	st := b.state.resetFlow(chatID)
	st.Stay = stayDraft{HotelID: hotelID, HotelName: name, RoomIdx: -1}
	st.Step = stepStayCheckIn
	b.sendCheckInCalendar(chatID)
}

func (b *Bot) sendCheckInCalendar(chatID int64) {
	now := time.Now()
	msg := tgbotapi.NewMessage(chatID, "Pick a check-in date:")
	msg.ReplyMarkup = calendarKeyboard("ci", now.Year(), now.Month(), now)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) sendCheckOutCalendar(chatID int64, checkIn time.Time) {
	// Check-out must be at least the next day; same-day stays are not
	// bookable.
	min := checkIn.AddDate(0, 0, 1)
	msg := tgbotapi.NewMessage(chatID, "Pick a check-out date:")
	msg.ReplyMarkup = calendarKeyboard("co", min.Year(), min.Month(), min)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleCalendarNav(chatID int64, st *chatState, rest string) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return
	}
	kind := parts[0]
	month, err := time.Parse("2006-01", parts[1])
	if err != nil {
		return
	}
	min := time.Now()
	text := "Pick a check-in date:"
	if kind == "co" {
		ci, err := parseDate(st.Stay.CheckIn)
		if err != nil {
			return
		}
		min = ci.AddDate(0, 0, 1)
		text = "Pick a check-out date:"
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = calendarKeyboard(kind, month.Year(), month.Month(), min)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleCalendarPick(ctx context.Context, chatID int64, st *chatState, rest string) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return
	}
	kind, date := parts[0], parts[1]
	if _, err := parseDate(date); err != nil {
		b.reply(chatID, "Bad date.")
		return
	}

	switch kind {
	case "ci":
		if st.Step != stepStayCheckIn {
			b.reply(chatID, "This dialog is stale. Start again from the hotel page.")
			return
		}
		st.Stay.CheckIn = date
		st.Stay.discardRooms()
		st.Step = stepStayCheckOut
		ci, _ := parseDate(date)
		b.sendCheckOutCalendar(chatID, ci)
	case "co":
		if st.Step != stepStayCheckOut {
			b.reply(chatID, "This dialog is stale. Start again from the hotel page.")
			return
		}
		ci, err := parseDate(st.Stay.CheckIn)
		if err != nil {
			b.reply(chatID, "Pick a check-in date first.")
			return
		}
		co, _ := parseDate(date)
		if _, err := booking.Nights(ci, co); err != nil {
			b.reply(chatID, "Check-out must be after check-in.")
			return
		}
		st.Stay.CheckOut = date
		st.Stay.discardRooms()
		b.fetchAvailability(ctx, chatID, st)
	}
}

// fetchAvailability asks for rooms free over exactly the drafted range
// and offers them. Any earlier room list was already discarded.
func (b *Bot) fetchAvailability(ctx context.Context, chatID int64, st *chatState) {
	avail, err := b.api.CheckAvailability(ctx, st.Stay.HotelID, st.Stay.CheckIn, st.Stay.CheckOut)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not check availability."))
		return
	}
	if len(avail.Rooms) == 0 {
		b.reply(chatID, fmt.Sprintf("No rooms free at %s for %s → %s. Try different dates.",
			st.Stay.HotelName, st.Stay.CheckIn, st.Stay.CheckOut))
		st.Step = stepStayCheckIn
		b.sendCheckInCalendar(chatID)
		return
	}

	st.Stay.Rooms = avail.Rooms
	st.Step = stepStayRoom

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(avail.Rooms))
	for i, r := range avail.Rooms {
		label := fmt.Sprintf("%s %s — %s/night", r.RoomNumber, r.RoomType, money(r.PricePerNight))
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("sroom:%d", i)),
		})
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%d room(s) free for %s → %s. Pick one:",
		len(avail.Rooms), st.Stay.CheckIn, st.Stay.CheckOut))
	msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleRoomPick(chatID int64, st *chatState, idxStr string) {
	if st.Step != stepStayRoom {
		b.reply(chatID, "This room list is stale. Pick the dates again.")
		return
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 || idx >= len(st.Stay.Rooms) {
		b.reply(chatID, "This room list is stale. Pick the dates again.")
		return
	}
	st.Stay.RoomIdx = idx
	st.Step = stepStayGuests

	max := st.Stay.Rooms[idx].MaxOccupancy
	if max <= 0 || max > 6 {
		max = 6
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, max)
	for n := 1; n <= max; n++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(n), fmt.Sprintf("sguests:%d", n)))
	}
	msg := tgbotapi.NewMessage(chatID, "How many guests?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleGuestsPick(chatID int64, st *chatState, nStr string) {
	if st.Step != stepStayGuests {
		b.reply(chatID, "This dialog is stale. Start the booking again.")
		return
	}
	n, err := strconv.Atoi(nStr)
	if err != nil || n < 1 {
		return
	}
	st.Stay.Guests = n
	if st.Stay.WalkIn {
		st.Step = stepWalkInGuestName
		b.reply(chatID, "Guest full name:")
		return
	}
	st.Step = stepStayConfirm
	b.sendQuote(chatID, st)
}

// sendQuote renders the price preview and the confirm/cancel choice.
// The quote is recomputed from the draft every time it is shown.
func (b *Bot) sendQuote(chatID int64, st *chatState) {
	room := st.Stay.room()
	if room == nil {
		b.reply(chatID, "This dialog is stale. Start the booking again.")
		b.state.resetFlow(chatID)
		return
	}
	ci, err := parseDate(st.Stay.CheckIn)
	if err != nil {
		b.reply(chatID, "Bad check-in date. Start the booking again.")
		return
	}
	co, err := parseDate(st.Stay.CheckOut)
	if err != nil {
		b.reply(chatID, "Bad check-out date. Start the booking again.")
		return
	}
	q := booking.Quote{
		PricePerNight: room.PricePerNight,
		CheckIn:       ci,
		CheckOut:      co,
	}
	text, err := formatQuote(&st.Stay, q)
	if err != nil {
		b.reply(chatID, "Check-out must be after check-in.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "stay:confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "stay:cancel"),
		),
	)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleStayConfirm(ctx context.Context, chatID int64, st *chatState) {
	if st.Step != stepStayConfirm {
		b.reply(chatID, "This dialog is stale. Start the booking again.")
		return
	}
	room := st.Stay.room()
	if room == nil {
		b.reply(chatID, "This dialog is stale. Start the booking again.")
		b.state.resetFlow(chatID)
		return
	}

	var (
		created *api.Booking
		err     error
	)
	if st.Stay.WalkIn {
		created, err = b.api.CreateWalkIn(ctx, api.WalkInBookingRequest{
			HotelID:        st.Stay.HotelID,
			RoomID:         room.RoomID,
			CheckInDate:    st.Stay.CheckIn,
			CheckOutDate:   st.Stay.CheckOut,
			GuestName:      st.Stay.GuestName,
			GuestEmail:     st.Stay.GuestEmail,
			GuestPhone:     st.Stay.GuestPhone,
			NumberOfGuests: st.Stay.Guests,
		})
	} else {
		created, err = b.api.CreateBooking(ctx, api.CreateBookingRequest{
			HotelID:        st.Stay.HotelID,
			RoomID:         room.RoomID,
			CheckInDate:    st.Stay.CheckIn,
			CheckOutDate:   st.Stay.CheckOut,
			NumberOfGuests: st.Stay.Guests,
		})
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("booking create failed")
		b.reply(chatID, api.Message(err, "Could not create the booking. The room may have just been taken."))
		return
	}

	st.remember([]api.Booking{*created})
	walkIn := st.Stay.WalkIn
	b.state.resetFlow(chatID)
	b.replyMarkdown(chatID, "Booking created!\n\n"+formatBooking(created))
	if walkIn {
		b.reply(chatID, "The walk-in bill can be settled right away from the booking's 💳 button.")
	}
	b.sendMenu(chatID)
}

func (b *Bot) handleMyBookings(ctx context.Context, chatID int64) {
	sess := b.requireSession(chatID)
	if sess == nil {
		return
	}
	bookings, err := b.api.MyBookings(ctx)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load your bookings."))
		return
	}
	if len(bookings) == 0 {
		b.reply(chatID, "You have no bookings yet. Browse 🏨 Hotels to make one.")
		return
	}
	st := b.state.get(chatID)
	st.remember(bookings)
	for i := range bookings {
		bk := &bookings[i]
		b.sendBookingCard(chatID, bk, sess.User.Role.Staff())
	}
}

// sendBookingCard renders one booking with only the action buttons its
// current status allows.
func (b *Bot) sendBookingCard(chatID int64, bk *api.Booking, staffView bool) {
	msg := tgbotapi.NewMessage(chatID, formatBooking(bk))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb := bookingActions(bk, staffView); len(kb.InlineKeyboard) > 0 {
		msg.ReplyMarkup = kb
	}
	_, _ = b.tg.Send(msg)
}

// bookingActions builds the per-booking inline keyboard from the status
// gates. Actions that the state machine forbids are simply not offered.
func bookingActions(bk *api.Booking, staffView bool) tgbotapi.InlineKeyboardMarkup {
	status, err := booking.ParseStatus(bk.Status)
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	source := booking.ParseSource(bk.BookingSource)

	var row []tgbotapi.InlineKeyboardButton
	if staffView {
		if booking.CanConfirm(status) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", fmt.Sprintf("act:confirm:%d", bk.ID)))
		}
		if booking.CanCheckIn(status) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("📥 Check-in", fmt.Sprintf("act:checkin:%d", bk.ID)))
		}
		if booking.CanCheckOut(status) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("📤 Check-out", fmt.Sprintf("act:checkout:%d", bk.ID)))
		}
		if booking.CanPayBill(status, source) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("💳 Pay bill", fmt.Sprintf("act:pay:%d", bk.ID)))
		}
	}
	if booking.CanCancel(status) {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🚫 Cancel", fmt.Sprintf("act:cancel:%d", bk.ID)))
	}
	if booking.CanViewBill(status) || status == booking.StatusCheckedOut {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🧾 Bill", fmt.Sprintf("act:bill:%d", bk.ID)))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	// Telegram caps button text width; split into rows of two.
	for len(row) > 0 {
		n := 2
		if len(row) < n {
			n = len(row)
		}
		rows = append(rows, row[:n])
		row = row[n:]
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// handleBookingAction re-checks the status gate against the remembered
// booking before any request leaves the client. A stale button press is
// refused with a toast and zero network traffic.
func (b *Bot) handleBookingAction(ctx context.Context, chatID int64, st *chatState, cq *tgbotapi.CallbackQuery, rest string) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	action := parts[0]
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}

	bk, ok := st.Bookings[id]
	if !ok {
		_ = b.answerCallback(cq.ID, "This list is stale. Reload your bookings.")
		return
	}
	status, err := booking.ParseStatus(bk.Status)
	if err != nil {
		_ = b.answerCallback(cq.ID, "Unknown booking status.")
		return
	}
	source := booking.ParseSource(bk.BookingSource)

	if refusal := actionRefusal(action, status, source); refusal != "" {
		_ = b.answerCallback(cq.ID, refusal)
		return
	}
	_ = b.answerCallback(cq.ID, "")

	switch action {
	case "confirm":
		b.runTransition(ctx, chatID, st, id, "confirm", func(ctx context.Context) (*api.Booking, error) {
			return b.api.ConfirmBooking(ctx, id)
		})
	case "cancel":
		st.CancelBookingID = id
		st.Step = stepCancelReason
		b.reply(chatID, "Why is the booking being cancelled? (a reason is required)")
	case "checkin":
		b.runTransition(ctx, chatID, st, id, "check-in", func(ctx context.Context) (*api.Booking, error) {
			return b.api.CheckInBooking(ctx, id, api.CheckInRequest{})
		})
	case "checkout":
		b.askCheckOutRating(chatID, id)
	case "bill":
		b.showBill(ctx, chatID, &bk)
	case "pay":
		b.startBillPayment(ctx, chatID, id)
	}
}

// actionRefusal returns the toast text for an action the current status
// forbids, or "" when the action may proceed.
func actionRefusal(action string, status booking.Status, source booking.Source) string {
	switch action {
	case "confirm":
		if !booking.CanConfirm(status) {
			return fmt.Sprintf("Cannot confirm a %s booking.", status)
		}
	case "cancel":
		if !booking.CanCancel(status) {
			return fmt.Sprintf("Cannot cancel a %s booking.", status)
		}
	case "checkin":
		if !booking.CanCheckIn(status) {
			return fmt.Sprintf("Cannot check in a %s booking.", status)
		}
	case "checkout":
		if !booking.CanCheckOut(status) {
			return fmt.Sprintf("Cannot check out a %s booking.", status)
		}
	case "pay":
		if !booking.CanPayBill(status, source) {
			return "Only a walk-in booking that is still CREATED can be settled here."
		}
	case "bill":
		if !booking.CanViewBill(status) && status != booking.StatusCheckedOut {
			return fmt.Sprintf("No bill for a %s booking.", status)
		}
	}
	return ""
}

func (b *Bot) runTransition(ctx context.Context, chatID int64, st *chatState, id int64, verb string, fn func(context.Context) (*api.Booking, error)) {
	updated, err := fn(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("booking_id", id).Str("action", verb).Msg("transition failed")
		b.reply(chatID, api.Message(err, fmt.Sprintf("Could not %s booking #%d.", verb, id)))
		return
	}
	st.remember([]api.Booking{*updated})
	b.replyMarkdown(chatID, formatBooking(updated))
}

func (b *Bot) finishCancel(ctx context.Context, chatID int64, st *chatState, reason string) {
	id := st.CancelBookingID
	st.Step = stepNone
	st.CancelBookingID = 0
	if id == 0 {
		b.reply(chatID, "Nothing is being cancelled.")
		return
	}
	if strings.TrimSpace(reason) == "" {
		b.reply(chatID, "A cancellation reason is required.")
		st.Step = stepCancelReason
		st.CancelBookingID = id
		return
	}
	updated, err := b.api.CancelBooking(ctx, id, api.CancelBookingRequest{Reason: reason})
	if err != nil {
		b.reply(chatID, api.Message(err, fmt.Sprintf("Could not cancel booking #%d.", id)))
		return
	}
	st.remember([]api.Booking{*updated})
	b.replyMarkdown(chatID, "Booking cancelled.\n\n"+formatBooking(updated))
}

func (b *Bot) askCheckOutRating(chatID, bookingID int64) {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for n := 1; n <= 5; n++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strings.Repeat("⭐", n), fmt.Sprintf("rate:%d:%d", n, bookingID)))
	}
	msg := tgbotapi.NewMessage(chatID, "How was the stay?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Skip", fmt.Sprintf("rate:0:%d", bookingID)),
		),
	)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleRatePick(ctx context.Context, chatID int64, st *chatState, rest string) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return
	}
	rating, err := strconv.Atoi(parts[0])
	if err != nil || rating < 0 || rating > 5 {
		return
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return
	}

	// The gate ran when the button was offered; re-check in case the
	// rating prompt outlived a newer status.
	if bk, ok := st.Bookings[id]; ok {
		if status, err := booking.ParseStatus(bk.Status); err == nil && !booking.CanCheckOut(status) {
			b.reply(chatID, fmt.Sprintf("Booking #%d is already %s.", id, bk.Status))
			return
		}
	}

	b.runTransition(ctx, chatID, st, id, "check out", func(ctx context.Context) (*api.Booking, error) {
		return b.api.CheckOutBooking(ctx, id, api.CheckOutRequest{Rating: rating})
	})
}

// showBill fetches the booking's bill, generating it first when the
// server has not materialized one yet.
func (b *Bot) showBill(ctx context.Context, chatID int64, bk *api.Booking) {
	bill, err := b.api.EnsureBill(ctx, bk.ID)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the bill."))
		return
	}
	b.replyMarkdown(chatID, formatBill(bill))
}

func (b *Bot) startBillPayment(ctx context.Context, chatID int64, bookingID int64) {
	bill, err := b.api.EnsureBill(ctx, bookingID)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the bill."))
		return
	}
	if strings.EqualFold(bill.Status, "PAID") {
		b.replyMarkdown(chatID, "This bill is already settled.\n\n"+formatBill(bill))
		return
	}
	msg := tgbotapi.NewMessage(chatID, formatBill(bill)+"\nPayment method:")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💵 Cash", fmt.Sprintf("paym:%d:%d:CASH", bill.ID, bookingID)),
			tgbotapi.NewInlineKeyboardButtonData("💳 Card", fmt.Sprintf("paym:%d:%d:CARD", bill.ID, bookingID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📱 UPI", fmt.Sprintf("paym:%d:%d:UPI", bill.ID, bookingID)),
		),
	)
	_, _ = b.tg.Send(msg)
}

// handlePaymentMethod re-checks the pay gate against the remembered
// booking before the settlement request leaves, like handleBookingAction
// does for its actions. A press on an outdated keyboard is refused with a
// toast and zero network traffic.
func (b *Bot) handlePaymentMethod(ctx context.Context, chatID int64, st *chatState, cq *tgbotapi.CallbackQuery, rest string) {
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) != 3 {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	billID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	bookingID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	method := parts[2]

	if bk, ok := st.Bookings[bookingID]; ok {
		if status, err := booking.ParseStatus(bk.Status); err == nil {
			if refusal := actionRefusal("pay", status, booking.ParseSource(bk.BookingSource)); refusal != "" {
				_ = b.answerCallback(cq.ID, refusal)
				return
			}
		}
	}
	_ = b.answerCallback(cq.ID, "")

	bill, err := b.api.MarkBillPaid(ctx, billID, api.MarkBillPaidRequest{PaymentMethod: method})
	if err != nil {
		b.reply(chatID, api.Message(err, "Payment failed."))
		return
	}
	// The paid bill belongs to a booking we may have remembered; refresh
	// that copy so later gating sees the server's view.
	if updated, err := b.api.GetBooking(ctx, bill.BookingID); err == nil {
		st.remember([]api.Booking{*updated})
	}
	b.replyMarkdown(chatID, "Paid ✅\n\n"+formatBill(bill))
}

func (b *Bot) handlePayments(ctx context.Context, chatID int64) {
	sess := b.requireSession(chatID)
	if sess == nil {
		return
	}
	var (
		payments []api.Payment
		err      error
	)
	if sess.User.Role == auth.RoleAdmin {
		payments, err = b.api.AllPayments(ctx)
	} else {
		payments, err = b.api.MyPayments(ctx)
	}
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load payments."))
		return
	}
	if len(payments) == 0 {
		b.reply(chatID, "No payments yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Payment history:\n\n")
	for _, p := range payments {
		sb.WriteString(formatPayment(p))
		sb.WriteString("\n")
	}
	b.reply(chatID, sb.String())
}
