package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"innkeeper/internal/api"
	"innkeeper/internal/auth"
	"innkeeper/internal/export"
)

// handleStaffMessage routes staff and admin commands. It returns false
// when the text is not a staff concern so the caller can continue with
// dialog steps.
func (b *Bot) handleStaffMessage(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	chatID := msg.Chat.ID

	switch {
	case text == "📥 Arrivals" || strings.HasPrefix(text, "/arrivals"):
		b.handleArrivals(ctx, chatID)
	case text == "📤 Departures" || strings.HasPrefix(text, "/departures"):
		b.handleDepartures(ctx, chatID)
	case text == "📖 Bookings" || strings.HasPrefix(text, "/bookings"):
		b.handleHotelBookings(ctx, chatID)
	case text == "🛎 Walk-in" || strings.HasPrefix(text, "/walkin"):
		b.startWalkIn(ctx, chatID)
	case text == "📊 Dashboard" || strings.HasPrefix(text, "/dashboard"):
		b.handleDashboard(ctx, chatID)
	case text == "🛏 Rooms" || strings.HasPrefix(text, "/rooms"):
		b.handleRooms(ctx, chatID)
	case strings.HasPrefix(text, "/add_room"):
		b.handleAddRoom(ctx, chatID, text)
	case strings.HasPrefix(text, "/room_status"):
		b.handleRoomStatus(ctx, chatID, text)
	case strings.HasPrefix(text, "/block_room"):
		b.handleBlockRoom(ctx, chatID, text)
	case strings.HasPrefix(text, "/unblock_room"):
		b.handleUnblockRoom(ctx, chatID, text)
	case strings.HasPrefix(text, "/add_hotel"):
		b.handleAddHotel(ctx, chatID, text)
	case strings.HasPrefix(text, "/add_staff"):
		b.handleAddStaff(ctx, chatID, text)
	case text == "👥 Users" || strings.HasPrefix(text, "/users"):
		b.handleUsers(ctx, chatID)
	case text == "📈 Reports" || strings.HasPrefix(text, "/reports"):
		b.handleReports(ctx, chatID)
	default:
		return false
	}
	return true
}

// requireStaff ensures the chat is logged in as hotel staff with an
// assigned hotel, and returns that hotel's id.
func (b *Bot) requireStaff(chatID int64) (int64, bool) {
	sess := b.requireSession(chatID)
	if sess == nil {
		return 0, false
	}
	if !sess.User.Role.Staff() {
		b.reply(chatID, "This command is for hotel staff.")
		return 0, false
	}
	if sess.User.HotelID == nil {
		b.reply(chatID, "Your account has no hotel assigned. Contact an administrator.")
		return 0, false
	}
	return *sess.User.HotelID, true
}

func (b *Bot) requireManager(chatID int64) (int64, bool) {
	sess := b.requireSession(chatID)
	if sess == nil {
		return 0, false
	}
	if sess.User.Role != auth.RoleManager {
		b.reply(chatID, "This command is for hotel managers.")
		return 0, false
	}
	if sess.User.HotelID == nil {
		b.reply(chatID, "Your account has no hotel assigned. Contact an administrator.")
		return 0, false
	}
	return *sess.User.HotelID, true
}

func (b *Bot) requireAdmin(chatID int64) bool {
	sess := b.requireSession(chatID)
	if sess == nil {
		return false
	}
	if sess.User.Role != auth.RoleAdmin {
		b.reply(chatID, "This command is for administrators.")
		return false
	}
	return true
}

func (b *Bot) handleArrivals(ctx context.Context, chatID int64) {
	hotelID, ok := b.requireStaff(chatID)
	if !ok {
		return
	}
	bookings, err := b.api.TodayCheckIns(ctx, hotelID)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load today's arrivals."))
		return
	}
	if len(bookings) == 0 {
		b.reply(chatID, "No arrivals expected today.")
		return
	}
	st := b.state.get(chatID)
	st.remember(bookings)
	b.reply(chatID, fmt.Sprintf("📥 %d arrival(s) today:", len(bookings)))
	for i := range bookings {
		b.sendBookingCard(chatID, &bookings[i], true)
	}
}

func (b *Bot) handleDepartures(ctx context.Context, chatID int64) {
	hotelID, ok := b.requireStaff(chatID)
	if !ok {
		return
	}
	bookings, err := b.api.TodayCheckOuts(ctx, hotelID)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load today's departures."))
		return
	}
	if len(bookings) == 0 {
		b.reply(chatID, "No departures expected today.")
		return
	}
	st := b.state.get(chatID)
	st.remember(bookings)
	b.reply(chatID, fmt.Sprintf("📤 %d departure(s) today:", len(bookings)))
	for i := range bookings {
		b.sendBookingCard(chatID, &bookings[i], true)
	}
}

func (b *Bot) handleHotelBookings(ctx context.Context, chatID int64) {
	hotelID, ok := b.requireStaff(chatID)
	if !ok {
		return
	}
	bookings, err := b.api.HotelBookings(ctx, hotelID)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the hotel's bookings."))
		return
	}
	if len(bookings) == 0 {
		b.reply(chatID, "No bookings for your hotel.")
		return
	}
	st := b.state.get(chatID)
	st.remember(bookings)
	if len(bookings) > 15 {
		b.reply(chatID, fmt.Sprintf("Showing the latest 15 of %d bookings:", len(bookings)))
		bookings = bookings[:15]
	}
	for i := range bookings {
		b.sendBookingCard(chatID, &bookings[i], true)
	}
}

// startWalkIn begins a staff-assisted booking for a guest standing at
// the desk. The dialog reuses the public stay flow; only the hotel is
// fixed and guest contact details are collected afterwards.
func (b *Bot) startWalkIn(ctx context.Context, chatID int64) {
	hotelID, ok := b.requireStaff(chatID)
	if !ok {
		return
	}
	name := fmt.Sprintf("Hotel #%d", hotelID)
	if hotel, err := b.api.GetHotel(ctx, hotelID); err == nil {
		name = hotel.Name
	}
	st := b.state.resetFlow(chatID)
	st.Stay = stayDraft{HotelID: hotelID, HotelName: name, RoomIdx: -1, WalkIn: true}
	st.Step = stepStayCheckIn
	b.reply(chatID, "🛎 Walk-in booking for "+name+".")
	b.sendCheckInCalendar(chatID)
}

func (b *Bot) continueWalkIn(ctx context.Context, chatID int64, st *chatState, text string) {
	switch st.Step {
	case stepWalkInGuestName:
		st.Stay.GuestName = text
		st.Step = stepWalkInGuestEmail
		b.reply(chatID, "Guest email:")
	case stepWalkInGuestEmail:
		if !strings.Contains(text, "@") {
			b.reply(chatID, "That does not look like an email. Try again:")
			return
		}
		st.Stay.GuestEmail = text
		st.Step = stepWalkInGuestPhone
		b.reply(chatID, "Guest phone (or - to skip):")
	case stepWalkInGuestPhone:
		if text != "-" {
			st.Stay.GuestPhone = text
		}
		st.Step = stepStayConfirm
		b.sendQuote(chatID, st)
	}
}

func (b *Bot) handleDashboard(ctx context.Context, chatID int64) {
	sess := b.requireSession(chatID)
	if sess == nil {
		return
	}
	switch sess.User.Role {
	case auth.RoleAdmin:
		d, err := b.api.AdminDashboard(ctx)
		if err != nil {
			b.reply(chatID, api.Message(err, "Could not load the dashboard."))
			return
		}
		b.replyMarkdown(chatID, formatDashboard("System dashboard", d))
	case auth.RoleManager:
		d, err := b.api.ManagerDashboard(ctx)
		if err != nil {
			b.reply(chatID, api.Message(err, "Could not load the dashboard."))
			return
		}
		b.replyMarkdown(chatID, formatDashboard("Hotel dashboard", d))
	case auth.RoleReceptionist, auth.RoleGuest:
		b.reply(chatID, "Dashboards are available to managers and administrators.")
	}
}

func (b *Bot) handleRooms(ctx context.Context, chatID int64) {
	hotelID, ok := b.requireManager(chatID)
	if !ok {
		return
	}
	rooms, err := b.api.GetHotelRooms(ctx, hotelID)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the rooms."))
		return
	}
	if len(rooms) == 0 {
		b.reply(chatID, "No rooms yet. Add one with /add_room.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🛏 Rooms:\n\n")
	for _, r := range rooms {
		fmt.Fprintf(&sb, "#%d  %s %s — %s/night, sleeps %d, %s\n",
			r.ID, r.RoomNumber, r.RoomType, money(r.PricePerNight), r.MaxOccupancy, r.Status)
	}
	sb.WriteString("\n/room_status <id> <status> — change status")
	sb.WriteString("\n/block_room <id> <from> <to> [reason] — block dates")
	b.reply(chatID, sb.String())
}

func (b *Bot) handleAddRoom(ctx context.Context, chatID int64, text string) {
	hotelID, ok := b.requireManager(chatID)
	if !ok {
		return
	}
	parts := strings.Fields(text)
	if len(parts) < 5 {
		b.reply(chatID, "Usage: /add_room <number> <type> <pricePerNight> <maxOccupancy>")
		return
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil || price <= 0 {
		b.reply(chatID, "Bad price.")
		return
	}
	occupancy, err := strconv.Atoi(parts[4])
	if err != nil || occupancy < 1 {
		b.reply(chatID, "Bad occupancy.")
		return
	}
	room, err := b.api.CreateRoom(ctx, api.CreateRoomRequest{
		HotelID:       hotelID,
		RoomNumber:    parts[1],
		RoomType:      strings.ToUpper(parts[2]),
		PricePerNight: price,
		MaxOccupancy:  occupancy,
	})
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not add the room."))
		return
	}
	b.reply(chatID, fmt.Sprintf("Room %s added (#%d).", room.RoomNumber, room.ID))
}

func (b *Bot) handleRoomStatus(ctx context.Context, chatID int64, text string) {
	if _, ok := b.requireManager(chatID); !ok {
		return
	}
	parts := strings.Fields(text)
	if len(parts) != 3 {
		b.reply(chatID, "Usage: /room_status <roomId> <AVAILABLE|MAINTENANCE|OCCUPIED>")
		return
	}
	roomID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.reply(chatID, "Bad room id.")
		return
	}
	status := strings.ToUpper(parts[2])
	if err := b.api.UpdateRoomStatus(ctx, roomID, status); err != nil {
		b.reply(chatID, api.Message(err, "Could not update the room."))
		return
	}
	b.reply(chatID, fmt.Sprintf("Room #%d is now %s.", roomID, status))
}

func (b *Bot) handleBlockRoom(ctx context.Context, chatID int64, text string) {
	if _, ok := b.requireManager(chatID); !ok {
		return
	}
	parts := strings.Fields(text)
	if len(parts) < 4 {
		b.reply(chatID, "Usage: /block_room <roomId> <from YYYY-MM-DD> <to YYYY-MM-DD> [reason]")
		return
	}
	roomID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.reply(chatID, "Bad room id.")
		return
	}
	if _, err := parseDate(parts[2]); err != nil {
		b.reply(chatID, "Bad start date, expected YYYY-MM-DD.")
		return
	}
	if _, err := parseDate(parts[3]); err != nil {
		b.reply(chatID, "Bad end date, expected YYYY-MM-DD.")
		return
	}
	reason := strings.Join(parts[4:], " ")
	err = b.api.BlockRoom(ctx, api.BlockRoomRequest{
		RoomID:    roomID,
		StartDate: parts[2],
		EndDate:   parts[3],
		Reason:    reason,
	})
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not block the room."))
		return
	}
	b.reply(chatID, fmt.Sprintf("Room #%d blocked %s → %s.", roomID, parts[2], parts[3]))
}

func (b *Bot) handleUnblockRoom(ctx context.Context, chatID int64, text string) {
	if _, ok := b.requireManager(chatID); !ok {
		return
	}
	parts := strings.Fields(text)
	if len(parts) != 4 {
		b.reply(chatID, "Usage: /unblock_room <roomId> <from YYYY-MM-DD> <to YYYY-MM-DD>")
		return
	}
	roomID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.reply(chatID, "Bad room id.")
		return
	}
	err = b.api.UnblockRoom(ctx, api.UnblockRoomRequest{
		RoomID:    roomID,
		StartDate: parts[2],
		EndDate:   parts[3],
	})
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not unblock the room."))
		return
	}
	b.reply(chatID, fmt.Sprintf("Room #%d unblocked %s → %s.", roomID, parts[2], parts[3]))
}

// handleAddHotel registers a hotel. Fields are pipe-separated because
// names and addresses contain spaces.
func (b *Bot) handleAddHotel(ctx context.Context, chatID int64, text string) {
	if !b.requireAdmin(chatID) {
		return
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, "/add_hotel"))
	fields := strings.Split(rest, "|")
	if len(fields) < 4 {
		b.reply(chatID, "Usage: /add_hotel <name>|<category>|<city>|<address>")
		return
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	hotel, err := b.api.CreateHotel(ctx, api.CreateHotelRequest{
		Name:     fields[0],
		Category: strings.ToUpper(fields[1]),
		City:     fields[2],
		Address:  fields[3],
	})
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not create the hotel."))
		return
	}
	b.reply(chatID, fmt.Sprintf("Hotel %q created (#%d).", hotel.Name, hotel.ID))
}

// handleAddStaff creates a staff account bound to a hotel.
func (b *Bot) handleAddStaff(ctx context.Context, chatID int64, text string) {
	if !b.requireAdmin(chatID) {
		return
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, "/add_staff"))
	parts := strings.SplitN(rest, " ", 3)
	if len(parts) < 3 {
		b.reply(chatID, "Usage: /add_staff <hotelId> <MANAGER|RECEPTIONIST> <name>|<username>|<email>|<password>")
		return
	}
	hotelID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.reply(chatID, "Bad hotel id.")
		return
	}
	role := strings.ToUpper(parts[1])
	fields := strings.Split(parts[2], "|")
	if len(fields) != 4 {
		b.reply(chatID, "Usage: /add_staff <hotelId> <MANAGER|RECEPTIONIST> <name>|<username>|<email>|<password>")
		return
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	user, err := b.api.CreateStaff(ctx, hotelID, api.CreateStaffRequest{
		FullName: fields[0],
		Username: fields[1],
		Email:    fields[2],
		Password: fields[3],
		Role:     role,
	})
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not create the staff account."))
		return
	}
	b.reply(chatID, fmt.Sprintf("%s account %s created for hotel #%d.", role, user.Username, hotelID))
}

func (b *Bot) handleUsers(ctx context.Context, chatID int64) {
	if !b.requireAdmin(chatID) {
		return
	}
	users, err := b.api.ListUsers(ctx)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the users."))
		return
	}
	if len(users) == 0 {
		b.reply(chatID, "No accounts.")
		return
	}
	for _, u := range users {
		state := "active"
		if !u.Enabled {
			state = "deactivated"
		}
		text := fmt.Sprintf("#%d %s (%s)\n%s — %s", u.UserID, u.Username, u.Role, u.Email, state)
		msg := tgbotapi.NewMessage(chatID, text)
		if u.Enabled {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("🚫 Deactivate", fmt.Sprintf("udis:%d", u.UserID)),
				),
			)
		}
		_, _ = b.tg.Send(msg)
	}
}

func (b *Bot) handleDeactivateUser(ctx context.Context, chatID int64, idStr string) {
	if !b.requireAdmin(chatID) {
		return
	}
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}
	if err := b.api.DeactivateUser(ctx, userID); err != nil {
		b.reply(chatID, api.Message(err, "Could not deactivate the account."))
		return
	}
	b.reply(chatID, fmt.Sprintf("Account #%d deactivated.", userID))
}

// handleReports builds the cross-hotel performance report and uploads
// it as a spreadsheet.
func (b *Bot) handleReports(ctx context.Context, chatID int64) {
	if !b.requireAdmin(chatID) {
		return
	}
	reports, err := b.api.HotelReports(ctx)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the reports."))
		return
	}
	if len(reports) == 0 {
		b.reply(chatID, "No report data yet.")
		return
	}

	var buf bytes.Buffer
	if err := export.HotelReports(reports, &buf); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("report export failed")
		b.reply(chatID, "Could not build the report file.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "hotel_reports.xlsx",
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("📈 Performance report, %d hotel(s)", len(reports))
	if _, err := b.tg.Send(doc); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("report upload failed")
		b.reply(chatID, "Could not upload the report file.")
	}
}
