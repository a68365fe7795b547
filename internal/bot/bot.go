package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"innkeeper/internal/api"
	"innkeeper/internal/auth"
	"innkeeper/internal/store"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Bot is the Telegram concierge front-end over the hotel API.
type Bot struct {
	api      *api.Client
	sessions *auth.Store
	db       *store.DB
	tg       telegramClient
	state    *stateStore
	logger   *zerolog.Logger
}

func New(
	token string,
	apiClient *api.Client,
	sessions *auth.Store,
	db *store.DB,
	logger *zerolog.Logger,
) (*Bot, error) {
	tgAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(&realTelegramClient{api: tgAPI}, apiClient, sessions, db, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(
	tg telegramClient,
	apiClient *api.Client,
	sessions *auth.Store,
	db *store.DB,
	logger *zerolog.Logger,
) (*Bot, error) {
	return newBot(tg, apiClient, sessions, db, logger)
}

func newBot(
	tg telegramClient,
	apiClient *api.Client,
	sessions *auth.Store,
	db *store.DB,
	logger *zerolog.Logger,
) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	b := &Bot{
		api:      apiClient,
		sessions: sessions,
		db:       db,
		tg:       tg,
		state:    newStateStore(),
		logger:   logger,
	}
	apiClient.UseUnauthorizedHandler(b.handleUnauthorized)
	return b, nil
}

type botCtxKey int

const chatKey botCtxKey = iota

func withChat(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatKey, chatID)
}

func chatFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(chatKey).(int64)
	return id, ok
}

// handleUnauthorized fires when the server rejects a token. The session
// is torn down in full (memory and durable store) and the chat is told
// to log in again; credential endpoints never reach here.
func (b *Bot) handleUnauthorized(ctx context.Context) {
	chatID, ok := chatFrom(ctx)
	if !ok {
		return
	}
	if err := b.sessions.Clear(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("session teardown: durable clear failed")
	}
	b.state.reset(chatID)
	zerolog.Ctx(ctx).Info().Int64("chat_id", chatID).Msg("session invalidated by server")
	b.reply(chatID, "Your session has expired. Please /login again.")
}

var (
	loggedOutMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔑 Log in"),
			tgbotapi.NewKeyboardButton("📝 Register"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🏨 Hotels"),
			tgbotapi.NewKeyboardButton("ℹ️ Help"),
		),
	)

	guestMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🏨 Hotels"),
			tgbotapi.NewKeyboardButton("🔎 Search"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📖 My bookings"),
			tgbotapi.NewKeyboardButton("💳 Payments"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("ℹ️ Help"),
		),
	)

	receptionistMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📥 Arrivals"),
			tgbotapi.NewKeyboardButton("📤 Departures"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📖 Bookings"),
			tgbotapi.NewKeyboardButton("🛎 Walk-in"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("ℹ️ Help"),
		),
	)

	managerMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📊 Dashboard"),
			tgbotapi.NewKeyboardButton("📖 Bookings"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📥 Arrivals"),
			tgbotapi.NewKeyboardButton("📤 Departures"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🛏 Rooms"),
			tgbotapi.NewKeyboardButton("🛎 Walk-in"),
		),
	)

	adminMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📊 Dashboard"),
			tgbotapi.NewKeyboardButton("🏨 Hotels"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👥 Users"),
			tgbotapi.NewKeyboardButton("📈 Reports"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("💳 Payments"),
		),
	)
)

// sendMenu shows the landing keyboard for the chat's role. The switch is
// exhaustive over the dashboard enum.
func (b *Bot) sendMenu(chatID int64) {
	sess := b.sessions.Get(chatID)
	msg := tgbotapi.NewMessage(chatID, "Choose an action:")
	if sess == nil {
		msg.ReplyMarkup = loggedOutMenu
		_, _ = b.tg.Send(msg)
		return
	}
	switch sess.User.Role.Dashboard() {
	case auth.DashboardGuest:
		msg.ReplyMarkup = guestMenu
	case auth.DashboardReceptionist:
		msg.ReplyMarkup = receptionistMenu
	case auth.DashboardManager:
		msg.ReplyMarkup = managerMenu
	case auth.DashboardAdmin:
		msg.ReplyMarkup = adminMenu
	}
	_, _ = b.tg.Send(msg)
}

// Start begins polling updates. Updates are handled one at a time, so a
// chat never has two requests in flight at once.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("concierge bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.handleUpdate(updateCtx, &update)
		}
	}
}

// requestCtx binds the chat and, when logged in, its identity to the
// context so that API calls carry the right token.
func (b *Bot) requestCtx(ctx context.Context, chatID int64) context.Context {
	ctx = withChat(ctx, chatID)
	if sess := b.sessions.Get(chatID); sess != nil {
		ctx = api.WithIdentity(ctx, api.Identity{
			Token:    sess.Token,
			UserID:   sess.User.ID,
			Username: sess.User.Username,
			Email:    sess.User.Email,
			RoleName: sess.User.Role.String(),
		})
	}
	return ctx
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(b.requestCtx(ctx, update.CallbackQuery.Message.Chat.ID), update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("handling message")
		b.handleMessage(b.requestCtx(ctx, update.Message.Chat.ID), update.Message)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	// Commands and menu buttons interrupt any active dialog.
	switch {
	case strings.HasPrefix(text, "/start"):
		b.state.resetFlow(chatID)
		b.reply(chatID, "Welcome to the hotel concierge. Browse 🏨 Hotels or 🔑 Log in to book a stay.")
		b.sendMenu(chatID)
		return
	case text == "ℹ️ Help" || strings.HasPrefix(text, "/help"):
		b.sendHelp(chatID)
		return
	case text == "🔑 Log in" || strings.HasPrefix(text, "/login"):
		b.startLogin(chatID)
		return
	case text == "📝 Register" || strings.HasPrefix(text, "/register"):
		b.startRegister(chatID)
		return
	case strings.HasPrefix(text, "/logout"):
		b.handleLogout(ctx, chatID)
		return
	case strings.HasPrefix(text, "/password"):
		b.startPasswordChange(chatID)
		return
	case text == "/cancel":
		b.state.resetFlow(chatID)
		b.reply(chatID, "Cancelled.")
		b.sendMenu(chatID)
		return
	case text == "🏨 Hotels" || strings.HasPrefix(text, "/hotels"):
		b.handleHotels(ctx, chatID)
		return
	case text == "🔎 Search" || strings.HasPrefix(text, "/search"):
		b.startSearch(ctx, chatID)
		return
	case text == "📖 My bookings" || strings.HasPrefix(text, "/my_bookings"):
		b.handleMyBookings(ctx, chatID)
		return
	case text == "💳 Payments" || strings.HasPrefix(text, "/payments"):
		b.handlePayments(ctx, chatID)
		return
	}

	if b.handleStaffMessage(ctx, msg, text) {
		return
	}

	b.continueFlow(ctx, chatID, text)
}

// continueFlow feeds free text into whatever dialog step the chat is in.
func (b *Bot) continueFlow(ctx context.Context, chatID int64, text string) {
	st := b.state.get(chatID)
	switch st.Step {
	case stepLoginEmail, stepLoginPassword:
		b.continueLogin(ctx, chatID, st, text)
	case stepRegisterName, stepRegisterUsername, stepRegisterEmail, stepRegisterPassword:
		b.continueRegister(ctx, chatID, st, text)
	case stepPasswordCurrent, stepPasswordNew:
		b.continuePasswordChange(ctx, chatID, st, text)
	case stepSearchCity:
		b.runSearch(ctx, chatID, st, text)
	case stepCancelReason:
		b.finishCancel(ctx, chatID, st, text)
	case stepWalkInGuestName, stepWalkInGuestEmail, stepWalkInGuestPhone:
		b.continueWalkIn(ctx, chatID, st, text)
	default:
		b.reply(chatID, "I did not understand that. Try /help.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	data := cq.Data
	if data == "noop" {
		_ = b.answerCallback(cq.ID, "")
		return
	}

	chatID := cq.Message.Chat.ID
	st := b.state.get(chatID)

	switch {
	case strings.HasPrefix(data, "hpage:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleHotelPage(ctx, chatID, strings.TrimPrefix(data, "hpage:"))
	case strings.HasPrefix(data, "hotel:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleHotelDetail(ctx, chatID, strings.TrimPrefix(data, "hotel:"))
	case strings.HasPrefix(data, "book:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleBookCallback(ctx, chatID, st, strings.TrimPrefix(data, "book:"))
	case strings.HasPrefix(data, "calnav:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleCalendarNav(chatID, st, strings.TrimPrefix(data, "calnav:"))
	case strings.HasPrefix(data, "cal:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleCalendarPick(ctx, chatID, st, strings.TrimPrefix(data, "cal:"))
	case strings.HasPrefix(data, "sroom:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleRoomPick(chatID, st, strings.TrimPrefix(data, "sroom:"))
	case strings.HasPrefix(data, "sguests:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleGuestsPick(chatID, st, strings.TrimPrefix(data, "sguests:"))
	case data == "stay:confirm":
		_ = b.answerCallback(cq.ID, "")
		b.handleStayConfirm(ctx, chatID, st)
	case data == "stay:cancel":
		_ = b.answerCallback(cq.ID, "")
		b.state.resetFlow(chatID)
		b.reply(chatID, "Booking cancelled.")
		b.sendMenu(chatID)
	case strings.HasPrefix(data, "act:"):
		b.handleBookingAction(ctx, chatID, st, cq, strings.TrimPrefix(data, "act:"))
	case strings.HasPrefix(data, "rate:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleRatePick(ctx, chatID, st, strings.TrimPrefix(data, "rate:"))
	case strings.HasPrefix(data, "paym:"):
		b.handlePaymentMethod(ctx, chatID, st, cq, strings.TrimPrefix(data, "paym:"))
	case strings.HasPrefix(data, "udis:"):
		_ = b.answerCallback(cq.ID, "")
		b.handleDeactivateUser(ctx, chatID, strings.TrimPrefix(data, "udis:"))
	default:
		_ = b.answerCallback(cq.ID, "")
	}
}

func (b *Bot) sendHelp(chatID int64) {
	sess := b.sessions.Get(chatID)
	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	sb.WriteString("/hotels — browse hotels\n")
	sb.WriteString("/search — search by city\n")
	if sess == nil {
		sb.WriteString("/login — log in\n")
		sb.WriteString("/register — create a guest account\n")
		b.reply(chatID, sb.String())
		return
	}
	sb.WriteString("/my_bookings — your bookings\n")
	sb.WriteString("/payments — payment history\n")
	sb.WriteString("/password — change password\n")
	sb.WriteString("/logout — log out\n")
	switch sess.User.Role {
	case auth.RoleGuest:
	case auth.RoleReceptionist:
		sb.WriteString("\nFront desk:\n")
		sb.WriteString("/arrivals — today's check-ins\n")
		sb.WriteString("/departures — today's check-outs\n")
		sb.WriteString("/bookings — hotel bookings\n")
		sb.WriteString("/walkin — register a walk-in guest\n")
	case auth.RoleManager:
		sb.WriteString("\nManagement:\n")
		sb.WriteString("/dashboard — hotel dashboard\n")
		sb.WriteString("/bookings — hotel bookings\n")
		sb.WriteString("/arrivals, /departures — today's traffic\n")
		sb.WriteString("/walkin — register a walk-in guest\n")
		sb.WriteString("/rooms — list rooms\n")
		sb.WriteString("/add_room <number> <type> <price> <occupancy>\n")
		sb.WriteString("/room_status <roomId> <status>\n")
		sb.WriteString("/block_room <roomId> <from> <to> [reason]\n")
		sb.WriteString("/unblock_room <roomId> <from> <to>\n")
	case auth.RoleAdmin:
		sb.WriteString("\nAdministration:\n")
		sb.WriteString("/dashboard — system dashboard\n")
		sb.WriteString("/add_hotel <name>|<category>|<city>|<address>\n")
		sb.WriteString("/add_staff <hotelId> <role> <name>|<username>|<email>|<password>\n")
		sb.WriteString("/users — list accounts\n")
		sb.WriteString("/reports — hotel performance report (xlsx)\n")
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) startLogin(chatID int64) {
	st := b.state.resetFlow(chatID)
	st.Step = stepLoginEmail
	b.reply(chatID, "Enter your email:")
}

func (b *Bot) continueLogin(ctx context.Context, chatID int64, st *chatState, text string) {
	switch st.Step {
	case stepLoginEmail:
		st.Login.Email = text
		st.Step = stepLoginPassword
		b.reply(chatID, "Enter your password:")
	case stepLoginPassword:
		b.finishLogin(ctx, chatID, st, text)
	}
}

func (b *Bot) finishLogin(ctx context.Context, chatID int64, st *chatState, password string) {
	resp, err := b.api.Login(ctx, api.LoginRequest{Email: st.Login.Email, Password: password})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("login failed")
		b.reply(chatID, api.Message(err, "Login failed. Check your credentials and try /login again."))
		b.state.resetFlow(chatID)
		return
	}
	role, err := auth.ParseRole(resp.Role)
	if err != nil {
		b.reply(chatID, "The server returned an unknown account role. Contact support.")
		b.state.resetFlow(chatID)
		return
	}
	sess := &auth.Session{
		Token: resp.Token,
		User: auth.User{
			ID:       resp.UserID,
			Username: resp.Username,
			Email:    resp.Email,
			Role:     role,
			HotelID:  resp.HotelID,
		},
	}
	if err := b.sessions.Put(ctx, chatID, sess); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("persist session failed")
		b.reply(chatID, "Could not save your session. Try again.")
		b.state.resetFlow(chatID)
		return
	}
	b.state.resetFlow(chatID)
	b.reply(chatID, fmt.Sprintf("Logged in as %s (%s).", resp.Username, role))
	b.sendMenu(chatID)
}

func (b *Bot) startRegister(chatID int64) {
	st := b.state.resetFlow(chatID)
	st.Step = stepRegisterName
	b.reply(chatID, "Enter your full name:")
}

func (b *Bot) continueRegister(ctx context.Context, chatID int64, st *chatState, text string) {
	switch st.Step {
	case stepRegisterName:
		st.Register.FullName = text
		st.Step = stepRegisterUsername
		b.reply(chatID, "Pick a username:")
	case stepRegisterUsername:
		st.Register.Username = text
		st.Step = stepRegisterEmail
		b.reply(chatID, "Enter your email:")
	case stepRegisterEmail:
		st.Register.Email = text
		st.Step = stepRegisterPassword
		b.reply(chatID, "Pick a password (at least 6 characters):")
	case stepRegisterPassword:
		_, err := b.api.RegisterGuest(ctx, api.RegisterRequest{
			FullName: st.Register.FullName,
			Username: st.Register.Username,
			Email:    st.Register.Email,
			Password: text,
		})
		if err != nil {
			b.reply(chatID, api.Message(err, "Registration failed. Try /register again."))
			b.state.resetFlow(chatID)
			return
		}
		b.state.resetFlow(chatID)
		b.reply(chatID, "Account created. Use /login to sign in.")
	}
}

func (b *Bot) startPasswordChange(chatID int64) {
	if b.sessions.Get(chatID) == nil {
		b.reply(chatID, "Please /login first.")
		return
	}
	st := b.state.resetFlow(chatID)
	st.Step = stepPasswordCurrent
	b.reply(chatID, "Enter your current password:")
}

func (b *Bot) continuePasswordChange(ctx context.Context, chatID int64, st *chatState, text string) {
	switch st.Step {
	case stepPasswordCurrent:
		st.Password.Current = text
		st.Step = stepPasswordNew
		b.reply(chatID, "Enter the new password (at least 6 characters):")
	case stepPasswordNew:
		err := b.api.ChangePassword(ctx, api.ChangePasswordRequest{
			CurrentPassword: st.Password.Current,
			NewPassword:     text,
		})
		b.state.resetFlow(chatID)
		if err != nil {
			b.reply(chatID, api.Message(err, "Password change failed."))
			return
		}
		b.reply(chatID, "Password changed.")
	}
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) {
	if b.sessions.Get(chatID) == nil {
		b.reply(chatID, "You are not logged in.")
		return
	}
	if err := b.sessions.Clear(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("logout: durable clear failed")
	}
	b.state.reset(chatID)
	b.reply(chatID, "Logged out.")
	b.sendMenu(chatID)
}

// requireSession replies with a login prompt when the chat has none.
func (b *Bot) requireSession(chatID int64) *auth.Session {
	sess := b.sessions.Get(chatID)
	if sess == nil {
		b.reply(chatID, "Please /login first.")
	}
	return sess
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, _ = b.tg.Send(msg)
}

func (b *Bot) answerCallback(id, text string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, text))
	return err
}
