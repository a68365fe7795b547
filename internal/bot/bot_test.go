package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/api"
	"innkeeper/internal/auth"
	"innkeeper/internal/store"
)

type fakeTelegram struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeTelegram) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "innkeeper_test_bot"}
}

// messageTexts flattens every sent MessageConfig's text.
func (f *fakeTelegram) messageTexts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeTelegram) lastMessage() *tgbotapi.MessageConfig {
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return &m
		}
	}
	return nil
}

func (f *fakeTelegram) callbackAnswers() []string {
	var out []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

type testEnv struct {
	bot      *Bot
	tg       *fakeTelegram
	sessions *auth.Store
	apiHits  *int64
	srv      *httptest.Server
}

func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	var hits int64
	counting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if handler != nil {
			handler.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(counting)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	db, err := store.Open(filepath.Join(t.TempDir(), "state.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions, err := auth.NewStore(context.Background(), db)
	require.NoError(t, err)

	client := api.NewClient(srv.URL, 2*time.Second)
	tg := &fakeTelegram{}
	b, err := NewWithTelegramClient(tg, client, sessions, db, &logger)
	require.NoError(t, err)

	return &testEnv{bot: b, tg: tg, sessions: sessions, apiHits: &hits, srv: srv}
}

func userMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: chatID},
		Chat: &tgbotapi.Chat{ID: chatID},
	}
}

func callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func (e *testEnv) handleText(chatID int64, text string) {
	ctx := e.bot.requestCtx(context.Background(), chatID)
	e.bot.handleMessage(ctx, userMessage(chatID, text))
}

func (e *testEnv) handleCallback(chatID int64, data string) {
	ctx := e.bot.requestCtx(context.Background(), chatID)
	e.bot.handleCallback(ctx, callback(chatID, data))
}

func loginSession(t *testing.T, e *testEnv, chatID int64, role auth.Role, hotelID *int64) {
	t.Helper()
	require.NoError(t, e.sessions.Put(context.Background(), chatID, &auth.Session{
		Token: "tok",
		User:  auth.User{ID: 1, Username: "u", Email: "u@example.com", Role: role, HotelID: hotelID},
	}))
}

// A button press whose action the remembered status forbids must answer
// with a refusal toast and never reach the API.
func TestStaleActionNeverReachesNetwork(t *testing.T) {
	e := newTestEnv(t, nil)
	loginSession(t, e, 1, auth.RoleGuest, nil)

	st := e.bot.state.get(1)
	st.remember([]api.Booking{{ID: 5, Status: "CHECKED_IN"}})

	e.handleCallback(1, "act:cancel:5")

	assert.EqualValues(t, 0, atomic.LoadInt64(e.apiHits))
	answers := e.tg.callbackAnswers()
	require.Len(t, answers, 1)
	assert.Contains(t, answers[0], "Cannot cancel")
}

func TestPayGateOnlyWalkInCreated(t *testing.T) {
	e := newTestEnv(t, nil)
	loginSession(t, e, 1, auth.RoleReceptionist, ptr(int64(2)))

	st := e.bot.state.get(1)
	st.remember([]api.Booking{
		{ID: 7, Status: "CREATED", BookingSource: "ONLINE"},
		{ID: 8, Status: "CONFIRMED", BookingSource: "WALK_IN"},
	})

	e.handleCallback(1, "act:pay:7")
	e.handleCallback(1, "act:pay:8")

	assert.EqualValues(t, 0, atomic.LoadInt64(e.apiHits))
	for _, a := range e.tg.callbackAnswers() {
		assert.Contains(t, a, "walk-in")
	}
}

func TestBookingActionsKeyboard(t *testing.T) {
	flatten := func(kb tgbotapi.InlineKeyboardMarkup) string {
		var sb strings.Builder
		for _, row := range kb.InlineKeyboard {
			for _, btn := range row {
				sb.WriteString(*btn.CallbackData)
				sb.WriteString(" ")
			}
		}
		return sb.String()
	}

	t.Run("GuestCreated", func(t *testing.T) {
		kb := bookingActions(&api.Booking{ID: 1, Status: "CREATED"}, false)
		flat := flatten(kb)
		assert.Contains(t, flat, "act:cancel:1")
		assert.Contains(t, flat, "act:bill:1")
		assert.NotContains(t, flat, "act:confirm:1")
		assert.NotContains(t, flat, "act:checkin:1")
		assert.NotContains(t, flat, "act:pay:1")
	})

	t.Run("StaffWalkInCreated", func(t *testing.T) {
		kb := bookingActions(&api.Booking{ID: 2, Status: "CREATED", BookingSource: "WALK_IN"}, true)
		flat := flatten(kb)
		assert.Contains(t, flat, "act:confirm:2")
		assert.Contains(t, flat, "act:pay:2")
		assert.NotContains(t, flat, "act:checkin:2")
	})

	t.Run("StaffConfirmed", func(t *testing.T) {
		kb := bookingActions(&api.Booking{ID: 3, Status: "CONFIRMED"}, true)
		flat := flatten(kb)
		assert.Contains(t, flat, "act:checkin:3")
		assert.Contains(t, flat, "act:cancel:3")
		assert.NotContains(t, flat, "act:confirm:3")
		assert.NotContains(t, flat, "act:checkout:3")
	})

	t.Run("StaffCheckedIn", func(t *testing.T) {
		kb := bookingActions(&api.Booking{ID: 4, Status: "CHECKED_IN"}, true)
		flat := flatten(kb)
		assert.Contains(t, flat, "act:checkout:4")
		assert.NotContains(t, flat, "act:cancel:4")
	})

	t.Run("Terminal", func(t *testing.T) {
		kb := bookingActions(&api.Booking{ID: 5, Status: "CANCELLED"}, true)
		assert.Empty(t, flatten(kb))
	})
}

func ptr[T any](v T) *T { return &v }

// The landing keyboard follows the role: a manager gets the manager
// menu, never the admin one.
func TestMenuFollowsRole(t *testing.T) {
	keyboardTexts := func(m *tgbotapi.MessageConfig) string {
		require.NotNil(t, m)
		kb, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		if !ok {
			return ""
		}
		var sb strings.Builder
		for _, row := range kb.Keyboard {
			for _, btn := range row {
				sb.WriteString(btn.Text)
				sb.WriteString(" ")
			}
		}
		return sb.String()
	}

	t.Run("LoggedOut", func(t *testing.T) {
		e := newTestEnv(t, nil)
		e.bot.sendMenu(1)
		texts := keyboardTexts(e.tg.lastMessage())
		assert.Contains(t, texts, "🔑 Log in")
		assert.NotContains(t, texts, "📊 Dashboard")
	})

	t.Run("Manager", func(t *testing.T) {
		e := newTestEnv(t, nil)
		loginSession(t, e, 1, auth.RoleManager, ptr(int64(2)))
		e.bot.sendMenu(1)
		texts := keyboardTexts(e.tg.lastMessage())
		assert.Contains(t, texts, "📊 Dashboard")
		assert.Contains(t, texts, "🛏 Rooms")
		assert.NotContains(t, texts, "👥 Users")
	})

	t.Run("Admin", func(t *testing.T) {
		e := newTestEnv(t, nil)
		loginSession(t, e, 1, auth.RoleAdmin, nil)
		e.bot.sendMenu(1)
		texts := keyboardTexts(e.tg.lastMessage())
		assert.Contains(t, texts, "👥 Users")
		assert.Contains(t, texts, "📈 Reports")
		assert.NotContains(t, texts, "🛎 Walk-in")
	})
}

func TestLoginFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)
		assert.Equal(t, "hunter22", req.Password)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": api.LoginResponse{
				Token: "tok-1", UserID: 7, Username: "alice",
				Email: "alice@example.com", Role: "GUEST",
			},
		})
	})
	e := newTestEnv(t, mux)

	e.handleText(1, "/login")
	e.handleText(1, "alice@example.com")
	e.handleText(1, "hunter22")

	sess := e.sessions.Get(1)
	require.NotNil(t, sess)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, auth.RoleGuest, sess.User.Role)

	texts := strings.Join(e.tg.messageTexts(), "\n")
	assert.Contains(t, texts, "Logged in as alice")
}

func TestLoginBadCredentialsKeepsNoSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"bad credentials"}`, http.StatusUnauthorized)
	})
	e := newTestEnv(t, mux)

	e.handleText(1, "/login")
	e.handleText(1, "alice@example.com")
	e.handleText(1, "wrong")

	assert.Nil(t, e.sessions.Get(1))
	texts := strings.Join(e.tg.messageTexts(), "\n")
	assert.Contains(t, texts, "bad credentials")
	// A failed login never tears anything down or re-prompts about
	// expiry.
	assert.NotContains(t, texts, "expired")
}

// A 401 from a protected endpoint clears the session and tells the chat
// to log in again.
func TestServerInvalidationTearsDownSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/bookings/my-bookings", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	})
	e := newTestEnv(t, mux)
	loginSession(t, e, 1, auth.RoleGuest, nil)

	e.handleText(1, "/my_bookings")

	assert.Nil(t, e.sessions.Get(1))
	texts := strings.Join(e.tg.messageTexts(), "\n")
	assert.Contains(t, texts, "session has expired")
}

func TestUnknownRoleRejectedAtLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(api.LoginResponse{Token: "t", UserID: 1, Role: "SUPERUSER"})
	})
	e := newTestEnv(t, mux)

	e.handleText(1, "/login")
	e.handleText(1, "a@b.c")
	e.handleText(1, "pw")

	assert.Nil(t, e.sessions.Get(1))
	texts := strings.Join(e.tg.messageTexts(), "\n")
	assert.Contains(t, texts, "unknown account role")
}

// Changing a date discards the availability-derived room list so a
// stale room can never be selected.
func TestDateChangeDiscardsRooms(t *testing.T) {
	e := newTestEnv(t, nil)
	st := e.bot.state.get(1)
	st.Stay = stayDraft{
		HotelID:  3,
		CheckIn:  "2026-03-10",
		CheckOut: "2026-03-12",
		Rooms:    []api.AvailableRoom{{RoomID: 11, RoomNumber: "101"}},
		RoomIdx:  0,
	}
	st.Step = stepStayCheckIn

	e.handleCallback(1, "cal:ci:2026-04-01")

	assert.Empty(t, st.Stay.Rooms)
	assert.Equal(t, -1, st.Stay.RoomIdx)
	assert.Equal(t, "2026-04-01", st.Stay.CheckIn)
	assert.Equal(t, stepStayCheckOut, st.Step)
}

func TestSameDayStayRejected(t *testing.T) {
	e := newTestEnv(t, nil)
	st := e.bot.state.get(1)
	st.Stay = stayDraft{HotelID: 3, CheckIn: "2026-03-10", RoomIdx: -1}
	st.Step = stepStayCheckOut

	e.handleCallback(1, "cal:co:2026-03-10")

	assert.EqualValues(t, 0, atomic.LoadInt64(e.apiHits), "no availability call for an empty stay")
	texts := strings.Join(e.tg.messageTexts(), "\n")
	assert.Contains(t, texts, "after check-in")
}

func TestStaffCommandRequiresRole(t *testing.T) {
	e := newTestEnv(t, nil)
	loginSession(t, e, 1, auth.RoleGuest, nil)

	e.handleText(1, "/walkin")

	assert.EqualValues(t, 0, atomic.LoadInt64(e.apiHits))
	texts := strings.Join(e.tg.messageTexts(), "\n")
	assert.Contains(t, texts, "hotel staff")
}

func TestCancelRequiresReason(t *testing.T) {
	var cancelBody api.CancelBookingRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/bookings/5/cancel", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cancelBody))
		_ = json.NewEncoder(w).Encode(api.Booking{ID: 5, Status: "CANCELLED", CancellationReason: cancelBody.Reason})
	})
	e := newTestEnv(t, mux)
	loginSession(t, e, 1, auth.RoleGuest, nil)

	st := e.bot.state.get(1)
	st.remember([]api.Booking{{ID: 5, Status: "CONFIRMED"}})

	e.handleCallback(1, "act:cancel:5")
	assert.EqualValues(t, 0, atomic.LoadInt64(e.apiHits), "cancel waits for a reason first")

	e.handleText(1, "plans changed")

	assert.Equal(t, "plans changed", cancelBody.Reason)
	assert.Equal(t, "CANCELLED", st.Bookings[5].Status)
}

func TestCalendarKeyboard(t *testing.T) {
	min := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	kb := calendarKeyboard("ci", 2026, time.March, min)

	var pickable, blocked int
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == nil {
				continue
			}
			data := *btn.CallbackData
			if strings.HasPrefix(data, "cal:ci:") {
				pickable++
				assert.GreaterOrEqual(t, strings.TrimPrefix(data, "cal:ci:"), "2026-03-10")
			}
			if data == "noop" && btn.Text == "·" {
				blocked++
			}
		}
	}
	// March has 31 days; 10th..31st remain pickable.
	assert.Equal(t, 22, pickable)
	assert.Equal(t, 9, blocked)
}

// A successful search saves the city as the chat's usual one; "." reuses
// it on the next search.
func TestSearchRemembersCity(t *testing.T) {
	var cities []string
	mux := http.NewServeMux()
	mux.HandleFunc("/hotels/search", func(w http.ResponseWriter, r *http.Request) {
		cities = append(cities, r.URL.Query().Get("city"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []api.Hotel{{ID: 1, Name: "Mar Azul", City: "Lisbon"}},
		})
	})
	e := newTestEnv(t, mux)

	e.handleText(1, "🔎 Search")
	assert.NotContains(t, strings.Join(e.tg.messageTexts(), "\n"), "Lisbon",
		"no default offered before the first search")

	e.handleText(1, "Lisbon")

	prefs, err := e.bot.db.GetPreferences(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", prefs.DefaultCity)

	e.handleText(1, "/search")
	assert.Contains(t, strings.Join(e.tg.messageTexts(), "\n"), `Send "." for Lisbon.`)

	e.handleText(1, ".")
	assert.Equal(t, []string{"Lisbon", "Lisbon"}, cities)
}

func TestSearchDotWithoutDefault(t *testing.T) {
	e := newTestEnv(t, nil)

	e.handleText(1, "/search")
	e.handleText(1, ".")

	assert.EqualValues(t, 0, atomic.LoadInt64(e.apiHits))
	assert.Contains(t, strings.Join(e.tg.messageTexts(), "\n"), "No usual city saved yet")
}

// A payment-method button from an outdated keyboard is refused against
// the remembered booking with zero network traffic.
func TestStalePayMethodNeverReachesNetwork(t *testing.T) {
	e := newTestEnv(t, nil)
	loginSession(t, e, 1, auth.RoleReceptionist, ptr(int64(2)))

	st := e.bot.state.get(1)
	st.remember([]api.Booking{{ID: 9, Status: "CONFIRMED", BookingSource: "WALK_IN"}})

	e.handleCallback(1, "paym:3:9:CASH")

	assert.EqualValues(t, 0, atomic.LoadInt64(e.apiHits))
	answers := e.tg.callbackAnswers()
	require.Len(t, answers, 1)
	assert.Contains(t, answers[0], "walk-in")
}

func TestPaymentMethodSettlesBill(t *testing.T) {
	var paid api.MarkBillPaidRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/bills/3/mark-paid", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&paid))
		_ = json.NewEncoder(w).Encode(api.Bill{ID: 3, BookingID: 9, Status: "PAID", TotalAmount: 200})
	})
	mux.HandleFunc("/bookings/9", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(api.Booking{ID: 9, Status: "CONFIRMED", BookingSource: "WALK_IN"})
	})
	e := newTestEnv(t, mux)
	loginSession(t, e, 1, auth.RoleReceptionist, ptr(int64(2)))

	st := e.bot.state.get(1)
	st.remember([]api.Booking{{ID: 9, Status: "CREATED", BookingSource: "WALK_IN"}})

	e.handleCallback(1, "paym:3:9:CASH")

	assert.Equal(t, "CASH", paid.PaymentMethod)
	assert.Equal(t, "CONFIRMED", st.Bookings[9].Status, "remembered copy refreshed from the server")
	assert.Contains(t, strings.Join(e.tg.messageTexts(), "\n"), "Paid")
}
