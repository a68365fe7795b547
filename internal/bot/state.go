package bot

import (
	"sync"

	"innkeeper/internal/api"
)

type step string

const (
	stepNone step = "none"

	stepLoginEmail    step = "login_email"
	stepLoginPassword step = "login_password"

	stepRegisterName     step = "register_name"
	stepRegisterUsername step = "register_username"
	stepRegisterEmail    step = "register_email"
	stepRegisterPassword step = "register_password"

	stepSearchCity step = "search_city"

	stepStayCheckIn  step = "stay_check_in"
	stepStayCheckOut step = "stay_check_out"
	stepStayRoom     step = "stay_room"
	stepStayGuests   step = "stay_guests"
	stepStayConfirm  step = "stay_confirm"

	stepWalkInGuestName  step = "walkin_guest_name"
	stepWalkInGuestEmail step = "walkin_guest_email"
	stepWalkInGuestPhone step = "walkin_guest_phone"

	stepCancelReason step = "cancel_reason"

	stepPasswordCurrent step = "password_current"
	stepPasswordNew     step = "password_new"
)

// stayDraft accumulates a booking dialog (public or walk-in). Rooms holds
// the availability result for exactly the drafted range; it is thrown
// away whenever the range changes so a stale room list can never be
// offered.
type stayDraft struct {
	HotelID   int64
	HotelName string
	CheckIn   string // YYYY-MM-DD
	CheckOut  string
	Rooms     []api.AvailableRoom
	RoomIdx   int
	Guests    int

	WalkIn     bool
	GuestName  string
	GuestEmail string
	GuestPhone string
}

func (d *stayDraft) room() *api.AvailableRoom {
	if d.RoomIdx < 0 || d.RoomIdx >= len(d.Rooms) {
		return nil
	}
	return &d.Rooms[d.RoomIdx]
}

// discardRooms drops the availability result; called on any date change.
func (d *stayDraft) discardRooms() {
	d.Rooms = nil
	d.RoomIdx = -1
}

type loginDraft struct {
	Email string
}

type registerDraft struct {
	FullName string
	Username string
	Email    string
}

type passwordDraft struct {
	Current string
}

type chatState struct {
	Step     step
	Stay     stayDraft
	Login    loginDraft
	Register registerDraft
	Password passwordDraft

	// CancelBookingID is the booking awaiting a cancellation reason.
	CancelBookingID int64

	// Bookings is the last listed set for this chat, keyed by ID. Action
	// callbacks are gated against these statuses before any request is
	// issued.
	Bookings map[int64]api.Booking
}

func (st *chatState) remember(bookings []api.Booking) {
	if st.Bookings == nil {
		st.Bookings = make(map[int64]api.Booking)
	}
	for _, b := range bookings {
		st.Bookings[b.ID] = b
	}
}

type stateStore struct {
	mu sync.Mutex
	m  map[int64]*chatState
}

func newStateStore() *stateStore {
	return &stateStore{m: make(map[int64]*chatState)}
}

func (s *stateStore) get(chatID int64) *chatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[chatID]
	if st == nil {
		st = &chatState{Step: stepNone}
		s.m[chatID] = st
	}
	return st
}

// resetFlow clears any in-progress dialog but keeps the remembered
// bookings for gating.
func (s *stateStore) resetFlow(chatID int64) *chatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[chatID]
	if st == nil {
		st = &chatState{}
		s.m[chatID] = st
	}
	st.Step = stepNone
	st.Stay = stayDraft{RoomIdx: -1}
	st.Login = loginDraft{}
	st.Register = registerDraft{}
	st.Password = passwordDraft{}
	st.CancelBookingID = 0
	return st
}

func (s *stateStore) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
}
