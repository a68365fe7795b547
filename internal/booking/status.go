// Package booking holds the client-side view of the booking lifecycle:
// the status graph the server walks a booking through, the gating rules
// that decide which actions may be offered for a booking in a given
// status, and the derived price quote. Nothing here mutates a booking —
// every transition is requested from the server and the local copy is
// replaced from the response.
package booking

import (
	"fmt"
	"strings"
)

// Status is the booking lifecycle status as reported by the server.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus validates a raw status string from the server.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusCreated, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown booking status: %q", s)
	}
}

// Source distinguishes staff-created walk-in bookings from bookings made
// through the public search flow.
type Source string

const (
	SourcePublic Source = "PUBLIC"
	SourceWalkIn Source = "WALK_IN"
)

// ParseSource is lenient: an absent or unknown source means a public
// booking.
func ParseSource(s string) Source {
	if strings.EqualFold(s, string(SourceWalkIn)) {
		return SourceWalkIn
	}
	return SourcePublic
}

// transitions is the full lifecycle graph. Statuses move forward only;
// CHECKED_OUT and CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusCreated:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: nil,
	StatusCancelled:  nil,
}

// CanTransition reports whether the lifecycle graph has an edge from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from the status.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Gating rules: pure functions of status (and source) used to decide which
// action controls to offer. An action refused here must never reach the
// network.

func CanConfirm(s Status) bool {
	return s == StatusCreated
}

// CanCheckIn permits check-in from CONFIRMED only. A booking that was never
// confirmed has to be confirmed first.
func CanCheckIn(s Status) bool {
	return s == StatusConfirmed
}

func CanCheckOut(s Status) bool {
	return s == StatusCheckedIn
}

// CanCancel covers CREATED and CONFIRMED. A checked-in stay cannot be
// cancelled, only checked out.
func CanCancel(s Status) bool {
	return s == StatusCreated || s == StatusConfirmed
}

// CanPayBill is only offered for walk-in bookings awaiting confirmation;
// public bookings pay through the confirm flow.
func CanPayBill(s Status, src Source) bool {
	return s == StatusCreated && src == SourceWalkIn
}

func CanViewBill(s Status) bool {
	switch s {
	case StatusCreated, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}
