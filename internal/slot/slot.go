// Package slot encodes and decodes the addressable identity of a grid cell.
//
// The drag layer names drop targets with a flat token: "<aideID>-<day>-<time>"
// for a grid cell (e.g. "3-Monday-09:00"), or the literal "unassigned" for the
// unassigned task pool. Tokens are never persisted; they only exist to
// interpret gestures.
package slot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aideroster/aideroster/internal/roster"
)

// UnassignedToken names the unassigned pool drop target.
const UnassignedToken = "unassigned"

// ErrInvalidToken reports a malformed or stale slot token.
var ErrInvalidToken = errors.New("invalid slot token")

// Slot is the decoded identity of a drop target: either a concrete
// (aide, day, time) grid cell or the unassigned pool.
type Slot struct {
	AideID int64
	Day    string // weekday name, e.g. "Monday"
	Time   string // "HH:MM"

	pool bool
}

// Pool is the unassigned-pool sentinel.
var Pool = Slot{pool: true}

// Unassigned returns true if the slot is the unassigned pool.
func (s Slot) Unassigned() bool {
	return s.pool
}

// Equal reports whether two slots identify the same drop target.
func (s Slot) Equal(other Slot) bool {
	if s.pool || other.pool {
		return s.pool == other.pool
	}
	return s.AideID == other.AideID && s.Day == other.Day && s.Time == other.Time
}

// String returns the wire token for the slot.
func (s Slot) String() string {
	return Encode(s)
}

// Encode serializes a slot back to its token form.
func Encode(s Slot) string {
	if s.pool {
		return UnassignedToken
	}
	return fmt.Sprintf("%d-%s-%s", s.AideID, s.Day, s.Time)
}

// Decode parses a drop-target token.
//
// It returns ErrInvalidToken when the aide part is not numeric, the day or
// time part is empty, or the token does not have three parts. Weekday names
// and clock strings contain no '-', so a plain three-way split is exact.
func Decode(token string) (Slot, error) {
	if token == UnassignedToken {
		return Pool, nil
	}

	parts := strings.Split(token, "-")
	if len(parts) != 3 {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	aideID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: aide id %q is not numeric", ErrInvalidToken, parts[0])
	}
	if parts[1] == "" || parts[2] == "" {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	if err := roster.ValidateClock(parts[2]); err != nil {
		return Slot{}, fmt.Errorf("%w: time %q", ErrInvalidToken, parts[2])
	}

	return Slot{AideID: aideID, Day: parts[1], Time: parts[2]}, nil
}
