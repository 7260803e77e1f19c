// Package classify turns the extracted text of the three front-office
// reports (arrivals, departures, guests-in-house) into a per-room
// classification for a single schedule date.
package classify

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrBadScheduleDate indicates the schedule date is not a real
// calendar date in DD-MM-YY form.
var ErrBadScheduleDate = errors.New("schedule date must be in DD-MM-YY format")

var scheduleDateRe = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}$`)

// RoomToken is a room number as it appears in a source line: exactly
// four ASCII digits, never a 4-digit calendar year.
type RoomToken string

// Normalize interprets the token as an integer room number, stripping a
// single leading zero ("0211" and "211" are the same room). The second
// return value is false when the token does not normalize into the
// plausible room range [100, 9999].
func (r RoomToken) Normalize() (int, bool) {
	s := string(r)
	if strings.HasPrefix(s, "0") {
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 100 || n > 9999 {
		return 0, false
	}
	return n, true
}

// DateToken is a calendar date in DD-MM-YY form. A "/" separator is
// accepted on input and normalized to "-". No calendar validation is
// performed beyond the shape.
type DateToken string

// StayRecord pairs a room with the check-in/check-out dates found on
// the same line of a guests-in-house report. A line with a single date
// yields a degenerate record with CheckIn == CheckOut.
type StayRecord struct {
	Room     RoomToken
	CheckIn  DateToken
	CheckOut DateToken
}

// Key is the identity used for deduplication. Two records with the same
// key are the same record regardless of which line produced them.
func (s StayRecord) Key() string {
	return fmt.Sprintf("%s_%s_%s", s.Room, s.CheckIn, s.CheckOut)
}

// ScheduleDate is the single date a classification run is generated
// for, in DD-MM-YY form.
type ScheduleDate string

// ParseScheduleDate validates the incoming date string. This is the
// only input that fails fast; everything else degrades to empty. The
// date must be a real calendar date, not just two-digit groups: a
// typo'd "31-02-25" would otherwise match nothing in any document and
// classify every guest as staying over.
func ParseScheduleDate(s string) (ScheduleDate, error) {
	s = strings.TrimSpace(s)
	if !scheduleDateRe.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrBadScheduleDate, s)
	}
	if _, err := time.Parse("02-01-06", s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadScheduleDate, s)
	}
	return ScheduleDate(s), nil
}

// ManualTotals carries operator-entered aggregate counts that take
// precedence over computed set sizes when the report is rendered.
// A nil field means "use the computed count".
type ManualTotals struct {
	EA *int `json:"manual_ea,omitempty"`
	DO *int `json:"manual_do,omitempty"`
	OD *int `json:"manual_od,omitempty"`
}

// Result is the final three-way partition for one schedule date. The
// lists are sorted ascending by normalized room number. ARR can receive
// rooms from both the arrivals document and the guests-in-house
// report; DEP comes only from the departures document and OD only from
// guests-in-house.
type Result struct {
	ScheduleDate ScheduleDate `json:"schedule_date"`
	ARR          []RoomToken  `json:"ARR"`
	DEP          []RoomToken  `json:"DEP"`
	OD           []RoomToken  `json:"OD"`

	// Notes are human-readable processing remarks (per-source counts,
	// degraded extractions). Display only.
	Notes []string `json:"processing_info"`

	Totals ManualTotals `json:"totals"`
}

// sortRooms deduplicates by normalized value and sorts ascending.
// Tokens that do not normalize (out-of-range after zero stripping) are
// kept, ordered after the numeric ones by string value.
func sortRooms(rooms []RoomToken) []RoomToken {
	byNorm := make(map[int]RoomToken)
	var odd []RoomToken
	seenOdd := make(map[RoomToken]bool)
	for _, r := range rooms {
		n, ok := r.Normalize()
		if !ok {
			if !seenOdd[r] {
				seenOdd[r] = true
				odd = append(odd, r)
			}
			continue
		}
		if _, dup := byNorm[n]; !dup {
			byNorm[n] = r
		}
	}
	norms := make([]int, 0, len(byNorm))
	for n := range byNorm {
		norms = append(norms, n)
	}
	sort.Ints(norms)
	out := make([]RoomToken, 0, len(norms)+len(odd))
	for _, n := range norms {
		out = append(out, byNorm[n])
	}
	sort.Slice(odd, func(i, j int) bool { return odd[i] < odd[j] })
	out = append(out, odd...)
	return out
}
