package classify

import (
	"regexp"
	"strings"
)

// ScanMode selects how aggressively the scanner hunts for room tokens.
type ScanMode int

const (
	// ModeAnchored accepts a room number only at the start of the line
	// (after surrounding whitespace is stripped). This is the reliable
	// path for text with an intact layout, where the room number is the
	// first column.
	ModeAnchored ScanMode = iota

	// ModeAnchoredWithFallback tries the anchored match first and, when
	// it fails, scans the whole line for boundary-delimited 4-digit
	// tokens. Needed for OCR output where leading noise breaks the
	// column alignment.
	ModeAnchoredWithFallback
)

var (
	anchoredRoomRe = regexp.MustCompile(`^\s*(\d{4})\b`)
	anyRoomRe      = regexp.MustCompile(`\b(\d{4})\b`)
	yearRe         = regexp.MustCompile(`^(19|20)\d{2}$`)
	dateRe         = regexp.MustCompile(`\b(\d{2})([-/])(\d{2})([-/])(\d{2})\b`)
)

// knownFalsePositives are 4-digit document reference numbers that show
// up in report footers and would otherwise pass the fallback scan.
var knownFalsePositives = map[string]bool{
	"0000": true,
	"1103": true, // GIH report form number (GIH01103)
}

// Report headers also carry a band of sequential reference numbers;
// nothing in the house has a room numbered there.
const (
	refNumberLow  = 2500
	refNumberHigh = 2600
)

func isReferenceNumber(tok string) bool {
	n, ok := RoomToken(tok).Normalize()
	return ok && n >= refNumberLow && n <= refNumberHigh
}

// ScanResult is everything the scanner found on a single line: at most
// one room token and the dates in left-to-right order.
type ScanResult struct {
	Room  RoomToken
	Dates []DateToken
}

// HasRoom reports whether the line yielded a room token.
func (r ScanResult) HasRoom() bool { return r.Room != "" }

// Scanner extracts room and date tokens from one line of report text.
type Scanner struct {
	mode ScanMode
}

// NewScanner creates a scanner with the given mode.
func NewScanner(mode ScanMode) *Scanner {
	return &Scanner{mode: mode}
}

// ScanLine inspects one line. Lines with no matches produce a zero
// ScanResult; that is not an error, the line is simply not a room row.
func (s *Scanner) ScanLine(line string) ScanResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ScanResult{}
	}

	return ScanResult{
		Room:  s.roomToken(line),
		Dates: scanDates(line),
	}
}

// roomToken applies the primary anchored rule and, in fallback mode,
// the whole-line scan. A token matching a calendar year is discarded in
// both paths, never emitted.
func (s *Scanner) roomToken(line string) RoomToken {
	if m := anchoredRoomRe.FindStringSubmatch(line); m != nil {
		if !yearRe.MatchString(m[1]) {
			return RoomToken(m[1])
		}
		// An anchored year is still a rejection, not a reason to scan
		// the rest of the line in anchored mode.
		if s.mode == ModeAnchored {
			return ""
		}
	}

	if s.mode != ModeAnchoredWithFallback {
		return ""
	}

	for _, m := range anyRoomRe.FindAllStringSubmatch(line, -1) {
		tok := m[1]
		if yearRe.MatchString(tok) || knownFalsePositives[tok] || isReferenceNumber(tok) {
			continue
		}
		return RoomToken(tok)
	}
	return ""
}

// scanDates collects every DD-MM-YY (or DD/MM/YY) match on the line in
// order, normalizing the separator to "-".
func scanDates(line string) []DateToken {
	ms := dateRe.FindAllStringSubmatch(line, -1)
	if len(ms) == 0 {
		return nil
	}
	dates := make([]DateToken, 0, len(ms))
	for _, m := range ms {
		dates = append(dates, DateToken(m[1]+"-"+m[3]+"-"+m[5]))
	}
	return dates
}
