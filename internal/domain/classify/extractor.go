package classify

import "strings"

// SplitLines turns a document's extracted text into scanner input.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// ExtractSimpleRooms collects every room token found in the document,
// one scan per line, deduplicated and sorted. Used for the arrivals and
// departures reports, where only room presence matters.
//
// Missing or empty text yields an empty set, never an error: a broken
// document must not abort processing of the other two.
func ExtractSimpleRooms(lines []string, mode ScanMode) []RoomToken {
	scanner := NewScanner(mode)
	var rooms []RoomToken
	for _, line := range lines {
		if res := scanner.ScanLine(line); res.HasRoom() {
			rooms = append(rooms, res.Room)
		}
	}
	return sortRooms(rooms)
}

// ExtractStayRecords collects (room, check-in, check-out) tuples from a
// guests-in-house report. A line contributes a record only when it
// yields a room AND at least one date. With a single date the record is
// degenerate (check-in == check-out); that shape only occurs on the OCR
// path, where the second date column is often unreadable. With two or
// more dates, the first is check-in, the second check-out, and the rest
// are ignored.
//
// requireTwoDates restores the strict text-layer behavior where a line
// must carry the full date pair to count.
func ExtractStayRecords(lines []string, mode ScanMode, requireTwoDates bool) []StayRecord {
	scanner := NewScanner(mode)
	seen := make(map[string]bool)
	var records []StayRecord
	for _, line := range lines {
		res := scanner.ScanLine(line)
		if !res.HasRoom() || len(res.Dates) == 0 {
			continue
		}
		if requireTwoDates && len(res.Dates) < 2 {
			continue
		}
		rec := StayRecord{Room: res.Room, CheckIn: res.Dates[0], CheckOut: res.Dates[0]}
		if len(res.Dates) >= 2 {
			rec.CheckOut = res.Dates[1]
		}
		if seen[rec.Key()] {
			continue
		}
		seen[rec.Key()] = true
		records = append(records, rec)
	}
	return records
}
