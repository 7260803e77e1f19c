package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClearNotConfirmed is returned when a clear edit arrives without
// the explicit confirmation flag.
var ErrClearNotConfirmed = errors.New("clearing a room list requires confirmation")

// EditOp is one of the supported manual edit operations on a room list.
type EditOp string

const (
	EditKeep    EditOp = "keep"
	EditAdd     EditOp = "add"
	EditRemove  EditOp = "remove"
	EditReplace EditOp = "replace"
	EditClear   EditOp = "clear"
)

// ListEdit is a single operator edit against one of the three lists.
// Rooms is a comma-separated list of room strings; manual input is
// trusted as-is, with no plausibility re-validation.
type ListEdit struct {
	Op      EditOp `json:"op"`
	Rooms   string `json:"rooms"`
	Confirm bool   `json:"confirm"`
}

// SplitRoomList parses operator input: comma-separated tokens, blanks
// dropped, surrounding whitespace trimmed.
func SplitRoomList(s string) []RoomToken {
	var rooms []RoomToken
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			rooms = append(rooms, RoomToken(part))
		}
	}
	return rooms
}

// ApplyEdit applies one edit to a room list and returns the updated
// list. Add and Replace re-sort; Remove preserves whatever survives.
func ApplyEdit(current []RoomToken, edit ListEdit) ([]RoomToken, error) {
	switch edit.Op {
	case EditKeep, "":
		return current, nil

	case EditAdd:
		added := SplitRoomList(edit.Rooms)
		if len(added) == 0 {
			return current, nil
		}
		return sortRooms(append(append([]RoomToken{}, current...), added...)), nil

	case EditRemove:
		drop := make(map[RoomToken]bool)
		for _, r := range SplitRoomList(edit.Rooms) {
			drop[r] = true
		}
		if len(drop) == 0 {
			return current, nil
		}
		kept := make([]RoomToken, 0, len(current))
		for _, r := range current {
			if !drop[r] {
				kept = append(kept, r)
			}
		}
		return kept, nil

	case EditReplace:
		replacement := SplitRoomList(edit.Rooms)
		if len(replacement) == 0 {
			return current, nil
		}
		return sortRooms(replacement), nil

	case EditClear:
		if !edit.Confirm {
			return current, ErrClearNotConfirmed
		}
		return []RoomToken{}, nil

	default:
		return current, fmt.Errorf("unknown edit op %q", edit.Op)
	}
}

// Override is a full manual-edit request: one optional edit per list
// plus optional manual totals for the report footer.
type Override struct {
	ARR    *ListEdit    `json:"arr,omitempty"`
	DEP    *ListEdit    `json:"dep,omitempty"`
	OD     *ListEdit    `json:"od,omitempty"`
	Totals ManualTotals `json:"totals"`
}

// Apply produces a new Result with the edits applied. The input result
// is not mutated.
func (o Override) Apply(in *Result) (*Result, error) {
	out := &Result{
		ScheduleDate: in.ScheduleDate,
		ARR:          append([]RoomToken{}, in.ARR...),
		DEP:          append([]RoomToken{}, in.DEP...),
		OD:           append([]RoomToken{}, in.OD...),
		Notes:        append([]string{}, in.Notes...),
		Totals:       in.Totals,
	}

	var err error
	if o.ARR != nil {
		if out.ARR, err = ApplyEdit(out.ARR, *o.ARR); err != nil {
			return nil, fmt.Errorf("editing ARR: %w", err)
		}
	}
	if o.DEP != nil {
		if out.DEP, err = ApplyEdit(out.DEP, *o.DEP); err != nil {
			return nil, fmt.Errorf("editing DEP: %w", err)
		}
	}
	if o.OD != nil {
		if out.OD, err = ApplyEdit(out.OD, *o.OD); err != nil {
			return nil, fmt.Errorf("editing OD: %w", err)
		}
	}

	if o.Totals.EA != nil {
		out.Totals.EA = o.Totals.EA
		out.Notes = append(out.Notes, fmt.Sprintf("Manual EA total: %d", *o.Totals.EA))
	}
	if o.Totals.DO != nil {
		out.Totals.DO = o.Totals.DO
		out.Notes = append(out.Notes, fmt.Sprintf("Manual DO total: %d", *o.Totals.DO))
	}
	if o.Totals.OD != nil {
		out.Totals.OD = o.Totals.OD
		out.Notes = append(out.Notes, fmt.Sprintf("Manual OD total: %d", *o.Totals.OD))
	}

	out.Notes = append(out.Notes, fmt.Sprintf(
		"Manual edit: ARR=%d, DEP=%d, OD=%d", len(out.ARR), len(out.DEP), len(out.OD)))
	return out, nil
}
