package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arrReportText = `Arrival Report        14-08-25
Room  Name               Nights
1011  TRAN/BINH          2
0211  NGUYEN/ANH         1
1011  TRAN/BINH          2
2025  not a room, a year
0504  LE/HOA             3`

func TestExtractSimpleRooms(t *testing.T) {
	t.Run("collects deduplicated rooms", func(t *testing.T) {
		rooms := ExtractSimpleRooms(SplitLines(arrReportText), ModeAnchored)

		assert.Equal(t, []RoomToken{"0211", "0504", "1011"}, rooms)
	})

	t.Run("empty text degrades to empty set", func(t *testing.T) {
		assert.Empty(t, ExtractSimpleRooms(nil, ModeAnchored))
		assert.Empty(t, ExtractSimpleRooms(SplitLines(""), ModeAnchoredWithFallback))
	})

	t.Run("header line with year contributes nothing", func(t *testing.T) {
		rooms := ExtractSimpleRooms(SplitLines("2024 occupancy overview"), ModeAnchoredWithFallback)
		assert.Empty(t, rooms)
	})

	t.Run("leading zero and bare form collapse to one room", func(t *testing.T) {
		rooms := ExtractSimpleRooms([]string{"0211 NGUYEN/ANH", "211 NGUYEN/ANH"}, ModeAnchoredWithFallback)
		assert.Len(t, rooms, 1)
	})
}

func TestExtractStayRecords(t *testing.T) {
	t.Run("pairs room with first two dates", func(t *testing.T) {
		records := ExtractStayRecords(
			[]string{"1234  SMITH/JOHN   15-08-25   16-08-25   18-08-25"},
			ModeAnchored, true)

		require.Len(t, records, 1)
		assert.Equal(t, StayRecord{Room: "1234", CheckIn: "15-08-25", CheckOut: "16-08-25"}, records[0])
	})

	t.Run("line without dates yields no record", func(t *testing.T) {
		records := ExtractStayRecords([]string{"1234  SMITH/JOHN"}, ModeAnchored, true)
		assert.Empty(t, records)
	})

	t.Run("strict mode drops single-date lines", func(t *testing.T) {
		records := ExtractStayRecords([]string{"1234  SMITH/JOHN  15-08-25"}, ModeAnchored, true)
		assert.Empty(t, records)
	})

	t.Run("ocr mode accepts degenerate single-date record", func(t *testing.T) {
		records := ExtractStayRecords([]string{"1234  SMITH/JOHN  15-08-25"}, ModeAnchoredWithFallback, false)

		require.Len(t, records, 1)
		assert.Equal(t, DateToken("15-08-25"), records[0].CheckIn)
		assert.Equal(t, DateToken("15-08-25"), records[0].CheckOut)
	})

	t.Run("identical records deduplicate by key", func(t *testing.T) {
		lines := []string{
			"1234  SMITH/JOHN  15-08-25  16-08-25",
			"1234  SMITH/JOHN  15-08-25  16-08-25",
		}
		records := ExtractStayRecords(lines, ModeAnchored, true)
		assert.Len(t, records, 1)
	})

	t.Run("conflicting records for one room both survive", func(t *testing.T) {
		lines := []string{
			"1234  SMITH/JOHN  15-08-25  16-08-25",
			"1234  SMITH/JOHN  15-08-25  20-08-25",
		}
		records := ExtractStayRecords(lines, ModeAnchored, true)
		assert.Len(t, records, 2)
	})
}
