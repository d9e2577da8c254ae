package remotefs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRTCRoundTripWithinQuantizationError(t *testing.T) {
	// spec.md §8 scenario S6: writing 03:04:05.500000 and reading it
	// back lands within 4 microseconds of the original.
	board := newFakeBoard()
	fs := New(board)

	want := time.Date(2024, time.January, 2, 3, 4, 5, 500000*1000, time.UTC)
	require.NoError(t, fs.SetRTC(want))

	got, err := fs.ReadRTC()
	require.NoError(t, err)

	delta := got.Sub(want)
	if delta < 0 {
		delta = -delta
	}
	assert.LessOrEqual(t, delta, 4*time.Microsecond)
}

func TestRTCWeekdayEncodingIsISO(t *testing.T) {
	board := newFakeBoard()
	fs := New(board)

	// 2024-01-01 is a Monday.
	require.NoError(t, fs.SetRTC(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, board.rtcRaw[3])

	// 2024-01-07 is a Sunday; the board's weekday field is 1-7 with
	// Monday=1, so Sunday must encode as 7, not Go's 0.
	require.NoError(t, fs.SetRTC(time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 7, board.rtcRaw[3])
}
