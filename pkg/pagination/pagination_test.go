package pagination

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id string
	at time.Time
}

func rowKey(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, 8, LimitWithBuffer(7))
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 4, 10, 0, 0, 123, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: at, ID: "local_1700000000000"})
	decoded, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, decoded.CreatedAt.Equal(at))
	assert.Equal(t, "local_1700000000000", decoded.ID)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseCursor("not-base64!")
	assert.Error(t, err)
}

func TestSliceWalksAllPages(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var rows []row
	for i := 9; i >= 0; i-- {
		rows = append(rows, row{id: fmt.Sprintf("r%02d", i), at: base.Add(time.Duration(i) * time.Minute)})
	}

	var seen []string
	cursor := ""
	for pages := 0; pages < 10; pages++ {
		page, next, err := Slice(rows, Params{Limit: 4, Cursor: cursor}, rowKey)
		require.NoError(t, err)
		for _, r := range page {
			seen = append(seen, r.id)
		}
		if next == "" {
			break
		}
		cursor = next
	}
	require.Len(t, seen, 10)
	assert.Equal(t, "r09", seen[0])
	assert.Equal(t, "r00", seen[9])
}

func TestSliceTieBreaksOnID(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{{id: "c", at: at}, {id: "b", at: at}, {id: "a", at: at}}

	page, next, err := Slice(rows, Params{Limit: 1}, rowKey)
	require.NoError(t, err)
	require.Equal(t, "c", page[0].id)

	page, _, err = Slice(rows, Params{Limit: 5, Cursor: next}, rowKey)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].id)
}
