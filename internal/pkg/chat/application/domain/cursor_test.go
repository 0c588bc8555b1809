package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC), Seq: 42}
	s := c.String()
	assert.Equal(t, "2024-05-01T12:00:00.123456Z~42", s)

	parsed, err := ParseCursor(s)
	require.NoError(t, err)
	assert.True(t, parsed.CreatedAt.Equal(c.CreatedAt))
	assert.Equal(t, int64(42), parsed.Seq)
}

func TestParseCursor_BareTimestamp(t *testing.T) {
	c, err := ParseCursor("2024-05-01T13:00:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Seq)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), c.CreatedAt)
}

func TestParseCursor_Invalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2024-05-01T12:00:00Z~", "2024-05-01T12:00:00Z~-1", "2024-05-01T12:00:00Z~x"} {
		_, err := ParseCursor(s)
		assert.ErrorIs(t, err, ErrInvalidCursor, s)
	}
}

func TestCursorAfter(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := Cursor{CreatedAt: at, Seq: 10}

	assert.True(t, c.After(Message{CreatedAt: at.Add(-time.Second), Seq: 99}))
	assert.True(t, c.After(Message{CreatedAt: at, Seq: 9}))
	assert.False(t, c.After(Message{CreatedAt: at, Seq: 10}))
	assert.False(t, c.After(Message{CreatedAt: at, Seq: 11}))
	assert.False(t, c.After(Message{CreatedAt: at.Add(time.Second), Seq: 1}))

	timeOnly := Cursor{CreatedAt: at}
	assert.False(t, timeOnly.After(Message{CreatedAt: at, Seq: 1}))
}
