package chat

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 20
	MinPageSize     = 1
	MaxPageSize     = 50
)

// Cursor is a keyset position in a conversation's history. A page requested
// with a cursor holds only messages strictly older than it. Seq breaks ties
// between messages sharing a timestamp; a zero Seq compares on time alone.
type Cursor struct {
	CreatedAt time.Time
	Seq       int64
}

const cursorSeqSep = "~"

// String encodes the cursor as "<RFC3339Nano>~<seq>".
func (c Cursor) String() string {
	ts := c.CreatedAt.UTC().Format(time.RFC3339Nano)
	if c.Seq == 0 {
		return ts
	}
	return ts + cursorSeqSep + strconv.FormatInt(c.Seq, 10)
}

// ParseCursor decodes a cursor produced by String. A bare timestamp is accepted.
func ParseCursor(s string) (Cursor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cursor{}, ErrInvalidCursor
	}
	tsPart, seqPart, hasSeq := strings.Cut(s, cursorSeqSep)
	ts, err := time.Parse(time.RFC3339Nano, tsPart)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	c := Cursor{CreatedAt: ts.UTC()}
	if hasSeq {
		seq, err := strconv.ParseInt(seqPart, 10, 64)
		if err != nil || seq <= 0 {
			return Cursor{}, ErrInvalidCursor
		}
		c.Seq = seq
	}
	return c, nil
}

// After reports whether m sorts strictly older than c, i.e. belongs to the page after c.
func (c Cursor) After(m Message) bool {
	if m.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	if c.Seq == 0 || !m.CreatedAt.Equal(c.CreatedAt) {
		return false
	}
	return m.Seq < c.Seq
}
