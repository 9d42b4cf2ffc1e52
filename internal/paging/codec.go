package paging

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Codec turns cursors into opaque tokens for one collection. Key names the
// collection and its sort key; tokens minted under another key are rejected.
type Codec struct {
	Key string
}

type token struct {
	Key     string `json:"k"`
	SortKey string `json:"t"`
	ID      string `json:"i"`
}

// Encode returns the token for c, or "" for a nil cursor.
func (c Codec) Encode(cur *Cursor) string {
	if cur == nil {
		return ""
	}
	raw, _ := json.Marshal(token{
		Key:     c.Key,
		SortKey: cur.SortKey.UTC().Format(time.RFC3339Nano),
		ID:      cur.ID,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a token. An empty string decodes to a nil cursor.
func (c Codec) Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64url", ErrInvalidCursor)
	}
	var t token
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: not a cursor", ErrInvalidCursor)
	}
	if t.Key != c.Key {
		return nil, fmt.Errorf("%w: issued for %q, expected %q", ErrInvalidCursor, t.Key, c.Key)
	}
	ts, err := time.Parse(time.RFC3339Nano, t.SortKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sort key", ErrInvalidCursor)
	}
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id", ErrInvalidCursor)
	}
	return &Cursor{ID: id.String(), SortKey: ts}, nil
}
