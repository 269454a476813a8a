package query

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// Strategy is the pagination strategy of one request, chosen by
// whether a custom sort is active.
//
// Keyset (no custom sort): the cursor is the last-seen record seq and
// the query bounds on seq > cursor. Pages already returned never
// change under concurrent inserts or deletes.
//
// Offset (custom sort active): the cursor is the count of rows
// consumed so far. Because sort keys are computed from scattered
// per-field facts, a keyset over the composite key is not attempted.
// Rows inserted, deleted, or re-sorted between fetches can make pages
// skip or repeat rows; callers accept this drift.
type Strategy interface {
	isStrategy()
}

// Keyset bounds the next page by insertion order.
type Keyset struct {
	AfterSeq int64
}

// Offset bounds the next page by rows already consumed.
type Offset struct {
	Offset int
}

func (Keyset) isStrategy() {}
func (Offset) isStrategy() {}

const (
	modeKeyset = "seq"
	modeOffset = "off"
)

// cursorToken is the decoded form of the opaque continuation token.
type cursorToken struct {
	Mode string `json:"m"`
	Seq  int64  `json:"seq,omitempty"`
	Off  int    `json:"off,omitempty"`
}

// PlanPagination selects the strategy for a request and decodes the
// continuation token against it. A token minted under the other
// strategy is rejected rather than reinterpreted.
func PlanPagination(sortActive bool, cursor string) (Strategy, error) {
	if cursor == "" {
		if sortActive {
			return Offset{}, nil
		}
		return Keyset{}, nil
	}

	tok, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	if sortActive {
		if tok.Mode != modeOffset {
			return nil, fmt.Errorf("%w: token does not match sorted pagination", grid.ErrInvalidCursor)
		}
		return Offset{Offset: tok.Off}, nil
	}
	if tok.Mode != modeKeyset {
		return nil, fmt.Errorf("%w: token does not match insertion-order pagination", grid.ErrInvalidCursor)
	}
	return Keyset{AfterSeq: tok.Seq}, nil
}

// Next returns the continuation token after a page ending at lastSeq.
func (k Keyset) Next(lastSeq int64) string {
	return encodeCursor(cursorToken{Mode: modeKeyset, Seq: lastSeq})
}

// Next returns the continuation token after consuming pageLen rows.
func (o Offset) Next(pageLen int) string {
	return encodeCursor(cursorToken{Mode: modeOffset, Off: o.Offset + pageLen})
}

func encodeCursor(tok cursorToken) string {
	raw, _ := json.Marshal(tok)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (cursorToken, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return cursorToken{}, fmt.Errorf("%w: %v", grid.ErrInvalidCursor, err)
	}
	var tok cursorToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return cursorToken{}, fmt.Errorf("%w: %v", grid.ErrInvalidCursor, err)
	}
	return tok, nil
}

// Plan is a compiled page query: the lowered predicate, the lowered
// ordering, the clamped page size, and the pagination strategy. The
// store turns it into one bounded SELECT.
type Plan struct {
	Predicate     string
	PredicateArgs []any
	OrderBy       string
	OrderArgs     []any
	Limit         int
	Strategy      Strategy
}
