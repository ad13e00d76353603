// Package wire is the runtime support imported by emitted schema code:
// borrowed text values, the backing-buffer binding that keeps views and
// their buffer together, and the JSON-RPC message envelope shared by the
// owned and view representations.
package wire

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Text is a borrowed text value. During decoding it captures the raw byte
// range of the JSON string token inside the decode buffer instead of
// allocating a copy; reading the value is zero-copy whenever the token
// contains no escape sequences.
//
// A Text is only valid while its decode buffer is; Document pairs the two
// so they cannot drift apart.
type Text struct {
	// raw is the string token including both quote bytes.
	raw []byte
}

// NewText builds an owned Text from a string. Used by code constructing
// messages rather than decoding them.
func NewText(s string) Text {
	raw, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string cannot fail.
		panic(err)
	}

	return Text{raw: raw}
}

// UnmarshalJSON captures the raw token. The codec hands UnmarshalJSON a
// sub-slice of the buffer being decoded, so no bytes are copied here.
func (t *Text) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("wire: expected string token, got %q", truncate(data))
	}

	t.raw = data

	return nil
}

// MarshalJSON writes the captured token back out unchanged, which keeps
// re-serialization byte-identical to the input.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.raw == nil {
		return []byte(`""`), nil
	}

	return t.raw, nil
}

// Bytes returns the decoded text as a byte slice. When the token has no
// escape sequences this is a sub-slice of the decode buffer; otherwise a
// decoded copy is allocated.
func (t Text) Bytes() []byte {
	if t.raw == nil {
		return nil
	}

	inner := t.raw[1 : len(t.raw)-1]
	if !bytes.ContainsRune(inner, '\\') {
		return inner
	}

	var s string
	if err := json.Unmarshal(t.raw, &s); err != nil {
		return nil
	}

	return []byte(s)
}

// String returns the decoded text.
func (t Text) String() string {
	return string(t.Bytes())
}

// IsZero returns true for a Text that never captured a token.
func (t Text) IsZero() bool {
	return t.raw == nil
}

// Equal reports content equality, independent of how either value is
// backed.
func (t Text) Equal(other Text) bool {
	return bytes.Equal(t.Bytes(), other.Bytes())
}

// EqualString reports content equality against an owned string.
func (t Text) EqualString(s string) bool {
	return string(t.Bytes()) == s
}

func truncate(data []byte) []byte {
	const max = 24
	if len(data) > max {
		return data[:max]
	}

	return data
}
