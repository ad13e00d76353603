package wire

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// TagOf extracts the string discriminant stored under key in a tagged
// union object.
func TagOf(data []byte, key string) (string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("wire: tagged union: %w", err)
	}

	raw, ok := probe[key]
	if !ok {
		return "", fmt.Errorf("wire: tagged union is missing discriminant %q", key)
	}

	var tag string
	if err := json.Unmarshal(raw, &tag); err != nil {
		return "", fmt.Errorf("wire: discriminant %q must be a string: %w", key, err)
	}

	return tag, nil
}

// MarshalTagged encodes a tagged union variant: the discriminant under
// tagKey and the payload under contentKey. A payload marshaling to an
// empty object is elided entirely, matching how the protocol omits empty
// params.
func MarshalTagged(tagKey, tag, contentKey string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	buf.WriteByte('{')
	buf.WriteString(`"` + tagKey + `":`)

	tagRaw, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}

	buf.Write(tagRaw)

	if !bytes.Equal(body, []byte("{}")) && !bytes.Equal(body, []byte("null")) {
		buf.WriteString(`,"` + contentKey + `":`)
		buf.Write(body)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
