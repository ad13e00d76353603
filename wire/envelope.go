package wire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"viewgen/internal/common"
)

// Version is the JSON-RPC protocol version every envelope must carry.
const Version = "2.0"

// ErrVersion is returned when a decoded envelope carries any other
// version tag.
var ErrVersion = errors.New(`wire: jsonrpc version must be "2.0"`)

// ErrShape is returned when a decoded envelope matches none of the four
// message shapes.
var ErrShape = errors.New("wire: message matches no envelope shape")

// RequestID is a JSON-RPC request id: a string or a number. It is always
// owned - the raw token is copied on decode - because ids are tiny and
// routinely outlive the message buffer they arrived in.
type RequestID struct {
	raw []byte
}

// StringID builds a string-valued request id.
func StringID(s string) RequestID {
	raw, _ := json.Marshal(s)

	return RequestID{raw: raw}
}

// IntID builds a number-valued request id.
func IntID(n int64) RequestID {
	raw, _ := json.Marshal(n)

	return RequestID{raw: raw}
}

// UnmarshalJSON copies the raw id token.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || (data[0] != '"' && !isNumberStart(data[0])) {
		return fmt.Errorf("wire: request id must be a string or a number, got %q", truncate(data))
	}

	id.raw = append([]byte(nil), data...)

	return nil
}

// MarshalJSON writes the id token back out.
func (id RequestID) MarshalJSON() ([]byte, error) {
	if id.raw == nil {
		return []byte("null"), nil
	}

	return id.raw, nil
}

// IsZero returns true for an id that was never set.
func (id RequestID) IsZero() bool {
	return id.raw == nil
}

// String returns the id in its wire form.
func (id RequestID) String() string {
	return string(id.raw)
}

// Equal reports wire-form equality of two ids.
func (id RequestID) Equal(other RequestID) bool {
	return bytes.Equal(id.raw, other.raw)
}

func isNumberStart(b byte) bool {
	return b == '-' || (b >= '0' && b <= '9')
}

// MessageKind discriminates the four envelope shapes.
type MessageKind int

const (
	KindInvalid MessageKind = iota
	KindRequest
	KindNotification
	KindResponse
	KindError
)

// String returns a human-readable kind name.
func (k MessageKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	case KindError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// ErrorDetail is the owned JSON-RPC error object.
type ErrorDetail struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrorDetailView is the view twin of ErrorDetail.
type ErrorDetailView struct {
	Code    int64           `json:"code"`
	Message Text            `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ToOwned converts the view into an independently allocated ErrorDetail.
func (e ErrorDetailView) ToOwned() ErrorDetail {
	return ErrorDetail{
		Code:    e.Code,
		Message: e.Message.String(),
		Data:    append(json.RawMessage(nil), e.Data...),
	}
}

// Message is the protocol envelope: an untagged union of the four JSON-RPC
// shapes. Requests and notifications carry a method-tagged payload (RQ or
// N decode the method/params pair themselves); responses and errors are
// told apart structurally by which of the result and error keys is
// present. The same envelope serves both representations - the owned and
// view payload types are supplied as type arguments, and both describe
// bit-for-bit the same wire shape.
type Message[RQ, RS, N, E any] struct {
	Kind MessageKind
	// ID is set for requests, responses and errors.
	ID           RequestID
	Request      *RQ
	Notification *N
	Result       *RS
	Error        *E
}

// NewRequest builds a request envelope.
func NewRequest[RQ, RS, N, E any](id RequestID, rq RQ) Message[RQ, RS, N, E] {
	return Message[RQ, RS, N, E]{Kind: KindRequest, ID: id, Request: &rq}
}

// NewNotification builds a notification envelope.
func NewNotification[RQ, RS, N, E any](n N) Message[RQ, RS, N, E] {
	return Message[RQ, RS, N, E]{Kind: KindNotification, Notification: &n}
}

// NewResponse builds a response envelope.
func NewResponse[RQ, RS, N, E any](id RequestID, rs RS) Message[RQ, RS, N, E] {
	return Message[RQ, RS, N, E]{Kind: KindResponse, ID: id, Result: &rs}
}

// NewError builds an error envelope.
func NewError[RQ, RS, N, E any](id RequestID, e E) Message[RQ, RS, N, E] {
	return Message[RQ, RS, N, E]{Kind: KindError, ID: id, Error: &e}
}

// envelopeHeader probes the discriminating keys of an incoming message.
type envelopeHeader struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

// UnmarshalJSON decodes one envelope. The version tag is validated first;
// a mismatch is a validation error regardless of the rest of the message.
func (m *Message[RQ, RS, N, E]) UnmarshalJSON(data []byte) error {
	var h envelopeHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("wire: envelope: %w", err)
	}

	if h.Jsonrpc != Version {
		return ErrVersion
	}

	if len(h.ID) > 0 && !bytes.Equal(h.ID, []byte("null")) {
		if err := m.ID.UnmarshalJSON(h.ID); err != nil {
			return err
		}
	}

	switch {
	case h.Method != "" && !m.ID.IsZero():
		m.Kind = KindRequest
		m.Request = new(RQ)

		return json.Unmarshal(data, m.Request)
	case h.Method != "":
		m.Kind = KindNotification
		m.Notification = new(N)

		return json.Unmarshal(data, m.Notification)
	case len(h.Error) > 0 && !bytes.Equal(h.Error, []byte("null")):
		// Decode from the full buffer, not the probed copy, so views in
		// the payload reference the original backing buffer.
		m.Kind = KindError

		var w struct {
			Error *E `json:"error"`
		}

		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}

		m.Error = w.Error

		return nil
	case len(h.Result) > 0:
		m.Kind = KindResponse

		var w struct {
			Result *RS `json:"result"`
		}

		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}

		m.Result = w.Result

		return nil
	default:
		return ErrShape
	}
}

// MarshalJSON encodes the envelope in its wire shape.
func (m Message[RQ, RS, N, E]) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case KindRequest:
		return marshalFlattened(m.ID, m.Request, true)
	case KindNotification:
		return marshalFlattened(m.ID, m.Notification, false)
	case KindResponse:
		return marshalKeyed(m.ID, "result", m.Result)
	case KindError:
		return marshalKeyed(m.ID, "error", m.Error)
	default:
		return nil, ErrShape
	}
}

// marshalFlattened merges the payload object's keys into the envelope
// object, mirroring how requests and notifications inline method and
// params next to jsonrpc and id.
func marshalFlattened(id RequestID, payload any, withID bool) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("wire: payload must marshal to an object, got %q", truncate(body))
	}

	var buf bytes.Buffer

	buf.WriteString(`{"jsonrpc":"2.0"`)

	if withID {
		idRaw, err := id.MarshalJSON()
		if err != nil {
			return nil, err
		}

		buf.WriteString(`,"id":`)
		buf.Write(idRaw)
	}

	if !bytes.Equal(body, []byte("{}")) {
		buf.WriteByte(',')
		buf.Write(body[1 : len(body)-1])
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func marshalKeyed(id RequestID, key string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	idRaw, err := id.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	buf.WriteString(`{"jsonrpc":"2.0","id":`)
	buf.Write(idRaw)
	buf.WriteString(`,"` + key + `":`)
	buf.Write(body)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
