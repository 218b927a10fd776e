// Package mirror streams rendered frames to remote viewers over WebSocket.
//
// Every message is binary with a one-byte opcode prefix:
//
//	0  incremental patch (escape sequences)
//	1  full frame drawn onto a blank terminal
//	2  JSON {"rows":R,"cols":C} viewport size
//
// A new client always receives 2 then 1 before any 0.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Opcode byte

const (
	OpPatch Opcode = 0
	OpFull  Opcode = 1
	OpSize  Opcode = 2
)

func (o Opcode) String() string {
	switch o {
	case OpPatch:
		return "patch"
	case OpFull:
		return "full"
	case OpSize:
		return "size"
	}
	return fmt.Sprintf("opcode(%d)", byte(o))
}

// Size is the payload of OpSize.
type Size struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

var ErrEmptyMessage = errors.New("mirror: empty message")

// Encode frames payload with op.
func Encode(op Opcode, payload []byte) []byte {
	msg := make([]byte, 1+len(payload))
	msg[0] = byte(op)
	copy(msg[1:], payload)
	return msg
}

// EncodeSize frames a viewport size message.
func EncodeSize(s Size) []byte {
	b, _ := json.Marshal(s)
	return Encode(OpSize, b)
}

// Decode splits a message into opcode and payload.
func Decode(msg []byte) (Opcode, []byte, error) {
	if len(msg) == 0 {
		return 0, nil, ErrEmptyMessage
	}
	op := Opcode(msg[0])
	if op > OpSize {
		return op, nil, fmt.Errorf("mirror: unknown %s", op)
	}
	return op, msg[1:], nil
}

// DecodeSize parses an OpSize payload.
func DecodeSize(payload []byte) (Size, error) {
	var s Size
	err := json.Unmarshal(payload, &s)
	return s, err
}
