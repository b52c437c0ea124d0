// Package protocol is the command vocabulary spoken between the controller
// and the receiver. Every packet is a 4-byte 0xFF prefix, one ASCII word and
// a NUL terminator. The radio strips the prefix on receive, so Decode works
// on the remaining content.
package protocol

import "launchlink-go/errcode"

type Message uint8

const (
	Unknown        Message = iota
	Heartbeat              // "cork", controller -> receiver
	ContinuityOK           // "stop", receiver -> controller
	ContinuityFail         // "stal", receiver -> controller
	Ignite                 // "IGNITE", controller -> receiver
	IgniteAck              // "done", receiver -> controller
	IgniteNack             // "cant", receiver -> controller
)

// MaxPayload is the largest content (word plus terminator) that fits in one
// radio packet after the prefix.
const MaxPayload = 251

// Prefix precedes the content of every frame on air.
var Prefix = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}

// ErrUnknownMessage is returned when asked to encode Unknown.
var ErrUnknownMessage error = errcode.UnknownMessage

var words = [...]string{
	Heartbeat:      "cork",
	ContinuityOK:   "stop",
	ContinuityFail: "stal",
	Ignite:         "IGNITE",
	IgniteAck:      "done",
	IgniteNack:     "cant",
}

func (m Message) String() string {
	if m == Unknown || int(m) >= len(words) {
		return "unknown"
	}
	return words[m]
}

// Decode classifies received content. The content ends at the first NUL or
// at the end of the slice; anything that is not an exact, case-sensitive
// match for a known word is Unknown.
func Decode(payload []byte) Message {
	for i, b := range payload {
		if b == 0 {
			payload = payload[:i]
			break
		}
	}
	for m := Heartbeat; int(m) < len(words); m++ {
		if string(payload) == words[m] {
			return m
		}
	}
	return Unknown
}

// AppendFrame appends the full on-air frame for m to dst.
func AppendFrame(dst []byte, m Message) ([]byte, error) {
	if m == Unknown || int(m) >= len(words) {
		return dst, ErrUnknownMessage
	}
	dst = append(dst, Prefix[:]...)
	dst = append(dst, words[m]...)
	return append(dst, 0), nil
}

type Dir uint8

const (
	ToReceiver Dir = iota + 1
	ToController
)

// Direction reports which node originates m. Unknown has no direction.
func Direction(m Message) Dir {
	switch m {
	case Heartbeat, Ignite:
		return ToReceiver
	case ContinuityOK, ContinuityFail, IgniteAck, IgniteNack:
		return ToController
	}
	return 0
}
