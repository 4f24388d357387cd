// Package wsproto implements the graphql-ws subscription wire protocol
// (https://github.com/enisdenjo/graphql-ws) over github.com/gorilla/websocket:
// frame encoding, the connection state machine, and per-subscription
// message dispatch consumed by package query's useSubscription.
package wsproto

import "encoding/json"

// Message types, verbatim wire names (client→server and server→client).
const (
	TypeConnectionInit string = "connection_init"
	TypeConnectionAck  string = "connection_ack"
	TypeSubscribe      string = "subscribe"
	TypeNext           string = "next"
	TypeError          string = "error"
	TypeComplete       string = "complete"
	TypePing           string = "ping"
	TypePong           string = "pong"
)

// Frame is the envelope every graphql-ws message shares: {id, type,
// payload}.
type Frame struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload is the payload of a "subscribe" frame.
type SubscribePayload struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// NextPayload is the payload of a "next" frame: a GraphQL execution
// result.
type NextPayload struct {
	Data   json.RawMessage   `json:"data,omitempty"`
	Errors []json.RawMessage `json:"errors,omitempty"`
}

func encodeFrame(frameType, id string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	return json.Marshal(Frame{ID: id, Type: frameType, Payload: raw})
}
