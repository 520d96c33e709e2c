package net

import (
	"errors"

	"InkBoard/internal/state"
)

// ErrClosed is returned when sending on a closed connection.
var ErrClosed = errors.New("connection closed")

// MessageType tags a wire message.
type MessageType string

const (
	// Subscribe asks for the stroke feed of BoardID.
	MsgSubscribe MessageType = "subscribe"
	// Snapshot carries the authoritative stroke list of a board.
	MsgSnapshot MessageType = "snapshot"
	MsgCreate   MessageType = "create"
	MsgDelete   MessageType = "delete"
	MsgError    MessageType = "error"
)

// Message is the JSON envelope exchanged between hub and clients.
type Message struct {
	Type    MessageType     `json:"type"`
	BoardID string          `json:"board_id,omitempty"`
	Stroke  *state.Stroke   `json:"stroke,omitempty"`
	IDs     []string        `json:"ids,omitempty"`
	Strokes []*state.Stroke `json:"strokes,omitempty"`
	Error   string          `json:"error,omitempty"`
}
