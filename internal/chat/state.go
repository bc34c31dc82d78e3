// Package chat holds the conversation state and the request dispatcher.
//
// State is a value. Every transition returns a new State and leaves the
// receiver untouched, so a view can keep exactly one copy and replace it.
package chat

import (
	"strings"

	apierrors "github.com/diogo/aichat/internal/errors"
	"github.com/diogo/aichat/internal/models"
)

// State is the conversation, the unsent input and the busy flag
type State struct {
	messages []models.Message
	input    string
	busy     bool
}

// NewState returns an empty conversation
func NewState() State {
	return State{}
}

// Messages returns the conversation in display order
func (s State) Messages() []models.Message {
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s State) Len() int {
	return len(s.messages)
}

// Input returns the unsent text
func (s State) Input() string {
	return s.input
}

// Busy reports whether a request is in flight
func (s State) Busy() bool {
	return s.busy
}

// CanSubmit reports whether Submit would accept the current input
func (s State) CanSubmit() bool {
	return !s.busy && strings.TrimSpace(s.input) != ""
}

// SetInput replaces the unsent text
func (s State) SetInput(v string) State {
	s.input = v
	return s
}

// Submit moves the input into the conversation as a user message, clears the
// input and marks the state busy. It returns the prompt to dispatch.
// Whitespace-only input yields ErrEmptyInput and a submission while busy
// yields ErrBusy; in both cases the returned state equals the receiver.
func (s State) Submit() (State, string, error) {
	if s.busy {
		return s, "", apierrors.ErrBusy
	}
	if strings.TrimSpace(s.input) == "" {
		return s, "", apierrors.ErrEmptyInput
	}

	prompt := s.input
	s.messages = appendMessage(s.messages, models.UserMessage(prompt))
	s.input = ""
	s.busy = true
	return s, prompt, nil
}

// Settle appends the assistant reply for the pending request and clears busy
func (s State) Settle(reply models.Message) State {
	s.messages = appendMessage(s.messages, reply)
	s.busy = false
	return s
}

// appendMessage never shares a backing array with an earlier State
func appendMessage(msgs []models.Message, m models.Message) []models.Message {
	out := make([]models.Message, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, m)
}
