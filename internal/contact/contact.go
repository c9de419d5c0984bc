// Package contact validates and records messages from the contact form.
package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// DefaultKey is the storage key of the submitted messages.
const DefaultKey = "contact-messages"

// Validation limits.
const (
	MinNameLength           = 2
	DefaultMinMessageLength = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is one contact form submission.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Field names used as Result keys.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// Result maps a field name to its validation message. Fields that passed are
// absent.
type Result map[string]string

// Valid reports whether every field passed.
func (r Result) Valid() bool { return len(r) == 0 }

// Validator checks forms against configurable limits.
type Validator struct {
	MinMessageLength int
}

// Validate checks f with the default limits.
func Validate(f Form) Result {
	return Validator{}.Validate(f)
}

// Validate checks each field independently and reports every failure.
func (v Validator) Validate(f Form) Result {
	minMessage := v.MinMessageLength
	if minMessage <= 0 {
		minMessage = DefaultMinMessageLength
	}

	res := Result{}
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		res[FieldName] = "Name is required."
	case utf8.RuneCountInString(name) < MinNameLength:
		res[FieldName] = fmt.Sprintf("Name must be at least %d characters.", MinNameLength)
	}

	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		res[FieldEmail] = "Email is required."
	case !emailPattern.MatchString(email):
		res[FieldEmail] = "Please enter a valid email address."
	}

	message := strings.TrimSpace(f.Message)
	switch {
	case message == "":
		res[FieldMessage] = "Message is required."
	case utf8.RuneCountInString(message) < minMessage:
		res[FieldMessage] = fmt.Sprintf("Message must be at least %d characters.", minMessage)
	}
	return res
}

// Message is a stored submission.
type Message struct {
	Form
	SubmittedAt time.Time `json:"submitted_at"`
}

// Submit validates f and, when valid, appends it to the message log in
// storage. Invalid forms return the Result and types.ErrInvalidForm without
// touching storage.
func (v Validator) Submit(storage types.Storage, f Form) (Result, error) {
	res := v.Validate(f)
	if !res.Valid() {
		return res, types.ErrInvalidForm
	}

	var messages []Message
	raw, err := storage.GetItem(DefaultKey)
	switch {
	case errors.Is(err, types.ErrNotFound):
	case err != nil:
		return res, fmt.Errorf("read messages: %w", err)
	default:
		if json.Unmarshal([]byte(raw), &messages) != nil {
			messages = nil
		}
	}

	messages = append(messages, Message{
		Form: Form{
			Name:    strings.TrimSpace(f.Name),
			Email:   strings.TrimSpace(f.Email),
			Message: strings.TrimSpace(f.Message),
		},
		SubmittedAt: time.Now().UTC(),
	})
	data, err := json.Marshal(messages)
	if err != nil {
		return res, fmt.Errorf("encode messages: %w", err)
	}
	if err := storage.SetItem(DefaultKey, string(data)); err != nil {
		return res, fmt.Errorf("save message: %w", err)
	}
	return res, nil
}

// Submit validates and records f with the default limits.
func Submit(storage types.Storage, f Form) (Result, error) {
	return Validator{}.Submit(storage, f)
}

// Messages returns the recorded submissions, oldest first.
func Messages(storage types.Storage) ([]Message, error) {
	raw, err := storage.GetItem(DefaultKey)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}
