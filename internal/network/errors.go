package network

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIdentifier is returned when an id is already taken.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrReference is returned when a connection names a missing node or
	// loops back onto its source.
	ErrReference = errors.New("invalid reference")
	// ErrNotFound is returned when mutating an id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for empty or malformed input.
	ErrValidation = errors.New("validation failed")
)

// Entity names the collection an error refers to.
type Entity string

const (
	EntityNode       Entity = "node"
	EntityConnection Entity = "connection"
)

// Error is the typed error produced by every mutation. It matches its Kind
// with errors.Is.
type Error struct {
	Kind   error
	Entity Entity
	ID     string
	Field  string
	Msg    string
}

func (e *Error) Error() string {
	subject := string(e.Entity)
	if e.ID != "" {
		subject = fmt.Sprintf("%s %q", e.Entity, e.ID)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", subject, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", subject, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func duplicate(entity Entity, id string) error {
	return &Error{Kind: ErrDuplicateIdentifier, Entity: entity, ID: id, Msg: "id already exists"}
}

func notFound(entity Entity, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id, Msg: "does not exist"}
}

func invalid(entity Entity, id, field, msg string) error {
	return &Error{Kind: ErrValidation, Entity: entity, ID: id, Field: field, Msg: msg}
}

func reference(id, field, msg string) error {
	return &Error{Kind: ErrReference, Entity: EntityConnection, ID: id, Field: field, Msg: msg}
}
