// Package federation holds the error taxonomy shared by the federation
// engine's components.
package federation

import "errors"

var (
	// ErrMissingProperty marks an activity or object that lacks a property
	// the engine requires (id, actor, object, publicKeyPem, ...).
	ErrMissingProperty = errors.New("missing property")

	// ErrUnsupported marks an activity or object type the engine does not
	// handle. Inbound handlers treat it as a logged no-op, never as a
	// failure surfaced to the remote caller.
	ErrUnsupported = errors.New("unsupported")

	// ErrUnprocessablePropValue marks a property whose value could not be
	// interpreted (wrong JSON shape, unparseable IRI).
	ErrUnprocessablePropValue = errors.New("unprocessable property value")

	// ErrMissingKeys is returned when a caller asks for key material on an
	// actor that was never initialized. This is a caller bug: actors gain
	// keys at creation time, before any signed interaction.
	ErrMissingKeys = errors.New("actor has no key pair")
)
