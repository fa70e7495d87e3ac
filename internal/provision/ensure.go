package provision

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists reports that a create call conflicted with an existing
	// resource. Kind implementations must return an error matching it with
	// errors.Is for Ensure to fall back to discovery.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrNotFound reports that the named resource does not exist.
	ErrNotFound = errors.New("resource not found")
)

// Resource is satisfied by every Dialogflow CX message this package manages.
type Resource interface {
	GetName() string
	GetDisplayName() string
}

// Kind is the narrow remote API for one resource kind. List only supports
// plain enumeration; the remote side offers no filter by display name.
type Kind[T Resource] interface {
	Create(ctx context.Context, parent string, resource T) (T, error)
	List(ctx context.Context, parent string) ([]T, error)
	Get(ctx context.Context, name string) (T, error)
	Delete(ctx context.Context, name string) error
}

// Status describes how Ensure resolved a resource.
type Status int

const (
	// NotFound means creation conflicted but no resource with the requested
	// display name showed up when listing the parent.
	NotFound Status = iota
	// Created means the resource was newly created by this call.
	Created
	// Found means the resource already existed and was fetched.
	Found
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Found:
		return "found"
	default:
		return "not found"
	}
}

// Outcome is the result of Ensure. Handle is only meaningful when Status is
// Created or Found.
type Outcome[T Resource] struct {
	Status Status
	Handle T
}

// Ok reports whether the outcome carries a handle.
func (o Outcome[T]) Ok() bool {
	return o.Status == Created || o.Status == Found
}

// Ensure creates want under parent, or returns the existing resource with the
// same display name when creation conflicts.
//
// On conflict the parent is listed and scanned linearly for the first entry
// whose display name matches; that entry is then fetched by name. A conflict
// with no matching entry yields a NotFound outcome and a nil error, leaving
// the decision to the caller. Errors other than ErrAlreadyExists are returned
// unchanged.
func Ensure[T Resource](ctx context.Context, kind Kind[T], parent string, want T) (Outcome[T], error) {
	created, err := kind.Create(ctx, parent, want)
	if err == nil {
		return Outcome[T]{Status: Created, Handle: created}, nil
	}
	if !errors.Is(err, ErrAlreadyExists) {
		return Outcome[T]{}, err
	}

	existing, err := kind.List(ctx, parent)
	if err != nil {
		return Outcome[T]{}, fmt.Errorf("listing %s: %w", parent, err)
	}
	for _, candidate := range existing {
		if candidate.GetDisplayName() != want.GetDisplayName() {
			continue
		}
		got, err := kind.Get(ctx, candidate.GetName())
		if err != nil {
			return Outcome[T]{}, fmt.Errorf("fetching %s: %w", candidate.GetName(), err)
		}
		return Outcome[T]{Status: Found, Handle: got}, nil
	}

	return Outcome[T]{Status: NotFound}, nil
}

// NotCreatedError is returned by delegator accessors when the handle was never
// resolved, either because Initialize was not called or because the conflict
// fallback found no match.
type NotCreatedError struct {
	Kind string
}

func (e *NotCreatedError) Error() string {
	return fmt.Sprintf("%s not yet created", e.Kind)
}

// Is matches any NotCreatedError regardless of kind.
func (e *NotCreatedError) Is(target error) bool {
	_, ok := target.(*NotCreatedError)
	return ok
}
