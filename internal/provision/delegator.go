package provision

import (
	"context"
	"errors"
	"fmt"

	"cxkit/pkg/logging"
)

const subsystem = "Provision"

// delegator holds the state shared by every resource delegator: the remote
// API for its kind, the requested display name and the resolved handle.
type delegator[T Resource] struct {
	kind        Kind[T]
	label       string
	displayName string

	handle T
	set    bool
	status Status
}

func newDelegator[T Resource](kind Kind[T], label, displayName string) delegator[T] {
	return delegator[T]{kind: kind, label: label, displayName: displayName}
}

// DisplayName returns the display name the delegator provisions under.
func (d *delegator[T]) DisplayName() string {
	return d.displayName
}

// Status returns how the last Initialize resolved the resource.
func (d *delegator[T]) Status() Status {
	return d.status
}

// Name returns the remote resource name, or "" when unresolved.
func (d *delegator[T]) Name() string {
	if !d.set {
		return ""
	}
	return d.handle.GetName()
}

func (d *delegator[T]) ensure(ctx context.Context, parent string, want T) error {
	out, err := Ensure(ctx, d.kind, parent, want)
	if err != nil {
		return fmt.Errorf("provisioning %s %q: %w", d.label, d.displayName, err)
	}
	d.status = out.Status

	switch out.Status {
	case Created:
		logging.Info(subsystem, "Created %s %q (%s)", d.label, d.displayName, out.Handle.GetName())
	case Found:
		logging.Info(subsystem, "Using existing %s %q (%s)", d.label, d.displayName, out.Handle.GetName())
	default:
		// Any earlier handle is dropped; the next accessor call reports it.
		logging.Warn(subsystem, "%s %q conflicted on create but was not listed under %s", d.label, d.displayName, parent)
		d.release()
		return nil
	}

	d.handle = out.Handle
	d.set = true
	return nil
}

func (d *delegator[T]) resource() (T, error) {
	if !d.set {
		var zero T
		return zero, &NotCreatedError{Kind: d.label}
	}
	return d.handle, nil
}

// tearDown deletes the resource if this delegator created it. A resource
// adopted through the conflict fallback is released but left in place.
func (d *delegator[T]) tearDown(ctx context.Context) error {
	if !d.set {
		return nil
	}
	name := d.handle.GetName()
	if d.status != Created {
		logging.Info(subsystem, "Keeping %s %q (%s), it was not created by this run", d.label, d.displayName, name)
		d.release()
		return nil
	}
	if err := d.kind.Delete(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting %s %s: %w", d.label, name, err)
	}
	logging.Info(subsystem, "Deleted %s %q", d.label, d.displayName)
	d.release()
	return nil
}

func (d *delegator[T]) release() {
	var zero T
	d.handle = zero
	d.set = false
}
