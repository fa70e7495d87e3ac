package sample

import (
	"context"
	"fmt"

	"cxkit/internal/provision"
)

type stage struct {
	name string
	run  func(context.Context) error
}

func runStages(ctx context.Context, stages []stage) error {
	for _, st := range stages {
		if err := st.run(ctx); err != nil {
			return fmt.Errorf("setting up %s: %w", st.name, err)
		}
	}
	return nil
}

func tearDownAll(ctx context.Context, steps ...func(context.Context) error) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Resource summarises one provisioned resource.
type Resource struct {
	Kind        string
	DisplayName string
	Status      string
	Name        string
}

type resolved interface {
	DisplayName() string
	Status() provision.Status
	Name() string
}

// Unresolved is the status of a resource Setup did not reach or could not
// find after a conflict.
const Unresolved = "unresolved"

func summarize(kind string, d resolved) Resource {
	r := Resource{Kind: kind, DisplayName: d.DisplayName(), Status: d.Status().String(), Name: d.Name()}
	if r.Name == "" {
		r.Status = Unresolved
	}
	return r
}
