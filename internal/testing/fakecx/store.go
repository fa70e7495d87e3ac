// Package fakecx is an in-memory stand-in for the Dialogflow CX API used by
// tests. It enforces display-name uniqueness per parent the way the real
// service does and simulates just enough of an agent to run test cases and
// sessions against what was provisioned.
package fakecx

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"cxkit/internal/provision"
)

// Message is a CX resource stored by the fake.
type Message interface {
	provision.Resource
	proto.Message
}

// Calls counts invocations per method.
type Calls struct {
	Create, List, Get, Delete int
}

// Store implements provision.Kind[T] in memory.
type Store[T Message] struct {
	mu         sync.Mutex
	collection string
	byParent   map[string][]T
	nextID     int
	calls      Calls

	// CreateErr, when set, is returned by Create instead of storing.
	CreateErr error
	// HideFromList makes List return nothing, simulating a listing that has
	// not caught up with a recent create.
	HideFromList bool
	// OnCreate runs on the stored copy before it is returned.
	OnCreate func(T)
}

// NewStore returns an empty store naming children "<parent>/<collection>/<n>".
func NewStore[T Message](collection string) *Store[T] {
	return &Store[T]{collection: collection, byParent: map[string][]T{}}
}

func (s *Store[T]) Create(ctx context.Context, parent string, resource T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Create++

	var zero T
	if s.CreateErr != nil {
		return zero, s.CreateErr
	}
	for _, existing := range s.byParent[parent] {
		if existing.GetDisplayName() == resource.GetDisplayName() {
			return zero, fmt.Errorf("%w: %s %q", provision.ErrAlreadyExists, s.collection, resource.GetDisplayName())
		}
	}

	s.nextID++
	stored := proto.Clone(resource).(T)
	setName(stored, fmt.Sprintf("%s/%s/%d", parent, s.collection, s.nextID))
	if s.OnCreate != nil {
		s.OnCreate(stored)
	}
	s.byParent[parent] = append(s.byParent[parent], stored)
	return proto.Clone(stored).(T), nil
}

func (s *Store[T]) List(ctx context.Context, parent string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.List++

	if s.HideFromList {
		return nil, nil
	}
	out := make([]T, 0, len(s.byParent[parent]))
	for _, item := range s.byParent[parent] {
		out = append(out, proto.Clone(item).(T))
	}
	return out, nil
}

func (s *Store[T]) Get(ctx context.Context, name string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Get++

	if item, ok := s.find(name); ok {
		return proto.Clone(item).(T), nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s", provision.ErrNotFound, name)
}

func (s *Store[T]) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Delete++

	for parent, items := range s.byParent {
		for i, item := range items {
			if item.GetName() == name {
				s.byParent[parent] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", provision.ErrNotFound, name)
}

// Calls returns the invocation counters.
func (s *Store[T]) Calls() Calls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Len returns the number of resources stored under parent.
func (s *Store[T]) Len(parent string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byParent[parent])
}

// Lookup returns the stored resource with the given name.
func (s *Store[T]) Lookup(name string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.find(name)
	if !ok {
		return item, false
	}
	return proto.Clone(item).(T), true
}

// All returns every resource under parent, in creation order.
func (s *Store[T]) All(parent string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.byParent[parent]))
	for _, item := range s.byParent[parent] {
		out = append(out, proto.Clone(item).(T))
	}
	return out
}

func (s *Store[T]) find(name string) (T, bool) {
	for _, items := range s.byParent {
		for _, item := range items {
			if item.GetName() == name {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}

func setName(m proto.Message, name string) {
	r := m.ProtoReflect()
	field := r.Descriptor().Fields().ByName("name")
	r.Set(field, protoreflect.ValueOfString(name))
}
