package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownModel is returned when a model name is not registered
var ErrUnknownModel = errors.New("unknown model")

// UnresolvedRelationError reports a declared relation whose target model
// is not registered. It is a startup configuration error.
type UnresolvedRelationError struct {
	Model    string
	Relation string
	Target   string
}

func (e *UnresolvedRelationError) Error() string {
	return fmt.Sprintf("relation %s.%s references unknown model %s", e.Model, e.Relation, e.Target)
}

// Relationship is a declared relation resolved against the registry
type Relationship struct {
	Name     string
	Relation Relation
	Target   *Schema
}

// ToMany reports whether the relationship yields a collection
func (r Relationship) ToMany() bool {
	return r.Relation.Type.IsToMany()
}

// Registry holds every known entity type. It is filled at startup and
// read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds schemas to the registry. Relations are not resolved here
// so that types may be registered in any order; call Validate once all
// types are known.
func (r *Registry) Register(schemas ...*Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range schemas {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid schema %s: %w", s.Name, err)
		}
		if _, exists := r.schemas[s.Name]; exists {
			return fmt.Errorf("model %s already registered", s.Name)
		}
		r.schemas[s.Name] = s
	}
	return nil
}

// MustRegister is Register that panics on error
func (r *Registry) MustRegister(schemas ...*Schema) *Registry {
	if err := r.Register(schemas...); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return s, nil
}

// Names returns the registered model names in lexical order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the registered schemas keyed by model name
func (r *Registry) All() map[string]*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[string]*Schema, len(r.schemas))
	for name, s := range r.schemas {
		all[name] = s
	}
	return all
}

// Validate resolves every declared relation. A relation naming an
// unregistered model yields *UnresolvedRelationError.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.schemas) {
		s := r.schemas[name]
		for _, relName := range s.RelationNames() {
			rel := s.Relations[relName]
			target, ok := r.schemas[rel.Model]
			if !ok {
				return &UnresolvedRelationError{Model: s.Name, Relation: relName, Target: rel.Model}
			}
			if err := ValidateRelation(&rel, s, target); err != nil {
				return fmt.Errorf("invalid relation %s.%s: %w", s.Name, relName, err)
			}
		}
	}
	return nil
}

// RelationshipsOf returns the relationship fields of a model with their
// target types resolved. Scalar fields are not included. The returned
// map is freshly built and owned by the caller.
func (r *Registry) RelationshipsOf(model string) (map[string]Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}

	rels := make(map[string]Relationship, len(s.Relations))
	for name, rel := range s.Relations {
		target, ok := r.schemas[rel.Model]
		if !ok {
			return nil, &UnresolvedRelationError{Model: s.Name, Relation: name, Target: rel.Model}
		}
		rels[name] = Relationship{Name: name, Relation: rel, Target: target}
	}
	return rels, nil
}

func sortedKeys(m map[string]*Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
