package index

import (
	"errors"
	"fmt"
)

// ErrUnknownIndexType is returned when a manifest declares an index type no
// registered variant handles. It indicates an unsupported manifest and is
// surfaced to the caller rather than recovered.
var ErrUnknownIndexType = errors.New("no such index type")

// Builder constructs a segment index over manifest metadata.
type Builder func(meta *ManifestIndex) SegmentIndex

// Resolver maps a manifest-declared index type tag to the concrete index
// variant. The variant set is fixed at construction and safe for
// concurrent reads afterwards.
type Resolver struct {
	builders map[string]Builder
}

// NewResolver builds a resolver for the enabled index types. With no
// arguments every known variant is registered; naming an unknown or
// duplicate type is a configuration error.
func NewResolver(enabled ...string) (*Resolver, error) {
	all := map[string]Builder{
		TypeTemplate: func(m *ManifestIndex) SegmentIndex { return NewTemplate(m) },
		TypeTimeline: func(m *ManifestIndex) SegmentIndex { return NewTimeline(m) },
		TypeBase:     func(m *ManifestIndex) SegmentIndex { return NewBase(m) },
		TypeList:     func(m *ManifestIndex) SegmentIndex { return NewList(m) },
	}
	if len(enabled) == 0 {
		return &Resolver{builders: all}, nil
	}

	builders := make(map[string]Builder, len(enabled))
	for _, tag := range enabled {
		b, known := all[tag]
		if !known {
			return nil, fmt.Errorf("cannot enable index type %q: %w", tag, ErrUnknownIndexType)
		}
		if _, exists := builders[tag]; exists {
			return nil, fmt.Errorf("index type %q enabled twice", tag)
		}
		builders[tag] = b
	}
	return &Resolver{builders: builders}, nil
}

// Resolve instantiates the index variant for the metadata's declared type.
func (r *Resolver) Resolve(meta *ManifestIndex) (SegmentIndex, error) {
	b, found := r.builders[meta.Type]
	if !found {
		return nil, fmt.Errorf("index type %q: %w", meta.Type, ErrUnknownIndexType)
	}
	return b(meta), nil
}
