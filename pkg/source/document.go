package source

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/regiongraph/internal/dnf"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/registry"
)

type documentObject struct {
	Name     string     `mapstructure:"name"`
	Clauses  [][]string `mapstructure:"clauses"`
	Handling string     `mapstructure:"handling"`
}

// worldDocument field names match case-insensitively, so both
// LogicObjects and logicObjects are accepted.
type worldDocument struct {
	LogicObjects *[]documentObject `mapstructure:"logicObjects"`
	StateTerms   []string          `mapstructure:"stateTerms"`
}

// DocumentSource reads a pre-built world-definition document:
//
//	LogicObjects:
//	  - Name: B
//	    Clauses: [["A", "X"]]
//	    Handling: Transition
//	StateTerms: [A]
//
// Clauses are cleaned like freshly normalized ones and ReferencesState is
// recomputed from StateTerms.
type DocumentSource struct {
	path string
	opts *options
}

// NewDocumentSource creates a source for the document at path.
func NewDocumentSource(path string, opts ...Option) *DocumentSource {
	return &DocumentSource{path: path, opts: newOptions(opts)}
}

// Name implements ports.WorldSource.
func (s *DocumentSource) Name() string { return "document" }

// Load implements ports.WorldSource.
func (s *DocumentSource) Load(ctx context.Context) ([]domain.LogicObjectDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := readDocument(s.path)
	if err != nil {
		return nil, err
	}
	var doc worldDocument
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid world document %s: %w", s.path, err)
	}
	if doc.LogicObjects == nil {
		return nil, fmt.Errorf("world document %s: LogicObjects: %w", s.path, domain.ErrMissingData)
	}

	reg := registry.NewRegistry()
	for _, name := range doc.StateTerms {
		if _, err := reg.Register(name, domain.TermState); err != nil {
			return nil, fmt.Errorf("world document %s: %w", s.path, err)
		}
	}
	norm := s.opts.normalizer(reg)

	objs := make([]domain.LogicObjectDefinition, 0, len(*doc.LogicObjects))
	for i, o := range *doc.LogicObjects {
		if o.Name == "" {
			return nil, fmt.Errorf("world document %s: object %d: name: %w", s.path, i, domain.ErrMissingData)
		}
		handling, err := domain.ParseLogicHandling(o.Handling)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.Name, err)
		}
		clauses, err := domain.ClausesFromKeys(o.Clauses)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.Name, err)
		}
		clauses, err = norm.Normalize(ctx, o.Name, dnf.Input{Precomputed: clauses})
		if err != nil {
			return nil, err
		}
		objs = append(objs, domain.LogicObjectDefinition{Name: o.Name, Clauses: clauses, Handling: handling})
	}

	orderByHandling(objs)
	s.opts.logger.Debug("world document loaded", "path", s.path, "objects", len(objs))
	return objs, nil
}
