// Package source provides the three ways of obtaining normalized logic
// objects: a pre-built world document, a saved logic-manager snapshot and
// live compilation of raw definitions.
//
// Every source returns objects ordered for the builder: waypoints, then
// transitions, then locations.
package source

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/regiongraph/pkg/domain"
)

func handlingRank(h domain.LogicHandling) int {
	switch h {
	case domain.HandlingDefault:
		return 0
	case domain.HandlingTransition:
		return 1
	default:
		return 2
	}
}

// orderByHandling sorts objects into builder phase order, keeping the
// relative order inside each phase.
func orderByHandling(objs []domain.LogicObjectDefinition) {
	sort.SliceStable(objs, func(i, j int) bool {
		return handlingRank(objs[i].Handling) < handlingRank(objs[j].Handling)
	})
}

// readDocument decodes a YAML or JSON file into a generic map.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrMissingData)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrMissingData)
	}
	return raw, nil
}
