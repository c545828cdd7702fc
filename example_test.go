package regiongraph_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/regiongraph"
	"github.com/aretw0/regiongraph/pkg/domain"
)

// ExampleBuild compiles a three-object world in memory.
func ExampleBuild() {
	world, err := regiongraph.Build(context.Background(), domain.RawDefinitions{
		Terms:       []domain.RawTerm{{Name: "X"}, {Name: "Y"}},
		Waypoints:   []domain.RawLogic{{Name: "A", Logic: "true"}},
		Transitions: []domain.RawLogic{{Name: "B", Logic: "A && X"}},
		Locations:   []domain.RawLogic{{Name: "L", Logic: "B && Y"}},
	}, "")
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range world.Regions {
		fmt.Println("region", r.Name, r.Locations)
	}
	for _, t := range world.Transitions {
		fmt.Println("transition", t.Name, t.Requirement.Canonical())
	}
	// Output:
	// region Menu []
	// region B [L]
	// transition Menu->B [[X]]
}
