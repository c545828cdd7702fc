/*
Package regiongraph turns randomizer world logic into a graph of regions.

Every logic object of a world (waypoint, transition or location) carries a
requirement expression. regiongraph normalizes each requirement into
disjunctive normal form, then condenses the objects into Regions: waypoints
with the same requirement merge, transitions become directed edges between
regions, and locations attach to the region their requirement starts from.
The region holding the start condition is renamed Menu and regions that end
up with no locations and no edges are pruned.

# Sources

A run reads exactly one of:

  - a pre-built world document (Config.WorldDefinitionPath),
  - a saved logic-manager snapshot (Config.RandoContextPath),
  - raw definitions compiled live (Config.DefinitionsPath, or WithLoader).

# Usage

	world, err := regiongraph.Build(ctx, domain.RawDefinitions{
		Terms:       []domain.RawTerm{{Name: "Dash"}},
		Waypoints:   []domain.RawLogic{{Name: "Start", Logic: "true"}},
		Transitions: []domain.RawLogic{{Name: "Town", Logic: "Start && Dash"}},
		Locations:   []domain.RawLogic{{Name: "Shop", Logic: "Town"}},
	}, "")
	if err != nil {
		log.Fatal(err)
	}
	for _, t := range world.Transitions {
		fmt.Println(t.Name, t.Requirement)
	}

Use Run with a Config to select sources from files and write exports.
*/
package regiongraph
