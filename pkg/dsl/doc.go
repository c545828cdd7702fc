/*
Package dsl provides a fluent Go builder for raw world definitions.

It is an alternative to definition files when a world is generated by code
or assembled in a test. The builder produces the same domain.RawDefinitions
a file loader would, or a ready memory loader.

Example usage:

	b := dsl.New()
	b.Term("Dash")
	b.Term("GEO").Kind(domain.TermCounter)
	b.Macro("CanReachShop", "Town && GEO > 200")

	b.Waypoint("Start").Requires("true")
	b.Transition("Town").Requires("Start && Dash")
	b.Location("Shop").Requires("CanReachShop")

	loader, err := b.Build()
	// ... pass loader to regiongraph.WithLoader(...)
*/
package dsl
