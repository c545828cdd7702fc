/*
Package ports defines the driven ports (interfaces) of the region-graph pipeline.

These interfaces decouple the normalizer, the builder and the driver from
concrete storage, transport and rendering choices.

# Key Interfaces

  - RawDefinitionLoader: fetches terms, macros and requirement text of a live session (files, HCL, Loam, memory).
  - WorldSource: yields normalized logic objects, whichever input form they came from.
  - ClauseCache: remembers normalized clause lists between runs (memory, Redis).
  - StateClassifier: decides whether a requirement modifies game state.
  - Exporter: serializes a finalized graph.
  - DistributedLocker: serializes concurrent runs that write the same outputs.
*/
package ports
