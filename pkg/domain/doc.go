/*
Package domain contains the core domain models of the region graph compiler.

It defines the symbolic vocabulary of requirement logic (Terms and Operands),
the normalized form that logic takes once converted to disjunctive normal form
(StatefulClause lists), and the entities of the finalized world graph. This
package is kept pure and free of I/O, following Hexagonal Architecture
principles: loaders, caches and exporters live behind pkg/ports.

# Key Entities

  - Term: a named symbolic variable (bool, counter or state).
  - Operand / StatefulClause / Clauses: one literal, one conjunction, one DNF.
  - LogicObjectDefinition: a named, normalized requirement tagged with its LogicHandling.
  - Region, Transition, Location: nodes, edges and leaves of the world graph.
  - GraphWorldDefinition: the immutable snapshot handed to exporters.
*/
package domain
