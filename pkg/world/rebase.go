package world

import "github.com/aretw0/regiongraph/pkg/domain"

// LabelRegionAsMenu renames the start region to domain.MenuRegionName.
//
// The start region is the one whose entry requirement is exactly startTerm;
// failing that, the region known under the name startTerm. An empty
// startTerm selects the region whose entry is trivially true. A Menu
// placeholder created by sourceless clauses is merged into the start region
// so that every edge previously pointing at either ends up on Menu.
func (b *Builder) LabelRegionAsMenu(startTerm string) error {
	if b.phase == PhaseFinalized {
		return domain.ErrFinalized
	}
	if b.phase != PhaseLocations {
		return &PhaseError{Object: "rebase", Current: b.phase, Requested: PhaseLocations}
	}

	start, ok := b.findStart(startTerm)
	if !ok {
		return &domain.RebaseError{StartTerm: startTerm}
	}

	r := b.regions[start]
	if r.name == domain.MenuRegionName {
		return nil
	}
	if menu, exists := b.byName[domain.MenuRegionName]; exists {
		b.mergeInto(menu, start)
	}

	old := r.name
	delete(b.byName, old)
	aliases := r.aliases[:0]
	for _, a := range r.aliases {
		if a != domain.MenuRegionName {
			aliases = append(aliases, a)
		}
	}
	r.aliases = append(aliases, old)
	b.byAlias[old] = start
	r.name = domain.MenuRegionName
	r.placeholder = false
	b.byName[domain.MenuRegionName] = start
	delete(b.byAlias, domain.MenuRegionName)

	b.logger.Info("rebased start region", "region", old, "start_term", startTerm)
	return nil
}

func (b *Builder) findStart(startTerm string) (int, bool) {
	for id, r := range b.regions {
		if r.removed || r.placeholder || len(r.entry) != 1 {
			continue
		}
		ops := r.entry[0].Operands
		if startTerm == "" && len(ops) == 0 {
			return id, true
		}
		if startTerm != "" && len(ops) == 1 && ops[0].Key() == startTerm {
			return id, true
		}
	}
	if startTerm == "" {
		return 0, false
	}
	id, ok := b.lookup(startTerm)
	if ok && b.regions[id].placeholder {
		return 0, false
	}
	return id, ok
}
