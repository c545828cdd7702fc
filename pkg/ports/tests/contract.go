package tests

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/ports"
)

// RawDefinitionLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.RawDefinitionLoader.
// want holds the definitions the adapter was seeded with.
func RawDefinitionLoaderContractTest(t *testing.T, loader ports.RawDefinitionLoader, want domain.RawDefinitions) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadTerms", func(t *testing.T) {
		terms, err := loader.LoadTerms(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading terms: %v", err)
		}
		if len(terms) != len(want.Terms) {
			t.Fatalf("expected %d terms, got %d", len(want.Terms), len(terms))
		}
		for i, term := range want.Terms {
			if terms[i] != term {
				t.Errorf("term %d: got %+v, want %+v", i, terms[i], term)
			}
		}
	})

	t.Run("LoadMacros", func(t *testing.T) {
		macros, err := loader.LoadMacros(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading macros: %v", err)
		}
		if len(macros) != len(want.Macros) {
			t.Errorf("expected %d macros, got %d", len(want.Macros), len(macros))
		}
		for name, text := range want.Macros {
			if macros[name] != text {
				t.Errorf("macro %s: got %q, want %q", name, macros[name], text)
			}
		}
	})

	logicCases := []struct {
		name string
		load func(context.Context) ([]domain.RawLogic, error)
		want []domain.RawLogic
	}{
		{"LoadWaypoints", loader.LoadWaypoints, want.Waypoints},
		{"LoadTransitions", loader.LoadTransitions, want.Transitions},
		{"LoadLocations", loader.LoadLocations, want.Locations},
	}
	for _, tc := range logicCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.load(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d entries, got %d", len(tc.want), len(got))
			}
			// Order is adapter specific; compare by name.
			byName := make(map[string]domain.RawLogic, len(got))
			for _, l := range got {
				byName[l.Name] = l
			}
			for _, l := range tc.want {
				if byName[l.Name] != l {
					t.Errorf("%s: got %+v, want %+v", l.Name, byName[l.Name], l)
				}
			}
		})
	}

	t.Run("Canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := loader.LoadWaypoints(canceled); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// ClauseCacheContractTest verifies that an adapter complies with ports.ClauseCache.
func ClauseCacheContractTest(t *testing.T, cache ports.ClauseCache) {
	t.Helper()
	ctx := context.Background()
	key := "contract:" + time.Now().Format("20060102150405.000000")

	t.Run("Miss", func(t *testing.T) {
		_, err := cache.Get(ctx, key+":absent")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("Put and Get", func(t *testing.T) {
		stored := domain.Clauses{
			{Operands: []domain.Operand{domain.Ref("A"), domain.Compare("GEO", ">", 200)}, ReferencesState: true},
			{Operands: []domain.Operand{domain.Ref("B").Negate()}},
		}
		if err := cache.Put(ctx, key, stored); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := cache.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.Equal(stored) {
			t.Errorf("got %s, want %s", got, stored)
		}
		if !got[0].ReferencesState || got[1].ReferencesState {
			t.Errorf("state flags not preserved: %+v", got)
		}
		// Keys keep discovery order.
		if keys := got.Keys(); keys[0][0] != "A" || keys[0][1] != "GEO>200" {
			t.Errorf("operand order changed: %v", keys)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := cache.Put(ctx, key, domain.SentinelFalse()); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := cache.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.IsSentinel() {
			t.Errorf("expected sentinel after overwrite, got %s", got)
		}
	})

	t.Run("No Aliasing", func(t *testing.T) {
		src := domain.Clauses{{Operands: []domain.Operand{domain.Ref("X")}}}
		if err := cache.Put(ctx, key+":alias", src); err != nil {
			t.Fatalf("Put: %v", err)
		}
		src[0].Operands[0] = domain.Ref("Y")
		got, err := cache.Get(ctx, key+":alias")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got[0].Operands[0].Term != "X" {
			t.Errorf("cache aliased the stored clauses: %s", got)
		}
	})
}

// DistributedLockerContractTest verifies mutual exclusion and release.
func DistributedLockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("150405.000000")

	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	t.Run("Contended", func(t *testing.T) {
		short, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(short, key, time.Second); err == nil {
			t.Error("expected second Lock on a held key to fail")
		}
	})

	t.Run("Release", func(t *testing.T) {
		if err := unlock(ctx); err != nil {
			t.Fatalf("unlock: %v", err)
		}
		again, err := locker.Lock(ctx, key, time.Second)
		if err != nil {
			t.Fatalf("Lock after release: %v", err)
		}
		_ = again(ctx)
	})
}

// SortedNames returns the names of logic entries, sorted. Handy for adapters
// whose listing order is not significant.
func SortedNames(entries []domain.RawLogic) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}
