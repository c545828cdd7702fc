package memory_test

import (
	"testing"

	"github.com/aretw0/regiongraph/pkg/adapters/memory"
	contract "github.com/aretw0/regiongraph/pkg/ports/tests"
)

func TestMemoryCache_Contract(t *testing.T) {
	contract.ClauseCacheContractTest(t, memory.NewCache())
}

func TestMemoryLocker_Contract(t *testing.T) {
	contract.DistributedLockerContractTest(t, memory.NewLocker())
}
