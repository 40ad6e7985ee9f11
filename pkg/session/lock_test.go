package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/handshake/pkg/adapters/memory"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/process"
)

func TestManager_LockLifecycle(t *testing.T) {
	store := memory.NewStore()
	mgr := NewManager(store, store, WithProcessOptions(process.WithConfig(domain.Config{Delay: time.Minute})))
	defer mgr.Close()
	ctx := context.Background()
	count := 500

	// 1. Start and tear down many processes
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("inv-%d", i)
		if _, err := mgr.Start(ctx, id, memory.NewNavigator()); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
		if err := mgr.Teardown(id); err != nil {
			t.Fatalf("teardown %s: %v", id, err)
		}
	}

	// 2. Count locks remaining in map
	mgr.mu.Lock()
	lockCount := len(mgr.locks)
	mgr.mu.Unlock()

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Teardown", lockCount)
	}
}
