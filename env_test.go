// Env/Strategy tests cover the (type, name) -> root registry against
// all three built-in strategies: poly-in-memory (one heap per pair),
// single-in-memory, and single-in-file (a Stream-backed shared heap).
package triplestore

import "testing"

func TestEnvPolyInMemoryRegisterLookup(t *testing.T) {
	strategy := NewPolyInMemoryStrategy(EnvConfig{Capacity: 4096})
	env := NewEnv(strategy)

	if err := env.Register("index", "spo", 123); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, offset, err := env.Lookup("index", "spo")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if offset != 123 {
		t.Errorf("Lookup: got %d, want 123", offset)
	}
}

func TestEnvPolyInMemoryIsolatesHeapsPerPair(t *testing.T) {
	strategy := NewPolyInMemoryStrategy(EnvConfig{Capacity: 4096})
	env := NewEnv(strategy)

	_ = env.Register("index", "a", 1)
	_ = env.Register("index", "b", 2)

	heapA, _, err := env.Lookup("index", "a")
	if err != nil {
		t.Fatalf("Lookup a: %v", err)
	}
	heapB, _, err := env.Lookup("index", "b")
	if err != nil {
		t.Fatalf("Lookup b: %v", err)
	}
	if heapA == heapB {
		t.Errorf("poly strategy should give distinct pairs distinct heaps")
	}
}

func TestEnvSingleInMemorySharesHeap(t *testing.T) {
	strategy, err := NewSingleInMemoryStrategy(EnvConfig{Capacity: 4096})
	if err != nil {
		t.Fatalf("NewSingleInMemoryStrategy: %v", err)
	}
	env := NewEnv(strategy)

	_ = env.Register("index", "a", 1)
	_ = env.Register("index", "b", 2)

	heapA, _, _ := env.Lookup("index", "a")
	heapB, _, _ := env.Lookup("index", "b")
	if heapA != heapB {
		t.Errorf("single strategy should share one heap across all pairs")
	}
}

func TestEnvUpdateOverwritesRoot(t *testing.T) {
	strategy := NewPolyInMemoryStrategy(EnvConfig{Capacity: 4096})
	env := NewEnv(strategy)

	_ = env.Register("t", "n", 1)
	if err := env.Update("t", "n", 2); err != nil {
		t.Fatalf("Update: %v", err)
	}
	_, offset, err := env.Lookup("t", "n")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if offset != 2 {
		t.Errorf("Lookup after Update: got %d, want 2", offset)
	}
}

func TestEnvForgetRemovesRegistration(t *testing.T) {
	strategy := NewPolyInMemoryStrategy(EnvConfig{Capacity: 4096})
	env := NewEnv(strategy)

	_ = env.Register("t", "n", 1)
	if err := env.Forget("t", "n"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, _, err := env.Lookup("t", "n"); err != ErrRootNotFound {
		t.Errorf("Lookup after Forget: got %v, want ErrRootNotFound", err)
	}
}

func TestEnvSingleInFileSurvivesReopen(t *testing.T) {
	stream := NewMemStream(4096)
	strategy, err := NewSingleInFileStrategy(stream, true, EnvConfig{Capacity: 4096})
	if err != nil {
		t.Fatalf("NewSingleInFileStrategy: %v", err)
	}
	env := NewEnv(strategy)
	if err := env.Register("t", "n", 77); err != nil {
		t.Fatalf("Register: %v", err)
	}

	reopened, err := NewSingleInFileStrategy(stream, false, EnvConfig{})
	if err != nil {
		t.Fatalf("reopen NewSingleInFileStrategy: %v", err)
	}
	env2 := NewEnv(reopened)
	_, offset, err := env2.Lookup("t", "n")
	if err != nil {
		t.Fatalf("Lookup after reopen: %v", err)
	}
	if offset != 77 {
		t.Errorf("Lookup after reopen: got %d, want 77", offset)
	}
}
