package game

import "sync"

// lockTable hands out exactly one mutex per world id. Registration uses
// LoadOrStore so two goroutines racing on an unseen id always end up with
// the same mutex. The mutex serializes every operation on its world,
// collaborator and store latency included; unrelated worlds never contend.
type lockTable struct {
	locks sync.Map // world id -> *sync.Mutex
}

func (t *lockTable) forWorld(id string) *sync.Mutex {
	if mu, ok := t.locks.Load(id); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := t.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
