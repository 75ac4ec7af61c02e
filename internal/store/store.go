// Package store persists world snapshots, one document per world id.
package store

import "github.com/talgya/dreamloom/internal/world"

// Store is the world snapshot contract the core requires. Loading an unknown
// id returns ok=false, not an error; a Save must be visible to the very next
// Load performed under the same per-world guard.
type Store interface {
	Load(id string) (*world.World, bool, error)
	Save(w *world.World) error
	List() ([]string, error)
}
