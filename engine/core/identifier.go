package core

import (
	"fmt"
	"sync"
)

// Identifiers hands out the smallest free slot id to an owner and lets the
// owner give it back. Released ids are reused before the table grows.
type Identifiers struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifiers(capacity int) *Identifiers {
	return &Identifiers{owners: make([]interface{}, 0, capacity)}
}

func (ids *Identifiers) Acquire(owner interface{}) uint32 {
	ids.mu.Lock()
	defer ids.mu.Unlock()

	for i, o := range ids.owners {
		// Existing free spot. Take it.
		if o == nil {
			ids.owners[i] = owner
			return uint32(i)
		}
	}

	ids.owners = append(ids.owners, owner)
	return uint32(len(ids.owners) - 1)
}

func (ids *Identifiers) Release(id uint32) error {
	ids.mu.Lock()
	defer ids.mu.Unlock()

	if int(id) >= len(ids.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d): %w", id, len(ids.owners), ErrIndexOutOfRange)
	}
	ids.owners[id] = nil
	return nil
}

// Len is the number of ids currently held by an owner.
func (ids *Identifiers) Len() int {
	ids.mu.Lock()
	defer ids.mu.Unlock()

	n := 0
	for _, o := range ids.owners {
		if o != nil {
			n++
		}
	}
	return n
}
