// Package backend provides host-environment implementations of the slot
// claimer: the atomic "claim this derived location or fail" primitive the
// gateway delegates to. The slot table is owned entirely by the backend;
// the gateway only observes success or failure of a claim.
package backend

import (
	"sync"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// SlotRecord describes an occupied slot.
type SlotRecord struct {
	Creator     interfaces.Identity    `json:"creator"`
	Salt        interfaces.Salt        `json:"salt"`
	ContentHash interfaces.ContentHash `json:"content_hash"`
}

// MemoryClaimer is an in-memory slot table. Claim recomputes the location
// derivation itself and decides occupancy under its own lock, so the
// check-then-act is indivisible with respect to concurrent claims.
type MemoryClaimer struct {
	mu    sync.Mutex
	slots map[interfaces.Identity]SlotRecord
}

// NewMemoryClaimer creates an empty in-memory slot table.
func NewMemoryClaimer() *MemoryClaimer {
	return &MemoryClaimer{slots: make(map[interfaces.Identity]SlotRecord)}
}

// Claim binds content to the derived location, or fails with
// ErrSlotOccupied if an artifact already lives there.
func (c *MemoryClaimer) Claim(creator interfaces.Identity, salt interfaces.Salt, content []byte) (interfaces.Identity, error) {
	contentHash := oracle.HashContent(content)
	location := oracle.DeriveLocation(creator, salt, contentHash)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, occupied := c.slots[location]; occupied {
		return interfaces.Identity{}, interfaces.ErrSlotOccupied
	}

	c.slots[location] = SlotRecord{Creator: creator, Salt: salt, ContentHash: contentHash}
	return location, nil
}

// Occupied reports whether an artifact exists at the given location.
func (c *MemoryClaimer) Occupied(location interfaces.Identity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, occupied := c.slots[location]
	return occupied
}

// SlotAt returns the record bound to a location, if any.
func (c *MemoryClaimer) SlotAt(location interfaces.Identity) (SlotRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, occupied := c.slots[location]
	return record, occupied
}

// Len returns the number of occupied slots.
func (c *MemoryClaimer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

func (c *MemoryClaimer) snapshot() map[interfaces.Identity]SlotRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[interfaces.Identity]SlotRecord, len(c.slots))
	for location, record := range c.slots {
		out[location] = record
	}
	return out
}
