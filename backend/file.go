package backend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

// FileClaimer is a slot table persisted to a JSON file, so occupancy
// survives registry restarts. Claims go through an embedded MemoryClaimer
// and the full table is rewritten after each successful claim; the write
// goes to a temp file first and is renamed into place.
type FileClaimer struct {
	mem  *MemoryClaimer
	path string
	log  *slog.Logger

	writeMu sync.Mutex
}

// NewFileClaimer loads the slot table from path, creating an empty one if
// the file does not exist yet.
func NewFileClaimer(path string, log *slog.Logger) (*FileClaimer, error) {
	if log == nil {
		log = slog.Default()
	}

	mem := NewMemoryClaimer()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fresh table.
	case err != nil:
		return nil, fmt.Errorf("failed to read slot file: %w", err)
	default:
		var slots map[interfaces.Identity]SlotRecord
		if err := json.Unmarshal(data, &slots); err != nil {
			return nil, fmt.Errorf("failed to parse slot file %s: %w", path, err)
		}
		mem.mu.Lock()
		mem.slots = slots
		mem.mu.Unlock()
		log.Info("loaded slot table", slog.String("path", path), slog.Int("slots", len(slots)))
	}

	return &FileClaimer{mem: mem, path: path, log: log}, nil
}

// Claim binds content to the derived location and persists the updated
// table. A persistence failure rolls the in-memory claim back so the call
// fails as a whole.
func (c *FileClaimer) Claim(creator interfaces.Identity, salt interfaces.Salt, content []byte) (interfaces.Identity, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	location, err := c.mem.Claim(creator, salt, content)
	if err != nil {
		return interfaces.Identity{}, err
	}

	if err := c.persist(); err != nil {
		c.mem.mu.Lock()
		delete(c.mem.slots, location)
		c.mem.mu.Unlock()
		return interfaces.Identity{}, fmt.Errorf("failed to persist slot table: %w", err)
	}

	return location, nil
}

// Occupied reports whether an artifact exists at the given location.
func (c *FileClaimer) Occupied(location interfaces.Identity) bool {
	return c.mem.Occupied(location)
}

// SlotAt returns the record bound to a location, if any.
func (c *FileClaimer) SlotAt(location interfaces.Identity) (SlotRecord, bool) {
	return c.mem.SlotAt(location)
}

// Len returns the number of occupied slots.
func (c *FileClaimer) Len() int {
	return c.mem.Len()
}

func (c *FileClaimer) persist() error {
	data, err := json.MarshalIndent(c.mem.snapshot(), "", "  ")
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
