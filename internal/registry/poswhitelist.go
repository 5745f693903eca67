package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/hotpotspot/franchise-ledger/internal/adapter"
)

// POSWhitelist is the set of point-of-sale terminals allowed to submit
// purchases. It can be seeded from a JSON file and mutated at runtime.
type POSWhitelist struct {
	mu        sync.RWMutex
	fs        adapter.FileSystem
	terminals map[string]bool
}

// NewPOSWhitelist creates an empty whitelist.
func NewPOSWhitelist(fs adapter.FileSystem) *POSWhitelist {
	return &POSWhitelist{
		fs:        fs,
		terminals: make(map[string]bool),
	}
}

// Load replaces the whitelist with the terminal IDs in the JSON file at
// path. The file holds a flat array of strings.
func (w *POSWhitelist) Load(path string) error {
	data, err := w.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read whitelist file: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("parse whitelist file: %w", err)
	}

	terminals := make(map[string]bool, len(ids))
	for _, id := range ids {
		terminals[id] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.terminals = terminals
	return nil
}

// IsAuthorized reports whether the terminal may submit purchases.
func (w *POSWhitelist) IsAuthorized(posID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.terminals[posID]
}

// Add authorizes a terminal.
func (w *POSWhitelist) Add(posID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.terminals[posID] = true
}

// Remove revokes a terminal's authorization.
func (w *POSWhitelist) Remove(posID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.terminals, posID)
}

// Terminals returns the authorized terminal IDs in sorted order.
func (w *POSWhitelist) Terminals() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, 0, len(w.terminals))
	for id := range w.terminals {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
