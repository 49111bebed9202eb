package sync

import stdsync "sync"

// Checklist holds checkbox state for the session. Keys come from
// schedule.ItemKey. Resyncs do not clear it.
type Checklist struct {
	mu      stdsync.RWMutex
	checked map[string]bool
}

func NewChecklist() *Checklist {
	return &Checklist{checked: make(map[string]bool)}
}

// Toggle flips the state of key and returns the new value.
func (c *Checklist) Toggle(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.checked[key] {
		delete(c.checked, key)
		return false
	}
	c.checked[key] = true
	return true
}

func (c *Checklist) Checked(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checked[key]
}

// Count returns how many keys are checked.
func (c *Checklist) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.checked)
}
