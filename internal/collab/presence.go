package collab

import (
	"slices"
	"sync"
)

// PresenceManager tracks the cursor and selection of every user in a room.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update stores p for userID. A nil cursor keeps the previous one, so
// selection only updates do not hide the pointer.
func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if prev, ok := pm.presences[userID]; ok && p.Cursor == nil {
		p.Cursor = prev.Cursor
	}
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

// Deselect drops ids from every selection, after the objects are removed.
func (pm *PresenceManager) Deselect(ids ...string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, p := range pm.presences {
		p.Selection = slices.DeleteFunc(p.Selection, func(id string) bool {
			return slices.Contains(ids, id)
		})
	}
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		cp := *v
		cp.Selection = slices.Clone(v.Selection)
		result[k] = &cp
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
}
