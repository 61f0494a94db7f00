package eventlog

import "sync"

// Registry append only, deduplicated hash to text map
type Registry struct {
	mux   sync.RWMutex
	texts map[string]string
}

// NewRegistry empty registry
func NewRegistry() *Registry {
	return &Registry{
		texts: make(map[string]string),
	}
}

// RegisterIfNew insert text under hash if absent, true only on the first registration
func (r *Registry) RegisterIfNew(hash, text string) bool {
	r.mux.Lock()
	defer r.mux.Unlock()

	if _, ok := r.texts[hash]; ok {
		return false
	}

	r.texts[hash] = text
	return true
}

// Text lookup
func (r *Registry) Text(hash string) (string, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()

	text, ok := r.texts[hash]
	return text, ok
}

// Len number of distinct entries
func (r *Registry) Len() int {
	r.mux.RLock()
	defer r.mux.RUnlock()

	return len(r.texts)
}
