// Package prompts holds the versioned system prompts for each reasoning
// mode. The registry is small on purpose: a handful of prompts, looked up by
// ID and version at run start.
package prompts

import (
	"fmt"
	"sync"
)

// PromptVersion identifies one revision of a prompt.
type PromptVersion string

const (
	PromptV1 PromptVersion = "1.0.0"
	PromptV2 PromptVersion = "2.0.0"
)

// Prompt is one versioned system prompt.
type Prompt struct {
	ID          string
	Version     PromptVersion
	Content     string
	Description string
	Deprecated  bool
}

// PromptRegistry holds the registered versions of each prompt.
type PromptRegistry struct {
	mu      sync.RWMutex
	entries map[string][]*Prompt
}

var defaultRegistry = NewPromptRegistry()

// DefaultRegistry returns the process-wide registry the mode prompts
// register into.
func DefaultRegistry() *PromptRegistry { return defaultRegistry }

// NewPromptRegistry creates an empty registry.
func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{entries: make(map[string][]*Prompt)}
}

// Register adds p, replacing any entry with the same ID and version.
func (r *PromptRegistry) Register(p *Prompt) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[p.ID]
	for i, existing := range list {
		if existing.Version == p.Version {
			list[i] = p
			return
		}
	}
	r.entries[p.ID] = append(list, p)
}

// Get returns the exact version of a prompt.
func (r *PromptRegistry) Get(id string, version PromptVersion) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.entries[id] {
		if p.Version == version {
			return p, nil
		}
	}
	return nil, fmt.Errorf("prompt %s@%s not registered", id, version)
}

// GetLatest returns the highest-versioned prompt for id. Deprecated versions
// are skipped unless nothing else is registered.
func (r *PromptRegistry) GetLatest(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entries[id]
	if len(list) == 0 {
		return nil, fmt.Errorf("prompt %s not registered", id)
	}
	if p := newest(list, false); p != nil {
		return p, nil
	}
	return newest(list, true), nil
}

// newest picks the highest version in list. Versions are dotted strings of
// equal width, so plain string comparison orders them.
func newest(list []*Prompt, includeDeprecated bool) *Prompt {
	var best *Prompt
	for _, p := range list {
		if p.Deprecated && !includeDeprecated {
			continue
		}
		if best == nil || p.Version > best.Version {
			best = p
		}
	}
	return best
}
