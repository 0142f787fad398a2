package engine

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Priority orders context items for eviction. Higher priorities are evicted
// last; items never evict peers of equal or higher priority.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return "unknown"
}

// ContextItem is a prioritized, token-costed unit of retained text.
type ContextItem struct {
	Content  string
	Priority Priority
	Tokens   int
	AddedAt  time.Time

	seq int64 // insertion order; stable tiebreak when timestamps collide
}

// ContextMemory holds prioritized content under a token ceiling, evicting
// lowest-priority, oldest content first when space runs out.
type ContextMemory struct {
	mu            sync.Mutex
	items         []ContextItem
	total         int
	maxTokens     int
	compressRatio float64
	nextSeq       int64
}

// DefaultCompressRatio is the fraction of the ceiling Compress shrinks to.
const DefaultCompressRatio = 0.7

// NewContextMemory creates an accumulator with the given token ceiling.
func NewContextMemory(maxTokens int) *ContextMemory {
	return &ContextMemory{
		maxTokens:     maxTokens,
		compressRatio: DefaultCompressRatio,
	}
}

// SetCompressRatio overrides the Compress target fraction. Values outside
// (0, 1] are ignored.
func (m *ContextMemory) SetCompressRatio(ratio float64) {
	if ratio <= 0 || ratio > 1 {
		return
	}
	m.mu.Lock()
	m.compressRatio = ratio
	m.mu.Unlock()
}

// AddItem attempts to retain content at the given priority. If the ceiling
// would be exceeded it evicts strictly-lower-priority items (lowest priority
// first, oldest first within a priority) until the new item fits. If even
// evicting every lower-priority item cannot make room, nothing is mutated
// and false is returned. Rejection is a normal outcome, not an error.
func (m *ContextMemory) AddItem(content string, priority Priority) bool {
	tokens := EstimateTokens(content)

	m.mu.Lock()
	defer m.mu.Unlock()

	if tokens > m.maxTokens {
		return false
	}

	if m.total+tokens <= m.maxTokens {
		m.append(content, priority, tokens)
		return true
	}

	// Plan the eviction before touching anything: all-or-nothing.
	candidates := make([]int, 0, len(m.items))
	for i, it := range m.items {
		if it.Priority < priority {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		ia, ib := m.items[candidates[a]], m.items[candidates[b]]
		if ia.Priority != ib.Priority {
			return ia.Priority < ib.Priority
		}
		return ia.seq < ib.seq
	})

	needed := m.total + tokens - m.maxTokens
	freed := 0
	evict := make(map[int]bool)
	for _, idx := range candidates {
		if freed >= needed {
			break
		}
		freed += m.items[idx].Tokens
		evict[idx] = true
	}
	if freed < needed {
		return false
	}

	kept := m.items[:0]
	for i, it := range m.items {
		if evict[i] {
			m.total -= it.Tokens
			continue
		}
		kept = append(kept, it)
	}
	m.items = kept
	m.append(content, priority, tokens)
	return true
}

// append assumes m.mu is held and the item fits.
func (m *ContextMemory) append(content string, priority Priority, tokens int) {
	m.items = append(m.items, ContextItem{
		Content:  content,
		Priority: priority,
		Tokens:   tokens,
		AddedAt:  time.Now(),
		seq:      m.nextSeq,
	})
	m.nextSeq++
	m.total += tokens
}

// Compress proactively shrinks retained content: items are ranked by
// (priority desc, recency desc) and only a prefix fitting within
// compressRatio × ceiling survives. Meant to run between tasks, not inline
// during a single add.
func (m *ContextMemory) Compress() {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := int(float64(m.maxTokens) * m.compressRatio)

	ranked := make([]ContextItem, len(m.items))
	copy(ranked, m.items)
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Priority != ranked[b].Priority {
			return ranked[a].Priority > ranked[b].Priority
		}
		return ranked[a].seq > ranked[b].seq
	})

	kept := ranked[:0]
	total := 0
	for _, it := range ranked {
		if total+it.Tokens > target {
			break
		}
		kept = append(kept, it)
		total += it.Tokens
	}

	// Restore insertion order so Context() output is unaffected by ranking.
	sort.SliceStable(kept, func(a, b int) bool { return kept[a].seq < kept[b].seq })
	m.items = append([]ContextItem(nil), kept...)
	m.total = total
}

// Context renders retained items in stored (insertion) order, joined by
// blank lines. No re-sorting happens at read time.
func (m *ContextMemory) Context() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := make([]string, len(m.items))
	for i, it := range m.items {
		parts[i] = it.Content
	}
	return strings.Join(parts, "\n\n")
}

// Clear drops every retained item.
func (m *ContextMemory) Clear() {
	m.mu.Lock()
	m.items = nil
	m.total = 0
	m.mu.Unlock()
}

// TotalTokens returns the tracked token total.
func (m *ContextMemory) TotalTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// MaxTokens returns the configured ceiling.
func (m *ContextMemory) MaxTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxTokens
}

// Len returns the number of retained items.
func (m *ContextMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
