// Package usage normalizes and accumulates token accounting reported by
// generation backends.
package usage

import "sync"

// Usage holds the token counts for a single generation call. TotalTokens is
// whatever the backend reported; it is not recomputed from the other two.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// IsZero reports whether no tokens were recorded.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

// Add returns the field-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		TotalTokens:  u.TotalTokens + o.TotalTokens,
	}
}

// Raw is usage as a backend reports it, keyed by the backend's own field
// names. Two conventions exist in the wild: promptTokens/completionTokens and
// inputTokens/outputTokens. Both may carry totalTokens.
type Raw map[string]int

// Raw usage keys.
const (
	KeyPromptTokens     = "promptTokens"
	KeyCompletionTokens = "completionTokens"
	KeyInputTokens      = "inputTokens"
	KeyOutputTokens     = "outputTokens"
	KeyTotalTokens      = "totalTokens"
)

// Normalize folds either naming convention into a Usage. The
// prompt/completion names win when both are present. Missing fields are 0.
func Normalize(raw Raw) Usage {
	return Usage{
		InputTokens:  first(raw, KeyPromptTokens, KeyInputTokens),
		OutputTokens: first(raw, KeyCompletionTokens, KeyOutputTokens),
		TotalTokens:  raw[KeyTotalTokens],
	}
}

func first(raw Raw, keys ...string) int {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v
		}
	}

	return 0
}

// Tracker accumulates usage across multiple generation calls.
// It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	entries []Usage
}

// Add records a usage entry.
func (t *Tracker) Add(u Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, u)
}

// Last returns the most recent entry.
// The bool is false when the tracker has no entries.
func (t *Tracker) Last() (Usage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) == 0 {
		return Usage{}, false
	}

	return t.entries[len(t.entries)-1], true
}

// Total returns the aggregate usage across all entries.
func (t *Tracker) Total() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total Usage
	for _, e := range t.entries {
		total = total.Add(e)
	}

	return total
}

// Count returns the number of recorded entries.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Reset clears all recorded entries.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = nil
}
