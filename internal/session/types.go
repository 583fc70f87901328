package session

import (
	"time"

	"github.com/danielpatrickdp/diabetes-risk/go-calculator/internal/field"
	"github.com/google/uuid"
)

// #region snapshot
// Snapshot records the risk at one point of the session.
type Snapshot struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	RiskPercent float64      `json:"risk_percent"`
	Values      field.Record `json:"values"` // SI
}

// NewSnapshot stamps a snapshot with a fresh ID.
func NewSnapshot(at time.Time, riskPercent float64, si field.Record) Snapshot {
	return Snapshot{
		ID:          uuid.New().String(),
		Timestamp:   at.UTC(),
		RiskPercent: riskPercent,
		Values:      si,
	}
}

// #endregion snapshot

// #region history
// DefaultCapacity bounds the snapshot history.
const DefaultCapacity = 20

// History is a FIFO ring buffer of snapshots. When full, Append evicts the
// oldest entry before returning.
type History struct {
	buf   []Snapshot
	start int
	size  int
}

// NewHistory creates a history holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{buf: make([]Snapshot, capacity)}
}

// Capacity returns the maximum number of entries.
func (h *History) Capacity() int {
	return len(h.buf)
}

// Len returns the number of entries held.
func (h *History) Len() int {
	return h.size
}

// Append adds s, returning the evicted snapshot if the buffer was full.
func (h *History) Append(s Snapshot) (evicted *Snapshot) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = s
		h.size++
		return nil
	}
	old := h.buf[h.start]
	h.buf[h.start] = s
	h.start = (h.start + 1) % len(h.buf)
	return &old
}

// Items returns the snapshots oldest first. The slice is a copy.
func (h *History) Items() []Snapshot {
	out := make([]Snapshot, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Latest returns the newest snapshot, if any.
func (h *History) Latest() (Snapshot, bool) {
	if h.size == 0 {
		return Snapshot{}, false
	}
	return h.buf[(h.start+h.size-1)%len(h.buf)], true
}

// Clear drops every entry.
func (h *History) Clear() {
	for i := range h.buf {
		h.buf[i] = Snapshot{}
	}
	h.start = 0
	h.size = 0
}

// #endregion history
