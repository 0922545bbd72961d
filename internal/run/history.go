package run

import (
	"iter"
	"sort"

	"github.com/verte-zerg/tuisplit/internal/timing"
)

// HistoryEntry is the duration recorded for a segment in one attempt.
type HistoryEntry struct {
	Index int32
	Time  timing.Time
}

// SegmentHistory maps attempt indices to segment durations, ordered by index.
type SegmentHistory struct {
	entries []HistoryEntry
}

func (h *SegmentHistory) search(index int32) int {
	return sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Index >= index
	})
}

// Get returns the duration recorded for the attempt.
func (h *SegmentHistory) Get(index int32) (timing.Time, bool) {
	pos := h.search(index)
	if pos < len(h.entries) && h.entries[pos].Index == index {
		return h.entries[pos].Time, true
	}
	return timing.Time{}, false
}

// Insert stores the duration for the attempt, replacing any previous value.
func (h *SegmentHistory) Insert(index int32, t timing.Time) {
	pos := h.search(index)
	if pos < len(h.entries) && h.entries[pos].Index == index {
		h.entries[pos].Time = t
		return
	}
	h.entries = append(h.entries, HistoryEntry{})
	copy(h.entries[pos+1:], h.entries[pos:])
	h.entries[pos] = HistoryEntry{Index: index, Time: t}
}

// Remove deletes the entry for the attempt and reports whether it existed.
func (h *SegmentHistory) Remove(index int32) bool {
	pos := h.search(index)
	if pos >= len(h.entries) || h.entries[pos].Index != index {
		return false
	}
	h.entries = append(h.entries[:pos], h.entries[pos+1:]...)
	return true
}

// Len returns the number of entries.
func (h *SegmentHistory) Len() int {
	return len(h.entries)
}

// All iterates the entries in ascending attempt order.
func (h *SegmentHistory) All() iter.Seq2[int32, timing.Time] {
	return func(yield func(int32, timing.Time) bool) {
		for _, e := range h.entries {
			if !yield(e.Index, e.Time) {
				return
			}
		}
	}
}

// MaxIndex returns the largest attempt index, or 0 when empty.
func (h *SegmentHistory) MaxIndex() int32 {
	if len(h.entries) == 0 {
		return 0
	}
	return h.entries[len(h.entries)-1].Index
}

// Clone returns an independent copy.
func (h SegmentHistory) Clone() SegmentHistory {
	if h.entries == nil {
		return SegmentHistory{}
	}
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return SegmentHistory{entries: out}
}
