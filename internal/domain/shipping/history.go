package shipping

import (
	"sort"
	"time"
)

// History is the ordered list of shipping logs of one order. The upstream
// may hold more than one; the current log is derived, not stored.
type History []*ShippingLog

// NewHistory builds a history, dropping nil entries
func NewHistory(logs ...*ShippingLog) History {
	h := make(History, 0, len(logs))
	for _, l := range logs {
		if l != nil {
			h = append(h, l)
		}
	}
	return h
}

// lastTouched is UpdatedAt, or CreatedAt for logs never updated
func lastTouched(l *ShippingLog) time.Time {
	if l.UpdatedAt.IsZero() {
		return l.CreatedAt
	}
	return l.UpdatedAt
}

// Current returns the most recently updated log, or nil when empty.
// Ties go to the later entry.
func (h History) Current() *ShippingLog {
	var current *ShippingLog
	for _, l := range h {
		if current == nil || !lastTouched(l).Before(lastTouched(current)) {
			current = l
		}
	}
	return current
}

// Upsert returns a history with log replacing any entry with the same id,
// or appended when new
func (h History) Upsert(log *ShippingLog) History {
	if log == nil {
		return h
	}
	out := make(History, 0, len(h)+1)
	replaced := false
	for _, l := range h {
		if log.ID != "" && l.ID == log.ID {
			out = append(out, log)
			replaced = true
			continue
		}
		out = append(out, l)
	}
	if !replaced {
		out = append(out, log)
	}
	return out
}

// Remove returns a history without the log with the given id
func (h History) Remove(id string) History {
	out := make(History, 0, len(h))
	for _, l := range h {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

// Find returns the log with the given id
func (h History) Find(id string) (*ShippingLog, bool) {
	for _, l := range h {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// NewestFirst returns a copy sorted by last update, newest first, so that
// NewestFirst()[0] == Current()
func (h History) NewestFirst() History {
	out := make(History, len(h))
	for i, l := range h {
		out[len(h)-1-i] = l
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lastTouched(out[i]).After(lastTouched(out[j]))
	})
	return out
}
