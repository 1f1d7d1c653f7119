package syncer

import (
	"sort"
	"time"
)

// Status is a snapshot of the syncer state for display.
type Status struct {
	Online      bool
	Policy      Policy
	LastSync    map[string]time.Time
	LastError   error
	LastErrorAt time.Time
	// Pending lists keys with a debounced push not yet fired.
	Pending []string
}

func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Online:      s.online,
		Policy:      s.policy,
		LastSync:    make(map[string]time.Time, len(s.lastSync)),
		LastError:   s.lastErr,
		LastErrorAt: s.lastErrAt,
	}
	for k, t := range s.lastSync {
		st.LastSync[k] = t
	}
	for k, d := range s.debouncers {
		if d.Pending() {
			st.Pending = append(st.Pending, k)
		}
	}
	sort.Strings(st.Pending)
	return st
}
