package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Event is a single complete event read back from a trace document.
// Timestamps and durations are microseconds.
type Event struct {
	Cat  string `json:"cat"`
	Dur  int64  `json:"dur"`
	Name string `json:"name"`
	Ph   string `json:"ph"`
	Pid  int    `json:"pid"`
	Tid  uint32 `json:"tid"`
	Ts   int64  `json:"ts"`
}

// Start returns the event start timestamp in microseconds.
func (e Event) Start() int64 {
	return e.Ts
}

// End returns the event end timestamp in microseconds.
func (e Event) End() int64 {
	return e.Ts + e.Dur
}

// Document is a parsed trace file.
type Document struct {
	OtherData   map[string]interface{} `json:"otherData"`
	TraceEvents []Event                `json:"traceEvents"`
}

// Parse decodes a trace document from JSON bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse trace document: %w", err)
	}
	return &doc, nil
}

// Load reads and parses a trace file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}
	return Parse(data)
}

// IsTerminated reports whether the raw document carries its closing
// footer. A recording session that never ended leaves it off.
func IsTerminated(data []byte) bool {
	trimmed := bytes.TrimRight(data, " \t\r\n")
	return bytes.HasSuffix(trimmed, []byte("]}"))
}

// SortByStart orders events by start time. Ties are broken by longer
// duration first so enclosing scopes precede the scopes they contain,
// then by name for determinism.
func (d *Document) SortByStart() {
	sort.Slice(d.TraceEvents, func(i, j int) bool {
		a, b := d.TraceEvents[i], d.TraceEvents[j]
		if a.Ts != b.Ts {
			return a.Ts < b.Ts
		}
		if a.Dur != b.Dur {
			return a.Dur > b.Dur
		}
		return a.Name < b.Name
	})
}

// NameStat aggregates events sharing a name.
type NameStat struct {
	Name  string
	Count int
	Total int64
	Min   int64
	Max   int64
}

// Avg returns the mean duration in microseconds.
func (s NameStat) Avg() int64 {
	if s.Count == 0 {
		return 0
	}
	return s.Total / int64(s.Count)
}

// ThreadStat aggregates events sharing a thread row.
type ThreadStat struct {
	Tid   uint32
	Count int
	Busy  int64
	First int64
	Last  int64
}

// Summary describes a trace document.
type Summary struct {
	Events   int
	Threads  int
	Start    int64
	End      int64
	ByName   []NameStat
	ByThread []ThreadStat
}

// Span returns the wall time covered by the trace in microseconds.
func (s Summary) Span() int64 {
	if s.Events == 0 {
		return 0
	}
	return s.End - s.Start
}

// Summarize aggregates the document per event name and per thread.
// ByName is sorted by total time descending, ByThread by busy time
// descending.
func (d *Document) Summarize() Summary {
	summary := Summary{Events: len(d.TraceEvents)}
	if summary.Events == 0 {
		return summary
	}

	byName := make(map[string]*NameStat)
	byThread := make(map[uint32]*ThreadStat)

	for i, event := range d.TraceEvents {
		if i == 0 || event.Start() < summary.Start {
			summary.Start = event.Start()
		}
		if event.End() > summary.End {
			summary.End = event.End()
		}

		stat, ok := byName[event.Name]
		if !ok {
			stat = &NameStat{Name: event.Name, Min: event.Dur, Max: event.Dur}
			byName[event.Name] = stat
		}
		stat.Count++
		stat.Total += event.Dur
		if event.Dur < stat.Min {
			stat.Min = event.Dur
		}
		if event.Dur > stat.Max {
			stat.Max = event.Dur
		}

		thread, ok := byThread[event.Tid]
		if !ok {
			thread = &ThreadStat{Tid: event.Tid, First: event.Start(), Last: event.End()}
			byThread[event.Tid] = thread
		}
		thread.Count++
		thread.Busy += event.Dur
		if event.Start() < thread.First {
			thread.First = event.Start()
		}
		if event.End() > thread.Last {
			thread.Last = event.End()
		}
	}

	summary.Threads = len(byThread)
	summary.ByName = make([]NameStat, 0, len(byName))
	for _, stat := range byName {
		summary.ByName = append(summary.ByName, *stat)
	}
	sort.Slice(summary.ByName, func(i, j int) bool {
		a, b := summary.ByName[i], summary.ByName[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Name < b.Name
	})

	summary.ByThread = make([]ThreadStat, 0, len(byThread))
	for _, thread := range byThread {
		summary.ByThread = append(summary.ByThread, *thread)
	}
	sort.Slice(summary.ByThread, func(i, j int) bool {
		a, b := summary.ByThread[i], summary.ByThread[j]
		if a.Busy != b.Busy {
			return a.Busy > b.Busy
		}
		return a.Tid < b.Tid
	})

	return summary
}

// Longest returns the n longest events by duration, longest first.
// Ties keep the earlier event first.
func (d *Document) Longest(n int) []Event {
	events := make([]Event, len(d.TraceEvents))
	copy(events, d.TraceEvents)
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Dur != b.Dur {
			return a.Dur > b.Dur
		}
		if a.Ts != b.Ts {
			return a.Ts < b.Ts
		}
		return a.Name < b.Name
	})
	if n < 0 {
		n = 0
	}
	if n > len(events) {
		n = len(events)
	}
	return events[:n]
}
