package profile

import (
	"hash/fnv"
	"runtime"
	"sync"
	"time"
)

// Timer measures a single scope. Start it with NewTimer and stop it
// when the scope exits; Stop is idempotent so deferred and explicit
// stops can coexist.
type Timer struct {
	name     string
	recorder *Recorder
	start    time.Time
	stopOnce sync.Once
}

// NewTimer starts a timer that reports to the default recorder.
func NewTimer(name string) *Timer {
	return Default().NewTimer(name)
}

// NewTimer starts a timer bound to this recorder.
func (r *Recorder) NewTimer(name string) *Timer {
	return &Timer{
		name:     name,
		recorder: r,
		start:    time.Now(),
	}
}

// Stop finalizes the measurement and writes the record. Only the
// first call writes; later calls do nothing.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		elapsed := time.Since(t.start)
		start := t.start.UnixMicro()
		t.recorder.WriteRecord(Record{
			Name:     t.name,
			Start:    start,
			End:      start + elapsed.Microseconds(),
			ThreadID: currentThreadID(),
		})
	})
}

// Scope starts a timer on the default recorder and returns its stop
// function, for use with defer:
//
//	defer profile.Scope("LoadAssets")()
func Scope(name string) func() {
	t := NewTimer(name)
	return t.Stop
}

// Scope starts a timer bound to this recorder and returns its stop
// function.
func (r *Recorder) Scope(name string) func() {
	t := r.NewTimer(name)
	return t.Stop
}

// Func starts a timer named after the calling function:
//
//	defer profile.Func()()
func Func() func() {
	t := Default().NewTimer(callerName(2))
	return t.Stop
}

// Func starts a timer bound to this recorder named after the calling
// function.
func (r *Recorder) Func() func() {
	t := r.NewTimer(callerName(2))
	return t.Stop
}

// callerName returns the fully qualified name of the function skip
// frames up the stack, or "unknown" if the stack cannot be resolved.
func callerName(skip int) string {
	pc := make([]uintptr, 1)
	if runtime.Callers(skip+1, pc) == 0 {
		return "unknown"
	}
	frame, _ := runtime.CallersFrames(pc).Next()
	if frame.Function == "" {
		return "unknown"
	}
	return frame.Function
}

// currentThreadID derives a stable 32 bit id for the calling
// goroutine by hashing the goroutine id from the runtime stack
// header. Events from one goroutine land on one viewer row.
func currentThreadID() uint32 {
	var buf [32]byte
	n := runtime.Stack(buf[:], false)

	// The header looks like "goroutine 123 [running]:".
	const prefix = "goroutine "
	b := buf[:n]
	if len(b) <= len(prefix) {
		return 0
	}
	b = b[len(prefix):]

	end := 0
	for end < len(b) && b[end] >= '0' && b[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	h := fnv.New32a()
	h.Write(b[:end])
	return h.Sum32()
}
