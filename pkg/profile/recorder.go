package profile

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/eren/chronotrace/internal/observability"
	"github.com/eren/chronotrace/pkg/hooks"
)

// Trace document framing. A session writes the header once, record
// events joined by commas, then the footer. The bytes are fixed so
// files load in chrome://tracing and Perfetto without preprocessing.
const (
	traceHeader = `{"otherData": {},"traceEvents":[`
	traceFooter = `]}`
)

// DefaultOutput is the output path used when BeginSession gets an
// empty path.
const DefaultOutput = "results.json"

// Session describes an open recording session.
type Session struct {
	ID        string
	Name      string
	Path      string
	StartedAt time.Time
}

// Recorder writes scope records into a Chrome trace file. All methods
// are safe for concurrent use. At most one session is open at a time.
type Recorder struct {
	mu       sync.Mutex
	session  *Session
	file     *os.File
	wrote    bool
	disabled bool
	records  int64

	hooks *hooks.Manager
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithHooks attaches a hook manager fired on session begin and end.
func WithHooks(h *hooks.Manager) Option {
	return func(r *Recorder) {
		r.hooks = h
	}
}

// NewRecorder creates an idle recorder. Records written before
// BeginSession are dropped.
func NewRecorder(opts ...Option) *Recorder {
	observability.EnsureRegistered()

	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultRec  *Recorder
)

// Default returns the process wide recorder, creating it on first use.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRec = NewRecorder()
	})
	return defaultRec
}

// BeginSession opens a session on the default recorder.
func BeginSession(name, path string) {
	Default().BeginSession(name, path)
}

// EndSession finalizes the open session on the default recorder.
func EndSession() {
	Default().EndSession()
}

// BeginSession opens a new session writing to path. An empty path
// means DefaultOutput. If a session is already open it is finalized
// first and a warning is logged. If the output file cannot be opened
// the recorder logs the error and stays idle, so subsequent writes
// are dropped rather than failing the instrumented program.
func (r *Recorder) BeginSession(name, path string) {
	if path == "" {
		path = DefaultOutput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		log.Warn().
			Str("session", name).
			Str("open", r.session.Name).
			Msg("BeginSession called while session already open, finalizing previous session")
		r.endSessionLocked()
	}

	file, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to open trace output")
		observability.RecordSessionOpenFailure()
		r.disabled = true
		return
	}

	if _, err := file.WriteString(traceHeader); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write trace header")
		file.Close()
		observability.RecordSessionOpenFailure()
		r.disabled = true
		return
	}

	r.session = &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		StartedAt: time.Now(),
	}
	r.file = file
	r.wrote = false
	r.disabled = false
	r.records = 0

	observability.RecordSessionStart()
	log.Info().
		Str("session", name).
		Str("path", path).
		Msg("Session started")

	r.fireHook(hooks.EventSessionBegin, *r.session, 0)
}

// EndSession writes the trace footer and closes the output file.
// Calling it without an open session is a no-op.
func (r *Recorder) EndSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endSessionLocked()
}

func (r *Recorder) endSessionLocked() {
	if r.session == nil {
		r.disabled = false
		return
	}

	if _, err := r.file.WriteString(traceFooter); err != nil {
		log.Error().Err(err).Str("path", r.session.Path).Msg("Failed to write trace footer")
	}
	if err := r.file.Close(); err != nil {
		log.Error().Err(err).Str("path", r.session.Path).Msg("Failed to close trace output")
	}

	ended := *r.session
	records := r.records

	r.session = nil
	r.file = nil
	r.wrote = false
	r.disabled = false
	r.records = 0

	observability.RecordSessionEnd()
	log.Info().
		Str("session", ended.Name).
		Str("path", ended.Path).
		Int64("records", records).
		Msg("Session ended")

	r.fireHook(hooks.EventSessionEnd, ended, records)
}

// WriteRecord appends a record to the open session. Without an open
// session the record is dropped. The event bytes are built before the
// lock is taken; the comma decision and the write happen under it.
func (r *Recorder) WriteRecord(rec Record) {
	start := time.Now()

	buf := make([]byte, 0, 128)
	buf = append(buf, ',')
	buf = rec.appendEvent(buf)

	r.mu.Lock()
	if r.session == nil {
		disabled := r.disabled
		r.mu.Unlock()
		if disabled {
			observability.RecordDrop("disabled")
		} else {
			observability.RecordDrop("no_session")
		}
		return
	}

	out := buf
	if !r.wrote {
		out = buf[1:] // first record carries no leading comma
	}
	_, err := r.file.Write(out)
	r.wrote = true
	r.records++
	name := r.session.Name
	path := r.session.Path
	r.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write trace record")
		return
	}
	observability.RecordWrite(name, time.Since(start))
}

// CurrentSession returns a copy of the open session, if any.
func (r *Recorder) CurrentSession() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return Session{}, false
	}
	return *r.session, true
}

// fireHook runs hooks without blocking the write path. Called with
// r.mu held, so the session data is copied first.
func (r *Recorder) fireHook(event string, s Session, records int64) {
	if !r.hooks.Enabled() {
		return
	}

	h := r.hooks
	go func() {
		data := map[string]interface{}{
			"session_id":   s.ID,
			"session_name": s.Name,
			"path":         s.Path,
		}
		if event == hooks.EventSessionEnd {
			data["records"] = records
		}
		if err := h.Trigger(context.Background(), event, data); err != nil {
			log.Warn().Err(err).Str("event", event).Msg("Session hook failed")
		}
	}()
}
