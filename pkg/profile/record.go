package profile

import (
	"strconv"
	"strings"
)

// Record is a single completed scope measurement. Timestamps are
// microseconds since the Unix epoch.
type Record struct {
	Name     string
	Start    int64
	End      int64
	ThreadID uint32
}

// Duration returns the scope duration in microseconds.
func (r Record) Duration() int64 {
	return r.End - r.Start
}

// appendEvent appends the record as a Chrome trace complete event.
// The only escaping applied is replacing double quotes in the name
// with single quotes.
func (r Record) appendEvent(buf []byte) []byte {
	name := r.Name
	if strings.Contains(name, `"`) {
		name = strings.ReplaceAll(name, `"`, `'`)
	}

	buf = append(buf, `{"cat":"function","dur":`...)
	buf = strconv.AppendInt(buf, r.Duration(), 10)
	buf = append(buf, `,"name":"`...)
	buf = append(buf, name...)
	buf = append(buf, `","ph":"X","pid":0,"tid":`...)
	buf = strconv.AppendUint(buf, uint64(r.ThreadID), 10)
	buf = append(buf, `,"ts":`...)
	buf = strconv.AppendInt(buf, r.Start, 10)
	buf = append(buf, '}')
	return buf
}

// Event returns the wire form of the record.
func (r Record) Event() string {
	return string(r.appendEvent(nil))
}
