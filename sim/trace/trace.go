package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Columns is the event-log CSV header, in order.
var Columns = []string{
	"time", "event", "core", "pid", "name",
	"assigned_scheduler", "subqueue", "remaining",
	"quantum", "vruntime", "subqueue_score", "extra",
}

// Log is the ordered event stream of one simulation run.
type Log struct {
	records []Record
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{records: make([]Record, 0)}
}

// Append adds a record to the end of the log.
func (l *Log) Append(r Record) {
	l.records = append(l.records, r)
}

// Records returns the recorded events in emission order.
// The returned slice is the log's backing store; callers must not mutate it.
func (l *Log) Records() []Record {
	return l.records
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.records)
}

// Count returns the number of records with the given event type.
func (l *Log) Count(ev EventType) int {
	n := 0
	for _, r := range l.records {
		if r.Event == ev {
			n++
		}
	}
	return n
}

// CountOnCore returns the number of records with the given event type on the
// given core. Used for per-core utilization estimation from RUN events.
func (l *Log) CountOnCore(ev EventType, core int) int {
	n := 0
	for _, r := range l.records {
		if r.Event == ev && r.Core == core {
			n++
		}
	}
	return n
}

// WriteCSV renders the full log as CSV, one row per event.
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing event log header: %w", err)
	}
	for i, r := range l.records {
		if err := cw.Write(r.row()); err != nil {
			return fmt.Errorf("writing event log row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r Record) row() []string {
	core := ""
	if r.Core != NoCore {
		core = strconv.Itoa(r.Core)
	}
	quantum := ""
	if r.Quantum > 0 {
		quantum = strconv.FormatInt(r.Quantum, 10)
	}
	score := ""
	if r.Score > 0 {
		score = strconv.FormatFloat(r.Score, 'g', -1, 64)
	}
	return []string{
		strconv.FormatInt(r.Time, 10),
		string(r.Event),
		core,
		strconv.Itoa(r.PID),
		r.Name,
		r.Scheduler,
		r.Subqueue,
		strconv.FormatInt(r.Remaining, 10),
		quantum,
		strconv.FormatFloat(r.Vruntime, 'g', -1, 64),
		score,
		r.Reason,
	}
}
