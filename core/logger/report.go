package logger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Sessions SessionReport `json:"session_report"`
	Commands CommandReport `json:"command_report"`
	Jobs     JobReport     `json:"job_report"`
	Mode     ModeReport    `json:"mode_report"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		Jobs: JobReport{
			Failures: NewPathCounter("command", "status"),
		},
	}
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch le.Type {
	case SessionStart, SessionEnd:
		r.Sessions.update(le)
	case Command:
		r.Commands.update(le)
	case JobStarted, JobFinished:
		r.Jobs.update(le)
	case ModeChanged:
		r.Mode.update(le)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%q", le.Type))
	}
}

type SessionReport struct {
	Started  int `json:"started"`
	Finished int `json:"finished"`
}

func (r *SessionReport) update(le *LogEntry) {
	if le.Type == SessionStart {
		r.Started++
	} else {
		r.Finished++
	}
}

type CommandReport struct {
	// Name of the command and its count.
	CommandNames StrCounter `json:"command_names"`
	// Name of builtins and their count.
	BuiltinNames StrCounter `json:"builtin_names"`
}

func (r *CommandReport) update(le *LogEntry) {
	if len(le.Command) == 0 {
		return
	}

	if le.Builtin {
		r.BuiltinNames.Increment(le.Command[0])
	} else {
		r.CommandNames.Increment(le.Command[0])
	}
}

type JobReport struct {
	Foreground int `json:"foreground"`
	Background int `json:"background"`
	// Final status of every finished job.
	Statuses StrCounter `json:"statuses"`
	// Commands that didn't finish with "exit value 0".
	Failures *PathCounter `json:"failures"`
}

func (r *JobReport) update(le *LogEntry) {
	if le.Type == JobStarted {
		if le.Background {
			r.Background++
		} else {
			r.Foreground++
		}
		return
	}

	r.Statuses.Increment(le.Status)
	if le.Status != "exit value 0" && r.Failures != nil {
		r.Failures.Increment(strings.Join(le.Command, " "), le.Status)
	}
}

type ModeReport struct {
	Entered int `json:"entered_foreground_only"`
	Exited  int `json:"exited_foreground_only"`
}

func (r *ModeReport) update(le *LogEntry) {
	if le.ForegroundOnly {
		r.Entered++
	} else {
		r.Exited++
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for the given key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of strings seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
