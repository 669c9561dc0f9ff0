package job

import (
	"errors"
)

// Table holds outstanding background jobs in launch order.
//
// A Table is owned by the shell's main loop and isn't safe for concurrent
// use. Removal compacts the slice, which is linear in the number of jobs; a
// shell only ever has a handful.
type Table struct {
	jobs []*Record
}

// Add appends a job to the end of the table.
func (t *Table) Add(r *Record) {
	t.jobs = append(t.jobs, r)
}

// Len returns the number of outstanding jobs.
func (t *Table) Len() int {
	return len(t.jobs)
}

// Jobs returns a snapshot of the outstanding jobs in table order.
func (t *Table) Jobs() []*Record {
	out := make([]*Record, len(t.jobs))
	copy(out, t.jobs)
	return out
}

// Reap checks every job without blocking, calls report for each one that
// has finished, in table order, and removes them. Remaining jobs keep their
// relative order.
func (t *Table) Reap(report func(*Record)) []*Record {
	var finished []*Record
	remaining := t.jobs[:0]

	for _, r := range t.jobs {
		if !r.Poll() {
			remaining = append(remaining, r)
			continue
		}

		finished = append(finished, r)
		if report != nil {
			report(r)
		}
	}

	clear(t.jobs[len(remaining):])
	t.jobs = remaining
	return finished
}

// TerminateAll sends SIGTERM to every outstanding job without waiting for
// them to exit. The jobs stay in the table.
func (t *Table) TerminateAll() error {
	var errs []error
	for _, r := range t.jobs {
		if err := r.Terminate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
