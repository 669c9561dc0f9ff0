package job

import (
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningRecord(pid int) *Record {
	return &Record{PID: pid, done: make(chan struct{})}
}

func pids(records []*Record) []int {
	var out []int
	for _, r := range records {
		out = append(out, r.PID)
	}
	return out
}

func TestTableReapPreservesOrder(t *testing.T) {
	var table Table

	r1 := runningRecord(101)
	r2 := NewFinishedRecord(102, []string{"true"}, ExitedWith(0))
	r3 := runningRecord(103)
	r4 := NewFinishedRecord(104, []string{"false"}, ExitedWith(1))
	r5 := runningRecord(105)
	for _, r := range []*Record{r1, r2, r3, r4, r5} {
		table.Add(r)
	}

	var reported []string
	finished := table.Reap(func(r *Record) {
		reported = append(reported, r.DoneMessage())
	})

	assert.Equal(t, []int{102, 104}, pids(finished))
	assert.Equal(t, []string{
		"background pid 102 is done: exit value 0",
		"background pid 104 is done: exit value 1",
	}, reported)
	assert.Equal(t, []int{101, 103, 105}, pids(table.Jobs()))

	// Nothing new finished, nothing is reported twice.
	assert.Empty(t, table.Reap(func(r *Record) {
		t.Errorf("unexpected report for %d", r.PID)
	}))

	r1.Status = SignaledWith(syscall.SIGTERM)
	close(r1.done)
	close(r5.done)

	reported = nil
	table.Reap(func(r *Record) {
		reported = append(reported, r.DoneMessage())
	})
	assert.Equal(t, []string{
		"background pid 101 is done: terminated by signal 15",
		"background pid 105 is done: running",
	}, reported)
	assert.Equal(t, []int{103}, pids(table.Jobs()))
	assert.Equal(t, 1, table.Len())
}

func TestTableReapEmpty(t *testing.T) {
	var table Table
	assert.Empty(t, table.Reap(nil))
	assert.Zero(t, table.Len())
}

func TestTableJobsIsSnapshot(t *testing.T) {
	var table Table
	table.Add(runningRecord(1))

	snapshot := table.Jobs()
	table.Add(runningRecord(2))

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, table.Len())
}

func TestTableTerminateAll(t *testing.T) {
	var table Table

	for i := 0; i < 2; i++ {
		cmd := exec.Command("sleep", "30")
		cmd.SysProcAttr = sysProcAttr(true)
		require.NoError(t, cmd.Start())

		r := newRecord(cmd, cmd.Args, true)
		go r.wait()
		table.Add(r)
	}

	// Already finished jobs are skipped.
	table.Add(NewFinishedRecord(999999, []string{"gone"}, ExitedWith(0)))

	require.NoError(t, table.TerminateAll())

	for _, r := range table.Jobs() {
		select {
		case <-r.Done():
		case <-time.After(10 * time.Second):
			t.Fatalf("job %d ignored SIGTERM", r.PID)
		}
	}

	finished := table.Reap(nil)
	require.Len(t, finished, 3)
	assert.Equal(t, SignaledWith(syscall.SIGTERM), finished[0].Status)
	assert.Equal(t, SignaledWith(syscall.SIGTERM), finished[1].Status)
	assert.Zero(t, table.Len())
}

func TestRecordTerminateNeverStarted(t *testing.T) {
	assert.NoError(t, (&Record{}).Terminate())
}
