package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSchedFields_ParsesWhitelistedKeys(t *testing.T) {
	// GIVEN a /proc/<pid>/sched-shaped file
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "1234"), 0o755))
	content := strings.Join([]string{
		"bash (1234, #threads: 1)",
		"-------------------------------------------------------------------",
		"se.exec_start                                :      191098989.545639",
		"se.vruntime                                  :        9382.174029",
		"se.sum_exec_runtime                          :         210.190443",
		"nr_switches                                  :                  693",
		"nr_voluntary_switches                        :                  483",
		"nr_involuntary_switches                      :                  210",
		"se.load.weight                               :              1048576",
		"se.avg.load_sum                              :                12345",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1234", "sched"), []byte(content), 0o644))

	c := &Collector{opts: Options{ProcRoot: dir}}

	// WHEN parsed
	fields := c.readSchedFields(1234)

	// THEN only the whitelisted keys survive, first token of each value
	assert.Equal(t, "9382.174029", fields["se.vruntime"])
	assert.Equal(t, "210.190443", fields["se.sum_exec_runtime"])
	assert.Equal(t, "693", fields["nr_switches"])
	assert.Equal(t, "1048576", fields["se.load.weight"])
	_, kept := fields["se.avg.load_sum"]
	assert.False(t, kept)
}

func TestReadSchedFields_MissingFileIsEmpty(t *testing.T) {
	c := &Collector{opts: Options{ProcRoot: t.TempDir()}}
	assert.Empty(t, c.readSchedFields(99999))
}

func TestEnsureHeaderAndAppendRows(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trace.csv")
	c := &Collector{opts: Options{Out: out}}

	require.NoError(t, c.ensureHeader())
	// a second call must not duplicate the header
	require.NoError(t, c.ensureHeader())

	row := make([]string, len(Columns))
	row[0] = "2026-08-01T00:00:00Z"
	row[2] = "42"
	require.NoError(t, c.appendRows([][]string{row}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.Contains(t, lines[1], "42")
}

func TestNew_BadProcRootFails(t *testing.T) {
	_, err := New(Options{ProcRoot: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestPolicyAndStateNames(t *testing.T) {
	assert.Equal(t, "SCHED_OTHER", policyNames[0])
	assert.Equal(t, "SCHED_FIFO", policyNames[1])
	assert.Equal(t, "SCHED_RR", policyNames[2])
	assert.Equal(t, "SCHED_BATCH", policyNames[3])
	assert.Equal(t, "SCHED_IDLE", policyNames[5])
	assert.Equal(t, "RUNNING", stateNames["R"])
	assert.Equal(t, "ZOMBIE", stateNames["Z"])
}
