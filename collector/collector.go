// Package collector samples per-process Linux PCB-style features into a CSV
// consumable by the simulator. Most fields come from prometheus/procfs;
// /proc/<pid>/sched is parsed by hand because procfs does not expose it.
package collector

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"
)

// userHz is the kernel clock tick rate assumed for tick/second conversions.
const userHz = 100

// Columns is the output CSV header, in order. Arrival_Sec is seconds since
// sampling began, so the output feeds the simulator directly.
var Columns = []string{
	"Timestamp", "Arrival_Sec", "PID", "Name", "PPid",
	"State", "Threads", "Priority", "Nice", "Scheduling_Policy",
	"CPU_Usage_%", "Total_Time_Ticks", "Elapsed_Time_sec",
	"VmRSS", "VmSize",
	"Voluntary_ctxt_switches", "Nonvoluntary_ctxt_switches",
	"IO_Read_Bytes", "IO_Write_Bytes", "IO_Read_Count", "IO_Write_Count",
	"se.exec_start", "se.vruntime", "se.sum_exec_runtime",
	"nr_switches", "nr_voluntary_switches", "nr_involuntary_switches",
	"se.load.weight",
}

// schedFieldNames are the /proc/<pid>/sched keys carried into the CSV.
var schedFieldNames = []string{
	"se.exec_start", "se.vruntime", "se.sum_exec_runtime",
	"nr_switches", "nr_voluntary_switches", "nr_involuntary_switches",
	"se.load.weight",
}

// policyNames maps kernel scheduling policy numbers to their names.
var policyNames = map[uint]string{
	0: "SCHED_OTHER",
	1: "SCHED_FIFO",
	2: "SCHED_RR",
	3: "SCHED_BATCH",
	5: "SCHED_IDLE",
}

// stateNames expands the single-letter /proc state codes.
var stateNames = map[string]string{
	"R": "RUNNING",
	"S": "SLEEPING",
	"D": "SLEEPING",
	"I": "SLEEPING",
	"T": "STOPPED",
	"t": "STOPPED",
	"Z": "ZOMBIE",
}

// Options configures a collection run.
type Options struct {
	Interval time.Duration // sampling interval
	Out      string        // output CSV path
	Samples  int           // number of sweeps; 0 = until the context ends
	ProcRoot string        // defaults to /proc
}

// Collector appends one row per visible process per sweep.
type Collector struct {
	opts     Options
	fs       procfs.FS
	bootTime float64
	start    time.Time
}

// New opens the proc filesystem and prepares a collector.
func New(opts Options) (*Collector, error) {
	if opts.ProcRoot == "" {
		opts.ProcRoot = procfs.DefaultMountPoint
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	fs, err := procfs.NewFS(opts.ProcRoot)
	if err != nil {
		return nil, fmt.Errorf("opening proc filesystem: %w", err)
	}
	kstat, err := fs.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading kernel stat: %w", err)
	}
	return &Collector{
		opts:     opts,
		fs:       fs,
		bootTime: float64(kstat.BootTime),
		start:    time.Now(),
	}, nil
}

// Run sweeps until the context ends or the configured sample count is
// reached. The header is written once, when the output file does not exist.
func (c *Collector) Run(ctx context.Context) error {
	if err := c.ensureHeader(); err != nil {
		return err
	}
	c.start = time.Now()
	for round := 0; c.opts.Samples == 0 || round < c.opts.Samples; round++ {
		rows, err := c.SampleOnce()
		if err != nil {
			return err
		}
		if err := c.appendRows(rows); err != nil {
			return err
		}
		logrus.Infof("wrote %d rows to %s", len(rows), c.opts.Out)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.Interval):
		}
	}
	return nil
}

// SampleOnce reads every visible process and returns one CSV record each.
// Processes that disappear or deny access mid-read are skipped.
func (c *Collector) SampleOnce() ([][]string, error) {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	now := time.Now()
	arrivalSec := int64(now.Sub(c.start).Seconds())

	rows := make([][]string, 0, len(procs))
	for _, p := range procs {
		row, err := c.sampleProc(p, now, arrivalSec)
		if err != nil {
			logrus.Debugf("skipping pid %d: %v", p.PID, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Collector) sampleProc(p procfs.Proc, now time.Time, arrivalSec int64) ([]string, error) {
	pstat, err := p.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	totalTicks := uint64(pstat.UTime) + uint64(pstat.STime)
	startedAt := c.bootTime + float64(pstat.Starttime)/userHz
	elapsed := float64(now.Unix()) - startedAt
	if elapsed < 0 {
		elapsed = 0
	}
	cpuPct := 0.0
	if elapsed > 0 {
		cpuPct = 100 * float64(totalTicks) / userHz / elapsed
	}

	state := stateNames[pstat.State]
	if state == "" {
		state = pstat.State
	}
	policy := policyNames[pstat.Policy]

	// status and io are best-effort: both can fail on short-lived or
	// privileged processes without invalidating the row
	var volCtxt, nonvolCtxt, vmRSS, vmSize uint64
	if status, err := p.NewStatus(); err == nil {
		volCtxt = status.VoluntaryCtxtSwitches
		nonvolCtxt = status.NonVoluntaryCtxtSwitches
		vmRSS = status.VmRSS / 1024
		vmSize = status.VmSize / 1024
	}
	var readBytes, writeBytes, readCount, writeCount uint64
	if io, err := p.IO(); err == nil {
		readBytes = io.ReadBytes
		writeBytes = io.WriteBytes
		readCount = io.SyscR
		writeCount = io.SyscW
	}

	sched := c.readSchedFields(p.PID)

	row := []string{
		now.Format(time.RFC3339),
		fmt.Sprintf("%d", arrivalSec),
		fmt.Sprintf("%d", p.PID),
		pstat.Comm,
		fmt.Sprintf("%d", pstat.PPID),
		state,
		fmt.Sprintf("%d", pstat.NumThreads),
		fmt.Sprintf("%d", pstat.Priority),
		fmt.Sprintf("%d", pstat.Nice),
		policy,
		fmt.Sprintf("%.2f", cpuPct),
		fmt.Sprintf("%d", totalTicks),
		fmt.Sprintf("%.2f", elapsed),
		fmt.Sprintf("%d", vmRSS),
		fmt.Sprintf("%d", vmSize),
		fmt.Sprintf("%d", volCtxt),
		fmt.Sprintf("%d", nonvolCtxt),
		fmt.Sprintf("%d", readBytes),
		fmt.Sprintf("%d", writeBytes),
		fmt.Sprintf("%d", readCount),
		fmt.Sprintf("%d", writeCount),
	}
	for _, name := range schedFieldNames {
		row = append(row, sched[name])
	}
	return row, nil
}

// readSchedFields parses "key : value" lines from /proc/<pid>/sched,
// keeping only the whitelisted scheduler-entity fields.
func (c *Collector) readSchedFields(pid int) map[string]string {
	fields := make(map[string]string, len(schedFieldNames))
	path := filepath.Join(c.opts.ProcRoot, fmt.Sprintf("%d", pid), "sched")
	file, err := os.Open(path)
	if err != nil {
		return fields
	}
	defer file.Close() //nolint:errcheck // read-only file; close error is not actionable

	wanted := make(map[string]bool, len(schedFieldNames))
	for _, name := range schedFieldNames {
		wanted[name] = true
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if !wanted[key] {
			continue
		}
		val := strings.Fields(parts[1])
		if len(val) > 0 {
			fields[key] = val[0]
		}
	}
	return fields
}

func (c *Collector) ensureHeader() error {
	if _, err := os.Stat(c.opts.Out); err == nil {
		return nil
	}
	file, err := os.Create(c.opts.Out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", c.opts.Out, err)
	}
	cw := csv.NewWriter(file)
	if err := cw.Write(Columns); err != nil {
		file.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("writing header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		file.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	return file.Close()
}

func (c *Collector) appendRows(rows [][]string) error {
	file, err := os.OpenFile(c.opts.Out, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.opts.Out, err)
	}
	cw := csv.NewWriter(file)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			file.Close() //nolint:errcheck // write error takes precedence
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		file.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	return file.Close()
}
