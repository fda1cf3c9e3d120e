package procutil

import (
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// Alive reports whether a process with the given PID exists.
func Alive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

// GroupSurvivors scans the process table for members of the given process
// group. Used to verify that no child (or grandchild) outlives the
// bootstrapper's supervision.
func GroupSurvivors(pgid int) ([]int32, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, err
	}

	var survivors []int32
	for _, pid := range pids {
		got, err := syscall.Getpgid(int(pid))
		if err != nil {
			continue // raced with process exit
		}
		if got == pgid {
			survivors = append(survivors, pid)
		}
	}

	return survivors, nil
}

// Usage is a point-in-time resource snapshot of a running process.
type Usage struct {
	CPUPercent float64
	RSSBytes   uint64
	NumThreads int32
}

// Snapshot samples CPU and memory usage for the given PID. Best effort: a
// process that exits mid-sample yields an error, not a partial result.
func Snapshot(pid int) (*Usage, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}

	cpu, err := p.CPUPercent()
	if err != nil {
		return nil, err
	}

	mem, err := p.MemoryInfo()
	if err != nil {
		return nil, err
	}

	threads, err := p.NumThreads()
	if err != nil {
		return nil, err
	}

	return &Usage{
		CPUPercent: cpu,
		RSSBytes:   mem.RSS,
		NumThreads: threads,
	}, nil
}
