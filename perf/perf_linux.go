//go:build linux

package perf

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Groups returns the event groups the harness measures. Group order and
// descriptions follow the report layout.
func Groups() [][]Event {
	return [][]Event{
		{
			{Type: unix.PERF_TYPE_SOFTWARE, Config: unix.PERF_COUNT_SW_PAGE_FAULTS, Desc: "page faults"},
			{Type: unix.PERF_TYPE_SOFTWARE, Config: unix.PERF_COUNT_SW_CPU_CLOCK, Desc: "software cpu clock"},
			{Type: unix.PERF_TYPE_SOFTWARE, Config: unix.PERF_COUNT_SW_TASK_CLOCK, Desc: "software task clock"},
		},
		{
			{Type: unix.PERF_TYPE_HARDWARE, Config: unix.PERF_COUNT_HW_INSTRUCTIONS, Desc: "instructions"},
			{Type: unix.PERF_TYPE_HARDWARE, Config: unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS, Desc: "branch instructions"},
			{Type: unix.PERF_TYPE_HARDWARE, Config: unix.PERF_COUNT_HW_CPU_CYCLES, Desc: "cycles"},
			{Type: unix.PERF_TYPE_HARDWARE, Config: unix.PERF_COUNT_HW_BUS_CYCLES, Desc: "bus cycles"},
			{Type: unix.PERF_TYPE_HARDWARE, Config: unix.PERF_COUNT_HW_REF_CPU_CYCLES, Desc: "total cycles"},
		},
	}
}

// Group is an open perf_event counter group. The first event is the group
// leader; enable/disable/reset ioctls address the whole group through it.
type Group struct {
	fds    []int
	events []Event
}

// Open opens all events of one group on the calling thread, disabled.
// Close must be called to release the descriptors.
func Open(events []Event) (*Group, error) {
	g := &Group{events: events}
	for _, ev := range events {
		attr := unix.PerfEventAttr{
			Type:        ev.Type,
			Config:      ev.Config,
			Size:        uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
			Bits:        unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
			Read_format: unix.PERF_FORMAT_GROUP,
		}
		leader := -1
		if len(g.fds) > 0 {
			leader = g.fds[0]
		}
		fd, err := unix.PerfEventOpen(&attr, 0, -1, leader, 0)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("perf: open %s: %w", ev.Desc, err)
		}
		g.fds = append(g.fds, fd)
	}
	return g, nil
}

// Reset zeroes every counter of the group.
func (g *Group) Reset() error {
	return unix.IoctlSetInt(g.fds[0], unix.PERF_EVENT_IOC_RESET, unix.PERF_IOC_FLAG_GROUP)
}

// Enable starts counting.
func (g *Group) Enable() error {
	return unix.IoctlSetInt(g.fds[0], unix.PERF_EVENT_IOC_ENABLE, unix.PERF_IOC_FLAG_GROUP)
}

// Disable stops counting; counters keep their values for Read.
func (g *Group) Disable() error {
	return unix.IoctlSetInt(g.fds[0], unix.PERF_EVENT_IOC_DISABLE, unix.PERF_IOC_FLAG_GROUP)
}

// Read returns the current counter values, one per event in Open order.
// With PERF_FORMAT_GROUP the kernel reports nr followed by the values in
// group order.
func (g *Group) Read() ([]Count, error) {
	buf := make([]byte, 8*(1+len(g.fds)))
	n, err := unix.Read(g.fds[0], buf)
	if err != nil {
		return nil, fmt.Errorf("perf: read: %w", err)
	}
	if n < len(buf) {
		return nil, fmt.Errorf("perf: short read: %d of %d bytes", n, len(buf))
	}
	nr := binary.LittleEndian.Uint64(buf[0:8])
	if nr != uint64(len(g.fds)) {
		return nil, fmt.Errorf("perf: group read returned %d values, want %d", nr, len(g.fds))
	}
	counts := make([]Count, len(g.fds))
	for i := range counts {
		counts[i] = Count{
			Desc:  g.events[i].Desc,
			Value: binary.LittleEndian.Uint64(buf[8*(i+1) : 8*(i+2)]),
		}
	}
	return counts, nil
}

// Close releases the group's descriptors.
func (g *Group) Close() {
	for _, fd := range g.fds {
		unix.Close(fd)
	}
	g.fds = nil
}
