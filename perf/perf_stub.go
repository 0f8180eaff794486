//go:build !linux

package perf

// Groups returns no event groups: perf_event is Linux-only.
func Groups() [][]Event { return nil }

// Group is a placeholder on platforms without perf_event.
type Group struct{}

// Open always fails with ErrUnsupported.
func Open([]Event) (*Group, error) { return nil, ErrUnsupported }

func (g *Group) Reset() error   { return ErrUnsupported }
func (g *Group) Enable() error  { return ErrUnsupported }
func (g *Group) Disable() error { return ErrUnsupported }

func (g *Group) Read() ([]Count, error) { return nil, ErrUnsupported }

func (g *Group) Close() {}
