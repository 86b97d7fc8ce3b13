package session

import (
	"strings"
	"sync"
)

// DisplayMode is a cosmetic board theme. It has no bearing on game data
// and lives outside the Snapshot so that changing it cannot trigger fetches.
type DisplayMode int

const (
	DisplayClassic DisplayMode = iota
	DisplayGreen
	DisplayMono
	displayModeCount
)

var displayNames = [...]string{"classic", "green", "mono"}

func (m DisplayMode) String() string {
	if m < 0 || m >= displayModeCount {
		return displayNames[0]
	}
	return displayNames[m]
}

// Next cycles classic -> green -> mono -> classic.
func (m DisplayMode) Next() DisplayMode {
	return (m + 1) % displayModeCount
}

// ParseDisplayMode falls back to classic for unknown names.
func ParseDisplayMode(s string) DisplayMode {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range displayNames {
		if n == s {
			return DisplayMode(i)
		}
	}
	return DisplayClassic
}

// Display holds the display preference with its own observers.
type Display struct {
	mu   sync.RWMutex
	mode DisplayMode
	subs map[int]func(DisplayMode)
	next int
}

func NewDisplay(mode DisplayMode) *Display {
	return &Display{mode: mode, subs: make(map[int]func(DisplayMode))}
}

func (d *Display) Mode() DisplayMode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mode
}

// Cycle advances to the next mode and returns it.
func (d *Display) Cycle() DisplayMode {
	d.mu.Lock()
	d.mode = d.mode.Next()
	mode := d.mode
	subs := d.snapshotSubs()
	d.mu.Unlock()
	for _, fn := range subs {
		fn(mode)
	}
	return mode
}

// Subscribe registers fn for mode changes and returns an unsubscribe func.
func (d *Display) Subscribe(fn func(DisplayMode)) func() {
	d.mu.Lock()
	id := d.next
	d.next++
	d.subs[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Display) snapshotSubs() []func(DisplayMode) {
	out := make([]func(DisplayMode), 0, len(d.subs))
	for _, fn := range d.subs {
		out = append(out, fn)
	}
	return out
}
