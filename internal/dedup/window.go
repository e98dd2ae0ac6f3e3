package dedup

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the window size used whenever a persisted snapshot
// carries cap == 0 (see OrderBook.Restore).
const DefaultCapacity = 10000

var (
	// ErrExpired is returned when put(v) targets an id at or below the
	// window's low-water mark.
	ErrExpired = errors.New("dedup: expired order id")
	// ErrExisting is returned when put(v) targets an id already accepted
	// within the current window.
	ErrExisting = errors.New("dedup: existing order id")
)

// Window is a bounded sliding bitmap over recently accepted order ids. It
// never clears bits vacated as the window slides forward, so it is only
// correct so long as a single slide (the gap between consecutive order ids
// arriving in increasing order) never exceeds cap. Producers are required
// to keep offsets arriving in near-order within cap for this to hold; see
// spec note on the modular bitmap.
type Window struct {
	Min  uint64
	Max  uint64
	Cap  uint64
	Bits *Bitmap
}

// New creates a window covering (min, max].
func New(min, max uint64) *Window {
	cap := max - min
	return &Window{Min: min, Max: max, Cap: cap, Bits: NewBitmap(cap)}
}

// NewDefault creates a window with DefaultCapacity starting at zero.
func NewDefault() *Window {
	return New(0, DefaultCapacity)
}

// Put accepts v into the window, sliding it forward if v exceeds the
// current max. Returns ErrExpired or ErrExisting if v should be rejected.
func (w *Window) Put(v uint64) error {
	switch {
	case v <= w.Min:
		return fmt.Errorf("%w: val %d, window [%d-%d]", ErrExpired, v, w.Min, w.Max)
	case v > w.Max:
		delta := v - w.Max
		w.Min += delta
		w.Max += delta
		w.Bits.Set(v%w.Cap, true)
		return nil
	case w.Bits.Get(v % w.Cap):
		return fmt.Errorf("%w: val %d", ErrExisting, v)
	default:
		w.Bits.Set(v%w.Cap, true)
		return nil
	}
}

// Clone returns a deep copy, used when snapshotting the order book.
func (w *Window) Clone() *Window {
	return &Window{
		Min:  w.Min,
		Max:  w.Max,
		Cap:  w.Cap,
		Bits: FromBytes(w.Bits.Bytes()),
	}
}

// Snapshot is the serializable form of a Window.
type Snapshot struct {
	Min  uint64 `json:"min"`
	Max  uint64 `json:"max"`
	Cap  uint64 `json:"cap"`
	Bits []byte `json:"bits"`
}

// ToSnapshot captures the window for persistence.
func (w *Window) ToSnapshot() Snapshot {
	return Snapshot{Min: w.Min, Max: w.Max, Cap: w.Cap, Bits: append([]byte(nil), w.Bits.Bytes()...)}
}

// FromSnapshot rebuilds a window from a persisted snapshot. If the
// persisted cap is zero (e.g. a snapshot taken before the window was ever
// used) a fresh window with DefaultCapacity is built instead, per the
// restore contract.
func FromSnapshot(s Snapshot) *Window {
	if s.Cap == 0 {
		return NewDefault()
	}
	return &Window{Min: s.Min, Max: s.Max, Cap: s.Cap, Bits: FromBytes(s.Bits)}
}
