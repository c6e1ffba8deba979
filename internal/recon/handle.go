package recon

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle shares a Driver between its owning track and any number of
// borrowers. The driver stays alive until the last reference is released;
// at that point Close runs once.
type Handle struct {
	volumeID uuid.UUID
	trackID  int
	driver   Driver

	refs atomic.Int32

	closeOnce sync.Once
	closeErr  error
}

// NewHandle wraps driver with a single reference held by the caller.
func NewHandle(trackID int, driver Driver) *Handle {
	if driver == nil {
		panic("recon: NewHandle called with nil driver")
	}
	h := &Handle{
		volumeID: uuid.New(),
		trackID:  trackID,
		driver:   driver,
	}
	h.refs.Store(1)
	return h
}

// VolumeID uniquely identifies this reconstruction volume across tracks
// and runs, for log correlation.
func (h *Handle) VolumeID() uuid.UUID {
	return h.volumeID
}

// TrackID returns the id of the track the volume belongs to.
func (h *Handle) TrackID() int {
	return h.trackID
}

// Refs returns the number of live references.
func (h *Handle) Refs() int {
	return int(h.refs.Load())
}

// Closed reports whether the driver has been closed.
func (h *Handle) Closed() bool {
	return h.refs.Load() <= 0
}

// Acquire adds a reference for a borrower, who must call Release when done.
// Acquiring a handle whose driver has already been closed panics.
func (h *Handle) Acquire() *Handle {
	for {
		n := h.refs.Load()
		if n <= 0 {
			panic(fmt.Sprintf("recon: acquire on closed volume %s (track %d)", h.volumeID, h.trackID))
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return h
		}
	}
}

// Release drops one reference. The call that drops the last reference
// closes the driver and returns its Close error; every other call returns
// nil. Releasing more times than acquired panics.
func (h *Handle) Release() error {
	n := h.refs.Add(-1)
	switch {
	case n > 0:
		return nil
	case n == 0:
		h.closeOnce.Do(func() {
			if err := h.driver.Close(); err != nil {
				h.closeErr = fmt.Errorf("close volume %s (track %d): %w", h.volumeID, h.trackID, err)
			}
		})
		return h.closeErr
	default:
		panic(fmt.Sprintf("recon: volume %s (track %d) released more times than acquired", h.volumeID, h.trackID))
	}
}

// Fuse forwards frame to the driver.
func (h *Handle) Fuse(frame Frame) {
	h.mustBeOpen("fuse")
	h.driver.Fuse(frame)
}

// Decay forwards a decay/prune pass with the given weight to the driver.
func (h *Handle) Decay(weight int) {
	h.mustBeOpen("decay")
	h.driver.Decay(weight)
}

// Driver returns the underlying driver, for borrowers that need
// engine-specific access such as rendering.
func (h *Handle) Driver() Driver {
	return h.driver
}

func (h *Handle) mustBeOpen(op string) {
	if h.Closed() {
		panic(fmt.Sprintf("recon: %s on closed volume %s (track %d)", op, h.volumeID, h.trackID))
	}
}
