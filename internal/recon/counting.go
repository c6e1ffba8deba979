package recon

import "sync"

// CountingDriver is a Driver that keeps only bookkeeping: which frames
// were fused and which decay weights were applied. It backs the replay
// tool and any caller that wants to exercise the fusion schedule without a
// real volume.
type CountingDriver struct {
	mu          sync.Mutex
	trackID     int
	fusedFrames []int
	decays      []int
	closed      bool
}

// NewCountingDriver returns a driver for trackID.
func NewCountingDriver(trackID int) *CountingDriver {
	return &CountingDriver{trackID: trackID}
}

// CountingFactory is a Factory producing CountingDrivers. Each created
// driver is also passed to onCreate when it is non-nil.
func CountingFactory(onCreate func(*CountingDriver)) Factory {
	return func(trackID int) Driver {
		d := NewCountingDriver(trackID)
		if onCreate != nil {
			onCreate(d)
		}
		return d
	}
}

func (d *CountingDriver) Fuse(frame Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fusedFrames = append(d.fusedFrames, frame.FrameIdx)
}

func (d *CountingDriver) Decay(weight int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.decays = append(d.decays, weight)
}

func (d *CountingDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// TrackID returns the track the driver was created for.
func (d *CountingDriver) TrackID() int {
	return d.trackID
}

// FusedFrames returns the frame indices fused so far, in order.
func (d *CountingDriver) FusedFrames() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.fusedFrames...)
}

// Decays returns the decay weights applied so far, in order.
func (d *CountingDriver) Decays() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.decays...)
}

// IsClosed reports whether Close has been called.
func (d *CountingDriver) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
