package tracker

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/instrec/internal/geom"
	"github.com/banshee-data/instrec/internal/monitoring"
	"github.com/banshee-data/instrec/internal/recon"
	"github.com/banshee-data/instrec/internal/segmentation"
	"github.com/banshee-data/instrec/internal/tracks"
)

// ErrFrameOrder is returned when frames are not processed in strictly
// increasing order.
var ErrFrameOrder = errors.New("tracker: frame index must increase")

// ErrUpdatePanic wraps a panic raised while updating a track, usually by
// the pose estimator.
var ErrUpdatePanic = errors.New("tracker: track update panicked")

// Stats counts tracker activity since construction.
type Stats struct {
	FramesProcessed        int
	TracksCreated          int
	TracksEvicted          int
	DetectionsDropped      int // unmatched detections rejected by MaxTracks
	ReconstructionsStarted int
	FramesFused            int
	Reaps                  int
}

// FrameResult describes what ProcessFrame did with one frame.
type FrameResult struct {
	FrameIdx int

	// Assignments maps detection index to the id of the track it joined.
	// Dropped detections are absent.
	Assignments map[int]int

	NewTracks []int
	Evicted   []int
}

// Tracker associates instance detections with tracks frame by frame.
//
// The estimator is shared by all tracks and is called from several
// goroutines when UpdateWorkers > 1, so it must be safe for concurrent use.
// Tracks returned by Track and Tracks must not be modified and should not
// be read while ProcessFrame runs.
type Tracker struct {
	mu sync.RWMutex

	cfg       Config
	estimator tracks.PoseEstimator
	factory   recon.Factory
	verbose   bool

	tracks     map[int]*tracks.Track
	fuseCursor map[int]int // next frame position to try fusing, per track
	nextID     int
	lastFrame  int
	stats      Stats

	// DebugCollector, when set, is attached to every new track.
	DebugCollector tracks.DebugCollector
}

// New creates a tracker. factory may be nil, in which case no
// reconstructions are created.
func New(cfg Config, estimator tracks.PoseEstimator, factory recon.Factory) *Tracker {
	if estimator == nil {
		panic("tracker: nil pose estimator")
	}
	if cfg.UpdateWorkers < 1 {
		cfg.UpdateWorkers = 1
	}
	return &Tracker{
		cfg:        cfg,
		estimator:  estimator,
		factory:    factory,
		tracks:     make(map[int]*tracks.Track),
		fuseCursor: make(map[int]int),
		lastFrame:  -1,
	}
}

// SetVerbose toggles per-track diagnostic logging.
func (t *Tracker) SetVerbose(verbose bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.verbose = verbose
}

// ProcessFrame runs one tracking step:
//  1. score every detection against every live track and solve the
//     assignment, rejecting pairs below MinMatchScore;
//  2. append matched detections to their tracks and start new tracks for
//     the rest, up to MaxTracks;
//  3. update the motion state of every track that received a frame;
//  4. start or feed reconstructions of eligible tracks that are not
//     Uncertain;
//  5. run pending decay passes every ReapIntervalFrames frames;
//  6. evict tracks unseen for more than MaxInactiveFrames frames.
//
// The returned error is ErrFrameOrder for out-of-order input, ErrUpdatePanic
// when a track update panicked (the frame is then abandoned after step 3),
// or the joined errors of reconstructions closed during eviction.
func (t *Tracker) ProcessFrame(frameIdx int, views []segmentation.InstanceView, cameraPose, egomotion geom.Pose32) (FrameResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if frameIdx <= t.lastFrame {
		return FrameResult{}, fmt.Errorf("%w: got %d after %d", ErrFrameOrder, frameIdx, t.lastFrame)
	}
	t.lastFrame = frameIdx
	t.stats.FramesProcessed++

	result := FrameResult{FrameIdx: frameIdx, Assignments: make(map[int]int, len(views))}
	candidates := make([]tracks.TrackFrame, len(views))
	for i, v := range views {
		candidates[i] = tracks.NewTrackFrame(frameIdx, v, cameraPose)
	}

	ids := t.sortedIDs()
	assignment := t.associate(candidates, ids)

	touched := make([]*tracks.Track, 0, len(candidates))
	for i := range candidates {
		if j := assignment[i]; j >= 0 {
			tr := t.tracks[ids[j]]
			tr.AddFrame(candidates[i])
			touched = append(touched, tr)
			result.Assignments[i] = tr.ID()
			continue
		}
		if len(t.tracks) >= t.cfg.MaxTracks {
			t.stats.DetectionsDropped++
			monitoring.Logf("Tracker: dropping %s detection %d at frame %d, %d tracks live.",
				candidates[i].View.ClassName(), i, frameIdx, len(t.tracks))
			continue
		}
		tr := t.startTrack(candidates[i])
		touched = append(touched, tr)
		result.Assignments[i] = tr.ID()
		result.NewTracks = append(result.NewTracks, tr.ID())
	}

	if err := t.updateAll(touched, egomotion); err != nil {
		return result, err
	}

	slices.SortFunc(touched, func(a, b *tracks.Track) int { return a.ID() - b.ID() })
	for _, tr := range touched {
		t.feedReconstruction(tr)
	}

	if t.cfg.ReapIntervalFrames > 0 && t.stats.FramesProcessed%t.cfg.ReapIntervalFrames == 0 {
		t.reapPending()
	}

	evicted, err := t.evictInactive(frameIdx)
	result.Evicted = evicted
	return result, err
}

// associate returns, for each candidate, the position in ids of the track
// it should join, or -1.
func (t *Tracker) associate(candidates []tracks.TrackFrame, ids []int) []int {
	if len(candidates) == 0 {
		return nil
	}
	scores := make([][]float64, len(candidates))
	for i := range candidates {
		scores[i] = make([]float64, len(ids))
		for j, id := range ids {
			scores[i][j] = t.tracks[id].ScoreMatch(&candidates[i])
		}
	}
	return assignByScore(scores, t.cfg.MinMatchScore)
}

func (t *Tracker) startTrack(first tracks.TrackFrame) *tracks.Track {
	id := t.nextID
	t.nextID++
	tr := tracks.NewTrack(id, t.cfg.Track)
	if t.DebugCollector != nil {
		tr.SetDebugCollector(t.DebugCollector)
	}
	tr.AddFrame(first)
	t.tracks[id] = tr
	t.stats.TracksCreated++
	if t.verbose {
		monitoring.Logf("Tracker: new %s track [%d] at frame %d.", first.View.ClassName(), id, first.FrameIdx)
	}
	return tr
}

// updateAll runs Track.Update on every touched track. Tracks share no
// state, so they are updated concurrently. A panicking update is turned
// into an ErrUpdatePanic; the other updates still run to completion.
func (t *Tracker) updateAll(touched []*tracks.Track, egomotion geom.Pose32) error {
	var g errgroup.Group
	g.SetLimit(t.cfg.UpdateWorkers)
	for _, tr := range touched {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: track %d at frame %d: %v", ErrUpdatePanic, tr.ID(), tr.EndTime(), r)
				}
			}()
			tr.Update(egomotion, t.estimator, t.verbose)
			return nil
		})
	}
	return g.Wait()
}

// feedReconstruction fuses any frames of tr not yet offered to its
// reconstruction, creating the reconstruction on first use. Uncertain
// tracks are skipped entirely.
func (t *Tracker) feedReconstruction(tr *tracks.Track) {
	if !tr.EligibleForReconstruction() || tr.State() == tracks.Uncertain {
		return
	}
	if !tr.HasReconstruction() {
		first := tr.FirstFusableFrameIndex()
		if t.factory == nil || !hasFusableFrame(tr, first) {
			return
		}
		h := tr.AttachReconstruction(t.factory(tr.ID()))
		t.fuseCursor[tr.ID()] = first
		t.stats.ReconstructionsStarted++
		monitoring.Logf("Tracker: started reconstruction %s for %s track [%d] (%s) at frame %d.",
			h.VolumeID(), tr.ClassName(), tr.ID(), tr.State(), tr.EndTime())
	}

	fused := 0
	for i := t.fuseCursor[tr.ID()]; i < tr.Size(); i++ {
		if tr.FuseFrame(i) {
			fused++
		}
	}
	t.fuseCursor[tr.ID()] = tr.Size()
	if fused > 0 {
		t.stats.FramesFused += fused
		tr.SetNeedsCleanup(true)
	}
}

// hasFusableFrame reports whether any frame from anchor on has a pose
// relative to it.
func hasFusableFrame(tr *tracks.Track, anchor int) bool {
	if anchor < 0 {
		return false
	}
	for i := anchor; i < tr.Size(); i++ {
		if _, ok := tr.FramePoseFrom(anchor, i); ok {
			return true
		}
	}
	return false
}

func (t *Tracker) reapPending() {
	for _, id := range t.sortedIDs() {
		tr := t.tracks[id]
		if !tr.NeedsCleanup() || !tr.HasReconstruction() {
			continue
		}
		tr.ReapReconstruction()
		tr.SetNeedsCleanup(false)
		t.stats.Reaps++
	}
}

func (t *Tracker) evictInactive(frameIdx int) ([]int, error) {
	var (
		evicted []int
		errs    []error
	)
	for _, id := range t.sortedIDs() {
		tr := t.tracks[id]
		if frameIdx-tr.EndTime() <= t.cfg.MaxInactiveFrames {
			continue
		}
		if tr.NeedsCleanup() && tr.HasReconstruction() {
			tr.ReapReconstruction()
			tr.SetNeedsCleanup(false)
			t.stats.Reaps++
		}
		if err := tr.Close(); err != nil {
			errs = append(errs, fmt.Errorf("evict track %d: %w", id, err))
		}
		delete(t.tracks, id)
		delete(t.fuseCursor, id)
		evicted = append(evicted, id)
		t.stats.TracksEvicted++
	}
	return evicted, errors.Join(errs...)
}

// Close closes every live track and forgets them.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var errs []error
	for _, id := range t.sortedIDs() {
		if err := t.tracks[id].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close track %d: %w", id, err))
		}
	}
	clear(t.tracks)
	clear(t.fuseCursor)
	return errors.Join(errs...)
}

// Track returns the live track with the given id.
func (t *Tracker) Track(id int) (*tracks.Track, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tr, ok := t.tracks[id]
	return tr, ok
}

// Tracks returns the live tracks ordered by id.
func (t *Tracker) Tracks() []*tracks.Track {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*tracks.Track, 0, len(t.tracks))
	for _, id := range t.sortedIDs() {
		out = append(out, t.tracks[id])
	}
	return out
}

// Stats returns a snapshot of the activity counters.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// ASCIIArt renders one timeline row per live track, all aligned on the
// same frame columns:
//
//	0 car       Static    [xx xx xx          ]
func (t *Tracker) ASCIIArt() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	width := max(2, len(strconv.Itoa(t.lastFrame)))
	var sb strings.Builder
	for _, id := range t.sortedIDs() {
		tr := t.tracks[id]
		fmt.Fprintf(&sb, "%3d %-9s %-9s %s\n", id, tr.ClassName(), tr.StateLabel(), tr.ASCIIArtWidth(width))
	}
	return sb.String()
}

func (t *Tracker) sortedIDs() []int {
	ids := make([]int, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
