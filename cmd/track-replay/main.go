// Command track-replay drives the instance tracker through a synthetic
// street scene and prints how each track was classified.
//
//	track-replay -frames 40 -dropout 0.15 -plot out/residuals.png -chart out/timeline.html
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/instrec/internal/config"
	"github.com/banshee-data/instrec/internal/monitoring"
	"github.com/banshee-data/instrec/internal/recon"
	"github.com/banshee-data/instrec/internal/report"
	"github.com/banshee-data/instrec/internal/tracker"
	"github.com/banshee-data/instrec/internal/tracks"
	"github.com/banshee-data/instrec/internal/version"
)

type options struct {
	frames     int
	seed       int64
	noise      float64
	dropout    float64
	configPath string
	verbose    bool
	plotPath   string
	chartPath  string
}

func main() {
	var opts options
	flag.IntVar(&opts.frames, "frames", 30, "Number of frames to replay")
	flag.Int64Var(&opts.seed, "seed", 1, "Seed for estimator noise and dropouts")
	flag.Float64Var(&opts.noise, "noise", 0.03, "Estimator translation noise (metres, 1 sigma)")
	flag.Float64Var(&opts.dropout, "dropout", 0.1, "Fraction of pose estimates that fail")
	flag.StringVar(&opts.configPath, "config", "", "Tuning config JSON (default: "+config.DefaultConfigPath+" if present)")
	flag.BoolVar(&opts.verbose, "verbose", false, "Log every state machine step")
	debug := flag.Bool("debug", false, "Write tracking debug log to stderr")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.StringVar(&opts.plotPath, "plot", "", "Write residual plot PNG to this path")
	flag.StringVar(&opts.chartPath, "chart", "", "Write state timeline HTML to this path")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("track-replay"))
		return
	}
	if *debug {
		tracks.SetDebugLogger(os.Stderr)
	}
	if err := run(opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path != "" {
		return config.LoadTuningConfig(path)
	}
	cfg, err := config.LoadTuningConfig(config.DefaultConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("%s not found, using built-in defaults", config.DefaultConfigPath)
		return config.EmptyTuningConfig(), nil
	}
	return cfg, err
}

func run(opts options, out io.Writer) error {
	if opts.frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", opts.frames)
	}
	tuning, err := loadTuning(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sc := newScene()
	est := &noisyEstimator{scene: sc, seed: opts.seed, sigma: opts.noise, dropout: opts.dropout}

	var drivers []*recon.CountingDriver
	factory := recon.CountingFactory(func(d *recon.CountingDriver) {
		drivers = append(drivers, d)
	})

	tk := tracker.New(tracker.ConfigFromTuning(tuning), est, factory)
	tk.SetVerbose(opts.verbose)
	rec := report.NewRecorder()
	tk.DebugCollector = rec

	ego := sc.egomotion().Float32()
	for f := 0; f < opts.frames; f++ {
		res, err := tk.ProcessFrame(f, sc.views(f), sc.cameraPose(f).Float32(), ego)
		if err != nil {
			return fmt.Errorf("frame %d: %w", f, err)
		}
		for _, id := range res.NewTracks {
			fmt.Fprintf(out, "frame %3d: new track %d\n", f, id)
		}
		for _, id := range res.Evicted {
			fmt.Fprintf(out, "frame %3d: evicted track %d\n", f, id)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, tk.ASCIIArt())
	fmt.Fprintln(out)

	for _, tr := range tk.Tracks() {
		line := fmt.Sprintf("track %d (%s): %s, %d frames", tr.ID(), tr.ClassName(), tr.StateLabel(), tr.Size())
		if h := tr.Reconstruction(); h != nil {
			line += fmt.Sprintf(", volume %s with %d fused frames", h.VolumeID(), tr.FusedFrames())
		}
		fmt.Fprintln(out, line)
	}
	for _, d := range drivers {
		fmt.Fprintf(out, "volume for track %d: fused %v, decays %v\n", d.TrackID(), d.FusedFrames(), d.Decays())
	}

	st := tk.Stats()
	fmt.Fprintf(out, "frames=%d tracks=%d evicted=%d volumes=%d fused=%d reaps=%d\n",
		st.FramesProcessed, st.TracksCreated, st.TracksEvicted, st.ReconstructionsStarted, st.FramesFused, st.Reaps)

	if opts.plotPath != "" {
		n, err := rec.WriteResidualPlot(opts.plotPath)
		if err != nil {
			return err
		}
		monitoring.Logf("Wrote residual plot for %d tracks to %s", n, opts.plotPath)
	}
	if opts.chartPath != "" {
		if err := writeTimeline(rec, opts.chartPath); err != nil {
			return err
		}
		monitoring.Logf("Wrote state timeline to %s", opts.chartPath)
	}

	return tk.Close()
}

func writeTimeline(rec *report.Recorder, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create timeline: %w", err)
	}
	if err := rec.RenderTimeline(f, "track-replay"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
