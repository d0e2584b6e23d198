package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"roitracker/config"
	"roitracker/eventlog"
	"roitracker/metrics"
	"roitracker/recording"
	"roitracker/session"
	"roitracker/tracking"
	"roitracker/tracking/cvtracker"
	"roitracker/types"
	"roitracker/ui"
	"roitracker/video"
)

type options struct {
	configPath       string
	tracker          string
	output           string
	log              string
	roiPercent       float64
	customROI        bool
	confirmCustomROI bool
	maxLostFrames    int
	debug            bool
	metricsAddr      string
	listTrackers     bool
	replay           string
	args             []string
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.tracker, "tracker", "", "tracker variant ("+strings.Join(cvtracker.Variants(), ", ")+")")
	fs.StringVar(&o.output, "output", "", "annotated output video path")
	fs.StringVar(&o.log, "log", "", "event log path")
	fs.Float64Var(&o.roiPercent, "roi-percent", 0, "click region size as a percentage of the frame")
	fs.BoolVar(&o.customROI, "custom-roi", false, "draw the region instead of clicking its centre")
	fs.BoolVar(&o.confirmCustomROI, "confirm-custom-roi", false, "ask for confirmation after drawing a region")
	fs.IntVar(&o.maxLostFrames, "max-lost-frames", 0, "return to region selection after this many lost frames (0 disables)")
	fs.BoolVar(&o.debug, "debug", false, "debug logging and on-screen log panel")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&o.listTrackers, "list-trackers", false, "print the available tracker variants and exit")
	fs.StringVar(&o.replay, "replay", "", "print a summary of an existing event log and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <video file or camera id>\n", os.Args[0])
		fs.PrintDefaults()
	}
	err := fs.Parse(args)
	o.args = fs.Args()
	return o, err
}

// applyFlags overrides file values with the flags given on the command line
func applyFlags(fs *flag.FlagSet, cfg *config.Config, o options) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tracker":
			cfg.Session.Tracker = o.tracker
		case "output":
			cfg.Session.OutputPath = o.output
		case "log":
			cfg.Session.LogPath = o.log
		case "roi-percent":
			cfg.Session.ROIPercent = o.roiPercent
		case "custom-roi":
			cfg.Session.CustomROI = o.customROI
		case "confirm-custom-roi":
			cfg.Session.ConfirmCustomROI = o.confirmCustomROI
		case "max-lost-frames":
			cfg.Session.MaxLostFrames = o.maxLostFrames
		case "debug":
			cfg.Session.Debug = o.debug
		case "metrics-addr":
			cfg.Session.MetricsAddr = o.metricsAddr
		}
	})
}

func main() {
	o, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(o); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.listTrackers {
		for _, name := range cvtracker.Variants() {
			fmt.Println(name)
		}
		return nil
	}
	if o.replay != "" {
		return replay(o.replay)
	}
	if len(o.args) < 1 {
		flag.Usage()
		return errors.New("missing video file or camera id")
	}
	device := o.args[0]

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	applyFlags(flag.CommandLine, &cfg, o)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	level := slog.LevelInfo
	if cfg.Session.Debug {
		level = slog.LevelDebug
	}
	logger, debugLog := NewLogger(level, cfg.UI.MaxDebugLogs)
	debugLog.SetEnabled(cfg.Session.Debug)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker, err := cvtracker.New(cfg.Session.Tracker)
	if err != nil {
		return err
	}
	delegate := tracking.NewDelegate(tracker)

	m := metrics.New()
	if cfg.Session.MetricsAddr != "" {
		srv := serveMetrics(cfg.Session.MetricsAddr, m, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	events, err := eventlog.Create(cfg.Session.LogPath)
	if err != nil {
		_ = delegate.Close()
		return err
	}

	capture := video.NewCapture(device, cfg.Video.FPS, logger)
	recorder := recording.NewRecorder(cfg.Session.OutputPath, cfg.Video, logger)

	window := ui.NewWindow(ui.Options{
		Config:    cfg.UI,
		CustomROI: cfg.Session.CustomROI,
		Debug:     debugLog,
		Recording: recorder,
		Logger:    logger,
	})
	defer window.Close()

	controller, err := session.New(cfg.Session, session.Deps{
		Source:   capture,
		Delegate: delegate,
		Sink:     recorder,
		Log:      events,
		Input:    window,
		Renderer: ui.NewRegionRenderer(types.RegionColor, cfg.UI.RegionThickness),
		Display:  window,
		Logger:   logger,
		Metrics:  m,
	})
	if err != nil {
		_ = events.Close()
		_ = delegate.Close()
		return err
	}

	ui.PrintInstructions(os.Stdout, cfg.Session.CustomROI)
	if err := controller.Run(ctx); err != nil {
		return err
	}

	logger.Info("outputs written",
		"log", cfg.Session.LogPath, "video", cfg.Session.OutputPath,
		"recorded", recorder.Duration().Round(time.Second).String(),
		"events", events.Rows())
	return nil
}

func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// replay prints a summary of an event log written by an earlier session
func replay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open event log")
	}
	defer f.Close()

	events, err := eventlog.Read(f)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	fmt.Println(eventlog.Summarize(events))
	return nil
}
