// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"freqlab/cmd"
	"freqlab/internal/analysis"
	"freqlab/internal/config"
	"freqlab/internal/lab"
	applog "freqlab/internal/log"
	"freqlab/internal/pipeline"
	"freqlab/internal/transport"
	"freqlab/internal/transport/udp"
	"freqlab/internal/tui"
	"freqlab/pkg/build"
)

// main is the entry point for the spectrum editor.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase:
//   - Initialize build information
//   - Parse command line arguments
//   - Load configuration and set the log level
//   - Execute batch commands (apply, noise) if requested
//
// 2. Concurrent Phase:
//   - Start the recompute worker and result transports
//   - Load the image
//   - Run the terminal UI until the user quits or a signal arrives
//
// 3. Shutdown Phase:
//   - Stop transports and the recompute worker in reverse start order
func main() {
	// ==================== STARTUP PHASE ====================

	if err := build.Initialize(); err != nil {
		applog.Warnf("Build: %v", err)
	}

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	// Help or version was printed.
	if opts.Command == "" {
		return
	}

	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if err := opts.Override(cfg); err != nil {
		applog.Fatalf("invalid configuration: %v", err)
	}
	applog.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.Command {
	case cmd.CommandApply:
		paths, err := cmd.RunApply(ctx, cfg, opts)
		if err != nil {
			applog.Fatalf("%v", err)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return
	case cmd.CommandNoise:
		paths, err := cmd.RunNoise(cfg, opts)
		if err != nil {
			applog.Fatalf("%v", err)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return
	}

	if err := runEditor(ctx, cfg, opts.Image); err != nil {
		applog.Fatalf("%v", err)
	}
}

// runEditor runs the interactive session on one image.
func runEditor(ctx context.Context, cfg *config.Config, image string) error {
	// The terminal belongs to the UI; logs go to a file.
	logPath := filepath.Join(os.TempDir(), build.GetBuildFlags().Name+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	applog.SetOutput(logFile)
	defer applog.SetOutput(os.Stderr)

	// ==================== CONCURRENT PHASE ====================

	var publishers []pipeline.Publisher
	var closers []func() error

	// Shutdown runs in reverse order of startup.
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				applog.Errorf("Shutdown: %v", err)
			}
		}
		applog.Infof("Shutdown: Complete")
	}()

	if cfg.Debug {
		lt := transport.NewLoggingTransport()
		publishers = append(publishers,
			transport.NewResultPublisher(lt, cfg.Scaling()),
			pipeline.PublisherFunc(func(r *pipeline.Result) {
				bands, err := analysis.BandEnergy(r.Snapshot.Spectrum, r.Snapshot.Mask, analysis.DefaultBands())
				if err != nil {
					applog.Warnf("Debug: Band energy for result %d: %v", r.Seq, err)
					return
				}
				if err := lt.Send(analysis.Summary(bands)); err != nil {
					applog.Warnf("Debug: Send band summary for result %d: %v", r.Seq, err)
				}
			}))
	}
	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress, cfg.Transport.WebSocketRate)
		ws.Start()
		publishers = append(publishers, transport.NewResultPublisher(ws, cfg.Scaling()))
		closers = append(closers, ws.Close)
	}

	engine, err := lab.NewEngine(lab.Options{
		Pipeline:   cfg.PipelineConfig(),
		Scaling:    cfg.Scaling(),
		Publishers: publishers,
	})
	if err != nil {
		return err
	}
	engine.Start()
	closers = append(closers, engine.Close)

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		pub, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, cfg.Transport.UDPMaxPayloadBytes, cfg.Scaling(), sender, engine)
		if err != nil {
			sender.Close()
			return err
		}
		pub.Start()
		closers = append(closers, sender.Close, pub.Close)
	}

	if err := engine.LoadImage(image); err != nil {
		return err
	}

	model, err := tui.NewEditorModel(engine, cfg.Tool(), cfg.EditParams(), cfg.Editor.CursorStep, cfg.Export.OutputDir)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	uiDone := make(chan struct{})
	g.Go(func() error {
		defer close(uiDone)
		return tui.Run(gctx, model)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			applog.Infof("Shutdown: Signal received")
		case <-uiDone:
		}
		return nil
	})
	return g.Wait()
}
