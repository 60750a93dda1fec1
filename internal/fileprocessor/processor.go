// Package fileprocessor handles program loading and runs the selected mode.
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/wavwriter"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile loads the program and lists, runs headless or runs it
// interactively depending on the options.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, emulatorOpts options.Emulator) error {
	image, err := loader.New(logger).Load(opts.Input, opts.Truncate)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	if !opts.List {
		logger.Info("Program loaded",
			log.String("file", opts.Input),
			log.Int("size", len(image)),
			log.Int("burst", emulatorOpts.Burst))
	}

	switch {
	case opts.List:
		return List(os.Stdout, image)
	case opts.Headless:
		return RunHeadless(ctx, logger, os.Stdout, image, opts, emulatorOpts)
	default:
		return runTerminal(ctx, logger, image, opts, emulatorOpts)
	}
}

// List writes the disassembly listing of the program image.
func List(w io.Writer, image []byte) error {
	if err := chip8.List(w, image, chip8.ProgramStart); err != nil {
		return fmt.Errorf("listing program: %w", err)
	}
	return nil
}

// RunHeadless runs the program for the configured number of cycles and
// writes the final frame as text.
func RunHeadless(ctx context.Context, logger *log.Logger, w io.Writer, image []byte,
	opts options.Program, emulatorOpts options.Emulator) (rerr error) {

	r := runner.New(logger, image, emulatorOpts)

	recorder, err := createRecorder(opts, emulatorOpts)
	if err != nil {
		return err
	}
	if recorder != nil {
		r.SetRecorder(recorder)
		defer closeRecorder(logger, recorder, &rerr)
	}

	result, err := r.RunHeadless(ctx)
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	logger.Info("Headless run finished",
		log.Int("cycles", int(result.Cycles)),
		log.Int("draws", result.Draws),
		log.Hex("pc", result.PC))

	if _, err := fmt.Fprint(w, runner.RenderText(result.Frame)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// runTerminal runs the program in the terminal user interface until the
// user quits or the context is cancelled.
func runTerminal(ctx context.Context, logger *log.Logger, image []byte,
	opts options.Program, emulatorOpts options.Emulator) (rerr error) {

	term, err := frontend.New(filepath.Base(opts.Input))
	if err != nil {
		return fmt.Errorf("starting terminal: %w", err)
	}
	defer term.Close()

	r := runner.New(logger, image, emulatorOpts)
	r.EnableAutoRelease(emulatorOpts.KeyHold)

	recorder, err := createRecorder(opts, emulatorOpts)
	if err != nil {
		return err
	}
	if recorder != nil {
		r.SetRecorder(recorder)
		defer closeRecorder(logger, recorder, &rerr)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	runErr := make(chan error, 1)
	go func() {
		err := r.Run(runCtx, term, term.Keys())
		stopLoop(loopDone, term.Quit)
		runErr <- err
	}()

	loopErr := term.MainLoop()
	close(loopDone)
	cancel()
	err = <-runErr

	if loopErr != nil {
		return loopErr
	}
	if ctx.Err() != nil {
		return fmt.Errorf("running program: %w", ctx.Err())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// stopLoop asks the terminal event loop to quit, unless it already
// returned. Quit requests after the loop ended are never consumed.
func stopLoop(loopDone <-chan struct{}, quit func()) {
	select {
	case <-loopDone:
	default:
		quit()
	}
}

func createRecorder(opts options.Program, emulatorOpts options.Emulator) (*wavwriter.WavWriter, error) {
	if opts.Wav == "" {
		return nil, nil
	}

	recorder, err := wavwriter.New(opts.Wav, options.DefaultWavRate, options.DefaultToneFreq, emulatorOpts.Hz)
	if err != nil {
		return nil, fmt.Errorf("creating sound recorder: %w", err)
	}
	return recorder, nil
}

func closeRecorder(logger *log.Logger, recorder *wavwriter.WavWriter, rerr *error) {
	if err := recorder.Close(); err != nil {
		if *rerr == nil {
			*rerr = fmt.Errorf("writing sound file: %w", err)
		}
		return
	}
	logger.Info("Sound recorded", log.Int("samples", recorder.Samples()))
}

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))
}
