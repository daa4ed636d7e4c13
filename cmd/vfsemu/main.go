package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"vfsemu/internal/fs"
	"vfsemu/internal/logging"
	"vfsemu/internal/shell"
	"vfsemu/internal/source"
	"vfsemu/internal/state"
	"vfsemu/internal/vfs"
)

var (
	logger = logging.GetLogger()
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	vfsPath := flag.String("vfs-path", envOr("VFSEMU_VFS_PATH", ""), "XML document to load (local path, .gz or s3://bucket/key)")
	scriptPath := flag.String("script", envOr("VFSEMU_SCRIPT", ""), "Command script to replay before the interactive prompt")
	stateFile := flag.String("state", "", "State file remembering the current directory between runs")
	mountPoint := flag.String("mount", "", "Mount the tree read-only at this directory")
	watch := flag.Bool("watch", false, "Reload the tree when the local VFS document changes")
	interval := flag.Duration("interval", shell.DefaultInterval, "Pause between script commands")
	delay := flag.Duration("delay", shell.DefaultStartDelay, "Pause before the first script command")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	if *verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options{
		vfsPath:    *vfsPath,
		scriptPath: *scriptPath,
		stateFile:  *stateFile,
		mountPoint: *mountPoint,
		watch:      *watch,
		replay:     shell.ReplayOptions{StartDelay: *delay, Interval: *interval},
	}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("%v", err)
		os.Exit(1)
	}
	logger.Info("Clean shutdown complete")
}

type options struct {
	vfsPath    string
	scriptPath string
	stateFile  string
	mountPoint string
	watch      bool
	replay     shell.ReplayOptions
}

func newOpener() (*source.Mux, error) {
	mux := &source.Mux{Local: source.Local()}

	endpoint := os.Getenv("VFSEMU_S3_ENDPOINT")
	if endpoint == "" {
		return mux, nil
	}
	insecure, _ := strconv.ParseBool(os.Getenv("VFSEMU_S3_INSECURE"))
	remote, err := source.NewS3(source.S3Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("VFSEMU_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("VFSEMU_S3_SECRET_KEY"),
		Insecure:  insecure,
	})
	if err != nil {
		return nil, err
	}
	mux.Remote = remote
	logger.Debug("S3 sources enabled via %s", endpoint)
	return mux, nil
}

func run(ctx context.Context, opts options) error {
	logger.Info("Starting VFS emulator...")
	logger.Debug("VFS path: %q", opts.vfsPath)
	logger.Debug("Script: %q", opts.scriptPath)
	logger.Debug("State file: %q", opts.stateFile)
	logger.Debug("Mount point: %q", opts.mountPoint)

	opener, err := newOpener()
	if err != nil {
		return err
	}

	session, report, err := vfs.NewSessionFromSource(ctx, opener, opts.vfsPath)
	switch {
	case err != nil:
		fmt.Printf("Error loading VFS from %s: %v\n", opts.vfsPath, err)
		fmt.Println("Using the default filesystem instead")
	case opts.vfsPath != "":
		fmt.Printf("Loaded %s: %d directories, %d files\n", opts.vfsPath, report.Directories, report.Files)
		for _, w := range report.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
	}
	loaded := opts.vfsPath
	if err != nil {
		loaded = ""
	}

	var stateManager *state.Manager
	if opts.stateFile != "" {
		stateManager, err = state.NewManager(opts.stateFile)
		if err != nil {
			return fmt.Errorf("failed to initialize state manager: %w", err)
		}
		saved, err := stateManager.LoadState()
		if err != nil {
			logger.Warn("Ignoring unreadable state: %v", err)
		} else if state.Restore(session, saved, loaded) {
			fmt.Printf("Resumed in %s\n", session.CurrentPath())
		}
		defer func() {
			if err := stateManager.SaveState(state.Capture(session, loaded)); err != nil {
				logger.Error("Failed to save state: %v", err)
			}
		}()
	}

	if opts.mountPoint != "" {
		cleanMount := filepath.Clean(opts.mountPoint)
		mount := fs.NewVFSMount(session)
		if err := mount.Mount(cleanMount); err != nil {
			return fmt.Errorf("mount failed: %w", err)
		}
		fmt.Printf("Mounted read-only at %s\n", cleanMount)
		defer func() {
			if err := mount.Unmount(cleanMount); err != nil {
				logger.Error("Unmount error: %v", err)
			}
		}()
	}

	if opts.watch && loaded != "" {
		go func() {
			if err := vfs.Watch(ctx, session, opener, loaded); err != nil {
				logger.Warn("Not watching %s: %v", loaded, err)
			}
		}()
	}

	sh := shell.New(session, os.Stdout)
	fmt.Println("VFS Emulator started")
	sh.Help()

	if opts.scriptPath != "" {
		commands, err := shell.LoadScript(ctx, opener, opts.scriptPath)
		if err != nil {
			fmt.Printf("Error loading script: %v\n", err)
		} else {
			exit, err := sh.Replay(ctx, commands, opts.replay)
			if err != nil || exit {
				return err
			}
		}
	}

	start := time.Now()
	err = sh.Run(ctx, os.Stdin)
	logger.Debug("Interactive session ended after %s", time.Since(start).Round(time.Second))
	return err
}
