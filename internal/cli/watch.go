package cli

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/knitout/internal/presentation/tui"
	"github.com/fsnotify/fsnotify"
)

// RunWatch compiles opts.Path, then recompiles it every time its content
// changes until ctx is done. Compile errors are reported and watching goes
// on. Events for the file are coalesced until it has been quiet for settle.
func RunWatch(ctx context.Context, b *Backend, opts CompileOptions, settle time.Duration, s Streams) error {
	if opts.Path == "-" {
		return errors.New("cannot watch stdin")
	}
	if settle <= 0 {
		settle = 100 * time.Millisecond
	}
	target, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()
	// editors often replace the file, so watch the directory holding it
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.Path, err)
	}
	printSystemMessage(s.Err, "Watching %s.", opts.Path)

	var last [sha256.Size]byte
	recompile := func() bool {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			tui.Status(s.Err, false, err.Error())
			return true
		}
		sum := sha256.Sum256(data)
		if sum == last {
			return true
		}
		last = sum
		res, err := RunCompile(ctx, b, opts, s)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			tui.Status(s.Err, false, fmt.Sprintf("%s: %v", opts.Path, err))
			return true
		}
		tui.Status(s.Err, true, fmt.Sprintf("%s: %d instructions", opts.Path, res.Artifact.Stats.Instructions))
		return true
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			printSystemMessage(s.Err, "Stopped watching %s.", opts.Path)
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer.Reset(settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			tui.Status(s.Err, false, fmt.Sprintf("%s: watcher: %v", opts.Path, err))

		case <-timer.C:
			if !recompile() {
				printSystemMessage(s.Err, "Stopped watching %s.", opts.Path)
				return nil
			}
		}
	}
}
