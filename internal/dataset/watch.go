package dataset

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/churnsight/churnsight/internal/config"
)

// Watch monitors the two CSV files named in cfg and calls onChange with a
// freshly loaded Dataset each time either file is written. It runs until
// ctx is cancelled.
//
// If a reload fails (missing column, malformed row), the error is logged
// and the previous dataset remains active — Watch does not call onChange.
func Watch(ctx context.Context, cfg config.DataConfig, onChange func(*Dataset)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	paths := []string{cfg.PredictionsPath, cfg.AttributionsPath}
	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			return err
		}
	}

	slog.Info("dataset: watching for changes",
		"predictions_path", cfg.PredictionsPath,
		"attributions_path", cfg.AttributionsPath,
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only reload on write or create events. Export pipelines often
			// replace files via rename (atomic save), so also catch Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			ds, err := Load(cfg)
			if err != nil {
				slog.Error("dataset: reload failed — keeping previous dataset",
					"path", event.Name, "err", err)
				continue
			}

			slog.Info("dataset: reloaded", "path", event.Name, "employees", ds.Predictions.Len())
			onChange(ds)

			// Re-add both files in case an atomic save replaced an inode.
			for _, p := range paths {
				_ = watcher.Add(p)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("dataset: watcher error", "err", err)
		}
	}
}
