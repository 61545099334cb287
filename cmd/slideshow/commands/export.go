package commands

import (
	"context"
	"fmt"

	"github.com/haivivi/slideshow/pkg/cli"
	"github.com/haivivi/slideshow/pkg/storage"
)

// openExportStore opens the archive destination described by e.
func openExportStore(ctx context.Context, e cli.ExportConfig) (storage.FileStore, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	switch e.Kind {
	case cli.ExportS3:
		return storage.NewS3FromEnv(ctx, e.Region, e.Bucket, e.Prefix)
	case cli.ExportLocal, "":
		dir := e.Dir
		if dir == "" {
			dir = "."
		}
		store, err := storage.NewLocal(dir)
		if err != nil {
			return nil, fmt.Errorf("export dir %s: %w", dir, err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown export kind %q", e.Kind)
}
