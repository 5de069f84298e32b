package datasource

import (
	"fmt"
	"os"
	"time"

	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/metrics"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

// Load resolves path to a snapshot. A file is loaded directly; a directory
// (or "" for the working directory) is scanned and its freshest valid source
// is loaded.
func Load(path string) (*snapshot.Snapshot, DataSource, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, DataSource{}, fmt.Errorf("snapshot source: %w", err)
		}
		if !info.IsDir() {
			src, err := SourceFromPath(path)
			if err != nil {
				return nil, DataSource{}, err
			}
			snap, err := LoadFromSource(src)
			if err != nil {
				return nil, src, err
			}
			src.Valid = true
			return snap, src, nil
		}
	}
	return loadSmart(path)
}

// loadSmart discovers sources, validates, selects the best, and loads from it.
func loadSmart(dir string) (*snapshot.Snapshot, DataSource, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		Verbose:                debug.Enabled(),
		Logger:                 func(msg string) { debug.Log("datasource: %s", msg) },
	})
	if err != nil {
		return nil, DataSource{}, err
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, DataSource{}, err
	}

	snap, err := LoadFromSource(best)
	return snap, best, err
}

// LoadFromSource loads a snapshot from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(source DataSource) (*snapshot.Snapshot, error) {
	defer metrics.TimerWithCallback(metrics.SnapshotLoad, func(d time.Duration) {
		debug.LogTiming("load "+source.Path, d)
	})()

	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadSnapshot()

	case SourceTypeXLSX:
		return ReadXLSX(source.Path)

	case SourceTypeJSON:
		return snapshot.LoadFile(source.Path)

	default:
		return nil, fmt.Errorf("source type %q: %w", source.Type, ErrUnsupportedSource)
	}
}
