// Package datasource discovers, validates and loads stage snapshots from the
// file formats hosts export: SQLite databases, Excel workbooks and JSON
// payloads. When several candidates exist it selects the freshest valid one.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database with a stages table
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeXLSX is an Excel workbook whose first sheet holds the rows
	SourceTypeXLSX SourceType = "xlsx"
	// SourceTypeJSON is a JSON snapshot (host payload or flat rows)
	SourceTypeJSON SourceType = "json"
)

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite = 100
	PriorityXLSX   = 80
	PriorityJSON   = 50
)

// Sentinel errors.
var (
	ErrUnsupportedSource = errors.New("unsupported snapshot source")
	ErrNoSources         = errors.New("no valid snapshot sources")
)

// Extensions lists every file extension a source can have.
var Extensions = []string{".db", ".sqlite", ".sqlite3", ".xlsx", ".json"}

// DataSource represents a potential snapshot source
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// RowCount is the number of snapshot rows (set during validation)
	RowCount int `json:"row_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, rows=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.RowCount, status)
}

// TypeForPath maps a file extension to its source type.
func TypeForPath(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	case ".xlsx":
		return SourceTypeXLSX, nil
	case ".json":
		return SourceTypeJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedSource)
	}
}

func priorityFor(t SourceType) int {
	switch t {
	case SourceTypeSQLite:
		return PrioritySQLite
	case SourceTypeXLSX:
		return PriorityXLSX
	default:
		return PriorityJSON
	}
}

// SourceFromPath describes a single file without validating it.
func SourceFromPath(path string) (DataSource, error) {
	t, err := TypeForPath(path)
	if err != nil {
		return DataSource{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("stat snapshot source: %w", err)
	}
	return DataSource{
		Type:     t,
		Path:     abs,
		Priority: priorityFor(t),
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, nil
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is scanned for sources (uses cwd if empty)
	Dir string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds all snapshot files in a directory, freshest first.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", dir))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() || skipName(e.Name()) {
			continue
		}
		t, err := TypeForPath(e.Name())
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, e.Name())
		sources = append(sources, DataSource{
			Type:     t,
			Path:     path,
			Priority: priorityFor(t),
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found %s: %s (mod=%s)", t, path, info.ModTime().Format(time.RFC3339)))
		}
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Path, err))
			}
		}
	}

	if opts.ValidateAfterDiscovery && !opts.IncludeInvalid {
		var validSources []DataSource
		for _, s := range sources {
			if s.Valid {
				validSources = append(validSources, s)
			}
		}
		sources = validSources
	}

	sortSources(sources)

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

// sortSources orders by mod time (newest first), then priority, then path.
func sortSources(sources []DataSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if !sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].ModTime.After(sources[j].ModTime)
		}
		if sources[i].Priority != sources[j].Priority {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].Path < sources[j].Path
	})
}

// skipName filters backups, editor temp files and Excel lock files.
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "~$") ||
		strings.Contains(name, ".backup") ||
		strings.Contains(name, ".orig") ||
		strings.HasSuffix(name, "-journal") ||
		strings.HasSuffix(name, "-wal")
}
