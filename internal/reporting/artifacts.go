// Package reporting persists run reports as timestamped JSON artifacts and
// renders them into derived forms: plain-language interpretation, JUnit XML,
// and best-first rankings.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/toolgauge/toolgauge/internal/models"
)

const (
	artifactPrefix     = "model_capabilities_"
	artifactTimeLayout = "20060102_150405"
)

// Artifact identifies one saved report on disk.
type Artifact struct {
	Path      string
	Timestamp time.Time
}

// ID returns the artifact's identifier: the filename without extensions.
func (a Artifact) ID() string {
	name := filepath.Base(a.Path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, ".json")
}

// Save writes the report into dir under a name derived from the report's own
// timestamp, so re-saving the same report overwrites rather than duplicates.
// With compress set the artifact is gzipped and named .json.gz. Returns the
// path written.
func Save(dir string, report *models.Report, compress bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	name := artifactPrefix + report.Summary.Timestamp.Format(artifactTimeLayout) + ".json"
	path := filepath.Join(dir, name)

	if !compress {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		return path, nil
	}

	path += ".gz"
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("compressing %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("compressing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ListArtifacts returns the saved reports in dir, newest first. A missing
// directory is not an error; it just holds no artifacts yet.
func ListArtifacts(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseArtifactName(entry.Name())
		if !ok {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: ts,
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Timestamp.After(artifacts[j].Timestamp)
	})
	return artifacts, nil
}

// parseArtifactName extracts the timestamp from a report filename. Files that
// do not follow the artifact naming scheme are ignored.
func parseArtifactName(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, artifactPrefix)
	if !ok {
		return time.Time{}, false
	}
	rest = strings.TrimSuffix(rest, ".gz")
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(artifactTimeLayout, rest)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// LoadReport reads a saved report, transparently decompressing .gz artifacts.
func LoadReport(path string) (*models.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var report models.Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &report, nil
}
