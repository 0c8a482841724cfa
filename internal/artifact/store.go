// Package artifact stores retrieved backup files under a date-partitioned
// layout: <root>/<YYYY-MM-DD>/<console>_<originalName>. Files are never
// rewritten; a name collision gets a numeric suffix instead.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/model"
)

// Mirror replicates a stored artifact to secondary storage. Mirror failures
// are logged and never fail the backup.
type Mirror interface {
	Upload(ctx context.Context, key string, data []byte) error
}

type Store struct {
	root   string
	mirror Mirror
	logger zerolog.Logger
}

// NewStore creates the artifact store. mirror may be nil.
func NewStore(root string, mirror Mirror, logger zerolog.Logger) *Store {
	return &Store{
		root:   root,
		mirror: mirror,
		logger: logger.With().Str("component", "artifact-store").Logger(),
	}
}

// Save writes one retrieved file under today's date folder and returns its
// record.
func (s *Store) Save(ctx context.Context, consoleName, originalName string, data []byte) (*model.Artifact, error) {
	now := time.Now()
	day := now.Format("2006-01-02")
	dir := filepath.Join(s.root, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
	}

	name := consoleName + "_" + sanitizeName(originalName)
	path, err := uniquePath(dir, name)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write artifact %s: %w", path, err)
	}

	art := &model.Artifact{
		ID:           uuid.New().String(),
		ConsoleName:  consoleName,
		OriginalName: originalName,
		Path:         path,
		SizeBytes:    int64(len(data)),
		RetrievedAt:  now,
	}

	if s.mirror != nil {
		key := day + "/" + filepath.Base(path)
		if err := s.mirror.Upload(ctx, key, data); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("artifact mirror upload failed")
		}
	}

	return art, nil
}

// List walks the backup root and returns every stored artifact, newest day
// first. knownConsoles disambiguates attribution: console names may contain
// underscores, so the longest registered name prefix wins.
func (s *Store) List(knownConsoles []string) ([]model.Artifact, error) {
	days, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup root %s: %w", s.root, err)
	}

	var out []model.Artifact
	for _, day := range days {
		if !day.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, day.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read artifact dir %s: %w", dir, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			console, original := splitName(f.Name(), knownConsoles)
			out = append(out, model.Artifact{
				ConsoleName:  console,
				OriginalName: original,
				Path:         filepath.Join(dir, f.Name()),
				SizeBytes:    info.Size(),
				RetrievedAt:  info.ModTime(),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RetrievedAt.After(out[j].RetrievedAt) })
	return out, nil
}

// uniquePath returns dir/name, or dir/name with a numeric suffix before the
// extension when the file already exists.
func uniquePath(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	ext := extension(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i < 1000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free artifact name for %s", name)
}

// extension handles the vendor's compound ".tar.gz" suffix as one unit.
func extension(name string) string {
	if strings.HasSuffix(name, ".tar.gz") {
		return ".tar.gz"
	}
	return filepath.Ext(name)
}

func splitName(stored string, known []string) (console, original string) {
	best := ""
	for _, name := range known {
		if len(name) > len(best) && strings.HasPrefix(stored, name+"_") {
			best = name
		}
	}
	if best != "" {
		return best, stored[len(best)+1:]
	}
	// Files from consoles since removed from the registry fall back to the
	// first underscore boundary.
	if i := strings.Index(stored, "_"); i > 0 {
		return stored[:i], stored[i+1:]
	}
	return "", stored
}

// sanitizeName strips anything that could escape the date folder from a
// vendor-assigned file name.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "")
	var b bytes.Buffer
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "backup"
	}
	return b.String()
}
