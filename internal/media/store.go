// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/metrics"
)

var (
	// ErrInvalidFilename rejects names that cannot live in the media folder.
	ErrInvalidFilename = errors.New("invalid media filename")

	// ErrTooLarge rejects media above the configured size limit.
	ErrTooLarge = errors.New("media exceeds size limit")

	// ErrNotFound is returned for names absent from the media folder.
	ErrNotFound = errors.New("media file not found")
)

// Store results, also used as metric labels.
const (
	resultNew          = "new"
	resultDeduplicated = "deduplicated"
	resultRenamed      = "renamed"
)

// Store is the media folder.
type Store struct {
	fs       afero.Fs
	dir      string
	index    *Index
	maxBytes int64

	// mu serializes writes so name allocation and indexing stay consistent.
	mu sync.Mutex

	suffix func() string
}

// NewStore creates the media folder if needed. maxBytes <= 0 disables the
// size limit.
func NewStore(fs afero.Fs, dir string, index *Index, maxBytes int64) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}
	return &Store{
		fs:       fs,
		dir:      dir,
		index:    index,
		maxBytes: maxBytes,
		suffix:   func() string { return strings.ToLower(ulid.Make().String()) },
	}, nil
}

// StoreMediaFile writes data under filename, or under the name the folder
// already uses for identical content, or under a fresh name when filename
// is taken by different content. It returns the name used.
func (s *Store) StoreMediaFile(ctx context.Context, filename string, data []byte) (string, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), s.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok, err := s.index.Lookup(hash); err != nil {
		return "", err
	} else if ok && s.hasContent(existing, hash) {
		metrics.RecordMediaStored(resultDeduplicated, 0)
		return existing, nil
	}

	result := resultNew
	if exists, err := afero.Exists(s.fs, s.path(name)); err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", name, err)
	} else if exists {
		if s.hasContent(name, hash) {
			if err := s.index.Put(hash, name); err != nil {
				return "", err
			}
			metrics.RecordMediaStored(resultDeduplicated, 0)
			return name, nil
		}
		ext := path.Ext(name)
		name = strings.TrimSuffix(name, ext) + "-" + s.suffix() + ext
		result = resultRenamed
	}

	if err := writeFileAtomic(s.fs, s.path(name), data); err != nil {
		return "", err
	}
	if err := s.index.Put(hash, name); err != nil {
		return "", err
	}

	metrics.RecordMediaStored(result, len(data))
	logging.Ctx(ctx).Debug().
		Str("requested", filename).
		Str("stored", name).
		Str("result", result).
		Int("bytes", len(data)).
		Msg("Stored media file")
	return name, nil
}

// RetrieveMediaFile returns the bytes stored under name.
func (s *Store) RetrieveMediaFile(_ context.Context, filename string) ([]byte, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// MediaFileNames lists stored names matching a glob pattern ("*" for all),
// sorted.
func (s *Store) MediaFileNames(_ context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list media directory: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if ok, _ := doublestar.Match(pattern, e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteMediaFile removes name. Deleting a missing file is not an error.
func (s *Store) DeleteMediaFile(_ context.Context, filename string) error {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return s.index.Forget(name)
}

// Reindex hashes every file in the folder into the index. Run at startup
// when the index lives in memory.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list media directory: %w", err)
	}

	count := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		hash, err := s.fileHash(e.Name())
		if err != nil {
			logging.Warn().Err(err).Str("file", e.Name()).Msg("Skipping unreadable media file")
			continue
		}
		if err := s.index.Put(hash, e.Name()); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) hasContent(name, hash string) bool {
	got, err := s.fileHash(name)
	return err == nil && got == hash
}

func (s *Store) fileHash(name string) (string, error) {
	data, err := afero.ReadFile(s.fs, s.path(name))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SanitizeFilename reduces a requested name to a safe base name in NFC.
// Directory parts are dropped and characters that are unsafe on common
// filesystems are removed.
func SanitizeFilename(filename string) (string, error) {
	name := norm.NFC.String(strings.ReplaceAll(filename, `\`, "/"))
	name = path.Base(name)

	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`/:*?"<>|`, r):
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return name, nil
}
