package service

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	archiveFileName = "uploaded.zip"
	filesDirName    = "files"
)

// ArchiveServiceConfig bounds what a single upload may expand to.
type ArchiveServiceConfig struct {
	ScratchDir           string
	MaxEntries           int
	MaxUncompressedBytes int64
}

// ArchiveService expands uploaded zip archives into scratch directories.
type ArchiveService struct {
	scratchDir string
	maxEntries int
	maxBytes   int64
	logger     *slog.Logger
}

// Scratch is the temporary tree of one upload. Close removes it.
type Scratch struct {
	dir   string
	Root  string // Directory the archive entries were expanded into
	Files int    // Number of regular files expanded
	once  sync.Once
	err   error
}

// Close removes the scratch directory. It is safe to call more than once.
func (s *Scratch) Close() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		s.err = os.RemoveAll(s.dir)
	})
	return s.err
}

// Dir returns the top-level scratch directory.
func (s *Scratch) Dir() string {
	return s.dir
}

func NewArchiveService(config ArchiveServiceConfig, logger *slog.Logger) *ArchiveService {
	return &ArchiveService{
		scratchDir: config.ScratchDir,
		maxEntries: config.MaxEntries,
		maxBytes:   config.MaxUncompressedBytes,
		logger:     logger,
	}
}

// Unpack writes the archive to a fresh scratch directory and expands it.
// On any failure the scratch directory is removed and an *ArchiveError is returned.
func (s *ArchiveService) Unpack(data []byte) (*Scratch, error) {
	if len(data) == 0 {
		return nil, &ArchiveError{Reason: "empty upload"}
	}
	dir, err := os.MkdirTemp(s.scratchDir, "docqa-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	scratch := &Scratch{dir: dir, Root: filepath.Join(dir, filesDirName)}

	if err := s.expand(scratch, data); err != nil {
		if cerr := scratch.Close(); cerr != nil {
			s.logger.Warn("Failed to remove scratch directory",
				slog.String("dir", dir),
				slog.String("error", cerr.Error()))
		}
		return nil, err
	}

	s.logger.Debug("Archive expanded",
		slog.String("dir", dir),
		slog.Int("files", scratch.Files),
		slog.Int("archive_size", len(data)))
	return scratch, nil
}

func (s *ArchiveService) expand(scratch *Scratch, data []byte) error {
	zipPath := filepath.Join(scratch.dir, archiveFileName)
	if err := os.WriteFile(zipPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := os.MkdirAll(scratch.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return &ArchiveError{Reason: "not a readable zip archive", Err: err}
	}
	defer reader.Close()

	if s.maxEntries > 0 && len(reader.File) > s.maxEntries {
		return &ArchiveError{Reason: fmt.Sprintf("archive has %d entries, limit is %d", len(reader.File), s.maxEntries)}
	}

	var written int64
	for _, entry := range reader.File {
		target, err := entryTarget(scratch.Root, entry.Name)
		if err != nil {
			return &ArchiveError{Reason: "unsafe entry path", Err: err}
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", entry.Name, err)
			}
			continue
		}
		if !entry.Mode().IsRegular() {
			s.logger.Debug("Skipping non-regular archive entry", slog.String("entry", entry.Name))
			continue
		}
		n, err := s.writeEntry(entry, target, written)
		written += n
		if err != nil {
			return err
		}
		scratch.Files++
	}
	return nil
}

func (s *ArchiveService) writeEntry(entry *zip.File, target string, written int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", entry.Name, err)
	}
	src, err := entry.Open()
	if err != nil {
		return 0, &ArchiveError{Reason: "corrupt entry " + entry.Name, Err: err}
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", entry.Name, err)
	}
	defer dst.Close()

	var reader io.Reader = src
	if s.maxBytes > 0 {
		// One byte past the budget is enough to detect an overflow.
		reader = io.LimitReader(src, s.maxBytes-written+1)
	}
	n, err := io.Copy(dst, reader)
	if err != nil {
		return n, &ArchiveError{Reason: "corrupt entry " + entry.Name, Err: err}
	}
	if s.maxBytes > 0 && written+n > s.maxBytes {
		return n, &ArchiveError{Reason: fmt.Sprintf("archive expands beyond %d bytes", s.maxBytes)}
	}
	return n, nil
}

// entryTarget resolves an entry name inside root, rejecting names that escape it.
func entryTarget(root, name string) (string, error) {
	if name == "" {
		return "", errors.New("empty entry name")
	}
	cleaned := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes archive root", name)
	}
	target := filepath.Join(root, cleaned)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes archive root", name)
	}
	return target, nil
}
