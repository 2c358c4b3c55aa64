// Package scanner discovers statement files in the input directory and
// decodes each file name into a types.RecordIdentity.
package scanner

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ginjaninja78/billreport/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// DirectoryReadError is returned when the input directory cannot be listed.
type DirectoryReadError struct {
	Path string
	Err  error
}

func (e *DirectoryReadError) Error() string {
	return fmt.Sprintf("failed to read directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryReadError) Unwrap() error { return e.Err }

// FilenameError is returned in strict mode for a file name that does not
// follow the "<date><separator><name>.<ext>" convention.
type FilenameError struct {
	FileName string
	Reason   string
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("malformed file name %s: %s", e.FileName, e.Reason)
}

// =============================================================================
// SCANNER
// =============================================================================

// Scanner lists an input directory.
type Scanner struct {
	// Separator splits file names. Empty means DefaultSeparator.
	Separator string

	// Strict turns malformed file names into a FilenameError instead of a
	// skipped entry.
	Strict bool

	logger *zap.Logger
}

// New creates a Scanner. A nil logger discards output.
func New(separator string, strict bool, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{Separator: separator, Strict: strict, logger: logger}
}

// Scan lists path once and returns the identity of every statement file in
// the order the filesystem reports them. Directories are ignored.
//
// A listing failure returns a *DirectoryReadError and no identities.
func (s *Scanner) Scan(ctx context.Context, path string) ([]types.RecordIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.Open(path)
	if err != nil {
		return nil, &DirectoryReadError{Path: path, Err: err}
	}
	defer dir.Close()

	// (*os.File).ReadDir keeps directory order, unlike os.ReadDir which sorts.
	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, &DirectoryReadError{Path: path, Err: err}
	}

	identities := make([]types.RecordIdentity, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			s.logger.Debug("Skipping directory", zap.String("dir", path), zap.String("entry", entry.Name()))
			continue
		}

		identity := Decode(entry.Name(), s.Separator)
		if reason := malformed(identity); reason != "" {
			if s.Strict {
				return nil, &FilenameError{FileName: entry.Name(), Reason: reason}
			}
			s.logger.Warn("Skipping malformed file name",
				zap.String("file", entry.Name()),
				zap.String("reason", reason))
			continue
		}

		identities = append(identities, identity)
	}

	s.logger.Debug("Scanned input directory",
		zap.String("dir", path),
		zap.Int("entries", len(entries)),
		zap.Int("statements", len(identities)))

	return identities, nil
}

// malformed returns why an identity cannot label a bill, or "" if it can.
func malformed(identity types.RecordIdentity) string {
	switch {
	case !identity.HasDate():
		return "date token is not a valid date"
	case identity.Name == "":
		return "name token is missing"
	default:
		return ""
	}
}
