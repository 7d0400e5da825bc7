package policy

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// Fingerprint identifies a specific version of the allow file.
// Modification time and size are used for the cheap change check on every
// evaluation; the content hash disambiguates edits that land within the
// file system's timestamp resolution.
type Fingerprint struct {
	// ModTime is the allow file's modification timestamp
	ModTime time.Time

	// Size is the allow file's size in bytes
	Size int64

	// Sum is the BLAKE3 hash of the allow file's contents
	Sum [32]byte
}

// IsZero reports whether the fingerprint is the zero value, i.e. no allow
// file has been successfully loaded (or the file did not exist).
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Equal reports whether two fingerprints identify the same file version.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.ModTime.Equal(other.ModTime) && f.Size == other.Size && f.Sum == other.Sum
}

// Loader reads and parses the allow file into candidate RuleSets.
// A load never mutates live policy state: it produces a private RuleSet that
// the Store installs only after the whole file parsed successfully.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a loader for the allow file at path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		path:   path,
		logger: logger.With("component", "policy.loader"),
	}
}

// Path returns the allow file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the allow file and parses it into a candidate RuleSet.
//
// A missing allow file is not an error: absence of configuration must never
// imply unrestricted sharing, so the loader returns an empty (default-deny)
// RuleSet with a zero fingerprint. Any malformed line rejects the whole file
// atomically with a ParseError; I/O failures return a LoadError. In both
// cases the caller keeps the previously active RuleSet.
func (l *Loader) Load() (*RuleSet, Fingerprint, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("allow file does not exist, using default-deny", "path", l.path)
		return EmptyRuleSet(), Fingerprint{}, nil
	}
	if err != nil {
		return nil, Fingerprint{}, &LoadError{FilePath: l.path, Message: "open failed", Cause: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, Fingerprint{}, &LoadError{FilePath: l.path, Message: "stat failed", Cause: err}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, Fingerprint{}, &LoadError{FilePath: l.path, Message: "read failed", Cause: err}
	}

	rs, err := l.Parse(data)
	if err != nil {
		return nil, Fingerprint{}, err
	}

	fp := Fingerprint{
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Sum:     blake3.Sum256(data),
	}

	return rs, fp, nil
}

// Parse compiles allow file contents into a RuleSet.
//
// Lines are trimmed; blank lines and lines beginning with "#" are ignored.
// Pattern order is preserved for diagnostic listing but does not affect
// allow semantics. The allow file itself is always appended to the allow
// set so a remote caller can inspect the rules that govern its access.
func (l *Loader) Parse(data []byte) (*RuleSet, error) {
	var patterns []*Pattern

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p, err := Compile(line)
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				parseErr.FilePath = l.path
				parseErr.Line = lineNo
				return nil, parseErr
			}
			return nil, err
		}
		patterns = append(patterns, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{FilePath: l.path, Message: "scan failed", Cause: err}
	}

	// Self-allow rule: the allow file is always readable, never hidden by
	// its own configuration.
	if base := filepath.Base(l.path); base != "." && base != string(filepath.Separator) {
		if p, err := Compile(base); err == nil {
			patterns = append(patterns, p)
		}
	}

	return NewRuleSet(patterns), nil
}

// Stat returns the current fingerprint-relevant attributes of the allow file
// without reading it. A missing file returns ok=false with no error.
func (l *Loader) Stat() (modTime time.Time, size int64, ok bool, err error) {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, 0, false, nil
	}
	if err != nil {
		return time.Time{}, 0, false, &LoadError{FilePath: l.path, Message: "stat failed", Cause: err}
	}
	return info.ModTime(), info.Size(), true, nil
}
