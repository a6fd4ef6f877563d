// Package link maintains the well-known symlink in a project directory that
// points at the project's virtual environment.
//
// Replacement runs in three phases: candidate entries are cleared, the new
// link is created, then the result is verified without modifying anything.
package link

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/scylladb/go-set/strset"
	"github.com/spf13/afero"

	"github.com/blackwell-systems/envlink/internal/config"
	"github.com/blackwell-systems/envlink/internal/log"
)

var (
	// ErrSymlinkUnsupported is returned when the filesystem cannot create symlinks.
	ErrSymlinkUnsupported = errors.New("filesystem does not support symlinks")
	// ErrNotALink is returned by Inspect when the link location holds something else.
	ErrNotALink = errors.New("link location is not a symlink")
	// ErrTargetIsCandidate is returned when the target would be removed by Clear.
	ErrTargetIsCandidate = errors.New("target is one of the entries cleared before linking")
)

// maxHops bounds readlink chains, matching the usual ELOOP limit.
const maxHops = 40

// Replacer manages the link <dir>/<name>.
type Replacer struct {
	fs     afero.Fs
	linker afero.Symlinker
	dir    string
	name   string
	legacy []string
}

// NewReplacer returns a Replacer for the link described by cfg inside dir.
func NewReplacer(fs afero.Fs, dir string, cfg config.Link) (*Replacer, error) {
	linker, ok := fs.(afero.Symlinker)
	if !ok {
		return nil, ErrSymlinkUnsupported
	}
	if cfg.Name == "" {
		return nil, errors.New("link name is empty")
	}
	return &Replacer{
		fs:     fs,
		linker: linker,
		dir:    filepath.Clean(dir),
		name:   cfg.Name,
		legacy: cfg.Legacy,
	}, nil
}

// Path returns the link location.
func (r *Replacer) Path() string {
	return filepath.Join(r.dir, r.name)
}

// candidates returns every existing entry in dir matching the link name or a
// legacy name, sorted.
func (r *Replacer) candidates() ([]string, error) {
	names := strset.New(r.name)
	names.Add(r.legacy...)

	found := strset.New()
	for _, name := range names.List() {
		pattern := filepath.Join(r.dir, name)
		if !strings.ContainsAny(name, `*?[\`) {
			// literal names are looked up with lstat so dangling links are found
			if _, _, err := r.linker.LstatIfPossible(pattern); err == nil {
				found.Add(pattern)
			}
			continue
		}
		matches, err := afero.Glob(r.fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("bad link pattern %q: %w", name, err)
		}
		found.Add(matches...)
	}

	paths := found.List()
	sort.Strings(paths)
	return paths, nil
}

// Clear removes the link and any legacy environment entries from dir.
// Symlinks are unlinked without being followed; real directories are removed
// recursively. Every candidate is attempted and failures are aggregated.
func (r *Replacer) Clear() ([]string, error) {
	paths, err := r.candidates()
	if err != nil {
		return nil, err
	}

	var removed []string
	var result *multierror.Error
	for _, path := range paths {
		if err := r.remove(path); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		removed = append(removed, path)
	}
	return removed, result.ErrorOrNil()
}

func (r *Replacer) remove(path string) error {
	info, _, err := r.linker.LstatIfPossible(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		log.Debugf("unlinking symlink %s", path)
		err = r.fs.Remove(path)
	case info.IsDir():
		log.Infof("removing directory %s", path)
		err = r.fs.RemoveAll(path)
	default:
		log.Debugf("removing file %s", path)
		err = r.fs.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Create makes the link point at target. It fails with an *os.LinkError when
// the location is already occupied.
func (r *Replacer) Create(target string) error {
	err := r.linker.SymlinkIfPossible(target, r.Path())
	if err == nil {
		log.Debugf("linked %s -> %s", r.Path(), target)
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr
	}
	return &os.LinkError{Op: "symlink", Old: target, New: r.Path(), Err: err}
}

// Replace clears candidates, creates the link and verifies it. Running it
// twice with the same target leaves the same link in place.
func (r *Replacer) Replace(target string) (Report, error) {
	if err := r.guardTarget(target); err != nil {
		return Report{}, err
	}
	if _, err := r.Clear(); err != nil {
		return Report{}, fmt.Errorf("clearing %s: %w", r.dir, err)
	}
	if err := r.Create(target); err != nil {
		return Report{}, err
	}
	return r.Verify(target), nil
}

// guardTarget refuses targets that Clear would delete: a candidate itself, or
// anything below one. Both the given path and its symlink-free form are checked,
// so a target reached through the current link is refused as well.
func (r *Replacer) guardTarget(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	canonical := canonicalPath(abs)

	paths, err := r.candidates()
	if err != nil {
		return err
	}
	for _, path := range paths {
		candidate, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		// the candidate itself is not followed; Clear never follows it either
		realCandidate := filepath.Join(canonicalPath(filepath.Dir(candidate)), filepath.Base(candidate))
		if within(abs, candidate) || within(canonical, realCandidate) {
			return fmt.Errorf("%w: %s", ErrTargetIsCandidate, target)
		}
	}
	return nil
}

// canonicalPath resolves every symlink in path. Paths that cannot be resolved,
// such as missing ones, are returned cleaned.
func canonicalPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// Inspect reads the current link target without following or changing it.
// It reports false when nothing exists at the link location.
func (r *Replacer) Inspect() (string, bool, error) {
	info, _, err := r.linker.LstatIfPossible(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", true, fmt.Errorf("%w: %s", ErrNotALink, r.Path())
	}
	target, err := r.linker.ReadlinkIfPossible(r.Path())
	if err != nil {
		return "", true, err
	}
	return target, true, nil
}

// resolve follows the readlink chain starting at path. Relative hops are
// resolved against the directory of the link that holds them.
func (r *Replacer) resolve(path string) (string, error) {
	current := path
	for i := 0; i < maxHops; i++ {
		info, _, err := r.linker.LstatIfPossible(current)
		if err != nil {
			if os.IsNotExist(err) {
				return current, nil
			}
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}
		next, err := r.linker.ReadlinkIfPossible(current)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(next) {
			next = filepath.Join(filepath.Dir(current), next)
		}
		current = filepath.Clean(next)
	}
	return "", fmt.Errorf("too many levels of symbolic links: %s", path)
}
