package link

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Report is the outcome of verifying a link against its expected target.
type Report struct {
	BaseDir    string
	LinkName   string
	Target     string
	Exists     bool
	IsSymlink  bool
	IsDir      bool
	GoodTarget bool
	Resolved   string
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return r.Exists && r.IsSymlink && r.IsDir && r.GoodTarget
}

// String renders the multi-line report printed after linking.
func (r Report) String() string {
	lines := []string{
		fmt.Sprintf("Base directory: %q", r.BaseDir),
		fmt.Sprintf("Symlink name: %q", r.LinkName),
		fmt.Sprintf("Target directory: %q", r.Target),
	}
	if r.OK() {
		lines = append(lines, "OK!")
	} else {
		lines = append(lines,
			"NOT OK!",
			fmt.Sprintf("Exists? %t", r.Exists),
			fmt.Sprintf("Is a symlink? %t", r.IsSymlink),
			fmt.Sprintf("Is a directory? %t", r.IsDir),
			fmt.Sprintf("Good target? %t", r.GoodTarget),
		)
	}
	return strings.Join(lines, "\n")
}

// Verify checks the link against target. The target comparison is by name:
// the resolved entry and its parent directory must carry the same base names
// as target and its parent. A relative target is taken relative to the link's
// directory, as the link itself would be. Verify never modifies the filesystem.
func (r *Replacer) Verify(target string) Report {
	report := Report{
		BaseDir:  r.dir,
		LinkName: r.name,
		Target:   target,
	}

	path := r.Path()
	if info, _, err := r.linker.LstatIfPossible(path); err == nil {
		report.IsSymlink = info.Mode()&os.ModeSymlink != 0
	}
	if info, err := r.fs.Stat(path); err == nil {
		report.Exists = true
		report.IsDir = info.IsDir()
	}

	resolved, err := r.resolve(path)
	if err != nil {
		return report
	}
	report.Resolved = resolved
	expected := target
	if !filepath.IsAbs(expected) {
		expected = filepath.Join(r.dir, expected)
	}
	report.GoodTarget = sameTail(resolved, expected)
	return report
}

// sameTail compares the last two path segments of a and b.
func sameTail(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	return filepath.Base(a) == filepath.Base(b) &&
		filepath.Base(filepath.Dir(a)) == filepath.Base(filepath.Dir(b))
}
