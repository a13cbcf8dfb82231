// Package rename turns a parsed spoken stamp into a file name and moves the
// recording to it.
package rename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/MrWong99/talkytime/internal/timeparse"
)

// ErrExists is returned by [Renamer.Apply] when the target name is taken.
var ErrExists = errors.New("rename: target already exists")

// DefaultLayout is the time layout used when Options.Layout is empty.
const DefaultLayout = "2006-01-02_15-04-05"

// maxSlug bounds the length of the notes part of a name.
const maxSlug = 60

// Options controls name generation and the side effects of [Renamer.Apply].
type Options struct {
	// Layout is a Go time layout. Defaults to [DefaultLayout].
	Layout string

	// Separator joins the stamp and the notes slug. Defaults to "_".
	Separator string

	// Notes appends the slugged notes to the name.
	Notes bool

	// SetModTime sets the renamed file's access and modification times to the
	// spoken stamp.
	SetModTime bool

	// DryRun computes targets without touching the filesystem.
	DryRun bool

	// Location is the zone the stamp is interpreted in. Nil means local time.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Separator == "" {
		o.Separator = "_"
	}
	return o
}

// Format returns the file stem for stamp: the stamp rendered with the layout,
// followed by the separator and notes slug when enabled and non-empty.
func Format(stamp timeparse.Stamp, opts Options) string {
	opts = opts.withDefaults()
	name := stamp.Time(opts.Location).Format(opts.Layout)
	if opts.Notes {
		if slug := Slug(stamp.Notes); slug != "" {
			name += opts.Separator + slug
		}
	}
	return name
}

// Slug lowercases s and joins its runs of letters and digits with "-". The
// result is cut at a word boundary to at most 60 bytes.
func Slug(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	var b strings.Builder
	for _, w := range words {
		if b.Len() > 0 && b.Len()+1+len(w) > maxSlug {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		if len(w) > maxSlug {
			w = w[:maxSlug]
		}
		b.WriteString(w)
	}
	return b.String()
}

// Outcome describes what [Renamer.Apply] did.
type Outcome struct {
	From string
	To   string

	// Unchanged is set when the file already carries its target name.
	Unchanged bool

	// DryRun is set when no filesystem change was made on purpose.
	DryRun bool
}

// Renamer moves recordings to their stamp names. It is safe for concurrent
// use; concurrent Apply calls never move two files onto the same target.
type Renamer struct {
	opts Options
	mu   sync.Mutex
	// claimed holds targets handed out in dry-run mode so collisions within
	// one batch are still reported.
	claimed map[string]string
}

// New returns a Renamer using opts.
func New(opts Options) *Renamer {
	return &Renamer{opts: opts.withDefaults(), claimed: make(map[string]string)}
}

// Target returns the path path would be renamed to for stamp. The target
// lives in the same directory and keeps the original extension.
func (r *Renamer) Target(path string, stamp timeparse.Stamp) string {
	return filepath.Join(filepath.Dir(path), Format(stamp, r.opts)+filepath.Ext(path))
}

// Apply renames path to its target for stamp. It refuses to overwrite an
// existing file and returns an error wrapping [ErrExists] instead.
func (r *Renamer) Apply(path string, stamp timeparse.Stamp) (Outcome, error) {
	target := r.Target(path, stamp)
	out := Outcome{From: path, To: target, DryRun: r.opts.DryRun}

	r.mu.Lock()
	defer r.mu.Unlock()

	if filepath.Clean(target) == filepath.Clean(path) {
		out.Unchanged = true
		return out, r.touch(target, stamp)
	}
	if prev, ok := r.claimed[target]; ok && prev != path {
		return out, fmt.Errorf("%w: %q (claimed by %q)", ErrExists, target, prev)
	}
	if _, err := os.Lstat(target); err == nil {
		return out, fmt.Errorf("%w: %q", ErrExists, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return out, fmt.Errorf("rename: stat %q: %w", target, err)
	}
	r.claimed[target] = path

	if r.opts.DryRun {
		return out, nil
	}
	if err := os.Rename(path, target); err != nil {
		delete(r.claimed, target)
		return out, fmt.Errorf("rename: %w", err)
	}
	return out, r.touch(target, stamp)
}

func (r *Renamer) touch(path string, stamp timeparse.Stamp) error {
	if !r.opts.SetModTime || r.opts.DryRun {
		return nil
	}
	t := stamp.Time(r.opts.Location)
	if err := os.Chtimes(path, t, t); err != nil {
		return fmt.Errorf("rename: set times on %q: %w", path, err)
	}
	return nil
}
