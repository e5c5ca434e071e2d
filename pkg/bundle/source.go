package bundle

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrSourceNotFound wraps fs.ErrNotExist for a missing input path.
	ErrSourceNotFound = errors.New("source not found")
	// ErrUnsupportedSource is returned for paths that are neither a
	// directory, a manifest, nor a known archive.
	ErrUnsupportedSource = errors.New("unsupported source")
	// ErrCorruptArchive wraps tar and decompression failures.
	ErrCorruptArchive = errors.New("corrupt archive")
)

// Source produces the raw members of one lot.
type Source interface {
	// Read collects member bytes. It does not check completeness.
	Read(ctx context.Context) (*Bundle, error)
	String() string
}

// Open selects a Source from the shape of path: a directory, a .THF
// manifest, or a tar archive.
func Open(p string) (Source, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, notFound(p, err)
	}
	if info.IsDir() {
		return NewDirSource(p), nil
	}
	if strings.HasSuffix(p, members[MemberTHF].suffix) {
		return NewManifestSource(p), nil
	}
	if c, ok := CompressionFromName(p); ok {
		return NewArchiveSource(p, c), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, p)
}

// Load reads src and checks the bundle for completeness. No bundle is
// returned when a mandatory member is missing.
func Load(ctx context.Context, src Source) (*Bundle, error) {
	b, err := src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	return b, nil
}

// LoadPath is Open followed by Load.
func LoadPath(ctx context.Context, p string) (*Bundle, error) {
	src, err := Open(p)
	if err != nil {
		return nil, err
	}
	return Load(ctx, src)
}

func notFound(p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrSourceNotFound, p, err)
	}
	return fmt.Errorf("stat %s: %w", p, err)
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

// DirSource reads the direct children of a directory.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) String() string { return "dir " + s.dir }

func (s *DirSource) Read(ctx context.Context) (*Bundle, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, notFound(s.dir, err)
	}
	b := New()
	// os.ReadDir sorts by name, so accumulation order is stable.
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, ok := Classify(e.Name())
		if !ok {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		if !e.Type().IsRegular() {
			// Follow symlinks; anything that does not resolve to a regular
			// file is skipped.
			info, err := os.Stat(p)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		b.Add(m, e.Name(), data)
	}
	return b, nil
}

// ListMembers returns the file names found next to a manifest.
func ListMembers(manifest string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(manifest))
	if err != nil {
		return nil, notFound(manifest, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ---------------------------------------------------------------------------
// Manifest
// ---------------------------------------------------------------------------

// ManifestSource reads the directory holding a .THF manifest.
type ManifestSource struct {
	manifest string
}

func NewManifestSource(manifest string) *ManifestSource {
	return &ManifestSource{manifest: manifest}
}

func (s *ManifestSource) String() string { return "manifest " + s.manifest }

func (s *ManifestSource) Read(ctx context.Context) (*Bundle, error) {
	if _, err := os.Stat(s.manifest); err != nil {
		return nil, notFound(s.manifest, err)
	}
	return NewDirSource(filepath.Dir(s.manifest)).Read(ctx)
}

// ---------------------------------------------------------------------------
// Archive
// ---------------------------------------------------------------------------

// ArchiveSource reads a possibly compressed tar archive holding one flat lot.
type ArchiveSource struct {
	path        string
	compression Compression
}

func NewArchiveSource(p string, c Compression) *ArchiveSource {
	return &ArchiveSource{path: p, compression: c}
}

func (s *ArchiveSource) String() string {
	return fmt.Sprintf("archive %s (%s)", s.path, s.compression)
}

func (s *ArchiveSource) Read(ctx context.Context) (*Bundle, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, notFound(s.path, err)
	}
	defer f.Close()
	return ReadArchive(ctx, f, s.compression)
}

// ReadArchive collects members from a tar stream. Entries are matched on
// their base name; directories and links are skipped.
func ReadArchive(ctx context.Context, r io.Reader, c Compression) (*Bundle, error) {
	dec, err := newDecompressor(c, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, c, err)
	}
	defer dec.Close()

	type entry struct {
		member Member
		name   string
		data   []byte
	}
	var found []entry
	tr := tar.NewReader(dec)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}
		name := path.Base(hdr.Name)
		m, ok := Classify(name)
		if !ok {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %w", ErrCorruptArchive, hdr.Name, err)
		}
		found = append(found, entry{member: m, name: name, data: data})
	}

	// Join same-slot entries in name order, as DirSource does, whatever
	// order the archive was written in.
	slices.SortStableFunc(found, func(a, b entry) int {
		return strings.Compare(a.name, b.name)
	})
	b := New()
	for _, e := range found {
		b.Add(e.member, e.name, e.data)
	}
	return b, nil
}
