package frame

import (
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ErrUnsupported is returned by Load for extensions it has no decoder for.
var ErrUnsupported = errors.New("frame: unsupported image format")

// decoders maps lower-case file extensions to their decoder.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".png":  png.Decode,
	".gif":  gif.Decode,
	".tga":  tga.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
}

// Supported reports whether path has a decodable image extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Index lists the image files found under a directory.
type Index struct {
	root    string
	entries []string // relative, slash separated, sorted
}

// BuildIndex walks dir recursively for supported image files. Unreadable
// subdirectories are skipped.
func BuildIndex(dir string) (*Index, error) {
	idx := &Index{root: dir}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		idx.entries = append(idx.entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(idx.entries)
	return idx, nil
}

// Entries returns the relative paths of the indexed files, sorted.
func (idx *Index) Entries() []string {
	return idx.entries
}

// Path returns the filesystem path of a relative entry.
func (idx *Index) Path(rel string) string {
	return filepath.Join(idx.root, filepath.FromSlash(rel))
}

// Len returns the number of indexed files.
func (idx *Index) Len() int {
	return len(idx.entries)
}
