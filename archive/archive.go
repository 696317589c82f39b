// Package archive gives the reader named-part access to a spreadsheet
// container.  The only supported container is the ZIP package used by
// OpenXML workbooks; Detect recognises the legacy OLE2 formats so callers can
// report them instead of failing with an opaque zip error.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/TsubasaBE/go-xlsxtable/errs"
)

// Provider opens archive parts by name.  Names use forward slashes and no
// leading slash ("xl/workbook.xml").
type Provider interface {
	Open(name string) (io.ReadCloser, error)
	Has(name string) bool
	Close() error
}

// Zip is a Provider over a ZIP package.  Part lookup is case-insensitive
// because producers disagree on the case of names like "sharedStrings.xml".
type Zip struct {
	rc    *zip.ReadCloser // non-nil when opened by file name
	index map[string]*zip.File
}

// OpenZip opens the named file.  The caller must Close the result.
func OpenZip(name string) (*Zip, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("archive: open %q: %w", name, err)
	}
	z := newZip(&rc.Reader)
	z.rc = rc
	return z, nil
}

// NewZip reads a ZIP package of the given size from r.
func NewZip(r io.ReaderAt, size int64) (*Zip, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("archive: open reader: %w", err)
	}
	return newZip(zr), nil
}

func newZip(zr *zip.Reader) *Zip {
	z := &Zip{index: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		key := normalize(f.Name)
		// first entry wins on duplicate names
		if _, dup := z.index[key]; !dup {
			z.index[key] = f
		}
	}
	return z
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "/"))
}

// Has reports whether the package contains the named part.
func (z *Zip) Has(name string) bool {
	_, ok := z.index[normalize(name)]
	return ok
}

// Open returns a stream over the named part.  A missing part yields an error
// matching errs.ErrMissingPart.
func (z *Zip) Open(name string) (io.ReadCloser, error) {
	f, ok := z.index[normalize(name)]
	if !ok {
		return nil, errs.MissingPart(name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &errs.PartError{Part: name, Err: err}
	}
	return rc, nil
}

// Close releases the underlying file handle.  It is a no-op for packages
// created with NewZip.
func (z *Zip) Close() error {
	if z.rc != nil {
		return z.rc.Close()
	}
	return nil
}

// ReadAll reads the full contents of a part.  Decompressor errors reported
// on Close (checksum mismatch on a truncated entry) are propagated even when
// the read itself succeeded.
func ReadAll(p Provider, name string) ([]byte, error) {
	rc, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	data, readErr := io.ReadAll(rc)
	closeErr := rc.Close()
	if readErr != nil {
		return nil, &errs.PartError{Part: name, Err: readErr}
	}
	if closeErr != nil {
		return nil, &errs.PartError{Part: name, Err: closeErr}
	}
	return data, nil
}
