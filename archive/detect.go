package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/richardlehane/mscfb"

	"github.com/TsubasaBE/go-xlsxtable/errs"
)

// Format identifies a spreadsheet container.
type Format int

const (
	FormatUnknown Format = iota
	// FormatOpenXML is a ZIP package (.xlsx, .xlsm).
	FormatOpenXML
	// FormatLegacy is a BIFF workbook inside an OLE2 compound file (.xls).
	FormatLegacy
	// FormatEncrypted is a password-protected OpenXML package, which is
	// stored as an OLE2 compound file holding an EncryptedPackage stream.
	FormatEncrypted
)

func (f Format) String() string {
	switch f {
	case FormatOpenXML:
		return "openxml"
	case FormatLegacy:
		return "legacy-xls"
	case FormatEncrypted:
		return "encrypted-openxml"
	}
	return "unknown"
}

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Detect classifies the container by its signature.  OLE2 files are opened
// with mscfb and classified by their streams: "Workbook" or "Book" means a
// legacy workbook, "EncryptedPackage" an encrypted OpenXML one.
func Detect(r io.ReaderAt, size int64) (Format, error) {
	peek := make([]byte, len(oleSignature))
	n, err := r.ReadAt(peek, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return FormatUnknown, fmt.Errorf("archive: detect: %w", err)
	}
	peek = peek[:n]
	switch {
	case bytes.HasPrefix(peek, zipSignature):
		return FormatOpenXML, nil
	case bytes.HasPrefix(peek, oleSignature):
		return detectOLE(io.NewSectionReader(r, 0, size))
	}
	return FormatUnknown, nil
}

func detectOLE(r io.ReaderAt) (Format, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return FormatUnknown, fmt.Errorf("archive: read compound file: %w", err)
	}
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			return FormatUnknown, nil
		}
		if err != nil {
			return FormatUnknown, fmt.Errorf("archive: read compound file: %w", err)
		}
		switch entry.Name {
		case "Workbook", "Book":
			return FormatLegacy, nil
		case "EncryptedPackage":
			return FormatEncrypted, nil
		}
	}
}

// Unsupported wraps errs.ErrUnsupportedContainer with the detected format.
func Unsupported(f Format) error {
	return fmt.Errorf("%w: %s", errs.ErrUnsupportedContainer, f)
}
