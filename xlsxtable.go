// Package xlsxtable reads OpenXML spreadsheet workbooks (.xlsx) into plain
// text tables.  No cgo is required.
//
// # Quick start
//
//	r, err := xlsxtable.Open("Book1.xlsx")
//	if err != nil { ... }
//	defer r.Close()
//
//	ds, err := r.ReadDataset()
//	if err != nil { ... }
//
//	for _, tbl := range ds.Tables {
//	    for _, row := range tbl.Rows {
//	        for _, v := range row {
//	            fmt.Print(v.String(), "\t")
//	        }
//	        fmt.Println()
//	    }
//	}
//
// Every table is dense: rows the file omits come back as all-empty rows and
// every row is exactly Table.Columns wide.  Sheets without any rows are left
// out of the dataset.
//
// # Values
//
// Cells resolve to one of the [dataset.Kind] variants.  Numbers stored under
// a date or time number format become [dataset.DateTime] values; use
// [ConvertDateEx] to convert serials yourself, passing the workbook's
// Date1904 flag.
//
// # Hyperlinks
//
// Cells named by a sheet's hyperlink list carry a [dataset.Hyperlink].
// Cells holding a HYPERLINK(Sheet!A1, ...) formula carry a
// [dataset.HyperlinkIndex]; [dataset.Dataset.Resolve] follows it.
//
// The markdown sub-package renders a dataset as markdown tables.
package xlsxtable

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/TsubasaBE/go-xlsxtable/archive"
	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/internal/dateformat"
	"github.com/TsubasaBE/go-xlsxtable/internal/oadate"
	"github.com/TsubasaBE/go-xlsxtable/workbook"
)

// Version is the current version of the go-xlsxtable library.
const Version = "1.0.0"

// Error classes; test with errors.Is.
var (
	ErrMissingPart          = errs.ErrMissingPart
	ErrMalformedReference   = errs.ErrMalformedReference
	ErrMalformedSheet       = errs.ErrMalformedSheet
	ErrOutOfRangeIndex      = errs.ErrOutOfRangeIndex
	ErrUnsupportedContainer = errs.ErrUnsupportedContainer
	ErrRowGapExceeded       = errs.ErrRowGapExceeded
)

// Reader reads the sheets of one open workbook.
type Reader struct {
	wb   *workbook.Workbook
	opts *Options
}

// Open opens the named workbook.  Legacy .xls files and encrypted packages
// are recognised and rejected with ErrUnsupportedContainer.  The caller
// must Close the returned Reader.
func Open(name string, opts ...Option) (*Reader, error) {
	if err := detectFile(name); err != nil {
		return nil, err
	}
	wb, err := workbook.Open(name)
	if err != nil {
		return nil, fmt.Errorf("xlsxtable: %w", err)
	}
	return newReader(wb, opts), nil
}

// OpenReader reads a workbook from an arbitrary [io.ReaderAt].  size must
// equal the total byte length of the data.
func OpenReader(r io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	if err := detect(r, size); err != nil {
		return nil, err
	}
	wb, err := workbook.OpenReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("xlsxtable: %w", err)
	}
	return newReader(wb, opts), nil
}

// ReadFile opens name, reads its dataset and closes it.
func ReadFile(name string, opts ...Option) (*dataset.Dataset, error) {
	r, err := Open(name, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadDataset()
}

func newReader(wb *workbook.Workbook, opts []Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Reader{wb: wb, opts: o}
}

// Workbook exposes the loaded workbook metadata.
func (r *Reader) Workbook() *workbook.Workbook {
	return r.wb
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.wb.Close()
}

func detectFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("xlsxtable: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("xlsxtable: %w", err)
	}
	return detect(f, fi.Size())
}

func detect(r io.ReaderAt, size int64) error {
	format, err := archive.Detect(r, size)
	if err != nil {
		return fmt.Errorf("xlsxtable: %w", err)
	}
	if format != archive.FormatOpenXML {
		return fmt.Errorf("xlsxtable: %w", archive.Unsupported(format))
	}
	return nil
}

// ConvertDate converts a 1900-system serial day number to a [time.Time].
// Serial 0 is 1900-01-01 and serials from 61 on are corrected for the
// phantom 1900-02-29, so 42370 is 2016-01-01.
func ConvertDate(serial float64) (time.Time, error) {
	t, err := oadate.Convert(serial)
	if err != nil {
		return time.Time{}, fmt.Errorf("xlsxtable: ConvertDate: %w", err)
	}
	return t, nil
}

// ConvertDateEx is ConvertDate for either date system.  Pass the
// workbook's Date1904 flag.
func ConvertDateEx(serial float64, date1904 bool) (time.Time, error) {
	t, err := oadate.ConvertEx(serial, date1904)
	if err != nil {
		return time.Time{}, fmt.Errorf("xlsxtable: ConvertDateEx: %w", err)
	}
	return t, nil
}

// IsDateFormat reports whether a number format displays a date or time.
// A non-empty code is classified by its tokens; otherwise id is looked up
// among the built-in date formats (14-22, 45-47).
func IsDateFormat(id int, code string) bool {
	if code != "" {
		return dateformat.IsDateCode(code)
	}
	return dateformat.IsBuiltInDateID(id)
}
