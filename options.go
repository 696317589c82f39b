package xlsxtable

import (
	"log/slog"
	"strings"

	"github.com/TsubasaBE/go-xlsxtable/worksheet"
)

// Options holds configuration for a Reader.
type Options struct {
	logger           *slog.Logger
	sampleRows       int
	maxRowGap        int
	sheets           []string
	hiddenSheets     bool
	skipBrokenSheets bool
}

func defaultOptions() *Options {
	return &Options{
		logger:       slog.New(slog.DiscardHandler),
		sampleRows:   worksheet.DefaultSampleRows,
		hiddenSheets: true,
	}
}

// Option configures a Reader.
type Option func(*Options)

// WithLogger sets the logger for sheet-level diagnostics.  The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSampleRows sets how many rows the dimension pass samples to measure
// the populated width.  Default 100.
func WithSampleRows(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.sampleRows = n
		}
	}
}

// WithMaxRowGap caps the number of empty rows synthesized between two
// stored rows.  A larger jump fails the sheet with ErrRowGapExceeded.
// Zero (the default) means no cap.
func WithMaxRowGap(n int) Option {
	return func(o *Options) { o.maxRowGap = max(n, 0) }
}

// WithSheets restricts the read to the named sheets (case-insensitive).
// Tables still come out in workbook order.
func WithSheets(names ...string) Option {
	return func(o *Options) { o.sheets = append(o.sheets, names...) }
}

// WithHiddenSheets controls whether hidden and very hidden sheets are read.
// Default true.
func WithHiddenSheets(include bool) Option {
	return func(o *Options) { o.hiddenSheets = include }
}

// WithSkipBrokenSheets makes a sheet that fails to read a logged warning
// instead of an error for the whole dataset.
func WithSkipBrokenSheets(skip bool) Option {
	return func(o *Options) { o.skipBrokenSheets = skip }
}

// wants reports whether d passes the sheet filters.
func (o *Options) wants(d worksheet.Descriptor) bool {
	if !o.hiddenSheets && d.Visibility != worksheet.Visible {
		return false
	}
	if len(o.sheets) == 0 {
		return true
	}
	for _, name := range o.sheets {
		if strings.EqualFold(name, d.Name) {
			return true
		}
	}
	return false
}

func (o *Options) sheetConfig() worksheet.Config {
	return worksheet.Config{
		SampleRows: o.sampleRows,
		MaxRowGap:  o.maxRowGap,
		Logger:     o.logger,
	}
}
