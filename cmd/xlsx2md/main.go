// Command xlsx2md converts the sheets of an .xlsx workbook to markdown
// tables.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TsubasaBE/go-xlsxtable"
	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/markdown"
	"github.com/TsubasaBE/go-xlsxtable/worksheet"
)

type flags struct {
	sheets     []string
	outDir     string
	precision  int
	bodyHead   bool
	align      string
	pad        bool
	skipHidden bool
	skipBroken bool
	maxRowGap  int
	list       bool
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:     "xlsx2md [input.xlsx]",
		Short:   "Convert Excel workbook sheets to markdown tables",
		Version: xlsxtable.Version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &f, stdout, stderr)
		},
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringSliceVarP(&f.sheets, "sheet", "s", nil, "Sheet to convert (repeatable; default: all)")
	fl.StringVarP(&f.outDir, "out", "o", "", "Directory for per-sheet .md files (default: stdout)")
	fl.IntVarP(&f.precision, "precision", "p", 0, "Decimal places for decimal numbers (0 truncates)")
	fl.BoolVar(&f.bodyHead, "body-head", false, "Keep the first row in the body, in bold, under an empty header")
	fl.StringVar(&f.align, "align", "none", "Column alignment: none, left, center, right")
	fl.BoolVar(&f.pad, "pad", false, "Pad cells so column borders line up")
	fl.BoolVar(&f.skipHidden, "skip-hidden", false, "Skip hidden sheets")
	fl.BoolVar(&f.skipBroken, "skip-broken", false, "Warn about unreadable sheets instead of failing")
	fl.IntVar(&f.maxRowGap, "max-row-gap", 0, "Fail sheets with more consecutive missing rows than this (0: no limit)")
	fl.BoolVar(&f.list, "list", false, "List sheets with their visibility and dimension instead of converting")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Log debug details to stderr")
	return cmd
}

func run(cmd *cobra.Command, input string, f *flags, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	align, err := markdown.ParseAlign(f.align)
	if err != nil {
		return err
	}
	mdOpts := markdown.Options{
		BodyHead:            f.bodyHead,
		Align:               align,
		DecimalPrecision:    f.precision,
		HasDecimalPrecision: cmd.Flags().Changed("precision"),
		Pad:                 f.pad,
	}

	r, err := xlsxtable.Open(input,
		xlsxtable.WithLogger(logger),
		xlsxtable.WithSheets(f.sheets...),
		xlsxtable.WithHiddenSheets(!f.skipHidden),
		xlsxtable.WithSkipBrokenSheets(f.skipBroken),
		xlsxtable.WithMaxRowGap(f.maxRowGap),
	)
	if err != nil {
		return err
	}
	defer r.Close()

	if f.list {
		return listSheets(r, logger, stdout)
	}

	ds, err := r.ReadDataset()
	if err != nil {
		return err
	}
	logger.Debug("dataset read", "file", input, "tables", len(ds.Tables))

	if f.outDir == "" {
		return markdown.Render(stdout, ds, mdOpts)
	}
	return writeSheetFiles(ds, f.outDir, mdOpts, stdout)
}

// listSheets prints one line per sheet: name, visibility and detected
// dimension ("empty" for sheets without rows).
func listSheets(r *xlsxtable.Reader, logger *slog.Logger, w io.Writer) error {
	wb := r.Workbook()
	for i, d := range wb.Sheets() {
		ws := wb.Worksheet(d, worksheet.Config{Logger: logger})
		dim, err := ws.DetectDimension()
		if err != nil {
			fmt.Fprintf(w, "%d\t%s\t%s\terror: %v\n", i+1, d.Name, d.Visibility, err)
			continue
		}
		extent := "empty"
		if dim != nil {
			extent = fmt.Sprintf("%d rows x %d columns", dim.LastRow, dim.Columns())
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, d.Name, d.Visibility, extent)
	}
	return nil
}

func writeSheetFiles(ds *dataset.Dataset, dir string, opts markdown.Options, w io.Writer) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, tbl := range ds.Tables {
		filename := filepath.Join(dir, fileName(tbl.Name)+".md")
		if err := os.WriteFile(filename, []byte(markdown.Table(ds, tbl, opts)), 0644); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
		fmt.Fprintln(w, filename)
	}
	return nil
}

var fileNameReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// fileName makes a sheet name safe to use as a file name.
func fileName(sheet string) string {
	name := strings.TrimSpace(fileNameReplacer.Replace(sheet))
	if name == "" || name == "." || name == ".." {
		return "sheet"
	}
	return name
}
