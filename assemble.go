package xlsxtable

import (
	"fmt"
	"strings"

	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/worksheet"
)

// ReadDataset reads every selected sheet into a table, in workbook order.
// Sheets with no rows are omitted.  The read may be repeated; each call
// streams the sheets afresh.
func (r *Reader) ReadDataset() (*dataset.Dataset, error) {
	if err := r.checkSheetFilter(); err != nil {
		return nil, err
	}
	log := r.opts.logger
	ds := &dataset.Dataset{}
	for _, d := range r.wb.Sheets() {
		if !r.opts.wants(d) {
			log.Debug("skipping sheet", "sheet", d.Name, "visibility", d.Visibility.String())
			continue
		}
		tbl, err := r.readSheet(d)
		if err != nil {
			if r.opts.skipBrokenSheets {
				log.Warn("skipping unreadable sheet", "sheet", d.Name, "err", err)
				continue
			}
			return nil, fmt.Errorf("xlsxtable: %w", err)
		}
		if tbl == nil {
			log.Debug("sheet has no rows", "sheet", d.Name)
			continue
		}
		ds.Tables = append(ds.Tables, tbl)
	}
	return ds, nil
}

// readSheet runs the three passes over one sheet: dimension, rows and
// hyperlinks.  It returns nil for a sheet without rows.
func (r *Reader) readSheet(d worksheet.Descriptor) (*dataset.Table, error) {
	ws := r.wb.Worksheet(d, r.opts.sheetConfig())
	log := r.opts.logger.With("sheet", d.Name)

	dim, err := ws.DetectDimension()
	if err != nil {
		return nil, errs.NewSheetError(d.Name, "dimension", err)
	}
	if dim == nil {
		return nil, nil
	}

	tbl := dataset.NewTable(d.Name, dim.Columns())
	if err := readRows(ws, tbl); err != nil {
		return nil, errs.NewSheetError(d.Name, "rows", err)
	}
	if len(tbl.Rows) == 0 {
		return nil, nil
	}

	links, err := ws.ResolveHyperlinks(tbl)
	if err != nil {
		return nil, errs.NewSheetError(d.Name, "hyperlinks", err)
	}
	log.Debug("sheet read", "rows", len(tbl.Rows), "columns", tbl.Columns, "hyperlinks", links)
	return tbl, nil
}

func readRows(ws *worksheet.Worksheet, tbl *dataset.Table) error {
	rr, err := ws.Rows(tbl.Columns)
	if err != nil {
		return err
	}
	defer rr.Close()

	var st worksheet.RowState
	for {
		row, ok, err := rr.ReadRow(&st)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		tbl.Append(row)
	}
}

// checkSheetFilter fails when WithSheets names a sheet the workbook does
// not have.
func (r *Reader) checkSheetFilter() error {
	var missing []string
	for _, name := range r.opts.sheets {
		if _, ok := r.wb.SheetVisibility(name); !ok {
			missing = append(missing, fmt.Sprintf("%q", name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("xlsxtable: sheet %s not found", strings.Join(missing, ", "))
	}
	return nil
}
