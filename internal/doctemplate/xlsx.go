package doctemplate

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxMainPart = "xl/workbook.xml"

// fillXLSX substitutes placeholders cell by cell, then in each sheet's page
// header and footer. A rich-text cell is the spreadsheet analogue of a
// fragmented paragraph: the runs are concatenated, substituted, and written
// back as a single run carrying the first run's font.
func fillXLSX(data []byte, r Replacer) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	changed := false
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		for ri, row := range rows {
			for ci, value := range row {
				replaced := r.Apply(value)
				if replaced == value {
					continue
				}

				cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return nil, err
				}
				if err := setCellText(f, sheet, cell, replaced); err != nil {
					return nil, fmt.Errorf("write %s!%s: %w", sheet, cell, err)
				}
				changed = true
			}
		}

		hfChanged, err := fillHeaderFooter(f, sheet, r)
		if err != nil {
			return nil, fmt.Errorf("header/footer of %s: %w", sheet, err)
		}
		changed = changed || hfChanged
	}

	if !changed {
		return data, nil
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellText(f *excelize.File, sheet, cell, text string) error {
	runs, err := f.GetCellRichText(sheet, cell)
	if err == nil && len(runs) > 1 {
		first := runs[0]
		first.Text = text
		return f.SetCellRichText(sheet, cell, []excelize.RichTextRun{first})
	}
	return f.SetCellStr(sheet, cell, text)
}

// fillHeaderFooter substitutes placeholders in the page header and footer
// texts of sheet. Formatting codes such as "&C" or "&P" pass through.
func fillHeaderFooter(f *excelize.File, sheet string, r Replacer) (bool, error) {
	opts, err := f.GetHeaderFooter(sheet)
	if err != nil || opts == nil {
		return false, err
	}

	changed := false
	for _, text := range []*string{
		&opts.OddHeader, &opts.OddFooter,
		&opts.EvenHeader, &opts.EvenFooter,
		&opts.FirstHeader, &opts.FirstFooter,
	} {
		if replaced := r.Apply(*text); replaced != *text {
			*text = replaced
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, f.SetHeaderFooter(sheet, opts)
}
