package fileio

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sovcrm/crm-cli/internal/model"
	"github.com/sovcrm/crm-cli/internal/reconcile"
)

// Sheet name variants recognized on import. The first sheet is the lead
// fallback when no name matches; the task sheet is optional.
var (
	leadSheetNames = []string{"Leads", "LEADS", "leads", "Lead"}
	taskSheetNames = []string{"Tarefas", "tarefas", "Tasks", "tasks"}
)

// Workbook holds the decoded rows of an imported spreadsheet.
type Workbook struct {
	LeadRows []reconcile.RawRecord
	TaskRows []reconcile.RawRecord
}

// ReadWorkbook reads an XLSX file into raw lead and task records. The lead
// sheet is located by name with a first-sheet fallback; a missing task
// sheet simply yields no tasks.
func ReadWorkbook(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	leadSheet := sheetByNames(f, leadSheetNames)
	if leadSheet == nil && len(f.Sheets) > 0 {
		leadSheet = f.Sheets[0]
	}
	if leadSheet == nil {
		return nil, eris.New("xlsx: workbook has no lead sheet")
	}

	wb := &Workbook{LeadRows: sheetRecords(leadSheet)}
	if taskSheet := sheetByNames(f, taskSheetNames); taskSheet != nil {
		wb.TaskRows = sheetRecords(taskSheet)
	}
	return wb, nil
}

// WriteWorkbook writes leads to an XLSX file with a "Leads" sheet and a
// "Tarefas" sheet holding every task keyed by lead id.
func WriteWorkbook(path string, leads []model.Lead) error {
	f := xlsx.NewFile()

	leadSheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "xlsx: add lead sheet")
	}
	writeRow(leadSheet, "id", "name", "phone", "origin", "stage", "value",
		"nextStep", "tags", "obs", "lossReason", "owner", "createdAt", "updatedAt")
	for _, l := range leads {
		writeRow(leadSheet,
			l.ID, l.Name, l.Phone, l.Origin, string(l.Stage),
			strconv.FormatFloat(l.Value, 'f', -1, 64),
			l.NextStep, joinTags(l.Tags), l.Obs, l.LossReason, l.Owner,
			isoOrEmpty(l.CreatedAt), isoOrEmpty(l.UpdatedAt))
	}

	taskSheet, err := f.AddSheet("Tarefas")
	if err != nil {
		return eris.Wrap(err, "xlsx: add task sheet")
	}
	writeRow(taskSheet, "leadId", "leadName", "desc", "done", "createdAt")
	for _, l := range leads {
		for _, t := range l.Tasks {
			createdAt := ""
			if t.CreatedAt != nil {
				createdAt = isoOrEmpty(*t.CreatedAt)
			}
			writeRow(taskSheet, l.ID, l.Name, t.Desc, strconv.FormatBool(t.Done), createdAt)
		}
	}

	return eris.Wrap(f.Save(path), "xlsx: save file")
}

func sheetByNames(f *xlsx.File, names []string) *xlsx.Sheet {
	for _, name := range names {
		if sheet, ok := f.Sheet[name]; ok {
			return sheet
		}
	}
	return nil
}

// sheetRecords maps the first row as headers and every following row as a
// raw record.
func sheetRecords(sheet *xlsx.Sheet) []reconcile.RawRecord {
	if len(sheet.Rows) == 0 {
		return nil
	}
	headers := rowToStrings(sheet.Rows[0])
	records := make([]reconcile.RawRecord, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		records = append(records, reconcile.MapRow(headers, rowToStrings(row)))
	}
	return records
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

func writeRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}

func isoOrEmpty(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
