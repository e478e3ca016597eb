package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"media2text/internal/app/errors"
	"media2text/internal/app/model"
)

var header = []string{
	"Media ID", "File Name", "Status", "Duration (s)", "Event", "Event Date",
	"Language", "Model", "Created At", "Transcription",
}

// ToExcel writes one row per transcription to a single-sheet workbook.
func ToExcel(transcriptions []model.TranscriptionSummary, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	headerRow := sheet.AddRow()
	for _, title := range header {
		headerRow.AddCell().Value = title
	}

	for _, t := range transcriptions {
		row := sheet.AddRow()
		row.AddCell().Value = t.MediaFileID.String()
		row.AddCell().Value = t.FileName
		row.AddCell().Value = string(t.Status)
		if t.DurationSeconds != nil {
			row.AddCell().Value = fmt.Sprintf("%.2f", *t.DurationSeconds)
		} else {
			row.AddCell()
		}
		row.AddCell().Value = deref(t.Event)
		if t.EventDate != nil {
			row.AddCell().Value = t.EventDate.Format("2006-01-02")
		} else {
			row.AddCell()
		}
		row.AddCell().Value = t.Language
		row.AddCell().Value = t.ModelUsed
		row.AddCell().Value = t.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = deref(t.FullText)
	}

	if err := file.Save(outputFilePath); err != nil {
		return errors.Wrapf(err, "save %s", outputFilePath)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
