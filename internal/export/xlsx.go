package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"branikbot/internal"
)

var replyHeaders = []string{
	"id", "comment_id", "post_id", "author", "mentions", "status", "created_at", "message",
}

// RepliesToXLSX writes the reply log to an xlsx file, one reply per row.
func RepliesToXLSX(rows []internal.ReplyRecord, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range replyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.ID)
		set(2, row.CommentID)
		set(3, row.PostID)
		set(4, row.Author)
		set(5, strings.Join(row.Mentions, "; "))
		set(6, string(row.Status))
		set(7, row.CreatedAt)
		set(8, row.Message)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
