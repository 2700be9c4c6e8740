// Package xlsxexport renders scoreboard reports as Excel workbooks.
package xlsxexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bryanwahyu/esr-tracker/src/app/scoreboard"
	domain "github.com/bryanwahyu/esr-tracker/src/domain/scoreboard"
)

const (
	SheetOverall = "Overall"
	SheetRecent  = "Recent"

	maxSheetName = 31
)

// Export writes report as a workbook with an Overall sheet, a Recent sheet
// and one sheet per played game. GeneratedAt becomes the document's
// creation time.
func Export(w io.Writer, report scoreboard.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetOverall); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if err := writeSheet(f, SheetOverall, header, []any{"Rank", "Team", "Score"}, standingRows(report.Overall)); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetRecent); err != nil {
		return fmt.Errorf("create sheet %q: %w", SheetRecent, err)
	}
	recent := make([][]any, len(report.Recent))
	for i, m := range report.Recent {
		recent[i] = []any{m.Date, string(m.Game), string(m.Team1), string(m.Team2), string(m.Winner)}
	}
	if err := writeSheet(f, SheetRecent, header, []any{"Date", "Game", "Team 1", "Team 2", "Winner"}, recent); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(SheetOverall): true, strings.ToLower(SheetRecent): true}
	for _, g := range report.Games {
		name := SheetName(string(g.Title), used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, header, []any{"Rank", "Team", "Wins"}, standingRows(g.Standings)); err != nil {
			return err
		}
	}

	if !report.GeneratedAt.IsZero() {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:   "Scoreboard",
			Created: report.GeneratedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("set document properties: %w", err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func standingRows(standings []domain.Standing) [][]any {
	rows := make([][]any, len(standings))
	for i, s := range standings {
		rows[i] = []any{i + 1, string(s.Team), s.Score}
	}
	return rows
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %q header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %q header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %q row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// SheetName turns a game title into a legal, unused worksheet name and
// records it in used. Names compare case-insensitively, as Excel does.
func SheetName(title string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, title)
	base = strings.Trim(base, "'")
	if strings.TrimSpace(base) == "" {
		base = "Game"
	}
	base = truncate(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
