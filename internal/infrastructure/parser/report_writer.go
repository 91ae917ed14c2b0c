package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
)

const (
	SheetUsers      = "Users"
	SheetBanlist    = "Banlist"
	SheetViolations = "Violations"
)

type reportWriter struct{}

// NewReportWriter moderatsiya hisobotini xlsx ga yozuvchi
func NewReportWriter() repository.ReportWriter {
	return &reportWriter{}
}

// WriteReport uch sheetli xlsx: Users, Banlist, Violations
func (w *reportWriter) WriteReport(ctx context.Context, report repository.ModerationReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetUsers); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetBanlist, SheetViolations} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	banned := make(map[string]bool, len(report.Banned))
	for _, id := range report.Banned {
		banned[id] = true
	}

	users := [][]any{{"user_id", "name", "warnings", "banned"}}
	for _, u := range report.Users {
		users = append(users, []any{u.UserID, u.DisplayName(), u.Warnings, yesNo(banned[u.UserID])})
	}
	if err := writeRows(f, SheetUsers, users); err != nil {
		return nil, err
	}

	ban := [][]any{{"user_id"}}
	for _, id := range report.Banned {
		ban = append(ban, []any{id})
	}
	if err := writeRows(f, SheetBanlist, ban); err != nil {
		return nil, err
	}

	violations := [][]any{{"id", "user_id", "reason", "warnings", "banned", "created_at", "text"}}
	for _, v := range report.Violations {
		violations = append(violations, []any{
			v.ID, v.UserID, v.Reason, v.Warnings, yesNo(v.Banned), v.CreatedAt.UTC().Format(time.RFC3339), v.Text,
		})
	}
	if err := writeRows(f, SheetViolations, violations); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
