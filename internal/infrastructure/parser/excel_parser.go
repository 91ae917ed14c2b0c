package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
)

type excelParser struct{}

// NewExcelParser yangi Excel parser yaratish
func NewExcelParser() repository.DenylistParser {
	return &excelParser{}
}

// ParseTerms Excel fayldan taqiqlangan so'zlarni o'qish
func (e *excelParser) ParseTerms(ctx context.Context, filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	return e.parseExcelFile(f)
}

// ParseTermsFromBytes byte array dan parse qilish
func (e *excelParser) ParseTermsFromBytes(ctx context.Context, data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel from bytes: %w", err)
	}
	defer f.Close()

	return e.parseExcelFile(f)
}

// parseExcelFile birinchi sheet, so'zlar ustuni
func (e *excelParser) parseExcelFile(f *excelize.File) ([]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	col, startRow := e.termColumn(rows[0])
	logx.Debug("denylist sheet", "sheet", sheets[0], "rows", len(rows), "column", col, "header", startRow == 1)

	var terms []string
	for _, row := range rows[startRow:] {
		if col >= len(row) {
			continue
		}
		if term := strings.TrimSpace(row[col]); term != "" {
			terms = append(terms, term)
		}
	}
	return terms, nil
}

// termColumn header qatori bo'lsa undagi ustunni topadi, aks holda 0-ustun
func (e *excelParser) termColumn(first []string) (col, startRow int) {
	for i, cell := range first {
		if contains(strings.ToLower(strings.TrimSpace(cell)), "term", "word", "so'z", "soz", "denylist", "taqiq", "слово") {
			return i, 1
		}
	}
	return 0, 0
}

func contains(str string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(str, kw) {
			return true
		}
	}
	return false
}
