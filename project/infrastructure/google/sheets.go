package google

import (
	"context"
	"fmt"

	"slack-data-bot/project/domain"

	"google.golang.org/api/sheets/v4"
)

// defaultReadRange は範囲指定がない場合の読み出し範囲です
const defaultReadRange = "A1:Z10"

// readSheet は Google Sheets から値を読み出します
func (s *Service) readSheet(ctx context.Context, sheetID, readRange string) ([][]string, error) {
	if readRange == "" {
		readRange = defaultReadRange
	}
	if err := domain.ValidateRange(readRange); err != nil {
		return nil, err
	}

	resp, err := s.sheetsSvc.Spreadsheets.Values.Get(sheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("sheets: 値の読み出し失敗", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// writeSheetCell は Google Sheets の単一セルを更新します
func (s *Service) writeSheetCell(ctx context.Context, sheetID string, row int, col, value string) error {
	cellRange := fmt.Sprintf("%s%d", col, row)
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}

	_, err := s.sheetsSvc.Spreadsheets.Values.
		Update(sheetID, cellRange, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return wrapErr(fmt.Sprintf("sheets: セル %s の更新失敗", cellRange), err)
	}
	return nil
}

// createSheet は新しいスプレッドシートを作成し、Drive フォルダへ移動します
// テンプレート行があれば先頭シートに書き込みます
func (s *Service) createSheet(ctx context.Context, title string, rows [][]string) (*domain.ResourceInfo, error) {
	created, err := s.sheetsSvc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("sheets: スプレッドシートの作成失敗", err)
	}

	// Sheets API はマイドライブ直下に作るため、対象フォルダへ移す
	if s.folderID != "" {
		_, err = s.driveSvc.Files.Update(created.SpreadsheetId, nil).
			AddParents(s.folderID).
			Context(ctx).Do()
		if err != nil {
			return nil, wrapErr("drive: フォルダへの移動失敗", err)
		}
	}

	if len(rows) > 0 {
		values := make([][]interface{}, 0, len(rows))
		for _, row := range rows {
			cells := make([]interface{}, 0, len(row))
			for _, cell := range row {
				cells = append(cells, cell)
			}
			values = append(values, cells)
		}

		_, err = s.sheetsSvc.Spreadsheets.Values.
			Update(created.SpreadsheetId, "A1", &sheets.ValueRange{Values: values}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		if err != nil {
			return nil, wrapErr("sheets: テンプレートの書き込み失敗", err)
		}
	}

	return &domain.ResourceInfo{
		ID:   created.SpreadsheetId,
		Name: title,
		URL:  created.SpreadsheetUrl,
	}, nil
}
