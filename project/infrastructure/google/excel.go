package google

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"slack-data-bot/project/domain"

	"github.com/xuri/excelize/v2"
)

// readExcel は Drive 上の .xlsx をダウンロードし、先頭シートの全行を返します
func (s *Service) readExcel(ctx context.Context, fileID string) ([][]string, error) {
	data, err := s.downloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("excel: %w: ワークブックを開けません: %v", domain.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("excel: %w: シートが存在しません", domain.ErrUnsupportedFormat)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("excel: 行の読み出し失敗: %w", err)
	}
	return rows, nil
}

// writeExcelCell は .xlsx の単一セルを更新し、Drive に書き戻します
// ダウンロード・編集・アップロードの読み書き往復であり、
// 同一ファイルへの並行書き込みは後勝ちになります
func (s *Service) writeExcelCell(ctx context.Context, fileID string, row int, col, value string) error {
	data, err := s.downloadFile(ctx, fileID)
	if err != nil {
		return err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("excel: %w: ワークブックを開けません: %v", domain.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return fmt.Errorf("excel: %w: シートが存在しません", domain.ErrUnsupportedFormat)
	}

	cell := fmt.Sprintf("%s%d", col, row)
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("excel: セル %s の更新失敗: %w", cell, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("excel: ワークブックのシリアライズ失敗: %w", err)
	}

	return s.updateFileContent(ctx, fileID, buf.Bytes())
}

// createExcel は新しい .xlsx を作成して Drive フォルダにアップロードします
func (s *Service) createExcel(ctx context.Context, title string, rows [][]string) (*domain.ResourceInfo, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	for ri, row := range rows {
		for ci, cell := range row {
			letter, err := domain.ColumnLetter(ci + 1)
			if err != nil {
				return nil, err
			}
			axis := fmt.Sprintf("%s%d", letter, ri+1)
			if err := f.SetCellValue(sheetName, axis, cell); err != nil {
				return nil, fmt.Errorf("excel: セル %s の書き込み失敗: %w", axis, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: ワークブックのシリアライズ失敗: %w", err)
	}

	name := title
	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name += ".xlsx"
	}
	return s.uploadNewFile(ctx, name, mimeExcel, buf.Bytes())
}
