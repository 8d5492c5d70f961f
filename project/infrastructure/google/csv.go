package google

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"slack-data-bot/project/domain"
)

// parseCSV は CSV バイト列を行列にパースします。行ごとの列数の揺れは許容します
func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w: パース失敗: %v", domain.ErrUnsupportedFormat, err)
	}
	return rows, nil
}

// encodeCSV は行列を CSV バイト列にシリアライズします
func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("csv: シリアライズ失敗: %w", err)
	}
	return buf.Bytes(), nil
}

// readCSV は Drive 上の CSV をダウンロードして全行を返します
func (s *Service) readCSV(ctx context.Context, fileID string) ([][]string, error) {
	data, err := s.downloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return parseCSV(data)
}

// writeCSVCell は CSV の単一セルを更新し、Drive に書き戻します
// 指定セルが既存の表の外にある場合は行・列を空文字で埋めて拡張します
func (s *Service) writeCSVCell(ctx context.Context, fileID string, row int, col, value string) error {
	colIndex, err := domain.ColumnIndex(col)
	if err != nil {
		return err
	}

	data, err := s.downloadFile(ctx, fileID)
	if err != nil {
		return err
	}

	rows, err := parseCSV(data)
	if err != nil {
		return err
	}

	for len(rows) < row {
		rows = append(rows, nil)
	}
	for len(rows[row-1]) < colIndex {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][colIndex-1] = value

	content, err := encodeCSV(rows)
	if err != nil {
		return err
	}
	return s.updateFileContent(ctx, fileID, content)
}

// createCSV は新しい CSV ファイルを作成して Drive フォルダにアップロードします
func (s *Service) createCSV(ctx context.Context, title string, rows [][]string) (*domain.ResourceInfo, error) {
	content, err := encodeCSV(rows)
	if err != nil {
		return nil, err
	}

	name := title
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return s.uploadNewFile(ctx, name, mimeCSV, content)
}
