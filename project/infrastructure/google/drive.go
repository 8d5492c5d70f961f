package google

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"slack-data-bot/project/domain"

	"google.golang.org/api/drive/v3"
)

// listByMIME は Drive フォルダ内の指定 MIME タイプのファイル一覧を返します
func (s *Service) listByMIME(ctx context.Context, mimeType string) ([]domain.ResourceInfo, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", s.folderID, mimeType)

	resp, err := s.driveSvc.Files.List().
		Q(query).
		Fields("files(id, name, modifiedTime, webViewLink)").
		OrderBy("modifiedTime desc").
		PageSize(50).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("drive: ファイル一覧の取得失敗", err)
	}

	items := make([]domain.ResourceInfo, 0, len(resp.Files))
	for _, f := range resp.Files {
		items = append(items, domain.ResourceInfo{
			ID:       f.Id,
			Name:     f.Name,
			Modified: f.ModifiedTime,
			URL:      f.WebViewLink,
		})
	}
	return items, nil
}

// downloadFile は Drive 上のファイル本体をダウンロードします
func (s *Service) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.driveSvc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, wrapErr("drive: ファイルのダウンロード失敗", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drive: レスポンスの読み出し失敗: %w", err)
	}
	return data, nil
}

// uploadNewFile は Drive フォルダに新しいファイルを作成します
func (s *Service) uploadNewFile(ctx context.Context, name, mimeType string, content []byte) (*domain.ResourceInfo, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: mimeType,
	}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	created, err := s.driveSvc.Files.Create(meta).
		Media(bytes.NewReader(content)).
		Fields("id, name, webViewLink").
		Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("drive: ファイルの作成失敗", err)
	}

	return &domain.ResourceInfo{
		ID:   created.Id,
		Name: created.Name,
		URL:  created.WebViewLink,
	}, nil
}

// updateFileContent は Drive 上の既存ファイルの中身を置き換えます
func (s *Service) updateFileContent(ctx context.Context, fileID string, content []byte) error {
	_, err := s.driveSvc.Files.Update(fileID, &drive.File{}).
		Media(bytes.NewReader(content)).
		Context(ctx).Do()
	if err != nil {
		return wrapErr("drive: ファイルの更新失敗", err)
	}
	return nil
}
