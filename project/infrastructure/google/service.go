package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slack-data-bot/project/domain"
	"slack-data-bot/project/infrastructure/cache"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Drive 上のファイル種別ごとの MIME タイプ
const (
	mimeSpreadsheet = "application/vnd.google-apps.spreadsheet"
	mimeExcel       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV         = "text/csv"
)

// Service は Google Sheets / Drive を使った service.StoragePort の実装です
// 一覧結果は短時間プロセス内キャッシュに保持します
type Service struct {
	sheetsSvc *sheets.Service
	driveSvc  *drive.Service
	folderID  string
	cache     *cache.Cache
	cacheTTL  time.Duration
}

// NewService はサービスアカウント認証で Sheets / Drive クライアントを初期化します
func NewService(ctx context.Context, credentialsFile, folderID string, c *cache.Cache, cacheTTL time.Duration) (*Service, error) {
	sheetsSvc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("google: Sheetsクライアントの初期化失敗: %w", err)
	}

	driveSvc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("google: Driveクライアントの初期化失敗: %w", err)
	}

	return &Service{
		sheetsSvc: sheetsSvc,
		driveSvc:  driveSvc,
		folderID:  folderID,
		cache:     c,
		cacheTTL:  cacheTTL,
	}, nil
}

// ListResources は Drive フォルダ内の指定種別のリソース一覧を返します
func (s *Service) ListResources(ctx context.Context, kind domain.ResourceKind) ([]domain.ResourceInfo, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 不明なリソース種別です (kind=%s)", domain.ErrInvalid, kind)
	}

	cacheKey := fmt.Sprintf("drive_list:%s", kind)
	var cached []domain.ResourceInfo
	if s.cache != nil && s.cache.Get(cacheKey, &cached) {
		return cached, nil
	}

	items, err := s.listByMIME(ctx, mimeFor(kind))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// キャッシュ失敗は無視してよい（次回は素通しになるだけ）
		_ = s.cache.Set(cacheKey, items, s.cacheTTL)
	}
	return items, nil
}

// ReadResource はリソースのデータを読み出します
func (s *Service) ReadResource(ctx context.Context, ref domain.ResourceRef, readRange string) ([][]string, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	switch ref.Kind {
	case domain.KindSheet:
		return s.readSheet(ctx, ref.ID, readRange)
	case domain.KindExcel:
		return s.readExcel(ctx, ref.ID)
	case domain.KindCSV:
		return s.readCSV(ctx, ref.ID)
	default:
		return nil, fmt.Errorf("%w (kind=%s)", domain.ErrUnsupportedFormat, ref.Kind)
	}
}

// WriteCell は単一セルを更新します
func (s *Service) WriteCell(ctx context.Context, ref domain.ResourceRef, row int, col, value string) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if row <= 0 {
		return fmt.Errorf("%w: 行番号は1以上である必要があります (row=%d)", domain.ErrInvalid, row)
	}

	switch ref.Kind {
	case domain.KindSheet:
		return s.writeSheetCell(ctx, ref.ID, row, col, value)
	case domain.KindExcel:
		return s.writeExcelCell(ctx, ref.ID, row, col, value)
	case domain.KindCSV:
		return s.writeCSVCell(ctx, ref.ID, row, col, value)
	default:
		return fmt.Errorf("%w (kind=%s)", domain.ErrUnsupportedFormat, ref.Kind)
	}
}

// CreateResource は新しいリソースを作成し、ID・名前・URLを返します
// 作成後は一覧キャッシュを無効化します
func (s *Service) CreateResource(ctx context.Context, kind domain.ResourceKind, title string, rows [][]string) (*domain.ResourceInfo, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: 不明なリソース種別です (kind=%s)", domain.ErrInvalid, kind)
	}

	var (
		info *domain.ResourceInfo
		err  error
	)
	switch kind {
	case domain.KindSheet:
		info, err = s.createSheet(ctx, title, rows)
	case domain.KindExcel:
		info, err = s.createExcel(ctx, title, rows)
	case domain.KindCSV:
		info, err = s.createCSV(ctx, title, rows)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(fmt.Sprintf("drive_list:%s", kind))
	}
	return info, nil
}

// mimeFor は種別に対応する MIME タイプを返します
func mimeFor(kind domain.ResourceKind) string {
	switch kind {
	case domain.KindExcel:
		return mimeExcel
	case domain.KindCSV:
		return mimeCSV
	default:
		return mimeSpreadsheet
	}
}

// wrapErr は Google API のエラーをドメインのエラー種別に対応づけます
// 403 は権限不足、404 は対象消失として扱い、他は不透明なまま返します
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 403:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrPermissionDenied, err)
		case 404:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
