package domain

import (
	"errors"
	"strings"
)

// ドメインエラー定義
var (
	// ErrInvalid は不正な値が設定された場合のエラー
	ErrInvalid = errors.New("ドメイン: 不正な値です")

	// ErrNotFound は要求されたリソースが見つからない場合のエラー
	ErrNotFound = errors.New("ドメイン: リソースが見つかりません")

	// ErrPermissionDenied はリモートAPI側で権限が不足している場合のエラー
	ErrPermissionDenied = errors.New("ドメイン: アクセス権限がありません")

	// ErrUnsupportedFormat は対応していないファイル形式の場合のエラー
	ErrUnsupportedFormat = errors.New("ドメイン: サポートされていないファイル形式です")
)

// ErrorKind はリモート操作失敗の分類を表します
type ErrorKind string

const (
	ErrorKindPermissionDenied  ErrorKind = "permission_denied"
	ErrorKindNotFound          ErrorKind = "not_found"
	ErrorKindFormatUnsupported ErrorKind = "format_unsupported"
	ErrorKindGeneric           ErrorKind = "generic"
)

// ClassifyRemoteError は外部コラボレーターから返る不透明なエラーを分類します
// Google API のエラーはHTTPステータスやメッセージの部分一致でしか判別できないため、
// 既知のパターンを順に照合します
func ClassifyRemoteError(err error) ErrorKind {
	if err == nil {
		return ErrorKindGeneric
	}

	// ドメインエラーが既に設定されている場合はそのまま対応づける
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ErrorKindPermissionDenied
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrorKindFormatUnsupported
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "403") || strings.Contains(msg, "forbidden"):
		return ErrorKindPermissionDenied
	case strings.Contains(msg, "not found") || strings.Contains(msg, "404") || strings.Contains(msg, "notfound"):
		return ErrorKindNotFound
	case strings.Contains(msg, "format") || strings.Contains(msg, "does not support") || strings.Contains(msg, "unable to read"):
		return ErrorKindFormatUnsupported
	default:
		return ErrorKindGeneric
	}
}
