package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var cellRefPattern = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

// ColumnLetter は1始まりの列番号をスプレッドシート形式の列文字に変換します
// ゼロのない26進法: 1→A, 26→Z, 27→AA
func ColumnLetter(index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("%w: 列番号は1以上である必要があります (index=%d)", ErrInvalid, index)
	}

	var b []byte
	for index > 0 {
		index--
		b = append([]byte{byte('A' + index%26)}, b...)
		index /= 26
	}
	return string(b), nil
}

// ColumnIndex は列文字を1始まりの列番号に変換します (A→1, Z→26, AA→27)
func ColumnIndex(letter string) (int, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return 0, fmt.Errorf("%w: 列文字が空です", ErrInvalid)
	}

	result := 0
	for _, c := range letter {
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: 列文字に不正な文字が含まれています (letter=%s)", ErrInvalid, letter)
		}
		result = result*26 + int(c-'A') + 1
	}
	return result, nil
}

// NormalizeColumn はフォーム入力の列指定を列文字に正規化します
// 数値入力は列文字に変換し、アルファベットのみの入力はそのまま大文字化して受け入れます
// どちらでもない入力はバリデーションエラーです
func NormalizeColumn(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: 列は必須項目です", ErrInvalid)
	}

	if n, err := strconv.Atoi(input); err == nil {
		return ColumnLetter(n)
	}

	upper := strings.ToUpper(input)
	for _, c := range upper {
		if c < 'A' || c > 'Z' {
			return "", fmt.Errorf("%w: 列は数値(1,2,3...)または列文字(A,B,C...)で指定してください", ErrInvalid)
		}
	}
	return upper, nil
}

// ParseRow はフォーム入力の行番号を検証して返します。正の整数のみ有効です
func ParseRow(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: 行は必須項目です", ErrInvalid)
	}

	row, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("%w: 行は正の整数で指定してください (input=%s)", ErrInvalid, input)
	}
	if row < 1 {
		return 0, fmt.Errorf("%w: 行は1以上である必要があります (row=%d)", ErrInvalid, row)
	}
	return row, nil
}

// ParseCellRef は "A1" 形式のセル参照を (行, 列文字) に分解します
func ParseCellRef(ref string) (row int, col string, err error) {
	m := cellRefPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(ref)))
	if m == nil {
		return 0, "", fmt.Errorf("%w: セル参照の形式が不正です (ref=%s)", ErrInvalid, ref)
	}

	row, err = strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return 0, "", fmt.Errorf("%w: セル参照の行が不正です (ref=%s)", ErrInvalid, ref)
	}
	return row, m[1], nil
}

// ValidateRange は "A1:Z10" 形式の範囲指定を検証します
func ValidateRange(rangeName string) error {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(rangeName)), ":")
	if len(parts) != 2 {
		return fmt.Errorf("%w: 範囲はA1:B10形式で指定してください (range=%s)", ErrInvalid, rangeName)
	}
	for _, p := range parts {
		if _, _, err := ParseCellRef(p); err != nil {
			return err
		}
	}
	return nil
}
