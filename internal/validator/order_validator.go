package validator

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	nonDigit   = regexp.MustCompile(`\D`)
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
)

// 電話番号から数字以外を落とす
func NormalizePhone(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// 正規化後ちょうど10桁なら有効
func ValidPhone(s string) bool {
	return len(NormalizePhone(s)) == 10
}

// 2文字以上かつ数字だけではないこと
func ValidName(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	return !digitsOnly.MatchString(s)
}

// trim後10文字以上
func ValidAddress(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= 10
}

// ParseQtyは数量入力を検証する。1以上max以下の整数だけ通す。
func ParseQty(s string, max int64) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	if n <= 0 || n > max {
		return 0, false
	}
	return n, true
}
