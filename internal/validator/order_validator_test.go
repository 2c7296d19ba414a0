package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0812345678"))
	//区切り文字は除去してから数える
	assert.True(t, ValidPhone("081-234-5678"))
	assert.True(t, ValidPhone("081 234 5678"))

	assert.False(t, ValidPhone("081-234-567")) // 9桁
	assert.False(t, ValidPhone("08123456789")) // 11桁
	assert.False(t, ValidPhone(""))
	assert.False(t, ValidPhone("abcdefghij"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "0812345678", NormalizePhone("081-234-5678"))
	assert.Equal(t, "0812345678", NormalizePhone(" 081 234 5678 "))
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("สมชาย ใจดี"))
	assert.True(t, ValidName("Jo"))

	assert.False(t, ValidName("J"))
	assert.False(t, ValidName("  "))
	assert.False(t, ValidName("0812345678")) // 数字だけは電話番号の誤入力とみなす
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("99/1 ถ.สุขุมวิท กรุงเทพฯ 10110"))

	assert.False(t, ValidAddress("กรุงเทพ"))
	assert.False(t, ValidAddress("         "))
}

func TestParseQty(t *testing.T) {
	qty, ok := ParseQty("3", 5)
	assert.True(t, ok)
	assert.Equal(t, int64(3), qty)

	qty, ok = ParseQty(" 5 ", 5)
	assert.True(t, ok)
	assert.Equal(t, int64(5), qty)

	//在庫超過・0以下・数字以外は拒否
	_, ok = ParseQty("6", 5)
	assert.False(t, ok)
	_, ok = ParseQty("0", 5)
	assert.False(t, ok)
	_, ok = ParseQty("-1", 5)
	assert.False(t, ok)
	_, ok = ParseQty("abc", 5)
	assert.False(t, ok)
	_, ok = ParseQty("1", 0)
	assert.False(t, ok)
}
