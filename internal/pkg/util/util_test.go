package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	// sha256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Fingerprint("abc"))

	// 确定性与区分度
	assert.Equal(t, Fingerprint("key"), Fingerprint("key"))
	assert.NotEqual(t, Fingerprint("key"), Fingerprint("Key"))
	assert.Len(t, Fingerprint(""), 64)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32) // hex编码，长度翻倍

	s2, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, s, s2)
}

func TestGenerateRandomPassword(t *testing.T) {
	p, err := GenerateRandomPassword(12)
	require.NoError(t, err)
	assert.Len(t, p, 12)
	for _, ch := range p {
		assert.True(t, strings.ContainsRune(passwordAlphabet, ch), "unexpected char %q", ch)
	}

	// 非法长度回退默认
	p, err = GenerateRandomPassword(0)
	require.NoError(t, err)
	assert.Len(t, p, 12)
}

func TestInt64Conversions(t *testing.T) {
	n, err := StrToInt64("9007199254740993")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), n)

	_, err = StrToInt64("abc")
	assert.Error(t, err)

	assert.Equal(t, "-42", Int64ToStr(-42))
}

func TestUnixToTime(t *testing.T) {
	ts := int64(1700000000)
	assert.Equal(t, ts, UnixToTime(ts).Unix())
}

func TestDefaultIfEmpty(t *testing.T) {
	assert.Equal(t, "fallback", DefaultIfEmpty("", "fallback"))
	assert.Equal(t, "value", DefaultIfEmpty("value", "fallback"))
}
