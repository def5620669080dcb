package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err  *AppError
		kind error
		code int
	}{
		{Validation("bad field"), ErrValidation, CodeValidation},
		{Authorization("bad key"), ErrAuthorization, CodeAuthorization},
		{NotFound("gone"), ErrNotFound, CodeNotFound},
		{Conflict("retry"), ErrConflict, CodeConflict},
	}

	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.kind)
		assert.Equal(t, tc.code, tc.err.Code)

		// 只属于自己的分类
		for _, other := range []error{ErrValidation, ErrAuthorization, ErrNotFound, ErrConflict} {
			if other == tc.kind {
				continue
			}
			assert.NotErrorIs(t, tc.err, other)
		}
	}
}

func TestErrorThroughWrapping(t *testing.T) {
	// 分类在fmt.Errorf包装后仍可匹配
	err := fmt.Errorf("create post: %w", Authorization("invalid key"))
	assert.ErrorIs(t, err, ErrAuthorization)

	var ae *AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, CodeAuthorization, ae.Code)
	assert.Equal(t, "invalid key", ae.Message)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternalError))

	// 已是AppError则原样返回
	orig := NotFound("missing")
	wrapped := Wrap(fmt.Errorf("outer: %w", orig), CodeInternalError)
	assert.Equal(t, orig, wrapped)

	plain := Wrap(errors.New("boom"), CodeInternalError)
	assert.Equal(t, CodeInternalError, plain.Code)
	assert.Equal(t, "boom", plain.Message)
}

func TestNew(t *testing.T) {
	err := New(CodePostCreateErr, "cannot create")
	assert.Equal(t, "cannot create", err.Error())
	assert.NotErrorIs(t, err, ErrValidation)
}
