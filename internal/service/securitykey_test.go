package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board_go/internal/model"
	"board_go/internal/pkg/apperr"
	"board_go/internal/pkg/util"
)

func TestVerifyKey(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecurityKeyService(repo)

	repo.keys[1] = &model.SecurityKey{
		ID: 1, KeyHash: util.Fingerprint("OPEN-SESAME"), KeyName: "main", IsActive: true,
	}

	// 空密钥不是错误，就是没有
	keyID, err := svc.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, keyID)

	keyID, err = svc.Verify(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, keyID)

	keyID, err = svc.Verify(context.Background(), "OPEN-SESAME")
	require.NoError(t, err)
	require.NotNil(t, keyID)
	assert.Equal(t, int64(1), *keyID)
}

func TestVerifyInactiveAndExpired(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecurityKeyService(repo)

	past := time.Now().Add(-time.Minute)
	repo.keys[1] = &model.SecurityKey{
		ID: 1, KeyHash: util.Fingerprint("inactive"), KeyName: "a", IsActive: false,
	}
	repo.keys[2] = &model.SecurityKey{
		ID: 2, KeyHash: util.Fingerprint("expired"), KeyName: "b", IsActive: true, ExpiresAt: &past,
	}

	for _, key := range []string{"inactive", "expired"} {
		keyID, err := svc.Verify(context.Background(), key)
		require.NoError(t, err)
		assert.Nil(t, keyID, key)
	}
}

func TestCreateKeyReturnsPlaintextOnce(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecurityKeyService(repo)

	plaintext, dto, err := svc.CreateKey(context.Background(), "launch", nil)
	require.NoError(t, err)
	require.NotEmpty(t, plaintext)
	require.NotNil(t, dto)
	assert.Equal(t, "launch", dto.KeyName)
	assert.True(t, dto.IsActive)

	// 库里只有指纹
	stored := repo.keys[dto.ID]
	require.NotNil(t, stored)
	assert.Equal(t, util.Fingerprint(plaintext), stored.KeyHash)
	assert.NotEqual(t, plaintext, stored.KeyHash)

	// 新密钥立即可用
	keyID, err := svc.Verify(context.Background(), plaintext)
	require.NoError(t, err)
	require.NotNil(t, keyID)
	assert.Equal(t, dto.ID, *keyID)
}

func TestCreateKeyRequiresName(t *testing.T) {
	svc := NewSecurityKeyService(newFakeKeyRepo())
	_, _, err := svc.CreateKey(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeactivateKey(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecurityKeyService(repo)

	plaintext, dto, err := svc.CreateKey(context.Background(), "temp", nil)
	require.NoError(t, err)

	ok, err := svc.Deactivate(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	keyID, err := svc.Verify(context.Background(), plaintext)
	require.NoError(t, err)
	assert.Nil(t, keyID)

	// 重复停用：幂等false
	ok, err = svc.Deactivate(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyRequestLifecycle(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecurityKeyService(repo)

	id, err := svc.CreateRequest(context.Background(), "alice@example.com", "please", nil, nil)
	require.NoError(t, err)

	req := repo.requests[id]
	require.NotNil(t, req)
	assert.Equal(t, model.KeyRequestPending, req.RequestStatus)
	require.NotNil(t, req.AutoGeneratedPassword)
	assert.Len(t, *req.AutoGeneratedPassword, 12)

	ok, err := svc.ProcessRequest(context.Background(), id, true)
	require.NoError(t, err)
	assert.True(t, ok)

	req = repo.requests[id]
	assert.Equal(t, model.KeyRequestApproved, req.RequestStatus)
	require.NotNil(t, req.AssignedSecurityKey)
	require.NotNil(t, req.ProcessedAt)

	// 批准时派发的密钥立即可用
	keyID, err := svc.Verify(context.Background(), *req.AssignedSecurityKey)
	require.NoError(t, err)
	assert.NotNil(t, keyID)

	// 已处理的申请不可再处理
	ok, err = svc.ProcessRequest(context.Background(), id, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyRequestReject(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecurityKeyService(repo)

	id, err := svc.CreateRequest(context.Background(), "bob@example.com", "", nil, nil)
	require.NoError(t, err)

	ok, err := svc.ProcessRequest(context.Background(), id, false)
	require.NoError(t, err)
	assert.True(t, ok)

	req := repo.requests[id]
	assert.Equal(t, model.KeyRequestRejected, req.RequestStatus)
	assert.Nil(t, req.AssignedSecurityKey)
	assert.Len(t, repo.keys, 0)
}

func TestKeyRequestRequiresEmail(t *testing.T) {
	svc := NewSecurityKeyService(newFakeKeyRepo())
	_, err := svc.CreateRequest(context.Background(), " ", "", nil, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProcessMissingRequest(t *testing.T) {
	svc := NewSecurityKeyService(newFakeKeyRepo())
	ok, err := svc.ProcessRequest(context.Background(), 12345, true)
	require.NoError(t, err)
	assert.False(t, ok)
}
