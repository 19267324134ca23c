// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MRudenko/go-budget-sync/internal/config"
	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/internal/mock"
	"github.com/MRudenko/go-budget-sync/models"
)

func newTestSessionManager(t *testing.T, ctrl *gomock.Controller, dataDir string) (*sessionManager, *mock.MockClient) {
	t.Helper()

	client := mock.NewMockClient(ctrl)
	cfg := config.Ledger{
		ServerURL: "https://ledger.example.com",
		Password:  "account-password",
		DataDir:   dataDir,
	}

	return NewSessionManager(cfg, client, logger.Nop()).(*sessionManager), client
}

// signedTestToken выпускает JWT с заданным сроком жизни.
func signedTestToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": expiresAt.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	return token
}

// ── Open ─────────────────────────────────────────────────────────────────────

func TestSessionManager_Open_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	dataDir := filepath.Join(t.TempDir(), "budgets") // ещё не существует
	mgr, client := newTestSessionManager(t, ctrl, dataDir)

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	client.EXPECT().Init(ctx, dataDir, "https://ledger.example.com", "account-password").Return(nil)
	client.EXPECT().Token().Return(signedTestToken(t, expiresAt))

	session, err := mgr.Open(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.False(t, session.OpenedAt.IsZero())
	assert.Equal(t, expiresAt.Unix(), session.TokenExpiresAt.Unix())

	// каталог создан, пробный файл удалён
	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSessionManager_Open_OpaqueTokenHasNoExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mgr, client := newTestSessionManager(t, ctrl, t.TempDir())

	client.EXPECT().Init(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	client.EXPECT().Token().Return("opaque-session-token")

	session, err := mgr.Open(ctx)
	require.NoError(t, err)
	assert.True(t, session.TokenExpiresAt.IsZero())
}

func TestSessionManager_Open_DataDirIsAFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// путь занят обычным файлом — MkdirAll обязан провалиться
	blocked := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o600))

	mgr, _ := newTestSessionManager(t, ctrl, filepath.Join(blocked, "budgets"))

	_, err := mgr.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataDirUnwritable)
}

func TestSessionManager_Open_InitFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mgr, client := newTestSessionManager(t, ctrl, t.TempDir())

	client.EXPECT().Init(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("credentials rejected"))

	_, err := mgr.Open(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open ledger session")
}

// ── Close / Reset / Shutdown ─────────────────────────────────────────────────

func TestSessionManager_Close_SwallowsShutdownError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mgr, client := newTestSessionManager(t, ctrl, t.TempDir())

	client.EXPECT().Shutdown(ctx).Return(errors.New("connection reset"))

	// ошибка только логируется
	assert.NotPanics(t, func() { mgr.Close(ctx, models.Session{ID: "s1"}) })
}

func TestSessionManager_Reset_ProducesFreshSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mgr, client := newTestSessionManager(t, ctrl, t.TempDir())

	old := models.Session{ID: "old-session"}
	client.EXPECT().Shutdown(ctx).Return(nil)
	client.EXPECT().Init(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	client.EXPECT().Token().Return("")

	fresh, err := mgr.Reset(ctx, old)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)
	assert.NotEqual(t, old.ID, fresh.ID)
}

func TestSessionManager_Reset_OpenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mgr, client := newTestSessionManager(t, ctrl, t.TempDir())

	client.EXPECT().Shutdown(ctx).Return(nil)
	client.EXPECT().Init(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("server unreachable"))

	_, err := mgr.Reset(ctx, models.Session{ID: "s1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset ledger session")
}

func TestSessionManager_Shutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mgr, client := newTestSessionManager(t, ctrl, t.TempDir())

	client.EXPECT().Shutdown(ctx).Return(nil)
	mgr.Shutdown(ctx)
}

// ── tokenExpiry ──────────────────────────────────────────────────────────────

func TestTokenExpiry(t *testing.T) {
	expiresAt := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	tests := []struct {
		name   string
		token  func(t *testing.T) string
		wantOK bool
	}{
		{
			name:   "JWT с exp",
			token:  func(t *testing.T) string { return signedTestToken(t, expiresAt) },
			wantOK: true,
		},
		{
			name: "JWT без exp",
			token: func(t *testing.T) string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "daemon"}).
					SignedString([]byte("test-key"))
				require.NoError(t, err)
				return token
			},
			wantOK: false,
		},
		{
			name:   "непрозрачный токен",
			token:  func(t *testing.T) string { return "opaque" },
			wantOK: false,
		},
		{
			name:   "пустой токен",
			token:  func(t *testing.T) string { return "" },
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expiry, ok := tokenExpiry(tt.token(t))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, expiresAt.Unix(), expiry.Unix())
			}
		})
	}
}
