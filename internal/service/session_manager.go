// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MRudenko/go-budget-sync/internal/config"
	"github.com/MRudenko/go-budget-sync/internal/ledger"
	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/internal/utils"
	"github.com/MRudenko/go-budget-sync/models"
)

// probeFileName is created and removed inside the data directory on every
// Open to prove the directory is writable before any network work starts.
const probeFileName = ".write-probe"

type sessionManager struct {
	cfg     config.Ledger
	client  ledger.Client
	uuidGen *utils.UUIDGenerator
	log     *logger.Logger
}

// NewSessionManager creates the manager for the single ledger session.
func NewSessionManager(cfg config.Ledger, client ledger.Client, log *logger.Logger) SessionManager {
	return &sessionManager{
		cfg:     cfg,
		client:  client,
		uuidGen: utils.NewUUIDGenerator(),
		log:     log,
	}
}

func (m *sessionManager) Open(ctx context.Context) (models.Session, error) {
	// The directory check runs before authentication so a misconfigured
	// data dir fails fast, without a pointless round-trip to the server.
	if err := m.ensureDataDir(); err != nil {
		return models.Session{}, err
	}

	if err := m.client.Init(ctx, m.cfg.DataDir, m.cfg.ServerURL, m.cfg.Password); err != nil {
		return models.Session{}, fmt.Errorf("open ledger session: %w", err)
	}

	session := models.Session{
		ID:       m.uuidGen.Generate(),
		OpenedAt: time.Now(),
	}
	if expiry, ok := tokenExpiry(m.client.Token()); ok {
		session.TokenExpiresAt = expiry
	}

	event := m.log.Info().Str("sessionID", session.ID)
	if !session.TokenExpiresAt.IsZero() {
		event = event.Time("tokenExpiresAt", session.TokenExpiresAt)
	}
	event.Msg("ledger session opened")

	return session, nil
}

func (m *sessionManager) Close(ctx context.Context, session models.Session) {
	if err := m.client.Shutdown(ctx); err != nil {
		m.log.Warn().Err(err).Str("sessionID", session.ID).Msg("ledger session teardown failed")
		return
	}

	m.log.Info().Str("sessionID", session.ID).Msg("ledger session closed")
}

func (m *sessionManager) Reset(ctx context.Context, session models.Session) (models.Session, error) {
	m.log.Info().Str("sessionID", session.ID).Msg("resetting ledger session")

	m.Close(ctx, session)

	fresh, err := m.Open(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("reset ledger session: %w", err)
	}

	return fresh, nil
}

func (m *sessionManager) Shutdown(ctx context.Context) {
	if err := m.client.Shutdown(ctx); err != nil {
		m.log.Warn().Err(err).Msg("ledger client shutdown failed")
		return
	}

	m.log.Info().Msg("ledger client shut down")
}

// ensureDataDir creates the budget cache directory if it is absent and
// proves it is writable with a throwaway probe file.
func (m *sessionManager) ensureDataDir() error {
	if err := os.MkdirAll(m.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %s", ErrDataDirUnwritable, m.cfg.DataDir, err)
	}

	probePath := filepath.Join(m.cfg.DataDir, probeFileName)
	if err := os.WriteFile(probePath, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("%w: %s", ErrDataDirUnwritable, err)
	}
	if err := os.Remove(probePath); err != nil {
		return fmt.Errorf("%w: remove probe: %s", ErrDataDirUnwritable, err)
	}

	return nil
}

// tokenExpiry extracts the "exp" claim from a JWT bearer token without
// verifying its signature; the daemon only uses the expiry for logging.
// Opaque (non-JWT) tokens and tokens without an expiry yield ok == false.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}

	return expiry.Time, true
}
