// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MRudenko/go-budget-sync/internal/ledger"
	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/models"
)

type cacheResolver struct {
	dataDir string
	log     *logger.Logger
}

// NewCacheResolver creates a resolver over the given budget cache directory.
func NewCacheResolver(dataDir string, log *logger.Logger) CacheResolver {
	return &cacheResolver{dataDir: dataDir, log: log}
}

func (r *cacheResolver) Resolve() (map[string]string, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return nil, fmt.Errorf("list cache directory: %w", err)
	}

	index := make(map[string]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		cached, err := r.readEntry(entry.Name())
		if err != nil {
			r.log.Warn().Err(err).Str("dir", entry.Name()).
				Msg("skipping cache directory with unreadable metadata")
			continue
		}

		// Duplicate cache entries for one sync ID should not happen, but
		// when they do, the first directory in lexical order wins.
		if _, ok := index[cached.SyncID]; ok {
			r.log.Warn().Str("dir", entry.Name()).Str("syncID", cached.SyncID).
				Msg("duplicate cache entry ignored")
			continue
		}

		index[cached.SyncID] = cached.LocalBudgetID
	}

	return index, nil
}

func (r *cacheResolver) Invalidate(syncID string) error {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return fmt.Errorf("list cache directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		cached, err := r.readEntry(entry.Name())
		if err != nil {
			r.log.Warn().Err(err).Str("dir", entry.Name()).
				Msg("skipping cache directory with unreadable metadata")
			continue
		}
		if cached.SyncID != syncID {
			continue
		}

		if err := os.RemoveAll(filepath.Join(r.dataDir, cached.DirectoryName)); err != nil {
			return fmt.Errorf("evict cached budget %s: %w", syncID, err)
		}

		r.log.Info().Str("syncID", syncID).Str("dir", cached.DirectoryName).
			Msg("cached budget evicted")
		return nil
	}

	// Fail open: the next attempt simply downloads the budget afresh.
	r.log.Warn().Str("syncID", syncID).Msg("no cached budget matched, nothing evicted")
	return nil
}

// readEntry parses one cache directory's metadata descriptor into a cache
// entry.
func (r *cacheResolver) readEntry(dirName string) (models.CacheEntry, error) {
	raw, err := os.ReadFile(filepath.Join(r.dataDir, dirName, ledger.MetadataFileName))
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("read metadata: %w", err)
	}

	var meta models.BudgetMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return models.CacheEntry{}, fmt.Errorf("parse metadata: %w", err)
	}
	if meta.ID == "" || meta.GroupID == "" {
		return models.CacheEntry{}, fmt.Errorf("metadata in %s has empty identifiers", dirName)
	}

	return models.CacheEntry{
		DirectoryName: dirName,
		LocalBudgetID: meta.ID,
		SyncID:        meta.GroupID,
	}, nil
}
