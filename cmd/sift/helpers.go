package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/sift-money/sift/internal/common"
	"github.com/sift-money/sift/internal/config"
	"github.com/sift-money/sift/internal/model"
	"github.com/sift-money/sift/internal/storage"
)

const defaultDBPath = "~/.local/share/sift/sift.db"

// getDatabase opens the configured database and applies migrations.
func getDatabase(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	cleanup := func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database", "error", closeErr)
		}
	}
	return db, cleanup, nil
}

// loadRuleStack assembles the full rule set in one slice: stored user and
// accepted mined rules, plus read-only system rules from the configured
// file. Priority ordering is the engine's job, not this one's.
func loadRuleStack(ctx context.Context, db *storage.SQLiteStorage) ([]model.Rule, error) {
	rules, err := db.ListRules(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	systemPath := viper.GetString("rules.system_path")
	if systemPath != "" {
		systemRules, sysErr := config.LoadSystemRules(config.ExpandPath(systemPath))
		if sysErr != nil {
			return nil, common.NewUserError("system rules file is unusable, fix or unset rules.system_path", sysErr)
		}
		rules = append(rules, systemRules...)
	}
	return rules, nil
}

// loadAccounts reads account metadata from config for scope constraints.
func loadAccounts() map[string]model.Account {
	var list []model.Account
	if err := viper.UnmarshalKey("accounts", &list); err != nil {
		slog.Warn("failed to parse accounts config", "error", err)
		return nil
	}
	if len(list) == 0 {
		return nil
	}
	accounts := make(map[string]model.Account, len(list))
	for _, account := range list {
		accounts[account.ID] = account
	}
	return accounts
}
