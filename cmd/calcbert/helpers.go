package main

import (
	"context"

	"github.com/spf13/viper"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/config"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/engine"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/storage"
)

// openStorage opens the feedback database and applies migrations.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("could not open the feedback database", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, common.NewUserError("could not migrate the feedback database", err)
	}
	return store, nil
}

// engineConfig builds the engine configuration from viper settings.
func engineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.BaseDatasetPath = config.ExpandPath(viper.GetString("data.base_dataset"))
	cfg.AliasMapPath = config.ExpandPath(viper.GetString("data.alias_map"))
	cfg.TFIDFDir = config.ExpandPath(viper.GetString("models.tfidf_dir"))
	cfg.BayesDir = config.ExpandPath(viper.GetString("models.bayes_dir"))
	cfg.RuleThreshold = viper.GetFloat64("fusion.rule_threshold")
	cfg.OverrideThreshold = viper.GetFloat64("fusion.override_threshold")
	cfg.SyncRetrain = viper.GetBool("retrain.sync")
	return cfg
}

// newEngine opens storage and builds the prediction engine from it.
func newEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	store, err := openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(engineConfig(), store)
	if err != nil {
		store.Close()
		return nil, nil, common.NewUserError("could not initialize the prediction engine", err)
	}
	return eng, store, nil
}
