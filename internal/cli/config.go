package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/basket/internal/memory"
	"github.com/mesh-intelligence/basket/internal/paths"
	"github.com/mesh-intelligence/basket/pkg/sqlite"
	"github.com/mesh-intelligence/basket/pkg/types"
)

// Config keys read from config.yaml.
const (
	cfgKeyBackend          = "backend"
	cfgKeyDataDir          = "data_dir"
	cfgKeySyncStrategy     = "sync_strategy"
	cfgKeyBatchSize        = "batch_size"
	cfgKeyBatchInterval    = "batch_interval"
	cfgKeyCatalogSource    = "catalog.source"
	cfgKeyContactMinLength = "contact.min_message_length"
	cfgKeyLogLevel         = "log.level"
)

// Per-variant cart settings live under cart.<variant>.
const (
	cartFieldKey         = "key"
	cartFieldLayout      = "layout"
	cartFieldDeliveryFee = "delivery_fee"
)

// cartConfigKey returns the config key of field for variant, e.g.
// cart.food.delivery_fee.
func cartConfigKey(variant, field string) string {
	return "cart." + variant + "." + field
}

// Defaults applied before config.yaml is read.
const (
	defaultBackend         = types.BackendSQLite
	defaultFoodDeliveryFee = 30.0
	defaultLogLevel        = "warn"
)

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; the defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cartConfigKey(variantProducts, cartFieldDeliveryFee), 0.0)
	v.SetDefault(cartConfigKey(variantFood, cartFieldDeliveryFee), defaultFoodDeliveryFee)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)

	v.SetConfigFile(paths.ConfigFile(configDir))
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// storageConfig builds the backend configuration from config.yaml and the
// resolved data directory.
func (a *app) storageConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: dataDir,
		SQLiteConfig: &types.SQLiteConfig{
			SyncStrategy:  a.cfg.GetString(cfgKeySyncStrategy),
			BatchSize:     a.cfg.GetInt(cfgKeyBatchSize),
			BatchInterval: a.cfg.GetInt(cfgKeyBatchInterval),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newStorage returns an unattached backend for the configured kind.
func (a *app) newStorage(backend string) types.Storage {
	if backend == types.BackendMemory {
		return memory.NewDetached()
	}
	return sqlite.NewBackend(a.logger.Named("storage"))
}

// withStorage attaches the configured backend, runs fn and detaches, even
// when fn fails.
func (a *app) withStorage(fn func(types.Storage) error) (err error) {
	cfg, err := a.storageConfig()
	if err != nil {
		return sysError("%w", err)
	}

	storage := a.newStorage(cfg.Backend)
	if err := storage.Attach(cfg); err != nil {
		return sysError("attach storage: %w", err)
	}
	defer func() {
		if derr := storage.Detach(); derr != nil && err == nil {
			err = sysError("detach storage: %w", derr)
		}
	}()

	return fn(storage)
}

// newLogger builds a console logger at level that writes to w.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", level, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
