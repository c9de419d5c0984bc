package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/basket/internal/cart"
	"github.com/mesh-intelligence/basket/internal/contact"
	"github.com/mesh-intelligence/basket/internal/paths"
	"github.com/mesh-intelligence/basket/pkg/types"
)

// configFile is the structure written to config.yaml.
type configFile struct {
	Backend       string        `yaml:"backend"`
	DataDir       string        `yaml:"data_dir,omitempty"`
	SyncStrategy  string        `yaml:"sync_strategy"`
	BatchSize     int           `yaml:"batch_size,omitempty"`
	BatchInterval int           `yaml:"batch_interval,omitempty"`
	Cart          cartConfig    `yaml:"cart"`
	Catalog       catalogConfig `yaml:"catalog"`
	Contact       contactConfig `yaml:"contact"`
	Log           logConfig     `yaml:"log"`
}

type cartConfig struct {
	Products cartSection `yaml:"products"`
	Food     cartSection `yaml:"food"`
}

type cartSection struct {
	Key         string  `yaml:"key,omitempty"`
	Layout      string  `yaml:"layout,omitempty"`
	DeliveryFee float64 `yaml:"delivery_fee"`
}

type catalogConfig struct {
	Source string `yaml:"source,omitempty"`
}

type contactConfig struct {
	MinMessageLength int `yaml:"min_message_length"`
}

type logConfig struct {
	Level string `yaml:"level"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend:      defaultBackend,
		DataDir:      dataDir,
		SyncStrategy: types.SyncImmediate,
		Cart: cartConfig{
			Products: cartSection{Layout: string(cart.LayoutArray)},
			Food:     cartSection{Layout: string(cart.LayoutMap), DeliveryFee: defaultFoodDeliveryFee},
		},
		Contact: contactConfig{MinMessageLength: contact.DefaultMinMessageLength},
		Log:     logConfig{Level: defaultLogLevel},
	}
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize basket storage",
		Long:  "Create the configuration and data directories, write a default config.yaml and initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a)
		},
	}
}

func runInit(cmd *cobra.Command, a *app) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}

	configPath := paths.ConfigFile(a.configDir)
	written, err := writeConfigIfMissing(configPath, a.dataDir)
	if err != nil {
		return sysError("write config: %w", err)
	}
	if written {
		a.logger.Info("wrote default config", zap.String("path", configPath))
	}

	// Attach then detach so the data directory and entries.jsonl exist.
	if err := a.withStorage(func(types.Storage) error { return nil }); err != nil {
		return err
	}

	fmt.Fprintln(out(cmd), "basket initialized")
	return nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left untouched.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := defaultConfigFile(dataDir)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
