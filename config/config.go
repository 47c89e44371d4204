package config

import (
	"strings"

	"github.com/fine-structures/ecomotif/motifs"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ECOMOTIF_EDGE_LIST or ECOMOTIF_CATALOG_PATH.
const EnvPrefix = "ECOMOTIF"

// Config holds all configuration for a motif run
type Config struct {
	// Edge list to read
	EdgeList string `mapstructure:"edge_list"`

	// Lines starting with any of these are skipped (e.g. "%" for KONECT-style headers)
	CommentPrefixes []string `mapstructure:"comment_prefixes"`

	// Number of enumeration workers; 1 enumerates on the calling goroutine
	Workers int `mapstructure:"workers"`

	// If set, motifs are canonized and each triangle is reported once
	Unique bool `mapstructure:"unique"`

	// If set, each listing line ends with the motif's three edge weights
	Weights bool `mapstructure:"weights"`

	// Listing destination; empty writes to stdout
	Output string `mapstructure:"output"`

	// Graphs with more nodes than this skip the tr(A^3) cross-check; 0 disables it
	VerifyMaxNodes int `mapstructure:"verify_max_nodes"`

	Catalog CatalogConfig `mapstructure:"catalog"`
}

// CatalogConfig holds configuration for the motif catalog
type CatalogConfig struct {
	Path     string `mapstructure:"path"` // empty means no catalog
	ReadOnly bool   `mapstructure:"read_only"`
}

// Load reads configuration from the global viper instance (config file, env and bound flags).
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from the given viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	v.SetDefault("edge_list", motifs.DefaultEdgeListPath)
	v.SetDefault("comment_prefixes", []string{})
	v.SetDefault("workers", 1)
	v.SetDefault("unique", false)
	v.SetDefault("weights", false)
	v.SetDefault("output", "")
	v.SetDefault("verify_max_nodes", 2000)
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.read_only", false)
}

func (config *Config) Validate() error {
	if len(config.EdgeList) == 0 {
		return errors.New("edge_list must be set")
	}
	if config.Workers < 1 {
		return errors.Errorf("workers must be >= 1 (got %d)", config.Workers)
	}
	if config.Catalog.ReadOnly && len(config.Catalog.Path) == 0 {
		return errors.Wrap(motifs.ErrBadCatalogParam, "catalog.read_only needs catalog.path")
	}
	return nil
}

// PrintOpts returns the listing options for the configured run.
func (config *Config) PrintOpts() motifs.PrintOpts {
	opts := motifs.DefaultPrintOpts
	opts.Weight = config.Weights
	return opts
}

// CatalogOpts returns the options for opening the configured catalog.
func (config *Config) CatalogOpts() motifs.CatalogOpts {
	return motifs.CatalogOpts{
		DbPathName: config.Catalog.Path,
		ReadOnly:   config.Catalog.ReadOnly,
	}
}
