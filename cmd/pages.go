package cmd

import (
	"github.com/foomo/gitpages/pkg/page"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// pageConfig mirrors one entry of the `pages` list in the configuration file.
// AutoIndex is a pointer to tell "absent" apart from an explicit false.
type pageConfig struct {
	Repo         string `mapstructure:"repo"`
	Ref          string `mapstructure:"ref"`
	Subfolder    string `mapstructure:"subfolder"`
	Prefix       string `mapstructure:"prefix"`
	AutoIndex    *bool  `mapstructure:"autoIndex"`
	AutoList     bool   `mapstructure:"autoList"`
	UpdateSecret string `mapstructure:"updateSecret"`
	MaxBytes     int64  `mapstructure:"maxBytes"`
}

// loadPageConfigs reads the ordered page list from the given file and applies
// defaults: prefix "/", auto index on, auto list off, no budget.
func loadPageConfigs(path string) ([]page.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read page configuration file %q", path)
	}

	var raw []pageConfig
	if err := v.UnmarshalKey("pages", &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse page configurations")
	}

	configs := make([]page.Config, 0, len(raw))
	for _, c := range raw {
		config := page.Config{
			Repo:         c.Repo,
			Ref:          c.Ref,
			Subfolder:    c.Subfolder,
			Prefix:       c.Prefix,
			AutoIndex:    true,
			AutoList:     c.AutoList,
			UpdateSecret: c.UpdateSecret,
			MaxBytes:     c.MaxBytes,
		}
		if config.Prefix == "" {
			config.Prefix = "/"
		}
		if c.AutoIndex != nil {
			config.AutoIndex = *c.AutoIndex
		}
		configs = append(configs, config)
	}
	return configs, nil
}
