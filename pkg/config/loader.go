package config

import (
	"reflect"
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// EnvPrefix starts every environment variable read as configuration
const EnvPrefix = "INSTKIT_"

// LoadOption configures Load
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs        afero.Fs
	file      string
	explicit  bool
	overrides map[string]interface{}
	noEnv     bool
}

// WithFile loads path as the user config file. Unlike the default location
// the file must exist.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
			o.explicit = true
		}
	}
}

// WithConfigFS sets the filesystem the user config file is read from
func WithConfigFS(fsys afero.Fs) LoadOption {
	return func(o *loadOptions) { o.fs = fsys }
}

// WithOverrides applies dotted keys ("volume.max_size") over all other sources
func WithOverrides(overrides map[string]interface{}) LoadOption {
	return func(o *loadOptions) { o.overrides = overrides }
}

// WithoutEnv skips INSTKIT_ environment variables
func WithoutEnv() LoadOption {
	return func(o *loadOptions) { o.noEnv = true }
}

// Load builds the configuration from, in increasing precedence, the
// embedded defaults, the user config file, the environment and overrides.
func Load(opts ...LoadOption) (*Config, error) {
	logger := logging.GetLogger("config")
	o := loadOptions{fs: afero.NewOsFs(), file: paths.ConfigFilePath()}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	if o.file != "" {
		_, statErr := o.fs.Stat(o.file)
		switch {
		case statErr == nil:
			if err := k.Load(o.provider(), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", o.file)
			}
			logger.Debug().Str("path", o.file).Msg("Loaded config file")
		case o.explicit:
			return nil, errors.Wrapf(statErr, errors.ErrConfigLoad, "config file %s not readable", o.file)
		}
	}

	// 3. Environment
	if !o.noEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Overrides
	if len(o.overrides) > 0 {
		if err := k.Load(confmap.Provider(o.overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				byteSizeHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("max_size", cfg.Volume.MaxSize.String()).
		Int("variables", len(cfg.Rules.Variables)).
		Msg("Configuration loaded")
	return &cfg, nil
}

// provider reads the user config file, through koanf's file provider when
// it lives on the OS filesystem
func (o *loadOptions) provider() koanf.Provider {
	if _, ok := o.fs.(*afero.OsFs); ok {
		return file.Provider(o.file)
	}
	return &aferoProvider{fs: o.fs, path: o.file}
}

// envKey maps INSTKIT_VOLUME_MAX_SIZE to volume.max_size and
// INSTKIT_RULES_VARIABLES_NAME to rules.variables.NAME
func envKey(s string) string {
	key := strings.TrimPrefix(s, EnvPrefix)
	if name, ok := strings.CutPrefix(key, "RULES_VARIABLES_"); ok {
		return "rules.variables." + name
	}
	section, name, found := strings.Cut(strings.ToLower(key), "_")
	if !found {
		return section
	}
	return section + "." + name
}

func byteSizeHookFunc() mapstructure.DecodeHookFunc {
	sizeType := reflect.TypeOf(ByteSize(0))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != sizeType || f.Kind() != reflect.String {
			return data, nil
		}
		return ParseByteSize(data.(string))
	}
}
