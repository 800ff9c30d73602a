package config

import (
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/volume"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
)

// Config is the complete instkit configuration
type Config struct {
	Volume  VolumeConfig  `koanf:"volume"`
	Rules   RulesConfig   `koanf:"rules"`
	Install InstallConfig `koanf:"install"`
}

// VolumeConfig controls how archives are split into volumes
type VolumeConfig struct {
	MaxSize            ByteSize `koanf:"max_size"`
	FirstVolumeReserve ByteSize `koanf:"first_volume_reserve"`
	SearchPaths        []string `koanf:"search_paths"`
	CompressionLevel   int      `koanf:"compression_level"`
}

// RulesConfig holds the condition engine defaults
type RulesConfig struct {
	// Conditions is the path of an XML condition document, if any
	Conditions string `koanf:"conditions"`

	// Variables are the default install variable bindings
	Variables map[string]string `koanf:"variables"`
}

// InstallConfig holds install defaults
type InstallConfig struct {
	TargetDir string `koanf:"target_dir"`
}

// ByteSize is a size in bytes, configurable as a number or a humanized
// string such as "650MB"
type ByteSize int64

// ParseByteSize parses "4096", "650MB" or "4.7 GiB"
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrConfigParse, "invalid size %q", s)
	}
	return ByteSize(n), nil
}

// Int64 returns the size in bytes
func (b ByteSize) Int64() int64 { return int64(b) }

// String formats the size for humans
func (b ByteSize) String() string {
	if b < 0 {
		return humanize.Comma(int64(b)) + " B"
	}
	return humanize.Bytes(uint64(b))
}

// Validate checks that the configuration describes a usable setup
func (c *Config) Validate() error {
	v := c.Volume
	if v.MaxSize.Int64() <= volume.MagicNumberLength+1 {
		return errors.Newf(errors.ErrConfigValid,
			"volume.max_size must exceed %d bytes", volume.MagicNumberLength+1).
			WithDetail("max_size", v.MaxSize.Int64())
	}
	if v.FirstVolumeReserve < 0 || v.FirstVolumeReserve.Int64() >= v.MaxSize.Int64()-volume.MagicNumberLength {
		return errors.New(errors.ErrConfigValid,
			"volume.first_volume_reserve must leave room for data after the volume header").
			WithDetail("first_volume_reserve", v.FirstVolumeReserve.Int64())
	}
	if v.CompressionLevel < gzip.HuffmanOnly || v.CompressionLevel > gzip.BestCompression {
		return errors.Newf(errors.ErrConfigValid,
			"volume.compression_level must be between %d and %d", gzip.HuffmanOnly, gzip.BestCompression).
			WithDetail("compression_level", v.CompressionLevel)
	}
	return nil
}
