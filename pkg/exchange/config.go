package exchange

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/edigeo/pkg/bundle"
)

// Config holds decoder settings, usually read from an edigeo.toml file.
type Config struct {
	// Encoding of member files on disk; see bundle.ParseEncoding.
	Encoding string `toml:"encoding"`
	// Workers bounds concurrent member decoding. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`
	// Strict turns segmentation anomalies and transcoding errors into
	// decode failures.
	Strict bool `toml:"strict"`
	// Members restricts decoding to the named members, e.g. ["THF", "T1"].
	// Empty means every member present in the bundle.
	Members []string `toml:"members"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{Encoding: string(bundle.DefaultEncoding)}
}

// LoadConfig reads a TOML config file. A missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config: decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("read config: unknown key %q", undecoded[0].String())
	}
	if _, err := cfg.resolve(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

type settings struct {
	encoding bundle.Encoding
	workers  int
	strict   bool
	members  []bundle.Member
}

func (c Config) resolve() (settings, error) {
	enc, err := bundle.ParseEncoding(c.Encoding)
	if err != nil {
		return settings{}, err
	}
	if c.Workers < 0 {
		return settings{}, fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	workers := c.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := settings{encoding: enc, workers: workers, strict: c.Strict}
	if len(c.Members) == 0 {
		s.members = bundle.Members()
		return s, nil
	}
	seen := make(map[bundle.Member]bool, len(c.Members))
	for _, name := range c.Members {
		m, err := bundle.ParseMember(name)
		if err != nil {
			return settings{}, err
		}
		seen[m] = true
	}
	// Keep canonical order whatever order the config lists.
	for _, m := range bundle.Members() {
		if seen[m] {
			s.members = append(s.members, m)
		}
	}
	return s, nil
}
