// Package config loads the configuration of the evaluation service.
package config

import (
	"math/big"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/internal/logging"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override values in the config file
	ENV_PORT      = "PORT"
	ENV_LOG_LEVEL = "LOG_LEVEL"
	ENV_PREC      = "MATHEXPR_PREC"
	ENV_MEMO_SIZE = "MATHEXPR_MEMO_SIZE"
)

// Config is the service configuration.
type Config struct {
	// Logging configs
	Logging logging.Config `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig GinConfig `json:"gin_config" yaml:"gin_config"`

	// Evaluation configs
	Eval EvalConfig `json:"eval" yaml:"eval"`
}

type GinConfig struct {
	DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
	Port         string   `json:"port" yaml:"port"`
}

type EvalConfig struct {
	// Prec is the precision of evaluation in bits.
	Prec uint `json:"prec" yaml:"prec"`
	// MemoSize is the maximum number of memoized results. Zero disables the
	// memo.
	MemoSize int `json:"memo_size" yaml:"memo_size"`
	// MaxLength is the maximum length of an expression in bytes. Zero means
	// no limit.
	MaxLength int `json:"max_length" yaml:"max_length"`
}

// Default returns the configuration used for anything a config file leaves
// unset.
func Default() Config {
	return Config{
		Logging: logging.Config{
			LogLevel: "info",
		},
		GinConfig: GinConfig{
			AllowOrigins: []string{"*"},
			Port:         "8080",
		},
		Eval: EvalConfig{
			Prec:      mathexpr.DefaultPrec,
			MemoSize:  4096,
			MaxLength: 4096,
		},
	}
}

// Parse parses a YAML config over the defaults. Unknown fields are errors.
func Parse(b []byte) (Config, error) {
	conf := Default()
	if err := yaml.UnmarshalStrict(b, &conf); err != nil {
		return Config{}, errors.Wrap(err, "parsing config")
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// Read reads a YAML config file over the defaults.
func Read(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config")
	}
	return Parse(b)
}

// FromEnv reads the config file named by CONFIG_FILE_PATH, or uses the
// defaults if it is unset, then applies overrides from the environment.
func FromEnv() (Config, error) {
	conf := Default()
	if path := os.Getenv(ENV_CONFIG_FILE_PATH); path != "" {
		var err error
		conf, err = Read(path)
		if err != nil {
			return Config{}, err
		}
	}
	if err := conf.override(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func (conf *Config) override(lookup func(string) (string, bool)) error {
	if v, ok := lookup(ENV_PORT); ok {
		conf.GinConfig.Port = v
	}
	if v, ok := lookup(ENV_LOG_LEVEL); ok {
		conf.Logging.LogLevel = v
	}
	if v, ok := lookup(ENV_PREC); ok {
		p, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "bad %s", ENV_PREC)
		}
		conf.Eval.Prec = uint(p)
	}
	if v, ok := lookup(ENV_MEMO_SIZE); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "bad %s", ENV_MEMO_SIZE)
		}
		conf.Eval.MemoSize = n
	}
	return nil
}

// Validate checks that the config values are usable.
func (conf *Config) Validate() error {
	if conf.Eval.Prec == 0 || conf.Eval.Prec > big.MaxPrec {
		return errors.Errorf("eval precision %d out of range", conf.Eval.Prec)
	}
	if conf.Eval.MemoSize < 0 {
		return errors.Errorf("negative memo size %d", conf.Eval.MemoSize)
	}
	if conf.Eval.MaxLength < 0 {
		return errors.Errorf("negative max expression length %d", conf.Eval.MaxLength)
	}
	if conf.GinConfig.Port == "" {
		return errors.New("no port")
	}
	if len(conf.GinConfig.AllowOrigins) == 0 {
		return errors.New("no allowed origins; use \"*\" to allow all")
	}
	return nil
}
