package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// FileConfig is the optional config file (~/.config/parley/config.yaml).
// Pointer fields distinguish "not set" from zero values; explicit CLI
// flags always win.
type FileConfig struct {
	Endpoint         string `yaml:"endpoint"`
	InstructionTuned *bool  `yaml:"instruction_tuned"`
	BOSTokenID       *int64 `yaml:"bos_token_id"`
	EOSTokenID       *int64 `yaml:"eos_token_id"`

	MaxTokens          *int64 `yaml:"max_tokens"`
	MaxGeneratedTokens *int64 `yaml:"max_generated_tokens"`
	Multiturn          *bool  `yaml:"multiturn"`
	Deterministic      *bool  `yaml:"deterministic"`
	Verbosity          *int64 `yaml:"verbosity"`
	NumThreads         *int64 `yaml:"num_threads"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "parley", "config.yaml")
}

// loadFileConfig reads the config file. A missing or unreadable file
// yields a zero config.
func loadFileConfig() FileConfig {
	path := configPath()
	if path == "" {
		return FileConfig{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}
	}
	return cfg
}

// applyFileConfig fills flag variables from the file for flags the user
// did not set explicitly.
func applyFileConfig(c *cli.Command, cfg FileConfig) {
	if cfg.Endpoint != "" && !c.IsSet("endpoint") {
		endpoint = cfg.Endpoint
	}
	if cfg.InstructionTuned != nil && !c.IsSet("instruction-tuned") {
		instructionTuned = *cfg.InstructionTuned
	}
	if cfg.BOSTokenID != nil && !c.IsSet("bos-token") {
		bosTokenID = *cfg.BOSTokenID
	}
	if cfg.EOSTokenID != nil && !c.IsSet("eos-token") {
		eosTokenID = *cfg.EOSTokenID
	}
	if cfg.MaxTokens != nil && !c.IsSet("max-tokens") {
		maxTokens = *cfg.MaxTokens
	}
	if cfg.MaxGeneratedTokens != nil && !c.IsSet("max-generated-tokens") {
		maxGeneratedTokens = *cfg.MaxGeneratedTokens
	}
	if cfg.Multiturn != nil && !c.IsSet("multiturn") {
		multiturn = *cfg.Multiturn
	}
	if cfg.Deterministic != nil && !c.IsSet("deterministic") {
		deterministic = *cfg.Deterministic
	}
	if cfg.Verbosity != nil && !c.IsSet("verbosity") {
		verbosity = *cfg.Verbosity
	}
	if cfg.NumThreads != nil && !c.IsSet("num-threads") {
		numThreads = *cfg.NumThreads
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
