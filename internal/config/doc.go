// Package config provides configuration management for veribak using Viper.
//
// # Configuration File
//
// The configuration file is config.yaml, searched in the current directory
// and then in $XDG_CONFIG_HOME/veribak (or $VERIBAK_CONFIG_DIR when set):
//
//	version: 1
//	checksum_algorithm: sha3_256
//	workers: 8
//	skip_unreadable: false
//	compression_level: -1
//	output_dir: ""
//
// Every key can also be set through the environment with the VERIBAK_
// prefix, for example VERIBAK_CHECKSUM_ALGORITHM=sha256.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// Load validates the result; a configuration that fails [Validate] is
// returned as an error marked with errors.ErrInvalidConfig.
package config
