package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/substantialcattle5/stillsuit/util"
)

// FileConfig mirrors the optional stillsuit.yaml file. Flags set on the
// command line override anything loaded here.
type FileConfig struct {
	Extensions         []string `yaml:"extensions"`
	HashAlgorithm      string   `yaml:"hash_algorithm"`
	ChunkSize          string   `yaml:"chunk_size"`
	CheckpointInterval int      `yaml:"checkpoint_interval"`
}

// LoadFileConfig reads a FileConfig from the given path. A missing file is
// not an error; it simply yields nil.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}
	return &fc, nil
}

// Apply folds file values into cfg, leaving anything the file omits alone.
func (fc *FileConfig) Apply(cfg *Config) error {
	if fc == nil {
		return nil
	}
	if len(fc.Extensions) > 0 {
		cfg.Extensions = NormalizeExtensions(fc.Extensions)
	}
	if fc.HashAlgorithm != "" {
		cfg.HashAlgorithm = fc.HashAlgorithm
	}
	if fc.ChunkSize != "" {
		size, err := util.ParseChunkSize(fc.ChunkSize)
		if err != nil {
			return err
		}
		cfg.ChunkSize = size
	}
	if fc.CheckpointInterval > 0 {
		cfg.CheckpointInterval = fc.CheckpointInterval
	}
	return nil
}
