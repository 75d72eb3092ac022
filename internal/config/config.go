// Package config loads the optional quizcraft.yaml pipeline settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizcraft/internal/session"
)

// Config holds the user-tunable pipeline settings. Zero values fall
// back to defaults at Load time.
type Config struct {
	Chunking struct {
		Size    int `yaml:"size"`
		Overlap int `yaml:"overlap"`
	} `yaml:"chunking"`

	Retrieval struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retrieval"`

	Generation struct {
		MaxAttempts  int     `yaml:"max_attempts"`
		MaxQuestions int     `yaml:"max_questions"`
		Temperature  float64 `yaml:"temperature"`
	} `yaml:"generation"`
}

// Default returns a Config mirroring session and generator defaults.
func Default() *Config {
	var cfg Config
	s := session.DefaultConfig()
	cfg.Chunking.Size = s.ChunkSize
	cfg.Chunking.Overlap = s.ChunkOverlap
	cfg.Retrieval.TopK = s.TopK
	cfg.Generation.MaxAttempts = s.MaxAttempts
	cfg.Generation.MaxQuestions = s.MaxQuestions
	cfg.Generation.Temperature = 0.8
	return &cfg
}

// Load reads a yaml config file and fills unset fields from defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyEnv(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets QUIZCRAFT_* variables override file values.
func applyEnv(cfg *Config) {
	overrideInt("QUIZCRAFT_CHUNK_SIZE", &cfg.Chunking.Size)
	overrideInt("QUIZCRAFT_CHUNK_OVERLAP", &cfg.Chunking.Overlap)
	overrideInt("QUIZCRAFT_TOP_K", &cfg.Retrieval.TopK)
	overrideInt("QUIZCRAFT_MAX_ATTEMPTS", &cfg.Generation.MaxAttempts)
	overrideInt("QUIZCRAFT_MAX_QUESTIONS", &cfg.Generation.MaxQuestions)
}

func overrideInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = def.Chunking.Overlap
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Generation.MaxAttempts == 0 {
		cfg.Generation.MaxAttempts = def.Generation.MaxAttempts
	}
	if cfg.Generation.MaxQuestions == 0 {
		cfg.Generation.MaxQuestions = def.Generation.MaxQuestions
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = def.Generation.Temperature
	}
}

// SessionConfig converts to the session package's config.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		ChunkSize:    c.Chunking.Size,
		ChunkOverlap: c.Chunking.Overlap,
		TopK:         c.Retrieval.TopK,
		MaxAttempts:  c.Generation.MaxAttempts,
		MaxQuestions: c.Generation.MaxQuestions,
	}
}
