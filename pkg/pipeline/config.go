package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInputFileName  = "rapid reviw english part 6 .mp3"
	DefaultOutputFileName = "rapid_review_english_part6_cleaned.wav"
)

type Config struct {
	InputPath  string `yaml:"input_path"`
	OutputPath string `yaml:"output_path"`

	Model              enhancer.ModelID `yaml:"model"`
	WeightsPath        string           `yaml:"weights_path"`
	WeightsURL         string           `yaml:"weights_url"`
	CacheDir           string           `yaml:"cache_dir"`
	RuntimeLibraryPath string           `yaml:"runtime_library_path"`
}

// DefaultConfig reads "~/Desktop/rapid reviw english part 6 .mp3" and
// writes the result next to the executable. The output is always 24-bit
// PCM WAV.
func DefaultConfig() Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	outputDir := "."
	if exe, err := os.Executable(); err == nil {
		outputDir = filepath.Dir(exe)
	}
	return Config{
		InputPath:  filepath.Join(homeDir, "Desktop", DefaultInputFileName),
		OutputPath: filepath.Join(outputDir, DefaultOutputFileName),
		Model:      enhancer.DefaultModel,
	}
}

// LoadConfigFile overlays the fields set in the YAML file at path on top
// of cfg. Unknown fields are rejected.
func LoadConfigFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read the config file '%s': %w", path, err)
	}
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unable to parse the config file '%s': %w", path, err)
	}
	return nil
}

func (cfg Config) Validate() error {
	if cfg.InputPath == "" {
		return fmt.Errorf("the input path is not set")
	}
	if cfg.OutputPath == "" {
		return fmt.Errorf("the output path is not set")
	}
	if cfg.Model == "" {
		return fmt.Errorf("the model is not set")
	}
	return nil
}

func (cfg Config) EnhancerOptions() enhancer.Options {
	return enhancer.Options{
		WeightsPath:        cfg.WeightsPath,
		WeightsURL:         cfg.WeightsURL,
		CacheDir:           cfg.CacheDir,
		RuntimeLibraryPath: cfg.RuntimeLibraryPath,
	}
}
