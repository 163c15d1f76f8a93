package gogp

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a GP and how it is fitted, as read from a YAML file.
type Config struct {
	Kernel          string    `yaml:"kernel"`
	HyperParameters []float64 `yaml:"hyperparameters"` // element 0 is the log noise sd
	ExtraParameters []float64 `yaml:"extra_parameters"`

	Optimize struct {
		Enabled       bool   `yaml:"enabled"`
		MaxIterations int    `yaml:"max_iterations"`
		Mask          []bool `yaml:"mask"`
	} `yaml:"optimize"`

	Period struct {
		Estimate   bool `yaml:"estimate"`
		GridPoints int  `yaml:"grid_points"`
	} `yaml:"period"`

	Prediction struct {
		Points  int     `yaml:"points"`
		Horizon float64 `yaml:"horizon"`
	} `yaml:"prediction"`
}

// DefaultConfig returns a PeriodicSquareExponential GP with zero hyperparameters and
// the default noise, fitted and predicted with moderate settings.
func DefaultConfig() Config {
	var c Config
	c.Kernel = PeriodicSquareExponentialName
	c.HyperParameters = []float64{DefaultLogNoiseSD, 0, 0, 0, 0}
	c.Optimize.Enabled = true
	c.Optimize.MaxIterations = 100
	c.Period.Estimate = true
	c.Period.GridPoints = 512
	c.Prediction.Points = 200
	return c
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Setting the kernel without hyperparameters selects zero hyperparameters for it.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	c.HyperParameters = nil
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if c.HyperParameters == nil {
		cov, err := NewCovarianceFunction(c.Kernel, nil, nil)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		c.HyperParameters = append([]float64{DefaultLogNoiseSD}, cov.HyperParameters()...)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the kernel name and the sizes and counts of the configuration.
func (c Config) Validate() error {
	cov, err := NewCovarianceFunction(c.Kernel, nil, nil)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	want := 1 + cov.ParameterCount()
	if len(c.HyperParameters) != want {
		return fmt.Errorf("config: %w", sizeMismatch("hyperparameters", want, len(c.HyperParameters)))
	}
	if c.ExtraParameters != nil && len(c.ExtraParameters) != cov.ExtraParameterCount() {
		return fmt.Errorf("config: %w", sizeMismatch("extra parameters", cov.ExtraParameterCount(), len(c.ExtraParameters)))
	}
	if c.Optimize.Mask != nil && len(c.Optimize.Mask) != want {
		return fmt.Errorf("config: %w", sizeMismatch("optimization mask", want, len(c.Optimize.Mask)))
	}
	if c.Optimize.MaxIterations < 0 {
		return errors.New("config: max_iterations must not be negative")
	}
	if c.Period.Estimate && c.Period.GridPoints < 4 {
		return errors.New("config: period estimation needs at least 4 grid points")
	}
	if c.Prediction.Points < 1 {
		return errors.New("config: prediction needs at least one point")
	}
	if c.Prediction.Horizon < 0 {
		return errors.New("config: prediction horizon must not be negative")
	}
	return nil
}

// NewGP returns an Empty GP with the configured kernel and hyperparameters.
func (c Config) NewGP(opts ...Option) (*GP, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cov, err := NewCovarianceFunction(c.Kernel, nil, c.ExtraParameters)
	if err != nil {
		return nil, err
	}
	gp := NewGP(cov, opts...)
	if err := gp.SetHyperParameters(c.HyperParameters); err != nil {
		return nil, err
	}
	return gp, nil
}

// OptimizeSettings returns the settings passed to Optimize.
func (c Config) OptimizeSettings() OptimizeSettings {
	return OptimizeSettings{MaxIterations: c.Optimize.MaxIterations, Mask: c.Optimize.Mask}
}
