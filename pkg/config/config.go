package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the full set of run settings. Defaults reproduce the reference
// run; a YAML file and CLI flags override them in that order.
type Config struct {
	Input   string  `yaml:"input" validate:"required"`
	Sheet   string  `yaml:"sheet"`
	Columns Columns `yaml:"columns"`
	Scaler  string  `yaml:"scaler" validate:"oneof=standard minmax robust none"`
	Split   Split   `yaml:"split"`
	Model   Model   `yaml:"model"`
	Output  Output  `yaml:"output"`
	Log     Log     `yaml:"log"`
}

// Columns names the columns the pipeline treats specially.
type Columns struct {
	Sales   string   `yaml:"sales" validate:"required"`
	Label   string   `yaml:"label" validate:"required,nefield=Sales"`
	Weight  string   `yaml:"weight"` // empty disables imputation
	GroupBy []string `yaml:"group_by" validate:"dive,required"`
	Drop    []string `yaml:"drop"` // excluded from features when present
}

type Split struct {
	TestSize float64 `yaml:"test_size" validate:"gt=0,lt=1"`
	Stratify bool    `yaml:"stratify"`
	Seed     int64   `yaml:"seed"`
}

type Model struct {
	Kind          string  `yaml:"kind" validate:"oneof=mlp tree forest knn"`
	HiddenLayers  []int   `yaml:"hidden_layers" validate:"min=1,dive,gt=0"`
	Activation    string  `yaml:"activation" validate:"oneof=relu logistic tanh identity"`
	Solver        string  `yaml:"solver" validate:"oneof=adam sgd"`
	MaxIter       int     `yaml:"max_iter" validate:"gt=0"`
	Seed          int64   `yaml:"seed"`
	LearningRate  float64 `yaml:"learning_rate" validate:"gt=0"`
	Alpha         float64 `yaml:"alpha" validate:"gte=0"`
	BatchSize     int     `yaml:"batch_size" validate:"gte=0"` // 0 => min(200, n)
	Tol           float64 `yaml:"tol" validate:"gte=0"`
	NIterNoChange int     `yaml:"n_iter_no_change" validate:"gt=0"`
	Tree          Tree    `yaml:"tree"`
	Forest        Forest  `yaml:"forest"`
	KNN           KNN     `yaml:"knn"`
}

type Tree struct {
	MaxDepth            int     `yaml:"max_depth" validate:"gte=0"`
	MinSamplesSplit     int     `yaml:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf      int     `yaml:"min_samples_leaf" validate:"gte=1"`
	Criterion           string  `yaml:"criterion" validate:"oneof=gini entropy"`
	MinImpurityDecrease float64 `yaml:"min_impurity_decrease" validate:"gte=0"`
}

type Forest struct {
	NEstimators int `yaml:"n_estimators" validate:"gt=0"`
	MaxDepth    int `yaml:"max_depth" validate:"gte=0"`
	MaxFeatures int `yaml:"max_features" validate:"gte=0"` // 0 => sqrt(p)
}

type KNN struct {
	K int `yaml:"k" validate:"gt=0"`
}

// Output lists the optional artifacts of a run; empty paths are skipped.
type Output struct {
	LossPlot    string `yaml:"loss_plot"`
	TreeGraph   string `yaml:"tree_graph"`
	MetricsFile string `yaml:"metrics_file"`
	Confusion   bool   `yaml:"confusion"`
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the settings of the reference run.
func Default() Config {
	return Config{
		Input: "podaci3.xlsx",
		Columns: Columns{
			Sales:   "OutletSales",
			Label:   "SalesCategory",
			Weight:  "Weight",
			GroupBy: []string{"ProductType", "OutletType"},
		},
		Scaler: "standard",
		Split:  Split{TestSize: 0.2, Stratify: true, Seed: 42},
		Model: Model{
			Kind:          "mlp",
			HiddenLayers:  []int{100},
			Activation:    "relu",
			Solver:        "adam",
			MaxIter:       500,
			Seed:          42,
			LearningRate:  1e-3,
			Alpha:         1e-4,
			Tol:           1e-4,
			NIterNoChange: 10,
			Tree:          Tree{MinSamplesSplit: 2, MinSamplesLeaf: 1, Criterion: "gini"},
			Forest:        Forest{NEstimators: 100},
			KNN:           KNN{K: 5},
		},
		Output: Output{Confusion: true},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// The result is not validated; call Validate after applying flag overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
