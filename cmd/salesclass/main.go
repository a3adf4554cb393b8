// Command salesclass labels outlet sales as Low, Medium or High from their
// quartiles and trains a classifier to predict the label from product and
// outlet attributes.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"salesclass/pkg/config"
)

var (
	configPath  string
	inputPath   string
	sheetName   string
	modelKind   string
	seed        int64
	logLevel    string
	logFormat   string
	lossPlot    string
	treeGraph   string
	metricsFile string

	rootCmd = &cobra.Command{
		Use:   "salesclass",
		Short: "Classify outlet sales into quartile categories",
		Long: `salesclass loads an outlet sales table, labels every row Low, Medium or
High against the 25th and 75th percentile of its sales, imputes missing
weights, encodes and scales the features and trains a classifier on a
stratified split. Without a subcommand it runs the classification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runClassify,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file (defaults apply when empty)")
	pf.StringVarP(&inputPath, "input", "i", "", "input .xlsx or .csv file")
	pf.StringVar(&sheetName, "sheet", "", "worksheet name (first sheet when empty)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "", "text or json")

	pf.StringVarP(&modelKind, "model", "m", "", "mlp, tree, forest or knn")
	pf.Int64Var(&seed, "seed", 0, "seed for the split and the model")
	pf.StringVar(&lossPlot, "loss-plot", "", "write the mlp training loss chart to this file")
	pf.StringVar(&treeGraph, "tree-graph", "", "write the decision tree graph to this file")
	pf.StringVar(&metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")

	rootCmd.AddCommand(runCmd, profileCmd)
}

// loadConfig reads the config file and applies every flag the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = inputPath
	}
	if flags.Changed("sheet") {
		cfg.Sheet = sheetName
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("model") {
		cfg.Model.Kind = modelKind
	}
	if flags.Changed("seed") {
		cfg.Split.Seed = seed
		cfg.Model.Seed = seed
	}
	if flags.Changed("loss-plot") {
		cfg.Output.LossPlot = lossPlot
	}
	if flags.Changed("tree-graph") {
		cfg.Output.TreeGraph = treeGraph
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("salesclass failed", "err", err)
		os.Exit(1)
	}
}
