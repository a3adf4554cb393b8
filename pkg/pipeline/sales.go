package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"salesclass/pkg/config"
	"salesclass/pkg/data"
	"salesclass/pkg/dataprep"
	"salesclass/pkg/loader"
	"salesclass/pkg/metrics"
	"salesclass/pkg/model"
	"salesclass/pkg/report"
	"salesclass/pkg/stats"
)

// State carries everything a run produces from one stage to the next.
type State struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Recorder

	Table       *data.Table
	Labels      []int
	Thresholds  dataprep.Thresholds
	Imputation  dataprep.ImputeResult
	Numeric     []string
	Categorical []string
	X           *mat.Dense
	Schema      Schema
	Scaler      stats.Scaler
	Scaling     *Pipeline
	Train       []int
	Test        []int
	Model       model.Classifier
	Predictions []int
	Report      *model.Report

	// MeanConfidence is the average winning-class probability on the test
	// rows; zero when the model has no probabilities.
	MeanConfidence float64

	// History has one line per completed stage.
	History []string
}

// NewState prepares an empty run.
func NewState(cfg config.Config, logger *slog.Logger, rec *metrics.Recorder) *State {
	return &State{Config: cfg, Logger: logger, Metrics: rec}
}

func (st *State) note(format string, args ...any) {
	st.History = append(st.History, fmt.Sprintf(format, args...))
}

// SalesStages returns the stages of the outlet sales classification run in
// execution order.
func SalesStages() []Stage {
	return []Stage{
		{Name: "load", Run: loadStage},
		{Name: "label", Run: labelStage},
		{Name: "impute", Run: imputeStage},
		{Name: "features", Run: featuresStage},
		{Name: "scale", Run: scaleStage},
		{Name: "split", Run: splitStage},
		{Name: "train", Run: trainStage},
		{Name: "evaluate", Run: evaluateStage},
		{Name: "artifacts", Run: artifactsStage},
	}
}

// Run executes the whole classification run described by cfg and writes
// the metrics file when one is configured.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, rec *metrics.Recorder) (*State, error) {
	st := NewState(cfg, logger, rec)
	if err := RunStages(ctx, st, SalesStages()...); err != nil {
		return st, err
	}
	logger.Info("run history", "steps", strings.Join(st.History, "; "))
	if path := cfg.Output.MetricsFile; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			return st, err
		}
		logger.Info("metrics written", "path", path)
	}
	return st, nil
}

func loadStage(_ context.Context, st *State) error {
	tbl, err := data.Load(st.Config.Input, st.Config.Sheet)
	if err != nil {
		return err
	}
	st.Table = tbl
	st.Metrics.SetRows("input", tbl.Rows())
	st.Logger.Info("data loaded", "path", st.Config.Input, "rows", tbl.Rows(), "columns", len(tbl.Columns))
	for _, c := range tbl.Columns {
		st.Logger.Debug("column", "name", c.Name, "kind", c.Kind.String(), "missing", c.MissingCount())
	}
	st.note("loaded %d rows and %d columns from %s", tbl.Rows(), len(tbl.Columns), st.Config.Input)
	return nil
}

func labelStage(_ context.Context, st *State) error {
	cols := st.Config.Columns
	ids, th, err := dataprep.DeriveLabels(st.Table, cols.Sales, cols.Label)
	if err != nil {
		return err
	}
	st.Labels = ids
	st.Thresholds = th

	counts := make([]int, len(dataprep.CategoryNames))
	for _, id := range ids {
		counts[id]++
	}
	st.Logger.Info("labels derived", "q1", th.Q1, "q3", th.Q3,
		"low", counts[dataprep.Low], "medium", counts[dataprep.Medium], "high", counts[dataprep.High])
	st.note("labelled %s from %s quartiles (q1=%.4f, q3=%.4f)", cols.Label, cols.Sales, th.Q1, th.Q3)
	return nil
}

func imputeStage(_ context.Context, st *State) error {
	cols := st.Config.Columns
	if cols.Weight == "" {
		st.note("imputation disabled")
		return nil
	}
	res, err := dataprep.ImputeGroupMedian(st.Table, cols.Weight, cols.GroupBy...)
	if err != nil {
		return err
	}
	st.Imputation = res
	st.Metrics.SetImputed("group", res.GroupFilled)
	st.Metrics.SetImputed("global", res.GlobalFilled)
	st.Logger.Info("missing values imputed", "column", cols.Weight, "groups", res.Groups,
		"group_filled", res.GroupFilled, "global_filled", res.GlobalFilled)
	if res.Remaining > 0 {
		st.Logger.Warn("column still has missing values, no median available",
			"column", cols.Weight, "remaining", res.Remaining)
	}
	st.note("filled %d %s cells by group median and %d by global median", res.GroupFilled, cols.Weight, res.GlobalFilled)
	return nil
}

func featuresStage(_ context.Context, st *State) error {
	cols := st.Config.Columns
	exclude := []string{cols.Sales, cols.Label}
	for _, name := range cols.Drop {
		if st.Table.Has(name) {
			exclude = append(exclude, name)
		}
	}
	st.Numeric, st.Categorical = dataprep.SplitFeatures(st.Table, exclude...)

	X, names, err := dataprep.BuildFeatureMatrix(st.Table, st.Numeric, st.Categorical)
	if err != nil {
		return err
	}
	st.X = X
	st.Schema = NewSchema(names, len(st.Numeric))
	st.Metrics.SetFeatures(st.Schema.Len())
	st.Logger.Info("feature matrix built", "numeric", st.Numeric, "categorical", st.Categorical,
		"columns", st.Schema.Len())
	st.note("encoded %d numeric and %d categorical columns into %d features",
		len(st.Numeric), len(st.Categorical), st.Schema.Len())
	return nil
}

func scaleStage(_ context.Context, st *State) error {
	scaler, err := stats.NewScaler(st.Config.Scaler)
	if err != nil {
		return err
	}
	if scaler == nil {
		st.note("scaling disabled")
		return nil
	}
	st.Scaler = scaler
	st.Scaling = NewPipeline(scaler)
	X, err := st.Scaling.FitTransform(st.X)
	if err != nil {
		return err
	}
	st.X = X
	st.note("scaled features with the %s scaler", st.Config.Scaler)
	return nil
}

func splitStage(_ context.Context, st *State) error {
	sp := st.Config.Split
	var err error
	if sp.Stratify {
		st.Train, st.Test, err = loader.StratifiedSplit(st.Labels, sp.TestSize, sp.Seed)
	} else {
		st.Train, st.Test, err = loader.TrainTestSplit(len(st.Labels), sp.TestSize, sp.Seed)
	}
	if err != nil {
		return err
	}
	st.Metrics.SetRows("train", len(st.Train))
	st.Metrics.SetRows("test", len(st.Test))
	st.Logger.Info("data split", "train", len(st.Train), "test", len(st.Test), "stratified", sp.Stratify)
	st.note("split into %d train and %d test rows", len(st.Train), len(st.Test))
	return nil
}

// NewClassifier builds the model selected by cfg.Kind.
func NewClassifier(cfg config.Model, logger *slog.Logger) (model.Classifier, error) {
	switch cfg.Kind {
	case "mlp":
		return model.NewMLPClassifier(
			model.WithHiddenLayers(cfg.HiddenLayers...),
			model.WithActivation(cfg.Activation),
			model.WithSolver(cfg.Solver),
			model.WithLearningRate(cfg.LearningRate),
			model.WithAlpha(cfg.Alpha),
			model.WithBatchSize(cfg.BatchSize),
			model.WithMaxIter(cfg.MaxIter),
			model.WithTol(cfg.Tol),
			model.WithNIterNoChange(cfg.NIterNoChange),
			model.WithMLPRandomState(cfg.Seed),
			model.WithLogger(logger),
		), nil
	case "tree":
		return model.NewDecisionTreeClassifier(
			model.WithMaxDepth(cfg.Tree.MaxDepth),
			model.WithMinSamplesSplit(cfg.Tree.MinSamplesSplit),
			model.WithMinSamplesLeaf(cfg.Tree.MinSamplesLeaf),
			model.WithCriterion(cfg.Tree.Criterion),
			model.WithMinImpurityDecrease(cfg.Tree.MinImpurityDecrease),
			model.WithRandomState(cfg.Seed),
		), nil
	case "forest":
		return model.NewRandomForest(
			model.WithNEstimators(cfg.Forest.NEstimators),
			model.WithForestMaxDepth(cfg.Forest.MaxDepth),
			model.WithForestMaxFeatures(cfg.Forest.MaxFeatures),
			model.WithForestRandomState(cfg.Seed),
		), nil
	case "knn":
		return model.NewKNN(cfg.KNN.K), nil
	}
	return nil, fmt.Errorf("pipeline: unknown model kind %q", cfg.Kind)
}

func trainStage(_ context.Context, st *State) error {
	clf, err := NewClassifier(st.Config.Model, st.Logger)
	if err != nil {
		return err
	}
	Xtr := loader.Take(st.X, st.Train)
	ytr := loader.TakeInts(st.Labels, st.Train)
	if err := clf.Fit(Xtr, ytr); err != nil {
		return err
	}
	st.Model = clf

	switch m := clf.(type) {
	case *model.MLPClassifier:
		final := m.LossCurve[len(m.LossCurve)-1]
		st.Metrics.SetTraining(m.NIter, final)
		st.Logger.Info("model trained", "model", "mlp", "epochs", m.NIter, "loss", final, "converged", m.Converged)
		st.note("trained mlp %v for %d epochs, final loss %.6f", m.HiddenLayers, m.NIter, final)
	case *model.DecisionTreeClassifier:
		st.Logger.Info("model trained", "model", "tree", "depth", m.Depth())
		st.note("trained decision tree of depth %d", m.Depth())
	default:
		st.Logger.Info("model trained", "model", st.Config.Model.Kind)
		st.note("trained %s", st.Config.Model.Kind)
	}
	return nil
}

func evaluateStage(_ context.Context, st *State) error {
	Xte := loader.Take(st.X, st.Test)
	yte := loader.TakeInts(st.Labels, st.Test)
	pred, err := st.Model.Predict(Xte)
	if err != nil {
		return err
	}
	st.Predictions = pred

	if pc, ok := st.Model.(model.ProbabilisticClassifier); ok {
		P, err := pc.PredictProba(Xte)
		if err != nil {
			return err
		}
		st.MeanConfidence = meanConfidence(P)
		st.Logger.Info("test confidence", "mean_max_probability", st.MeanConfidence)
	}

	labels := make([]int, len(dataprep.CategoryNames))
	for i := range labels {
		labels[i] = i
	}
	rep, err := model.ClassificationReport(yte, pred, labels, dataprep.CategoryNames)
	if err != nil {
		return err
	}
	st.Report = rep

	st.Metrics.SetAccuracy(rep.Accuracy)
	for _, c := range rep.Classes {
		st.Metrics.SetClassScore(c.Name, "precision", c.Precision)
		st.Metrics.SetClassScore(c.Name, "recall", c.Recall)
		st.Metrics.SetClassScore(c.Name, "f1", c.F1)
	}
	st.Logger.Info("model evaluated", "accuracy", rep.Accuracy, "macro_f1", rep.MacroAvg.F1)
	st.note("evaluated on %d test rows, accuracy %.4f", rep.Total, rep.Accuracy)
	return nil
}

func artifactsStage(_ context.Context, st *State) error {
	out := st.Config.Output
	if out.LossPlot != "" {
		m, ok := st.Model.(*model.MLPClassifier)
		if !ok {
			st.Logger.Warn("loss plot needs the mlp model, skipped", "model", st.Config.Model.Kind)
		} else {
			if err := report.SaveLossPlot(m.LossCurve, out.LossPlot); err != nil {
				return err
			}
			st.Logger.Info("loss plot written", "path", out.LossPlot)
			st.note("wrote loss plot to %s", out.LossPlot)
		}
	}
	if out.TreeGraph != "" {
		tree, ok := st.Model.(*model.DecisionTreeClassifier)
		if !ok {
			st.Logger.Warn("tree graph needs the tree model, skipped", "model", st.Config.Model.Kind)
		} else {
			var opts []report.GraphOption
			if st.Scaler != nil {
				opts = append(opts, report.WithThresholdUnscale(st.Scaler.Inverse))
			}
			if err := report.RenderTree(tree, st.Schema.FeatureNames, dataprep.CategoryNames, out.TreeGraph, opts...); err != nil {
				return err
			}
			st.Logger.Info("tree graph written", "path", out.TreeGraph)
			st.note("wrote tree graph to %s", out.TreeGraph)
		}
	}
	return nil
}

func meanConfidence(P *mat.Dense) float64 {
	r, _ := P.Dims()
	if r == 0 {
		return 0
	}
	sum := 0.0
	for i := range r {
		sum += floats.Max(P.RawRowView(i))
	}
	return sum / float64(r)
}

// Profile loads the configured input and summarizes every column.
func Profile(cfg config.Config, topN int) (*data.Table, []dataprep.ColumnProfile, error) {
	tbl, err := data.Load(cfg.Input, cfg.Sheet)
	if err != nil {
		return nil, nil, err
	}
	return tbl, dataprep.Profile(tbl, topN), nil
}
