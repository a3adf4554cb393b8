package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"salesclass/pkg/config"
	"salesclass/pkg/logging"
	"salesclass/pkg/metrics"
	"salesclass/pkg/model"
	"salesclass/pkg/stats"
)

// writeSales writes a small outlet sales file. Sales follow price, and the
// Snack/Grocery group never has a weight so it can only be filled globally.
func writeSales(t *testing.T, rows int) string {
	t.Helper()
	products := []string{"Dairy", "Snack", "Drinks"}
	outlets := []string{"Grocery", "Supermarket"}
	rnd := rand.New(rand.NewSource(7))

	var b strings.Builder
	b.WriteString("ID,Weight,ProductType,OutletType,Price,OutletSales\n")
	for i := range rows {
		product := products[i%len(products)]
		outlet := outlets[(i/len(products))%len(outlets)]
		price := 20 + 200*rnd.Float64()
		sales := price*15 + rnd.NormFloat64()*50
		weight := fmt.Sprintf("%.2f", 5+10*rnd.Float64())
		if (product == "Snack" && outlet == "Grocery") || i%7 == 0 {
			weight = ""
		}
		fmt.Fprintf(&b, "FD%03d,%s,%s,%s,%.2f,%.2f\n", i, weight, product, outlet, price, sales)
	}
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(t *testing.T, kind string) config.Config {
	cfg := config.Default()
	cfg.Input = writeSales(t, 60)
	cfg.Columns.Drop = []string{"ID"}
	cfg.Model.Kind = kind
	cfg.Model.HiddenLayers = []int{8}
	cfg.Model.MaxIter = 40
	cfg.Model.LearningRate = 0.01
	cfg.Model.Forest.NEstimators = 5
	require.NoError(t, cfg.Validate())
	return cfg
}

func run(t *testing.T, cfg config.Config) *State {
	t.Helper()
	rec := metrics.NewRecorder("test", cfg.Model.Kind)
	st, err := Run(context.Background(), cfg, logging.Discard(), rec)
	require.NoError(t, err)
	return st
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t, "mlp")
	dir := t.TempDir()
	cfg.Output.MetricsFile = filepath.Join(dir, "run.prom")
	cfg.Output.LossPlot = filepath.Join(dir, "loss.png")
	cfg.Output.TreeGraph = filepath.Join(dir, "tree.dot") // not a tree, skipped

	st := run(t, cfg)

	assert.Equal(t, 60, st.Table.Rows())
	for _, id := range st.Labels {
		assert.Contains(t, []int{0, 1, 2}, id)
	}
	assert.Less(t, st.Thresholds.Q1, st.Thresholds.Q3)

	weight, err := st.Table.Column("Weight")
	require.NoError(t, err)
	assert.Zero(t, weight.MissingCount())
	assert.Positive(t, st.Imputation.GlobalFilled)
	assert.Positive(t, st.Imputation.GroupFilled)

	assert.Equal(t, []string{"Weight", "Price"}, st.Numeric)
	assert.Equal(t, []string{"ProductType", "OutletType"}, st.Categorical)
	r, c := st.X.Dims()
	assert.Equal(t, 60, r)
	assert.Equal(t, 2+3+2, c)
	assert.Equal(t, 2, st.Schema.Count("numeric"))
	assert.Equal(t, 5, st.Schema.Count("indicator"))

	assert.Len(t, st.Test, 12)
	assert.Len(t, st.Train, 48)
	require.NotNil(t, st.Report)
	assert.Equal(t, 12, st.Report.Total)
	assert.Len(t, st.Predictions, 12)
	assert.Len(t, st.History, 9)
	assert.Greater(t, st.MeanConfidence, 1.0/3)
	assert.LessOrEqual(t, st.MeanConfidence, 1.0)

	body, err := os.ReadFile(cfg.Output.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "salesclass_test_accuracy")
	assert.Contains(t, string(body), `stage="evaluate"`)
	assert.FileExists(t, cfg.Output.LossPlot)
	assert.NoFileExists(t, cfg.Output.TreeGraph)
}

func TestRunKeepsEveryColumnByDefault(t *testing.T) {
	cfg := testConfig(t, "knn")
	cfg.Columns.Drop = config.Default().Columns.Drop
	st := run(t, cfg)

	assert.Equal(t, []string{"ID", "ProductType", "OutletType"}, st.Categorical)
	_, c := st.X.Dims()
	assert.Equal(t, 2+60+3+2, c)
	assert.Zero(t, st.MeanConfidence, "knn has no probabilities")
}

func TestRunLabelsMissingSalesMedium(t *testing.T) {
	cfg := testConfig(t, "tree")
	body, err := os.ReadFile(cfg.Input)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	cells := strings.Split(lines[5], ",")
	cells[len(cells)-1] = ""
	lines[5] = strings.Join(cells, ",")
	require.NoError(t, os.WriteFile(cfg.Input, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	st := run(t, cfg)
	assert.Equal(t, 60, st.Table.Rows())
	assert.Equal(t, 1, st.Labels[4])
}

func TestRunScalesFeatures(t *testing.T) {
	st := run(t, testConfig(t, "knn"))
	_, c := st.X.Dims()
	for j := range c {
		col := mat.Col(nil, j, st.X)
		assert.InDelta(t, 0, stats.Mean(col), 1e-9, "column %d", j)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	for _, kind := range []string{"mlp", "forest"} {
		t.Run(kind, func(t *testing.T) {
			cfg := testConfig(t, kind)
			a := run(t, cfg)
			b := run(t, cfg)
			assert.Equal(t, a.Test, b.Test)
			assert.Equal(t, a.Predictions, b.Predictions)
			assert.Equal(t, a.Report, b.Report)
		})
	}
}

func TestRunTreeGraph(t *testing.T) {
	cfg := testConfig(t, "tree")
	cfg.Model.Tree.MaxDepth = 3
	cfg.Output.TreeGraph = filepath.Join(t.TempDir(), "tree.dot")
	run(t, cfg)

	body, err := os.ReadFile(cfg.Output.TreeGraph)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Price")
	// thresholds are printed in original units; none of the raw features
	// can go below zero
	assert.NotContains(t, string(body), "<= -")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := testConfig(t, "knn")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, cfg, logging.Discard(), metrics.NewRecorder("x", "knn"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsStageOfFailure(t *testing.T) {
	cfg := testConfig(t, "mlp")
	cfg.Columns.Sales = "Revenue"
	_, err := Run(context.Background(), cfg, logging.Discard(), metrics.NewRecorder("x", "mlp"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "label: "), err.Error())

	cfg = testConfig(t, "mlp")
	cfg.Input = filepath.Join(t.TempDir(), "missing.xlsx")
	_, err = Run(context.Background(), cfg, logging.Discard(), metrics.NewRecorder("x", "mlp"))
	assert.ErrorContains(t, err, "load: ")
}

func TestNewClassifier(t *testing.T) {
	cfg := config.Default().Model
	for _, kind := range []string{"mlp", "tree", "forest", "knn"} {
		cfg.Kind = kind
		clf, err := NewClassifier(cfg, logging.Discard())
		require.NoError(t, err)
		assert.NotNil(t, clf)
	}
	cfg.Kind = "tree"
	cfg.Tree.MinImpurityDecrease = 0.25
	clf, err := NewClassifier(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 0.25, clf.(*model.DecisionTreeClassifier).MinImpurityDecrease)

	cfg.Kind = "svm"
	_, err = NewClassifier(cfg, logging.Discard())
	assert.ErrorContains(t, err, `"svm"`)
}

func TestProfile(t *testing.T) {
	cfg := testConfig(t, "mlp")
	tbl, profiles, err := Profile(cfg, 2)
	require.NoError(t, err)
	assert.Equal(t, 60, tbl.Rows())
	require.Len(t, profiles, 6)
	assert.Equal(t, "Weight", profiles[1].Name)
	assert.Positive(t, profiles[1].Missing)
}

func TestPipelineChainsSteps(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40})
	p := NewPipeline(stats.NewMinMaxScaler(), stats.NewStandardScaler())
	out, err := p.FitTransform(X)
	require.NoError(t, err)

	again, err := p.Transform(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(out, again, 1e-12))
	assert.InDelta(t, 0, stats.Mean(mat.Col(nil, 0, out)), 1e-12)
	assert.Equal(t, 10.0, X.At(0, 1), "input left untouched")

	_, err = p.Transform(mat.NewDense(1, 3, nil))
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	s := NewSchema([]string{"Weight", "ProductType_Dairy", "ProductType_Snack"}, 1)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"numeric", "indicator", "indicator"}, s.Types)
	assert.Equal(t, 2, s.Count("indicator"))
}
