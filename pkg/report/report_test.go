package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"salesclass/pkg/data"
	"salesclass/pkg/dataprep"
	"salesclass/pkg/model"
)

func sampleReport(t *testing.T) *model.Report {
	t.Helper()
	rep, err := model.ClassificationReport(
		[]int{0, 0, 1, 1, 2, 2},
		[]int{0, 1, 1, 1, 0, 2},
		[]int{0, 1, 2},
		dataprep.CategoryNames,
	)
	require.NoError(t, err)
	return rep
}

func lineWith(s, prefix string) string {
	for _, l := range strings.Split(s, "\n") {
		if strings.Contains(l, prefix) {
			return l
		}
	}
	return ""
}

func TestClassificationTable(t *testing.T) {
	out := ClassificationTable(sampleReport(t))

	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		assert.Contains(t, out, h)
	}
	names := []string{"Low", "Medium", "High", "accuracy", "macro avg", "weighted avg"}
	last := -1
	for _, n := range names {
		i := strings.Index(out, n)
		require.GreaterOrEqual(t, i, 0, n)
		assert.Greater(t, i, last, "%s is out of order", n)
		last = i
	}

	assert.Equal(t, 4, strings.Count(lineWith(out, "accuracy"), "0.67"))
	medium := lineWith(out, "Medium")
	assert.Contains(t, medium, "0.67")
	assert.Contains(t, medium, "1.00")
	assert.Contains(t, medium, "0.80")
	assert.Contains(t, lineWith(out, "weighted avg"), "6")
}

func TestConfusionTable(t *testing.T) {
	out := ConfusionTable(sampleReport(t))
	assert.Contains(t, out, "true \\ pred")
	row := lineWith(out, "High")
	assert.Contains(t, row, "1")
	assert.Contains(t, row, "0")
}

func TestProfileTable(t *testing.T) {
	tbl, err := data.NewTable(
		data.NewNumeric("Weight", []float64{1, math.NaN(), 3}),
		data.NewCategorical("OutletType", []string{"Grocery", "Grocery", "Super"}),
	)
	require.NoError(t, err)

	out := ProfileTable(tbl.Rows(), dataprep.Profile(tbl, 5))
	assert.Contains(t, lineWith(out, "Weight"), "1 (33.3%)")
	assert.Contains(t, lineWith(out, "OutletType"), "Grocery (2), Super (1)")
}

func TestSaveLossPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loss.png")
	require.NoError(t, SaveLossPlot([]float64{1.2, 0.8, 0.5, 0.45}, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, SaveLossPlot(nil, path))
}

func TestRenderTree(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
	tree := model.NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, []int{0, 0, 0, 2, 2, 2}))

	path := filepath.Join(t.TempDir(), "tree.dot")
	require.NoError(t, RenderTree(tree, []string{"Weight"}, dataprep.CategoryNames, path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "6.500")
	assert.Contains(t, string(body), "High")

	scaled := filepath.Join(t.TempDir(), "scaled.dot")
	double := WithThresholdUnscale(func(j int, v float64) float64 { return 2*v + float64(j) })
	require.NoError(t, RenderTree(tree, []string{"Weight"}, dataprep.CategoryNames, scaled, double))
	body, err = os.ReadFile(scaled)
	require.NoError(t, err)
	assert.Contains(t, string(body), "13.000")
	assert.NotContains(t, string(body), "6.500")

	err = RenderTree(tree, nil, nil, filepath.Join(t.TempDir(), "tree.bmp"))
	assert.ErrorContains(t, err, "unsupported graph format")

	err = RenderTree(model.NewDecisionTreeClassifier(), nil, nil, path)
	assert.ErrorIs(t, err, model.ErrNotFitted)
}
