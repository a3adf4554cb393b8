package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("ID,Weight,ProductType,OutletType,OutletSales\n")
	for i := range 40 {
		fmt.Fprintf(&b, "FD%02d,%d,%s,%s,%d\n", i, 5+i%4, []string{"Dairy", "Snack"}[i%2], []string{"Grocery", "Mall"}[i%3%2], 100+i*10)
	}
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	input := writeInput(t)
	metrics := filepath.Join(t.TempDir(), "run.prom")

	out, err := execute(t, "run", "--input", input, "--model", "tree", "--seed", "3",
		"--log-level", "error", "--metrics-file", metrics)
	require.NoError(t, err)
	assert.Contains(t, out, "weighted avg")
	assert.Contains(t, out, "true \\ pred")
	assert.Contains(t, out, "tree: accuracy")
	assert.FileExists(t, metrics)

	out, err = execute(t, "profile", "--input", input, "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ProductType")

	_, err = execute(t, "run", "--input", input, "--model", "svm")
	assert.ErrorContains(t, err, "Kind")
}
