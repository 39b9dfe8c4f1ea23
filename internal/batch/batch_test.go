package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/scaffold/internal/config"
	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/internal/generator"
	"github.com/ginjaninja78/scaffold/internal/types"
	"github.com/ginjaninja78/scaffold/pkg/utils"
)

func newGenerator(t *testing.T) *generator.Generator {
	t.Helper()
	cfg := &config.Config{TemplatesDir: t.TempDir(), ReplayDir: t.TempDir()}
	runner := exec.NewFakeRunner().
		On("python3 --version", exec.FakeResponse{Result: exec.CmdResult{Stdout: "Python 3.12.3"}})
	return generator.New(cfg, generator.WithRunner(runner), generator.WithOutput(&bytes.Buffer{}))
}

func TestRun_GeneratesEveryRow(t *testing.T) {
	out := t.TempDir()
	sheet := writeCSV(t, "project_name,license\nAlpha,MIT\nBeta,Apache-2.0\nGamma,None\n")
	base := types.NewContext()
	base.Set("author_name", "Ada")

	report, err := Run(context.Background(), newGenerator(t), Options{
		Base:        generator.Options{OutputDir: out, SkipHooks: true, Extra: base},
		SheetPath:   sheet,
		Concurrency: 2,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.Successful)
	for _, name := range []string{"alpha", "beta", "gamma"} {
		assert.DirExists(t, filepath.Join(out, name))
	}
	assert.Equal(t, "Beta", report.Results[1].Context.String("project_name"))
	assert.Equal(t, "Ada", report.Results[1].Context.String("author_name"))

	data, err := os.ReadFile(report.SummaryPath)
	require.NoError(t, err)
	var summary utils.BatchSummary
	require.NoError(t, yaml.Unmarshal(data, &summary))
	assert.Equal(t, "python", summary.Template)
	assert.Equal(t, 3, summary.Total)
	assert.Len(t, summary.Generated, 3)
}

func TestRun_FailedRowsDoNotStopOthers(t *testing.T) {
	out := t.TempDir()
	sheet := writeCSV(t, "project_name,package_name\nAlpha,alpha\nBroken,class\nGamma,gamma\n")

	report, err := Run(context.Background(), newGenerator(t), Options{
		Base:      generator.Options{OutputDir: out},
		SheetPath: sheet,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, errors.EBatchFailed, errors.GetCode(err))

	require.NotNil(t, report)
	assert.Equal(t, 2, report.Summary.Successful)
	require.Len(t, report.Summary.Failures, 1)
	assert.Equal(t, 3, report.Summary.Failures[0].Row)
	assert.Equal(t, "E_INVALID_MODULE_NAME", report.Summary.Failures[0].ErrorCode)
	assert.NoDirExists(t, filepath.Join(out, "class"))
	assert.FileExists(t, report.SummaryPath)
}

func TestRun_BadSheet(t *testing.T) {
	_, err := Run(context.Background(), newGenerator(t), Options{
		Base:      generator.Options{OutputDir: t.TempDir()},
		SheetPath: filepath.Join(t.TempDir(), "missing.csv"),
	}, nil)
	assert.Equal(t, errors.EUsage, errors.GetCode(err))
}
