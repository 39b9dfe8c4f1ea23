package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/generator"
	"github.com/ginjaninja78/scaffold/pkg/utils"
)

// Options describes a batch run.
type Options struct {
	// Base is applied to every row; its Extra is overridden by row values.
	Base generator.Options

	SheetPath string
	SheetName string

	// Concurrency bounds the generations in flight. Values below 1 mean 1.
	Concurrency int
}

// Report is the outcome of a batch run.
type Report struct {
	Results     []generator.Result
	Summary     utils.BatchSummary
	SummaryPath string
}

// Run generates one project per sheet row. Rows fail independently; the
// returned error is E_BATCH_FAILED when at least one row failed, after the
// summary has been written.
func Run(ctx context.Context, g *generator.Generator, opts Options, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	sheet, err := ReadSheet(opts.SheetPath, opts.SheetName)
	if err != nil {
		return nil, err
	}
	logger.Info("Read batch sheet", zap.String("sheet", sheet.Name), zap.Int("rows", len(sheet.Rows)))

	base := opts.Base
	base.NoInput = true
	base.Replay = false
	base.ReplayFile = ""
	base.NoReplaySave = true
	if base.Preloaded == nil {
		tpl, err := g.Locate(ctx, base)
		if err != nil {
			return nil, err
		}
		base.Preloaded = tpl
	}

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]generator.Result, len(sheet.Rows))
	var mu sync.Mutex
	done := 0

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, row := range sheet.Rows {
		eg.Go(func() error {
			rowOpts := base
			extra := base.Extra.Clone()
			extra.Merge(row.Values)
			rowOpts.Extra = extra

			res := g.Run(egCtx, rowOpts)
			results[i] = res

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if res.Err != nil {
				logger.Warn("Row failed", zap.Int("row", row.Number), zap.Int("done", n), zap.Error(res.Err))
			} else {
				logger.Info("Row generated", zap.Int("row", row.Number), zap.String("dir", res.ProjectDir), zap.Int("done", n))
			}
			// row failures never cancel the others
			return nil
		})
	}
	_ = eg.Wait()

	report := &Report{Results: results, Summary: summarize(base.Preloaded.Name, sheet, results, start, time.Now())}
	fm := utils.NewFileManager(outputDir(base.OutputDir), false)
	if err := fm.EnsureOutputDir(); err != nil {
		return report, err
	}
	path, err := utils.WriteSummaryLog(report.Summary, outputDir(base.OutputDir))
	if err != nil {
		logger.Warn("Could not write batch summary", zap.Error(err))
	}
	report.SummaryPath = path

	if report.Summary.Failed > 0 {
		return report, errors.New(errors.EBatchFailed,
			fmt.Sprintf("%d of %d rows failed", report.Summary.Failed, report.Summary.Total))
	}
	return report, nil
}

func summarize(templateName string, sheet *Sheet, results []generator.Result, start, end time.Time) utils.BatchSummary {
	summary := utils.BatchSummary{
		Template:  templateName,
		Sheet:     sheet.Name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start).Round(time.Millisecond).String(),
		Total:     len(results),
	}
	for i, res := range results {
		number := sheet.Rows[i].Number
		if res.Err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, utils.FailureInfo{
				Row:       number,
				ErrorCode: string(errors.GetCode(res.Err)),
				Error:     res.Err.Error(),
			})
			continue
		}
		summary.Successful++
		summary.Generated = append(summary.Generated, utils.GeneratedInfo{
			Row:        number,
			ProjectDir: res.ProjectDir,
			Files:      res.FilesWritten,
			Duration:   res.Duration.Round(time.Millisecond).String(),
		})
	}
	return summary
}

func outputDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
