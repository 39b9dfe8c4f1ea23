package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/hooks"
	"github.com/ginjaninja78/scaffold/internal/template"
	"github.com/ginjaninja78/scaffold/internal/tmplctx"
	"github.com/ginjaninja78/scaffold/internal/validation"
)

// Validate checks the template named by opts without writing anything:
// the manifest steps exist, the defaults render, every referenced key is
// defined (including keys the listed steps read), the values those steps
// check are accepted, the derived package name is importable and every
// license choice has a license file.
//
// RETURNS:
//   - The report; callers decide whether issues are fatal (report.Err()).
//   - An error only when the template cannot be located or loaded.
func (g *Generator) Validate(ctx context.Context, opts Options) (*validation.Report, error) {
	tpl := opts.Preloaded
	if tpl == nil {
		var err error
		if tpl, err = g.Locate(ctx, opts); err != nil {
			return nil, err
		}
	}
	m := tpl.Manifest
	report := validation.NewReport(tpl.Name)
	report.Steps = m.Steps()

	if err := hooks.Validate(m.PreGenSteps, m.PostGenSteps); err != nil {
		report.AddError("manifest", m.File, err)
	}

	tctx, err := tmplctx.Build(ctx, m, tmplctx.Options{
		DefaultContext: g.cfg.DefaultContext,
		Extra:          opts.Extra,
		NoInput:        true,
		Engine:         g.renderer.Engine(),
		Logger:         g.logger,
	})
	if err != nil {
		report.AddError("defaults", m.File, err)
		return report, nil
	}
	report.KeysChecked = tctx.Len()

	skip := g.skippedSteps(tpl, opts)
	missing, err := g.missingKeys(tpl, tctx, skip)
	if err == nil {
		err = validation.MissingKeyError(missing)
	}
	if err != nil {
		report.AddError("keys", "", err)
	} else if err := hooks.Preflight(m.Steps(), skip, tctx, tpl.Licenses()); err != nil {
		report.AddError("choices", m.File, err)
	} else if plan, err := g.renderer.Plan(tpl, tctx); err != nil {
		report.AddError("render", tpl.ProjectDir, err)
	} else {
		report.FilesChecked = plan.Files()
	}

	if contains(m.PreGenSteps, "check_module_name") {
		if err := validation.CheckModuleName(tctx.String("package_name")); err != nil {
			report.AddError("package_name", "package_name", err)
		}
	}

	checkLicenses(tpl, report)

	g.logger.Debug("Validated template",
		zap.String("template", tpl.Name),
		zap.Int("errors", report.ErrorCount),
		zap.Int("warnings", report.WarningCount))
	return report, nil
}

// checkLicenses warns about license choices set_license would reject.
func checkLicenses(tpl *template.Template, report *validation.Report) {
	if !contains(tpl.Manifest.PostGenSteps, "set_license") {
		return
	}
	v, ok := tpl.Manifest.Variable("license")
	if !ok {
		return
	}
	options := v.Choices
	if v.Kind != template.KindChoice {
		s, _ := v.Default.(string)
		options = []string{s}
	}

	available := tpl.Licenses()
	for _, choice := range options {
		if validation.IsNone(choice) {
			continue
		}
		if _, _, err := validation.ResolveLicense(choice, available); err != nil {
			report.Add(validation.SeverityWarning, "licenses", "license",
				"choice "+choice+" has no file in "+template.LicensesDir)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
