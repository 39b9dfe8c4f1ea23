package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/types"
	"github.com/ginjaninja78/scaffold/internal/validation"
	"github.com/ginjaninja78/scaffold/pkg/utils"
)

// setLicense copies data/licenses/<license> to LICENSE and fills in
// {year} and {author_name}.
func setLicense(_ context.Context, env *Env) error {
	name := env.Context.String("license")
	if validation.IsNone(name) {
		env.Logger.Debug("No license set")
		return nil
	}

	licensesDir := filepath.Join(env.ProjectDir, "data", "licenses")
	entries, err := os.ReadDir(licensesDir)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.EHookFailed, "failed to list licenses", err)
	}
	var available []string
	for _, e := range entries {
		if !e.IsDir() {
			available = append(available, e.Name())
		}
	}

	resolved, corrected, err := validation.ResolveLicense(name, available)
	if err != nil {
		return err
	}
	if corrected {
		env.Logger.Warn("Corrected license name", zap.String("license", resolved))
	}

	dest := filepath.Join(env.ProjectDir, "LICENSE")
	if err := utils.CopyFile(filepath.Join(licensesDir, resolved), dest); err != nil {
		return errors.Wrap(errors.EHookFailed, "failed to copy license", err)
	}
	err = replaceInFile(dest, map[string]string{
		"{year}":        strconv.Itoa(env.Now().Year()),
		"{author_name}": env.Context.String("author_name"),
	})
	if err != nil {
		return errors.Wrap(errors.EHookFailed, "failed to fill in license", err)
	}

	env.Logger.Debug("Set license", zap.String("license", resolved))
	return nil
}

// checkLicense rejects a license the template ships no file for.
func checkLicense(c *types.Context, licenses []string) error {
	name := c.String("license")
	if validation.IsNone(name) {
		return nil
	}
	_, _, err := validation.ResolveLicense(name, licenses)
	return err
}
