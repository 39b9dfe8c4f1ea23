// Package replay persists the context of a generation so it can be run again
// without prompting.
package replay

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/types"
	"github.com/ginjaninja78/scaffold/pkg/utils"
)

// Path returns the replay file for templateName inside dir.
func Path(dir, templateName string) string {
	name := strings.TrimSuffix(templateName, ".json")
	name = strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(name)
	return filepath.Join(dir, name+".json")
}

// Save writes ctx to the replay file of templateName, replacing any earlier
// one. Keys are written in context order.
func Save(dir, templateName string, ctx *types.Context) (string, error) {
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode replay context: %w", err)
	}
	data = append(data, '\n')

	path := Path(dir, templateName)
	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write replay file: %w", err)
	}
	return path, nil
}

// Load reads the replay file of templateName.
func Load(dir, templateName string) (*types.Context, error) {
	return LoadFile(Path(dir, templateName))
}

// LoadFile reads an explicit replay file.
func LoadFile(path string) (*types.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewWithDetails(errors.EReplayNotFound,
				fmt.Sprintf("no replay file at %s; run without --replay first", path),
				map[string]string{"path": path})
		}
		return nil, fmt.Errorf("read replay file: %w", err)
	}

	ctx := types.NewContext()
	if err := json.Unmarshal(data, ctx); err != nil {
		return nil, errors.Wrap(errors.EReplayNotFound, fmt.Sprintf("replay file %s is not a JSON object", path), err)
	}
	return ctx, nil
}
