// =============================================================================
// scaffold - File Manager Utility
// =============================================================================
//
// This module provides the file operations around a generation run:
//   - Staging directories (render somewhere private first)
//   - Committing a staged project into the output directory
//   - Atomic single-file writes (replay files)
//   - Copying files and trees (hook steps)
//   - Batch summary logs
//
// STAGING STRATEGY:
//   A project is written into ".scaffold-<uuid>" inside the output directory,
//   on the same filesystem as the destination, then renamed into place. If
//   anything fails before the rename the staging directory is removed, so a
//   failed run never leaves a half-written project behind.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

// StagingPrefix names staging directories inside the output directory.
const StagingPrefix = ".scaffold-"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for one output directory.
type FileManager struct {
	// OutputDir is the directory projects are generated into.
	OutputDir string

	// Overwrite lets Commit merge into an existing project directory.
	Overwrite bool
}

// NewFileManager creates a new FileManager for outputDir.
func NewFileManager(outputDir string, overwrite bool) *FileManager {
	return &FileManager{OutputDir: outputDir, Overwrite: overwrite}
}

// EnsureOutputDir creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to create output directory %s", fm.OutputDir), err)
	}
	return nil
}

// =============================================================================
// STAGING
// =============================================================================

// NewStaging creates a fresh staging directory inside OutputDir.
//
// RETURNS:
//   - The staging directory path.
//   - An error if it cannot be created.
func (fm *FileManager) NewStaging() (string, error) {
	if err := fm.EnsureOutputDir(); err != nil {
		return "", err
	}
	dir := filepath.Join(fm.OutputDir, StagingPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ERenderFailed, "failed to create staging directory", err)
	}
	return dir, nil
}

// Discard removes a staging directory. Errors are ignored: the directory is
// private to the run and nothing else depends on it.
func (fm *FileManager) Discard(staging string) {
	if staging == "" {
		return
	}
	_ = os.RemoveAll(staging)
}

// ProjectPath returns where a project named name ends up.
func (fm *FileManager) ProjectPath(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// CheckDestination fails with E_OUTPUT_EXISTS when the project directory is
// already present and overwriting is off.
func (fm *FileManager) CheckDestination(name string) error {
	dest := fm.ProjectPath(name)
	if !FileExists(dest) || fm.Overwrite {
		return nil
	}
	return errors.NewWithDetails(errors.EOutputExists,
		fmt.Sprintf("%s already exists (use --overwrite-if-exists to write into it)", dest),
		map[string]string{"path": dest})
}

// Commit moves a staged project directory into OutputDir.
//
// PARAMETERS:
//   - stagedProject: the project directory inside the staging directory.
//
// BEHAVIOUR:
//   - Destination missing: a single rename.
//   - Destination present, Overwrite on: every staged file replaces its
//     counterpart; files only present in the destination are kept.
//   - Destination present, Overwrite off: E_OUTPUT_EXISTS.
//
// RETURNS:
//   - The final project directory.
func (fm *FileManager) Commit(stagedProject string) (string, error) {
	name := filepath.Base(stagedProject)
	if err := fm.CheckDestination(name); err != nil {
		return "", err
	}
	dest := fm.ProjectPath(name)

	if !FileExists(dest) {
		if err := os.Rename(stagedProject, dest); err != nil {
			return "", errors.Wrap(errors.ERenderFailed, "failed to move project into place", err)
		}
		return dest, nil
	}

	err := filepath.WalkDir(stagedProject, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(stagedProject, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			if err := os.RemoveAll(target); err != nil {
				return err
			}
		}
		return os.Rename(p, target)
	})
	if err != nil {
		return "", errors.Wrap(errors.ERenderFailed, "failed to merge project into existing directory", err)
	}
	return dest, nil
}

// =============================================================================
// FILE WRITING
// =============================================================================

// WriteFileAtomic writes data to path using a temp file + rename in the same
// directory. On failure the original file (if any) is left unchanged.
// Parent directories are created as needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, StagingPrefix+"tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}

// =============================================================================
// BATCH SUMMARY
// =============================================================================

// BatchSummary contains summary information about a batch run.
type BatchSummary struct {
	Template   string          `yaml:"template"`
	Sheet      string          `yaml:"sheet"`
	StartTime  time.Time       `yaml:"start_time"`
	EndTime    time.Time       `yaml:"end_time"`
	Duration   string          `yaml:"duration"`
	Total      int             `yaml:"total"`
	Successful int             `yaml:"successful"`
	Failed     int             `yaml:"failed"`
	Generated  []GeneratedInfo `yaml:"generated,omitempty"`
	Failures   []FailureInfo   `yaml:"failures,omitempty"`
}

// GeneratedInfo describes one project generated by a batch run.
type GeneratedInfo struct {
	Row        int    `yaml:"row"`
	ProjectDir string `yaml:"project_dir"`
	Files      int    `yaml:"files"`
	Duration   string `yaml:"duration"`
}

// FailureInfo describes one failed batch row.
type FailureInfo struct {
	Row       int    `yaml:"row"`
	ErrorCode string `yaml:"error_code,omitempty"`
	Error     string `yaml:"error"`
}

// WriteSummaryLog writes the batch summary as YAML into outputDir.
//
// RETURNS:
//   - The path to the summary file ("scaffold-batch-<timestamp>.yaml").
//   - An error if writing fails.
func WriteSummaryLog(summary BatchSummary, outputDir string) (string, error) {
	if summary.Duration == "" {
		summary.Duration = summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond).String()
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	name := fmt.Sprintf("scaffold-batch-%s.yaml", summary.StartTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, name)
	if err := WriteFileAtomic(summaryPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// CopyFile copies a file from src to dst, keeping the source permissions.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// CopyTree copies the directory src to dst recursively.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return CopyFile(p, target)
	})
}

// FileExists checks if a file or directory exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
