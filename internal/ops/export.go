package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-kit/log/level"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/errors"
)

// ExportCatalogInput contains parameters for the ExportCatalog operation.
type ExportCatalogInput struct {
	Path  string   // optional, default: <exports dir>/animations-<timestamp>.yaml
	Names []string // optional, default: every registered animation
}

// ExportCatalogOutput contains the result of the ExportCatalog operation.
type ExportCatalogOutput struct {
	Path       string   `json:"path"`
	Count      int      `json:"count"`
	Names      []string `json:"names"`
	ExportedAt int64    `json:"exported_at"`
}

// ExportCatalog writes registered animations as a YAML catalog that
// animations_file can load back. The file is written to a temp name and
// renamed into place, so an existing export survives a failed run.
func ExportCatalog(ctx context.Context, env *Env, input ExportCatalogInput) (*ExportCatalogOutput, error) {
	now := time.Now()

	defs, err := catalogDefinitions(env, input.Names)
	if err != nil {
		return nil, err
	}

	dir := env.ExportsDir
	if dir == "" {
		dir, err = DefaultExportsDir()
		if err != nil {
			return nil, err
		}
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(dir, "animations-"+now.Format("2006-01-02T150405")+".yaml")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}
	if err := ValidateExportPath(exportPath, dir); err != nil {
		return nil, err
	}

	data, err := animation.MarshalCatalog(defs)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	success = true

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	level.Info(env.Logger).Log("msg", "exported animation catalog", "path", exportPath, "count", len(defs))

	return &ExportCatalogOutput{
		Path:       exportPath,
		Count:      len(defs),
		Names:      names,
		ExportedAt: now.Unix(),
	}, nil
}

// catalogDefinitions returns the named definitions, or all of them.
func catalogDefinitions(env *Env, names []string) ([]animation.Definition, error) {
	if len(names) == 0 {
		return env.Registry.List(), nil
	}
	defs := make([]animation.Definition, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		def, ok := env.Registry.Get(name)
		if !ok {
			return nil, errors.NewAnimationNotFound(name)
		}
		defs = append(defs, *def)
	}
	if len(defs) == 0 {
		return nil, errors.NewInvalidRequest("no animation names given")
	}
	return defs, nil
}
