package converter

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// SupportedExts is the set of input extensions eligible for conversion.
var SupportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// ImagePath is a candidate input produced by Enumerate: the file path plus
// its lower-cased extension.
type ImagePath struct {
	Path string
	Ext  string
}

// PathOf wraps a single file path as a conversion candidate.
func PathOf(path string) ImagePath {
	return ImagePath{
		Path: path,
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
}

// Enumerate lists the direct children of inputDir whose extension is in the
// supported set, in lexicographic filename order. The ordering is the one
// batch results are aligned to, so it must be stable across runs and
// independent of worker scheduling.
func Enumerate(inputDir string) ([]ImagePath, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, newError(ErrorKindNotADirectory, err)
	}

	if !info.IsDir() {
		return nil, newErrorf(ErrorKindNotADirectory, "not a directory: %s", inputDir)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, newError(ErrorKindNotADirectory, err)
	}

	paths := []ImagePath{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !SupportedExts[ext] {
			continue
		}

		paths = append(paths, ImagePath{
			Path: filepath.Join(inputDir, entry.Name()),
			Ext:  ext,
		})
	}

	zap.S().Debugw("enumerated input directory",
		"dir", inputDir,
		"candidates", len(paths),
	)

	return paths, nil
}
