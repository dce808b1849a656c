package tablestore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// CollectFiles expands paths into the loadable files they name. Directories
// are walked recursively and unsupported files inside them are skipped; an
// unsupported file named explicitly is an error. When two files map to the
// same table the uncompressed copy of a file wins over its compressed ones
// ("users.csv" over "users.csv.gz"); two different files mapping to one
// table, like "a/users.csv" and "b/users.csv", fail with
// ErrDuplicateTableName. The result is sorted.
func CollectFiles(paths ...string) ([]string, error) {
	var collected []string
	seen := make(map[string]bool)

	add := func(path string) error {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}
		if !seen[absPath] {
			seen[absPath] = true
			collected = append(collected, path)
		}
		return nil
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, NewErrorContext("collect files").WithFile(path).Error(err)
		}

		if !info.IsDir() {
			if format, _ := DetectFile(path); format == FormatUnsupported {
				return nil, NewErrorContext("collect files").WithFile(path).Error(ErrUnsupportedFormat)
			}
			if err := add(path); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if format, _ := DetectFile(filePath); format == FormatUnsupported {
				return nil
			}
			return add(filePath)
		})
		if err != nil {
			return nil, NewErrorContext("collect files").WithFile(path).Error(err)
		}
	}

	return preferUncompressed(collected)
}

// preferUncompressed keeps one file per table. Compressed copies of a file
// ("users.csv.gz" next to "users.csv") give way to the uncompressed one;
// two different sources mapping to the same table are an error.
func preferUncompressed(files []string) ([]string, error) {
	byTable := make(map[string]string, len(files))
	for _, file := range files {
		table := tableNameFromPath(file)
		kept, exists := byTable[table]
		if !exists {
			byTable[table] = file
			continue
		}
		if sourceOf(kept) != sourceOf(file) {
			return nil, NewErrorContext("collect files").
				WithTable(table).
				WithDetails(fmt.Sprintf("%s and %s", kept, file)).
				Error(ErrDuplicateTableName)
		}
		if _, compression := DetectFile(file); compression == CompressionNone {
			byTable[table] = file
		}
	}

	result := make([]string, 0, len(byTable))
	for _, file := range byTable {
		result = append(result, file)
	}
	slices.Sort(result)
	return result, nil
}

// sourceOf returns the absolute path of file without its compression
// extension, so "users.csv" and "users.csv.gz" share a source
func sourceOf(file string) string {
	if _, compression := DetectFile(file); compression != CompressionNone {
		file = file[:len(file)-len(compression.Extension())]
	}
	if absPath, err := filepath.Abs(file); err == nil {
		return absPath
	}
	return file
}
