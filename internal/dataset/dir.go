package dataset

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Open picks a source by file extension.
func Open(path string, chunk int) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return OpenCSV(path, chunk)
	case ".jsonl", ".ndjson":
		return OpenJSONL(path, chunk)
	}
	return nil, fmt.Errorf("%s: unsupported input type (want .csv or .jsonl)", path)
}

// Create picks a sink by file extension.
func Create(path string) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CreateCSV(path)
	case ".jsonl", ".ndjson":
		return CreateJSONL(path)
	}
	return nil, fmt.Errorf("%s: unsupported output type (want .csv or .jsonl)", path)
}

// ListFiles walks dir and returns every annotatable file, sorted for a
// stable processing order. Files named like our own outputs (*_lang.*)
// are skipped so a re-run does not annotate annotations.
func ListFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if strings.HasSuffix(strings.TrimSuffix(filepath.Base(path), ext), "_lang") {
			return nil
		}
		switch strings.ToLower(ext) {
		case ".csv", ".jsonl", ".ndjson":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath derives the annotated sibling of an input file:
// rolls/ward7.csv -> rolls/ward7_lang.csv.
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_lang" + ext
}
