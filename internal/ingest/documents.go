package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/energy-bills/constants"
	"github.com/joseph-ayodele/energy-bills/internal/common"
)

// Document is one bill selected for a batch run.
type Document struct {
	Name string // base file name, as written in the reports
	Path string
}

// DirStats summarizes a folder listing.
type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Excluded uint32
}

// ListDocuments returns the entries of folder whose name ends with ext and is not
// in the exclusion list, in name order. Subfolders are not descended into.
func ListDocuments(folder, ext string, excluded []string) ([]Document, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(folder) == "" {
		return nil, stats, common.NewAppError("INPUT_ERROR", "input folder is required", common.ErrInvalidInput)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, stats, common.NewAppError("INPUT_ERROR", fmt.Sprintf("read input folder %q", folder), fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}

	var docs []Document
	for _, e := range entries {
		stats.Scanned++
		name := e.Name()
		if !strings.HasSuffix(name, ext) {
			continue
		}
		if constants.IsExcluded(name, excluded) {
			stats.Excluded++
			continue
		}
		stats.Matched++
		docs = append(docs, Document{Name: name, Path: filepath.Join(folder, name)})
	}
	return docs, stats, nil
}

// HashFile returns the hex-encoded SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
