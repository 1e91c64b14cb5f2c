package press

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CollectInputs expands the command-line arguments into an ordered list of
// input documents. Each argument is either a PDF file or a directory, which is
// scanned non-recursively and case-insensitively for PDF files sorted
// lexicographically by filename. Anything else is skipped with a notice.
func (processor *Processor) CollectInputs(args []string) ([]InputDocument, error) {
	var docs []InputDocument

	for _, arg := range args {
		info, statErr := os.Stat(arg)
		if statErr != nil {
			return nil, fmt.Errorf("could not read input %s: %w", arg, statErr)
		}

		if info.IsDir() {
			dirDocs, dirErr := collectDirPDFs(arg)
			if dirErr != nil {
				return nil, dirErr
			}

			docs = append(docs, dirDocs...)

			continue
		}

		if !isPDFName(info.Name()) {
			processor.log.Warn("Skipping non-PDF input: %s", arg)

			continue
		}

		docs = append(docs, InputDocument{Path: arg, Size: info.Size()})
	}

	if len(docs) == 0 {
		return nil, ErrNoInputPDFs
	}

	return docs, nil
}

// collectDirPDFs lists the PDF files directly inside dirPath, in lexicographic
// filename order for deterministic sheet ordering.
func collectDirPDFs(dirPath string) ([]InputDocument, error) {
	dirEntries, readErr := os.ReadDir(dirPath)
	if readErr != nil {
		return nil, fmt.Errorf("could not read directory %s: %w", dirPath, readErr)
	}

	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name() < dirEntries[j].Name()
	})

	var docs []InputDocument

	for _, entry := range dirEntries {
		if entry.IsDir() || !isPDFName(entry.Name()) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			return nil, fmt.Errorf(
				"could not stat %s: %w",
				filepath.Join(dirPath, entry.Name()),
				infoErr,
			)
		}

		docs = append(docs, InputDocument{
			Path: filepath.Join(dirPath, entry.Name()),
			Size: info.Size(),
		})
	}

	return docs, nil
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// partPath returns the destination for group index (1-based) of total. A
// single group writes exactly the configured output path; multiple groups
// write <stem>_partN<ext> alongside it.
func partPath(outputPath string, index, total int) string {
	if total <= 1 {
		return outputPath
	}

	ext := filepath.Ext(outputPath)
	stem := strings.TrimSuffix(outputPath, ext)

	return fmt.Sprintf("%s_part%d%s", stem, index, ext)
}

// finalizeFile moves the workspace artifact to its destination. Rename is
// attempted first; a cross-device move falls back to copy and remove.
func finalizeFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	copyErr := copyFile(src, dst)
	if copyErr != nil {
		return copyErr
	}

	removeErr := os.Remove(src)
	if removeErr != nil {
		return fmt.Errorf("failed to remove intermediate %s: %w", src, removeErr)
	}

	return nil
}
