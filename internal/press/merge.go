package press

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfEngine is the document-level PDF surface the pipeline needs: validating
// inputs, concatenating files in order, and counting pages. The abstraction
// lets tests exercise the group pipeline without real PDFs.
type pdfEngine interface {
	// Validate checks that every path opens as a valid PDF.
	Validate(paths []string) error
	// Merge writes a combined PDF containing every page of every input, in
	// input order, with no modification to page content.
	Merge(inFiles []string, outFile string) error
	// PageCount returns the number of pages in a PDF file.
	PageCount(path string) (int, error)
}

// pdfcpuEngine is the production engine built on pdfcpu.
type pdfcpuEngine struct{}

func (pdfcpuEngine) Validate(paths []string) error {
	validateErr := api.ValidateFiles(paths, relaxedConfiguration())
	if validateErr != nil {
		return fmt.Errorf("input validation failed: %w", validateErr)
	}

	return nil
}

func (pdfcpuEngine) Merge(inFiles []string, outFile string) error {
	mergeErr := api.MergeCreateFile(inFiles, outFile, false, relaxedConfiguration())
	if mergeErr != nil {
		return fmt.Errorf("failed to merge PDFs into %s: %w", outFile, mergeErr)
	}

	return nil
}

func (pdfcpuEngine) PageCount(path string) (int, error) {
	pageCount, countErr := api.PageCountFile(path)
	if countErr != nil {
		return 0, fmt.Errorf("could not count pages of %s: %w", path, countErr)
	}

	return pageCount, nil
}

// relaxedConfiguration returns a pdfcpu configuration that tolerates the
// mildly out-of-spec PDFs that drawing tools tend to publish.
func relaxedConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return conf
}

// mergeGroup produces the group's combined artifact at outFile. A group of one
// document is copied rather than run through the merge API.
func (processor *Processor) mergeGroup(docs []InputDocument, outFile string) error {
	if len(docs) == 1 {
		return copyFile(docs[0].Path, outFile)
	}

	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		paths = append(paths, doc.Path)
	}

	return processor.engine.Merge(paths, outFile)
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	sourceFile, openErr := os.Open(src)
	if openErr != nil {
		return fmt.Errorf("failed to open %s: %w", src, openErr)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	destFile, createErr := os.Create(dst)
	if createErr != nil {
		return fmt.Errorf("failed to create %s: %w", dst, createErr)
	}

	_, copyErr := io.Copy(destFile, sourceFile)
	if copyErr != nil {
		_ = destFile.Close()

		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, copyErr)
	}

	closeErr := destFile.Close()
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", dst, closeErr)
	}

	return nil
}
