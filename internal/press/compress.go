package press

import (
	"context"
	"fmt"
	"os"
)

// QualityPreset names a bundle of default Ghostscript compression parameters.
type QualityPreset string

// The four supported presets, mapped to Ghostscript -dPDFSETTINGS values.
const (
	QualityScreen   QualityPreset = "screen"
	QualityEbook    QualityPreset = "ebook"
	QualityPrinter  QualityPreset = "printer"
	QualityPrepress QualityPreset = "prepress"
)

// presetSettings maps each preset to its -dPDFSETTINGS argument.
var presetSettings = map[QualityPreset]string{
	QualityScreen:   "/screen",
	QualityEbook:    "/ebook",
	QualityPrinter:  "/printer",
	QualityPrepress: "/prepress",
}

// presetDPI maps each preset to its default raster resolution.
var presetDPI = map[QualityPreset]int{
	QualityScreen:   72,
	QualityEbook:    150,
	QualityPrinter:  300,
	QualityPrepress: 300,
}

// Valid reports whether the preset is one of the supported names.
func (preset QualityPreset) Valid() bool {
	_, ok := presetSettings[preset]

	return ok
}

// DefaultDPI returns the raster resolution implied by the preset.
func (preset QualityPreset) DefaultDPI() int {
	return presetDPI[preset]
}

// CompressionRequest is the immutable compression configuration shared by all
// adapter invocations in a run.
type CompressionRequest struct {
	Quality QualityPreset
	DPI     int
	Enabled bool
}

// EffectiveDPI returns the explicit DPI override when set, otherwise the
// preset's default.
func (request CompressionRequest) EffectiveDPI() int {
	if request.DPI > 0 {
		return request.DPI
	}

	return request.Quality.DefaultDPI()
}

// CompressionResult is the outcome of one adapter invocation. Path and Size
// always describe a usable file: the compressed output when Compressed is
// true, otherwise the original input. Err carries the failure reason when the
// external tool failed; callers keep the original file in that case.
type CompressionResult struct {
	Path       string
	Size       int64
	Compressed bool
	Err        error
}

// minMonoDPI keeps rasterized linework from degrading below print resolution.
const minMonoDPI = 300

// compressFile invokes Ghostscript on inPath, writing to outPath. When
// compression is disabled or no Ghostscript binary was found, it is a no-op
// passthrough returning the original file. A non-zero exit status, a missing
// output file, or an empty output file is reported as a failure so the caller
// retains the uncompressed merge. A result that is no smaller than the input
// is not an error, but the original is kept.
func (processor *Processor) compressFile(
	ctx context.Context,
	inPath, outPath string,
) CompressionResult {
	inSize, statErr := fileSize(inPath)
	if statErr != nil {
		return failedCompression(inPath, 0, statErr)
	}

	if !processor.request.Enabled || processor.gsBinary == "" {
		return CompressionResult{
			Path:       inPath,
			Size:       inSize,
			Compressed: false,
			Err:        nil,
		}
	}

	args := buildGhostscriptArgs(processor.request, inPath, outPath)

	outputBytes, execErr := processor.executor.RunCombined(
		ctx,
		processor.gsBinary,
		args...)
	if execErr != nil {
		return failedCompression(inPath, inSize, fmt.Errorf(
			"ghostscript execution failed: %w. Output: %s",
			execErr,
			string(outputBytes),
		))
	}

	outSize, outStatErr := fileSize(outPath)
	if outStatErr != nil || outSize == 0 {
		return failedCompression(inPath, inSize, fmt.Errorf(
			"ghostscript produced no usable output at %s: %w",
			outPath,
			errEmptyCompressedOutput,
		))
	}

	if outSize >= inSize {
		// Already dense; the recompressed copy would be larger.
		return CompressionResult{
			Path:       inPath,
			Size:       inSize,
			Compressed: false,
			Err:        nil,
		}
	}

	return CompressionResult{
		Path:       outPath,
		Size:       outSize,
		Compressed: true,
		Err:        nil,
	}
}

func failedCompression(originalPath string, originalSize int64, reason error) CompressionResult {
	return CompressionResult{
		Path:       originalPath,
		Size:       originalSize,
		Compressed: false,
		Err:        reason,
	}
}

// buildGhostscriptArgs constructs the pdfwrite invocation: downsample color,
// grayscale, and mono raster content at the effective DPI while leaving vector
// linework and text untouched.
func buildGhostscriptArgs(request CompressionRequest, inPath, outPath string) []string {
	dpi := request.EffectiveDPI()

	monoDPI := dpi
	if monoDPI < minMonoDPI {
		monoDPI = minMonoDPI
	}

	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.5",
		"-dPDFSETTINGS=" + presetSettings[request.Quality],
		"-dNOPAUSE", "-dQUIET", "-dBATCH",
		"-dDownsampleColorImages=true",
		fmt.Sprintf("-dColorImageResolution=%d", dpi),
		"-dColorImageDownsampleType=/Bicubic",
		"-dDownsampleGrayImages=true",
		fmt.Sprintf("-dGrayImageResolution=%d", dpi),
		"-dGrayImageDownsampleType=/Bicubic",
		"-dDownsampleMonoImages=true",
		fmt.Sprintf("-dMonoImageResolution=%d", monoDPI),
		"-dAutoFilterColorImages=false",
		"-dColorImageFilter=/DCTEncode",
		"-dAutoFilterGrayImages=false",
		"-dGrayImageFilter=/DCTEncode",
		"-dDetectDuplicateImages=true",
		"-dCompressFonts=true",
		"-dSubsetFonts=true",
		"-sOutputFile=" + outPath,
		inPath,
	}
}

// fileSize returns the byte size of the file at path.
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("could not stat %s: %w", path, err)
	}

	return info.Size(), nil
}
