package press

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/logger"
	"github.com/cheggaaa/pb/v3"
)

var (
	// ErrInputsRequired is returned when no input paths are provided.
	ErrInputsRequired = errors.New("at least one input path is required")
	// ErrOutputPathRequired is returned when the output path is not provided.
	ErrOutputPathRequired = errors.New("output path is required")
	// ErrUnknownQuality is returned for a quality name outside the preset set.
	ErrUnknownQuality = errors.New(
		"unknown quality preset (expected screen, ebook, printer or prepress)",
	)
	// ErrNoInputPDFs is returned when discovery finds no PDF files at all.
	ErrNoInputPDFs = errors.New("no pdf files found in the given inputs")

	errEmptyCompressedOutput = errors.New("output file is missing or empty")
)

// Options holds all configurable parameters for a Processor.
type Options struct {
	ProgressBarOutput io.Writer
	Inputs            []string
	OutputPath        string
	Quality           string
	DPI               int
	NoCompress        bool
	MaxSizeMB         float64
}

// Processor runs the merge, compress and split pipeline for one invocation.
type Processor struct {
	executor CommandExecutor
	engine   pdfEngine
	log      *logger.Logger
	config   Options
	request  CompressionRequest
	gsBinary string
}

// NewProcessor creates and initializes a new Processor with the given options
// and logger. It sets sensible defaults for any zero-value fields in Options.
func NewProcessor(opts *Options, log *logger.Logger) *Processor {
	applyDefaultOptions(opts)

	return &Processor{
		config:   *opts,
		log:      log,
		executor: &defaultExecutor{},
		engine:   pdfcpuEngine{},
		request:  CompressionRequest{Quality: "", DPI: 0, Enabled: false},
		gsBinary: "",
	}
}

// DefaultOutputName is the output filename used when none is configured.
const DefaultOutputName = "combined_compressed.pdf"

// applyDefaultOptions fills zero-value fields in Options with sensible defaults.
func applyDefaultOptions(opts *Options) {
	if opts.Quality == "" {
		opts.Quality = string(QualityEbook)
	}

	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOutputName
	}

	if opts.ProgressBarOutput == nil {
		opts.ProgressBarOutput = os.Stdout
	}
}

// validateConfig checks the invocation configuration before any work starts.
func (processor *Processor) validateConfig() error {
	if len(processor.config.Inputs) == 0 {
		return ErrInputsRequired
	}

	if processor.config.OutputPath == "" {
		return ErrOutputPathRequired
	}

	if !QualityPreset(processor.config.Quality).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownQuality, processor.config.Quality)
	}

	return nil
}

const bytesPerMB = 1 << 20

// maxBytes converts the configured size cap to bytes. Zero means no cap.
func (processor *Processor) maxBytes() int64 {
	return int64(processor.config.MaxSizeMB * bytesPerMB)
}

// Process is the main entry point. It discovers the input sheets, plans the
// output groups, merges and compresses each group, re-splitting any group
// whose compressed size still exceeds the cap, and writes the final file(s).
func (processor *Processor) Process(ctx context.Context) error {
	err := processor.validateConfig()
	if err != nil {
		return err
	}

	processor.request = CompressionRequest{
		Quality: QualityPreset(processor.config.Quality),
		DPI:     processor.config.DPI,
		Enabled: !processor.config.NoCompress,
	}

	docs, err := processor.discoverInputs()
	if err != nil {
		return err
	}

	processor.prepareCompression(ctx)

	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.cleanup(processor.log)

	finals, err := processor.processGroups(
		ctx,
		ws,
		planGroups(docs, processor.maxBytes()),
	)
	if err != nil {
		return err
	}

	outputs, err := processor.finalize(finals)
	if err != nil {
		return err
	}

	processor.summarize(docs, outputs)

	return nil
}

// discoverInputs collects, validates and reports the input documents.
func (processor *Processor) discoverInputs() ([]InputDocument, error) {
	docs, collectErr := processor.CollectInputs(processor.config.Inputs)
	if collectErr != nil {
		return nil, collectErr
	}

	paths := make([]string, 0, len(docs))

	var totalBytes int64

	for _, doc := range docs {
		paths = append(paths, doc.Path)
		totalBytes += doc.Size
	}

	validateErr := processor.engine.Validate(paths)
	if validateErr != nil {
		return nil, validateErr
	}

	processor.log.Info("Found %d PDF(s) to combine:", len(docs))

	for _, doc := range docs {
		processor.log.Info(
			"  %-40s %8.2f MB",
			filepath.Base(doc.Path),
			megabytes(doc.Size),
		)
	}

	processor.log.Info("  %-40s %8.2f MB", "TOTAL INPUT", megabytes(totalBytes))

	return docs, nil
}

// prepareCompression resolves the Ghostscript binary once at startup. A
// missing binary degrades the run to combine-only mode rather than failing.
func (processor *Processor) prepareCompression(ctx context.Context) {
	if !processor.request.Enabled {
		return
	}

	processor.gsBinary = processor.locateGhostscript(ctx)
	if processor.gsBinary == "" {
		processor.log.Warn(
			"NOTICE: Ghostscript not found; combining without compression.",
		)

		processor.request.Enabled = false
	}
}

// processGroups drives each group through the state machine
// {Pending, Compressing, Verified, NeedsSplit, Final}. Groups are processed
// front-of-queue so re-split subgroups keep the original input order.
// Termination is bounded by the input document count: a re-split always yields
// at least two subgroups, and single-document groups are never re-split.
func (processor *Processor) processGroups(
	ctx context.Context,
	ws *workspace,
	groups []*OutputGroup,
) ([]*OutputGroup, error) {
	groupProgressBar := pb.New(len(groups)).
		SetTemplateString(`{{ bar . " " "━" "━" " " " "}} {{percent .}} {{rtime .}}`).
		SetWriter(processor.config.ProgressBarOutput).
		Start()
	defer groupProgressBar.Finish()

	var finals []*OutputGroup

	queue := groups
	sequence := 0

	for len(queue) > 0 {
		group := queue[0]

		switch group.State {
		case GroupPending:
			sequence++

			mergeErr := processor.buildGroupArtifact(group, ws, sequence)
			if mergeErr != nil {
				return nil, mergeErr
			}
		case GroupCompressing:
			processor.compressGroup(ctx, group)
		case GroupNeedsSplit:
			subgroups := resplitGroup(group, processor.maxBytes())
			processor.log.Info(
				"Re-splitting a %.2f MB group of %d sheet(s) into %d smaller groups",
				megabytes(group.Size),
				len(group.Docs),
				len(subgroups),
			)

			queue = append(subgroups, queue[1:]...)
			groupProgressBar.SetTotal(
				groupProgressBar.Total() + int64(len(subgroups)) - 1,
			)
		case GroupVerified:
			group.State = GroupFinal
			finals = append(finals, group)
			queue = queue[1:]

			groupProgressBar.Increment()
		case GroupFinal:
			queue = queue[1:]
		}
	}

	return finals, nil
}

// buildGroupArtifact merges the group's documents into a workspace file and
// advances the group to the compressing state.
func (processor *Processor) buildGroupArtifact(
	group *OutputGroup,
	ws *workspace,
	sequence int,
) error {
	merged := ws.path(fmt.Sprintf("group_%03d.pdf", sequence))

	mergeErr := processor.mergeGroup(group.Docs, merged)
	if mergeErr != nil {
		return mergeErr
	}

	mergedSize, sizeErr := fileSize(merged)
	if sizeErr != nil {
		return sizeErr
	}

	group.FilePath = merged
	group.Size = mergedSize
	group.State = GroupCompressing

	return nil
}

// compressGroup runs the compressor adapter on the group's merged artifact and
// advances the group to Verified or NeedsSplit. Compression failures fall back
// to the uncompressed merge and are never fatal.
func (processor *Processor) compressGroup(ctx context.Context, group *OutputGroup) {
	compressedPath := strings.TrimSuffix(group.FilePath, ".pdf") + "_gs.pdf"

	result := processor.compressFile(ctx, group.FilePath, compressedPath)

	switch {
	case result.Err != nil:
		processor.log.Warn(
			"NOTICE: compression failed, keeping uncompressed merge: %v",
			result.Err,
		)
	case result.Compressed:
		processor.log.Info(
			"Compressed %.2f MB -> %.2f MB (%.0f%% reduction)",
			megabytes(group.Size),
			megabytes(result.Size),
			reductionPercent(group.Size, result.Size),
		)

		group.FilePath = result.Path
		group.Size = result.Size
	case processor.request.Enabled:
		processor.log.Info(
			"Compression gained nothing (%.2f MB); keeping original content",
			megabytes(group.Size),
		)
	}

	group.State = processor.verifyGroupSize(group)
}

// verifyGroupSize decides whether the group's artifact fits the cap. A single
// document over the cap cannot be split further; that overage is accepted with
// a notice rather than treated as an error.
func (processor *Processor) verifyGroupSize(group *OutputGroup) GroupState {
	maxBytes := processor.maxBytes()
	if maxBytes <= 0 || group.Size <= maxBytes {
		return GroupVerified
	}

	if len(group.Docs) == 1 {
		processor.log.Warn(
			"NOTICE: %s alone is %.2f MB, over the %.2f MB cap; it cannot be split further",
			filepath.Base(group.Docs[0].Path),
			megabytes(group.Size),
			processor.config.MaxSizeMB,
		)

		return GroupVerified
	}

	return GroupNeedsSplit
}

// finalize moves each surviving artifact out of the workspace to its numbered
// destination and returns the written output paths in order.
func (processor *Processor) finalize(groups []*OutputGroup) ([]string, error) {
	outputs := make([]string, 0, len(groups))

	for index, group := range groups {
		destination := partPath(processor.config.OutputPath, index+1, len(groups))

		writeErr := finalizeFile(group.FilePath, destination)
		if writeErr != nil {
			return nil, fmt.Errorf(
				"could not write output %s: %w",
				destination,
				writeErr,
			)
		}

		outputs = append(outputs, destination)
	}

	return outputs, nil
}

// summarize reports per-output sizes, the total reduction, and the
// page-conservation check: the page counts of all outputs must sum to the page
// counts of all inputs. A failed count is reported but does not retract the
// already-written outputs.
func (processor *Processor) summarize(docs []InputDocument, outputs []string) {
	var totalInput int64
	for _, doc := range docs {
		totalInput += doc.Size
	}

	var totalOutput int64

	for _, output := range outputs {
		size, sizeErr := fileSize(output)
		if sizeErr != nil {
			processor.log.Warn("Could not stat output %s: %v", output, sizeErr)

			continue
		}

		totalOutput += size
		processor.log.Info(
			"  %-40s %8.2f MB",
			filepath.Base(output),
			megabytes(size),
		)
	}

	processor.checkPageConservation(docs, outputs)

	processor.log.Success(
		"Done: %d file(s), %.2f MB in, %.2f MB out (%.0f%% reduction)",
		len(outputs),
		megabytes(totalInput),
		megabytes(totalOutput),
		reductionPercent(totalInput, totalOutput),
	)
}

// checkPageConservation verifies that no page was dropped or duplicated.
func (processor *Processor) checkPageConservation(
	docs []InputDocument,
	outputs []string,
) {
	inputPages := 0

	for _, doc := range docs {
		pages, countErr := processor.engine.PageCount(doc.Path)
		if countErr != nil {
			processor.log.Warn("Skipping page check: %v", countErr)

			return
		}

		inputPages += pages
	}

	outputPages := 0

	for _, output := range outputs {
		pages, countErr := processor.engine.PageCount(output)
		if countErr != nil {
			processor.log.Warn("Skipping page check: %v", countErr)

			return
		}

		outputPages += pages
	}

	if inputPages != outputPages {
		processor.log.Error(
			"Page count mismatch: inputs have %d pages, outputs have %d",
			inputPages,
			outputPages,
		)

		return
	}

	processor.log.Info("Page check passed: %d pages in, %d pages out", inputPages, outputPages)
}

func megabytes(size int64) float64 {
	return float64(size) / bytesPerMB
}

func reductionPercent(before, after int64) float64 {
	if before <= 0 {
		return 0
	}

	return (1 - float64(after)/float64(before)) * 100
}
