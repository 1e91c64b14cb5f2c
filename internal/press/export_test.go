package press

import "context"

// Exported test-only accessors for unexported functions and fields.
// This file is compiled only during tests and does not affect the public API.

// PDFEngine exposes the engine interface so external-package tests can inject
// a fake implementation.
type PDFEngine = pdfEngine

// PlanGroupsForTest exposes planGroups for tests in the external package.
func PlanGroupsForTest(docs []InputDocument, maxBytes int64) []*OutputGroup {
	return planGroups(docs, maxBytes)
}

// ResplitGroupForTest exposes resplitGroup for tests in the external package.
func ResplitGroupForTest(group *OutputGroup, maxBytes int64) []*OutputGroup {
	return resplitGroup(group, maxBytes)
}

// PartPathForTest exposes partPath for tests in the external package.
func PartPathForTest(outputPath string, index, total int) string {
	return partPath(outputPath, index, total)
}

// BuildGhostscriptArgsForTest exposes buildGhostscriptArgs for tests in the
// external package.
func BuildGhostscriptArgsForTest(
	request CompressionRequest,
	inPath, outPath string,
) []string {
	return buildGhostscriptArgs(request, inPath, outPath)
}

// ConfigForTest returns a copy of the processor configuration for assertions.
func (processor *Processor) ConfigForTest() Options { return processor.config }

// ValidateConfigForTest exposes validateConfig.
func (processor *Processor) ValidateConfigForTest() error {
	return processor.validateConfig()
}

// SetExecutorForTest injects a fake command executor.
func (processor *Processor) SetExecutorForTest(exec CommandExecutor) {
	processor.executor = exec
}

// SetEngineForTest injects a fake PDF engine.
func (processor *Processor) SetEngineForTest(engine PDFEngine) {
	processor.engine = engine
}

// SetCompressionForTest fixes the compression request and resolved binary so
// the adapter can be exercised without running Process.
func (processor *Processor) SetCompressionForTest(
	request CompressionRequest,
	gsBinary string,
) {
	processor.request = request
	processor.gsBinary = gsBinary
}

// CompressFileForTest exposes the compressor adapter.
func (processor *Processor) CompressFileForTest(
	ctx context.Context,
	inPath, outPath string,
) CompressionResult {
	return processor.compressFile(ctx, inPath, outPath)
}

// VerifyGroupSizeForTest exposes verifyGroupSize.
func (processor *Processor) VerifyGroupSizeForTest(group *OutputGroup) GroupState {
	return processor.verifyGroupSize(group)
}

// LocateGhostscriptForTest exposes locateGhostscript.
func (processor *Processor) LocateGhostscriptForTest(ctx context.Context) string {
	return processor.locateGhostscript(ctx)
}
