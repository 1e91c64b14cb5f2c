package press_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinhead001/sheetpress/internal/press"
)

func newBareProcessor(t *testing.T) *press.Processor {
	t.Helper()

	return press.NewProcessor(&press.Options{
		ProgressBarOutput: nil,
		Inputs:            []string{"in"},
		OutputPath:        "out.pdf",
		Quality:           "",
		DPI:               0,
		NoCompress:        false,
		MaxSizeMB:         0,
	}, newTestLogger(t))
}

func TestCollectInputs(t *testing.T) {
	t.Parallel()

	t.Run("Directory scan is lexicographic and case-insensitive", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sheet_02.pdf"), []byte("bb"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sheet_01.PDF"), []byte("a"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o750))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "nested", "sheet_00.pdf"),
			[]byte("z"),
			0o600,
		))

		docs, err := newBareProcessor(t).CollectInputs([]string{dir})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, filepath.Join(dir, "sheet_01.PDF"), docs[0].Path)
		assert.Equal(t, int64(1), docs[0].Size)
		assert.Equal(t, filepath.Join(dir, "sheet_02.pdf"), docs[1].Path)
		assert.Equal(t, int64(2), docs[1].Size)
	})

	t.Run("Mixed file and directory arguments keep argument order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "z.pdf"), []byte("z"), 0o600))

		single := filepath.Join(t.TempDir(), "cover.pdf")
		require.NoError(t, os.WriteFile(single, []byte("c"), 0o600))

		docs, err := newBareProcessor(t).CollectInputs([]string{single, dir})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, single, docs[0].Path)
		assert.Equal(t, filepath.Join(dir, "z.pdf"), docs[1].Path)
	})

	t.Run("Non-PDF file arguments are skipped", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		keep := filepath.Join(dir, "a.pdf")
		skip := filepath.Join(dir, "a.dwg")
		require.NoError(t, os.WriteFile(keep, []byte("a"), 0o600))
		require.NoError(t, os.WriteFile(skip, []byte("d"), 0o600))

		docs, err := newBareProcessor(t).CollectInputs([]string{skip, keep})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, keep, docs[0].Path)
	})

	t.Run("Missing input is an error", func(t *testing.T) {
		t.Parallel()

		_, err := newBareProcessor(t).CollectInputs([]string{"/does/not/exist.pdf"})
		require.Error(t, err)
	})

	t.Run("No PDFs anywhere is ErrNoInputPDFs", func(t *testing.T) {
		t.Parallel()

		_, err := newBareProcessor(t).CollectInputs([]string{t.TempDir()})
		require.ErrorIs(t, err, press.ErrNoInputPDFs)
	})
}

func TestPartPath(t *testing.T) {
	t.Parallel()

	t.Run("Single group keeps the configured path", func(t *testing.T) {
		t.Parallel()

		assert.Equal(
			t,
			"/out/combined.pdf",
			press.PartPathForTest("/out/combined.pdf", 1, 1),
		)
	})

	t.Run("Multiple groups are numbered from one", func(t *testing.T) {
		t.Parallel()

		assert.Equal(
			t,
			"/out/combined_part1.pdf",
			press.PartPathForTest("/out/combined.pdf", 1, 3),
		)
		assert.Equal(
			t,
			"/out/combined_part3.pdf",
			press.PartPathForTest("/out/combined.pdf", 3, 3),
		)
	})
}
