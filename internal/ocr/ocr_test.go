package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout []byte
	stderr string
	err    error

	name string
	args []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []string, error) {
	r.name = name
	r.args = args
	return r.stdout, stderrWarnings(r.stderr), r.err
}

func newTestExtractor(cfg Config, runner Runner) *Extractor {
	e := NewExtractor(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = runner
	return e
}

func TestRecognize(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("HAPPY GOAT COFFEE\nETHIOPIA\n")}
	e := newTestExtractor(Config{}, runner)

	res, err := e.Recognize(context.Background(), "bag-front.jpg")
	require.NoError(t, err)
	assert.Equal(t, "HAPPY GOAT COFFEE\nETHIOPIA\n", res.Text)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "tesseract", runner.name)
	assert.Equal(t, []string{"bag-front.jpg", "stdout", "-l", "eng"}, runner.args)
}

func TestRecognizeFlags(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("x")}
	e := newTestExtractor(Config{
		Tesseract:     "/opt/tesseract",
		TesseractLang: "eng+fra",
		TessdataDir:   "/opt/tessdata",
		PSM:           6,
		OEM:           1,
	}, runner)

	_, err := e.Recognize(context.Background(), "label.png")
	require.NoError(t, err)
	assert.Equal(t, "/opt/tesseract", runner.name)
	assert.Equal(t, []string{
		"label.png", "stdout", "-l", "eng+fra",
		"--psm", "6", "--oem", "1", "--tessdata-dir", "/opt/tessdata",
	}, runner.args)
}

func TestRecognizeRejectsUnsupportedExtension(t *testing.T) {
	e := newTestExtractor(Config{}, &fakeRunner{})
	_, err := e.Recognize(context.Background(), "label.pdf")
	assert.ErrorContains(t, err, "unsupported extension")
}

func TestRecognizeCommandFailure(t *testing.T) {
	runner := &fakeRunner{stderr: "no such file\n", err: errors.New("exit status 1")}
	e := newTestExtractor(Config{}, runner)

	res, err := e.Recognize(context.Background(), "missing.jpg")
	assert.ErrorContains(t, err, "tesseract")
	assert.Contains(t, res.Warnings, "no such file")
}

func TestRecognizeSurfacesStderrWarningsOnSuccess(t *testing.T) {
	runner := &fakeRunner{
		stdout: []byte("ETHIOPIA\n"),
		stderr: "Estimating resolution as 300\n\nDetected 12 diacritics\n",
	}
	e := newTestExtractor(Config{}, runner)

	res, err := e.Recognize(context.Background(), "bag.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"Estimating resolution as 300", "Detected 12 diacritics"}, res.Warnings)
}

func TestRecognizeStripsBoxNoise(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("ETHIOPIA\n____\nWASHED\n")}
	e := newTestExtractor(Config{}, runner)

	res, err := e.Recognize(context.Background(), "bag.jpg")
	require.NoError(t, err)
	assert.NotContains(t, res.Text, "____")
	assert.Contains(t, res.Text, "ETHIOPIA")
	assert.Contains(t, res.Text, "WASHED")
}

func TestStderrWarnings(t *testing.T) {
	assert.Nil(t, stderrWarnings(""))
	assert.Nil(t, stderrWarnings("  \n\n "))
	assert.Equal(t, []string{"one", "two"}, stderrWarnings(" one \n\ntwo\n"))
}
