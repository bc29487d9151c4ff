package textextract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	pdftotext string
	pdfErr    error
	ocrPages  []string // one image per entry, tesseract returns the entry
	calls     []call
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	switch name {
	case "pdftotext":
		if f.pdfErr != nil {
			return nil, []byte("Syntax Error"), f.pdfErr
		}
		return []byte(f.pdftotext), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := range f.ocrPages {
			if err := os.WriteFile(prefix+"-"+string(rune('1'+i))+".png", []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		base := filepath.Base(args[0])
		idx := int(base[len("page-")] - '1')
		return []byte(f.ocrPages[idx]), nil, nil
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestExtract_TextLayer(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{pdftotext: "Page un\tavec  espaces\r\nTotal à payer TTC : 1 234,56 €\fPage deux\n\f"}
	e := NewExtractorWithRunner(Config{Layout: true}, r, quietLogger())

	res, err := e.Extract(context.Background(), "/bills/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-text", res.Method)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, "Page un avec espaces\nTotal à payer TTC : 1 234,56 €", res.Pages[0])
	assert.Equal(t, "Page deux\n", res.Pages[1])
	assert.Equal(t, res.Pages[0]+"\n"+res.Pages[1], res.Text())

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "/bills/a.pdf", "-"}, r.calls[0].args)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{}
	e := NewExtractorWithRunner(Config{}, r, quietLogger())

	_, err := e.Extract(context.Background(), "/bills/a.docx")
	require.Error(t, err)
	assert.Empty(t, r.calls)
}

func TestExtract_CommandFailure(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{pdfErr: errors.New("exit status 1")}
	e := NewExtractorWithRunner(Config{}, r, quietLogger())

	res, err := e.Extract(context.Background(), "/bills/broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
	assert.Equal(t, []string{"Syntax Error"}, res.Warnings)
}

func TestExtract_OCRFallback(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{
		pdftotext: "  \f",
		ocrPages:  []string{"Consommations réelles\n-----\n", "Total à payer TTC : 45,67 €"},
	}
	e := NewExtractorWithRunner(Config{OCRFallback: true, MinTextChars: 10, TessdataDir: "/td"}, r, quietLogger())

	res, err := e.Extract(context.Background(), "/bills/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, "fra", res.Language)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, "Consommations réelles\n", res.Pages[0])
	assert.Equal(t, "Total à payer TTC : 45,67 €", res.Pages[1])

	var names []string
	for _, c := range r.calls {
		names = append(names, c.name)
	}
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, names)
	assert.Equal(t, "300", r.calls[1].args[1])
	assert.Contains(t, strings.Join(r.calls[2].args, " "), "-l fra --tessdata-dir /td")
}

func TestExtract_NoFallbackWhenDisabled(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{pdftotext: ""}
	e := NewExtractorWithRunner(Config{MinTextChars: 10}, r, quietLogger())

	res, err := e.Extract(context.Background(), "/bills/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Len(t, r.calls, 1)
}

func TestSplitPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"one", []string{"one"}},
		{"one\ftwo\f", []string{"one", "two"}},
		{"one\f\ftwo", []string{"one", "", "two"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitPages(tt.in), "%q", tt.in)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	decomposed := "re\u0301elles"
	assert.Equal(t, "réelles", Normalize(decomposed))
	assert.Equal(t, "a b\nc", Normalize("a   b  \r\nc\t"))
	assert.Equal(t, "", Normalize(""))
}
