package service

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        ContentCategory
	}{
		{"application/pdf", "transcript.pdf", CategoryPDF},
		{"application/octet-stream", "transcript.pdf", CategoryPDF},
		{"image/png", "certificate.png", CategoryImage},
		{"", "photo.jpeg", CategoryImage},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "cv.docx", CategoryWordDocument},
		{"application/msword", "cv.doc", CategoryWordDocument},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "grades.xlsx", CategorySpreadsheet},
		{"text/plain", "notes.txt", CategoryPlainText},
		{"", "notes.md", CategoryPlainText},
		{"application/octet-stream", "data.bin", CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.contentType, tt.filename))
		})
	}
}

func TestExtractPlainText(t *testing.T) {
	svc := NewExtractService(zap.NewNop())

	text := svc.Extract("notes.txt", "text/plain", []byte("I completed WASSCE in 2024"))
	assert.Contains(t, text, "=== notes.txt ===")
	assert.Contains(t, text, "I completed WASSCE in 2024")
}

func TestExtractDOCX(t *testing.T) {
	svc := NewExtractService(zap.NewNop())

	t.Run("valid document", func(t *testing.T) {
		data := buildDOCX(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>University of Ghana</w:t></w:r></w:p>
    <w:p><w:r><w:t>BSc Computer Science</w:t></w:r></w:p>
  </w:body>
</w:document>`)

		text := svc.Extract("cv.docx", "", data)
		assert.Contains(t, text, "University of Ghana")
		assert.Contains(t, text, "BSc Computer Science")
	})

	t.Run("corrupted archive", func(t *testing.T) {
		text := svc.Extract("cv.docx", "", []byte("not a zip"))
		assert.Contains(t, text, "corrupted")
	})

	t.Run("legacy doc is rejected with a hint", func(t *testing.T) {
		text := svc.Extract("cv.doc", "application/msword", []byte("old format"))
		assert.Contains(t, text, "legacy .doc")
	})
}

func TestExtractFailureNotices(t *testing.T) {
	svc := NewExtractService(zap.NewNop())

	t.Run("corrupted pdf", func(t *testing.T) {
		text := svc.Extract("broken.pdf", "application/pdf", []byte("not a pdf"))
		assert.Contains(t, text, "broken.pdf")
		// Notice, not an empty block.
		assert.NotEqual(t, "=== broken.pdf ===\n", text)
	})

	t.Run("binary blob", func(t *testing.T) {
		text := svc.Extract("data.bin", "application/octet-stream", []byte{0x00, 0x01, 0x02, 0x03})
		assert.Contains(t, text, "unsupported format")
	})

	t.Run("empty file", func(t *testing.T) {
		text := svc.Extract("empty.txt", "text/plain", nil)
		assert.Contains(t, text, "No readable text")
	})
}

func TestExtractTruncation(t *testing.T) {
	svc := NewExtractService(zap.NewNop())

	text := svc.Extract("big.txt", "text/plain", []byte(strings.Repeat("a", maxExtractedChars+500)))
	assert.Contains(t, text, "[... truncated]")
	assert.Less(t, len(text), maxExtractedChars+200)
}

func TestExtractAll(t *testing.T) {
	svc := NewExtractService(zap.NewNop())

	combined := svc.ExtractAll([]UploadedFile{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("first")},
		{Name: "b.txt", ContentType: "text/plain", Data: []byte("second")},
	})
	assert.Contains(t, combined, "=== a.txt ===\nfirst")
	assert.Contains(t, combined, "=== b.txt ===\nsecond")
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}
