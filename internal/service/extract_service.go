package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// Extracted text per file is capped so one large document cannot crowd the
// rest of the context out of the model window.
const maxExtractedChars = 15000

// ContentCategory classifies an uploaded file by how its text is recovered.
type ContentCategory int

const (
	CategoryGeneric ContentCategory = iota
	CategoryPlainText
	CategoryPDF
	CategoryImage
	CategoryWordDocument
	CategorySpreadsheet
)

// ExtractService recovers text from uploaded files: PDF text layers, OCR on
// images, DOCX XML, plain text. Extraction problems are reported inside the
// returned text as notices, never as errors, so one unreadable file cannot
// fail a request.
type ExtractService struct {
	logger *zap.Logger
}

func NewExtractService(logger *zap.Logger) *ExtractService {
	return &ExtractService{logger: logger}
}

// Categorize maps a content type and filename to an extraction strategy.
// The filename extension breaks ties when the content type is generic.
func Categorize(contentType, filename string) ContentCategory {
	ct := strings.ToLower(contentType)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case strings.Contains(ct, "pdf") || ext == ".pdf":
		return CategoryPDF
	case strings.HasPrefix(ct, "image/") || ext == ".png" || ext == ".jpg" || ext == ".jpeg" || ext == ".bmp" || ext == ".tiff":
		return CategoryImage
	case strings.Contains(ct, "wordprocessingml") || ext == ".docx":
		return CategoryWordDocument
	case strings.Contains(ct, "msword") || ext == ".doc":
		return CategoryWordDocument
	case strings.Contains(ct, "spreadsheetml") || strings.Contains(ct, "excel") || ext == ".xlsx" || ext == ".xls" || ext == ".csv":
		return CategorySpreadsheet
	case strings.HasPrefix(ct, "text/") || ext == ".txt" || ext == ".md":
		return CategoryPlainText
	default:
		return CategoryGeneric
	}
}

// Extract returns the text recovered from one file, prefixed with the file
// name. The result is always non-empty.
func (s *ExtractService) Extract(filename, contentType string, data []byte) string {
	var text string

	switch Categorize(contentType, filename) {
	case CategoryPDF:
		text = s.extractPDF(filename, data)
	case CategoryImage:
		text = s.extractImage(filename, data)
	case CategoryWordDocument:
		text = s.extractWord(filename, data)
	case CategorySpreadsheet:
		text = fmt.Sprintf("[Spreadsheet %s uploaded; cell extraction is not supported, please describe its contents]", filename)
	case CategoryPlainText:
		text = string(data)
	default:
		text = s.extractGeneric(filename, data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = fmt.Sprintf("[No readable text found in %s]", filename)
	}
	if len(text) > maxExtractedChars {
		text = text[:maxExtractedChars] + "\n[... truncated]"
	}
	return fmt.Sprintf("=== %s ===\n%s", filename, text)
}

// ExtractAll processes a batch of files and joins the per-file blocks.
func (s *ExtractService) ExtractAll(files []UploadedFile) string {
	blocks := make([]string, 0, len(files))
	for _, f := range files {
		blocks = append(blocks, s.Extract(f.Name, f.ContentType, f.Data))
	}
	return strings.Join(blocks, "\n\n")
}

// UploadedFile is one file from a multipart request, fully read into memory.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (s *ExtractService) extractPDF(filename string, data []byte) string {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		s.logger.Warn("PDF open failed", zap.String("file", filename), zap.Error(err))
		return fmt.Sprintf("[Could not read PDF %s: the file may be corrupted or password protected]", filename)
	}
	defer doc.Close()

	var b strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		pageText, err := doc.Text(page)
		if err != nil {
			s.logger.Warn("PDF page extraction failed",
				zap.String("file", filename),
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
		if b.Len() > maxExtractedChars {
			break
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return fmt.Sprintf("[PDF %s contains no text layer; it may be a scanned document]", filename)
	}
	return b.String()
}

func (s *ExtractService) extractImage(filename string, data []byte) string {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		s.logger.Warn("OCR image load failed", zap.String("file", filename), zap.Error(err))
		return fmt.Sprintf("[Could not process image %s for text recognition]", filename)
	}

	text, err := client.Text()
	if err != nil {
		s.logger.Warn("OCR failed", zap.String("file", filename), zap.Error(err))
		return fmt.Sprintf("[Text recognition failed for image %s]", filename)
	}
	return text
}

func (s *ExtractService) extractWord(filename string, data []byte) string {
	if strings.EqualFold(filepath.Ext(filename), ".doc") {
		return fmt.Sprintf("[%s is a legacy .doc file; please convert it to .docx or PDF and upload again]", filename)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.logger.Warn("DOCX open failed", zap.String("file", filename), zap.Error(err))
		return fmt.Sprintf("[Could not read document %s: the file may be corrupted]", filename)
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			break
		}
		text := readDocumentXML(rc)
		rc.Close()
		return text
	}
	return fmt.Sprintf("[Document %s has an unexpected structure and could not be read]", filename)
}

// readDocumentXML walks a DOCX document part collecting the text runs.
// Paragraph boundaries become newlines.
func readDocumentXML(r io.Reader) string {
	decoder := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inText bool
	)
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(element)
			}
		}
		if b.Len() > maxExtractedChars {
			break
		}
	}
	return b.String()
}

func (s *ExtractService) extractGeneric(filename string, data []byte) string {
	if isMostlyText(data) {
		return string(data)
	}
	return fmt.Sprintf("[File %s has an unsupported format; please upload PDF, DOCX, image, or text files]", filename)
}

// isMostlyText reports whether a byte sample looks like readable text rather
// than a binary blob.
func isMostlyText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	printable := 0
	for _, c := range sample {
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c < 0x7f) || c >= 0x80 {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.9
}
