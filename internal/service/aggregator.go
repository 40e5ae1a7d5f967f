package service

import (
	"strconv"
	"strings"

	"glinax/internal/models"
)

// Uploaded-document text is treated as strong signal: its evidence item
// carries this relevance, and its presence floors the combined confidence.
const (
	uploadedFileRelevance      = 0.9
	uploadedFileConfidenceFloor = 0.8
)

// Aggregate merges local, web, and uploaded-document evidence into one
// ordered context. Order matters: the synthesizer gives earlier context
// higher implicit weight when a downstream model truncates its input, so
// uploaded files come first, then local records, then web snippets.
// Nothing is dropped here; any size limit belongs to the consumer.
func Aggregate(local, web models.RetrievalResult, uploaded *UploadedEvidence) ([]models.QueryEvidence, string, float64) {
	var (
		evidence     []models.QueryEvidence
		contextParts []string
	)

	if uploaded != nil {
		evidence = append(evidence, uploaded.Evidence())
		contextParts = append(contextParts, uploaded.Notice())
	}

	for _, item := range local.Evidence {
		evidence = append(evidence, item)
		contextParts = append(contextParts, item.SnippetText)
	}
	for _, item := range web.Evidence {
		evidence = append(evidence, item)
		contextParts = append(contextParts, item.SnippetText)
	}

	confidence := local.Confidence
	if web.Confidence > confidence {
		confidence = web.Confidence
	}
	if uploaded != nil && confidence < uploadedFileConfidenceFloor {
		confidence = uploadedFileConfidenceFloor
	}

	return evidence, strings.Join(contextParts, "\n\n"), confidence
}

// UploadedEvidence describes the text extracted from one batch of uploaded
// files within a single request.
type UploadedEvidence struct {
	FileNames []string
	Text      string
}

func (u *UploadedEvidence) Evidence() models.QueryEvidence {
	label := "Uploaded Files"
	if n := len(u.FileNames); n > 0 {
		label = "Uploaded Files (" + strconv.Itoa(n) + " files)"
	}
	return models.QueryEvidence{
		SourceLabel: label,
		Kind:        models.SourceUploadedFile,
		Relevance:   uploadedFileRelevance,
		SnippetText: u.Notice(),
	}
}

// Notice renders the context block announcing the uploaded files and their
// extracted text.
func (u *UploadedEvidence) Notice() string {
	var b strings.Builder
	b.WriteString("User uploaded ")
	b.WriteString(strconv.Itoa(len(u.FileNames)))
	b.WriteString(" files: ")
	b.WriteString(strings.Join(u.FileNames, ", "))
	if text := strings.TrimSpace(u.Text); text != "" {
		b.WriteString("\n\n[Document Text]\n")
		b.WriteString(text)
	}
	return b.String()
}
