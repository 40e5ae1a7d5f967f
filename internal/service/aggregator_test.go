package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glinax/internal/models"
)

func TestAggregate(t *testing.T) {
	local := models.RetrievalResult{
		Evidence: []models.QueryEvidence{
			{SourceLabel: "University of Ghana", Kind: models.SourceLocalKnowledge, Relevance: 0.98, SnippetText: "local snippet"},
		},
		Confidence: 0.98,
	}
	web := models.RetrievalResult{
		Evidence: []models.QueryEvidence{
			{SourceLabel: "Admissions Page", Kind: models.SourceWebSearch, Relevance: 0.7, SnippetText: "web snippet"},
		},
		Confidence: 0.75,
	}

	t.Run("local before web", func(t *testing.T) {
		evidence, combined, confidence := Aggregate(local, web, nil)
		require.Len(t, evidence, 2)
		assert.Equal(t, models.SourceLocalKnowledge, evidence[0].Kind)
		assert.Equal(t, models.SourceWebSearch, evidence[1].Kind)
		assert.Equal(t, "local snippet\n\nweb snippet", combined)
		assert.Equal(t, 0.98, confidence)
	})

	t.Run("confidence is the max of both sources", func(t *testing.T) {
		_, _, confidence := Aggregate(models.RetrievalResult{Confidence: 0.2}, web, nil)
		assert.Equal(t, 0.75, confidence)
	})

	t.Run("uploaded files lead the context and floor confidence", func(t *testing.T) {
		uploaded := &UploadedEvidence{
			FileNames: []string{"transcript.pdf", "cv.docx"},
			Text:      "extracted text",
		}
		evidence, combined, confidence := Aggregate(
			models.RetrievalResult{Confidence: 0.1},
			models.RetrievalResult{},
			uploaded,
		)
		require.Len(t, evidence, 1)
		assert.Equal(t, models.SourceUploadedFile, evidence[0].Kind)
		assert.Equal(t, 0.9, evidence[0].Relevance)
		assert.Equal(t, "Uploaded Files (2 files)", evidence[0].SourceLabel)
		assert.Contains(t, combined, "User uploaded 2 files: transcript.pdf, cv.docx")
		assert.Contains(t, combined, "[Document Text]\nextracted text")
		assert.Equal(t, 0.8, confidence)
	})

	t.Run("uploaded floor does not lower a higher confidence", func(t *testing.T) {
		uploaded := &UploadedEvidence{FileNames: []string{"a.pdf"}}
		_, _, confidence := Aggregate(local, models.RetrievalResult{}, uploaded)
		assert.Equal(t, 0.98, confidence)
	})

	t.Run("empty inputs", func(t *testing.T) {
		evidence, combined, confidence := Aggregate(models.RetrievalResult{}, models.RetrievalResult{}, nil)
		assert.Empty(t, evidence)
		assert.Empty(t, combined)
		assert.Zero(t, confidence)
	})
}
