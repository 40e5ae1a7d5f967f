package service

import (
	"fmt"
	"strings"

	"glinax/internal/knowledge"
	"glinax/internal/models"

	"go.uber.org/zap"
)

// AnswerService is the deterministic synthesis strategy: a templated answer
// built from the aggregated evidence and the knowledge store. It has no
// external dependencies and never returns an empty answer; it is the floor
// the whole pipeline degrades onto.
type AnswerService struct {
	store  *knowledge.Store
	logger *zap.Logger
}

func NewAnswerService(store *knowledge.Store, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		store:  store,
		logger: logger,
	}
}

// Synthesize renders a templated answer. Web evidence takes precedence as a
// ranked source list; otherwise the answer branches on the query's keyword
// category and fills a fixed structure from the knowledge store. The error
// return satisfies the synthesizer contract and is always nil here.
func (s *AnswerService) Synthesize(query string, evidence []models.QueryEvidence) (string, error) {
	if answer := s.renderWebResults(evidence); answer != "" {
		return answer, nil
	}

	queryLower := strings.ToLower(query)
	switch {
	case containsAny(queryLower, "computer science", "computer", "programming", "software"):
		return s.renderComputingPrograms(), nil
	case containsAny(queryLower, "fee", "cost", "money", "pay", "tuition"):
		return s.renderFees(), nil
	case containsAny(queryLower, "admission", "apply", "requirement", "entry"):
		return s.renderAdmissions(), nil
	default:
		return s.renderOverview(), nil
	}
}

// renderWebResults builds a ranked bullet list from web evidence, official
// domains first, capped at 5 items. Returns "" when no web evidence exists.
func (s *AnswerService) renderWebResults(evidence []models.QueryEvidence) string {
	var official, other []models.QueryEvidence
	for _, item := range evidence {
		switch item.Kind {
		case models.SourceOfficialWebsite:
			official = append(official, item)
		case models.SourceWebSearch:
			other = append(other, item)
		}
	}
	if len(official) == 0 && len(other) == 0 {
		return ""
	}

	prioritized := official
	if len(prioritized) == 0 {
		prioritized = other
	}
	if len(prioritized) > 5 {
		prioritized = prioritized[:5]
	}

	var b strings.Builder
	b.WriteString("Here's what I found from recent web results:\n\n")
	for _, item := range prioritized {
		snippet := strings.TrimPrefix(item.SnippetText, "Web Result: ")
		b.WriteString(fmt.Sprintf("- %s: %s", orDefault(item.SourceLabel, "Web Result"), snippet))
		if item.URL != "" {
			b.WriteString(fmt.Sprintf(" (Source: %s)", item.URL))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nIf you want, I can fetch more details or verify this from additional sources.")
	return b.String()
}

func (s *AnswerService) renderComputingPrograms() string {
	var b strings.Builder
	b.WriteString("COMPUTER SCIENCE PROGRAMS IN GHANA\n\n")

	if entry, ok := s.store.Get("University of Ghana"); ok {
		if program, ok := entry.Record.Programs.Detailed["Computer Science"]; ok {
			b.WriteString(s.renderProgram(entry.Record, "UNIVERSITY OF GHANA - COMPUTER SCIENCE", program))
		}
	}
	if entry, ok := s.store.Get("Kwame Nkrumah University of Science and Technology"); ok {
		if program, ok := entry.Record.Programs.Detailed["Computer Engineering"]; ok {
			b.WriteString(s.renderProgram(entry.Record, "KNUST - COMPUTER ENGINEERING", program))
		}
	}

	b.WriteString("RECOMMENDATION: Both universities offer excellent tech programs. UG focuses more on computer science theory, while KNUST emphasizes engineering applications.")
	return b.String()
}

func (s *AnswerService) renderProgram(record *models.KnowledgeRecord, heading string, program models.Program) string {
	return fmt.Sprintf(`%s

Duration: %s
Requirements: %s
Tuition: %s
Total Cost: %s + Accommodation %s
Career Options: %s

Application Info:
- Phone: %s
- Email: %s
- Deadline: %s
- Fee: %s

`,
		heading,
		orDefault(program.Duration, "4 years"),
		orDefault(program.Requirements, "WASSCE Credits in Math, Physics, English"),
		orDefault(program.Fees, "Contact university"),
		orDefault(record.Fees.Ghanaian, record.Fees.Summary),
		orDefault(record.Fees.Residential, "GHS 2,500 - 5,000"),
		orDefault(program.CareerProspects, "See university website"),
		orDefault(record.Contact.Phone, "See university website"),
		orDefault(record.Contact.Email, "See university website"),
		orDefault(record.Admission.Deadline, "Check university website"),
		orDefault(record.Admission.Fee, "Contact university"),
	)
}

func (s *AnswerService) renderFees() string {
	var b strings.Builder
	b.WriteString("UNIVERSITY FEES INFORMATION\n\n")

	for _, entry := range s.store.Entries() {
		record := entry.Record
		b.WriteString("## " + record.Name + "\n")
		b.WriteString(fmt.Sprintf(`
**Ghanaian Students:** %s
**International Students:** %s
**Accommodation:** %s
**Other Fees:** %s

**Application Fee:** %s
**Deadline:** %s

Contact: %s
`,
			orDefault(record.Fees.Ghanaian, orDefault(record.Fees.Summary, "Contact university")),
			orDefault(record.Fees.International, "Contact university"),
			orDefault(record.Fees.Residential, "GHS 2,500 - 5,000"),
			orDefault(record.Fees.Other, "Registration and library fees apply"),
			orDefault(record.Admission.Fee, "Contact university"),
			orDefault(record.Admission.Deadline, "Check university website"),
			orDefault(record.Contact.Phone, "See university website"),
		))
	}

	if s.store.Len() == 0 {
		b.WriteString(`
**General Fee Ranges for Ghanaian Public Universities:**
- Arts/Business Programs: GHS 6,000 - 8,000 per year
- Science Programs: GHS 8,000 - 12,000 per year
- Engineering: GHS 10,000 - 15,000 per year
- Medicine: GHS 15,000 - 18,000 per year
- Accommodation: GHS 2,500 - 5,000 per year
`)
	}

	b.WriteString("\n**Note:** Fees change annually. Always confirm current rates with the university admissions office.")
	return b.String()
}

func (s *AnswerService) renderAdmissions() string {
	var b strings.Builder
	b.WriteString("UNIVERSITY ADMISSION REQUIREMENTS\n\n")

	for _, entry := range s.store.Entries() {
		record := entry.Record
		b.WriteString("## " + record.Name + "\n")
		b.WriteString(fmt.Sprintf(`
**General Requirements:** %s
**Application Deadline:** %s
**Application Fee:** %s
**Entrance Exam:** %s

**How to Apply:**
1. Visit: %s
2. Call: %s
3. Email: %s
`,
			orDefault(record.Admission.General, "WASSCE with 6 credits including English & Math"),
			orDefault(record.Admission.Deadline, "Check university website"),
			orDefault(record.Admission.Fee, "GHS 200-300"),
			orDefault(record.Admission.EntranceExam, "May be required for competitive programs"),
			orDefault(record.Website, "university website"),
			orDefault(record.Contact.Phone, "university admissions"),
			orDefault(record.Contact.Email, "admissions office"),
		))
	}

	if s.store.Len() == 0 {
		b.WriteString(`
**Standard Requirements for Ghanaian Universities:**
- WASSCE certificate with minimum 6 credits (A1-C6)
- English Language and Mathematics are mandatory
- Relevant science subjects for science/engineering programs
- Good aggregate scores (usually 6-36 depending on program)
`)
	}

	b.WriteString("\n**Pro Tip:** Start your applications early and apply to multiple universities to increase your chances!")
	return b.String()
}

func (s *AnswerService) renderOverview() string {
	var b strings.Builder
	b.WriteString("GHANAIAN UNIVERSITIES INFORMATION\n\n")

	for _, entry := range s.store.Entries() {
		record := entry.Record
		b.WriteString(fmt.Sprintf(`## %s

**Established:** %s
**Location:** %s
**Motto:** %s

**Contact Information:**
Phone: %s
Email: %s
Website: %s

`,
			record.Name,
			orDefault(record.Established, "See website"),
			orDefault(record.Location, "Ghana"),
			orDefault(record.Motto, "Excellence in education"),
			orDefault(record.Contact.Phone, "Check website"),
			orDefault(record.Contact.Email, "See official website"),
			orDefault(record.Website, "Official website"),
		))
	}

	b.WriteString(`
## What I Can Help You With:

- **Program Information** - Ask about specific courses
- **Fees & Costs** - Current tuition and accommodation fees
- **Admission Requirements** - Entry requirements and deadlines
- **Scholarships** - Available financial aid options
- **Contact Details** - How to reach university offices
- **Application Deadlines** - Important dates to remember

**Popular Questions:**
- "What are the fees for Computer Science at UG?"
- "How do I apply to KNUST Engineering?"
- "What scholarships are available at UCC?"

Feel free to ask specific questions about any Ghanaian university!
`)
	return b.String()
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
