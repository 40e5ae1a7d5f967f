package models

import (
	"encoding/json"
)

// KnowledgeRecord is one curated entry describing a single institution.
// Records are loaded once at startup and never mutated afterwards.
//
// The source data is not uniform: the flagship institutions carry a full
// program map with per-program requirements and fees, while smaller entries
// hold plain lists and free-text fields. The variant sub-structures below
// absorb both shapes so the scorer never has to branch on a record's origin.
type KnowledgeRecord struct {
	Name         string         `json:"name"`
	Aliases      []string       `json:"aliases,omitempty"`
	Location     string         `json:"location,omitempty"`
	Established  string         `json:"established,omitempty"`
	Motto        string         `json:"motto,omitempty"`
	Website      string         `json:"website,omitempty"`
	Programs     ProgramCatalog `json:"programs,omitempty"`
	Admission    Admission      `json:"admission,omitempty"`
	Contact      Contact        `json:"contact,omitempty"`
	Fees         FeeSchedule    `json:"fees,omitempty"`
	Scholarships Scholarships   `json:"scholarships,omitempty"`
}

// Program is a fully described program offering.
type Program struct {
	Duration        string `json:"duration,omitempty"`
	Requirements    string `json:"requirements,omitempty"`
	Fees            string `json:"fees,omitempty"`
	ApplicationFee  string `json:"application_fee,omitempty"`
	Deadline        string `json:"deadline,omitempty"`
	EntranceExam    string `json:"entrance_exam,omitempty"`
	CareerProspects string `json:"career_prospects,omitempty"`
	StartingSalary  string `json:"starting_salary,omitempty"`
	JobMarket       string `json:"job_market,omitempty"`
}

// ProgramCatalog is either a detailed program map or a bare list of program
// names, depending on how rich the source entry is.
type ProgramCatalog struct {
	Detailed map[string]Program `json:"-"`
	Names    []string           `json:"-"`
}

func (p *ProgramCatalog) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		p.Names = names
		return nil
	}
	return json.Unmarshal(data, &p.Detailed)
}

func (p ProgramCatalog) MarshalJSON() ([]byte, error) {
	if p.Detailed != nil {
		return json.Marshal(p.Detailed)
	}
	return json.Marshal(p.Names)
}

// IsEmpty reports whether the catalog holds no programs in either shape.
func (p ProgramCatalog) IsEmpty() bool {
	return len(p.Detailed) == 0 && len(p.Names) == 0
}

// Admission holds admission requirements, structured or free-text.
type Admission struct {
	General      string `json:"general,omitempty"`
	Deadline     string `json:"application_deadline,omitempty"`
	Fee          string `json:"application_fee,omitempty"`
	EntranceExam string `json:"entrance_exam,omitempty"`
	OnlinePortal string `json:"online_portal,omitempty"`
}

func (a *Admission) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		a.General = text
		return nil
	}
	type plain Admission
	return json.Unmarshal(data, (*plain)(a))
}

// Contact holds contact details; bare-string entries carry a phone number.
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c *Contact) UnmarshalJSON(data []byte) error {
	var phone string
	if err := json.Unmarshal(data, &phone); err == nil {
		c.Phone = phone
		return nil
	}
	type plain Contact
	return json.Unmarshal(data, (*plain)(c))
}

// FeeSchedule holds the fee breakdown, or a one-line summary for entries
// that only publish a range.
type FeeSchedule struct {
	Summary       string `json:"summary,omitempty"`
	Ghanaian      string `json:"ghanaian_students,omitempty"`
	International string `json:"international_students,omitempty"`
	Residential   string `json:"residential_fees,omitempty"`
	Other         string `json:"other_fees,omitempty"`
	Note          string `json:"note,omitempty"`
}

func (f *FeeSchedule) UnmarshalJSON(data []byte) error {
	var summary string
	if err := json.Unmarshal(data, &summary); err == nil {
		f.Summary = summary
		return nil
	}
	type plain FeeSchedule
	return json.Unmarshal(data, (*plain)(f))
}

// Scholarships is a named map or a bare list of scheme names.
type Scholarships struct {
	ByName map[string]string `json:"-"`
	Names  []string          `json:"-"`
}

func (s *Scholarships) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		s.Names = names
		return nil
	}
	return json.Unmarshal(data, &s.ByName)
}

func (s Scholarships) MarshalJSON() ([]byte, error) {
	if s.ByName != nil {
		return json.Marshal(s.ByName)
	}
	return json.Marshal(s.Names)
}
