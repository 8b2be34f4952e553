package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority accepts both quoted and bare JSON values since models emit either.
type Priority string

func (p *Priority) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Priority(s)
		return nil
	}
	if string(data) == "null" {
		*p = ""
		return nil
	}
	*p = Priority(data)
	return nil
}

type Requirement struct {
	Priority        Priority      `json:"priority"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	SubRequirements []Requirement `json:"sub_requirements,omitempty"`
}

func ParseRequirements(raw string) ([]Requirement, error) {
	var reqs []Requirement
	if err := json.Unmarshal([]byte(raw), &reqs); err != nil {
		return nil, fmt.Errorf("parse requirements: %w", err)
	}
	return reqs, nil
}

// RequirementsMarkdown renders a numbered outline, nesting sub requirements
// one heading level deeper.
func RequirementsMarkdown(reqs []Requirement) string {
	var b strings.Builder
	b.WriteString("# Requirements\n")
	writeRequirements(&b, reqs, "", 2)
	return b.String()
}

func writeRequirements(b *strings.Builder, reqs []Requirement, prefix string, level int) {
	heading := strings.Repeat("#", min(level, 6))
	for i, r := range reqs {
		number := fmt.Sprintf("%s%d", prefix, i+1)
		fmt.Fprintf(b, "\n%s %s %s\n\n", heading, number, r.Title)
		if r.Priority != "" {
			fmt.Fprintf(b, "- Priority: %s\n\n", r.Priority)
		}
		if r.Description != "" {
			b.WriteString(r.Description)
			b.WriteString("\n")
		}
		writeRequirements(b, r.SubRequirements, number+".", level+1)
	}
}

func AnalysisDocument(flow string, reqs []Requirement) string {
	return fmt.Sprintf("# Business flow\n\n```mermaid\n%s\n```\n\n%s", flow, RequirementsMarkdown(reqs))
}

const TimeLayout = "2006-01-02 15:04:05"

func ChangeLogDocument(at time.Time, summary string, reqs []Requirement) string {
	return fmt.Sprintf("# Change log\n\n## %s\n\n%s\n\n%s", at.Format(TimeLayout), summary, RequirementsMarkdown(reqs))
}
