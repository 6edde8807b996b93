package diagfmt

import (
	"encoding/json"
	"io"

	"ilpatch/internal/diag"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations"`
}

type sarifLogicalLocation struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
}

// Sarif writes the bag as a SARIF v2.1.0 log. Results are keyed by the
// stable code identifiers so IDE integrations can match rules across tool
// versions.
func Sarif(w io.Writer, bag *diag.Bag, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
		}},
		Results: make([]sarifResult, 0, bag.Len()),
	}
	seenRules := make(map[string]bool)
	for _, d := range bag.Items() {
		ident := d.Code.Ident()
		if !seenRules[ident] {
			seenRules[ident] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: ident})
		}
		r := sarifResult{
			RuleID:  ident,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		if d.Subject != "" {
			r.Locations = []sarifLocation{{
				LogicalLocations: []sarifLogicalLocation{{FullyQualifiedName: d.Subject}},
			}}
		}
		run.Results = append(run.Results, r)
	}
	doc := sarifLog{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}
