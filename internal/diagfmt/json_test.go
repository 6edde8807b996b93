package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ilpatch/internal/diag"
)

func TestJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag()); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Errors != 1 || out.Warnings != 1 {
		t.Fatalf("tally = %d/%d, want 1/1", out.Errors, out.Warnings)
	}
	if len(out.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %d, want 2", len(out.Diagnostics))
	}
	first := out.Diagnostics[0]
	if first.Code != "TargetNotFound" || first.ID != "SCAN1001" || first.Severity != "ERROR" {
		t.Fatalf("first diagnostic = %+v", first)
	}
	if first.Module != "plugs" || first.Subject != "plugs.GhostImpl" {
		t.Fatalf("first diagnostic location = %+v", first)
	}
	if len(out.Diagnostics[1].Notes) != 1 {
		t.Fatal("notes dropped")
	}
}

func TestJSONEmptyBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diag.NewBag(1)); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"diagnostics": []`) {
		t.Errorf("empty bag should render an empty array, got %q", buf.String())
	}
}

func TestSarifShape(t *testing.T) {
	var buf bytes.Buffer
	err := Sarif(&buf, sampleBag(), SarifRunMeta{ToolName: "ilpatch", ToolVersion: "1.2.3"})
	if err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					LogicalLocations []struct {
						FullyQualifiedName string `json:"fullyQualifiedName"`
					} `json:"logicalLocations"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid SARIF JSON: %v", err)
	}
	if doc.Version != "2.1.0" || len(doc.Runs) != 1 {
		t.Fatalf("log shape: version=%q runs=%d", doc.Version, len(doc.Runs))
	}
	run := doc.Runs[0]
	if run.Tool.Driver.Name != "ilpatch" {
		t.Errorf("tool name = %q", run.Tool.Driver.Name)
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("rules = %d, want one per distinct code", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(run.Results))
	}
	if run.Results[0].RuleID != "TargetNotFound" || run.Results[0].Level != "error" {
		t.Errorf("first result = %+v", run.Results[0])
	}
	loc := run.Results[0].Locations[0].LogicalLocations[0].FullyQualifiedName
	if loc != "plugs.GhostImpl" {
		t.Errorf("logical location = %q", loc)
	}
}
