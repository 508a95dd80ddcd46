package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mj1618/focusguard/internal/model"
	"gopkg.in/yaml.v3"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	t.Cleanup(func() { Stdout = old })
	return &buf
}

func sampleResult() DecisionResult {
	ev := model.Event{Kind: model.KindFocusOut, Serial: 42, Window: 0x1a00003, Detail: model.DetailNonlinear}
	return NewDecisionResult(1707500000, model.Decision{
		Original: ev,
		Event:    model.Event{Kind: model.KindKeymapNotify, Serial: 42, Window: 0x1a00003, Synthetic: true},
		Verdict:  model.VerdictSuppress,
		Phase:    "active",
	})
}

func TestPrintYAML(t *testing.T) {
	buf := captureStdout(t)
	OutputFormat, PrettyOutput = FormatYAML, false

	if err := Print(sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if bytes.Count([]byte(out), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}
	for _, want := range []string{"verdict: suppress", "kind: FocusOut", "detail: Nonlinear", "kind: KeymapNotify"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["phase"] != "active" {
		t.Errorf("phase: got %v", decoded["phase"])
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	buf := captureStdout(t)
	OutputFormat, PrettyOutput = FormatJSON, false
	t.Cleanup(func() { OutputFormat = FormatYAML })

	if err := Print(sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if bytes.Count([]byte(out), []byte("\n")) > 1 {
		t.Errorf("compact output should be single line, got:\n%s", out)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["verdict"] != "suppress" {
		t.Errorf("verdict: got %v", decoded["verdict"])
	}
}

func TestPrintJSON_Pretty(t *testing.T) {
	out, err := Marshal(FormatJSON, true, ActionResult{OK: true, Action: "signal"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", out)
	}
}

func TestDecisionResult_PassOmitsDelivered(t *testing.T) {
	ev := model.Event{Kind: model.KindFocusIn, Window: 5}
	r := NewDecisionResult(1, model.Decision{Original: ev, Event: ev, Verdict: model.VerdictPass, Phase: "active"})
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["steal_back"]; ok {
		t.Error("zero steal_back should be omitted")
	}
	if _, ok := m["delivered"]; ok {
		t.Errorf("delivered should be omitted for a pass, got %+v", r.Delivered)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
	if _, err := Marshal("xml", false, 1); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPrintDocument_YAMLStream(t *testing.T) {
	buf := captureStdout(t)
	OutputFormat, PrettyOutput = FormatYAML, false

	for i := 0; i < 2; i++ {
		if err := PrintDocument(sampleResult()); err != nil {
			t.Fatal(err)
		}
	}

	dec := yaml.NewDecoder(buf)
	docs := 0
	for {
		var v map[string]interface{}
		if err := dec.Decode(&v); err != nil {
			break
		}
		docs++
	}
	if docs != 2 {
		t.Errorf("decoded %d documents, want 2:\n%s", docs, buf.String())
	}
}
