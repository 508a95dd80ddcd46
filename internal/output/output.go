package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mj1618/focusguard/internal/model"
	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where Print writes.
var Stdout io.Writer = os.Stdout

// DecisionResult is one line of `run` output.
type DecisionResult struct {
	TS        int64          `yaml:"ts"                   json:"ts"`
	Event     model.Event    `yaml:"event"                json:"event"`
	Verdict   model.Verdict  `yaml:"verdict"              json:"verdict"`
	Delivered *model.Event   `yaml:"delivered,omitempty"  json:"delivered,omitempty"`
	StealBack model.WindowID `yaml:"steal_back,omitempty" json:"steal_back,omitempty"`
	Phase     string         `yaml:"phase"                json:"phase"`
}

// NewDecisionResult flattens a decision for printing. Delivered is only set
// when it differs from the original event.
func NewDecisionResult(ts int64, d model.Decision) DecisionResult {
	r := DecisionResult{
		TS:        ts,
		Event:     d.Original,
		Verdict:   d.Verdict,
		StealBack: d.StealBack,
		Phase:     d.Phase,
	}
	if d.Suppressed() {
		delivered := d.Event
		r.Delivered = &delivered
	}
	return r
}

// ActionResult reports a one-shot command.
type ActionResult struct {
	OK      bool           `yaml:"ok"                json:"ok"`
	Action  string         `yaml:"action"            json:"action"`
	Window  model.WindowID `yaml:"window,omitempty"  json:"window,omitempty"`
	Message string         `yaml:"message,omitempty" json:"message,omitempty"`
}

// Print serializes v to Stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(Stdout, OutputFormat, PrettyOutput, v)
}

// PrintDocument is Print for one item of a stream: YAML items are separated
// by document markers, JSON items are one per line.
func PrintDocument(v interface{}) error {
	if OutputFormat == FormatYAML {
		if _, err := io.WriteString(Stdout, "---\n"); err != nil {
			return err
		}
	}
	return Print(v)
}

// Fprint serializes v to w in format f.
func Fprint(w io.Writer, f Format, pretty bool, v interface{}) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", f)
	}
}

// Marshal renders v as a string in format f.
func Marshal(f Format, pretty bool, v interface{}) (string, error) {
	var sb strings.Builder
	if err := Fprint(&sb, f, pretty, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}
