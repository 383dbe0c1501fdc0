package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Summary aggregates the verdict counts for one batch run.
type Summary struct {
	TotalTests      int     `json:"total_tests"`
	SuccessfulTests int     `json:"successful_tests"`
	FailedTests     int     `json:"failed_tests"`
	SuccessRate     float64 `json:"success_rate"`
}

// Report is the consolidated outcome of one batch run, persisted once per
// batch as test_report.json.
type Report struct {
	Tutorial  string           `json:"tutorial"`
	Timestamp time.Time        `json:"timestamp"`
	RunID     string           `json:"run_id,omitempty"`
	Duration  time.Duration    `json:"-"`
	Seconds   float64          `json:"duration_seconds"`
	Summary   Summary          `json:"summary"`
	Results   *OrderedVerdicts `json:"results"`
}

// AllPassed reports whether every locale in the batch succeeded.
// An empty batch did not pass anything.
func (r *Report) AllPassed() bool {
	return r.Summary.TotalTests > 0 && r.Summary.FailedTests == 0
}

// OrderedVerdicts is a locale-to-verdict mapping that preserves insertion
// order through JSON marshaling. Plain Go maps would lose the requested
// locale order in the persisted report.
type OrderedVerdicts struct {
	order []string
	items map[string]Verdict
}

// NewOrderedVerdicts creates an empty ordered mapping.
func NewOrderedVerdicts() *OrderedVerdicts {
	return &OrderedVerdicts{items: make(map[string]Verdict)}
}

// Add records the verdict for a locale. A locale added twice keeps its
// original position and takes the newer verdict.
func (o *OrderedVerdicts) Add(locale string, v Verdict) {
	if o.items == nil {
		o.items = make(map[string]Verdict)
	}
	if _, seen := o.items[locale]; !seen {
		o.order = append(o.order, locale)
	}
	o.items[locale] = v
}

// Get returns the verdict recorded for a locale.
func (o *OrderedVerdicts) Get(locale string) (Verdict, bool) {
	v, ok := o.items[locale]
	return v, ok
}

// Locales returns the locales in insertion order.
func (o *OrderedVerdicts) Locales() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Len returns the number of recorded verdicts.
func (o *OrderedVerdicts) Len() int {
	return len(o.order)
}

// MarshalJSON renders the mapping as a JSON object with keys in insertion
// order.
func (o *OrderedVerdicts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, locale := range o.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(locale)
		if err != nil {
			return nil, fmt.Errorf("marshaling locale key %q: %w", locale, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(o.items[locale])
		if err != nil {
			return nil, fmt.Errorf("marshaling verdict for %q: %w", locale, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the mapping, keeping the key order of the document.
func (o *OrderedVerdicts) UnmarshalJSON(data []byte) error {
	o.order = nil
	o.items = make(map[string]Verdict)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object for verdict mapping, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		locale, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key in verdict mapping, got %v", keyTok)
		}
		var v Verdict
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decoding verdict for %q: %w", locale, err)
		}
		o.Add(locale, v)
	}

	_, err = dec.Token() // closing brace
	return err
}
