package insights

import (
	"bytes"
	"encoding/json"
)

// Analysis types understood by the dashboard.
const (
	AnalysisLandscape     = "landscape-analysis"
	AnalysisBusinessModel = "business-model-analysis"
	AnalysisCategory      = "category-analysis"
	AnalysisGeneral       = "general"
)

// AnalysisContext is the dashboard state an insight is computed from.
// Each variant declares the fields its analysis type cannot do without.
type AnalysisContext interface {
	AnalysisType() string
	Base() ContextBase
	Raw() json.RawMessage
	Validate() error
}

// ContextBase holds the fields shared by every analysis type.
type ContextBase struct {
	Type            string `json:"analysisType,omitempty"`
	SelectedOEM     string `json:"selectedOEM,omitempty"`
	SelectedCountry string `json:"selectedCountry,omitempty"`

	raw json.RawMessage
}

func (b ContextBase) AnalysisType() string { return b.Type }
func (b ContextBase) Base() ContextBase     { return b }

// Raw returns the context exactly as it was received.
func (b ContextBase) Raw() json.RawMessage { return b.raw }

// Ranking summarises feature availability on the landscape view.
type Ranking struct {
	AvailableFeatures float64 `json:"availableFeatures"`
	TotalFeatures     float64 `json:"totalFeatures,omitempty"`
}

type LandscapeContext struct {
	ContextBase
	Ranking *Ranking `json:"ranking"`
}

func (c *LandscapeContext) Validate() error {
	if c.Ranking == nil {
		return invalid("context.ranking", "landscape analysis requires ranking data")
	}
	if c.Ranking.AvailableFeatures <= 0 {
		return invalid("context.ranking.availableFeatures", "landscape analysis requires at least one available feature")
	}
	return nil
}

type BusinessModelContext struct {
	ContextBase
	TotalFeatures float64 `json:"totalFeatures"`
}

func (c *BusinessModelContext) Validate() error {
	if c.TotalFeatures <= 0 {
		return invalid("context.totalFeatures", "business model analysis requires a non-zero feature count")
	}
	return nil
}

type CategoryContext struct {
	ContextBase
	Category      string  `json:"selectedCategory,omitempty"`
	TotalFeatures float64 `json:"totalFeatures"`
}

func (c *CategoryContext) Validate() error {
	if c.TotalFeatures <= 0 {
		return invalid("context.totalFeatures", "category analysis requires a non-zero feature count")
	}
	return nil
}

// GeneralContext covers unspecified and unrecognised analysis types.
type GeneralContext struct {
	ContextBase
}

func (c *GeneralContext) Validate() error { return nil }

// ParseContext decodes the analysisType discriminator and then the matching
// variant. Fields are read leniently: a value of the wrong JSON type counts
// as absent, so only the variant's own Validate decides what is required.
func ParseContext(raw json.RawMessage) (AnalysisContext, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, invalid("context", "context is required")
	}
	if trimmed[0] != '{' {
		return nil, invalid("context", "context must be an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, invalid("context", "malformed context: %v", err)
	}

	base := ContextBase{
		Type:            stringField(fields, "analysisType"),
		SelectedOEM:     stringField(fields, "selectedOEM"),
		SelectedCountry: stringField(fields, "selectedCountry"),
		raw:             append(json.RawMessage(nil), trimmed...),
	}

	switch base.Type {
	case AnalysisLandscape:
		return &LandscapeContext{ContextBase: base, Ranking: rankingField(fields, "ranking")}, nil
	case AnalysisBusinessModel:
		return &BusinessModelContext{ContextBase: base, TotalFeatures: numberField(fields, "totalFeatures")}, nil
	case AnalysisCategory:
		return &CategoryContext{
			ContextBase:   base,
			Category:      stringField(fields, "selectedCategory"),
			TotalFeatures: numberField(fields, "totalFeatures"),
		}, nil
	default:
		return &GeneralContext{ContextBase: base}, nil
	}
}

func stringField(fields map[string]json.RawMessage, name string) string {
	var s string
	if err := json.Unmarshal(fields[name], &s); err != nil {
		return ""
	}
	return s
}

func numberField(fields map[string]json.RawMessage, name string) float64 {
	var n float64
	if err := json.Unmarshal(fields[name], &n); err != nil {
		return 0
	}
	return n
}

func rankingField(fields map[string]json.RawMessage, name string) *Ranking {
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(fields[name], &nested); err != nil || nested == nil {
		return nil
	}
	return &Ranking{
		AvailableFeatures: numberField(nested, "availableFeatures"),
		TotalFeatures:     numberField(nested, "totalFeatures"),
	}
}
