package insights

import (
	"strings"
)

// ValidateRequest checks the identifying fields of a request and the
// type-specific requirements of its analysis context.
func ValidateRequest(req InsightRequest) (AnalysisContext, error) {
	return Validate(req.SubjectID, req.Region, req.Context)
}

// Validate fails fast with a *ValidationError; subjectID may be empty for
// aggregate requests.
func Validate(subjectID, region string, raw []byte) (AnalysisContext, error) {
	if strings.TrimSpace(region) == "" {
		return nil, invalid("country", "country is required")
	}

	ac, err := ParseContext(raw)
	if err != nil {
		return nil, err
	}

	if err := ValidateContext(ac); err != nil {
		return nil, err
	}
	return ac, nil
}

// ValidateContext runs the required-field contract of the context's analysis type.
func ValidateContext(ac AnalysisContext) error {
	if ac == nil {
		return invalid("context", "context is required")
	}
	return ac.Validate()
}

// DeriveFeedbackContext prefers the selections embedded in the analysis
// context over the nominal request parameters.
func DeriveFeedbackContext(ac AnalysisContext, subjectID, region string) FeedbackContext {
	fc := FeedbackContext{
		SubjectID:    subjectID,
		Region:       region,
		AnalysisType: AnalysisGeneral,
	}
	if ac == nil {
		return fc
	}

	base := ac.Base()
	if base.SelectedOEM != "" {
		fc.SubjectID = base.SelectedOEM
	}
	if base.SelectedCountry != "" {
		fc.Region = base.SelectedCountry
	}
	if base.Type != "" {
		fc.AnalysisType = base.Type
	}
	return fc
}
