package domain

// DefaultScanLabel is used when the model returns a usable calorie estimate
// but no (or a blank) label.
const DefaultScanLabel = "Scanned food"

// AnalysisResult is the outcome of analyzing a food image. It is a two-way
// variant: either a usable calorie estimate, or "the image could not be
// interpreted". An uninterpretable image is a normal business outcome, not
// an error — transport and credential failures travel as errors instead.
type AnalysisResult struct {
	Usable   bool   `json:"usable"`
	Calories int    `json:"calories,omitempty"`
	Label    string `json:"label,omitempty"`
}

// UsableResult builds a successful result, clamping calories at zero and
// substituting the default label when blank.
func UsableResult(calories int, label string) AnalysisResult {
	if calories < 0 {
		calories = 0
	}
	if label == "" {
		label = DefaultScanLabel
	}
	return AnalysisResult{Usable: true, Calories: calories, Label: label}
}

// UnusableResult builds the "could not identify the food" outcome.
func UnusableResult() AnalysisResult {
	return AnalysisResult{Usable: false}
}
