package document

import "strings"

// Policy decides what a confirmed mismatch does.
type Policy string

const (
	// PolicyAdvisory stores a confirmed mismatch under the expected kind.
	PolicyAdvisory Policy = "advisory"
	// PolicyStrict rejects a mismatch even when the vendor confirms it.
	PolicyStrict Policy = "strict"
)

// Outcome is the gate's verdict on an upload.
type Outcome string

const (
	OutcomeAccept          Outcome = "accept"
	OutcomeConfirmRequired Outcome = "confirm_required"
	OutcomeReject          Outcome = "reject"
)

// Decision carries the verdict and what the vendor should be shown.
type Decision struct {
	Outcome   Outcome `json:"outcome"`
	Expected  Kind    `json:"expected_type"`
	Detected  string  `json:"detected_type,omitempty"`
	Reasoning string  `json:"reasoning,omitempty"`
	Mismatch  bool    `json:"mismatch"`
}

// Gate compares the kind a vendor selected with the kind a classifier detected.
type Gate struct {
	Policy Policy
}

// Evaluate never auto-accepts a detected mismatch. An inconclusive
// classification is treated as a match.
func (g Gate) Evaluate(expected Kind, c Classification, confirmed bool) Decision {
	detected := normalizeDetected(c.DetectedType)
	d := Decision{Expected: expected, Detected: detected, Reasoning: c.Reasoning}

	if detected == "" || detected == string(expected) {
		d.Outcome = OutcomeAccept
		return d
	}

	d.Mismatch = true
	switch {
	case !confirmed:
		d.Outcome = OutcomeConfirmRequired
	case g.Policy == PolicyStrict:
		d.Outcome = OutcomeReject
	default:
		d.Outcome = OutcomeAccept
	}
	return d
}

func normalizeDetected(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "unknown", "other", "none", "inconclusive":
		return ""
	}
	return s
}
