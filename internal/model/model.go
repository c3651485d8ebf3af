package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Fallback texts shown when the approvals service leaves a field out.
const (
	NoExplanation   = "No explanation provided."
	NoEnhancedValue = "No enhanced value provided."
)

// ErrNullResult is returned when the service sends a literal null in place of
// a result object.
var ErrNullResult = errors.New("result is null")

func isNull(b []byte) bool { return bytes.Equal(bytes.TrimSpace(b), []byte("null")) }

// VerificationResult is the verdict of a single verification step.
type VerificationResult struct {
	Valid       bool   `json:"valid"`
	Explanation string `json:"explanation"`
}

// UnmarshalJSON applies the defaults for missing fields: an absent verdict is
// a failure and an absent explanation becomes NoExplanation. An empty
// explanation is kept.
func (r *VerificationResult) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return ErrNullResult
	}
	var raw struct {
		Valid       *bool   `json:"valid"`
		Explanation *string `json:"explanation"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = VerificationResult{Explanation: NoExplanation}
	if raw.Valid != nil {
		r.Valid = *raw.Valid
	}
	if raw.Explanation != nil {
		r.Explanation = *raw.Explanation
	}
	return nil
}

// EnhancementResult is the suggestion returned by an enhancement step.
type EnhancementResult struct {
	EnhancedValue string `json:"enhanced_value"`
	Explanation   string `json:"explanation"`
}

func (r *EnhancementResult) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return ErrNullResult
	}
	var raw struct {
		EnhancedValue *string `json:"enhanced_value"`
		Explanation   *string `json:"explanation"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = EnhancementResult{EnhancedValue: NoEnhancedValue, Explanation: NoExplanation}
	if raw.EnhancedValue != nil {
		r.EnhancedValue = *raw.EnhancedValue
	}
	if raw.Explanation != nil {
		r.Explanation = *raw.Explanation
	}
	return nil
}

// Certificate is the opaque payload returned by certificate retrieval.
// It is forwarded byte for byte to the certificate verification calls.
type Certificate = json.RawMessage
