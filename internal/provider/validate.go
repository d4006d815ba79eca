package provider

import (
	"fmt"

	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
)

// MaxCandidates caps the find-similar candidate list. The cap also
// bounds the cloud adapter's per-candidate compare fan-out.
const MaxCandidates = 10

// ValidateImage rejects empty image payloads before any backend call.
func ValidateImage(field, image string) error {
	if image == "" {
		return apperrors.NewInvalidInputError(fmt.Sprintf("%s must not be empty", field), nil)
	}
	return nil
}

// ValidateCandidates enforces the 1..MaxCandidates bound on the
// find-similar candidate list. Violation fails before any backend call
// is made so no spend is wasted.
func ValidateCandidates(candidates []string) error {
	if len(candidates) < 1 || len(candidates) > MaxCandidates {
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("targetImages must contain between 1 and %d entries (got %d)", MaxCandidates, len(candidates)), nil)
	}
	for i, candidate := range candidates {
		if candidate == "" {
			return apperrors.NewInvalidInputError(fmt.Sprintf("targetImages[%d] must not be empty", i), nil)
		}
	}
	return nil
}

// ValidateThreshold checks a similarity threshold is a percentage.
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 100 {
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("similarityThreshold must be in [0,100] (got %g)", threshold), nil)
	}
	return nil
}
