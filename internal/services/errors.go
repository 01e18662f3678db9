package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAssetNotFound   = errors.New("asset not found")
	ErrExternalService = errors.New("external service failure")
	ErrDecode          = errors.New("decode failure")
	ErrExhausted       = errors.New("candidates exhausted")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes phase context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Disposition describes how the variant pipeline reacts to a failed pair.
type Disposition string

const (
	// DispositionSkip drops the pair with a warning and no log record.
	DispositionSkip Disposition = "skip"
	// DispositionContinue keeps processing the pair (one candidate lost).
	DispositionContinue Disposition = "continue"
	// DispositionReview marks the pair for manual review.
	DispositionReview Disposition = "review"
	// DispositionFatal aborts the pair.
	DispositionFatal Disposition = "fatal"
)

// Classify maps a pipeline error to the pair-level reaction.
func Classify(err error) Disposition {
	switch {
	case err == nil:
		return DispositionContinue
	case errors.Is(err, ErrAssetNotFound):
		return DispositionSkip
	case errors.Is(err, ErrExhausted):
		return DispositionReview
	case errors.Is(err, ErrExternalService), errors.Is(err, ErrTransient):
		return DispositionContinue
	default:
		return DispositionFatal
	}
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{phase, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
