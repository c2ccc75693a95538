package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Label is the natural-language-inference class assigned to a sentence pair.
type Label string

const (
	LabelEntailment    Label = "entailment"
	LabelContradiction Label = "contradiction"
	LabelNeutral       Label = "neutral"
)

// PairSeparator joins premise and hypothesis into the single input string NLI classifiers expect.
const PairSeparator = " </s></s> "

// ErrUnparseableOutput indicates a model answered with something that is not a valid prediction.
var ErrUnparseableOutput = errors.New("unparseable model output")

// Entailment is the top prediction of an NLI classifier.
type Entailment struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores a premise/hypothesis pair encoded as a single string.
type Classifier interface {
	Classify(ctx context.Context, pair string) (Entailment, error)
}

// Encoder turns a sentence into a fixed-dimension embedding.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// JoinPair builds the classifier input for a premise and hypothesis.
func JoinPair(premise, hypothesis string) string {
	return premise + PairSeparator + hypothesis
}

// SplitPair reverses JoinPair. Inputs without a separator are returned as premise only.
func SplitPair(pair string) (premise, hypothesis string) {
	premise, hypothesis, _ = strings.Cut(pair, strings.TrimSpace(PairSeparator))
	return strings.TrimSpace(premise), strings.TrimSpace(hypothesis)
}

// ParseLabel maps provider label spellings (ENTAILMENT, Entailment, ...) onto Label.
func ParseLabel(raw string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(raw))) {
	case LabelEntailment:
		return LabelEntailment, nil
	case LabelContradiction:
		return LabelContradiction, nil
	case LabelNeutral:
		return LabelNeutral, nil
	default:
		return "", fmt.Errorf("%w: unknown label %q", ErrUnparseableOutput, raw)
	}
}

func validScore(score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("%w: score %v outside [0,1]", ErrUnparseableOutput, score)
	}
	return nil
}
