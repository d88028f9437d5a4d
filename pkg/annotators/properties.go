package annotators

import (
	"unicode/utf8"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

const (
	middleTextLength = 100
	longTextLength   = 400
)

var _ PropertySource = TextLengthAnnotator{}

// TextLengthAnnotator classifies a text as short, middle or long by character count.
type TextLengthAnnotator struct{}

func (TextLengthAnnotator) Key() string { return "length" }

func (TextLengthAnnotator) Description() string {
	return "Length of provided text classified as short, middle, or long"
}

func (TextLengthAnnotator) AnnotateText(text string) (models.Property, error) {
	n := utf8.RuneCountInString(text)
	switch {
	case n > longTextLength:
		return models.Property{Value: "long"}, nil
	case n > middleTextLength:
		return models.Property{Value: "middle"}, nil
	default:
		return models.Property{Value: "short"}, nil
	}
}
