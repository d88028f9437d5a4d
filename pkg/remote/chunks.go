package remote

import (
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/getzep/nlp-annotator-api/internal"
)

const (
	// MaxSafeSize is the payload size a chunk is kept under. The provider rejects
	// requests above MaxSize.
	MaxSafeSize = 40000
	MaxSize     = 51200
	// itemOverhead is the size of the JSON wrapper {"text":""} around each text.
	itemOverhead = 12

	truncationMarker = "..."
	logPrefixLength  = 24
)

// chunkBySize splits texts into consecutive chunks whose estimated payload stays under
// MaxSafeSize. Texts longer than MaxSafeSize are truncated first.
func chunkBySize(texts []string) [][]string {
	var chunks [][]string
	var current []string
	size := 0

	for _, text := range texts {
		text = truncateText(text)
		itemSize := len(text) + itemOverhead

		if len(current) > 0 && (size > MaxSafeSize || size+itemSize > MaxSafeSize) {
			chunks = append(chunks, current)
			current = nil
			size = 0
		}

		size += itemSize
		current = append(current, text)
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func truncateText(text string) string {
	if len(text) <= MaxSafeSize {
		return text
	}
	log.WithFields(logrus.Fields{
		"prefix": internal.TextPrefix(text, logPrefixLength),
		"length": humanize.Bytes(uint64(len(text))),
		"limit":  humanize.Bytes(MaxSafeSize),
	}).Warn("text is too long, truncating")
	return internal.TruncateBytes(text, MaxSafeSize) + truncationMarker
}
