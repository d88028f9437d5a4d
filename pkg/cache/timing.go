package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

const (
	DeadlineHeader      = "X-CPS-Deadline"
	TransactionIDHeader = "X-CPS-Transaction-Id"
	AttemptNumberHeader = "X-CPS-Attempt-Number"
	MaxAttemptsHeader   = "X-CPS-Max-Attempts"
)

// deadlineLayouts are tried in order. Timestamps without a zone are taken as UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimingParameters reads the timing headers of a request. Malformed values are
// ignored rather than rejected.
func ParseTimingParameters(header http.Header) models.TimingParameters {
	var timing models.TimingParameters

	if deadline, ok := parseDeadline(header.Get(DeadlineHeader)); ok {
		timing.Deadline = &deadline
	}
	timing.TransactionID = strings.TrimSpace(header.Get(TransactionIDHeader))
	timing.AttemptNumber = parseInt(header.Get(AttemptNumberHeader))
	timing.MaxAttempts = parseInt(header.Get(MaxAttemptsHeader))

	return timing
}

func parseDeadline(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	log.WithField("value", value).Debug("ignoring malformed deadline header")
	return time.Time{}, false
}

func parseInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}
