// Package significance decides which raw catalog candidates qualify as
// reportable events. The decision is a pure predicate over catalog-provided
// fields: no network state, no store state, no enrichment results.
package significance

import (
	"fmt"
	"strings"
	"time"

	"github.com/gwpulse/gwpulse/internal/config"
	"github.com/gwpulse/gwpulse/internal/models"
)

// Filter applies the significance policy as a conjunction of independent
// checks: epoch membership, a sent public alert, and no retraction. Any
// failing check disqualifies the candidate.
type Filter struct {
	epochStart      time.Time
	epochPrefixes   []string
	alertSentLabels []string
	retractedLabel  string
}

// New creates a filter from the configured policy.
func New(cfg config.FilterConfig) *Filter {
	return &Filter{
		epochStart:      cfg.EpochStart,
		epochPrefixes:   cfg.EpochPrefixes,
		alertSentLabels: cfg.AlertSentLabels,
		retractedLabel:  cfg.RetractedLabel,
	}
}

// IsSignificant reports whether the candidate qualifies as a reportable
// event. A retracted candidate never qualifies, regardless of its other
// fields.
func (f *Filter) IsSignificant(ev models.Superevent) bool {
	if f.retractedLabel != "" && ev.HasLabel(f.retractedLabel) {
		return false
	}
	if !f.alertSent(ev) {
		return false
	}
	return f.inEpoch(ev)
}

func (f *Filter) alertSent(ev models.Superevent) bool {
	for _, label := range f.alertSentLabels {
		if ev.HasLabel(label) {
			return true
		}
	}
	return false
}

// inEpoch gates candidates to the accepted observing epoch. When identifier
// prefixes are configured they are authoritative; otherwise the candidate's
// creation time is compared against the epoch start, falling back to the
// date encoded in the identifier only when `created` is unusable.
func (f *Filter) inEpoch(ev models.Superevent) bool {
	if len(f.epochPrefixes) > 0 {
		for _, prefix := range f.epochPrefixes {
			if strings.HasPrefix(ev.SupereventID, prefix) {
				return true
			}
		}
		return false
	}

	if f.epochStart.IsZero() {
		return true
	}

	if created, ok := ev.CreatedTime(); ok {
		return !created.Before(f.epochStart)
	}

	decoded, err := DecodeIDDate(ev.SupereventID)
	if err != nil {
		return false
	}
	return !decoded.Before(f.epochStart)
}

// DecodeIDDate extracts the calendar date embedded in a catalog identifier:
// a variable-length alphabetic prefix followed by six digits, YYMMDD, with
// the two-digit year in the 2000s (e.g. "S230518h" is 2023-05-18). It is a
// fallback signal only and must never override an authoritative creation
// timestamp.
func DecodeIDDate(id string) (time.Time, error) {
	i := 0
	for i < len(id) && isAlpha(id[i]) {
		i++
	}
	if i == 0 || len(id) < i+6 {
		return time.Time{}, fmt.Errorf("identifier %q does not encode a date", id)
	}

	digits := id[i : i+6]
	for j := 0; j < 6; j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return time.Time{}, fmt.Errorf("identifier %q does not encode a date", id)
		}
	}

	year := 2000 + int(digits[0]-'0')*10 + int(digits[1]-'0')
	month := int(digits[2]-'0')*10 + int(digits[3]-'0')
	day := int(digits[4]-'0')*10 + int(digits[5]-'0')

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("identifier %q encodes invalid date %s", id, digits)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
