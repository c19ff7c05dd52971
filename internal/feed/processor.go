package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"release-watch-service/internal/domain/releases"
	"release-watch-service/internal/gateway"
	"release-watch-service/internal/logging"
	"release-watch-service/internal/timeutil"
)

// dateField is the feed field used for watermark comparison.
const dateField = "date"

type feedEnvelope struct {
	Releases json.RawMessage `json:"releases"`
}

// Processor turns one gateway response into the releases that should be
// dispatched. It never fails: any malformed input yields an empty cycle.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor constructs a Processor. A nil logger is allowed.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{logger: logger}
}

// NewSince returns the prefix of resp's releases dated at or after watermark,
// in feed order. The feed is assumed sorted newest-first, so the walk stops
// at the first record older than the watermark; everything past it is taken
// to be older still. A record whose date cannot be parsed also stops the
// walk. An absent response, non-200 status, or undecodable body returns nil.
func (p *Processor) NewSince(resp *gateway.Response, watermark time.Time) []releases.Release {
	if resp == nil || resp.Status != http.StatusOK {
		status := 0
		if resp != nil {
			status = resp.Status
		}
		logging.Warn(p.logger, "feed fetch yielded no usable response", logging.FieldStatusCode, status)
		return nil
	}

	records, ok := p.decode(resp.Body)
	if !ok {
		return nil
	}

	fresh := make([]releases.Release, 0, len(records))
	for _, raw := range records {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			logging.Warn(p.logger, "feed record is not an object; stopping walk", "error", err)
			break
		}

		dateVal, isString := fields[dateField].(string)
		if !isString {
			logging.Warn(p.logger, "feed record has no date field; stopping walk")
			break
		}
		ts, err := timeutil.ParseTimestamp(dateVal)
		if err != nil {
			logging.Warn(p.logger, "feed record date is unparsable; stopping walk", "error", err)
			break
		}

		if ts.Before(watermark) {
			break
		}
		fresh = append(fresh, releases.Release{Date: ts, Fields: fields})
	}
	return fresh
}

func (p *Processor) decode(body []byte) ([]json.RawMessage, bool) {
	var envelope feedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		logging.Warn(p.logger, "feed body is not valid JSON", "error", err)
		return nil, false
	}
	if len(envelope.Releases) == 0 {
		logging.Warn(p.logger, "feed body has no releases field")
		return nil, false
	}

	var records []json.RawMessage
	if err := json.Unmarshal(envelope.Releases, &records); err != nil {
		logging.Warn(p.logger, "feed releases field is not an array", "error", err)
		return nil, false
	}
	return records, true
}
