package feedbackapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/NomadCrew/feedback-client/types"
)

// RawPageKind tags which shape the list endpoint answered with.
type RawPageKind int

const (
	// RawPageLegacy is a bare JSON array holding the complete dataset.
	RawPageLegacy RawPageKind = iota + 1
	// RawPageEnvelope is a paginated object with its own metadata.
	RawPageEnvelope
)

func (k RawPageKind) String() string {
	switch k {
	case RawPageLegacy:
		return "legacy"
	case RawPageEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

// RawPage is the undecided list response: exactly one of Legacy or Envelope
// is meaningful, selected by Kind.
type RawPage struct {
	Kind     RawPageKind
	Legacy   []types.FeedbackResponse
	Envelope types.FeedbackPage
}

// DecodeRawPage classifies and decodes a list response body by its first
// JSON token.
func DecodeRawPage(data json.RawMessage) (RawPage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return RawPage{}, fmt.Errorf("empty list response")
	}

	switch trimmed[0] {
	case '[':
		var items []types.FeedbackResponse
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return RawPage{}, fmt.Errorf("failed to decode legacy list response: %w", err)
		}
		return RawPage{Kind: RawPageLegacy, Legacy: items}, nil
	case '{':
		var page types.FeedbackPage
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return RawPage{}, fmt.Errorf("failed to decode paginated list response: %w", err)
		}
		return RawPage{Kind: RawPageEnvelope, Envelope: page}, nil
	default:
		return RawPage{}, fmt.Errorf("unexpected list response starting with %q", trimmed[0])
	}
}

// Normalize resolves raw into a page. An envelope is returned as the server
// sent it. A legacy array is treated as the full, already ordered dataset and
// sliced for the requested page.
func Normalize(raw RawPage, page, size int) types.FeedbackPage {
	if raw.Kind == RawPageEnvelope {
		return raw.Envelope
	}

	all := raw.Legacy
	total := len(all)
	if size <= 0 {
		size = max(total, 1)
	}

	totalPages := max(1, (total+size-1)/size)
	start := max(0, page*size)
	end := min(total, start+size)

	items := []types.FeedbackResponse{}
	if start < end {
		items = all[start:end]
	}

	return types.FeedbackPage{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		HasNext:       page < totalPages-1,
	}
}
