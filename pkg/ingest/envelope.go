package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4/json"

	"github.com/GareBear99/admension/pkg/db/models/events"
)

// Envelope is the wire shape browser trackers POST to the collector:
// {"t": <epoch ms>, "type": "...", "payload": {...}}.
type Envelope struct {
	T       int64           `json:"t"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type payload struct {
	SidHash  string          `json:"sid_hash"`
	Page     string          `json:"page"`
	Slot     string          `json:"slot"`
	Device   string          `json:"device"`
	UTM      json.RawMessage `json:"utm"`
	Viewable looseBool       `json:"viewable"`
	IVT      looseBool       `json:"ivt"`
}

// looseBool tolerates the shapes third-party trackers actually send:
// true/false, 0/1, "true"/"1".
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	switch s := strings.ToLower(strings.Trim(string(data), `"`)); s {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean value %q", s)
	}
	return nil
}

var (
	ErrBadEnvelope = errors.New("malformed event envelope")
	ErrNoType      = errors.New("event envelope missing type")
)

// ParseEnvelope converts a raw collector POST body into an Impression row.
// Parsing is strict at the envelope level and lenient inside the payload:
// an unreadable envelope or missing type is rejected, while an unreadable
// utm blob just yields an empty recipient code.
func ParseEnvelope(body []byte, now time.Time) (*events.Impression, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadEnvelope, err)
	}
	if strings.TrimSpace(env.Type) == "" {
		return nil, ErrNoType
	}

	ts := now.UTC()
	if env.T > 0 {
		ts = time.UnixMilli(env.T).UTC()
	}

	var p payload
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: payload: %s", ErrBadEnvelope, err)
		}
	}

	return &events.Impression{
		Ts:         ts,
		EventType:  strings.TrimSpace(env.Type),
		SidHash:    p.SidHash,
		Page:       p.Page,
		Slot:       p.Slot,
		Device:     p.Device,
		AdmCode:    extractAdmCode(p.UTM),
		Viewable:   bool(p.Viewable),
		IVT:        bool(p.IVT),
		IngestedAt: now.UTC(),
	}, nil
}

// extractAdmCode pulls the recipient code out of the utm blob, which arrives
// either as a JSON object or as a string holding serialized JSON.
func extractAdmCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		var nested string
		if err := json.Unmarshal(raw, &nested); err != nil {
			return ""
		}
		if err := json.Unmarshal([]byte(nested), &obj); err != nil {
			return ""
		}
	}

	code, _ := obj["adm"].(string)
	return strings.ToUpper(strings.TrimSpace(code))
}
