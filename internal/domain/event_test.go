package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEventEncodingKeepsZeroValue(t *testing.T) {
	e := Event{
		Kind:      EventChannelUpdated,
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Channel:   "occupancy",
		RequestID: "r-9",
		Value:     0,
	}

	raw, err := json.Marshal(&e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// A fulfillment that sets a channel to zero must still carry the value
	// field; observers cannot otherwise tell it from an absent value.
	if !strings.Contains(string(raw), `"value":0`) {
		t.Fatalf("expected value field in encoding, got %s", raw)
	}
	if !strings.Contains(string(raw), `"fee":0`) {
		t.Fatalf("expected fee field in encoding, got %s", raw)
	}
	if strings.Contains(string(raw), `"description"`) {
		t.Fatalf("unused string fields should be elided, got %s", raw)
	}
}
