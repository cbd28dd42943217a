package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// localLayout is an ISO timestamp without a zone, as the backend writes LocalDateTime.
const localLayout = "2006-01-02T15:04:05.999999999"

// LocalTime decodes zone-less backend timestamps (read as UTC) and RFC 3339 ones.
type LocalTime struct {
	time.Time
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(localLayout, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("decode timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.Location() == time.UTC {
		return json.Marshal(t.Format(localLayout))
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
