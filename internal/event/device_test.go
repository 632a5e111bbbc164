package event

import (
	"testing"
	"time"
)

func timeFixture() time.Time {
	return time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
}

func TestDeviceType(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{"iPad", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) Safari/604.1", DeviceTablet},
		{"Android tablet without Mobi", "Mozilla/5.0 (Linux; Android 13; SM-X710) Chrome/120.0 Safari/537.36", DeviceTablet},
		{"Kindle Silk", "Mozilla/5.0 (Linux; Android 9) Silk/94.2 like Chrome Safari/537.36", DeviceTablet},
		{"Android phone", "Mozilla/5.0 (Linux; Android 13; SM-S918N) Chrome/120.0 Mobile Safari/537.36", DeviceMobile},
		{"iPhone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) Mobile/15E148", DeviceMobile},
		{"Windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0 Safari/537.36", DevicePC},
		{"macOS desktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15", DevicePC},
		{"Empty user agent", "", DevicePC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceType(tt.userAgent); got != tt.expected {
				t.Errorf("DeviceType(%q) = %q, want %q", tt.userAgent, got, tt.expected)
			}
		})
	}
}

func TestEventTimestamps(t *testing.T) {
	// Page-level events carry RFC3339; heartbeat-class events carry epoch ms
	at := timeFixture()

	ev := New(TypePageview, "v", "s", at)
	if ev["timestamp"] != "2025-01-06T10:00:00Z" {
		t.Errorf("RFC3339 timestamp = %v", ev["timestamp"])
	}

	hb := NewEpoch(TypeHeartbeat, "v", "s", at)
	if hb["timestamp"] != at.UnixMilli() {
		t.Errorf("epoch timestamp = %v, want %d", hb["timestamp"], at.UnixMilli())
	}
}

func TestEventTimestampKey(t *testing.T) {
	at := timeFixture()
	if key := New(TypePageview, "v", "s", at).TimestampKey(); key != "2025-01-06T10:00:00Z" {
		t.Errorf("string timestamp key = %q", key)
	}
	if key := NewEpoch(TypeHeartbeat, "v", "s", at).TimestampKey(); key != "1736157600000" {
		t.Errorf("epoch timestamp key = %q", key)
	}

	// A JSON round trip turns the epoch int64 into a float64; the key
	// must not pick up an exponent
	decoded := Event{"timestamp": float64(at.UnixMilli())}
	if key := decoded.TimestampKey(); key != "1736157600000" {
		t.Errorf("round-tripped epoch timestamp key = %q", key)
	}
}
