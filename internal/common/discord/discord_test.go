package discord

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSendLogMessage(t *testing.T) {
	var received WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Decoding webhook body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }

	err := client.SendLogMessage("ERROR", "Loading snapshot failed", map[string]interface{}{
		"source": "http",
		"error":  "timeout",
	})
	if err != nil {
		t.Fatalf("SendLogMessage returned error: %v", err)
	}

	if received.Username != "bikeflow" {
		t.Errorf("Expected username bikeflow, got %q", received.Username)
	}
	if len(received.Embeds) != 1 {
		t.Fatalf("Expected 1 embed, got %d", len(received.Embeds))
	}
	embed := received.Embeds[0]
	if embed.Color != 0xFF0000 || embed.Description != "Loading snapshot failed" {
		t.Errorf("Unexpected embed: %+v", embed)
	}
	if len(embed.Fields) != 2 || embed.Fields[0].Name != "error" || embed.Fields[1].Name != "source" {
		t.Errorf("Expected sorted fields error, source; got %+v", embed.Fields)
	}
}

func TestSendLogMessageStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := NewClient(server.URL).SendLogMessage("FATAL", "boom", nil)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client := NewClient("")
	if client.Enabled() {
		t.Error("Expected client without URL to be disabled")
	}
	if err := client.SendLogMessage("ERROR", "ignored", nil); err != nil {
		t.Errorf("Expected no error from disabled client, got %v", err)
	}
}

func TestLogEmbedLimits(t *testing.T) {
	client := NewClient("http://example.invalid")
	fields := map[string]interface{}{}
	for i := 0; i < 40; i++ {
		fields[fmt.Sprintf("k%02d", i)] = strings.Repeat("x", 2000)
	}

	embed := client.logEmbed("WARN", strings.Repeat("m", 5000), fields)
	if len(embed.Fields) != maxEmbedFields {
		t.Errorf("Expected %d fields, got %d", maxEmbedFields, len(embed.Fields))
	}
	if len(embed.Fields[0].Value) != maxFieldValue {
		t.Errorf("Expected field value truncated to %d, got %d", maxFieldValue, len(embed.Fields[0].Value))
	}
	if len(embed.Description) != maxDescription {
		t.Errorf("Expected description truncated to %d, got %d", maxDescription, len(embed.Description))
	}
	if embed.Color != 0xFFA500 {
		t.Errorf("Expected warn color, got %x", embed.Color)
	}
}
