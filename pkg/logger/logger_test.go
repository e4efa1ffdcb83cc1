package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithShipmentID(context.Background(), "ship-123")
	ctx = logg.WithActorRole(ctx, "agent")
	logg.Info(ctx, "payment recorded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if line["shipment_id"] != "ship-123" {
		t.Fatalf("shipment_id missing from log line: %v", line)
	}
	if line["actor_role"] != "agent" {
		t.Fatalf("actor_role missing from log line: %v", line)
	}
	if line["service"] != "test" {
		t.Fatalf("service field missing: %v", line)
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Error(context.Background(), "reprice failed", errors.New("boom"))

	if !strings.Contains(buf.String(), "stack") {
		t.Fatal("error log should carry a stack field")
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatal("error log should carry the error message")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("empty level should default to info")
	}
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatal("debug should parse")
	}
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Fatal("unknown level should default to info")
	}
}
