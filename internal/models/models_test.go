package models

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid date", raw: "25/12/2026"},
		{name: "first of month", raw: "01/01/2026"},
		{name: "iso format rejected", raw: "2026-12-25", wantErr: true},
		{name: "us format rejected", raw: "12/25/2026", wantErr: true},
		{name: "month out of range", raw: "25/13/2026", wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
		{name: "garbage", raw: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && d.String() != tt.raw {
				t.Errorf("round trip = %q, want %q", d.String(), tt.raw)
			}
		})
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("07/03/2026")
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"07/03/2026"` {
		t.Fatalf("marshal = %s, want \"07/03/2026\"", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("unmarshal = %v, want %v", back, d)
	}

	if err := json.Unmarshal([]byte(`"2026-03-07"`), &back); err == nil {
		t.Error("expected error for ISO-formatted date")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2026-03-07"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d.String() != "07/03/2026" {
		t.Errorf("scanned date = %q, want 07/03/2026", d.String())
	}

	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestParseTaskStatus(t *testing.T) {
	for _, valid := range []string{"Not Started", "In Progress", "Done"} {
		if _, err := ParseTaskStatus(valid); err != nil {
			t.Errorf("ParseTaskStatus(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "done", "NOT_STARTED", "Paused"} {
		if _, err := ParseTaskStatus(invalid); err == nil {
			t.Errorf("ParseTaskStatus(%q) expected error", invalid)
		}
	}
}

func TestParseTaskPriority(t *testing.T) {
	for _, valid := range []string{"Low", "Moderate", "Extreme"} {
		if _, err := ParseTaskPriority(valid); err != nil {
			t.Errorf("ParseTaskPriority(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "low", "High"} {
		if _, err := ParseTaskPriority(invalid); err == nil {
			t.Errorf("ParseTaskPriority(%q) expected error", invalid)
		}
	}
}

func TestTaskPatchIsEmpty(t *testing.T) {
	if !(TaskPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}

	title := "new title"
	if (TaskPatch{Title: &title}).IsEmpty() {
		t.Error("patch with title should not be empty")
	}

	status := StatusDone
	if (TaskPatch{Status: &status}).IsEmpty() {
		t.Error("patch with status should not be empty")
	}
}
