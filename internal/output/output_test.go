package output

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONResultShape(t *testing.T) {
	result := JSONResult{
		OK:      true,
		Command: "extract",
		Version: "test",
		Data:    []string{"a", "b"},
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["ok"] != true {
		t.Error("ok field should be true")
	}
	if decoded["command"] != "extract" {
		t.Errorf("command = %v, want extract", decoded["command"])
	}
	if _, present := decoded["error"]; present {
		t.Error("error field should be omitted on success")
	}
}

func TestJSONResultErrorFields(t *testing.T) {
	result := JSONResult{
		OK:      false,
		Command: "extract",
		Version: "test",
		Error:   "file not found",
		Code:    ExitUserError,
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"error":"file not found"`) {
		t.Errorf("error field missing from %s", raw)
	}
	if strings.Contains(string(raw), `"data"`) {
		t.Error("data field should be omitted on error")
	}
}

func TestShouldPageNonTerminal(t *testing.T) {
	// Test runners never attach a terminal to stdout, so paging must be off
	// regardless of content length.
	long := strings.Repeat("line\n", 500)
	if ShouldPage(long, 40) {
		t.Error("ShouldPage should be false when stdout is not a terminal")
	}
}
