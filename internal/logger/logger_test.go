package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNew_Levels(t *testing.T) {
	if _, err := New("verbose", "text"); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
	log, err := New("warn", "")
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel().String() != "warning" {
		t.Errorf("unexpected level %s", log.GetLevel())
	}
}

func TestForRun_Fields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "info", "json")
	if err != nil {
		t.Fatal(err)
	}
	ForRun(log, "gold").Info("running job")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["job"] != "gold" || line["msg"] != "running job" {
		t.Errorf("unexpected fields %v", line)
	}
	id, _ := line["run_id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("run_id %q is not a uuid: %v", id, err)
	}
}

func TestForRun_DistinctIDs(t *testing.T) {
	log, _ := New("info", "text")
	a := ForRun(log, "x").Data["run_id"]
	b := ForRun(log, "x").Data["run_id"]
	if a == b {
		t.Error("each run should get its own id")
	}
}
