package task

import (
	"strings"
	"testing"
	"time"
)

func TestValidateEpicSlug(t *testing.T) {
	valid := []string{"auth", "valid-name-1", "a", "a1-b2-c3", "42"}
	for _, name := range valid {
		if err := ValidateEpic(&Epic{Name: name}); err != nil {
			t.Errorf("ValidateEpic(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "Invalid Name", "UPPER", "-leading", "trailing-", "two--dashes", "under_score"}
	for _, name := range invalid {
		err := ValidateEpic(&Epic{Name: name})
		if err == nil {
			t.Errorf("ValidateEpic(%q) = nil, want ValidationError", name)
			continue
		}
		if !IsValidation(err) {
			t.Errorf("ValidateEpic(%q) returned %T, want *ValidationError", name, err)
		}
	}
}

func TestValidateTaskNameLength(t *testing.T) {
	if err := ValidateTask(&Task{Name: strings.Repeat("a", 50)}); err != nil {
		t.Fatalf("50-char name should pass: %v", err)
	}
	err := ValidateTask(&Task{Name: strings.Repeat("a", 51)})
	if err == nil {
		t.Fatal("51-char name should fail")
	}
	if !IsValidation(err) {
		t.Fatalf("got %T, want *ValidationError", err)
	}
	if err := ValidateTask(&Task{Name: ""}); err == nil {
		t.Fatal("empty name should fail")
	}
}

func TestParseStatusAndType(t *testing.T) {
	for _, s := range []string{"draft", "in-progress", "completed"} {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseStatus("done"); err == nil || !IsValidation(err) {
		t.Errorf("ParseStatus(done) = %v, want ValidationError", err)
	}
	for _, s := range []string{"feature", "fix", "refactor", "chore"} {
		if _, err := ParseType(s); err != nil {
			t.Errorf("ParseType(%q): %v", s, err)
		}
	}
	if _, err := ParseType("bug"); err == nil {
		t.Error("ParseType(bug) should fail")
	}
}

func TestNewID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := NewID()
		if len(id) != IDLength {
			t.Fatalf("id %q has length %d, want %d", id, len(id), IDLength)
		}
		for _, c := range id {
			if !strings.ContainsRune(idAlphabet, c) {
				t.Fatalf("id %q contains %q outside the alphabet", id, c)
			}
		}
		seen[id] = true
	}
	if len(seen) < 190 {
		t.Fatalf("too many collisions in 200 ids: %d unique", len(seen))
	}
}

func TestEpicSkills(t *testing.T) {
	e := &Epic{Name: "auth"}
	if !e.AddSkill("sql") {
		t.Fatal("first add should report a change")
	}
	if e.AddSkill("sql") {
		t.Fatal("duplicate add should be a no-op")
	}
	e.AddSkill("http")
	if !e.RemoveSkill("sql") {
		t.Fatal("remove of present skill should report a change")
	}
	if e.RemoveSkill("sql") {
		t.Fatal("remove of absent skill should be a no-op")
	}
	if len(e.Skills) != 1 || e.Skills[0] != "http" {
		t.Fatalf("skills = %v, want [http]", e.Skills)
	}
}

func TestSessionAddMemory(t *testing.T) {
	s := &Session{}
	if !s.AddMemory("auth") {
		t.Fatal("first add should report a change")
	}
	if s.AddMemory("auth") {
		t.Fatal("duplicate add should be a no-op")
	}
	if len(s.LoadedMemories) != 1 {
		t.Fatalf("memories = %v", s.LoadedMemories)
	}
}

func TestSortPolicies(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "old-done", Status: StatusCompleted, CreatedAt: base, CompletedAt: base.Add(1 * time.Hour)},
		{ID: "active", Status: StatusInProgress, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "new-done", Status: StatusCompleted, CreatedAt: base, CompletedAt: base.Add(3 * time.Hour)},
		{ID: "draft", Status: StatusDraft, CreatedAt: base.Add(4 * time.Hour)},
	}

	got := make([]Task, len(tasks))
	copy(got, tasks)
	Sort(got, SortCompletedFirst)
	want := []string{"new-done", "old-done", "draft", "active"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("completed-first order = %v, want %v", ids(got), want)
		}
	}

	copy(got, tasks)
	Sort(got, SortActiveFirst)
	want = []string{"draft", "active", "new-done", "old-done"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("active-first order = %v, want %v", ids(got), want)
		}
	}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestInProgressConflictMessage(t *testing.T) {
	err := NewInProgressConflict(&Task{ID: "abc123", Name: "add login"})
	if !IsConflict(err) {
		t.Fatal("expected conflict")
	}
	msg := err.Error()
	if !strings.Contains(msg, "abc123") || !strings.Contains(msg, "add login") {
		t.Fatalf("conflict message %q must name the existing task", msg)
	}
	if !strings.Contains(msg, "complete or abort") {
		t.Fatalf("conflict message %q must tell the agent how to resolve", msg)
	}
}
