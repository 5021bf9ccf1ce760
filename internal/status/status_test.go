package status

import (
	"testing"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

func TestAppearanceForStatus(t *testing.T) {
	done := For(models.StatusDone)
	if done.Background != "#dcfce7" || done.Border != "#22c55e" || done.Text != "#166534" {
		t.Errorf("unexpected done palette: %+v", done)
	}
	if done.Icon != "check-circle" || done.Label != "Done" {
		t.Errorf("unexpected done icon/label: %+v", done)
	}

	inProgress := For(models.StatusInProgress)
	if inProgress.Background != "#fef3c7" || inProgress.Border != "#f59e0b" || inProgress.Text != "#92400e" {
		t.Errorf("unexpected in-progress palette: %+v", inProgress)
	}
	if inProgress.Icon != "bolt" || inProgress.Label != "In Progress" {
		t.Errorf("unexpected in-progress icon/label: %+v", inProgress)
	}

	todo := For(models.StatusTodo)
	if todo.Background != "#dbeafe" || todo.Border != "#3b82f6" || todo.Text != "#1e40af" {
		t.Errorf("unexpected todo palette: %+v", todo)
	}
	if todo.Icon != "circle-outline" || todo.Label != "To Do" {
		t.Errorf("unexpected todo icon/label: %+v", todo)
	}

	// Each status must get a distinct treatment
	if done == inProgress || done == todo || inProgress == todo {
		t.Error("statuses must map to distinct appearances")
	}
}

func TestAppearanceForUnrecognizedStatus(t *testing.T) {
	// Unknown values fall soft into the todo treatment, never an error
	for _, s := range []models.NodeStatus{"", "finished", "DONE", "complete"} {
		if got := For(s); got != For(models.StatusTodo) {
			t.Errorf("status %q: expected todo appearance, got %+v", s, got)
		}
	}
}

func TestOrdinalLabel(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"topic-1", "1"},
		{"topic-12", "12"},
		{"deep-dive-topic-7", "7"},
		{"topic-007", "7"},
		{"topic-0", "0"},
		{"topic", "1"},
		{"topic-", "1"},
		{"topic-abc", "1"},
		{"topic-1a", "1"},
		{"", "1"},
	}

	for _, c := range cases {
		if got := OrdinalLabel(c.id); got != c.want {
			t.Errorf("OrdinalLabel(%q) = %q, want %q", c.id, got, c.want)
		}
	}
}
