// Package status maps node learning states to their visual encoding.
package status

import (
	"strings"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// Appearance is the presentation triple plus icon/label pair for a node state
type Appearance struct {
	Background string `json:"background"`
	Border     string `json:"border"`
	Text       string `json:"text"`
	Icon       string `json:"icon"`
	Label      string `json:"label"`
}

var (
	doneAppearance = Appearance{
		Background: "#dcfce7",
		Border:     "#22c55e",
		Text:       "#166534",
		Icon:       "check-circle",
		Label:      "Done",
	}
	inProgressAppearance = Appearance{
		Background: "#fef3c7",
		Border:     "#f59e0b",
		Text:       "#92400e",
		Icon:       "bolt",
		Label:      "In Progress",
	}
	todoAppearance = Appearance{
		Background: "#dbeafe",
		Border:     "#3b82f6",
		Text:       "#1e40af",
		Icon:       "circle-outline",
		Label:      "To Do",
	}
)

// For returns the visual encoding for a node status.
// Unrecognized values fall soft into the todo treatment; that is the
// default-case policy, not an error.
func For(s models.NodeStatus) Appearance {
	switch s {
	case models.StatusDone:
		return doneAppearance
	case models.StatusInProgress:
		return inProgressAppearance
	default:
		return todoAppearance
	}
}

// OrdinalLabel derives the numeric badge shown on a node from the
// "<prefix>-<n>" id convention, falling back to "1" when unparsable.
// Kept behind this single function so an explicit order field could
// replace the parse without touching renderer code.
func OrdinalLabel(nodeID string) string {
	i := strings.LastIndex(nodeID, "-")
	if i < 0 || i == len(nodeID)-1 {
		return "1"
	}
	suffix := nodeID[i+1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "1"
		}
	}
	return strings.TrimLeft(suffix, "0") + zeroFallback(suffix)
}

// zeroFallback keeps "0" (and "000") rendering as "0" after trimming
func zeroFallback(suffix string) string {
	if strings.Trim(suffix, "0") == "" {
		return "0"
	}
	return ""
}
