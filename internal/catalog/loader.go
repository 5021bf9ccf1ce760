// Package catalog loads authored roadmap definitions from YAML files.
// It stands in for the admin flowchart editor: content is created and
// edited there, the learner-facing service only reads it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/storage"
)

// Loader manages loading and caching of roadmap definitions
type Loader struct {
	mu       sync.RWMutex
	roadmaps map[string]*models.Roadmap
}

// NewLoader creates an empty catalog loader
func NewLoader() *Loader {
	return &Loader{roadmaps: make(map[string]*models.Roadmap)}
}

// LoadFromDir loads all YAML roadmap files from a directory.
// A file that fails to parse is skipped with a warning; one bad
// record must not blank the whole catalog.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading roadmaps from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load roadmap", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("roadmaps loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single roadmap definition from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var rf roadmapFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if rf.ID == "" {
		base := filepath.Base(path)
		rf.ID = base[:len(base)-len(filepath.Ext(base))]
	}
	if rf.Title == "" {
		return fmt.Errorf("roadmap title is required")
	}
	if rf.Difficulty == "" {
		rf.Difficulty = "medium"
	}

	roadmap := &models.Roadmap{
		ID:            rf.ID,
		Title:         rf.Title,
		Description:   rf.Description,
		Content:       rf.Content,
		Difficulty:    rf.Difficulty,
		EstimatedTime: rf.EstimatedTime,
		Technologies:  rf.Technologies,
		Image:         rf.Image,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	for _, s := range rf.Steps {
		roadmap.Steps = append(roadmap.Steps, models.Step{
			Title:       s.Title,
			Description: s.Description,
			Resources:   s.Resources,
		})
	}

	// The flowchart is optional; its absence just means the detail
	// view degrades to the linear steps.
	if rf.Flowchart != nil {
		fc, err := flowchartJSON(rf.Flowchart)
		if err != nil {
			return fmt.Errorf("failed to encode flowchart: %w", err)
		}
		roadmap.FlowchartData = fc
	}

	l.mu.Lock()
	l.roadmaps[roadmap.ID] = roadmap
	l.mu.Unlock()

	slog.Info("roadmap loaded", "id", roadmap.ID, "title", roadmap.Title,
		"steps", len(roadmap.Steps), "has_flowchart", roadmap.HasFlowchart())
	return nil
}

// Get retrieves a loaded roadmap by id
func (l *Loader) Get(id string) *models.Roadmap {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.roadmaps[id]
}

// List returns all loaded roadmaps
func (l *Loader) List() []*models.Roadmap {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.Roadmap, 0, len(l.roadmaps))
	for _, r := range l.roadmaps {
		result = append(result, r)
	}
	return result
}

// Seed inserts loaded roadmaps into the repository, skipping ids
// already present so counters and ratings survive restarts.
func (l *Loader) Seed(ctx context.Context, repo storage.Repository) error {
	for _, r := range l.List() {
		existing, err := repo.GetRoadmap(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to check roadmap %s: %w", r.ID, err)
		}
		if existing != nil {
			continue
		}
		if err := repo.CreateRoadmap(ctx, r); err != nil {
			return fmt.Errorf("failed to seed roadmap %s: %w", r.ID, err)
		}
		slog.Info("roadmap seeded", "id", r.ID)
	}
	return nil
}

func flowchartJSON(fc *flowchartFile) (json.RawMessage, error) {
	type jsonNode struct {
		ID          string   `json:"id"`
		Label       string   `json:"label"`
		Description string   `json:"description,omitempty"`
		Content     string   `json:"content,omitempty"`
		Status      string   `json:"status,omitempty"`
		Completion  *int     `json:"completion,omitempty"`
		Difficulty  string   `json:"difficulty,omitempty"`
		TimeSpent   string   `json:"timeSpent,omitempty"`
		Resources   []string `json:"resources,omitempty"`
		RedirectURL string   `json:"redirectUrl,omitempty"`
	}
	type jsonEdge struct {
		Source string `json:"source"`
		Target string `json:"target"`
	}

	out := struct {
		Nodes []jsonNode `json:"nodes"`
		Edges []jsonEdge `json:"edges"`
	}{}

	for _, n := range fc.Nodes {
		out.Nodes = append(out.Nodes, jsonNode{
			ID:          n.ID,
			Label:       n.Label,
			Description: n.Description,
			Content:     n.Content,
			Status:      n.Status,
			Completion:  n.Completion,
			Difficulty:  n.Difficulty,
			TimeSpent:   n.TimeSpent,
			Resources:   n.Resources,
			RedirectURL: n.RedirectURL,
		})
	}
	for _, e := range fc.Edges {
		out.Edges = append(out.Edges, jsonEdge{Source: e.Source, Target: e.Target})
	}

	return json.Marshal(out)
}

// --- YAML file structs ---

type roadmapFile struct {
	ID            string         `yaml:"id"`
	Title         string         `yaml:"title"`
	Description   string         `yaml:"description"`
	Content       string         `yaml:"content"`
	Difficulty    string         `yaml:"difficulty"`
	EstimatedTime string         `yaml:"estimated_time"`
	Technologies  []string       `yaml:"technologies"`
	Image         string         `yaml:"image"`
	Steps         []stepFile     `yaml:"steps"`
	Flowchart     *flowchartFile `yaml:"flowchart"`
}

type stepFile struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Resources   []string `yaml:"resources"`
}

type flowchartFile struct {
	Nodes []nodeFile `yaml:"nodes"`
	Edges []edgeFile `yaml:"edges"`
}

type nodeFile struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Content     string   `yaml:"content"`
	Status      string   `yaml:"status"`
	Completion  *int     `yaml:"completion"`
	Difficulty  string   `yaml:"difficulty"`
	TimeSpent   string   `yaml:"time_spent"`
	Resources   []string `yaml:"resources"`
	RedirectURL string   `yaml:"redirect_url"`
}

type edgeFile struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}
