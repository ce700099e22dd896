// Package catalog loads the deploy-time status catalog. Statuses live in a
// lookup table so labels and badge colors are data, not code; the YAML file
// seeds that table at boot.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"campusdesk/internal/models"
)

type file struct {
	Statuses []Entry `yaml:"statuses"`
}

type Entry struct {
	Value      string `yaml:"value"`
	Label      string `yaml:"label"`
	BadgeColor string `yaml:"badge_color"`
}

// Load reads the catalog file. A missing file falls back to the built-in
// default set so a bare checkout still boots.
func Load(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse status catalog: %w", err)
	}
	if len(f.Statuses) == 0 {
		return nil, fmt.Errorf("status catalog %s is empty", path)
	}
	for _, e := range f.Statuses {
		if e.Value == "" {
			return nil, fmt.Errorf("status catalog %s: entry with empty value", path)
		}
	}
	return f.Statuses, nil
}

func Default() []Entry {
	return []Entry{
		{Value: models.StatusOpen, Label: "Open", BadgeColor: "blue"},
		{Value: models.StatusReopened, Label: "Reopened", BadgeColor: "orange"},
		{Value: models.StatusInProgress, Label: "In Progress", BadgeColor: "yellow"},
		{Value: models.StatusAwaitingStudent, Label: "Awaiting Student Response", BadgeColor: "purple"},
		{Value: models.StatusForwarded, Label: "Forwarded", BadgeColor: "teal"},
		{Value: models.StatusResolved, Label: "Resolved", BadgeColor: "green"},
		{Value: models.StatusClosed, Label: "Closed", BadgeColor: "gray"},
	}
}
