// Package registry resolves free-text action strings to timeline categories.
//
// Actions follow a "prefix_detail" convention (e.g. "update_i18n_config").
// The registry matches the longest known prefix and classifies the event by
// it; the remainder becomes the detail, scanned for a domain keyword. The
// prefix table is user-editable on the server side, so the timeline core
// treats any resolver output as an advisory snapshot and re-resolves on
// every normalization pass.
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ibare/baden/internal/core/event"
)

// Prefix is one entry of the action-prefix table.
type Prefix struct {
	Prefix    string `yaml:"prefix"`
	Category  string `yaml:"category"`
	Label     string `yaml:"label"`
	Icon      string `yaml:"icon,omitempty"`
	SortOrder int    `yaml:"sort_order,omitempty"`
}

// Resolved is the outcome of resolving an action/type pair.
type Resolved struct {
	Prefix   string
	Detail   string
	Category event.Category
	Label    string
	Icon     string
	Keyword  string
}

// Resolver maps an action (possibly empty) and an event type to a Resolved
// classification. The timeline normalizer accepts a nil Resolver and falls
// back to the static type table.
type Resolver func(action, eventType string) Resolved

// detailKeywords are domain tokens extracted from the detail portion of an
// action for inline display.
var detailKeywords = []string{
	"i18n", "json", "auth", "css", "config", "route", "api", "locale",
	"type", "test", "rule", "schema", "db", "component", "hook", "style",
	"error", "log", "file", "ts", "html", "yaml", "env", "token",
	"session", "event", "user", "project", "page", "layout", "state",
	"query", "model", "service", "util", "lib", "index", "server",
	"client", "build", "deploy", "docker", "ci", "lint", "format",
}

func extractDetailKeyword(detail string) string {
	if detail == "" {
		return ""
	}
	tokens := strings.Split(strings.ToLower(detail), "_")
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}
	for _, kw := range detailKeywords {
		if tokenSet[kw] {
			return kw
		}
	}
	return ""
}

// Registry holds a prefix table sorted for longest-prefix matching.
type Registry struct {
	prefixes []Prefix
}

// New creates a registry from a prefix table. Entries with unknown
// categories are dropped.
func New(prefixes []Prefix) *Registry {
	valid := make([]Prefix, 0, len(prefixes))
	for _, p := range prefixes {
		if p.Prefix == "" || !event.ValidCategory(p.Category) {
			continue
		}
		valid = append(valid, p)
	}
	// Longest prefix first so "invoke_rule" beats "invoke"
	sort.SliceStable(valid, func(i, j int) bool {
		if len(valid[i].Prefix) != len(valid[j].Prefix) {
			return len(valid[i].Prefix) > len(valid[j].Prefix)
		}
		return valid[i].SortOrder < valid[j].SortOrder
	})
	return &Registry{prefixes: valid}
}

// NewDefault creates a registry with the built-in prefix table.
func NewDefault() *Registry {
	return New(defaultPrefixes)
}

// LoadFile creates a registry from a yaml prefix table file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefix table: %w", err)
	}
	var doc struct {
		Prefixes []Prefix `yaml:"prefixes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse prefix table: %w", err)
	}
	return New(doc.Prefixes), nil
}

// Resolve classifies an action/type pair. When the action matches a known
// prefix (exactly, or followed by an underscore) the prefix entry wins;
// otherwise the static type table decides the category.
func (r *Registry) Resolve(action, eventType string) Resolved {
	if action != "" {
		for _, p := range r.prefixes {
			if action == p.Prefix || strings.HasPrefix(action, p.Prefix+"_") {
				detail := ""
				if action != p.Prefix {
					detail = action[len(p.Prefix)+1:]
				}
				return Resolved{
					Prefix:   p.Prefix,
					Detail:   detail,
					Category: event.Category(p.Category),
					Label:    p.Label,
					Icon:     p.Icon,
					Keyword:  extractDetailKeyword(detail),
				}
			}
		}
	}

	// No matching prefix: classify by type, label from the action when present
	label := action
	if label == "" {
		label = strings.ReplaceAll(eventType, "_", " ")
	}
	detail := action
	if detail == "" {
		detail = eventType
	}
	return Resolved{
		Detail:   detail,
		Category: event.CategoryForType(eventType),
		Label:    label,
	}
}

// ResolverFunc returns the registry's Resolve as a Resolver.
func (r *Registry) ResolverFunc() Resolver {
	return r.Resolve
}

var defaultPrefixes = []Prefix{
	{Prefix: "read", Category: "exploration", Label: "Read", Icon: "BookOpen"},
	{Prefix: "search", Category: "exploration", Label: "Search", Icon: "MagnifyingGlass"},
	{Prefix: "find", Category: "exploration", Label: "Find", Icon: "MagnifyingGlass"},
	{Prefix: "check", Category: "exploration", Label: "Check", Icon: "Eye"},
	{Prefix: "list", Category: "exploration", Label: "List", Icon: "List"},
	{Prefix: "get", Category: "exploration", Label: "Get", Icon: "Eye"},
	{Prefix: "view", Category: "exploration", Label: "View", Icon: "Eye"},
	{Prefix: "plan", Category: "planning", Label: "Plan", Icon: "MapTrifold"},
	{Prefix: "analyze", Category: "planning", Label: "Analyze", Icon: "ChartLine"},
	{Prefix: "analysis", Category: "planning", Label: "Analysis", Icon: "ChartLine"},
	{Prefix: "decide", Category: "planning", Label: "Decide", Icon: "GitBranch"},
	{Prefix: "design", Category: "planning", Label: "Design", Icon: "PencilRuler"},
	{Prefix: "evaluate", Category: "planning", Label: "Evaluate", Icon: "Scales"},
	{Prefix: "review", Category: "planning", Label: "Review", Icon: "MagnifyingGlassPlus"},
	{Prefix: "task", Category: "planning", Label: "Task", Icon: "ClipboardText"},
	{Prefix: "add", Category: "implementation", Label: "Add", Icon: "Plus"},
	{Prefix: "create", Category: "implementation", Label: "Create", Icon: "FilePlus"},
	{Prefix: "update", Category: "implementation", Label: "Update", Icon: "PencilSimple"},
	{Prefix: "modify", Category: "implementation", Label: "Modify", Icon: "PencilSimple"},
	{Prefix: "remove", Category: "implementation", Label: "Remove", Icon: "Minus"},
	{Prefix: "delete", Category: "implementation", Label: "Delete", Icon: "Trash"},
	{Prefix: "refactor", Category: "implementation", Label: "Refactor", Icon: "ArrowsClockwise"},
	{Prefix: "implement", Category: "implementation", Label: "Implement", Icon: "Code"},
	{Prefix: "write", Category: "implementation", Label: "Write", Icon: "PencilLine"},
	{Prefix: "configure", Category: "implementation", Label: "Configure", Icon: "Gear"},
	{Prefix: "set", Category: "implementation", Label: "Set", Icon: "Gear"},
	{Prefix: "install", Category: "implementation", Label: "Install", Icon: "Download"},
	{Prefix: "move", Category: "implementation", Label: "Move", Icon: "ArrowRight"},
	{Prefix: "rename", Category: "implementation", Label: "Rename", Icon: "TextAa"},
	{Prefix: "deliver", Category: "implementation", Label: "Deliver", Icon: "PaperPlaneRight"},
	{Prefix: "invoke", Category: "implementation", Label: "Invoke", Icon: "Lightning"},
	{Prefix: "test", Category: "verification", Label: "Test", Icon: "Flask"},
	{Prefix: "verify", Category: "verification", Label: "Verify", Icon: "CheckCircle"},
	{Prefix: "validate", Category: "verification", Label: "Validate", Icon: "ShieldCheck"},
	{Prefix: "run", Category: "verification", Label: "Run", Icon: "Play"},
	{Prefix: "build", Category: "verification", Label: "Build", Icon: "Hammer"},
	{Prefix: "report", Category: "verification", Label: "Report", Icon: "FileText"},
	{Prefix: "completed", Category: "verification", Label: "Completed", Icon: "CheckCircle"},
	{Prefix: "fix", Category: "debugging", Label: "Fix", Icon: "Wrench"},
	{Prefix: "debug", Category: "debugging", Label: "Debug", Icon: "Bug"},
	{Prefix: "resolve", Category: "debugging", Label: "Resolve", Icon: "CheckCircle"},
	{Prefix: "apply", Category: "rule_compliance", Label: "Apply", Icon: "Check"},
	{Prefix: "enforce", Category: "rule_compliance", Label: "Enforce", Icon: "Shield"},
	{Prefix: "invoke_rule", Category: "rule_compliance", Label: "Invoke Rule", Icon: "BookBookmark"},
}
