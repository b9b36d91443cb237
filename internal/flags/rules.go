// Package flags scans lease text for risk-relevant clauses. A RuleSet holds
// the detection rules; Detect runs every rule over a document and returns one
// Finding per matching rule, each carrying a bounded evidence snippet.
//
// All functions in this package are pure. A RuleSet is read-only once built
// and may be shared across goroutines.
package flags

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// Severity classifies how much attention a finding deserves.
type Severity string

const (
	SeverityLow     Severity = "green"  // low risk, standard practice
	SeverityCaution Severity = "yellow" // worth reading carefully
	SeverityHigh    Severity = "red"    // likely to cost the renter money
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityCaution, SeverityHigh:
		return true
	}
	return false
}

// Rule is a single detection definition.
type Rule struct {
	ID           string   `yaml:"id" json:"id"`
	Label        string   `yaml:"label" json:"label"`
	Severity     Severity `yaml:"severity" json:"severity"`
	Keywords     []string `yaml:"keywords" json:"keywords"`
	Pattern      string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	WhyItMatters string   `yaml:"why_it_matters" json:"whyItMatters"`

	re         *regexp.Regexp // nil when Pattern is empty or failed to compile
	patternErr error
}

// PatternErr returns the compile error of the rule's pattern, if any.
func (r *Rule) PatternErr() error { return r.patternErr }

// RuleSet is an ordered, immutable collection of rules.
type RuleSet struct {
	rules []Rule
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

//go:embed rules.yaml
var defaultRulesYAML []byte

var (
	defaultOnce  sync.Once
	defaultRules *RuleSet
)

// DefaultRules returns the built-in lease rules. The embedded file is decoded
// once; a decode failure is a build defect and panics.
func DefaultRules() *RuleSet {
	defaultOnce.Do(func() {
		rs, err := ParseRules(defaultRulesYAML)
		if err != nil {
			panic(fmt.Sprintf("flags: embedded rules: %v", err))
		}
		defaultRules = rs
	})
	return defaultRules
}

// LoadRules reads a YAML rule file from disk.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	rs, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return rs, nil
}

// ParseRules decodes and validates a YAML rule document and compiles every
// pattern. Structural problems (missing id, duplicate id, unknown severity,
// nothing to match on) are errors. A pattern that does not compile is not:
// the rule is kept and simply never produces a regex match.
func ParseRules(data []byte) (*RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return NewRuleSet(f.Rules)
}

// NewRuleSet validates rules and compiles their patterns. The slice is copied.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	out := make([]Rule, len(rules))
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: empty id", i+1)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("rule %q: duplicate id", r.ID)
		}
		seen[r.ID] = true
		if !r.Severity.Valid() {
			return nil, fmt.Errorf("rule %q: unknown severity %q", r.ID, r.Severity)
		}
		if len(r.Keywords) == 0 && r.Pattern == "" {
			return nil, fmt.Errorf("rule %q: needs keywords or a pattern", r.ID)
		}

		r.Keywords = append([]string(nil), r.Keywords...)
		r.re, r.patternErr = nil, nil
		if r.Pattern != "" {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				slog.Warn("rules: invalid pattern, regex matching disabled for rule", "rule", r.ID, "err", err)
				r.patternErr = err
			} else {
				r.re = re
			}
		}
		out[i] = r
	}
	return &RuleSet{rules: out}, nil
}

// Rules returns a copy of the rules in declaration order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Invalid returns the ids of rules whose pattern failed to compile.
func (rs *RuleSet) Invalid() []string {
	var ids []string
	for i := range rs.rules {
		if rs.rules[i].patternErr != nil {
			ids = append(ids, rs.rules[i].ID)
		}
	}
	return ids
}
