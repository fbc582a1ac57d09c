// Package rules implements the trigger-rule registry that turns user input
// into canned or computed replies. Matching is pure and synchronous; anything
// the registry cannot answer falls through to the command relay.
package rules

import (
	"fmt"
	"strings"
)

// MatchType selects how a keyword is compared against normalized input.
type MatchType int

const (
	// Contains fires when the keyword occurs anywhere in the input.
	Contains MatchType = iota
	// Exact fires only when the input equals the keyword.
	Exact
)

func (m MatchType) String() string {
	switch m {
	case Contains:
		return "contains"
	case Exact:
		return "exact"
	default:
		return "unknown"
	}
}

// ParseMatchType maps a config string to a MatchType. Empty defaults to
// Contains.
func ParseMatchType(s string) (MatchType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contains":
		return Contains, nil
	case "exact":
		return Exact, nil
	default:
		return Contains, fmt.Errorf("unknown match type %q", s)
	}
}

// Responder produces a rule's reply text at match time. Static replies and
// computed replies (current time and the like) share this interface so the
// registry never inspects what kind it holds.
type Responder interface {
	Respond() string
}

// Static is a fixed reply.
type Static string

func (s Static) Respond() string { return string(s) }

// Dynamic computes the reply when the rule fires. It must be safe to call
// repeatedly.
type Dynamic func() string

func (d Dynamic) Respond() string { return d() }

// Rule is one trigger: an ordered keyword set, a match type and a responder.
// Rules are immutable once registered.
type Rule struct {
	Keywords []string
	Match    MatchType
	Response Responder
}

// Result is the outcome of a registry scan: a hit carries the produced reply.
type Result struct {
	Matched bool
	Reply   string
}

// Miss is the zero Result, returned when no rule fires.
var Miss = Result{}

// Registry holds rules in registration order. Order is load-bearing: the
// first rule whose keyword hits wins, so more specific rules must be
// registered before generic ones. The registry is read-only after New.
type Registry struct {
	rules []Rule
}

// New builds a registry from rules in the given order. Keywords are
// normalized to lower case up front. A rule with no usable keywords or a nil
// responder is rejected.
func New(rules ...Rule) (*Registry, error) {
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r.Response == nil {
			return nil, fmt.Errorf("rule %d: nil responder", i)
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("rule %d: no keywords", i)
		}
		out = append(out, Rule{Keywords: keywords, Match: r.Match, Response: r.Response})
	}
	return &Registry{rules: out}, nil
}

// Len reports the number of registered rules.
func (r *Registry) Len() int { return len(r.rules) }

// Match scans the rules in registration order and returns the first hit.
// Input is trimmed and lower-cased for comparison; empty input is an
// immediate miss. Match never fails and never mutates the registry, and the
// reply is produced fresh on every hit.
func (r *Registry) Match(input string) Result {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Miss
	}

	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			var hit bool
			switch rule.Match {
			case Exact:
				hit = normalized == kw
			default:
				hit = strings.Contains(normalized, kw)
			}
			if hit {
				return Result{Matched: true, Reply: rule.Response.Respond()}
			}
		}
	}
	return Miss
}
