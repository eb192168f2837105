// Package classify provides concrete classifier capabilities for the
// simulator: decision-list predictors loadable from JSON artifacts, plus a
// built-in heuristic capability over the collector's trace columns.
package classify

import (
	"fmt"

	sim "github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim"
)

// Op is a rule comparison operator.
type Op string

const (
	OpGT Op = "gt"
	OpGE Op = "ge"
	OpLT Op = "lt"
	OpLE Op = "le"
	OpEQ Op = "eq"
)

// Rule is one threshold test: feature <op> threshold → class.
type Rule struct {
	Feature   string  `json:"feature"`
	Op        Op      `json:"op"`
	Threshold float64 `json:"threshold"`
	Class     int     `json:"class"`

	index int // resolved feature position
}

func (r Rule) matches(v float64) bool {
	switch r.Op {
	case OpGT:
		return v > r.Threshold
	case OpGE:
		return v >= r.Threshold
	case OpLT:
		return v < r.Threshold
	case OpLE:
		return v <= r.Threshold
	case OpEQ:
		return v == r.Threshold
	default:
		return false
	}
}

// DecisionList predicts a class index by evaluating ordered threshold rules
// against a feature vector; the first matching rule wins, otherwise the
// default class. It is a faithful export format for shallow tree models.
type DecisionList struct {
	features     []string
	rules        []Rule
	defaultClass int
}

// NewDecisionList builds a predictor over the given vector layout. Every
// rule must reference a known feature and a known operator.
func NewDecisionList(features []string, rules []Rule, defaultClass int) (*DecisionList, error) {
	index := make(map[string]int, len(features))
	for i, name := range features {
		index[name] = i
	}
	resolved := make([]Rule, len(rules))
	for i, r := range rules {
		pos, ok := index[r.Feature]
		if !ok {
			return nil, fmt.Errorf("rule %d references unknown feature %q", i, r.Feature)
		}
		switch r.Op {
		case OpGT, OpGE, OpLT, OpLE, OpEQ:
		default:
			return nil, fmt.Errorf("rule %d has unknown operator %q", i, r.Op)
		}
		r.index = pos
		resolved[i] = r
	}
	return &DecisionList{features: features, rules: resolved, defaultClass: defaultClass}, nil
}

// Features returns the ordered vector layout the predictor expects.
func (d *DecisionList) Features() []string { return d.features }

// Predict implements sim.Predictor.
func (d *DecisionList) Predict(vec []float64) (int, error) {
	if len(vec) != len(d.features) {
		return 0, fmt.Errorf("feature vector has %d values, want %d", len(vec), len(d.features))
	}
	for _, r := range d.rules {
		if r.matches(vec[r.index]) {
			return r.Class, nil
		}
	}
	return d.defaultClass, nil
}

// Labels decodes class indices to label strings.
type Labels []string

// Decode implements sim.Decoder.
func (l Labels) Decode(class int) (string, error) {
	if class < 0 || class >= len(l) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", class, len(l))
	}
	return l[class], nil
}

var _ sim.Predictor = (*DecisionList)(nil)
var _ sim.Decoder = Labels(nil)
