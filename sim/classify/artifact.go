package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	sim "github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim"
)

// artifact is the on-disk JSON model format, one file per category.
type artifact struct {
	Features     []string `json:"features"`
	Labels       []string `json:"labels"`
	Rules        []Rule   `json:"rules"`
	DefaultClass int      `json:"default_class"`
}

// Load reads the four category artifacts (<category>.json) from dir and
// builds a classifier capability. Labels outside the category's known set
// are rejected.
func Load(dir string) (sim.Capability, error) {
	knownLabels := map[sim.Category][]string{
		sim.CategoryResource:      {sim.ResourceCPUBound, sim.ResourceMixed, sim.ResourceIOBound},
		sim.CategoryInteractivity: {sim.InteractivityRealTime, sim.InteractivityInteractive, sim.InteractivityOther, sim.InteractivityBackground, sim.InteractivityBatch},
		sim.CategoryPriority:      {sim.PriorityHigh, sim.PriorityMedium, sim.PriorityLow},
		sim.CategoryExecution:     {sim.ExecutionShort, sim.ExecutionMedium, sim.ExecutionLong},
	}
	capability := make(sim.Capability, len(sim.Categories))
	for _, cat := range sim.Categories {
		path := filepath.Join(dir, string(cat)+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading model artifact for %s: %w", cat, err)
		}
		var art artifact
		if err := json.Unmarshal(data, &art); err != nil {
			return nil, fmt.Errorf("parsing model artifact %s: %w", path, err)
		}
		if len(art.Labels) == 0 {
			return nil, fmt.Errorf("model artifact %s has no labels", path)
		}
		for _, label := range art.Labels {
			if !slices.Contains(knownLabels[cat], label) {
				return nil, fmt.Errorf("model artifact %s has unknown label %q", path, label)
			}
		}
		if art.DefaultClass < 0 || art.DefaultClass >= len(art.Labels) {
			return nil, fmt.Errorf("model artifact %s: default class %d out of range", path, art.DefaultClass)
		}
		predictor, err := NewDecisionList(art.Features, art.Rules, art.DefaultClass)
		if err != nil {
			return nil, fmt.Errorf("building predictor from %s: %w", path, err)
		}
		capability[cat] = sim.CategoryModel{
			Features:  art.Features,
			Predictor: predictor,
			Decoder:   Labels(art.Labels),
		}
	}
	return capability, nil
}

// Builtin returns a heuristic capability over the collector's columns, so
// the AI variant runs end to end without trained artifacts.
func Builtin() sim.Capability {
	return sim.Capability{
		sim.CategoryResource:      builtinModel(builtinResource),
		sim.CategoryInteractivity: builtinModel(builtinInteractivity),
		sim.CategoryPriority:      builtinModel(builtinPriority),
		sim.CategoryExecution:     builtinModel(builtinExecution),
	}
}

var builtinResource = artifact{
	Features: []string{"CPU_Usage_%", "IO_Read_Bytes", "IO_Write_Bytes", "Total_Time_Ticks"},
	Labels:   []string{sim.ResourceCPUBound, sim.ResourceIOBound, sim.ResourceMixed},
	Rules: []Rule{
		{Feature: "CPU_Usage_%", Op: OpGT, Threshold: 60, Class: 0},
		{Feature: "IO_Read_Bytes", Op: OpGT, Threshold: 1e7, Class: 1},
		{Feature: "IO_Write_Bytes", Op: OpGT, Threshold: 1e7, Class: 1},
	},
	DefaultClass: 2,
}

var builtinInteractivity = artifact{
	Features: []string{"Scheduling_Policy", "Nice", "Voluntary_ctxt_switches", "Nonvoluntary_ctxt_switches"},
	Labels: []string{
		sim.InteractivityRealTime, sim.InteractivityInteractive,
		sim.InteractivityOther, sim.InteractivityBackground, sim.InteractivityBatch,
	},
	Rules: []Rule{
		{Feature: "Scheduling_Policy", Op: OpGE, Threshold: 1, Class: 0},
		{Feature: "Voluntary_ctxt_switches", Op: OpGT, Threshold: 1000, Class: 1},
		{Feature: "Nice", Op: OpGT, Threshold: 10, Class: 4},
		{Feature: "Nice", Op: OpGT, Threshold: 0, Class: 3},
	},
	DefaultClass: 2,
}

var builtinPriority = artifact{
	Features: []string{"Nice", "Priority"},
	Labels:   []string{sim.PriorityHigh, sim.PriorityMedium, sim.PriorityLow},
	Rules: []Rule{
		{Feature: "Nice", Op: OpLT, Threshold: 0, Class: 0},
		{Feature: "Nice", Op: OpGT, Threshold: 9, Class: 2},
	},
	DefaultClass: 1,
}

var builtinExecution = artifact{
	Features: []string{"Total_Time_Ticks"},
	Labels:   []string{sim.ExecutionShort, sim.ExecutionMedium, sim.ExecutionLong},
	Rules: []Rule{
		{Feature: "Total_Time_Ticks", Op: OpLT, Threshold: 100, Class: 0},
		{Feature: "Total_Time_Ticks", Op: OpGT, Threshold: 10000, Class: 2},
	},
	DefaultClass: 1,
}

func builtinModel(art artifact) sim.CategoryModel {
	predictor, err := NewDecisionList(art.Features, art.Rules, art.DefaultClass)
	if err != nil {
		panic(fmt.Sprintf("invalid builtin model: %v", err))
	}
	return sim.CategoryModel{
		Features:  art.Features,
		Predictor: predictor,
		Decoder:   Labels(art.Labels),
	}
}
