package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPredictor struct {
	class int
	err   error
}

func (p stubPredictor) Predict(_ []float64) (int, error) { return p.class, p.err }

type stubDecoder []string

func (d stubDecoder) Decode(class int) (string, error) {
	if class < 0 || class >= len(d) {
		return "", fmt.Errorf("class %d out of range", class)
	}
	return d[class], nil
}

// stubCapability forces a fixed label per category.
func stubCapability(resource, inter, prio, exec string) Capability {
	model := func(label string) CategoryModel {
		return CategoryModel{
			Predictor: stubPredictor{class: 0},
			Decoder:   stubDecoder{label},
		}
	}
	return Capability{
		CategoryResource:      model(resource),
		CategoryInteractivity: model(inter),
		CategoryPriority:      model(prio),
		CategoryExecution:     model(exec),
	}
}

func TestClassify_SetsAllFourLabels(t *testing.T) {
	c := NewClassifier(stubCapability(
		ResourceCPUBound, InteractivityInteractive, PriorityHigh, ExecutionShort))
	task := NewTask(1, "t", 0, FeatureMap{})

	c.Classify(task)

	assert.Equal(t, ResourceCPUBound, task.ResourceType)
	assert.Equal(t, InteractivityInteractive, task.Interactivity)
	assert.Equal(t, PriorityHigh, task.PriorityClass)
	assert.Equal(t, ExecutionShort, task.ExecutionClass)
}

func TestClassify_PredictorFailureFallsBackPerCategory(t *testing.T) {
	// GIVEN a capability whose resource predictor fails
	capability := stubCapability(
		ResourceCPUBound, InteractivityInteractive, PriorityHigh, ExecutionShort)
	capability[CategoryResource] = CategoryModel{
		Predictor: stubPredictor{err: errors.New("model not loaded")},
		Decoder:   stubDecoder{ResourceCPUBound},
	}
	c := NewClassifier(capability)
	task := NewTask(1, "t", 0, FeatureMap{})

	// WHEN classified
	c.Classify(task)

	// THEN only the failing category falls back to its default
	assert.Equal(t, ResourceMixed, task.ResourceType)
	assert.Equal(t, InteractivityInteractive, task.Interactivity)
	assert.Equal(t, PriorityHigh, task.PriorityClass)
	assert.Equal(t, ExecutionShort, task.ExecutionClass)
}

func TestClassify_DecoderFailureFallsBack(t *testing.T) {
	capability := stubCapability(
		ResourceCPUBound, InteractivityInteractive, PriorityHigh, ExecutionShort)
	capability[CategoryExecution] = CategoryModel{
		Predictor: stubPredictor{class: 99},
		Decoder:   stubDecoder{ExecutionShort},
	}
	c := NewClassifier(capability)
	task := NewTask(1, "t", 0, FeatureMap{})

	c.Classify(task)
	assert.Equal(t, ExecutionMedium, task.ExecutionClass)
}

func TestClassify_NilCapabilityUsesAllDefaults(t *testing.T) {
	c := NewClassifier(nil)
	task := NewTask(1, "t", 0, FeatureMap{})

	c.Classify(task)

	assert.Equal(t, ResourceMixed, task.ResourceType)
	assert.Equal(t, InteractivityOther, task.Interactivity)
	assert.Equal(t, PriorityMedium, task.PriorityClass)
	assert.Equal(t, ExecutionMedium, task.ExecutionClass)
}
