// Classifier façade over the external model capability. The core never
// depends on a concrete ML framework: predictors and decoders are narrow
// interfaces, and classification failures degrade to safe default labels.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Category names one of the four classification dimensions.
type Category string

const (
	CategoryResource      Category = "resource"
	CategoryInteractivity Category = "interactivity"
	CategoryPriority      Category = "priority"
	CategoryExecution     Category = "execution"
)

// Categories lists the dimensions in classification order.
var Categories = []Category{
	CategoryResource, CategoryInteractivity, CategoryPriority, CategoryExecution,
}

// Predictor maps a feature vector to an integer class index.
// Implementations MUST NOT retain the slice.
type Predictor interface {
	Predict(features []float64) (int, error)
}

// Decoder maps a class index back to its label string.
type Decoder interface {
	Decode(class int) (string, error)
}

// CategoryModel bundles one category's ordered feature names with its
// predictor and decoder. Features defines the vector layout the predictor
// was trained on.
type CategoryModel struct {
	Features  []string
	Predictor Predictor
	Decoder   Decoder
}

// Capability is the full classifier contract: one model per category.
// It is a constructor input and must be treated as immutable afterwards.
type Capability map[Category]CategoryModel

// defaultLabels are the safe per-category fallbacks on classifier failure.
var defaultLabels = map[Category]string{
	CategoryResource:      ResourceMixed,
	CategoryInteractivity: InteractivityOther,
	CategoryPriority:      PriorityMedium,
	CategoryExecution:     ExecutionMedium,
}

// Classifier runs the four category models against a task's features.
type Classifier struct {
	models Capability
}

// NewClassifier wraps a capability. A nil capability classifies everything
// with default labels.
func NewClassifier(models Capability) *Classifier {
	return &Classifier{models: models}
}

// Classify sets the task's four labels. Any per-category failure is logged
// and replaced by that category's default; admission always proceeds.
func (c *Classifier) Classify(t *Task) {
	labels := make(map[Category]string, len(Categories))
	for _, cat := range Categories {
		label, err := c.classifyOne(t, cat)
		if err != nil {
			logrus.Warnf("classification failed for pid=%d category=%s: %v", t.PID, cat, err)
			label = defaultLabels[cat]
		}
		labels[cat] = label
	}
	t.ResourceType = labels[CategoryResource]
	t.Interactivity = labels[CategoryInteractivity]
	t.PriorityClass = labels[CategoryPriority]
	t.ExecutionClass = labels[CategoryExecution]
}

func (c *Classifier) classifyOne(t *Task, cat Category) (string, error) {
	model, ok := c.models[cat]
	if !ok || model.Predictor == nil || model.Decoder == nil {
		return "", fmt.Errorf("no model for category %q", cat)
	}
	vec := t.FeatureVector(model.Features)
	class, err := model.Predictor.Predict(vec)
	if err != nil {
		return "", fmt.Errorf("predict: %w", err)
	}
	label, err := model.Decoder.Decode(class)
	if err != nil {
		return "", fmt.Errorf("decode class %d: %w", class, err)
	}
	return label, nil
}
