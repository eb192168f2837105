package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionList_FirstMatchWins(t *testing.T) {
	d, err := NewDecisionList(
		[]string{"cpu", "io"},
		[]Rule{
			{Feature: "cpu", Op: OpGT, Threshold: 60, Class: 0},
			{Feature: "io", Op: OpGT, Threshold: 100, Class: 1},
		},
		2,
	)
	require.NoError(t, err)

	// both rules match; the first wins
	class, err := d.Predict([]float64{90, 500})
	require.NoError(t, err)
	assert.Equal(t, 0, class)

	class, err = d.Predict([]float64{10, 500})
	require.NoError(t, err)
	assert.Equal(t, 1, class)

	// nothing matches: default class
	class, err = d.Predict([]float64{10, 10})
	require.NoError(t, err)
	assert.Equal(t, 2, class)
}

func TestDecisionList_Operators(t *testing.T) {
	cases := []struct {
		op    Op
		value float64
		want  bool
	}{
		{OpGT, 5.1, true}, {OpGT, 5, false},
		{OpGE, 5, true}, {OpGE, 4.9, false},
		{OpLT, 4.9, true}, {OpLT, 5, false},
		{OpLE, 5, true}, {OpLE, 5.1, false},
		{OpEQ, 5, true}, {OpEQ, 5.1, false},
	}
	for _, c := range cases {
		d, err := NewDecisionList([]string{"x"},
			[]Rule{{Feature: "x", Op: c.op, Threshold: 5, Class: 1}}, 0)
		require.NoError(t, err)
		class, err := d.Predict([]float64{c.value})
		require.NoError(t, err)
		if c.want {
			assert.Equal(t, 1, class, "%s %v", c.op, c.value)
		} else {
			assert.Equal(t, 0, class, "%s %v", c.op, c.value)
		}
	}
}

func TestNewDecisionList_RejectsUnknownFeatureAndOperator(t *testing.T) {
	_, err := NewDecisionList([]string{"x"},
		[]Rule{{Feature: "y", Op: OpGT, Threshold: 1, Class: 0}}, 0)
	assert.Error(t, err)

	_, err = NewDecisionList([]string{"x"},
		[]Rule{{Feature: "x", Op: "between", Threshold: 1, Class: 0}}, 0)
	assert.Error(t, err)
}

func TestDecisionList_VectorLengthMismatch(t *testing.T) {
	d, err := NewDecisionList([]string{"a", "b"}, nil, 0)
	require.NoError(t, err)
	_, err = d.Predict([]float64{1})
	assert.Error(t, err)
}

func TestLabels_Decode(t *testing.T) {
	l := Labels{"Short", "Medium", "Long"}

	label, err := l.Decode(1)
	require.NoError(t, err)
	assert.Equal(t, "Medium", label)

	_, err = l.Decode(3)
	assert.Error(t, err)
	_, err = l.Decode(-1)
	assert.Error(t, err)
}
