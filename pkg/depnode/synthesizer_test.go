package depnode

import (
	"testing"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizerTargetBeforeSource(t *testing.T) {
	table := NewTable(NewAllocator(nil))
	synth := NewSynthesizer(table, annotation.DependenciesFeature, quietLogger())

	synth.Visit(&annotation.Annotation{ID: 2, Start: 6, End: 10, Features: annotation.FeatureMap{
		annotation.DependenciesFeature: []annotation.Relation{{Type: "amod", TargetID: 1}},
	}})

	target, created := table.GetOrCreate(1)
	require.False(t, created)
	assert.Equal(t, "amod", target.Category)
	assert.False(t, target.Resolved())

	synth.Visit(&annotation.Annotation{ID: 1, Start: 0, End: 5})

	assert.True(t, target.Resolved())
	assert.Equal(t, "amod", target.Category)
	assert.Equal(t, annotation.Span{Start: 0, End: 5}, *target.Span)
	assert.Equal(t, 2, synth.Created())
}

func TestSynthesizerRevisitOverwrites(t *testing.T) {
	table := NewTable(NewAllocator(nil))
	synth := NewSynthesizer(table, annotation.DependenciesFeature, quietLogger())

	synth.Visit(&annotation.Annotation{ID: 1, Start: 0, End: 3, Features: annotation.FeatureMap{
		annotation.DependenciesFeature: []annotation.Relation{{Type: "dobj", TargetID: 2}},
	}})
	node, _ := table.GetOrCreate(1)
	firstID := node.ID
	childID := node.Children[0]

	// No edges on the second visit: children survive, span is replaced.
	synth.Visit(&annotation.Annotation{ID: 1, Start: 4, End: 8})
	assert.Equal(t, firstID, node.ID)
	assert.Equal(t, annotation.Span{Start: 4, End: 8}, *node.Span)
	assert.Equal(t, []int{childID}, node.Children)

	// New edges replace the children list rather than extending it.
	synth.Visit(&annotation.Annotation{ID: 1, Start: 4, End: 8, Features: annotation.FeatureMap{
		annotation.DependenciesFeature: []annotation.Relation{{Type: "iobj", TargetID: 3}},
	}})
	other, _ := table.GetOrCreate(3)
	assert.Equal(t, []int{other.ID}, node.Children)
	assert.Equal(t, 3, table.Len())
}

func TestSynthesizerMalformedEdgesSkipped(t *testing.T) {
	table := NewTable(NewAllocator(nil))
	synth := NewSynthesizer(table, annotation.DependenciesFeature, quietLogger())

	synth.Visit(&annotation.Annotation{ID: 1, Start: 0, End: 3, Features: annotation.FeatureMap{
		annotation.DependenciesFeature: []interface{}{
			map[string]interface{}{"type": "nsubj"},
			map[string]interface{}{"type": "dobj", "targetId": float64(2)},
		},
	}})

	assert.Equal(t, 1, synth.Malformed())
	assert.Equal(t, 2, table.Len())

	node, _ := table.GetOrCreate(1)
	require.Len(t, node.Children, 1)
}

func TestSynthesizerOutOfRangeTargetsSkipped(t *testing.T) {
	table := NewTable(NewAllocator(nil))
	synth := NewSynthesizer(table, annotation.DependenciesFeature, quietLogger())

	synth.Visit(&annotation.Annotation{ID: 1, Start: 0, End: 3, Features: annotation.FeatureMap{
		annotation.DependenciesFeature: []interface{}{
			map[string]interface{}{"type": "x", "targetId": 1e20},
			map[string]interface{}{"type": "y", "targetId": 2e20},
		},
	}})
	synth.Visit(&annotation.Annotation{ID: 2, Start: 4, End: 7, Features: annotation.FeatureMap{
		annotation.DependenciesFeature: `[{"type":"z","targetId":1e20}]`,
	}})

	assert.Equal(t, 3, synth.Malformed())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, synth.Created())

	node, _ := table.GetOrCreate(1)
	assert.Empty(t, node.Children)
}

func TestSynthesizerCustomFeatureKey(t *testing.T) {
	table := NewTable(NewAllocator(nil))
	synth := NewSynthesizer(table, "deps", quietLogger())

	synth.Visit(&annotation.Annotation{ID: 1, Start: 0, End: 3, Features: annotation.FeatureMap{
		"deps":                         []annotation.Relation{{Type: "det", TargetID: 2}},
		annotation.DependenciesFeature: []annotation.Relation{{Type: "ignored", TargetID: 3}},
	}})

	target, created := table.GetOrCreate(2)
	assert.False(t, created)
	assert.Equal(t, "det", target.Category)
	assert.Equal(t, 2, table.Len())
}
