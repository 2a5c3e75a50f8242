package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pairlens/internal/model"
)

func TestMergeShallowOverwrite(t *testing.T) {
	base := map[string]any{
		"mindset": map[string]any{"person1": "romantic"},
		"couple":  map[string]any{"person1": map[string]any{"name": "Ada"}},
	}
	frag := model.PassFragment{
		"mindset": map[string]any{"narrative": "a warm pairing"},
	}

	out := Merge(base, frag)

	// whole value replaced, sibling keys from the base value are gone
	mindset := out["mindset"].(map[string]any)
	assert.Equal(t, "a warm pairing", mindset["narrative"])
	assert.NotContains(t, mindset, "person1")

	// untouched keys survive
	assert.Contains(t, out, "couple")
}

func TestMergeDeepKeys(t *testing.T) {
	base := map[string]any{
		"momentum": map[string]any{"energy": 62.5},
		"love":     map[string]any{"expression": 70.0},
	}
	frag1 := model.PassFragment{
		"momentum": map[string]any{"a": 1.0},
	}
	frag2 := model.PassFragment{
		"momentum": map[string]any{"b": 2.0},
		"love":     map[string]any{"narrative": "tender"},
	}

	out := Merge(base, frag1, frag2)

	momentum := out["momentum"].(map[string]any)
	assert.Equal(t, 62.5, momentum["energy"])
	assert.Equal(t, 1.0, momentum["a"])
	assert.Equal(t, 2.0, momentum["b"])

	love := out["love"].(map[string]any)
	assert.Equal(t, 70.0, love["expression"])
	assert.Equal(t, "tender", love["narrative"])
}

func TestMergeDeepKeyOnlyOneLevel(t *testing.T) {
	base := map[string]any{
		"momentum": map[string]any{
			"detail": map[string]any{"x": 1.0, "y": 2.0},
		},
	}
	frag := model.PassFragment{
		"momentum": map[string]any{
			"detail": map[string]any{"x": 9.0},
		},
	}

	out := Merge(base, frag)

	detail := out["momentum"].(map[string]any)["detail"].(map[string]any)
	assert.Equal(t, 9.0, detail["x"])
	// second level is replaced wholesale, not merged
	assert.NotContains(t, detail, "y")
}

func TestMergeDeepKeyNonObjectFallback(t *testing.T) {
	base := map[string]any{"momentum": map[string]any{"energy": 50.0}}
	frag := model.PassFragment{"momentum": "replaced"}

	out := Merge(base, frag)
	assert.Equal(t, "replaced", out["momentum"])
}

func TestMergeLaterFragmentWins(t *testing.T) {
	base := map[string]any{"summary": "base"}
	frag1 := model.PassFragment{"summary": "first"}
	frag2 := model.PassFragment{"summary": "second"}

	out := Merge(base, frag1, frag2)
	assert.Equal(t, "second", out["summary"])
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"love": map[string]any{"expression": 70.0}}
	frag := model.PassFragment{"love": map[string]any{"narrative": "tender"}}

	_ = Merge(base, frag)

	assert.NotContains(t, base["love"].(map[string]any), "narrative")
	assert.NotContains(t, frag["love"].(map[string]any), "expression")
}

func TestMergeNoFragments(t *testing.T) {
	base := map[string]any{"couple": "c"}
	out := Merge(base)
	assert.Equal(t, base, out)
}
