package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAIWins(t *testing.T) {
	ai := LabelFields{Origin: "Ethiopia", RoastLevel: "Light"}
	heuristic := LabelFields{Origin: "Kenya", ProcessMethod: "Washed"}

	out := Merge(ai, heuristic)
	assert.Equal(t, "Ethiopia", out.Origin)
	assert.Equal(t, "Light", out.RoastLevel)
	assert.Equal(t, "Washed", out.ProcessMethod)
}

func TestMergeAIValuesAreCleaned(t *testing.T) {
	ai := LabelFields{RoasterName: "«Happy Goat»  Coffee"}
	out := Merge(ai, LabelFields{})
	assert.Equal(t, "Happy Goat Coffee", out.RoasterName)
}

func TestMergeAIValueCleaningToEmptyFallsBack(t *testing.T) {
	ai := LabelFields{Farm: " «» "}
	heuristic := LabelFields{Farm: "Finca El Diviso"}
	out := Merge(ai, heuristic)
	assert.Equal(t, "Finca El Diviso", out.Farm)
}

func TestMergeBothEmpty(t *testing.T) {
	assert.True(t, Merge(LabelFields{}, LabelFields{}).IsEmpty())
}

func TestMergeDerivesRoasterNameFromWebsite(t *testing.T) {
	heuristic := LabelFields{RoasterWebsite: "https://www.happygoat.ca"}
	out := Merge(LabelFields{}, heuristic)
	assert.Equal(t, "Happygoat Coffee", out.RoasterName)
}

func TestMergeDoesNotOverrideExtractedRoasterName(t *testing.T) {
	ai := LabelFields{RoasterName: "Happy Goat Coffee", RoasterWebsite: "https://monogram.coffee"}
	out := Merge(ai, LabelFields{})
	assert.Equal(t, "Happy Goat Coffee", out.RoasterName)
}

func TestRoasterNameFromWebsite(t *testing.T) {
	cases := map[string]string{
		"https://www.happygoat.ca":     "Happygoat Coffee",
		"happygoat.ca":                 "Happygoat Coffee",
		"http://monogram-coffee.com/x": "Monogram Coffee",
		"www.rosso-roasters.com":       "Rosso Roasters",
		"https://detour_coffee.ca":     "Detour Coffee",
		"":                             "",
		"https://":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, RoasterNameFromWebsite(in), "input %q", in)
	}
}

func TestNormalizeOrigin(t *testing.T) {
	assert.Equal(t, "Brazil, rwanda", NormalizeOrigin("Brazil , rwanda ,"))
	assert.Equal(t, "Ethiopia", NormalizeOrigin("Ethiopia"))
	assert.Equal(t, "", NormalizeOrigin(" , ,"))
}
