package search

import (
	"math"
	"reflect"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPlanGramsSingleWord(t *testing.T) {
	plan := PlanGrams(map[int64]string{GeneralTerm: "fox"})

	if plan.Empty() {
		t.Fatal("plan should not be empty")
	}
	// " fox " yields one boundary-free gram, so it carries the word's full
	// weight.
	weights := plan.FilterWeights(GeneralTerm)
	if !approx(weights["fox"], 1) {
		t.Errorf("weight of %q = %v, want 1", "fox", weights["fox"])
	}
	if len(weights) != 1 {
		t.Errorf("got %d weighted grams, want 1: %v", len(weights), weights)
	}
	if len(plan.RequiredFilters()) != 0 {
		t.Errorf("general term must not be required, got %v", plan.RequiredFilters())
	}
}

func TestPlanGramsRunSplitting(t *testing.T) {
	plan := PlanGrams(map[int64]string{GeneralTerm: "quick fox"})

	weights := plan.FilterWeights(GeneralTerm)
	// "quick" leaves three boundary-free grams, each worth 1/3.
	for _, g := range []string{"qui", "uic", "ick"} {
		if !approx(weights[g], 1.0/3) {
			t.Errorf("weight of %q = %v, want 1/3", g, weights[g])
		}
	}
	if !approx(weights["fox"], 1) {
		t.Errorf("weight of %q = %v, want 1", "fox", weights["fox"])
	}
	want := []string{"fox", "ick", "qui", "uic"}
	if !reflect.DeepEqual(plan.Grams(), want) {
		t.Errorf("Grams() = %v, want %v", plan.Grams(), want)
	}
}

// The same gram recurring within one run accumulates its share.
func TestPlanGramsDuplicateAccumulation(t *testing.T) {
	plan := PlanGrams(map[int64]string{GeneralTerm: "aaaa"})

	// " aaaa " leaves the run [aaa, aaa], each occurrence worth 1/2.
	weights := plan.FilterWeights(GeneralTerm)
	if !approx(weights["aaa"], 1) {
		t.Errorf("weight of %q = %v, want 1", "aaa", weights["aaa"])
	}
	if len(plan.Grams()) != 1 {
		t.Errorf("Grams() = %v, want a single distinct gram", plan.Grams())
	}
}

func TestPlanGramsFilterTagging(t *testing.T) {
	plan := PlanGrams(map[int64]string{
		GeneralTerm: "fox",
		7:           "abcd",
		9:           "wxyz",
	})

	if got := plan.RequiredFilters(); !reflect.DeepEqual(got, []int64{7, 9}) {
		t.Errorf("RequiredFilters() = %v, want [7 9]", got)
	}
	if got := plan.FilterIDs(); !reflect.DeepEqual(got, []int64{GeneralTerm, 7, 9}) {
		t.Errorf("FilterIDs() = %v, want [-1 7 9]", got)
	}
	if w := plan.FilterWeights(7); !approx(w["abc"], 0.5) || !approx(w["bcd"], 0.5) {
		t.Errorf("filter 7 weights = %v, want abc/bcd at 1/2", w)
	}
	if plan.FilterWeights(9)["abc"] != 0 {
		t.Error("filter 9 must not carry filter 7's grams")
	}
}

// Terms too short to produce a boundary-free gram contribute nothing, and a
// filter without grams is not required.
func TestPlanGramsShortTerms(t *testing.T) {
	plan := PlanGrams(map[int64]string{GeneralTerm: "ab"})
	if !plan.Empty() {
		t.Errorf("two-rune term should plan no grams, got %v", plan.Grams())
	}

	plan = PlanGrams(map[int64]string{5: "ab", GeneralTerm: "fox"})
	if len(plan.RequiredFilters()) != 0 {
		t.Errorf("gram-less filter must not be required, got %v", plan.RequiredFilters())
	}
}
