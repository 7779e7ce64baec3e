// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/moviemind/moviemind/internal/models"
)

func fourMovieCatalog() *Catalog {
	return NewCatalog([]models.Movie{
		movie(1, "One"),
		movie(2, "Two"),
		movie(3, "Three"),
		movie(4, "Four"),
	})
}

func TestAffinityPredictorExcludesRated(t *testing.T) {
	t.Parallel()

	catalog := fourMovieCatalog()
	model := NewMeanRatingModel(map[int]float64{
		1: 5.0, 2: 4.8, 3: 4.2, 4: 3.9,
	}, 3.5)
	store := &mockRatingStore{ratedIDs: map[string][]int{"U": {1, 2}}}
	predictor := NewAffinityPredictor(catalog, model, store)

	got, err := predictor.RankUnseen(context.Background(), "U", 2)
	if err != nil {
		t.Fatalf("RankUnseen() error = %v", err)
	}
	if !sameTitles(got, []string{"Three", "Four"}) {
		t.Errorf("RankUnseen(U, 2) = %v, want [Three Four]", titles(got))
	}
}

func TestAffinityPredictorUnknownUser(t *testing.T) {
	t.Parallel()

	catalog := fourMovieCatalog()
	model := NewMeanRatingModel(map[int]float64{2: 4.5}, 3.5)
	predictor := NewAffinityPredictor(catalog, model, &mockRatingStore{})

	// Unknown user: nothing rated, everything ranked. Movie 2 has the only
	// above-default mean; the rest tie at 3.5 in catalog order.
	got, err := predictor.RankUnseen(context.Background(), "nobody", 4)
	if err != nil {
		t.Fatalf("RankUnseen() error = %v", err)
	}
	if !sameTitles(got, []string{"Two", "One", "Three", "Four"}) {
		t.Errorf("RankUnseen() = %v, want [Two One Three Four]", titles(got))
	}
}

func TestAffinityPredictorSkipsModelErrors(t *testing.T) {
	t.Parallel()

	catalog := fourMovieCatalog()
	model := &errorModel{
		scores: map[int]float64{1: 4.0, 2: 3.0, 4: 5.0},
		errIDs: map[int]error{3: errors.New("no factors")},
	}
	predictor := NewAffinityPredictor(catalog, model, &mockRatingStore{})

	got, err := predictor.RankUnseen(context.Background(), "U", 4)
	if err != nil {
		t.Fatalf("RankUnseen() error = %v, single-item model errors must not abort", err)
	}
	if !sameTitles(got, []string{"Four", "One", "Two"}) {
		t.Errorf("RankUnseen() = %v, want [Four One Two]", titles(got))
	}
}

func TestAffinityPredictorRatedScanFailureDegrades(t *testing.T) {
	t.Parallel()

	catalog := fourMovieCatalog()
	model := NewMeanRatingModel(nil, 3.5)
	store := &mockRatingStore{ratedErr: errors.New("store down")}
	predictor := NewAffinityPredictor(catalog, model, store)

	got, err := predictor.RankUnseen(context.Background(), "U", 4)
	if err != nil {
		t.Fatalf("RankUnseen() error = %v, want degraded result", err)
	}
	if len(got) != 4 {
		t.Errorf("RankUnseen() returned %d items, want all 4 when the rated scan fails", len(got))
	}
}

func TestMeanRatingModelDefault(t *testing.T) {
	t.Parallel()

	model := NewMeanRatingModel(map[int]float64{7: 4.1}, 3.5)

	if got, _ := model.Predict("anyone", 7); got != 4.1 {
		t.Errorf("Predict(known item) = %v, want 4.1", got)
	}
	if got, _ := model.Predict("anyone", 99); got != 3.5 {
		t.Errorf("Predict(unknown item) = %v, want default 3.5", got)
	}
	// User identity is ignored entirely.
	a, _ := model.Predict("alice", 7)
	b, _ := model.Predict("bob", 7)
	if a != b {
		t.Errorf("Predict() differs across users: %v vs %v", a, b)
	}
}

func TestFactorModelPredict(t *testing.T) {
	t.Parallel()

	model := &FactorModel{
		globalMean:  3.6,
		userFactors: map[string][]float64{"U": {0.5, -0.2}},
		itemFactors: map[int][]float64{10: {0.4, 0.1}},
		userBiases:  map[string]float64{"U": 0.2},
		itemBiases:  map[int]float64{10: -0.1},
	}

	// mean + userBias + itemBias + dot = 3.6 + 0.2 - 0.1 + (0.2 - 0.02)
	got, err := model.Predict("U", 10)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	want := 3.6 + 0.2 - 0.1 + (0.5*0.4 + -0.2*0.1)
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Predict() = %v, want %v", got, want)
	}

	// Unknown ids fall back to the global mean.
	got, err = model.Predict("stranger", 999)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != 3.6 {
		t.Errorf("Predict(unknown ids) = %v, want global mean 3.6", got)
	}
}
