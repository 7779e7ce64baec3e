// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/moviemind/moviemind/internal/models"
)

// AffinityPredictor ranks catalog items a user has not yet rated by
// predicted affinity. The prediction strategy (trained factor model or the
// mean-rating fallback) is fixed at construction; the rated set is scanned
// from the rating store on every call so fresh ratings take effect
// immediately.
type AffinityPredictor struct {
	catalog *Catalog
	model   AffinityModel
	ratings RatingStore
}

// NewAffinityPredictor builds a predictor over the given strategy.
func NewAffinityPredictor(catalog *Catalog, model AffinityModel, ratings RatingStore) *AffinityPredictor {
	return &AffinityPredictor{catalog: catalog, model: model, ratings: ratings}
}

// Model returns the active prediction strategy.
func (p *AffinityPredictor) Model() AffinityModel {
	return p.model
}

// RankUnseen returns the k unrated catalog items with the highest predicted
// score for userID, highest first, catalog-order ties. An unknown user is
// not an error: every item is unseen and ranked by the model's defaults. A
// model error on a single item skips that item only.
func (p *AffinityPredictor) RankUnseen(ctx context.Context, userID string, k int) ([]models.Movie, error) {
	rated := make(map[int]struct{})
	ids, err := p.ratings.RatedIDs(ctx, userID)
	if err == nil {
		for _, id := range ids {
			rated[id] = struct{}{}
		}
	}
	// A failed rated-set scan degrades to "nothing rated"; over-recommending
	// beats failing the request.

	type scored struct {
		row   int
		movie models.Movie
		score float64
	}
	ranked := make([]scored, 0, p.catalog.Len())
	for row, m := range p.catalog.Movies() {
		if _, seen := rated[m.ID]; seen {
			continue
		}
		score, err := p.model.Predict(userID, m.ID)
		if err != nil {
			continue
		}
		ranked = append(ranked, scored{row: row, movie: m, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].row < ranked[j].row
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]models.Movie, 0, k)
	for _, sc := range ranked[:k] {
		out = append(out, sc.movie)
	}
	return out, nil
}

// factorModelFile is the on-disk shape of a trained latent-factor model.
// User keys are strings, item keys are decimal movie ids.
type factorModelFile struct {
	GlobalMean  float64              `json:"global_mean"`
	UserFactors map[string][]float64 `json:"user_factors"`
	ItemFactors map[string][]float64 `json:"item_factors"`
	UserBiases  map[string]float64   `json:"user_biases"`
	ItemBiases  map[string]float64   `json:"item_biases"`
}

// FactorModel predicts affinity from trained latent factors:
// mean + userBias + itemBias + dot(userFactors, itemFactors).
// Ids absent from the model fall back to the global mean plus whichever
// bias is known.
type FactorModel struct {
	globalMean  float64
	userFactors map[string][]float64
	itemFactors map[int][]float64
	userBiases  map[string]float64
	itemBiases  map[int]float64
}

// LoadFactorModel reads a JSON model file from path.
func LoadFactorModel(path string) (*FactorModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read factor model: %w", err)
	}
	var file factorModelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode factor model: %w", err)
	}

	m := &FactorModel{
		globalMean:  file.GlobalMean,
		userFactors: file.UserFactors,
		itemFactors: make(map[int][]float64, len(file.ItemFactors)),
		userBiases:  file.UserBiases,
		itemBiases:  make(map[int]float64, len(file.ItemBiases)),
	}
	for key, factors := range file.ItemFactors {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("factor model item key %q: %w", key, err)
		}
		m.itemFactors[id] = factors
	}
	for key, bias := range file.ItemBiases {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("factor model bias key %q: %w", key, err)
		}
		m.itemBiases[id] = bias
	}
	return m, nil
}

// Name implements AffinityModel.
func (m *FactorModel) Name() string { return "factor" }

// Predict implements AffinityModel.
func (m *FactorModel) Predict(userID string, movieID int) (float64, error) {
	score := m.globalMean + m.userBiases[userID] + m.itemBiases[movieID]
	uf, uok := m.userFactors[userID]
	mf, mok := m.itemFactors[movieID]
	if uok && mok && len(uf) == len(mf) {
		for i := range uf {
			score += uf[i] * mf[i]
		}
	}
	return score, nil
}

// MeanRatingModel is the documented degraded mode: per-item mean rating over
// all history, FallbackRating for items with none. The user id is ignored
// entirely, so every user sees the same ranking.
type MeanRatingModel struct {
	means       map[int]float64
	defaultMean float64
}

// NewMeanRatingModel builds the fallback model from per-item means.
func NewMeanRatingModel(means map[int]float64, defaultMean float64) *MeanRatingModel {
	if means == nil {
		means = map[int]float64{}
	}
	return &MeanRatingModel{means: means, defaultMean: defaultMean}
}

// Name implements AffinityModel.
func (m *MeanRatingModel) Name() string { return "mean-rating" }

// Predict implements AffinityModel.
func (m *MeanRatingModel) Predict(_ string, movieID int) (float64, error) {
	if mean, ok := m.means[movieID]; ok {
		return mean, nil
	}
	return m.defaultMean, nil
}
