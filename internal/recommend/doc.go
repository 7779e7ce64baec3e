// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

/*
Package recommend implements the hybrid movie recommendation engine.

The engine fuses three independent signal sources into ranked lists:

  - Content similarity: a precomputed item-item similarity matrix over the
    catalog, queried by title (ContentRanker), plus a live Jaccard ranker
    over TMDB genre/keyword metadata (MetadataRanker).
  - User-item affinity: a strategy interface (AffinityModel) with a trained
    latent-factor implementation and a mean-rating degraded mode, ranked
    over the user's unseen items (AffinityPredictor).
  - Mood constraints: a per-request resolution of questionnaire answers to
    genre sets and runtime windows (MoodFilter).

HybridBlender fuses the first two by positional rank (the sources score on
incomparable scales), and FallbackChain terminates every degradation path
with a best-effort popular list.

# Degradation

Availability beats fidelity throughout. Collaborator failures become "zero
candidates from this source", a missing similarity matrix disables only the
content ranker, a missing trained model drops affinity to per-item means,
and the single user-visible failure mode is an empty list.

# Concurrency

The catalog, matrix and model are loaded once and read-only; every ranking
call is a pure function of its inputs plus the collaborators. The only
mutable engine state is the TTL response cache behind an RWMutex.
*/
package recommend
