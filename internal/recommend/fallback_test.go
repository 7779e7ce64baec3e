// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moviemind/moviemind/internal/models"
)

func TestFallbackChainPopular(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source PopularitySource
		k      int
		want   int
	}{
		{
			name:   "healthy source",
			source: &mockPopularity{movies: []models.Movie{movie(1, "A"), movie(2, "B")}},
			k:      5,
			want:   2,
		},
		{
			name:   "truncates to k",
			source: &mockPopularity{movies: []models.Movie{movie(1, "A"), movie(2, "B"), movie(3, "C")}},
			k:      2,
			want:   2,
		},
		{
			name:   "source failure yields empty",
			source: &mockPopularity{err: errors.New("upstream down")},
			k:      5,
			want:   0,
		},
		{
			name:   "nil source yields empty",
			source: nil,
			k:      5,
			want:   0,
		},
		{
			name:   "non-positive k yields empty",
			source: &mockPopularity{movies: []models.Movie{movie(1, "A")}},
			k:      0,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chain := NewFallbackChain(tt.source, testLogger())
			got := chain.Popular(context.Background(), tt.k)
			if got == nil {
				t.Fatal("Popular() = nil, want non-nil slice")
			}
			if len(got) != tt.want {
				t.Errorf("Popular() returned %d items, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFallbackChainLogsCollaboratorFailure(t *testing.T) {
	t.Parallel()

	upstream := errors.New("upstream down")
	var buf bytes.Buffer
	chain := NewFallbackChain(&mockPopularity{err: upstream}, zerolog.New(&buf))

	got := chain.Popular(context.Background(), 3)
	if len(got) != 0 {
		t.Fatalf("Popular() returned %d items, want 0", len(got))
	}

	logged := buf.String()
	if !strings.Contains(logged, "collaborator popular") {
		t.Errorf("log output %q does not name the failed collaborator operation", logged)
	}
	if !strings.Contains(logged, upstream.Error()) {
		t.Errorf("log output %q does not carry the underlying error", logged)
	}
}

func TestFallbackChainNormalizes(t *testing.T) {
	t.Parallel()

	chain := NewFallbackChain(&mockPopularity{movies: []models.Movie{
		{ID: 1, Title: "Raw"},
	}}, testLogger())

	got := chain.Popular(context.Background(), 1)
	if len(got) != 1 {
		t.Fatalf("Popular() returned %d items, want 1", len(got))
	}
	m := got[0]
	if m.Runtime != models.DefaultRuntime {
		t.Errorf("Runtime = %d, want default %d", m.Runtime, models.DefaultRuntime)
	}
	if m.ReleaseDate != models.DefaultReleaseDate {
		t.Errorf("ReleaseDate = %q, want default %q", m.ReleaseDate, models.DefaultReleaseDate)
	}
	if m.Description != models.DefaultDescription {
		t.Errorf("Description = %q, want default %q", m.Description, models.DefaultDescription)
	}
}
