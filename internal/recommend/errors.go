// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a title or id that is not present in the catalog.
	ErrNotFound = errors.New("recommend: not found")

	// ErrRankerUnavailable indicates a ranker whose backing data (similarity
	// matrix, trained model) is missing or inconsistent with the catalog.
	// The ranker fails closed; callers degrade to the fallback chain.
	ErrRankerUnavailable = errors.New("recommend: ranker unavailable")
)

// CollaboratorError wraps a failure from an external collaborator (genre
// catalog, popularity source, rating store). It is logged at the point of
// use, carrying the operation that failed, and converted into "zero
// candidates from this source"; it never propagates past a blender or the
// engine.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("recommend: collaborator %s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
