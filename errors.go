package treesearch

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingGenerator is returned when Problem.NewGenerator is nil.
	ErrMissingGenerator = errors.New("treesearch: Problem.NewGenerator must be set")

	// ErrMissingObjective is returned when Optimise or Decide is called
	// without Problem.Objective.
	ErrMissingObjective = errors.New("treesearch: Problem.Objective must be set")

	// ErrMissingComparator is returned when a search needs Problem.Better
	// and it is nil.
	ErrMissingComparator = errors.New("treesearch: Problem.Better must be set")

	// ErrMissingEnumerator is returned when Enumerate is called without
	// Problem.NewEnumerator.
	ErrMissingEnumerator = errors.New("treesearch: Problem.NewEnumerator must be set")

	// ErrInvalidSpawnProbability is returned when SkeletonRandom runs with
	// a zero Params.SpawnProbability.
	ErrInvalidSpawnProbability = errors.New("treesearch: SpawnProbability must be positive for SkeletonRandom")

	// ErrUnknownSkeleton is returned for an out-of-range Params.Skeleton.
	ErrUnknownSkeleton = errors.New("treesearch: unknown skeleton")
)

// ErrStackOverflow indicates the expansion stack exceeded
// Params.MaxStackDepth. Raise the limit or add a SpawnDepth/MaxDepth cut.
//
// The failing depth is carried for diagnostics.
type ErrStackOverflow struct {
	MaxStackDepth int
}

func (e *ErrStackOverflow) Error() string {
	return fmt.Sprintf("treesearch: generator stack overflow (max depth %d)", e.MaxStackDepth)
}
