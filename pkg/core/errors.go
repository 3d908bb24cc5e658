package core

import (
	"errors"
	"fmt"
	"math"
)

// MaxRegions 与原始命令行约束保持一致（int32 上限）
const MaxRegions = math.MaxInt32

var (
	// ErrInvalidParams is the sentinel behind every ParamError.
	ErrInvalidParams = errors.New("invalid hunt parameters")
)

// ParamError reports which parameter is out of bounds.
type ParamError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s must be in range [%d, %d], got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParams }

// Validate checks region, group and treasure counts the way the command line did:
// R in [1, MaxRegions], G and T in [1, R]. The engine itself trusts its inputs.
func Validate(regions, groups, treasures int) error {
	if regions < 1 || regions > MaxRegions {
		return &ParamError{Field: "regions", Value: regions, Min: 1, Max: MaxRegions}
	}
	if groups < 1 || groups > regions {
		return &ParamError{Field: "groups", Value: groups, Min: 1, Max: regions}
	}
	if treasures < 1 || treasures > regions {
		return &ParamError{Field: "treasures", Value: treasures, Min: 1, Max: regions}
	}
	return nil
}

// LongRun reports whether R and T are large enough that a run may take a long time
// (log10(R) + log10(T) > 9).
func LongRun(regions, treasures int) bool {
	if regions <= 0 || treasures <= 0 {
		return false
	}
	return math.Log10(float64(regions))+math.Log10(float64(treasures)) > 9
}
