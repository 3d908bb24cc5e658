package core

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkSearch(b *testing.B) {
	rng, _ := NewRand(1)
	m := PlaceTreasures(1<<20, 1<<12, rng)
	eng := NewEngine()

	for _, groups := range []int{1, 4, 16, 64} {
		b.Run(fmt.Sprintf("groups=%d", groups), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := eng.Search(context.Background(), m, groups); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPlaceTreasures(b *testing.B) {
	rng, _ := NewRand(1)
	for i := 0; i < b.N; i++ {
		PlaceTreasures(1<<16, 1<<10, rng)
	}
}
