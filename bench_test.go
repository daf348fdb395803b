package ieegio_test

import (
	"testing"

	"github.com/ieegtools/ieegio"
)

// BenchmarkOpen measures header parsing and reader construction.
func BenchmarkOpen(b *testing.B) {
	path := writeTwoChannelEDF(b)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		reader, err := ieegio.Open(path)
		if err != nil {
			b.Fatal(err)
		}
		reader.Close()
	}
}

// BenchmarkReadRange measures a cold single-range read.
func BenchmarkReadRange(b *testing.B) {
	path := writeTwoChannelEDF(b)
	reader, err := ieegio.Open(path)
	if err != nil {
		b.Fatal(err)
	}
	defer reader.Close()

	rng := ieegio.SampleRange{Start: 0, End: 499}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		reader.Invalidate()
		if _, err := reader.ReadRange([]int{0, 1}, rng); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReadRange_Cached measures the memoized path.
func BenchmarkReadRange_Cached(b *testing.B) {
	path := writeTwoChannelEDF(b)
	reader, err := ieegio.Open(path)
	if err != nil {
		b.Fatal(err)
	}
	defer reader.Close()

	rng := ieegio.SampleRange{Start: 0, End: 499}
	if _, err := reader.ReadRange([]int{0, 1}, rng); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := reader.ReadRange([]int{0, 1}, rng); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReadEpochs measures multi-range extraction with span merging.
func BenchmarkReadEpochs(b *testing.B) {
	path := writeTwoChannelEDF(b)
	reader, err := ieegio.Open(path, ieegio.WithAccessStrategy(ieegio.StrategyBuffered))
	if err != nil {
		b.Fatal(err)
	}
	defer reader.Close()

	ranges := make([]ieegio.SampleRange, 20)
	for i := range ranges {
		start := uint64(i * 20)
		ranges[i] = ieegio.SampleRange{Start: start, End: start + 19}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		reader.Invalidate()
		if _, err := reader.ReadEpochs([]int{0, 1}, ranges); err != nil {
			b.Fatal(err)
		}
	}
}
