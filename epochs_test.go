package ieegio_test

import (
	"errors"
	"testing"

	"github.com/ieegtools/ieegio"
)

func TestReadEpochs(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	ranges := []ieegio.SampleRange{
		{Start: 100, End: 109},
		{Start: 300, End: 309},
	}
	res, err := reader.ReadEpochs([]int{0, 1}, ranges)
	if err != nil {
		t.Fatalf("ReadEpochs failed: %v", err)
	}

	if len(res.Data) != 2 || len(res.Data[0]) != 2 || len(res.Data[0][0]) != 10 {
		t.Fatalf("tensor shape = %dx%dx%d, want 2x2x10",
			len(res.Data), len(res.Data[0]), len(res.Data[0][0]))
	}
	for trial, rng := range ranges {
		for s := 0; s < 10; s++ {
			if want := float64(rng.Start) + float64(s); res.Data[trial][0][s] != want {
				t.Errorf("trial %d ch0 sample %d = %g, want %g", trial, s, res.Data[trial][0][s], want)
			}
			if want := 1000 + float64(rng.Start) + float64(s); res.Data[trial][1][s] != want {
				t.Errorf("trial %d ch1 sample %d = %g, want %g", trial, s, res.Data[trial][1][s], want)
			}
		}
	}
}

func TestReadEpochs_PreservesInputOrder(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	// Ranges deliberately out of file order; the tensor must follow the
	// request order even though I/O is scheduled by file position.
	ranges := []ieegio.SampleRange{
		{Start: 400, End: 404},
		{Start: 0, End: 4},
		{Start: 200, End: 204},
	}
	res, err := reader.ReadEpochs([]int{0}, ranges)
	if err != nil {
		t.Fatal(err)
	}

	for trial, rng := range ranges {
		if got, want := res.Data[trial][0][0], float64(rng.Start); got != want {
			t.Errorf("trial %d starts with %g, want %g", trial, got, want)
		}
	}
}

func TestReadEpochs_InconsistentLength(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	_, err = reader.ReadEpochs([]int{0}, []ieegio.SampleRange{
		{Start: 0, End: 9},
		{Start: 100, End: 119},
	})

	var lerr *ieegio.InconsistentEpochLengthError
	if !errors.As(err, &lerr) {
		t.Fatalf("got %v, want InconsistentEpochLengthError", err)
	}
	if lerr.Index != 1 || lerr.Got != 20 || lerr.Want != 10 {
		t.Errorf("error detail = range %d spans %d want %d; want range 1 spans 20 want 10",
			lerr.Index, lerr.Got, lerr.Want)
	}
}

func TestReadEpochs_Empty(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	res, err := reader.ReadEpochs([]int{0}, nil)
	if err != nil {
		t.Fatalf("ReadEpochs with no ranges failed: %v", err)
	}
	if len(res.Data) != 0 {
		t.Errorf("got %d trials, want 0", len(res.Data))
	}
}

func TestReadEpochs_OverlappingRangesFetchOnce(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path, ieegio.WithAccessStrategy(ieegio.StrategyBuffered))
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	// Both ranges fall into the same stretch of records; their merged byte
	// spans collapse to one, so the file is touched exactly once.
	res, err := reader.ReadEpochs([]int{0}, []ieegio.SampleRange{
		{Start: 0, End: 99},
		{Start: 50, End: 149},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := reader.IOStats()["fetches"]; got != 1 {
		t.Errorf("overlapping epochs performed %d fetches, want 1", got)
	}

	for s := 0; s < 100; s++ {
		if res.Data[0][0][s] != float64(s) {
			t.Fatalf("trial 0 sample %d = %g, want %d", s, res.Data[0][0][s], s)
		}
		if res.Data[1][0][s] != float64(50+s) {
			t.Fatalf("trial 1 sample %d = %g, want %d", s, res.Data[1][0][s], 50+s)
		}
	}
}

func TestReadEpochs_Cached(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path, ieegio.WithAccessStrategy(ieegio.StrategyBuffered))
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	ranges := []ieegio.SampleRange{{Start: 10, End: 19}, {Start: 30, End: 39}}
	if _, err := reader.ReadEpochs([]int{0, 1}, ranges); err != nil {
		t.Fatal(err)
	}
	fetches := reader.IOStats()["fetches"]

	res, err := reader.ReadEpochs([]int{0, 1}, ranges)
	if err != nil {
		t.Fatal(err)
	}
	if got := reader.IOStats()["fetches"]; got != fetches {
		t.Errorf("repeated epoch request fetched again: %d -> %d", fetches, got)
	}
	if res.Data[1][1][0] != 1030 {
		t.Errorf("cached tensor value = %g, want 1030", res.Data[1][1][0])
	}
}

func TestReadEpochs_Preloaded(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path, ieegio.WithPreload())
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	res, err := reader.ReadEpochs([]int{1}, []ieegio.SampleRange{
		{Start: 5, End: 9},
		{Start: 495, End: 499},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data[0][0][0] != 1005 || res.Data[1][0][4] != 1499 {
		t.Errorf("preloaded epochs = %g, %g; want 1005, 1499", res.Data[0][0][0], res.Data[1][0][4])
	}
}

func TestReadEpochs_Vectorized(t *testing.T) {
	reader, err := ieegio.Open(writeBrainVision(t, "VECTORIZED", 200))
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	res, err := reader.ReadEpochs([]int{2, 1}, []ieegio.SampleRange{
		{Start: 20, End: 29},
		{Start: 120, End: 129},
	})
	if err != nil {
		t.Fatal(err)
	}
	// value = channel*100 + sample index
	if res.Data[0][0][0] != 220 || res.Data[1][1][9] != 229 {
		t.Errorf("vectorized epochs = %g, %g; want 220, 229", res.Data[0][0][0], res.Data[1][1][9])
	}
}

func TestReadEpochs_MEF3(t *testing.T) {
	session := writeMEF3Session(t, []string{"LTP1", "LTP2"}, 256, 1000)
	reader, err := ieegio.Open(session, ieegio.WithMEF3Decoder(&fakeDecoder{}))
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	res, err := reader.ReadEpochs([]int{0, 1}, []ieegio.SampleRange{
		{Start: 0, End: 9},
		{Start: 500, End: 509},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data[1][1][0] != 1500 {
		t.Errorf("MEF3 epoch value = %g, want 1500", res.Data[1][1][0])
	}
}
