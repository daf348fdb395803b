package ieegio_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ieegtools/ieegio"
)

// TestReadEpochsContext_Cancelled verifies that a cancelled context stops
// the extraction between trials and surfaces no partial result.
func TestReadEpochsContext_Cancelled(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := reader.ReadEpochsContext(ctx, []int{0}, []ieegio.SampleRange{
		{Start: 0, End: 9},
		{Start: 100, End: 109},
	})

	var cerr *ieegio.CancelledError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want CancelledError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("CancelledError should wrap context.Canceled")
	}
	if res != nil {
		t.Error("expected no partial result after cancellation")
	}
}

func TestReadTrialsContext_Cancelled(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := reader.ReadTrialsContext(ctx, []int{0}, []float64{1, 2},
		ieegio.TrialWindow{Start: -0.1, End: 0.1})

	var cerr *ieegio.CancelledError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want CancelledError", err)
	}
	if res != nil {
		t.Error("expected no partial result after cancellation")
	}
}

func TestOpenContext_Cancelled(t *testing.T) {
	path := writeTwoChannelEDF(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ieegio.OpenContext(ctx, path); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

// TestOpenMany_Cancellation verifies that cancelled batch opens clean up.
func TestOpenMany_Cancellation(t *testing.T) {
	paths := make([]string, 5)
	for i := range paths {
		paths[i] = writeTwoChannelEDF(t)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	readers, err := ieegio.OpenMany(ctx, paths...)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if readers != nil {
		t.Error("expected nil readers on error")
	}
}

// TestReadEpochs_AfterCancelRetries verifies that a cancelled extraction
// is not cached as a result: a later call with a live context succeeds.
func TestReadEpochs_AfterCancelRetries(t *testing.T) {
	path := writeTwoChannelEDF(t)
	reader, err := ieegio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	ranges := []ieegio.SampleRange{{Start: 0, End: 9}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.ReadEpochsContext(ctx, []int{0}, ranges); err == nil {
		t.Fatal("expected cancellation error")
	}

	res, err := reader.ReadEpochs([]int{0}, ranges)
	if err != nil {
		t.Fatalf("retry after cancellation failed: %v", err)
	}
	if res.Data[0][0][5] != 5 {
		t.Errorf("retried epoch value = %g, want 5", res.Data[0][0][5])
	}
}
