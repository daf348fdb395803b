package main

import (
	"fmt"
	"os"

	"github.com/ieegtools/ieegio"
)

// Diagnostic tool to confirm what the header parsers actually read from a
// recording.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ieeg-dump <recording>")
		fmt.Println("\nExample:")
		fmt.Println("  ieeg-dump rec.edf")
		fmt.Println("  ieeg-dump rec.vhdr")
		fmt.Println("  ieeg-dump session.mefd")
		os.Exit(1)
	}

	reader, err := ieegio.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	hdr := reader.Header()

	fmt.Printf("Path:          %s\n", reader.Path)
	fmt.Printf("Format:        %s\n", reader.Format)
	fmt.Printf("Sample rate:   %g Hz\n", hdr.SampleRate)
	fmt.Printf("Samples:       %d per channel (%.2f s)\n",
		hdr.SampleCount, float64(hdr.SampleCount)/hdr.SampleRate)
	fmt.Printf("Layout:        %s, %s %s\n", hdr.Layout, hdr.ByteOrder, hdr.SampleType)
	if !hdr.StartTime.IsZero() {
		fmt.Printf("Start time:    %s\n", hdr.StartTime.Format("2006-01-02 15:04:05"))
	}
	if hdr.DataPath != reader.Path {
		fmt.Printf("Data file:     %s\n", hdr.DataPath)
	}
	if hdr.DataOffset > 0 {
		fmt.Printf("Data offset:   %d bytes\n", hdr.DataOffset)
	}
	if hdr.RecordSamples > 0 {
		fmt.Printf("Record:        %d samples, %d bytes, %g s\n",
			hdr.RecordSamples, hdr.RecordStride, hdr.RecordDuration)
	}

	fmt.Printf("\nChannels (%d):\n", len(hdr.Channels))
	for i, ch := range hdr.Channels {
		fmt.Printf("  [%3d] %-16s %-8s", i, ch.Label, ch.Unit)
		if ch.Calibrated {
			fmt.Printf(" phys [%g, %g]  dig [%g, %g]",
				ch.PhysicalMin, ch.PhysicalMax, ch.DigitalMin, ch.DigitalMax)
		} else if ch.Scale != 1 {
			fmt.Printf(" scale %g", ch.Scale)
		}
		fmt.Println()
	}
}
