package ieegio_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ieegtools/ieegio"
)

// edfSignal describes one signal of a synthetic EDF fixture.
type edfSignal struct {
	label          string
	physMin        float64
	physMax        float64
	digMin, digMax int
	// value produces the digital sample at global index s.
	value func(s int) int16
}

// identitySignal uses a calibration whose physical range equals the
// digital range, so decoded physical values equal the raw samples.
func identitySignal(label string, value func(int) int16) edfSignal {
	return edfSignal{
		label:   label,
		physMin: -32768, physMax: 32767,
		digMin: -32768, digMax: 32767,
		value: value,
	}
}

// writeEDF builds a synthetic EDF file: 10 records of 0.5 s with 50
// samples per record per signal (100 Hz, 500 samples total).
func writeEDF(t testing.TB, signals []edfSignal) string {
	t.Helper()

	const (
		records          = 10
		samplesPerRecord = 50
		duration         = 0.5
	)

	buf := &bytes.Buffer{}
	pad := func(s string, width int) {
		fmt.Fprintf(buf, "%-*s", width, s)
	}

	headerBytes := 256 + len(signals)*256
	pad("0", 8)
	pad("X F X Test", 80)
	pad("Startdate 02-JAN-2024 X X X", 80)
	pad("02.01.24", 8)
	pad("10.30.00", 8)
	pad(fmt.Sprintf("%d", headerBytes), 8)
	pad("", 44)
	pad(fmt.Sprintf("%d", records), 8)
	pad(fmt.Sprintf("%g", duration), 8)
	pad(fmt.Sprintf("%d", len(signals)), 4)

	for _, sig := range signals {
		pad(sig.label, 16)
	}
	for range signals {
		pad("", 80)
	}
	for range signals {
		pad("uV", 8)
	}
	for _, sig := range signals {
		pad(fmt.Sprintf("%g", sig.physMin), 8)
	}
	for _, sig := range signals {
		pad(fmt.Sprintf("%g", sig.physMax), 8)
	}
	for _, sig := range signals {
		pad(fmt.Sprintf("%d", sig.digMin), 8)
	}
	for _, sig := range signals {
		pad(fmt.Sprintf("%d", sig.digMax), 8)
	}
	for range signals {
		pad("", 80)
	}
	for range signals {
		pad(fmt.Sprintf("%d", samplesPerRecord), 8)
	}
	for range signals {
		pad("", 32)
	}

	for r := 0; r < records; r++ {
		for _, sig := range signals {
			for s := 0; s < samplesPerRecord; s++ {
				var v int16
				if sig.value != nil {
					v = sig.value(r*samplesPerRecord + s)
				}
				binary.Write(buf, binary.LittleEndian, v)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "rec.edf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeTwoChannelEDF is the default fixture: ch0 holds its sample index,
// ch1 holds 1000 + index.
func writeTwoChannelEDF(t testing.TB) string {
	return writeEDF(t, []edfSignal{
		identitySignal("EEG C3", func(s int) int16 { return int16(s) }),
		identitySignal("EEG C4", func(s int) int16 { return int16(1000 + s) }),
	})
}

// writeBrainVision creates a .vhdr/.eeg pair: three INT_16 channels with
// resolution 1, value = channel*100 + sampleIndex.
func writeBrainVision(t testing.TB, orientation string, sampleCount int) string {
	t.Helper()

	dir := t.TempDir()
	headerPath := filepath.Join(dir, "rec.vhdr")

	header := "Brain Vision Data Exchange Header File Version 1.0\n" +
		"\n" +
		"[Common Infos]\n" +
		"Codepage=UTF-8\n" +
		"DataFile=rec.eeg\n" +
		"DataFormat=BINARY\n" +
		"DataOrientation=" + orientation + "\n" +
		"NumberOfChannels=3\n" +
		"SamplingInterval=10000\n" +
		"\n" +
		"[Binary Infos]\n" +
		"BinaryFormat=INT_16\n" +
		"\n" +
		"[Channel Infos]\n" +
		"Ch1=Fp1,,1,µV\n" +
		"Ch2=Fp2,,1,µV\n" +
		"Ch3=Cz,,1,µV\n"

	if err := os.WriteFile(headerPath, []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	if orientation == "VECTORIZED" {
		for ch := 0; ch < 3; ch++ {
			for s := 0; s < sampleCount; s++ {
				binary.Write(buf, binary.LittleEndian, int16(ch*100+s))
			}
		}
	} else {
		for s := 0; s < sampleCount; s++ {
			for ch := 0; ch < 3; ch++ {
				binary.Write(buf, binary.LittleEndian, int16(ch*100+s))
			}
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "rec.eeg"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	return headerPath
}

// MEF3 fixture layout constants, mirroring the on-disk format.
const (
	mefHeaderBytes    = 1024
	mefSection1Bytes  = 768
	mefTS2Offset      = mefHeaderBytes + mefSection1Bytes
	mefAcqNumberField = mefTS2Offset + 6152
	mefRateField      = mefTS2Offset + 6160
	mefUnitsField     = mefTS2Offset + 6208
	mefSamplesField   = mefTS2Offset + 6360
	mefMetadataBytes  = mefTS2Offset + 6656
)

// writeMEF3Session builds a minimal .mefd session directory with the
// given channels, one segment each.
func writeMEF3Session(t testing.TB, names []string, rate float64, samples uint64) string {
	t.Helper()

	session := filepath.Join(t.TempDir(), "sub-01.mefd")
	for i, name := range names {
		seg := filepath.Join(session, name+".timd", name+"-000000.segd")
		if err := os.MkdirAll(seg, 0o755); err != nil {
			t.Fatal(err)
		}

		data := make([]byte, mefMetadataBytes)
		copy(data[8:], "tmet")
		data[13] = 3 // version major
		data[14] = 0
		data[15] = 1 // little-endian
		copy(data[52:], name)
		// Distinct non-nil level and file UUIDs per channel.
		data[628] = byte(i + 1)
		data[644] = byte(i + 0x81)
		binary.LittleEndian.PutUint64(data[mefAcqNumberField:], uint64(i+1))
		binary.LittleEndian.PutUint64(data[mefRateField:], math.Float64bits(rate))
		copy(data[mefUnitsField:], "uV")
		binary.LittleEndian.PutUint64(data[mefSamplesField:], samples)

		if err := os.WriteFile(filepath.Join(seg, name+".tmet"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return session
}

// fakeDecoder is a SampleSource returning channel*1000 + sampleIndex.
type fakeDecoder struct {
	calls int
}

func (d *fakeDecoder) Decode(channel int, rng ieegio.SampleRange) ([]float64, error) {
	d.calls++
	out := make([]float64, 0, rng.Count())
	for s := rng.Start; s <= rng.End; s++ {
		out = append(out, float64(channel)*1000+float64(s))
	}
	return out, nil
}
