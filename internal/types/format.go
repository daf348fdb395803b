package types

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported recording format.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatEDF represents European Data Format recordings (.edf).
	FormatEDF
	// FormatBrainVision represents BrainVision recordings (.vhdr header
	// plus companion data and marker files).
	FormatBrainVision
	// FormatMEF3 represents Multiscale Electrophysiology Format 3.0
	// session directories (.mefd).
	FormatMEF3
)

// String returns the conventional format name.
func (f Format) String() string {
	switch f {
	case FormatEDF:
		return "EDF"
	case FormatBrainVision:
		return "BrainVision"
	case FormatMEF3:
		return "MEF3"
	default:
		return "Unknown"
	}
}

// Extensions returns the path extensions associated with this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatEDF:
		return []string{".edf"}
	case FormatBrainVision:
		return []string{".vhdr"}
	case FormatMEF3:
		return []string{".mefd"}
	default:
		return nil
	}
}

// brainVisionMagic is the mandatory first line of a .vhdr file (the version
// suffix varies).
const brainVisionMagic = "Brain Vision Data Exchange Header File"

// DetectFormat determines the recording format for a path.
//
// The extension selects the candidate format and a magic-byte probe
// confirms it: the EDF version field must be "0", the BrainVision header
// must open with its identification line, and a MEF3 session must be a
// directory. A path matching no supported format or failing its probe
// yields a FormatError.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".edf":
		return probeEDF(path)
	case ".vhdr":
		return probeBrainVision(path)
	case ".mefd":
		return probeMEF3(path)
	default:
		return FormatUnknown, &FormatError{Path: path, Reason: "unrecognized format extension " + ext}
	}
}

func probeEDF(path string) (Format, error) {
	magic, err := readPrefix(path, 8)
	if err != nil {
		return FormatUnknown, err
	}
	// The EDF version field is eight ASCII bytes: "0" followed by spaces.
	if strings.TrimRight(string(magic), " ") != "0" {
		return FormatUnknown, &FormatError{Path: path, Reason: "not an EDF file (bad version field)"}
	}
	return FormatEDF, nil
}

func probeBrainVision(path string) (Format, error) {
	prefix, err := readPrefix(path, 64)
	if err != nil {
		return FormatUnknown, err
	}
	// Tolerate a UTF-8 byte order mark before the identification line.
	prefix = bytes.TrimPrefix(prefix, []byte{0xEF, 0xBB, 0xBF})
	if !bytes.HasPrefix(prefix, []byte(brainVisionMagic)) {
		return FormatUnknown, &FormatError{Path: path, Reason: "not a BrainVision header (missing identification line)"}
	}
	return FormatBrainVision, nil
}

func probeMEF3(path string) (Format, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FormatUnknown, &IOError{Path: path, Op: "stat", Err: err}
	}
	if !fi.IsDir() {
		return FormatUnknown, &FormatError{Path: path, Reason: "MEF3 session must be a directory"}
	}
	return FormatMEF3, nil
}

// readPrefix reads up to n leading bytes of a file.
func readPrefix(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil {
		return nil, &FormatError{Path: path, Reason: "file too small"}
	}
	return buf[:read], nil
}
