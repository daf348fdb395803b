package binary

import (
	"bytes"
	"strings"
	"testing"
)

func TestSafeReader_ReadAt(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.edf")

	t.Run("valid read", func(t *testing.T) {
		buf := make([]byte, 4)
		if err := sr.ReadAt(buf, 2, "test field"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(buf, []byte{0x03, 0x04, 0x05, 0x06}) {
			t.Errorf("got %v, want [3 4 5 6]", buf)
		}
	})

	t.Run("offset out of bounds", func(t *testing.T) {
		buf := make([]byte, 2)
		err := sr.ReadAt(buf, 100, "test field")
		if err == nil {
			t.Fatal("expected error for out-of-bounds offset")
		}
		if !strings.Contains(err.Error(), "out of bounds") {
			t.Errorf("error should mention bounds: %v", err)
		}
		if !strings.Contains(err.Error(), "test field") {
			t.Errorf("error should mention what was being read: %v", err)
		}
	})

	t.Run("read past end", func(t *testing.T) {
		buf := make([]byte, 6)
		err := sr.ReadAt(buf, 4, "test field")
		if err == nil {
			t.Fatal("expected error for read past end")
		}
		if !strings.Contains(err.Error(), "exceed file size") {
			t.Errorf("error should mention file size: %v", err)
		}
	})

	t.Run("negative offset", func(t *testing.T) {
		buf := make([]byte, 2)
		if err := sr.ReadAt(buf, -1, "test field"); err == nil {
			t.Fatal("expected error for negative offset")
		}
	})
}

func TestReadLE(t *testing.T) {
	data := []byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xFF, 0x00}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.tmet")

	u16, err := ReadLE[uint16](sr, 0, "uint16 field")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u16 != 0x1234 {
		t.Errorf("got %#x, want 0x1234", u16)
	}

	u32, err := ReadLE[uint32](sr, 2, "uint32 field")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u32 != 0x12345678 {
		t.Errorf("got %#x, want 0x12345678", u32)
	}

	u8, err := ReadLE[uint8](sr, 6, "uint8 field")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u8 != 0xFF {
		t.Errorf("got %#x, want 0xFF", u8)
	}

	if _, err := ReadLE[uint64](sr, 4, "uint64 field"); err == nil {
		t.Error("expected error for uint64 read past end")
	}
}

func TestReader_Sequential(t *testing.T) {
	data := []byte("tmet" + "\x00\x00\x00\x00" + "session-name")
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.tmet")
	r := NewReader(sr, 0)

	typ, err := r.ReadString(4, "type string")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ != "tmet" {
		t.Errorf("got %q, want \"tmet\"", typ)
	}

	r.Skip(4)
	if r.Offset() != 8 {
		t.Errorf("offset = %d, want 8", r.Offset())
	}

	name, err := r.ReadBytes(12, "session name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(name) != "session-name" {
		t.Errorf("got %q, want \"session-name\"", name)
	}
}
