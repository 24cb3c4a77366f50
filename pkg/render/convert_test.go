package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	if err := WriteFile(path, []byte("data")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "data" {
		t.Errorf("ReadFile = %q, %v", got, err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, temporary file left behind", len(entries))
	}
}

func TestToPDF_WithoutRSVG(t *testing.T) {
	if RSVGAvailable() {
		t.Skip("rsvg-convert installed")
	}
	if _, err := ToPDF(context.Background(), []byte("<svg/>")); err == nil {
		t.Error("ToPDF should fail without rsvg-convert")
	}
}
