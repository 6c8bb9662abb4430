package render

import (
	"context"
	"errors"
	"testing"
)

func TestConvertWithoutConverter(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	if HasConverter() {
		t.Fatal("HasConverter() = true with an empty PATH")
	}
	if _, err := ToPDF(context.Background(), []byte("<svg/>")); !errors.Is(err, ErrNoConverter) {
		t.Errorf("ToPDF error = %v, want ErrNoConverter", err)
	}
	if _, err := ToPNG(context.Background(), []byte("<svg/>"), 2); !errors.Is(err, ErrNoConverter) {
		t.Errorf("ToPNG error = %v, want ErrNoConverter", err)
	}
}

func TestToPNGRejectsScale(t *testing.T) {
	if _, err := ToPNG(context.Background(), []byte("<svg/>"), 0); err == nil {
		t.Error("ToPNG with scale 0 should fail")
	}
}

func TestToPDF(t *testing.T) {
	if !HasConverter() {
		t.Skip(Converter + " not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)
	pdf, err := ToPDF(context.Background(), svg)
	if err != nil {
		t.Fatal(err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Errorf("output does not look like a PDF: %q", pdf[:min(len(pdf), 16)])
	}
}
