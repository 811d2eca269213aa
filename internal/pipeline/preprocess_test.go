package pipeline

import (
	"bytes"
	"image"
	"testing"
)

func TestDownsample_PassThroughWithinBounds(t *testing.T) {
	original := pngBytes(t, 800, 600)

	out, mime, err := downsample(original, maxBoundingDim)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Errorf("expected image/png, got %s", mime)
	}
	if !bytes.Equal(out, original) {
		t.Error("in-bounds image must pass through unmodified")
	}
}

func TestDownsample_ScalesLongestSide(t *testing.T) {
	wide := pngBytes(t, 2048, 512)

	out, mime, err := downsample(wide, maxBoundingDim)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected re-encode to image/jpeg, got %s", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 1024 || b.Dy() != 256 {
		t.Errorf("expected 1024x256, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDownsample_TallImage(t *testing.T) {
	tall := pngBytes(t, 300, 3000)

	out, _, err := downsample(tall, maxBoundingDim)
	if err != nil {
		t.Fatal(err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dy() != 1024 {
		t.Errorf("expected height 1024, got %d", b.Dy())
	}
	if b.Dx() > maxBoundingDim {
		t.Errorf("width %d exceeds bound", b.Dx())
	}
}

func TestDownsample_RejectsGarbage(t *testing.T) {
	if _, _, err := downsample([]byte("garbage"), maxBoundingDim); err == nil {
		t.Fatal("expected decode error")
	}
}
