package avatar

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestNewBankDimensions(t *testing.T) {
	tests := []struct {
		name          string
		srcW, srcH    int
		width, height int
	}{
		{"square to square", 64, 64, 512, 512},
		{"wide source", 300, 100, 512, 512},
		{"tall source", 90, 400, 512, 512},
		{"downscale", 1024, 768, 128, 128},
		{"non-square target", 50, 50, 320, 200},
		{"single pixel source", 1, 1, 16, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.srcW, tt.srcH))
			bank, err := NewBank(src, tt.width, tt.height, DefaultIdleDim)
			if err != nil {
				t.Fatalf("NewBank: unexpected error: %v", err)
			}
			if bank.Width() != tt.width || bank.Height() != tt.height {
				t.Fatalf("bank size = %dx%d, want %dx%d", bank.Width(), bank.Height(), tt.width, tt.height)
			}
			want := tt.width * tt.height * 4
			if len(bank.Idle()) != want || len(bank.Speaking()) != want {
				t.Fatalf("buffer lengths idle=%d speaking=%d, want %d", len(bank.Idle()), len(bank.Speaking()), want)
			}
			if bank.Stride() != tt.width*4 {
				t.Errorf("Stride() = %d, want %d", bank.Stride(), tt.width*4)
			}
		})
	}
}

func TestNewBankIdleIsDimmed(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 30, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 50, B: 0, A: 128})

	bank, err := NewBank(src, 2, 1, 50)
	if err != nil {
		t.Fatalf("NewBank: unexpected error: %v", err)
	}

	wantSpeaking := []byte{200, 100, 30, 255, 255, 50, 0, 128}
	wantIdle := []byte{150, 50, 0, 255, 205, 0, 0, 128}
	if !bytes.Equal(bank.Speaking(), wantSpeaking) {
		t.Errorf("Speaking() = %v, want %v", bank.Speaking(), wantSpeaking)
	}
	if !bytes.Equal(bank.Idle(), wantIdle) {
		t.Errorf("Idle() = %v, want %v", bank.Idle(), wantIdle)
	}
}

func TestNewBankNearestNeighbour(t *testing.T) {
	// 2x1 source, left red and right blue, scaled to 4x2: no blended pixels.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	bank, err := NewBank(src, 4, 2, 0)
	if err != nil {
		t.Fatalf("NewBank: unexpected error: %v", err)
	}
	pix := bank.Speaking()
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			i := y*bank.Stride() + x*4
			r, b := pix[i], pix[i+2]
			wantR, wantB := byte(255), byte(0)
			if x >= 2 {
				wantR, wantB = 0, 255
			}
			if r != wantR || b != wantB {
				t.Fatalf("pixel (%d,%d) = r%d b%d, want r%d b%d", x, y, r, b, wantR, wantB)
			}
		}
	}
}

func TestNewBankInvalidDimensions(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for _, d := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if _, err := NewBank(src, d[0], d[1], 50); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewBank(%dx%d) error = %v, want ErrInvalidDimensions", d[0], d[1], err)
		}
	}
}

func TestLoadBankFromPNG(t *testing.T) {
	path := writePNG(t, 30, 10, color.NRGBA{R: 10, G: 60, B: 255, A: 255})

	bank, err := LoadBank(path, 64, 64, 50)
	if err != nil {
		t.Fatalf("LoadBank: unexpected error: %v", err)
	}
	if got := bank.Idle()[:4]; !bytes.Equal(got, []byte{0, 10, 205, 255}) {
		t.Errorf("first idle pixel = %v, want [0 10 205 255]", got)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := DecodeImage(strings.NewReader("not an image")); err == nil {
		t.Fatalf("DecodeImage(garbage): expected error")
	}
}
