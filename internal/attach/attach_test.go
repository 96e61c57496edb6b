package attach

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solidImage(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solidImage(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

// decodeURI decodes an image data URI back to an image.
func decodeURI(t *testing.T, uri string) (string, image.Image) {
	t.Helper()
	mime, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return mime, img
}

func TestImageFormats(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg", encodeJPEG(100, 80)},
		{"png", encodePNG(100, 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := Image(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Image: %v", err)
			}
			if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
				t.Errorf("expected JPEG data URI, got prefix %q", uri[:min(len(uri), 30)])
			}
			mime, img := decodeURI(t, uri)
			if mime != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", mime)
			}
			if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
				t.Errorf("small image should keep its size, got %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}

func TestImageDownscale(t *testing.T) {
	uri, err := Image(bytes.NewReader(encodeJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	_, img := decodeURI(t, uri)
	b := img.Bounds()
	if b.Dx() != MaxDimension || b.Dy() != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, b.Dx(), b.Dy())
	}
}

func TestImageRejectsUnsupported(t *testing.T) {
	for _, data := range [][]byte{[]byte("not an image"), []byte("GIF89a...")} {
		if _, err := Image(bytes.NewReader(data)); err == nil {
			t.Errorf("expected error for %q", data)
		}
	}
}

func TestImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, encodePNG(10, 10), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ImageFile(path); err != nil {
		t.Errorf("ImageFile: %v", err)
	}
	if _, err := ImageFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseDataURI(t *testing.T) {
	mime, data, err := ParseDataURI(DataURI("audio/mp4", []byte("hello")))
	if err != nil || mime != "audio/mp4" || string(data) != "hello" {
		t.Errorf("round trip failed: %q %q %v", mime, data, err)
	}

	for _, bad := range []string{"http://x", "data:image/png", "data:image/png,abc", "data:image/png;base64,!!"} {
		if _, _, err := ParseDataURI(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

// makeWAV builds a mono 16-bit PCM WAV of the given length at 8 kHz.
func makeWAV(d time.Duration) []byte {
	const sampleRate = 8000
	const byteRate = sampleRate * 2
	n := int(d.Seconds() * byteRate)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+n))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(n))
	buf.Write(make([]byte, n))
	return buf.Bytes()
}

func TestWAVDuration(t *testing.T) {
	got, err := WAVDuration(makeWAV(3 * time.Second))
	if err != nil {
		t.Fatalf("WAVDuration: %v", err)
	}
	if got != 3*time.Second {
		t.Errorf("expected 3s, got %v", got)
	}

	if _, err := WAVDuration([]byte("ID3 mp3 data")); !errors.Is(err, ErrUnknownDuration) {
		t.Errorf("expected ErrUnknownDuration, got %v", err)
	}
}

func TestAudioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, makeWAV(2*time.Second), 0o600); err != nil {
		t.Fatal(err)
	}

	clip, err := AudioFile(path, 0)
	if err != nil {
		t.Fatalf("AudioFile: %v", err)
	}
	if clip.Duration != 2*time.Second {
		t.Errorf("expected 2s from header, got %v", clip.Duration)
	}
	if !strings.HasPrefix(clip.DataURI, "data:audio/wav;base64,") {
		t.Errorf("unexpected data URI prefix")
	}

	clip, err = AudioFile(path, 5*time.Second)
	if err != nil || clip.Duration != 5*time.Second {
		t.Errorf("explicit duration should win, got %v (%v)", clip, err)
	}
}

func TestAudioRejectsUnknownFormat(t *testing.T) {
	if _, err := Audio([]byte("plain text, not audio"), time.Second); err == nil {
		t.Error("expected error for text payload")
	}
	if _, err := Audio(nil, time.Second); err == nil {
		t.Error("expected error for empty clip")
	}
}
