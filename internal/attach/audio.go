package attach

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// MaxAudioBytes bounds one voice clip.
const MaxAudioBytes = 10 << 20

// ErrUnknownDuration is returned when a clip's length cannot be read from
// its header.
var ErrUnknownDuration = errors.New("audio duration unknown")

// Clip is an encoded voice message.
type Clip struct {
	DataURI  string
	Duration time.Duration
}

// audioMIME maps sniffed content types to the type sent to the backend.
// M4A recordings sniff as MP4 video.
var audioMIME = map[string]string{
	"audio/mpeg":      "audio/mpeg",
	"audio/wave":      "audio/wav",
	"audio/aiff":      "audio/aiff",
	"application/ogg": "audio/ogg",
	"video/mp4":       "audio/mp4",
}

// Audio encodes a recorded clip. The duration comes from the recorder.
func Audio(data []byte, duration time.Duration) (*Clip, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio clip")
	}
	if len(data) > MaxAudioBytes {
		return nil, fmt.Errorf("audio clip larger than %d bytes", MaxAudioBytes)
	}
	mime, ok := audioMIME[http.DetectContentType(data)]
	if !ok {
		return nil, fmt.Errorf("unsupported audio format: %s", http.DetectContentType(data))
	}
	return &Clip{DataURI: DataURI(mime, data), Duration: duration}, nil
}

// AudioFile reads a clip from disk. WAV durations are read from the header;
// other formats need an explicit duration and yield ErrUnknownDuration
// when duration is zero.
func AudioFile(path string, duration time.Duration) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if duration == 0 {
		duration, err = WAVDuration(data)
		if err != nil {
			return nil, err
		}
	}
	return Audio(data, duration)
}

// WAVDuration returns the play time of a PCM WAV file from its fmt and data
// chunk headers.
func WAVDuration(data []byte) (time.Duration, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return 0, ErrUnknownDuration
	}

	var byteRate uint32
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		switch id {
		case "fmt ":
			if body+12 > len(data) {
				return 0, ErrUnknownDuration
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			if byteRate == 0 {
				return 0, ErrUnknownDuration
			}
			size = min(size, len(data)-body)
			return time.Duration(float64(size) / float64(byteRate) * float64(time.Second)), nil
		}
		off = body + size + size%2
	}
	return 0, ErrUnknownDuration
}
