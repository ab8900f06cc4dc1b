package gemini

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidImage is returned when a payload does not decode to an image.
var ErrInvalidImage = errors.New("invalid image payload")

// Image is raw image bytes plus their MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL encodes the image inline, e.g. "data:image/png;base64,...".
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Extension returns a file extension for the MIME type, including the dot.
func (i Image) Extension() string {
	if ext := mimetype.Lookup(i.MIMEType); ext != nil {
		return ext.Extension()
	}
	return ".png"
}

// ParseImagePayload accepts a data URL or bare base64 and returns the decoded image.
// The declared MIME type of a data URL is ignored; content is sniffed instead.
func ParseImagePayload(payload string) (Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Image{}, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	encoded := payload
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return Image{}, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		encoded = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return Image{}, fmt.Errorf("%w: not base64", ErrInvalidImage)
		}
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty", ErrInvalidImage)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, fmt.Errorf("%w: detected %s", ErrInvalidImage, mt.String())
	}
	return Image{Data: data, MIMEType: baseMIME(mt.String())}, nil
}

// baseMIME drops parameters such as "; charset=utf-8".
func baseMIME(m string) string {
	if idx := strings.Index(m, ";"); idx >= 0 {
		return strings.TrimSpace(m[:idx])
	}
	return m
}
