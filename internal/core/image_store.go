package core

import (
	"context"

	"thumblytic-backend-go/internal/gemini"
)

// InlineImageStore keeps images as data URLs on the record itself.
type InlineImageStore struct{}

func (InlineImageStore) Store(_ context.Context, _ string, img gemini.Image) (string, error) {
	return img.DataURL(), nil
}
