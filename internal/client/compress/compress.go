// Package compress defines the image-compression step of the upload
// protocol. The synchronizer treats it as a black box that turns a selected
// binary into a smaller artifact of the same logical asset; the artifact may
// come back under a different (normalized) name, which is why the blob key
// and the registered metadata key can diverge.
package compress

import "context"

// Artifact is the compressor output.
type Artifact struct {
	Name        string
	Data        []byte
	ContentType string
}

// Compressor produces a smaller rendition of an image.
type Compressor interface {
	Compress(ctx context.Context, name string, data []byte, contentType string) (*Artifact, error)
}

// Nop passes input through unchanged. Used in tests and for callers that do
// their own compression upstream.
type Nop struct{}

func (Nop) Compress(_ context.Context, name string, data []byte, contentType string) (*Artifact, error) {
	return &Artifact{Name: name, Data: data, ContentType: contentType}, nil
}
