// Package inference implements the reference visual question answering
// endpoint that the form submits to. It accepts one image and one question
// per request and replies with a markdown answer produced by an Answerer.
package inference

import "context"

// Image is an uploaded image ready to be handed to a model.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Answerer answers a question about an image.
type Answerer interface {
	Answer(ctx context.Context, img Image, question string) (string, error)
}

// AnswererFunc adapts a function to Answerer.
type AnswererFunc func(ctx context.Context, img Image, question string) (string, error)

// Answer calls f.
func (f AnswererFunc) Answer(ctx context.Context, img Image, question string) (string, error) {
	return f(ctx, img, question)
}
