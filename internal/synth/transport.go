package synth

import (
	"context"
	"io"
)

// Transport is one way of calling the remote synthesis service. It writes
// audio for req into w and reports failures as errors whose messages carry
// the service's status text, so they can be classified by IsAuthFailure.
type Transport interface {
	Name() string
	Synthesize(ctx context.Context, req Request, w io.Writer) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc struct {
	Label string
	Fn    func(ctx context.Context, req Request, w io.Writer) error
}

// Name implements Transport.
func (t TransportFunc) Name() string {
	return t.Label
}

// Synthesize implements Transport.
func (t TransportFunc) Synthesize(ctx context.Context, req Request, w io.Writer) error {
	return t.Fn(ctx, req, w)
}
