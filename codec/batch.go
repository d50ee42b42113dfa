package codec

import (
	"fmt"
	"runtime"

	"github.com/bearlytools/protogen/schema"
	"github.com/gostdlib/base/context"
	"golang.org/x/sync/errgroup"
)

type batchConfig struct {
	workers int
}

// BatchOption is an optional argument to EncodeAll and DecodeAll.
type BatchOption func(*batchConfig)

// WithWorkers sets the number of goroutines used. Values below 1 use GOMAXPROCS.
func WithWorkers(n int) BatchOption {
	return func(c *batchConfig) {
		c.workers = n
	}
}

func newBatchConfig(opts []BatchOption) batchConfig {
	c := batchConfig{}
	for _, o := range opts {
		o(&c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// EncodeAll encodes values concurrently. The result at index i is the encoding of
// values[i]. The first error cancels the remaining work and is returned.
func EncodeAll(ctx context.Context, s *schema.Structure, values []*Value, opts ...BatchOption) ([][]byte, error) {
	c := newBatchConfig(opts)
	out := make([][]byte, len(values))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, v := range values {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := Encode(gctx, s, v)
			if err != nil {
				return fmt.Errorf("value %d: %w", i, err)
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeAll decodes every buffer in data concurrently. The result at index i is decoded
// from data[i]. The first error cancels the remaining work and is returned.
func DecodeAll(ctx context.Context, s *schema.Structure, data [][]byte, opts ...BatchOption) ([]*Value, error) {
	c := newBatchConfig(opts)
	out := make([]*Value, len(data))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, b := range data {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := Decode(gctx, s, b)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
