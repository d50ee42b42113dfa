package codec

import (
	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/values/sizes"
)

// scratch holds the buffers Encode writes into before copying out the used bytes.
var scratch = newDiffSizePools()

type diffSizePools struct {
	_64B  *sync.Pool[*[]byte]
	_256B *sync.Pool[*[]byte]
	_1K   *sync.Pool[*[]byte]
	_4K   *sync.Pool[*[]byte]
	_16K  *sync.Pool[*[]byte]
	_64K  *sync.Pool[*[]byte]
}

func newPool(name string, size int) *sync.Pool[*[]byte] {
	return sync.NewPool(
		context.Background(),
		name,
		func() *[]byte {
			b := make([]byte, size)
			return &b
		},
		sync.WithBuffer(10),
	)
}

func newDiffSizePools() diffSizePools {
	return diffSizePools{
		_64B:  newPool("scratch64", 64),
		_256B: newPool("scratch256", 256),
		_1K:   newPool("scratch1K", 1*sizes.KiB),
		_4K:   newPool("scratch4K", 4*sizes.KiB),
		_16K:  newPool("scratch16K", 16*sizes.KiB),
		_64K:  newPool("scratch64K", 64*sizes.KiB),
	}
}

// Get pulls a zeroed slice of len sizeBytes.
func (d *diffSizePools) Get(ctx context.Context, sizeBytes int) []byte {
	var b *[]byte
	switch {
	case sizeBytes <= 64:
		b = d._64B.Get(ctx)
	case sizeBytes <= 256:
		b = d._256B.Get(ctx)
	case sizeBytes <= 1*sizes.KiB:
		b = d._1K.Get(ctx)
	case sizeBytes <= 4*sizes.KiB:
		b = d._4K.Get(ctx)
	case sizeBytes <= 16*sizes.KiB:
		b = d._16K.Get(ctx)
	case sizeBytes <= 64*sizes.KiB:
		b = d._64K.Get(ctx)
	default:
		return make([]byte, sizeBytes)
	}
	buf := (*b)[:sizeBytes]
	clear(buf)
	return buf
}

// Put puts a []byte into a pool for reuse.
func (d *diffSizePools) Put(ctx context.Context, b []byte) {
	b = b[:cap(b)]
	switch cap(b) {
	case 64:
		d._64B.Put(ctx, &b)
	case 256:
		d._256B.Put(ctx, &b)
	case 1 * sizes.KiB:
		d._1K.Put(ctx, &b)
	case 4 * sizes.KiB:
		d._4K.Put(ctx, &b)
	case 16 * sizes.KiB:
		d._16K.Put(ctx, &b)
	case 64 * sizes.KiB:
		d._64K.Put(ctx, &b)
	}
}
