package sim

import "sync"

// BlockPool recycles fixed-size sample blocks for streaming renders.
type BlockPool struct {
	pool sync.Pool
	size int
}

func NewBlockPool(blockSize int) *BlockPool {
	return &BlockPool{
		size: blockSize,
		pool: sync.Pool{
			New: func() interface{} {
				b := make([]float64, blockSize)
				return &b
			},
		},
	}
}

// Size returns the block length.
func (p *BlockPool) Size() int { return p.size }

func (p *BlockPool) Get() []float64 {
	return *p.pool.Get().(*[]float64)
}

// Put zeroes b and returns it to the pool. Blocks of another size are
// dropped.
func (p *BlockPool) Put(b []float64) {
	if cap(b) != p.size {
		return
	}
	b = b[:p.size]
	for i := range b {
		b[i] = 0
	}
	p.pool.Put(&b)
}
