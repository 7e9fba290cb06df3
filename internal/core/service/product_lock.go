package service

import "sync"

// productLock serializes operations that target the same product id.
type productLock struct {
	mu    sync.Mutex
	locks map[int]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newProductLock() *productLock {
	return &productLock{locks: make(map[int]*refMutex)}
}

// Lock blocks until productID is free and returns the matching unlock func.
func (p *productLock) Lock(productID int) func() {
	p.mu.Lock()
	m, ok := p.locks[productID]
	if !ok {
		m = &refMutex{}
		p.locks[productID] = m
	}
	m.refs++
	p.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		p.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(p.locks, productID)
		}
		p.mu.Unlock()
	}
}
