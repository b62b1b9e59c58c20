package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxPools bounds the number of option sets kept. Every terminal resize
// produces new widths, so old sets are dropped rather than kept forever.
const maxPools = 16

// rendererPool keeps one sync.Pool per option set. A TermRenderer must not
// be used by two goroutines at once, so renderers are borrowed, not shared.
type rendererPool struct {
	mu    sync.RWMutex
	pools map[Options]*sync.Pool
}

var globalPool = newRendererPool()

func newRendererPool() *rendererPool {
	return &rendererPool{pools: make(map[Options]*sync.Pool)}
}

func (p *rendererPool) getPool(opts Options) *sync.Pool {
	p.mu.RLock()
	pool, ok := p.pools[opts]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[opts]; ok {
		return pool
	}
	if len(p.pools) >= maxPools {
		p.pools = make(map[Options]*sync.Pool)
	}

	pool = &sync.Pool{
		New: func() any {
			renderer, err := createRenderer(opts)
			if err != nil {
				return nil
			}
			return renderer
		},
	}
	p.pools[opts] = pool
	return pool
}

func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	renderer := p.getPool(opts).Get()
	if renderer == nil {
		// New failed; surface the construction error
		return createRenderer(opts)
	}
	return renderer.(*glamour.TermRenderer), nil
}

func (p *rendererPool) put(opts Options, renderer *glamour.TermRenderer) {
	if renderer == nil {
		return
	}
	p.getPool(opts).Put(renderer)
}

func (p *rendererPool) size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pools)
}

func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		styleOption(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}

	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every pooled renderer
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.pools = make(map[Options]*sync.Pool)
	globalPool.mu.Unlock()
}

// CacheSize returns the number of option sets currently pooled
func CacheSize() int {
	return globalPool.size()
}
