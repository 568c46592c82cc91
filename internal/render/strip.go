package render

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/koo5/horizon/pkg/core"
)

// ThumbLoader resolves a thumbnail reference to image bytes.
type ThumbLoader func(ref string) ([]byte, error)

// Item is one materialized thumbnail on the strip.
type Item struct {
	Placement core.PlacedPhoto
	Thumb     []byte
}

// StripSurface is an in-process photo strip. Every ReplaceAll destroys the
// current items and recreates the strip from scratch; thumbnail bytes are
// kept in an LRU cache so pans back and forth do not reload from disk.
type StripSurface struct {
	mu     sync.RWMutex
	items  []Item
	cache  *lru.Cache[string, []byte]
	loader ThumbLoader
	log    *slog.Logger
}

// NewStripSurface creates a strip with an LRU thumbnail cache of cacheSize
// entries.
func NewStripSurface(loader ThumbLoader, cacheSize int, log *slog.Logger) (*StripSurface, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &StripSurface{
		cache:  cache,
		loader: loader,
		log:    log,
	}, nil
}

// ReplaceAll rebuilds the strip for the given placements. A placement whose
// thumbnail fails to load is shown without image bytes rather than dropped,
// so the strip always mirrors the placement list.
func (s *StripSurface) ReplaceAll(ctx context.Context, photos []core.PlacedPhoto) error {
	items := make([]Item, 0, len(photos))
	for _, p := range photos {
		if err := ctx.Err(); err != nil {
			return err
		}
		items = append(items, Item{
			Placement: p,
			Thumb:     s.thumb(p.Record.Thumbnail),
		})
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Items returns the currently materialized strip in draw order.
func (s *StripSurface) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *StripSurface) thumb(ref string) []byte {
	if ref == "" || s.loader == nil {
		return nil
	}
	if data, ok := s.cache.Get(ref); ok {
		return data
	}
	data, err := s.loader(ref)
	if err != nil {
		s.log.Warn("Thumbnail load failed", "ref", ref, "error", err)
		return nil
	}
	s.cache.Add(ref, data)
	return data
}
