package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hostel_hub/internal/domain"
)

// SyncService copies hostels from the hosted database into local storage.
type SyncService struct {
	source domain.Persistence
	dst    domain.HostelWriter
	cache  domain.Cache
}

func NewSyncService(src domain.Persistence, dst domain.HostelWriter, cache domain.Cache) *SyncService {
	return &SyncService{source: src, dst: dst, cache: cache}
}

// SyncHostel refreshes one hostel. A hostel missing upstream is logged and
// skipped, and the cached catalog is dropped so it stops being served.
func (s *SyncService) SyncHostel(ctx context.Context, id string) error {
	h, err := s.source.GetHostel(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("hostel_id", id).Msg("hostel missing upstream; skipped")
		InvalidateCatalog(ctx, s.cache)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch hostel %s: %w", id, err)
	}
	return s.Store(ctx, h)
}

// Store validates and writes one hostel that was already fetched.
func (s *SyncService) Store(ctx context.Context, h domain.Hostel) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if err := s.dst.UpsertHostel(ctx, h); err != nil {
		return fmt.Errorf("upsert hostel %s: %w", h.ID, err)
	}
	InvalidateCatalog(ctx, s.cache)
	return nil
}

// Hostels lists every hostel upstream.
func (s *SyncService) Hostels(ctx context.Context) ([]domain.Hostel, error) {
	return s.source.ListHostels(ctx)
}
