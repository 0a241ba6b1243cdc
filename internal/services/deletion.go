package services

import (
	"context"
	"strings"

	"github.com/ggorockee/companyfinder/internal/logger"
)

// DeletionService removes user-selected records from the result cache
type DeletionService struct {
	cache *ResultCache
}

func NewDeletionService(cache *ResultCache) *DeletionService {
	return &DeletionService{cache: cache}
}

// DeleteSelected deletes every record whose id is in ids. Absent ids are not
// an error, so repeating a call is harmless. Only store failures are returned.
func (s *DeletionService) DeleteSelected(ctx context.Context, ids []string) (int64, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return 0, nil
	}

	deleted, err := s.cache.Delete(ctx, unique)
	if err != nil {
		return 0, err
	}
	logger.GetLogger("services.deletion").Infof("Deleted %d rows for %d ids", deleted, len(unique))
	return deleted, nil
}
