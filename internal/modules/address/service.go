package address

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	minQueryRunes = 2
	maxResults    = 10
)

// Service searches streets for the address form.
type Service interface {
	// SearchStreets never fails. Upstream errors degrade to an empty list.
	SearchStreets(ctx context.Context, city, query string) []string
}

type service struct {
	geocoder Geocoder
	logger   *zap.Logger
}

// NewService creates a new address service.
func NewService(geocoder Geocoder, logger *zap.Logger) Service {
	return &service{geocoder: geocoder, logger: logger}
}

func (s *service) SearchStreets(ctx context.Context, city, query string) []string {
	city = strings.TrimSpace(city)
	query = strings.TrimSpace(query)
	if city == "" || utf8.RuneCountInString(query) < minQueryRunes {
		return []string{}
	}

	found, err := s.geocoder.SearchStreets(ctx, city, query, maxResults)
	if err != nil {
		s.logger.Warn("Street search failed, returning no results",
			zap.String("city", city),
			zap.String("query", query),
			zap.Error(err),
		)
		return []string{}
	}

	seen := make(map[string]struct{}, len(found))
	streets := make([]string, 0, len(found))
	for _, name := range found {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		streets = append(streets, name)
	}
	return streets
}
