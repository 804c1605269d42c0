package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/internal/app/repository"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"github.com/trouvetonartisan/backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrArtisanNotFound = errors.New("artisan not found")
	ErrSearchTooShort  = errors.New("search query too short")
)

const (
	DefaultPage     = 1
	DefaultLimit    = 12
	MaxLimit        = 100
	FeaturedLimit   = 3
	SearchLimit     = 20
	MinSearchLength = 2
)

// ArtisanQuery is the validated form of the listing query string.
type ArtisanQuery struct {
	Page         int
	Limit        int
	CategorySlug string
	Search       string
}

// Offset of the first row of the requested page.
func (q ArtisanQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseArtisanQuery builds an ArtisanQuery from raw query parameters.
// Unparseable or non-positive page/limit fall back to defaults, limit is
// capped at MaxLimit and page at the last page whose offset fits in an
// int32. A non-empty search shorter than MinSearchLength returns
// ErrSearchTooShort.
func ParseArtisanQuery(page, limit, category, search string) (ArtisanQuery, error) {
	q := ArtisanQuery{
		Page:         parsePositive(page, DefaultPage),
		Limit:        parsePositive(limit, DefaultLimit),
		CategorySlug: util.SanitizeText(category),
		Search:       util.SanitizeText(search),
	}

	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if maxPage := math.MaxInt32 / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}

	if q.Search != "" && utf8.RuneCountInString(q.Search) < MinSearchLength {
		return q, ErrSearchTooShort
	}

	return q, nil
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// ParseArtisanID accepts only positive integers. Anything else is reported
// as ErrArtisanNotFound.
func ParseArtisanID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrArtisanNotFound
	}
	return uint(id), nil
}

// ArtisanPage is one page of a listing plus its pagination metadata.
type ArtisanPage struct {
	Artisans    []model.Artisan
	Total       int64
	TotalPages  int
	CurrentPage int
}

type ArtisanService interface {
	ListArtisans(ctx context.Context, query ArtisanQuery) (*ArtisanPage, error)
	GetArtisanByID(ctx context.Context, id uint) (*model.Artisan, error)
	GetFeaturedArtisans(ctx context.Context) ([]model.Artisan, error)
	SearchArtisans(ctx context.Context, query string) ([]model.Artisan, error)
}

type artisanService struct {
	artisanRepo repository.ArtisanRepository
}

func NewArtisanService(artisanRepo repository.ArtisanRepository) ArtisanService {
	return &artisanService{artisanRepo: artisanRepo}
}

func (s *artisanService) ListArtisans(ctx context.Context, query ArtisanQuery) (*ArtisanPage, error) {
	logger.Debug("Listing artisans", map[string]interface{}{
		"page":     query.Page,
		"limit":    query.Limit,
		"category": query.CategorySlug,
		"search":   query.Search,
	})

	artisans, total, err := s.artisanRepo.FindWithFilter(ctx, repository.ArtisanFilter{
		CategorySlug: query.CategorySlug,
		Search:       query.Search,
		Limit:        query.Limit,
		Offset:       query.Offset(),
	})
	if err != nil {
		return nil, err
	}

	return &ArtisanPage{
		Artisans:    artisans,
		Total:       total,
		TotalPages:  totalPages(total, query.Limit),
		CurrentPage: query.Page,
	}, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func (s *artisanService) GetArtisanByID(ctx context.Context, id uint) (*model.Artisan, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Artisan not found", map[string]interface{}{
				"artisan_id": id,
			})
			return nil, ErrArtisanNotFound
		}
		return nil, err
	}
	return artisan, nil
}

func (s *artisanService) GetFeaturedArtisans(ctx context.Context) ([]model.Artisan, error) {
	return s.artisanRepo.FindFeatured(ctx, FeaturedLimit)
}

func (s *artisanService) SearchArtisans(ctx context.Context, query string) ([]model.Artisan, error) {
	query = util.SanitizeText(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return nil, ErrSearchTooShort
	}

	logger.Debug("Searching artisans", map[string]interface{}{
		"query": query,
	})
	return s.artisanRepo.SearchByName(ctx, query, SearchLimit)
}
