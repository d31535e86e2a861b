package domain

import (
	"fmt"
	"strings"
	"time"
)

// ItemVariant tells which catalog collection an item id resolves against.
type ItemVariant string

const (
	VariantMovie  ItemVariant = "movie"
	VariantSeries ItemVariant = "series"
	VariantGame   ItemVariant = "game"
	VariantAlbum  ItemVariant = "album"
)

// ItemVariants lists every catalog variant.
var ItemVariants = []ItemVariant{VariantMovie, VariantSeries, VariantGame, VariantAlbum}

func (v ItemVariant) IsValid() bool {
	switch v {
	case VariantMovie, VariantSeries, VariantGame, VariantAlbum:
		return true
	}
	return false
}

// ParseItemVariant normalizes s and checks it names a known variant.
func ParseItemVariant(s string) (ItemVariant, error) {
	v := ItemVariant(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("%w: unknown item variant '%s'", ErrInvalidInput, s)
	}
	return v, nil
}

// RatingAggregate is the rolling (total, count, average) triple kept on a catalog item.
type RatingAggregate struct {
	Total   float64
	Count   int64
	Average float64
}

// AverageOf returns total/count, or 0 when there are no ratings.
func AverageOf(total float64, count int64) float64 {
	if count <= 0 {
		return 0
	}
	return total / float64(count)
}

// Apply returns the aggregate after adding deltaTotal and deltaCount.
// The count never drops below zero and an empty aggregate always has a zero total.
func (a RatingAggregate) Apply(deltaTotal float64, deltaCount int64) RatingAggregate {
	count := a.Count + deltaCount
	total := a.Total + deltaTotal
	if count <= 0 {
		count = 0
		total = 0
	}
	return RatingAggregate{Total: total, Count: count, Average: AverageOf(total, count)}
}

// CatalogItem is a reviewable movie, series, game or album.
// Descriptive fields are owned by catalog ingestion; this service only moves Rating.
type CatalogItem struct {
	ID        string // external key, e.g. an IMDb id
	Variant   ItemVariant
	Title     string
	Year      string
	PosterURL string
	Rating    RatingAggregate
	CreatedAt time.Time
}
