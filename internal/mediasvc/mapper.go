package mediasvc

import "github.com/mmcahill/reeldeck/internal/domain"

// Wire records are normalized into domain.MediaItem immediately after
// fetch; the optional-field asymmetry between bare and enriched responses
// never leaves this package.

func mapItem(dto mediaItem) domain.MediaItem {
	return domain.MediaItem{
		ID:          dto.ID,
		Title:       dto.Title,
		ReleaseDate: dto.ReleaseDate,
		PosterURL:   dto.PosterPath,
		BackdropURL: dto.BackdropPath,
		Type:        mapMediaType(dto.MediaType),
		Genres:      dto.Genres,
		Cast:        dto.Cast,
		Similarity:  dto.Similarity,
	}
}

func mapItems(dtos []mediaItem) []domain.MediaItem {
	items := make([]domain.MediaItem, len(dtos))
	for i, dto := range dtos {
		items[i] = mapItem(dto)
	}
	return items
}

func mapSearchItem(dto mediaSearchItem) domain.MediaItem {
	item := mapItem(dto.mediaItem)
	item.UserRating = dto.UserRating
	item.Bookmarked = dto.Bookmarked
	return item
}

func mapSearchItems(dtos []mediaSearchItem) []domain.MediaItem {
	items := make([]domain.MediaItem, len(dtos))
	for i, dto := range dtos {
		items[i] = mapSearchItem(dto)
	}
	return items
}

func mapMediaType(t string) domain.MediaType {
	if t == "tv" || t == "series" {
		return domain.MediaTypeSeries
	}
	return domain.MediaTypeMovie
}
