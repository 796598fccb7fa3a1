package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TrendingItem is an entry of the trending list or of a title search
type TrendingItem struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Poster      string   `json:"poster,omitempty"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
	Year        string   `json:"year,omitempty"`
	MediaType   Kind     `json:"media_type,omitempty"`
}

// UnmarshalJSON normalizes the identifier, poster and year variants the
// catalog API produces
func (t *TrendingItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID          json.Number `json:"id"`
		MID         json.Number `json:"mid"`
		SID         json.Number `json:"sid"`
		Title       string      `json:"title"`
		Poster      string      `json:"poster"`
		PosterPath  string      `json:"poster_path"`
		VoteAverage *float64    `json:"vote_average"`
		Year        interface{} `json:"year"`
		ReleaseDate string      `json:"release_date"`
		MediaType   Kind        `json:"media_type"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := firstID(aux.ID, aux.MID, aux.SID)
	if err != nil {
		return err
	}

	*t = TrendingItem{
		ID:          id,
		Title:       aux.Title,
		Poster:      aux.Poster,
		VoteAverage: aux.VoteAverage,
		MediaType:   aux.MediaType,
	}
	if t.Poster == "" {
		t.Poster = aux.PosterPath
	}

	switch y := aux.Year.(type) {
	case string:
		t.Year = y
	case float64:
		t.Year = strconv.FormatFloat(y, 'f', -1, 64)
	}
	if t.Year == "" && len(aux.ReleaseDate) >= 4 {
		t.Year = aux.ReleaseDate[:4]
	}
	return nil
}

// Rating formats the vote average for display
func (t TrendingItem) Rating() string {
	if t.VoteAverage == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*t.VoteAverage, 'f', 1, 64)
}

// TrendingSelection is the operator's working copy of the trending list
type TrendingSelection struct {
	Movie []TrendingItem `json:"movie"`
	Show  []TrendingItem `json:"show"`
}

// TrendingUpdate is the body of POST /update_trending
type TrendingUpdate struct {
	Movie []int64 `json:"movie"`
	Show  []int64 `json:"show"`
}

// Items returns the selected items of a kind
func (s *TrendingSelection) Items(kind Kind) []TrendingItem {
	if kind == KindShow {
		return s.Show
	}
	return s.Movie
}

func (s *TrendingSelection) list(kind Kind) *[]TrendingItem {
	if kind == KindShow {
		return &s.Show
	}
	return &s.Movie
}

// Contains reports whether an item of the kind is selected
func (s *TrendingSelection) Contains(kind Kind, id int64) bool {
	for _, item := range s.Items(kind) {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Add appends an item unless it is already selected
func (s *TrendingSelection) Add(kind Kind, item TrendingItem) bool {
	if s.Contains(kind, item.ID) {
		return false
	}
	item.MediaType = kind
	list := s.list(kind)
	*list = append(*list, item)
	return true
}

// Remove drops the item with the given id
func (s *TrendingSelection) Remove(kind Kind, id int64) bool {
	list := s.list(kind)
	for i, item := range *list {
		if item.ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// Update builds the request body; both lists are always present
func (s *TrendingSelection) Update() TrendingUpdate {
	update := TrendingUpdate{
		Movie: make([]int64, 0, len(s.Movie)),
		Show:  make([]int64, 0, len(s.Show)),
	}
	for _, item := range s.Movie {
		update.Movie = append(update.Movie, item.ID)
	}
	for _, item := range s.Show {
		update.Show = append(update.Show, item.ID)
	}
	return update
}

// SplitTrending groups a flat trending list by media type. Items without a
// recognizable media type are ignored.
func SplitTrending(items []TrendingItem) TrendingSelection {
	var sel TrendingSelection
	for _, item := range items {
		switch Kind(strings.ToLower(string(item.MediaType))) {
		case KindMovie:
			sel.Movie = append(sel.Movie, item)
		case KindShow, "tv":
			item.MediaType = KindShow
			sel.Show = append(sel.Show, item)
		}
	}
	return sel
}
