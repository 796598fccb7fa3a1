package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies which branch of a Record is populated
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// ParseKind converts a route or form value into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMovie:
		return KindMovie, nil
	case KindShow:
		return KindShow, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// Details holds the metadata shared by movies and shows
type Details struct {
	Title         string   `json:"title,omitempty"`
	OriginalTitle string   `json:"original_title,omitempty"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	BackdropPath  string   `json:"backdrop_path,omitempty"`
	Logo          string   `json:"logo,omitempty"`
	Trailer       string   `json:"trailer,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	VoteCount     *int64   `json:"vote_count,omitempty"`
	Popularity    *float64 `json:"popularity,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Studios       []string `json:"studios,omitempty"`
	Links         []string `json:"links,omitempty"`
}

// Movie is the editable body of a movie record
type Movie struct {
	Details
	Runtime   *int             `json:"runtime,omitempty"`
	Directors []string         `json:"directors,omitempty"`
	Quality   []QualityVariant `json:"quality,omitempty"`
}

// Show is the editable body of a TV show record.
// The catalog API names the season list "season".
type Show struct {
	Details
	Creators      []string `json:"creators,omitempty"`
	TotalSeasons  *int     `json:"total_seasons,omitempty"`
	TotalEpisodes *int     `json:"total_episodes,omitempty"`
	Status        string   `json:"status,omitempty"`
	Seasons       []Season `json:"season,omitempty"`
}

// UnmarshalJSON accepts both "season" and "seasons" for the season list
func (s *Show) UnmarshalJSON(data []byte) error {
	type plain Show
	aux := struct {
		*plain
		AltSeasons []Season `json:"seasons"`
	}{plain: (*plain)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(s.Seasons) == 0 && len(aux.AltSeasons) > 0 {
		s.Seasons = aux.AltSeasons
	}
	return nil
}

// Season groups the episodes of one season. SeasonNumber is operator
// editable and not guaranteed to be unique.
type Season struct {
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

// Episode is a single show episode
type Episode struct {
	EpisodeNumber int              `json:"episode_number"`
	Name          string           `json:"name,omitempty"`
	AirDate       string           `json:"air_date,omitempty"`
	StillPath     string           `json:"still_path,omitempty"`
	Overview      string           `json:"overview,omitempty"`
	Quality       []QualityVariant `json:"quality,omitempty"`
}

// QualityVariant describes one stored file of a movie or episode
type QualityVariant struct {
	Type       string `json:"type,omitempty"`
	Size       string `json:"size,omitempty"`
	Audio      string `json:"audio,omitempty"`
	VideoCodec string `json:"video_codec,omitempty"`
	FileType   string `json:"file_type,omitempty"`
	Subtitle   string `json:"subtitle,omitempty"`
	Runtime    *int   `json:"runtime,omitempty"`
	MsgID      *int64 `json:"msg_id,omitempty"`
	ChatID     *int64 `json:"chat_id,omitempty"`
	FileHash   string `json:"file_hash,omitempty"`
}

// Meaningful reports whether the variant has a type; variants without one
// are dropped on serialization
func (q QualityVariant) Meaningful() bool {
	return strings.TrimSpace(q.Type) != ""
}

// Record is a movie or a show with a single normalized identifier
type Record struct {
	Kind  Kind   `json:"kind"`
	ID    int64  `json:"id"`
	Movie *Movie `json:"movie,omitempty"`
	Show  *Show  `json:"show,omitempty"`
}

// NewMovieRecord wraps a movie body into a Record
func NewMovieRecord(id int64, m *Movie) *Record {
	return &Record{Kind: KindMovie, ID: id, Movie: m}
}

// NewShowRecord wraps a show body into a Record
func NewShowRecord(id int64, s *Show) *Record {
	return &Record{Kind: KindShow, ID: id, Show: s}
}

// Validate checks that exactly the branch matching Kind is populated
func (r *Record) Validate() error {
	switch r.Kind {
	case KindMovie:
		if r.Movie == nil || r.Show != nil {
			return fmt.Errorf("movie record must carry only a movie body")
		}
	case KindShow:
		if r.Show == nil || r.Movie != nil {
			return fmt.Errorf("show record must carry only a show body")
		}
	default:
		return fmt.Errorf("unknown content kind %q", r.Kind)
	}
	return nil
}

// Title returns the display title of the record
func (r *Record) Title() string {
	switch {
	case r.Movie != nil:
		return r.Movie.Title
	case r.Show != nil:
		return r.Show.Title
	}
	return ""
}

// Payload returns the body sent to the catalog API on update
func (r *Record) Payload() interface{} {
	if r.Kind == KindShow {
		return r.Show
	}
	return r.Movie
}

// DecodeRecord decodes a catalog detail response of the given kind. The
// identifier may be sent as id, mid or sid.
func DecodeRecord(kind Kind, data []byte) (*Record, error) {
	var ids struct {
		ID  json.Number `json:"id"`
		MID json.Number `json:"mid"`
		SID json.Number `json:"sid"`
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode %s identifier: %w", kind, err)
	}

	id, err := firstID(ids.ID, ids.MID, ids.SID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindMovie:
		var m Movie
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode movie: %w", err)
		}
		return NewMovieRecord(id, &m), nil
	case KindShow:
		var s Show
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode show: %w", err)
		}
		return NewShowRecord(id, &s), nil
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}

func firstID(candidates ...json.Number) (int64, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		id, err := c.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid identifier %q: %w", c, err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("record has no identifier")
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
