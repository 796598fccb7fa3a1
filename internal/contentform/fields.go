package contentform

import (
	"math"
	"strconv"
	"strings"

	"github.com/glefebvre/catalog-console/internal/models"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldTextarea
	fieldDate
	fieldInt
	fieldFloat
	fieldCSV
)

// field binds a form input to one struct field of T
type field[T any] struct {
	name  string
	label string
	kind  fieldKind
	get   func(*T) string
	set   func(*T, string)
}

var detailsFields = []field[models.Details]{
	{"title", "Title", fieldText, func(d *models.Details) string { return d.Title }, func(d *models.Details, v string) { d.Title = v }},
	{"original_title", "Original Title", fieldText, func(d *models.Details) string { return d.OriginalTitle }, func(d *models.Details, v string) { d.OriginalTitle = v }},
	{"release_date", "Release Date", fieldDate, func(d *models.Details) string { return d.ReleaseDate }, func(d *models.Details, v string) { d.ReleaseDate = v }},
	{"overview", "Overview", fieldTextarea, func(d *models.Details) string { return d.Overview }, func(d *models.Details, v string) { d.Overview = v }},
	{"poster_path", "Poster Path", fieldText, func(d *models.Details) string { return d.PosterPath }, func(d *models.Details, v string) { d.PosterPath = v }},
	{"backdrop_path", "Backdrop Path", fieldText, func(d *models.Details) string { return d.BackdropPath }, func(d *models.Details, v string) { d.BackdropPath = v }},
	{"logo", "Logo", fieldText, func(d *models.Details) string { return d.Logo }, func(d *models.Details, v string) { d.Logo = v }},
	{"trailer", "Trailer", fieldText, func(d *models.Details) string { return d.Trailer }, func(d *models.Details, v string) { d.Trailer = v }},
	{"vote_average", "Vote Average", fieldFloat, func(d *models.Details) string { return formatFloat(d.VoteAverage) }, func(d *models.Details, v string) { d.VoteAverage = parseFloat(v) }},
	{"vote_count", "Vote Count", fieldInt, func(d *models.Details) string { return formatInt64(d.VoteCount) }, func(d *models.Details, v string) { d.VoteCount = parseInt64(v) }},
	{"popularity", "Popularity", fieldFloat, func(d *models.Details) string { return formatFloat(d.Popularity) }, func(d *models.Details, v string) { d.Popularity = parseFloat(v) }},
	{"genres", "Genres", fieldCSV, func(d *models.Details) string { return joinCSV(d.Genres) }, func(d *models.Details, v string) { d.Genres = splitCSV(v) }},
	{"studios", "Studios", fieldCSV, func(d *models.Details) string { return joinCSV(d.Studios) }, func(d *models.Details, v string) { d.Studios = splitCSV(v) }},
	{"links", "Links", fieldCSV, func(d *models.Details) string { return joinCSV(d.Links) }, func(d *models.Details, v string) { d.Links = splitCSV(v) }},
}

var movieFields = []field[models.Movie]{
	{"runtime", "Runtime (minutes)", fieldInt, func(m *models.Movie) string { return formatInt(m.Runtime) }, func(m *models.Movie, v string) { m.Runtime = parseInt(v) }},
	{"directors", "Directors", fieldCSV, func(m *models.Movie) string { return joinCSV(m.Directors) }, func(m *models.Movie, v string) { m.Directors = splitCSV(v) }},
}

var showFields = []field[models.Show]{
	{"creators", "Creators", fieldCSV, func(s *models.Show) string { return joinCSV(s.Creators) }, func(s *models.Show, v string) { s.Creators = splitCSV(v) }},
	{"total_seasons", "Total Seasons", fieldInt, func(s *models.Show) string { return formatInt(s.TotalSeasons) }, func(s *models.Show, v string) { s.TotalSeasons = parseInt(v) }},
	{"total_episodes", "Total Episodes", fieldInt, func(s *models.Show) string { return formatInt(s.TotalEpisodes) }, func(s *models.Show, v string) { s.TotalEpisodes = parseInt(v) }},
	{"status", "Status", fieldText, func(s *models.Show) string { return s.Status }, func(s *models.Show, v string) { s.Status = v }},
}

// episodeFields excludes episode_number, which falls back to the position
var episodeFields = []field[models.Episode]{
	{"name", "Name", fieldText, func(e *models.Episode) string { return e.Name }, func(e *models.Episode, v string) { e.Name = v }},
	{"air_date", "Air Date", fieldDate, func(e *models.Episode) string { return e.AirDate }, func(e *models.Episode, v string) { e.AirDate = v }},
	{"still_path", "Still Path", fieldText, func(e *models.Episode) string { return e.StillPath }, func(e *models.Episode, v string) { e.StillPath = v }},
	{"overview", "Overview", fieldTextarea, func(e *models.Episode) string { return e.Overview }, func(e *models.Episode, v string) { e.Overview = v }},
}

var qualityFields = []field[models.QualityVariant]{
	{"type", "Type", fieldText, func(q *models.QualityVariant) string { return q.Type }, func(q *models.QualityVariant, v string) { q.Type = v }},
	{"size", "Size", fieldText, func(q *models.QualityVariant) string { return q.Size }, func(q *models.QualityVariant, v string) { q.Size = v }},
	{"audio", "Audio", fieldText, func(q *models.QualityVariant) string { return q.Audio }, func(q *models.QualityVariant, v string) { q.Audio = v }},
	{"video_codec", "Video Codec", fieldText, func(q *models.QualityVariant) string { return q.VideoCodec }, func(q *models.QualityVariant, v string) { q.VideoCodec = v }},
	{"file_type", "File Type", fieldText, func(q *models.QualityVariant) string { return q.FileType }, func(q *models.QualityVariant, v string) { q.FileType = v }},
	{"subtitle", "Subtitle", fieldText, func(q *models.QualityVariant) string { return q.Subtitle }, func(q *models.QualityVariant, v string) { q.Subtitle = v }},
	{"runtime", "Runtime (minutes)", fieldInt, func(q *models.QualityVariant) string { return formatInt(q.Runtime) }, func(q *models.QualityVariant, v string) { q.Runtime = parseInt(v) }},
	{"msg_id", "Message ID", fieldInt, func(q *models.QualityVariant) string { return formatInt64(q.MsgID) }, func(q *models.QualityVariant, v string) { q.MsgID = parseInt64(v) }},
	{"chat_id", "Chat ID", fieldInt, func(q *models.QualityVariant) string { return formatInt64(q.ChatID) }, func(q *models.QualityVariant, v string) { q.ChatID = parseInt64(v) }},
	{"file_hash", "File Hash", fieldText, func(q *models.QualityVariant) string { return q.FileHash }, func(q *models.QualityVariant, v string) { q.FileHash = v }},
}

// qualityFieldsFor drops the runtime input from movie qualities
func qualityFieldsFor(kind models.Kind) []field[models.QualityVariant] {
	if kind == models.KindShow {
		return qualityFields
	}
	out := make([]field[models.QualityVariant], 0, len(qualityFields)-1)
	for _, f := range qualityFields {
		if f.name != "runtime" {
			out = append(out, f)
		}
	}
	return out
}

// splitCSV splits on commas, trims each token and drops empty ones
func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinCSV(values []string) string {
	return strings.Join(values, ", ")
}

func parseInt(raw string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &v
}

func parseInt64(raw string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// fieldName is the form name of a node field
func fieldName(id NodeID, name string) string {
	return string(id) + "." + name
}
