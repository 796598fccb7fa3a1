// Package contentform keeps the movie/show editor form and the content
// record in sync. A record is loaded into a Tree whose seasons, episodes and
// quality variants carry stable node IDs; the Tree renders to an HTML form and
// a posted form collects back into a Tree. Add and remove target node IDs, so
// positions are only ever derived from the live order of the list.
package contentform

import (
	"errors"
	"strings"

	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNodeNotFound is returned when an operation targets an unknown node
	ErrNodeNotFound = errors.New("node not found")
	// ErrWrongKind is returned when a movie-only or show-only operation is
	// applied to the other kind
	ErrWrongKind = errors.New("operation does not apply to this content kind")
)

// NodeID identifies a season, episode or quality node for the lifetime of a
// form. It is never sent to the catalog API.
type NodeID string

const nodeIDLength = 13

func newNodeID() NodeID {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return NodeID("n" + hex[:nodeIDLength-1])
}

// Valid reports whether the id has the shape produced by newNodeID
func (id NodeID) Valid() bool {
	if len(id) != nodeIDLength || id[0] != 'n' {
		return false
	}
	for _, c := range id[1:] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// QualityNode wraps one quality variant of a movie or an episode
type QualityNode struct {
	ID      NodeID
	Open    bool
	Variant models.QualityVariant
}

// EpisodeNode wraps one episode; its quality list lives in Qualities
type EpisodeNode struct {
	ID        NodeID
	Open      bool
	Episode   models.Episode
	Qualities []*QualityNode
}

// SeasonNode wraps one season
type SeasonNode struct {
	ID           NodeID
	Open         bool
	SeasonNumber int
	Episodes     []*EpisodeNode
}

// Tree is the editable form state of one content record. Movie or Show hold
// the flat fields of the matching kind; their list fields are unused and the
// lists live in Qualities and Seasons.
type Tree struct {
	Kind      models.Kind
	ContentID int64
	Movie     *models.Movie
	Show      *models.Show
	Qualities []*QualityNode
	Seasons   []*SeasonNode
	// Focus is the node to scroll into view after the next render
	Focus NodeID
}

// Load builds a Tree from a record. Every node gets a fresh ID and starts
// collapsed.
func Load(rec *models.Record) *Tree {
	t := &Tree{Kind: rec.Kind, ContentID: rec.ID}

	switch rec.Kind {
	case models.KindMovie:
		movie := models.Movie{}
		if rec.Movie != nil {
			movie = *rec.Movie
		}
		t.Qualities = loadQualities(movie.Quality)
		movie.Quality = nil
		t.Movie = &movie
	case models.KindShow:
		show := models.Show{}
		if rec.Show != nil {
			show = *rec.Show
		}
		for i, season := range show.Seasons {
			t.Seasons = append(t.Seasons, &SeasonNode{
				ID:           newNodeID(),
				SeasonNumber: numberOr(season.SeasonNumber, i),
				Episodes:     loadEpisodes(season.Episodes),
			})
		}
		show.Seasons = nil
		t.Show = &show
	}

	return t
}

// loadEpisodes gives every episode a node and a number; a missing episode
// number is its position
func loadEpisodes(episodes []models.Episode) []*EpisodeNode {
	var nodes []*EpisodeNode
	for i, episode := range episodes {
		en := &EpisodeNode{ID: newNodeID(), Qualities: loadQualities(episode.Quality)}
		episode.Quality = nil
		episode.EpisodeNumber = numberOr(episode.EpisodeNumber, i)
		en.Episode = episode
		nodes = append(nodes, en)
	}
	return nodes
}

// numberOr returns n, or the 1-based position when n is not positive
func numberOr(n, position int) int {
	if n > 0 {
		return n
	}
	return position + 1
}

func loadQualities(variants []models.QualityVariant) []*QualityNode {
	var nodes []*QualityNode
	for _, v := range variants {
		nodes = append(nodes, &QualityNode{ID: newNodeID(), Variant: v})
	}
	return nodes
}

// AddQuality appends a quality variant. An empty parent targets the movie
// quality list, otherwise parent must be an episode of the show.
func (t *Tree) AddQuality(parent NodeID, v *models.QualityVariant) (NodeID, error) {
	node := &QualityNode{ID: newNodeID(), Open: true}
	if v != nil {
		node.Variant = *v
	}

	if parent == "" {
		if t.Kind != models.KindMovie {
			return "", ErrWrongKind
		}
		t.Qualities = append(t.Qualities, node)
		t.Focus = node.ID
		return node.ID, nil
	}

	if t.Kind != models.KindShow {
		return "", ErrWrongKind
	}
	season, episode := t.findEpisode(parent)
	if episode == nil {
		return "", ErrNodeNotFound
	}
	episode.Qualities = append(episode.Qualities, node)
	episode.Open = true
	season.Open = true
	t.Focus = node.ID
	return node.ID, nil
}

// AddSeason appends a season. A zero season number defaults to the new
// season's position.
func (t *Tree) AddSeason(s *models.Season) (NodeID, error) {
	if t.Kind != models.KindShow {
		return "", ErrWrongKind
	}

	node := &SeasonNode{ID: newNodeID(), Open: true}
	if s != nil {
		node.SeasonNumber = s.SeasonNumber
		node.Episodes = loadEpisodes(s.Episodes)
	}
	node.SeasonNumber = numberOr(node.SeasonNumber, len(t.Seasons))

	t.Seasons = append(t.Seasons, node)
	t.Focus = node.ID
	return node.ID, nil
}

// AddEpisode appends an episode to a season. A zero episode number defaults
// to the new episode's position.
func (t *Tree) AddEpisode(season NodeID, e *models.Episode) (NodeID, error) {
	if t.Kind != models.KindShow {
		return "", ErrWrongKind
	}
	sn := t.findSeason(season)
	if sn == nil {
		return "", ErrNodeNotFound
	}

	node := &EpisodeNode{ID: newNodeID(), Open: true}
	if e != nil {
		episode := *e
		node.Qualities = loadQualities(episode.Quality)
		episode.Quality = nil
		node.Episode = episode
	}
	node.Episode.EpisodeNumber = numberOr(node.Episode.EpisodeNumber, len(sn.Episodes))

	sn.Episodes = append(sn.Episodes, node)
	sn.Open = true
	t.Focus = node.ID
	return node.ID, nil
}

// Remove deletes the node with the given id and its subtree
func (t *Tree) Remove(id NodeID) error {
	if removeQuality(&t.Qualities, id) {
		return nil
	}
	for i, sn := range t.Seasons {
		if sn.ID == id {
			t.Seasons = append(t.Seasons[:i], t.Seasons[i+1:]...)
			return nil
		}
		for j, en := range sn.Episodes {
			if en.ID == id {
				sn.Episodes = append(sn.Episodes[:j], sn.Episodes[j+1:]...)
				return nil
			}
			if removeQuality(&en.Qualities, id) {
				return nil
			}
		}
	}
	return ErrNodeNotFound
}

func removeQuality(list *[]*QualityNode, id NodeID) bool {
	for i, qn := range *list {
		if qn.ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// SetOpenAll expands or collapses every section
func (t *Tree) SetOpenAll(open bool) {
	for _, qn := range t.Qualities {
		qn.Open = open
	}
	for _, sn := range t.Seasons {
		sn.Open = open
		for _, en := range sn.Episodes {
			en.Open = open
			for _, qn := range en.Qualities {
				qn.Open = open
			}
		}
	}
}

// Record serializes the tree into the record sent to the catalog API.
// Quality variants without a type are left out.
func (t *Tree) Record() *models.Record {
	switch t.Kind {
	case models.KindShow:
		show := models.Show{}
		if t.Show != nil {
			show = *t.Show
		}
		show.Seasons = nil
		for _, sn := range t.Seasons {
			season := models.Season{SeasonNumber: sn.SeasonNumber}
			for _, en := range sn.Episodes {
				episode := en.Episode
				episode.Quality = variants(en.Qualities)
				season.Episodes = append(season.Episodes, episode)
			}
			show.Seasons = append(show.Seasons, season)
		}
		return models.NewShowRecord(t.ContentID, &show)
	default:
		movie := models.Movie{}
		if t.Movie != nil {
			movie = *t.Movie
		}
		movie.Quality = variants(t.Qualities)
		return models.NewMovieRecord(t.ContentID, &movie)
	}
}

func variants(nodes []*QualityNode) []models.QualityVariant {
	var out []models.QualityVariant
	for _, qn := range nodes {
		if qn.Variant.Meaningful() {
			out = append(out, qn.Variant)
		}
	}
	return out
}

// Title returns the display title of the content
func (t *Tree) Title() string {
	if t.Movie != nil {
		return t.Movie.Title
	}
	if t.Show != nil {
		return t.Show.Title
	}
	return ""
}

func (t *Tree) findSeason(id NodeID) *SeasonNode {
	for _, sn := range t.Seasons {
		if sn.ID == id {
			return sn
		}
	}
	return nil
}

func (t *Tree) findEpisode(id NodeID) (*SeasonNode, *EpisodeNode) {
	for _, sn := range t.Seasons {
		for _, en := range sn.Episodes {
			if en.ID == id {
				return sn, en
			}
		}
	}
	return nil, nil
}
