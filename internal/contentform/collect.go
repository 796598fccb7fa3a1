package contentform

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/glefebvre/catalog-console/internal/models"
)

// Form names of the values that are not node fields
const (
	fieldKindName      = "kind"
	fieldContentIDName = "content_id"
	fieldOpName        = "op"
	orderQuality       = "quality"
	orderSeason        = "season"
	orderEpisode       = "episode"
)

// Collect reads a posted editor form back into a Tree. Lists are walked in
// the posted order of their order inputs; unknown, malformed or repeated
// node IDs are skipped.
func Collect(form url.Values) (*Tree, error) {
	kind, err := models.ParseKind(form.Get(fieldKindName))
	if err != nil {
		return nil, err
	}

	rawID := strings.TrimSpace(form.Get(fieldContentIDName))
	contentID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid content id %q", rawID)
	}

	c := collector{form: form, seen: make(map[NodeID]bool)}
	t := &Tree{Kind: kind, ContentID: contentID}

	var details models.Details
	for _, f := range detailsFields {
		f.set(&details, form.Get(f.name))
	}

	switch kind {
	case models.KindMovie:
		movie := models.Movie{Details: details}
		for _, f := range movieFields {
			f.set(&movie, form.Get(f.name))
		}
		t.Movie = &movie
		t.Qualities = c.qualities(orderQuality, kind)
	case models.KindShow:
		show := models.Show{Details: details}
		for _, f := range showFields {
			f.set(&show, form.Get(f.name))
		}
		t.Show = &show
		t.Seasons = c.seasons()
	}

	return t, nil
}

type collector struct {
	form url.Values
	seen map[NodeID]bool
}

// ids returns the accepted node IDs of an order input, in posted order
func (c *collector) ids(orderName string) []NodeID {
	var out []NodeID
	for _, raw := range c.form[orderName] {
		id := NodeID(strings.TrimSpace(raw))
		if !id.Valid() || c.seen[id] {
			continue
		}
		c.seen[id] = true
		out = append(out, id)
	}
	return out
}

func (c *collector) open(id NodeID) bool {
	v, _ := strconv.ParseBool(c.form.Get(fieldName(id, "open")))
	return v
}

// number parses a season or episode number, falling back to the position
// when it is blank, unparsable or not positive
func (c *collector) number(id NodeID, name string, position int) int {
	if v := parseInt(c.form.Get(fieldName(id, name))); v != nil {
		return numberOr(*v, position)
	}
	return position + 1
}

func (c *collector) seasons() []*SeasonNode {
	var seasons []*SeasonNode
	for i, id := range c.ids(orderSeason) {
		sn := &SeasonNode{
			ID:           id,
			Open:         c.open(id),
			SeasonNumber: c.number(id, "season_number", i),
		}
		for j, eid := range c.ids(fieldName(id, orderEpisode)) {
			en := &EpisodeNode{ID: eid, Open: c.open(eid)}
			en.Episode.EpisodeNumber = c.number(eid, "episode_number", j)
			for _, f := range episodeFields {
				f.set(&en.Episode, c.form.Get(fieldName(eid, f.name)))
			}
			en.Qualities = c.qualities(fieldName(eid, orderQuality), models.KindShow)
			sn.Episodes = append(sn.Episodes, en)
		}
		seasons = append(seasons, sn)
	}
	return seasons
}

func (c *collector) qualities(orderName string, kind models.Kind) []*QualityNode {
	var nodes []*QualityNode
	for _, id := range c.ids(orderName) {
		qn := &QualityNode{ID: id, Open: c.open(id)}
		for _, f := range qualityFieldsFor(kind) {
			f.set(&qn.Variant, c.form.Get(fieldName(id, f.name)))
		}
		nodes = append(nodes, qn)
	}
	return nodes
}
