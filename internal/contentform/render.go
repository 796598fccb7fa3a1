package contentform

import (
	"fmt"
	"strconv"

	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// EditorID is the element id of the editor form, used as the htmx target
const EditorID = "content-editor"

// syncOpen keeps a node's hidden open input in step with its <details>
const syncOpen = "this.querySelector(':scope > input.open-state').value = this.open"

// Options configure the rendered editor form
type Options struct {
	// Action is the URL the form posts to
	Action    string
	CSRFToken string
	// Error is shown above the form when the last save failed
	Error string
}

// Render produces the editor form of a tree
func Render(t *Tree, opts Options) gomponents.Node {
	return html.Form(
		html.ID(EditorID),
		html.Class("content-editor card"),
		html.Method("post"),
		html.Action(opts.Action),
		hx.Post(opts.Action),
		hx.Target("#"+EditorID),
		hx.Swap("outerHTML"),
		gomponents.Attr("hx-disabled-elt", "find button[name=op]"),
		web.CSRFField(opts.CSRFToken),
		web.Hidden(fieldKindName, string(t.Kind)),
		web.Hidden(fieldContentIDName, strconv.FormatInt(t.ContentID, 10)),

		html.Div(
			html.Class("editor-header"),
			html.H2(gomponents.Textf("Edit %s #%d", web.KindLabel(t.Kind), t.ContentID)),
			html.Div(
				html.Class("node-actions"),
				web.SubmitButton(fieldOpName, OpExpandAll, "Expand All", "btn-secondary"),
				web.SubmitButton(fieldOpName, OpCollapseAll, "Collapse All", "btn-secondary"),
			),
		),
		gomponents.If(opts.Error != "", html.Div(html.Class("toast toast-error"), gomponents.Text(opts.Error))),

		html.Div(html.Class("form-grid"), flatFields(t)),
		gomponents.If(t.Kind == models.KindMovie, movieQualities(t)),
		gomponents.If(t.Kind == models.KindShow, seasons(t)),

		html.Div(
			html.Class("node-actions"),
			web.Spinner("save-indicator"),
			web.SubmitButton(fieldOpName, OpSave, "Save Changes", "btn-success", hx.Indicator("#save-indicator")),
		),
		focusScript(t.Focus),
	)
}

func flatFields(t *Tree) gomponents.Node {
	var nodes []gomponents.Node
	switch t.Kind {
	case models.KindMovie:
		m := t.Movie
		if m == nil {
			m = &models.Movie{}
		}
		nodes = append(nodes, inputs("", detailsFields, &m.Details)...)
		nodes = append(nodes, inputs("", movieFields, m)...)
	case models.KindShow:
		s := t.Show
		if s == nil {
			s = &models.Show{}
		}
		nodes = append(nodes, inputs("", detailsFields, &s.Details)...)
		nodes = append(nodes, inputs("", showFields, s)...)
	}
	return gomponents.Group(nodes)
}

// inputs renders the controls of a field list. Node fields are prefixed with
// the node id.
func inputs[T any](id NodeID, fields []field[T], v *T) []gomponents.Node {
	nodes := make([]gomponents.Node, 0, len(fields))
	for _, f := range fields {
		name := f.name
		if id != "" {
			name = fieldName(id, f.name)
		}
		nodes = append(nodes, web.FormGroup(f.label, name, control(f.kind, name, f.get(v))))
	}
	return nodes
}

func control(kind fieldKind, name, value string) gomponents.Node {
	switch kind {
	case fieldTextarea:
		return web.TextArea(name, value, 3)
	case fieldDate:
		return web.DateInput(name, value)
	case fieldInt:
		return web.NumberInput(name, value, "1")
	case fieldFloat:
		return web.NumberInput(name, value, "any")
	case fieldCSV:
		return web.TextInput(name, value, html.Placeholder("Comma separated"))
	default:
		return web.TextInput(name, value)
	}
}

// node renders a collapsible section. The order input places the node in its
// parent list; the open input carries the expanded state across posts.
func node(id NodeID, class, orderName string, open bool, summary string, body ...gomponents.Node) gomponents.Node {
	return html.Details(
		html.ID(string(id)),
		html.Class("node "+class),
		gomponents.If(open, gomponents.Attr("open")),
		gomponents.Attr("ontoggle", syncOpen),
		html.Summary(gomponents.Text(summary)),
		web.Hidden(orderName, string(id)),
		web.Hidden(fieldName(id, "open"), strconv.FormatBool(open), html.Class("open-state")),
		gomponents.Group(body),
	)
}

func removeButton(id NodeID, label string) gomponents.Node {
	return html.Div(
		html.Class("node-actions"),
		web.SubmitButton(fieldOpName, Op{Name: OpRemove, Target: id}.String(), label, "btn-danger",
			hx.Confirm("Remove this quality option?")),
	)
}

func qualityList(kind models.Kind, orderName string, nodes []*QualityNode, label func(int) string) []gomponents.Node {
	out := make([]gomponents.Node, 0, len(nodes))
	for i, qn := range nodes {
		out = append(out, node(qn.ID, "quality-item", orderName, qn.Open, label(i),
			html.Div(html.Class("form-grid"), gomponents.Group(inputs(qn.ID, qualityFieldsFor(kind), &qn.Variant))),
			removeButton(qn.ID, "Remove Quality"),
		))
	}
	return out
}

func movieQualities(t *Tree) gomponents.Node {
	items := qualityList(models.KindMovie, orderQuality, t.Qualities, func(i int) string {
		return fmt.Sprintf("Quality Option %d", i+1)
	})

	return html.Section(
		html.ID("movie-qualities"),
		html.H3(gomponents.Text("Quality Options")),
		gomponents.If(len(items) == 0, web.Empty("No quality options")),
		gomponents.Group(items),
		web.SubmitButton(fieldOpName, OpAddQuality, "Add Quality", "btn-primary"),
	)
}

func seasons(t *Tree) gomponents.Node {
	items := make([]gomponents.Node, 0, len(t.Seasons))
	for _, sn := range t.Seasons {
		items = append(items, season(sn))
	}

	return html.Section(
		html.ID("seasons"),
		html.H3(gomponents.Text("Seasons")),
		gomponents.If(len(items) == 0, web.Empty("No seasons")),
		gomponents.Group(items),
		web.SubmitButton(fieldOpName, OpAddSeason, "Add Season", "btn-primary"),
	)
}

func season(sn *SeasonNode) gomponents.Node {
	episodes := make([]gomponents.Node, 0, len(sn.Episodes))
	for i, en := range sn.Episodes {
		episodes = append(episodes, episode(sn.ID, en, i))
	}

	numberName := fieldName(sn.ID, "season_number")
	summary := fmt.Sprintf("Season %d (%d episodes)", sn.SeasonNumber, len(sn.Episodes))

	return node(sn.ID, "season-item", orderSeason, sn.Open, summary,
		web.FormGroup("Season Number", numberName, web.NumberInput(numberName, strconv.Itoa(sn.SeasonNumber), "1")),
		html.Div(html.Class("episodes"), gomponents.Group(episodes)),
		html.Div(
			html.Class("node-actions"),
			web.SubmitButton(fieldOpName, Op{Name: OpAddEpisode, Target: sn.ID}.String(), "Add Episode", "btn-primary"),
			web.SubmitButton(fieldOpName, Op{Name: OpRemove, Target: sn.ID}.String(), "Remove Season", "btn-danger",
				hx.Confirm("Remove this season and all its episodes?")),
		),
	)
}

func episode(seasonID NodeID, en *EpisodeNode, position int) gomponents.Node {
	number := numberOr(en.Episode.EpisodeNumber, position)
	name := en.Episode.Name
	if name == "" {
		name = "Untitled"
	}

	numberName := fieldName(en.ID, "episode_number")
	qualities := qualityList(models.KindShow, fieldName(en.ID, orderQuality), en.Qualities, func(i int) string {
		return fmt.Sprintf("Quality %d", i+1)
	})

	return node(en.ID, "episode-item", fieldName(seasonID, orderEpisode), en.Open, fmt.Sprintf("Episode %d: %s", number, name),
		html.Div(
			html.Class("form-grid"),
			web.FormGroup("Episode Number", numberName, web.NumberInput(numberName, strconv.Itoa(number), "1")),
			gomponents.Group(inputs(en.ID, episodeFields, &en.Episode)),
		),
		html.Div(html.Class("episode-qualities"), gomponents.Group(qualities)),
		html.Div(
			html.Class("node-actions"),
			web.SubmitButton(fieldOpName, Op{Name: OpAddQuality, Target: en.ID}.String(), "Add Quality", "btn-primary"),
			web.SubmitButton(fieldOpName, Op{Name: OpRemove, Target: en.ID}.String(), "Remove Episode", "btn-danger",
				hx.Confirm("Remove this episode and its quality options?")),
		),
	)
}

func focusScript(id NodeID) gomponents.Node {
	if !id.Valid() {
		return nil
	}
	return html.Script(gomponents.Rawf(
		`(function(){var el=document.getElementById(%q);if(el){el.scrollIntoView({behavior:"smooth",block:"center"});}})();`,
		string(id),
	))
}
