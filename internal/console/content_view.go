package console

import (
	"fmt"

	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

func contentWorkspace(kind models.Kind, id string, editor, edits gomponents.Node) gomponents.Node {
	return html.Section(
		html.ID("content-workspace"),
		html.H1(gomponents.Text("Content")),
		contentLookup(kind, id),
		editor,
		edits,
	)
}

// contentLookup is the kind selector and id field. Changing the kind
// reloads the workspace without an editor.
func contentLookup(kind models.Kind, id string) gomponents.Node {
	return html.Form(
		html.Class("toolbar card"),
		html.Method("get"),
		html.Action("/content"),
		hx.Get("/content"),
		hx.Target("#content-workspace"),
		hx.Swap("outerHTML"),
		hx.PushURL("true"),
		gomponents.Attr("hx-disabled-elt", "find button"),
		web.FormGroup("Type", "kind", html.Select(
			html.ID(web.FieldID("kind")),
			html.Name("kind"),
			html.Class("form-control"),
			hx.Get("/content"),
			hx.Trigger("change"),
			hx.Target("#content-workspace"),
			hx.Swap("outerHTML"),
			kindOption(models.KindMovie, kind),
			kindOption(models.KindShow, kind),
		)),
		web.FormGroup("ID", "id", web.NumberInput("id", id, "1", html.Min("1"), html.Placeholder("Enter ID"))),
		html.Button(html.Type("submit"), html.Class("btn btn-primary"), gomponents.Text("Load")),
	)
}

func kindOption(kind, selected models.Kind) gomponents.Node {
	return html.Option(
		html.Value(string(kind)),
		gomponents.If(kind == selected, html.Selected()),
		gomponents.Text(web.KindLabel(kind)),
	)
}

// contentHistory lists the latest saves of the record in the editor
func contentHistory(edits []models.EditLog, oob bool) gomponents.Node {
	rows := make([]gomponents.Node, 0, len(edits))
	for _, e := range edits {
		rows = append(rows, html.Li(
			html.Span(html.Class(statusBadge(e.Status)), gomponents.Text(e.Status)),
			gomponents.Textf(" %s", web.RelativeTime(e.StartedAt)),
			gomponents.If(e.ErrorMessage != nil, html.Span(html.Class("meta"), gomponents.Text(" · "+deref(e.ErrorMessage)))),
		))
	}

	return html.Div(
		html.ID("content-history"),
		html.Class("card"),
		gomponents.If(oob, hx.SwapOOB("true")),
		html.H3(gomponents.Text("Recent Saves")),
		gomponents.If(len(rows) == 0, web.Empty("No saves recorded for this title")),
		gomponents.If(len(rows) > 0, html.Ul(gomponents.Group(rows))),
	)
}

func statusBadge(status string) string {
	if status == models.EditStatusSuccess {
		return "badge badge-success"
	}
	return "badge badge-danger"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func contentLink(kind models.Kind, id int64) string {
	return fmt.Sprintf("/content?kind=%s&id=%d", kind, id)
}
