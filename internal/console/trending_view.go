package console

import (
	"fmt"
	"strconv"

	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

func trendingPanel(st *models.ConsoleState, csrfToken string) gomponents.Node {
	loaded := "Not loaded yet"
	if st.TrendingLoadedAt != nil {
		loaded = "Loaded " + web.RelativeTime(*st.TrendingLoadedAt)
	}

	return html.Section(
		html.ID("trending-panel"),
		html.H1(gomponents.Text("Trending")),
		html.Div(
			html.Class("toolbar"),
			panelAction("/trending/refresh", "Refresh", "btn-secondary", csrfToken),
			panelAction("/trending/save", "Save Trending", "btn-success", csrfToken),
			html.Span(html.Class("caption"), gomponents.Text(loaded)),
		),
		html.Div(
			html.Class("columns"),
			trendingColumn(models.KindMovie, st, csrfToken),
			trendingColumn(models.KindShow, st, csrfToken),
		),
	)
}

// panelAction is a one-button form replacing the trending panel
func panelAction(action, label, class, csrfToken string) gomponents.Node {
	return html.Form(
		html.Method("post"),
		html.Action(action),
		hx.Post(action),
		hx.Target("#trending-panel"),
		hx.Swap("outerHTML"),
		gomponents.Attr("hx-disabled-elt", "find button"),
		web.CSRFField(csrfToken),
		html.Button(html.Type("submit"), html.Class("btn "+class), gomponents.Text(label)),
	)
}

func trendingColumn(kind models.Kind, st *models.ConsoleState, csrfToken string) gomponents.Node {
	search := "/trending/search/" + string(kind)
	indicator := "search-indicator-" + string(kind)

	return html.Div(
		html.Class("card trending-column"),
		html.H2(gomponents.Textf("Trending %ss", web.KindLabel(kind))),
		html.Div(
			html.Class("search"),
			html.Input(
				html.Type("search"),
				html.Name("query"),
				html.Placeholder(fmt.Sprintf("Search %ss to add", kind)),
				html.Class("form-control"),
				hx.Get(search),
				hx.Trigger("input changed, search"),
				hx.Target("#results-"+string(kind)),
				hx.Swap("outerHTML"),
				hx.Indicator("#"+indicator),
			),
			web.Spinner(indicator),
		),
		searchResults(kind, nil, st, csrfToken, ""),
		selectionList(kind, st, csrfToken),
	)
}

// searchResults lists search hits; hits already selected cannot be added
// again
func searchResults(kind models.Kind, results []models.TrendingItem, st *models.ConsoleState, csrfToken, message string) gomponents.Node {
	rows := make([]gomponents.Node, 0, len(results))
	for _, item := range results {
		rows = append(rows, resultRow(kind, item, st.Trending.Contains(kind, item.ID), csrfToken, false))
	}

	return html.Div(
		html.ID("results-"+string(kind)),
		html.Class("search-results"),
		gomponents.If(message != "", web.Empty(message)),
		gomponents.If(len(rows) > 0, html.Ul(html.Class("media-list"), gomponents.Group(rows))),
	)
}

func resultRow(kind models.Kind, item models.TrendingItem, selected bool, csrfToken string, oob bool) gomponents.Node {
	action := "/trending/" + string(kind) + "/add"
	vote := ""
	if item.VoteAverage != nil {
		vote = strconv.FormatFloat(*item.VoteAverage, 'f', -1, 64)
	}

	button := html.Button(html.Type("submit"), html.Class("btn btn-primary"), gomponents.Text("Add"))
	if selected {
		button = html.Button(html.Type("button"), html.Class("btn btn-secondary"), html.Disabled(), gomponents.Text("Added"))
	}

	return html.Li(
		html.ID(fmt.Sprintf("result-%s-%d", kind, item.ID)),
		html.Class("media-item"),
		gomponents.If(oob, hx.SwapOOB("true")),
		mediaSummary(item),
		html.Form(
			html.Method("post"),
			html.Action(action),
			hx.Post(action),
			hx.Target("#selection-"+string(kind)),
			hx.Swap("outerHTML"),
			web.CSRFField(csrfToken),
			web.Hidden("id", strconv.FormatInt(item.ID, 10)),
			web.Hidden("title", item.Title),
			web.Hidden("poster", item.Poster),
			web.Hidden("vote_average", vote),
			web.Hidden("year", item.Year),
			button,
		),
	)
}

func selectionList(kind models.Kind, st *models.ConsoleState, csrfToken string) gomponents.Node {
	items := st.Trending.Items(kind)

	rows := make([]gomponents.Node, 0, len(items))
	for _, item := range items {
		action := fmt.Sprintf("/trending/%s/%d/remove", kind, item.ID)
		rows = append(rows, html.Li(
			html.Class("media-item"),
			mediaSummary(item),
			html.Form(
				html.Method("post"),
				html.Action(action),
				hx.Post(action),
				hx.Target("#selection-"+string(kind)),
				hx.Swap("outerHTML"),
				web.CSRFField(csrfToken),
				html.Button(html.Type("submit"), html.Class("btn btn-danger"), gomponents.Text("Remove")),
			),
		))
	}

	return html.Div(
		html.ID("selection-"+string(kind)),
		html.H3(gomponents.Textf("Selected (%d)", len(items))),
		gomponents.If(len(rows) == 0, web.Empty(fmt.Sprintf("No trending %ss selected", kind))),
		gomponents.If(len(rows) > 0, html.Ul(html.Class("media-list"), gomponents.Group(rows))),
	)
}

func mediaSummary(item models.TrendingItem) gomponents.Node {
	return html.Div(
		html.Class("media-summary"),
		gomponents.If(item.Poster != "", html.Img(html.Src(item.Poster), html.Alt(item.Title), gomponents.Attr("loading", "lazy"))),
		html.Div(
			html.Strong(gomponents.Text(item.Title)),
			html.Span(html.Class("meta"), gomponents.Textf("%s · ★ %s · #%d", yearOrDash(item.Year), item.Rating(), item.ID)),
		),
	)
}

func yearOrDash(year string) string {
	if year == "" {
		return "—"
	}
	return year
}
