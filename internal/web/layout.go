package web

import (
	"strconv"

	"github.com/glefebvre/catalog-console/internal/notify"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Page is the data of a full console page
type Page struct {
	Title     string
	Active    string
	CSRFToken string
	// SignedIn shows the navigation and the logout button
	SignedIn bool
	Toasts   []notify.Notification
	Body     gomponents.Node
}

type navLink struct {
	key, label, href string
}

var navLinks = []navLink{
	{"trending", "Trending", "/trending"},
	{"users", "Users", "/users"},
	{"content", "Content", "/content"},
	{"history", "History", "/history"},
}

// Layout renders a full HTML document
func Layout(p Page) gomponents.Node {
	return html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(gomponents.Text(p.Title+" · Catalog Console")),
				html.Script(html.Src(htmxSrc)),
				styles(),
			),
			html.Body(
				gomponents.If(p.CSRFToken != "", hx.Headers(`{"X-CSRF-TOKEN": "`+p.CSRFToken+`"}`)),
				gomponents.If(p.SignedIn, nav(p)),
				html.Main(html.Class("container"), p.Body),
				Toasts(p.Toasts, false),
				toastScript(),
			),
		),
	)
}

func nav(p Page) gomponents.Node {
	links := make([]gomponents.Node, 0, len(navLinks))
	for _, l := range navLinks {
		class := "nav-link"
		if l.key == p.Active {
			class += " active"
		}
		links = append(links, html.A(html.Class(class), html.Href(l.href), gomponents.Text(l.label)))
	}

	return html.Nav(
		html.Class("navbar"),
		html.Span(html.Class("brand"), gomponents.Text("Catalog Console")),
		gomponents.Group(links),
		html.Form(
			html.Class("logout"),
			html.Method("post"),
			html.Action("/logout"),
			CSRFField(p.CSRFToken),
			html.Button(html.Type("submit"), html.Class("btn btn-link"), gomponents.Text("Logout")),
		),
	)
}

// Toasts renders the toast container. With oob set the container replaces
// the page's one through an htmx out-of-band swap.
func Toasts(toasts []notify.Notification, oob bool) gomponents.Node {
	items := make([]gomponents.Node, 0, len(toasts))
	for _, t := range toasts {
		items = append(items, toast(t))
	}

	return html.Div(
		html.ID("toasts"),
		html.Class("toast-container"),
		gomponents.If(oob, hx.SwapOOB("beforeend")),
		gomponents.Group(items),
	)
}

func toast(t notify.Notification) gomponents.Node {
	return html.Div(
		html.ID(t.ID),
		html.Class("toast toast-"+string(t.Kind)),
		gomponents.Attr("role", "alert"),
		gomponents.Attr("data-dismiss-after", strconv.FormatInt(t.Millis(), 10)),
		html.Span(html.Class("toast-message"), gomponents.Text(t.Message)),
		html.Button(
			html.Type("button"),
			html.Class("toast-close"),
			gomponents.Attr("aria-label", "Close"),
			gomponents.Attr("onclick", "dismissToast(this.parentElement)"),
			gomponents.Text("×"),
		),
	)
}

// toastScript auto-dismisses toasts, including ones swapped in by htmx. A
// toast is removed at most once whether the timer or the close button fires
// first.
func toastScript() gomponents.Node {
	return html.Script(gomponents.Raw(`
function dismissToast(el) {
  if (!el || el.dataset.removing) return;
  el.dataset.removing = "1";
  el.classList.add("toast-hide");
  setTimeout(function () { if (el.parentNode) el.parentNode.removeChild(el); }, 300);
}
function armToasts(root) {
  (root || document).querySelectorAll(".toast[data-dismiss-after]:not([data-armed])").forEach(function (el) {
    el.dataset.armed = "1";
    setTimeout(function () { dismissToast(el); }, parseInt(el.dataset.dismissAfter, 10) || 5000);
  });
}
document.addEventListener("DOMContentLoaded", function () { armToasts(); });
document.addEventListener("htmx:afterSettle", function () { armToasts(); });
`))
}

func styles() gomponents.Node {
	return html.StyleEl(gomponents.Raw(`
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #212529; }
.container { max-width: 1100px; margin: 0 auto; padding: 1.5rem; }
.navbar { display: flex; gap: 1rem; align-items: center; padding: .75rem 1.5rem; background: #212529; }
.navbar .brand { color: #fff; font-weight: 700; margin-right: 1rem; }
.nav-link { color: #adb5bd; text-decoration: none; }
.nav-link.active, .nav-link:hover { color: #fff; }
.logout { margin-left: auto; }
.btn { border: 1px solid transparent; border-radius: 6px; padding: .35rem .8rem; cursor: pointer; }
.btn-primary { background: #0d6efd; color: #fff; }
.btn-success { background: #198754; color: #fff; }
.btn-danger { background: #dc3545; color: #fff; }
.btn-secondary { background: #6c757d; color: #fff; }
.btn-link { background: none; color: #adb5bd; }
.btn:disabled { opacity: .5; cursor: not-allowed; }
.form-group { display: flex; flex-direction: column; margin-bottom: .75rem; }
.form-group label { font-size: .85rem; color: #495057; margin-bottom: .25rem; }
.form-control { padding: .4rem .6rem; border: 1px solid #ced4da; border-radius: 6px; }
.form-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(240px, 1fr)); gap: 0 1rem; }
.card { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; margin-bottom: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
details.node { border: 1px solid #dee2e6; border-radius: 6px; padding: .5rem .75rem; margin: .5rem 0; background: #fff; }
details.node > summary { cursor: pointer; font-weight: 600; }
.node-actions { display: flex; gap: .5rem; justify-content: flex-end; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { text-align: left; padding: .5rem; border-bottom: 1px solid #dee2e6; }
.badge { display: inline-block; padding: .1rem .5rem; border-radius: 999px; font-size: .75rem; }
.badge-active { background: #d1e7dd; color: #0f5132; }
.badge-inactive { background: #f8d7da; color: #842029; }
.media-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(160px, 1fr)); gap: 1rem; }
.media-card img { width: 100%; border-radius: 6px; }
.empty-state { color: #6c757d; font-style: italic; }
.htmx-indicator { display: none; }
.htmx-request .htmx-indicator, .htmx-request.htmx-indicator { display: inline; }
.toast-container { position: fixed; top: 1rem; right: 1rem; display: flex; flex-direction: column; gap: .5rem; z-index: 1000; }
.toast { display: flex; gap: 1rem; align-items: center; min-width: 260px; padding: .75rem 1rem; border-radius: 6px; color: #fff; transition: opacity .3s; }
.toast-success { background: #198754; }
.toast-error { background: #dc3545; }
.toast-info { background: #0d6efd; }
.toast-hide { opacity: 0; }
.toast-close { margin-left: auto; background: none; border: 0; color: inherit; font-size: 1.1rem; cursor: pointer; }
`))
}
