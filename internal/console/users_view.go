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

func usersPanel(st *models.ConsoleState, csrfToken string) gomponents.Node {
	var editing *models.User
	if st.EditingUserID != nil {
		editing, _ = st.FindUser(*st.EditingUserID)
	}

	return html.Section(
		html.ID("users-panel"),
		html.H1(gomponents.Text("Users")),
		html.Div(
			html.Class("toolbar"),
			html.Form(
				html.Method("post"),
				html.Action("/users/load"),
				hx.Post("/users/load"),
				hx.Target("#users-panel"),
				hx.Swap("outerHTML"),
				gomponents.Attr("hx-disabled-elt", "find button"),
				web.CSRFField(csrfToken),
				html.Button(html.Type("submit"), html.Class("btn btn-primary"), gomponents.Text("Load All Users")),
			),
			html.Form(
				html.Class("search"),
				html.Method("get"),
				html.Action("/users/search"),
				html.Input(
					html.Type("search"),
					html.Name("query"),
					html.Value(st.UserQuery),
					html.Placeholder("Search by username or name"),
					html.Class("form-control"),
					hx.Get("/users/search"),
					hx.Trigger("input changed, search"),
					hx.Target("#user-results"),
					hx.Swap("outerHTML"),
					hx.Indicator("#users-search-indicator"),
				),
				web.Spinner("users-search-indicator"),
			),
		),
		userEditor(editing, csrfToken),
		userResults(st, csrfToken),
	)
}

func userResults(st *models.ConsoleState, csrfToken string) gomponents.Node {
	users := st.DisplayedUsers()

	var caption string
	switch {
	case st.UserQuery != "":
		caption = fmt.Sprintf("%s matches for %q", web.Count(int64(len(users))), st.UserQuery)
	case len(users) > 0:
		caption = fmt.Sprintf("%s users loaded", web.Count(int64(len(users))))
	}

	var body gomponents.Node
	switch {
	case len(users) > 0:
		rows := make([]gomponents.Node, 0, len(users))
		for _, u := range users {
			rows = append(rows, userRow(u, csrfToken))
		}
		body = html.Table(
			html.Class("table"),
			html.THead(html.Tr(
				html.Th(gomponents.Text("ID")),
				html.Th(gomponents.Text("Username")),
				html.Th(gomponents.Text("Name")),
				html.Th(gomponents.Text("Registered")),
				html.Th(gomponents.Text("Limit")),
				html.Th(gomponents.Text("Status")),
				html.Th(gomponents.Text("Actions")),
			)),
			html.TBody(gomponents.Group(rows)),
		)
	case st.UserQuery != "":
		body = web.Empty("No users found")
	default:
		body = web.Empty("No users loaded. Use Load All Users or search.")
	}

	return html.Div(
		html.ID("user-results"),
		gomponents.If(caption != "", html.P(html.Class("caption"), gomponents.Text(caption))),
		body,
	)
}

func userRow(u models.User, csrfToken string) gomponents.Node {
	id := strconv.FormatInt(u.UserID, 10)
	status, badge := "Inactive", "badge badge-muted"
	if u.Active() {
		status, badge = "Active", "badge badge-success"
	}

	return html.Tr(
		html.ID("user-"+id),
		html.Td(gomponents.Text(id)),
		html.Td(gomponents.Text(u.Username)),
		html.Td(gomponents.Text(u.DisplayName())),
		html.Td(gomponents.Text(u.RegisteredOn())),
		html.Td(gomponents.Text(strconv.Itoa(u.SLimit))),
		html.Td(html.Span(html.Class(badge), gomponents.Text(status))),
		html.Td(
			html.Class("actions"),
			html.A(
				html.Class("btn btn-secondary"),
				html.Href("/users/"+id+"/edit"),
				hx.Get("/users/"+id+"/edit"),
				hx.Target("#user-editor"),
				hx.Swap("outerHTML"),
				gomponents.Text("Edit"),
			),
			html.Form(
				html.Class("inline"),
				html.Method("post"),
				html.Action("/users/"+id+"/delete"),
				hx.Post("/users/"+id+"/delete"),
				hx.Target("#users-panel"),
				hx.Swap("outerHTML"),
				hx.Confirm(fmt.Sprintf("Are you sure you want to delete user %s?", u.DisplayName())),
				web.CSRFField(csrfToken),
				html.Button(html.Type("submit"), html.Class("btn btn-danger"), gomponents.Text("Delete")),
			),
		),
	)
}

// userEditor renders the edit form, or the empty slot it replaces
func userEditor(u *models.User, csrfToken string) gomponents.Node {
	if u == nil {
		return html.Div(html.ID("user-editor"))
	}

	action := fmt.Sprintf("/users/%d", u.UserID)
	return html.Div(
		html.ID("user-editor"),
		html.Class("card"),
		html.H2(gomponents.Textf("Edit User #%d", u.UserID)),
		html.Form(
			html.Method("post"),
			html.Action(action),
			hx.Post(action),
			hx.Target("#users-panel"),
			hx.Swap("outerHTML"),
			gomponents.Attr("hx-disabled-elt", "find button"),
			web.CSRFField(csrfToken),
			html.Div(
				html.Class("form-grid"),
				web.FormGroup("Username", "username", web.TextInput("username", u.Username)),
				web.FormGroup("First Name", "first_name", web.TextInput("first_name", u.FirstName)),
				web.FormGroup("Last Name", "last_name", web.TextInput("last_name", u.LastName)),
				web.FormGroup("Search Limit", "slimit", web.NumberInput("slimit", strconv.Itoa(u.SLimit), "1", html.Min("0"))),
			),
			web.Checkbox("is_active", "Active", u.Active()),
			html.Div(
				html.Class("node-actions"),
				html.Button(html.Type("submit"), html.Class("btn btn-success"), gomponents.Text("Save Changes")),
				html.Button(
					html.Type("submit"),
					html.Class("btn btn-secondary"),
					gomponents.Attr("formaction", "/users/cancel"),
					hx.Post("/users/cancel"),
					hx.Target("#user-editor"),
					hx.Swap("outerHTML"),
					gomponents.Text("Cancel"),
				),
			),
		),
	)
}
