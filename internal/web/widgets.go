package web

import (
	"strconv"
	"strings"

	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// CSRFFieldName is the form field checked by the CSRF middleware
const CSRFFieldName = "_csrf"

// FieldID derives an element id from a form field name
func FieldID(name string) string {
	return "f-" + strings.NewReplacer(".", "-", "_", "-").Replace(name)
}

// FormGroup wraps a labelled control
func FormGroup(label, name string, control gomponents.Node) gomponents.Node {
	return html.Div(
		html.Class("form-group"),
		html.Label(html.For(FieldID(name)), gomponents.Text(label)),
		control,
	)
}

// TextInput renders a text input named name
func TextInput(name, value string, extra ...gomponents.Node) gomponents.Node {
	return html.Input(
		html.Type("text"),
		html.ID(FieldID(name)),
		html.Name(name),
		html.Value(value),
		html.Class("form-control"),
		gomponents.Group(extra),
	)
}

// NumberInput renders a number input; step "any" accepts decimals
func NumberInput(name, value, step string, extra ...gomponents.Node) gomponents.Node {
	return html.Input(
		html.Type("number"),
		html.ID(FieldID(name)),
		html.Name(name),
		html.Value(value),
		html.Step(step),
		html.Class("form-control"),
		gomponents.Group(extra),
	)
}

// DateInput renders a date input
func DateInput(name, value string) gomponents.Node {
	return html.Input(
		html.Type("date"),
		html.ID(FieldID(name)),
		html.Name(name),
		html.Value(value),
		html.Class("form-control"),
	)
}

// TextArea renders a textarea
func TextArea(name, value string, rows int) gomponents.Node {
	return html.Textarea(
		html.ID(FieldID(name)),
		html.Name(name),
		html.Rows(strconv.Itoa(rows)),
		html.Class("form-control"),
		gomponents.Text(value),
	)
}

// Hidden renders a hidden input
func Hidden(name, value string, extra ...gomponents.Node) gomponents.Node {
	return html.Input(html.Type("hidden"), html.Name(name), html.Value(value), gomponents.Group(extra))
}

// Checkbox renders a labelled checkbox posting "true" when checked
func Checkbox(name, label string, checked bool) gomponents.Node {
	return html.Div(
		html.Class("form-check"),
		html.Input(
			html.Type("checkbox"),
			html.ID(FieldID(name)),
			html.Name(name),
			html.Value("true"),
			gomponents.If(checked, html.Checked()),
		),
		html.Label(html.For(FieldID(name)), gomponents.Text(label)),
	)
}

// SubmitButton renders a submit button posting name=value
func SubmitButton(name, value, label, class string, extra ...gomponents.Node) gomponents.Node {
	return html.Button(
		html.Type("submit"),
		html.Name(name),
		html.Value(value),
		html.Class("btn "+class),
		gomponents.Group(extra),
		gomponents.Text(label),
	)
}

// CSRFField renders the hidden CSRF token input
func CSRFField(token string) gomponents.Node {
	return Hidden(CSRFFieldName, token)
}

// Spinner is the indicator shown while an htmx request is in flight
func Spinner(id string) gomponents.Node {
	return html.Span(html.ID(id), html.Class("htmx-indicator spinner"), gomponents.Text("Loading…"))
}

// Empty renders an empty-state message
func Empty(message string) gomponents.Node {
	return html.P(html.Class("empty-state"), gomponents.Text(message))
}
