package preview

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/goliatone/go-entityform/pkg/widgets"
)

type formView struct {
	Type string
	Rows []rowView
}

type rowView struct {
	ID          string
	Name        string
	Label       string
	Description string
	Placeholder string
	Kind        string
	Class       string
	Element     string
	InputType   string
	Value       string
	Checked     bool
	Multiple    bool
	Required    bool
	ReadOnly    bool
	MaxLength   int
	Items       []itemView
	Nested      string
}

type itemView struct {
	Label    string
	Value    string
	Selected bool
}

var inputTypes = map[widgets.Kind]string{
	widgets.KindText:     "text",
	widgets.KindPassword: "password",
	widgets.KindColor:    "color",
	widgets.KindNumber:   "number",
	widgets.KindCheckbox: "checkbox",
	widgets.KindDate:     "date",
	widgets.KindTime:     "time",
	widgets.KindDateTime: "datetime-local",
	widgets.KindImage:    "file",
}

func newRowView(row *form.Row) rowView {
	kind := row.Widget.Kind()
	desc := row.Property.Descriptor
	view := rowView{
		ID:          row.Widget.ID(),
		Name:        row.Name,
		Label:       row.Label,
		Description: desc.Description,
		Placeholder: desc.Placeholder,
		Kind:        string(kind),
		Class:       "form-field-" + string(kind),
		Required:    desc.Required,
		ReadOnly:    desc.ReadOnly,
	}
	if in, ok := row.Widget.(*widgets.Input); ok {
		view.Class = in.ClassName
		view.ReadOnly = in.ReadOnly
	}

	value := row.Widget.Value()
	switch {
	case kind == widgets.KindForm:
		view.Element = "fieldset"
	case kind == widgets.KindCustom:
		view.Element = "div"
	case kind == widgets.KindTextArea:
		view.Element = "textarea"
		view.MaxLength = desc.MaxLength
		view.Value = formatValue(value, kind)
	case kind == widgets.KindRadioGroup:
		view.Element = "radio"
		view.Items = itemViews(row.Widget, value)
	case kind.IsChoice() || kind.IsMulti():
		view.Element = "select"
		view.Multiple = kind.IsMulti()
		view.Items = itemViews(row.Widget, value)
	default:
		view.Element = "input"
		view.InputType = inputTypes[kind]
		if view.InputType == "" {
			view.InputType = "text"
		}
		if checked, ok := value.(bool); ok {
			view.Checked = checked
		}
		view.Value = formatValue(value, kind)
	}
	return view
}

func itemViews(w widgets.Widget, value any) []itemView {
	in, ok := w.(*widgets.Input)
	if !ok {
		return nil
	}
	selected := make(map[string]bool)
	if list, ok := value.([]any); ok {
		for _, v := range list {
			selected[itemValue(v)] = true
		}
	} else if value != nil {
		selected[itemValue(value)] = true
	}
	out := make([]itemView, 0, len(in.Items))
	for _, item := range in.Items {
		v := itemValue(item.Value)
		out = append(out, itemView{Label: item.Label, Value: v, Selected: selected[v]})
	}
	return out
}

func itemValue(value any) string {
	if entity, ok := value.(meta.Entity); ok && entity != nil {
		return entity.EntityID()
	}
	return fmt.Sprint(value)
}

func formatValue(value any, kind widgets.Kind) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		switch kind {
		case widgets.KindDate:
			return v.Format(widgets.DateLayout)
		case widgets.KindTime:
			return v.Format(widgets.TimeLayout)
		}
		return v.Format("2006-01-02T15:04")
	case []byte:
		return ""
	}
	return fmt.Sprint(value)
}
