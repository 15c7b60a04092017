package schedule

import (
	"net/mail"
	"net/url"
	"strings"
	"text/template"

	"github.com/trezcool/chuo/core"
)

// Email categories of clash notifications.
const (
	MailCategoryClash  = "venue-clash"
	MailCategoryDigest = "venue-clash-digest"
)

var clashTemplate = template.Must(template.New("clashes").Funcs(template.FuncMap{
	"span": Span,
}).Parse(`{{len .Conflicts}} venue clash(es) detected{{with .Period}} for {{.}}{{end}}.
{{range .Conflicts}}
- {{.Date}} at {{.Venue}}: "{{.A.Title}}" ({{span .A}}) overlaps "{{.B.Title}}" ({{span .B}})
{{- end}}
{{with .Link}}
Review them at {{.}}
{{end}}
Clashes are advisory; no event was changed.
`))

type clashData struct {
	Period    string
	Link      string
	Conflicts []Conflict
}

// ConflictsLink points at the console's clash view for cf, or is empty without a base URL.
func ConflictsLink(baseURL string, cf ConflictFilter) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}
	q := url.Values{}
	if cf.From != "" {
		q.Set("from", cf.From)
	}
	if cf.To != "" {
		q.Set("to", cf.To)
	}
	if cf.Venue != "" {
		q.Set("venue", cf.Venue)
	}
	link := baseURL + "/events/conflicts"
	if len(q) > 0 {
		link += "?" + q.Encode()
	}
	return link
}

// Span renders an event's times as "HH:MM-HH:MM", defaulting missing times to the full day.
func Span(e Event) string {
	return clockOr(e.StartTime, DayStart) + "-" + clockOr(e.EndTime, DayEnd)
}

// NewClashMessage builds the email listing conflicts; period is free text naming the range checked
// and link, when set, leads to the clash view.
func NewClashMessage(to []mail.Address, subject, period, link string, conflicts []Conflict) *core.EmailMessage {
	return &core.EmailMessage{
		To:           to,
		Subject:      subject,
		Category:     MailCategoryClash,
		Template:     clashTemplate,
		TemplateData: clashData{Period: period, Link: link, Conflicts: conflicts},
	}
}
