package ical

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"git.sr.ht/~mariusor/lw"
	ics "github.com/arran4/golang-ical"
	"github.com/go-ap/errors"
	"github.com/go-chi/chi/v5"
	"github.com/mariusor/render"
	"gitlab.com/golang-commonmark/markdown"

	"git.sr.ht/~mariusor/guildcal"
	"git.sr.ht/~mariusor/guildcal/storage"
)

const (
	templateDir = "templates"
	contentType = "text/calendar; charset=utf-8"
	timeFormat  = "Mon, 02 Jan 2006 15:04 MST"
)

//go:embed templates
var templates embed.FS

var (
	md = markdown.New(
		markdown.HTML(false),
		markdown.Tables(true),
		markdown.Linkify(true),
		markdown.Typographer(true),
		markdown.Breaks(true),
	)

	defaultRenderOptions = render.Options{
		Directory:  templateDir,
		FileSystem: templates,
		Layout:     "main",
		Extensions: []string{".html"},
		Funcs: []template.FuncMap{{
			"iso":   func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
			"human": func(t time.Time) string { return t.UTC().Format(timeFormat) },
		}},
		Delims:                    render.Delims{Left: "{{", Right: "}}"},
		Charset:                   "UTF-8",
		HTMLContentType:           "text/html",
		DisableHTTPErrorRendering: true,
	}
)

type handler struct {
	st      storage.Loader
	ledger  storage.Ledger
	baseURL string
	ren     *render.Render
	now     func() time.Time
	l       lw.Logger
}

type indexPage struct {
	Title        string
	BaseURL      string
	Publications storage.Publications
}

type entry struct {
	Summary     string
	Location    string
	URL         string
	Start       time.Time
	End         time.Time
	Description template.HTML
}

type subscribePage struct {
	Title     string
	URL       string
	WebcalURL template.URL
	Entries   []entry
}

func (h *handler) calendarURL(id string) string {
	return strings.TrimRight(h.baseURL, "/") + "/" + id
}

func (h *handler) errorf(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.IsNotFound(err) {
		status = http.StatusNotFound
	} else if errors.IsBadRequest(err) {
		status = http.StatusBadRequest
	} else {
		h.l.Errorf("%s", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func (h *handler) load(r *http.Request) (string, []byte, error) {
	id := strings.TrimSuffix(chi.URLParam(r, "id"), ".ics")
	if !guildcal.ValidID(id) {
		return id, nil, errors.BadRequestf("invalid calendar %q", id)
	}
	data, err := h.st.Load(id)
	return id, data, err
}

// ServeCalendar writes the published artifact of a guild.
func (h *handler) ServeCalendar(w http.ResponseWriter, r *http.Request) {
	id, data, err := h.load(r)
	if err != nil {
		h.errorf(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s.ics"`, id))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ServeSubscribe renders the subscription instructions and the entries of a guild
// calendar that haven't ended yet.
func (h *handler) ServeSubscribe(w http.ResponseWriter, r *http.Request) {
	id, data, err := h.load(r)
	if err != nil {
		h.errorf(w, err)
		return
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		h.errorf(w, errors.Annotatef(err, "unable to parse calendar %s", id))
		return
	}

	u := h.calendarURL(id)
	page := subscribePage{
		Title:     calendarName(cal),
		URL:       u,
		WebcalURL: template.URL("webcal://" + strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")),
		Entries:   upcoming(cal, h.now()),
	}
	if err := h.ren.HTML(w, http.StatusOK, "subscribe", page); err != nil {
		h.l.Errorf("unable to render subscribe page: %s", err)
	}
}

// ServeIndex lists the published calendars.
func (h *handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Title: guildcal.AppName, BaseURL: strings.TrimRight(h.baseURL, "/")}
	if h.ledger != nil {
		pubs, err := h.ledger.LoadPublications()
		if err != nil {
			h.errorf(w, err)
			return
		}
		page.Publications = pubs
	}
	if err := h.ren.HTML(w, http.StatusOK, "index", page); err != nil {
		h.l.Errorf("unable to render index: %s", err)
	}
}

func property(props []ics.CalendarProperty, name ics.Property) string {
	for _, p := range props {
		if p.IANAToken == string(name) {
			return p.Value
		}
	}
	return ""
}

func calendarName(cal *ics.Calendar) string {
	if name := property(cal.CalendarProperties, ics.PropertyXWRCalName); name != "" {
		return name
	}
	return guildcal.DefaultCommunityName
}

func value(ev *ics.VEvent, p ics.ComponentProperty) string {
	if prop := ev.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func renderMarkdown(s string) template.HTML {
	buf := bytes.Buffer{}
	if err := md.Render(&buf, []byte(s)); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

// upcoming returns the entries of cal ending at or after now.
func upcoming(cal *ics.Calendar, now time.Time) []entry {
	events := cal.Events()
	result := make([]entry, 0, len(events))
	for _, ev := range events {
		e := entry{
			Summary:     value(ev, ics.ComponentPropertySummary),
			Location:    value(ev, ics.ComponentPropertyLocation),
			URL:         value(ev, ics.ComponentPropertyUrl),
			Description: renderMarkdown(value(ev, ics.ComponentPropertyDescription)),
		}
		e.Start, _ = ev.GetStartAt()
		if e.End, _ = ev.GetEndAt(); e.End.IsZero() {
			e.End = e.Start
		}
		if e.End.Before(now) {
			continue
		}
		result = append(result, e)
	}
	return result
}
