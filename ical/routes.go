package ical

import (
	"net/http"
	"time"

	"git.sr.ht/~mariusor/lw"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mariusor/render"

	"git.sr.ht/~mariusor/guildcal/storage"
)

type Config struct {
	Store storage.Loader
	// Ledger is optional, without it the index page is empty.
	Ledger  storage.Ledger
	BaseURL string
	// Clock hides the entries that ended, it defaults to time.Now.
	Clock  func() time.Time
	Logger lw.Logger
}

// Routes serves the calendar artifacts:
//
//	GET /                 list of published calendars
//	GET /{id}, /{id}.ics  the calendar of guild id
//	GET /{id}/subscribe   subscription instructions and the events not ended yet
func Routes(c Config) http.Handler {
	h := &handler{
		st:      c.Store,
		ledger:  c.Ledger,
		baseURL: c.BaseURL,
		ren:     render.New(defaultRenderOptions),
		now:     c.Clock,
		l:       c.Logger,
	}
	if h.l == nil {
		h.l = lw.Nil()
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/", h.ServeIndex)
	r.Get("/{id}", h.ServeCalendar)
	r.Get("/{id}/subscribe", h.ServeSubscribe)
	return r
}
