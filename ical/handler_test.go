package ical

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/go-ap/errors"

	"git.sr.ht/~mariusor/guildcal/calendar"
	"git.sr.ht/~mariusor/guildcal/storage"
)

var nineAM = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type memStore map[string][]byte

func (m memStore) Load(key string) ([]byte, error) {
	if data, ok := m[key]; ok {
		return data, nil
	}
	return nil, errors.NotFoundf("calendar %s", key)
}

type ledger storage.Publications

func (l ledger) SavePublication(storage.Publication) error { return nil }
func (l ledger) RemovePublication(string) error            { return nil }
func (l ledger) LoadPublication(string) (storage.Publication, error) {
	return storage.Publication{}, errors.NotFoundf("publication")
}
func (l ledger) LoadPublications() (storage.Publications, error) {
	return storage.Publications(l), nil
}

func encoded(t *testing.T) []byte {
	t.Helper()
	doc := calendar.Document{
		Name: "Acme",
		Entries: calendar.Entries{{
			UID:         "999",
			Summary:     "Standup",
			Description: "**Daily** sync\n\nhttps://discord.com/events/111/999",
			URL:         "https://discord.com/events/111/999",
			Location:    "🔊 General",
			Start:       nineAM,
			End:         nineAM,
		}},
	}
	buf := bytes.Buffer{}
	if err := doc.Encode(&buf, nineAM); err != nil {
		t.Fatalf("Encode() error: %s", err)
	}
	return buf.Bytes()
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func testRoutes(t *testing.T, now time.Time) http.Handler {
	return Routes(Config{
		Store: memStore{"111": encoded(t)},
		Ledger: ledger{
			{CommunityID: "111", Name: "Acme", Entries: 1, Size: 300, Published: nineAM},
		},
		BaseURL: "https://cal.example.com/",
		Clock:   func() time.Time { return now },
	})
}

func TestServeCalendar(t *testing.T) {
	h := testRoutes(t, nineAM.Add(-time.Hour))
	for _, path := range []string{"/111", "/111.ics"} {
		rec := serve(t, h, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
			t.Errorf("GET %s: Content-Type = %q", path, ct)
		}
		if !strings.Contains(rec.Body.String(), "UID:999") {
			t.Errorf("GET %s: unexpected body:\n%s", path, rec.Body.String())
		}
	}
}

func TestServeCalendarErrors(t *testing.T) {
	h := testRoutes(t, nineAM.Add(-time.Hour))
	tests := map[string]int{
		"/222":           http.StatusNotFound,
		"/abc":           http.StatusBadRequest,
		"/222/subscribe": http.StatusNotFound,
	}
	for path, status := range tests {
		if rec := serve(t, h, path); rec.Code != status {
			t.Errorf("GET %s: status %d, want %d", path, rec.Code, status)
		}
	}
}

func TestServeSubscribe(t *testing.T) {
	rec := serve(t, testRoutes(t, nineAM.Add(-time.Hour)), "/111/subscribe")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d:\n%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Acme</title>",
		"https://cal.example.com/111",
		"webcal://cal.example.com/111",
		"Standup",
		"🔊 General",
		"<strong>Daily</strong>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

func TestServeSubscribeHidesEnded(t *testing.T) {
	rec := serve(t, testRoutes(t, nineAM.Add(time.Minute)), "/111/subscribe")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d:\n%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, "Standup") {
		t.Errorf("ended entry is listed:\n%s", body)
	}
	if !strings.Contains(body, "There are no scheduled events.") {
		t.Errorf("missing empty list message:\n%s", body)
	}
}

func TestUpcomingKeepsBackslashes(t *testing.T) {
	doc := calendar.Document{
		Name: "Acme",
		Entries: calendar.Entries{{
			UID:         "999",
			Summary:     `C:\new`,
			Description: `run C:\new\setup.exe; then reboot, twice`,
			Location:    `\\share\new`,
			Start:       nineAM,
			End:         nineAM.Add(time.Hour),
		}},
	}
	buf := bytes.Buffer{}
	if err := doc.Encode(&buf, nineAM); err != nil {
		t.Fatalf("Encode() error: %s", err)
	}
	cal, err := ics.ParseCalendar(&buf)
	if err != nil {
		t.Fatalf("ParseCalendar() error: %s", err)
	}
	got := upcoming(cal, nineAM)
	if len(got) != 1 {
		t.Fatalf("upcoming() returned %d entries", len(got))
	}
	if got[0].Summary != `C:\new` {
		t.Errorf("Summary = %q, want %q", got[0].Summary, `C:\new`)
	}
	if got[0].Location != `\\share\new` {
		t.Errorf("Location = %q, want %q", got[0].Location, `\\share\new`)
	}
	if !strings.Contains(string(got[0].Description), `C:\new\setup.exe; then reboot, twice`) {
		t.Errorf("Description = %q", got[0].Description)
	}
	if got := upcoming(cal, nineAM.Add(2*time.Hour)); len(got) != 0 {
		t.Errorf("upcoming() after the end returned %d entries", len(got))
	}
}

func TestServeIndex(t *testing.T) {
	rec := serve(t, testRoutes(t, nineAM.Add(-time.Hour)), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `href="https://cal.example.com/111/subscribe"`) || !strings.Contains(body, "1 event,") {
		t.Errorf("unexpected index:\n%s", body)
	}
}

func TestServeIndexWithoutLedger(t *testing.T) {
	rec := serve(t, Routes(Config{Store: memStore{}}), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No calendars") {
		t.Errorf("unexpected index:\n%s", rec.Body.String())
	}
}
