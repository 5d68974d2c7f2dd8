package calendar

import (
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/go-ap/errors"
)

const (
	ProductID = "-//mariusor//guildcal//EN"

	refreshInterval = "PT1H"
)

// Encode writes the document as an iCalendar stream.
// All timestamps are UTC, stamp is used as DTSTAMP of every entry.
func (d Document) Encode(w io.Writer, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	cal.SetName(d.Name)
	cal.SetXWRCalName(d.Name)
	cal.SetRefreshInterval(refreshInterval)
	cal.SetXPublishedTTL(refreshInterval)

	stamp = stamp.UTC()
	for _, e := range d.Entries {
		if e.UID == "" {
			return errors.Newf("entry %q has no UID", e.Summary)
		}
		ev := cal.AddEvent(e.UID)
		ev.SetSummary(e.Summary)
		ev.SetDescription(e.Description)
		ev.SetURL(e.URL)
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
		ev.SetStartAt(e.Start.UTC())
		ev.SetEndAt(e.End.UTC())
		ev.SetDtStampTime(stamp)
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return errors.Annotatef(err, "unable to write calendar %s", d.Name)
	}
	return nil
}
