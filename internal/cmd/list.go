package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-ap/errors"
	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/guildcal/storage"
	"git.sr.ht/~mariusor/guildcal/trigger"
)

var ListCmd = cli.Command{
	Name:  "list",
	Usage: "Lists the published calendars",
	Flags: []cli.Flag{
		&baseURLFlag,
	},
	Action: listCalendars,
}

func listCalendars(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	p, err := newPipeline(conf, nil, logger(conf.Debug))
	if err != nil {
		return err
	}
	pubs, err := p.ledger.LoadPublications()
	if err != nil {
		return errors.Annotatef(err, "unable to load publications")
	}
	return printPublications(os.Stdout, conf.BaseURL, pubs)
}

func printPublications(w io.Writer, baseURL string, pubs storage.Publications) error {
	if len(pubs) == 0 {
		_, err := fmt.Fprintln(w, "nothing found")
		return err
	}
	for _, p := range pubs {
		_, err := fmt.Fprintf(w, "[%s] %s: %d entries, %dB, published %s\n\t%s\n",
			p.CommunityID, p.Name, p.Entries, p.Size, p.Published.Local().Format("2006-01-02 15:04 MST"),
			trigger.CalendarURL(baseURL, p.CommunityID))
		if err != nil {
			return err
		}
	}
	return nil
}
