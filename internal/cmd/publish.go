package cmd

import (
	"context"

	"git.sr.ht/~mariusor/lw"
	"github.com/go-ap/errors"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~mariusor/guildcal"
	"git.sr.ht/~mariusor/guildcal/discord"
)

var PublishCmd = cli.Command{
	Name:      "publish",
	Usage:     "Publishes the calendars of the guilds, or republishes all known calendars",
	ArgsUsage: "[guild id...]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Output debug messages",
		},
	},
	Action: publishCalendars,
}

var RemoveCmd = cli.Command{
	Name:      "remove",
	Usage:     "Removes the calendars of the guilds",
	ArgsUsage: "guild id...",
	Action:    removeCalendars,
}

func guildIDs(args []string) ([]string, error) {
	for _, id := range args {
		if !guildcal.ValidID(id) {
			return nil, errors.Newf("invalid guild id %q", id)
		}
	}
	return args, nil
}

// forEach runs fn for every id, at most parallel at a time, and returns the first error.
func forEach(ids []string, parallel int, l lw.Logger, fn func(context.Context, string) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(parallel)
	for _, id := range ids {
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				return err
			}
			l.Infof("%s: done", id)
			return nil
		})
	}
	return g.Wait()
}

func publishCalendars(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	l := logger(conf.Debug)

	ids, err := guildIDs(c.Args())
	if err != nil {
		return err
	}
	s, err := discord.Session(conf.Token)
	if err != nil {
		return err
	}
	p, err := newPipeline(conf, discord.NewSource(s, conf.Timeout), l)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		pubs, err := p.ledger.LoadPublications()
		if err != nil {
			return errors.Annotatef(err, "unable to load known calendars")
		}
		for _, pub := range pubs {
			ids = append(ids, pub.CommunityID)
		}
		if len(ids) == 0 {
			return errors.Newf("no guild ids given and no calendars were published before")
		}
	}
	return forEach(ids, conf.Parallel, l, p.ctl.Publish)
}

func removeCalendars(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	l := logger(conf.Debug)

	ids, err := guildIDs(c.Args())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.Newf("no guild ids given")
	}
	p, err := newPipeline(conf, nil, l)
	if err != nil {
		return err
	}
	return forEach(ids, conf.Parallel, l, p.ctl.Remove)
}
