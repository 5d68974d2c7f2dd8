package cmd

import (
	"net/http"

	"github.com/go-ap/errors"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/guildcal/discord"
	"git.sr.ht/~mariusor/guildcal/trigger"
)

var RunCmd = cli.Command{
	Name:  "run",
	Usage: "Connects to Discord and keeps the guild calendars up to date",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "Address to serve the calendars on, empty to disable serving",
		},
		&baseURLFlag,
		&cli.StringFlag{
			Name:  "refresh",
			Usage: "Cron schedule for republishing every guild, eg: \"@every 6h\"",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Output debug messages",
		},
	},
	Action: runBot,
}

func runBot(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	l := logger(conf.Debug)

	s, err := discord.Session(conf.Token)
	if err != nil {
		return err
	}
	src := discord.NewSource(s, conf.Timeout)
	p, err := newPipeline(conf, src, l)
	if err != nil {
		return err
	}

	d := trigger.New(trigger.Config{
		Publisher: p.ctl,
		Replier:   discord.NewReplier(s),
		BaseURL:   conf.BaseURL,
		Parallel:  conf.Parallel,
		Logger:    l,
	})
	unregister := discord.Register(s, d)

	var cr *cron.Cron
	if conf.Refresh != "" {
		cr = cron.New()
		_, err = cr.AddFunc(conf.Refresh, func() {
			l.Debugf("refreshing all calendars")
			d.Dispatch(trigger.Ready{Communities: src.Communities()})
		})
		if err != nil {
			return errors.Annotatef(err, "invalid refresh schedule %q", conf.Refresh)
		}
	}

	if err = s.Open(); err != nil {
		return errors.Annotatef(err, "unable to connect to the Discord gateway")
	}
	l.Infof("Connected to Discord, writing calendars to %s", conf.Output)
	if cr != nil {
		cr.Start()
	}

	var h http.Handler
	if conf.Listen != "" {
		h = routes(conf, p, l)
	}
	runUntilSignal(l, conf.Listen, h)

	if cr != nil {
		<-cr.Stop().Done()
	}
	unregister()
	if err = s.Close(); err != nil {
		l.Warnf("unable to close the Discord session: %s", err)
	}
	d.Wait()
	return nil
}
