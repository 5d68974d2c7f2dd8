package cmd

import (
	"context"
	"net/http"
	"sync"
	"syscall"
	"time"

	"git.sr.ht/~mariusor/lw"
	w "git.sr.ht/~mariusor/wrapper"
	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/guildcal/ical"
)

var wait = 5 * time.Second

var listenFlag = cli.StringFlag{
	Name:  "listen",
	Usage: "Address to serve the calendars on",
	Value: DefaultListen,
}

var baseURLFlag = cli.StringFlag{
	Name:  "base-url",
	Usage: "Public address of the served calendars, used in replies and subscription pages",
	Value: DefaultBaseURL,
}

var ServeCmd = cli.Command{
	Name:  "serve",
	Usage: "Serves the published calendars over HTTP",
	Flags: []cli.Flag{
		&listenFlag,
		&baseURLFlag,
	},
	Action: serveCalendars,
}

func serveCalendars(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	if conf.Listen == "" {
		conf.Listen = DefaultListen
	}
	l := logger(conf.Debug)
	p, err := newPipeline(conf, nil, l)
	if err != nil {
		return err
	}
	runUntilSignal(l, conf.Listen, routes(conf, p, l))
	return nil
}

func routes(conf Config, p *pipeline, l lw.Logger) http.Handler {
	return ical.Routes(ical.Config{
		Store:   p.store,
		Ledger:  p.ledger,
		BaseURL: conf.BaseURL,
		Logger:  l,
	})
}

// runUntilSignal serves h on listen, if both are set, and blocks until the
// process receives a stop signal.
func runUntilSignal(l lw.Logger, listen string, h http.Handler) {
	var (
		srvRun  func() error
		srvStop func(context.Context) error
	)
	if listen != "" && h != nil {
		srvRun, srvStop = w.HttpServer(w.Handler(h), w.OnTCP(listen))
	}

	stop := make(chan struct{})
	once := sync.Once{}
	stopWith := func(msg string) func(chan int) {
		return func(exit chan int) {
			l.Infof("%s", msg)
			once.Do(func() { close(stop) })
			exit <- 0
		}
	}

	w.RegisterSignalHandlers(w.SignalHandlers{
		syscall.SIGHUP: func(_ chan int) {
			l.Infof("SIGHUP received, nothing to reload")
		},
		syscall.SIGINT:  stopWith("SIGINT received, stopping"),
		syscall.SIGTERM: stopWith("SIGTERM received, stopping"),
		syscall.SIGQUIT: stopWith("SIGQUIT received, stopping"),
	}).Exec(func() error {
		if srvRun != nil {
			l.Infof("Listening on %s", listen)
			go func() {
				if err := srvRun(); err != nil {
					l.Errorf("Error: %s", err)
				}
			}()
		}
		<-stop
		return nil
	})

	if srvStop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), wait)
		defer cancel()
		if err := srvStop(ctx); err != nil {
			l.Errorf("Error: %s", err)
		}
	}
}
