package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"InkBoard/internal/aid"
	"InkBoard/internal/config"
	"InkBoard/internal/logging"
	inknet "InkBoard/internal/net"
	"InkBoard/internal/render"
	"InkBoard/internal/session"
	"InkBoard/internal/state"
	"InkBoard/internal/ui"
)

const dialTimeout = 5 * time.Second

type options struct {
	configPath string
	debug      bool
	offline    bool
	discover   bool
	snapshot   string
	link       string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "TOML settings file")
	flag.BoolVar(&opts.debug, "debug", false, "verbose logging and a live stats bar")
	flag.BoolVar(&opts.offline, "offline", false, "draw locally without hosting")
	flag.BoolVar(&opts.discover, "discover", false, "join the first host found on the LAN")
	flag.StringVar(&opts.snapshot, "snapshot", "", "write the joined board to this PNG and exit")
	flag.Parse()
	if args := flag.Args(); len(args) > 0 && inknet.IsLink(args[0]) {
		opts.link = args[0]
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := logging.For("main")

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			log.Error("config rejected", "err", err)
			os.Exit(1)
		}
	}

	if err := run(cfg, opts); err != nil {
		log.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, opts options) error {
	url, err := hubURL(opts)
	if err != nil {
		return err
	}
	if opts.snapshot != "" {
		if url == "" {
			return errors.New("-snapshot needs a share link or -discover")
		}
		return snapshot(url, cfg.Server.BoardID, opts.snapshot)
	}

	a := ui.NewApp()
	scene := render.New(render.Capabilities{Display: true}).(*render.Scene)
	sched := aid.NewClockScheduler(fyne.Do)

	relay := &feedRelay{}
	feed := relay.deliver

	var store session.Persistence
	shareLink := ""
	switch {
	case opts.offline:
	case url != "":
		c, err := dial(url, cfg.Server.BoardID, feed)
		if err != nil {
			return err
		}
		defer c.Close()
		store = c
	default:
		c, link, stop, err := host(cfg, feed)
		if err != nil {
			return err
		}
		defer stop()
		defer c.Close()
		store = c
		shareLink = link
	}

	sess := session.New(session.FromConfig(cfg), sched, store, scene)
	relay.attach(sess)
	board := ui.NewBoardWidget(sess, scene)
	ui.RunApp(a, cfg.Server.Name, shareLink, board, cfg.Registry().IDs(), opts.debug)
	return nil
}

// feedRelay holds hub snapshots that arrive before the session exists and
// hands later ones to the UI goroutine.
type feedRelay struct {
	mu      sync.Mutex
	sess    *session.Session
	pending []*state.Stroke
	held    bool
}

func (r *feedRelay) deliver(strokes []*state.Stroke) {
	r.mu.Lock()
	sess := r.sess
	if sess == nil {
		r.pending, r.held = strokes, true
	}
	r.mu.Unlock()
	if sess != nil {
		fyne.Do(func() { sess.Sync(strokes) })
	}
}

func (r *feedRelay) attach(sess *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sess = sess
	if r.held {
		sess.Sync(r.pending)
		r.pending, r.held = nil, false
	}
}

// hubURL resolves where to join: an explicit link, a discovered host, or
// nowhere when this process hosts.
func hubURL(opts options) (string, error) {
	if opts.link != "" {
		return inknet.ParseLink(opts.link)
	}
	if !opts.discover {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	addrs, err := inknet.Browse(ctx, 2*time.Second)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", errors.New("no hosts found on the LAN")
	}
	logging.For("main").Info("discovered hosts", "hosts", addrs)
	return inknet.HubURL(addrs[0]), nil
}

func dial(url, boardID string, feed func([]*state.Stroke)) (*inknet.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return inknet.Dial(ctx, url, boardID, feed)
}

// host serves the hub, advertises it, and connects this process to it as
// an ordinary client.
func host(cfg config.Config, feed func([]*state.Stroke)) (*inknet.Client, string, func(), error) {
	log := logging.For("main")
	hub := inknet.NewHub()
	mux := http.NewServeMux()
	mux.Handle(inknet.WebSocketPath, hub)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("hub server stopped", "err", err)
		}
	}()
	log.Info("hosting", "port", cfg.Server.Port, "board", cfg.Server.BoardID)

	advert, err := inknet.Advertise(cfg.Server.Name, cfg.Server.Port)
	if err != nil {
		log.Warn("lan discovery unavailable", "err", err)
	}
	stop := func() {
		if advert != nil {
			advert.Shutdown()
		}
		hub.Close()
		srv.Close()
	}

	var c *inknet.Client
	for attempt := 0; ; attempt++ {
		c, err = dial(inknet.HubURL(fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)), cfg.Server.BoardID, feed)
		if err == nil || attempt == 10 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		stop()
		return nil, "", nil, err
	}
	return c, inknet.ShareLink(inknet.OutgoingIP(), cfg.Server.Port), stop, nil
}

// snapshot waits for the first feed of a hub and renders it to path.
func snapshot(url, boardID, path string) error {
	first := make(chan []*state.Stroke, 1)
	c, err := dial(url, boardID, func(strokes []*state.Stroke) {
		select {
		case first <- strokes:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer c.Close()

	var strokes []*state.Stroke
	select {
	case strokes = <-first:
	case <-c.Done():
		return fmt.Errorf("hub closed: %w", c.Err())
	case <-time.After(dialTimeout):
		return errors.New("no snapshot from hub")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := render.ExportPNG(f, strokes, 1600, 1000); err != nil {
		return err
	}
	logging.For("main").Info("snapshot written", "path", path, "strokes", len(strokes))
	return nil
}
