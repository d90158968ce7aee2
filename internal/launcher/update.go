package launcher

import (
	"context"
	"fmt"
	"time"

	"github.com/xynnet/client-launcher/internal/files"
	"github.com/xynnet/client-launcher/internal/update"
)

// eventBuffer bounds the update event channel.
const eventBuffer = 16

// Update installs the latest version on a worker goroutine. The returned
// channel carries the worker's events and is closed when it finishes.
// The stored version advances only after the archive is fully installed.
func (l *Launcher) Update(ctx context.Context) <-chan Event {
	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		l.runUpdate(ctx, events)
	}()
	return events
}

func (l *Launcher) runUpdate(ctx context.Context, events chan<- Event) {
	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error) {
		l.log.Error().Err(err).Msg("update failed")
		l.setState(Failed)
		send(Event{Kind: EventFailed, Err: err})
	}

	cfg := l.opts.Store.Load()
	if cfg.GameDirectory == "" {
		fail(ErrNoInstall)
		return
	}

	if !send(Event{Kind: EventChecking}) {
		fail(ctx.Err())
		return
	}
	st := l.CheckUpdate(ctx)
	switch st.State {
	case UpdateUnknown:
		fail(st.Err)
		return
	case UpToDate:
		send(Event{Kind: EventUpToDate, Version: st.Local})
		return
	}

	l.setState(Updating)
	if !send(Event{Kind: EventStarted, Version: st.Latest}) {
		fail(ctx.Err())
		return
	}
	l.log.Info().Str("from", st.Local).Str("to", st.Latest).Str("url", l.opts.UpdateURL).Msg("update started")

	started := time.Now().UTC()
	err := l.opts.Fetcher.DownloadAndExtract(ctx, l.opts.UpdateURL, cfg.GameDirectory, func(p update.Progress) {
		send(Event{Kind: EventProgress, Percent: p.Percent, Name: p.Name, Version: st.Latest})
	})
	if err != nil {
		fail(err)
		return
	}
	if err := verifyMarker(cfg.GameDirectory, started); err != nil {
		fail(err)
		return
	}

	if err := l.opts.Store.Save(files.Fields{InstalledVersion: &st.Latest}); err != nil {
		// Files are in place; the next check will offer the update again.
		l.log.Error().Err(err).Str("path", l.opts.Store.Path()).Msg("could not record installed version")
	}
	l.log.Info().Str("version", st.Latest).Msg("update installed")
	l.setState(UpToDate)
	send(Event{Kind: EventDone, Version: st.Latest})
}

// verifyMarker checks that the install carries a completion marker from
// this run.
func verifyMarker(dest string, since time.Time) error {
	m, err := update.ReadMarker(dest)
	if err != nil {
		return fmt.Errorf("update incomplete: %w", err)
	}
	if m.CompletedAt.Before(since.Truncate(time.Second)) {
		return fmt.Errorf("update incomplete: marker predates this run (%s)", m.CompletedAt.Format(time.RFC3339))
	}
	return nil
}
