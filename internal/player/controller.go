package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hdhr-tui/internal/lineup"
)

// ErrNoStreamURL is returned by Play for a channel without a stream URL.
var ErrNoStreamURL = errors.New("channel has no stream url")

// SpawnError reports that the external player could not be started.
type SpawnError struct {
	URL string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("start player for %s: %v", e.URL, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Process is a running external player.
type Process interface {
	PID() int
	Kill() error
	// Done is closed once the process has exited.
	Done() <-chan struct{}
}

// Launcher starts an external player for a stream URL.
type Launcher interface {
	Launch(url string) (Process, error)
}

// Handle is the controller's reference to the player it launched.
type Handle struct {
	ID      string
	Channel lineup.Channel
	PID     int
	Started time.Time

	proc Process
}

// Done is closed once the process has exited, whether it was killed or not.
func (h Handle) Done() <-chan struct{} {
	if h.proc == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return h.proc.Done()
}

// Exited reports whether the process has ended.
func (h Handle) Exited() bool {
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}

// Controller owns at most one external player at a time.
type Controller struct {
	mu       sync.Mutex
	launcher Launcher
	log      logrus.FieldLogger
	current  *Handle
}

func NewController(launcher Launcher, log logrus.FieldLogger) *Controller {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Controller{launcher: launcher, log: log}
}

// Play stops whatever is playing and starts the player for ch. Failing to
// stop the old process is logged and ignored. If the new process cannot be
// started, the controller is left owning nothing. A channel without a stream
// URL returns ErrNoStreamURL and leaves the current player running.
func (c *Controller) Play(ch lineup.Channel) error {
	if strings.TrimSpace(ch.URL) == "" {
		return ErrNoStreamURL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	if c.launcher == nil {
		err := &SpawnError{URL: ch.URL, Err: ErrPlayerNotFound}
		c.log.WithError(err).Warn("no player launcher configured")
		return err
	}

	proc, err := c.launcher.Launch(ch.URL)
	if err != nil {
		spawnErr := &SpawnError{URL: ch.URL, Err: err}
		c.log.WithFields(logrus.Fields{
			"guide_number": ch.GuideNumber,
			"url":          ch.URL,
		}).WithError(err).Error("failed to start player")
		return spawnErr
	}

	c.current = &Handle{
		ID:      uuid.NewString(),
		Channel: ch,
		PID:     proc.PID(),
		Started: time.Now(),
		proc:    proc,
	}
	c.log.WithFields(logrus.Fields{
		"handle":       c.current.ID,
		"pid":          c.current.PID,
		"guide_number": ch.GuideNumber,
		"guide_name":   ch.GuideName,
	}).Info("player started")
	return nil
}

// Stop terminates the owned player, if any.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.current == nil {
		return
	}
	h := c.current
	c.current = nil

	entry := c.log.WithFields(logrus.Fields{"handle": h.ID, "pid": h.PID})
	if err := h.proc.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			entry.Debug("player already exited")
			return
		}
		entry.WithError(err).Warn("failed to stop player")
		return
	}
	entry.Info("player stopped")
}

// Current returns a copy of the owned handle.
func (c *Controller) Current() (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Handle{}, false
	}
	return *c.current, true
}

// Playing reports whether the owned player is still running.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && !c.current.Exited()
}
