package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"portalhub/internal/notification"
)

const (
	// MinRenderRemaining is the least remaining time worth rendering;
	// anything shorter goes straight to Gone so nearly-expired
	// notifications never flash.
	MinRenderRemaining = time.Second

	// ExitDelay is the exit-transition length between Dismissing and Gone.
	ExitDelay = 400 * time.Millisecond

	// RestoreStagger spaces out restored notifications so a reload does
	// not animate them all at once.
	RestoreStagger = 100 * time.Millisecond

	// SnapshotInterval is the periodic save cadence while anything is
	// visible.
	SnapshotInterval = 30 * time.Second

	// FeedCheckInterval is how often the server-notifications record is
	// re-queried for entries this controller has not displayed.
	FeedCheckInterval = 15 * time.Second

	// SwipeThreshold is the horizontal distance that dismisses on touch
	// devices; a shorter swipe snaps back.
	SwipeThreshold = 100.0

	MaxVisibleDesktop = 5
	MaxVisibleTouch   = 3
)

// State of one notification instance.
type State int

const (
	StatePending State = iota
	StateVisible
	StateDismissing
	StateGone
)

// DismissReason records what triggered Visible → Dismissing.
type DismissReason string

const (
	ReasonTimeout DismissReason = "timeout"
	ReasonClose   DismissReason = "close"
	ReasonSwipe   DismissReason = "swipe"
	ReasonEvicted DismissReason = "evicted"
)

type entry struct {
	n         notification.Notification
	key       string
	state     State
	startedAt time.Time
	duration  time.Duration // countdown budget at the last (re)start
	frozen    time.Duration // remaining time while timers are paused
	restored  bool
	timer     *time.Timer
	timerGen  int
}

// remainingAt returns the entry's remaining display time.
func (e *entry) remainingAt(now time.Time) time.Duration {
	if e.timer == nil {
		return e.frozen
	}
	r := e.duration - now.Sub(e.startedAt)
	if r < 0 {
		return 0
	}
	return r
}

// Options wire a Controller.
type Options struct {
	Display Display
	Device  DeviceNotifier // optional fallback channel
	Storage Storage
	Bus     Bus  // optional cross-context broadcast signal
	Touch   bool // touch-classified device
}

// Controller is the single source of truth, per device, for which
// notifications are visible, for how long, and that none is shown twice for
// the same logical event.
type Controller struct {
	mu         sync.Mutex
	display    Display
	device     DeviceNotifier
	recent     *RecentSet
	snapshots  *SnapshotStore
	feed       *FeedStore
	touch      bool
	hidden     bool
	maxVisible int
	entries    map[string]*entry
	order      []string // FIFO of keys, entry order
	now        func() time.Time
	unsub      func()
}

// NewController builds a controller over the given storage and display.
func NewController(opts Options) *Controller {
	maxVisible := MaxVisibleDesktop
	if opts.Touch {
		maxVisible = MaxVisibleTouch
	}
	c := &Controller{
		display:    opts.Display,
		device:     opts.Device,
		recent:     NewRecentSet(opts.Storage),
		snapshots:  NewSnapshotStore(opts.Storage),
		feed:       NewFeedStore(opts.Storage),
		touch:      opts.Touch,
		maxVisible: maxVisible,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
	if opts.Bus != nil {
		c.unsub = opts.Bus.Subscribe(KeyBroadcast, c.onBroadcast)
	}
	return c
}

// Deliver runs a notification through the Pending gate: dedup by identity
// key, the minimum-remaining check, the visible cap, then render. The
// recently-shown set is updated inside the same locked section that checks
// it, so two deliveries of one key can never both pass.
func (c *Controller) Deliver(n notification.Notification, source Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliverLocked(n, source, n.Remaining(c.now()), false)
}

func (c *Controller) deliverLocked(n notification.Notification, source Source, remaining time.Duration, restored bool) {
	key := n.IdentityKey()
	now := c.now()

	if _, live := c.entries[key]; live {
		return // already on screen
	}
	// A restored entry was necessarily marked before the reload; the
	// recently-shown check would suppress every restore, so it applies to
	// fresh deliveries only.
	if !restored && c.recent.Seen(key, now) {
		slog.Debug("skipping duplicate notification", "key", key, "source", source)
		return
	}
	if remaining < MinRenderRemaining {
		slog.Debug("skipping nearly-expired notification", "key", key, "remaining", remaining)
		return
	}
	c.recent.Mark(key, now)

	// visible cap: evict the oldest entry, FIFO by entry order
	for c.visibleCountLocked() >= c.maxVisible {
		oldest := c.oldestVisibleLocked()
		if oldest == "" {
			break
		}
		c.dismissLocked(oldest, ReasonEvicted)
	}

	e := &entry{
		n:         n,
		key:       key,
		state:     StateVisible,
		startedAt: now,
		duration:  remaining,
		restored:  restored,
	}
	c.entries[key] = e
	c.order = append(c.order, key)

	c.display.Show(View{
		Key:       key,
		Icon:      notification.MetaFor(n.Type).Icon,
		Title:     n.DisplayTitle(),
		Message:   n.Message,
		Priority:  n.Priority,
		Remaining: remaining,
		Emphasis:  PriorityEmphasis(n.Priority),
		Restored:  restored,
		Source:    source,
		ShownAt:   now,
	})

	if c.hidden {
		e.frozen = remaining
	} else {
		c.armTimerLocked(e, remaining)
	}

	c.saveSnapshotLocked()

	if c.device != nil && (c.hidden || c.touch) {
		note := NewDeviceNote(n, remaining)
		go func() {
			if err := c.device.Notify(note); err != nil {
				slog.Debug("device notification failed", "key", key, "error", err)
			}
		}()
	}
}

// Dismiss moves a visible entry into Dismissing; Gone follows after the
// exit transition.
func (c *Controller) Dismiss(key string, reason DismissReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissLocked(key, reason)
}

func (c *Controller) dismissLocked(key string, reason DismissReason) {
	e, ok := c.entries[key]
	if !ok || e.state != StateVisible {
		return
	}
	e.state = StateDismissing
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	slog.Debug("dismissing notification", "key", key, "reason", reason)
	c.display.Dismiss(key)
	time.AfterFunc(ExitDelay, func() { c.finalize(key) })
}

// finalize completes Dismissing → Gone.
func (c *Controller) finalize(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.state != StateDismissing {
		return
	}
	e.state = StateGone
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.display.Remove(key)
	c.saveSnapshotLocked()
}

// Swipe handles a horizontal touch gesture on a notification. Crossing the
// threshold dismisses; anything less snaps back with no state change.
func (c *Controller) Swipe(key string, dx float64) {
	if dx >= SwipeThreshold {
		c.Dismiss(key, ReasonSwipe)
	}
}

// Hide pauses every running countdown, freezing each entry's remaining time
// computed from wall-clock elapsed, and snapshots.
func (c *Controller) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hidden {
		return
	}
	c.hidden = true
	now := c.now()

	for _, e := range c.entries {
		if e.state != StateVisible || e.timer == nil {
			continue
		}
		e.timerGen++
		e.timer.Stop()
		e.timer = nil
		e.frozen = e.duration - now.Sub(e.startedAt)
		if e.frozen < 0 {
			e.frozen = 0
		}
	}
	c.saveSnapshotLocked()
}

// Show restarts frozen countdowns from their remaining time with a fresh
// start instant. Entries frozen at zero are dismissed.
func (c *Controller) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hidden {
		return
	}
	c.hidden = false
	now := c.now()

	for key, e := range c.entries {
		if e.state != StateVisible || e.timer != nil {
			continue
		}
		if e.frozen <= 0 {
			c.dismissLocked(key, ReasonTimeout)
			continue
		}
		e.startedAt = now
		e.duration = e.frozen
		e.frozen = 0
		c.armTimerLocked(e, e.duration)
	}
}

// Restore consumes the persisted snapshot once and re-delivers entries with
// usable remaining time through the Pending gate, staggered so a reload
// does not animate everything at once.
func (c *Controller) Restore() {
	entries := c.snapshots.Consume()
	if len(entries) == 0 {
		return
	}
	now := c.now()
	restored := 0

	for _, saved := range entries {
		elapsed := now.Sub(time.UnixMilli(saved.StartTime))
		remaining := time.Duration(saved.Duration)*time.Millisecond - elapsed
		if remaining < MinRenderRemaining {
			continue // stale, silently discarded
		}
		saved := saved
		delay := time.Duration(restored) * RestoreStagger
		restored++
		time.AfterFunc(delay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.deliverLocked(saved.Data, SourceRestore, remaining, true)
		})
	}
	slog.Info("restoring notifications", "saved", len(entries), "restorable", restored)
}

// CheckFeed re-queries the server-notifications record for still-active
// entries this controller has not displayed.
func (c *Controller) CheckFeed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.feed.Active(c.now()) {
		c.deliverLocked(n, SourceFeed, n.Remaining(c.now()), false)
	}
}

// HandleEnvelope consumes one stream message: notifications are recorded to
// the feed and delivered; connected and heartbeat frames are ignored here.
func (c *Controller) HandleEnvelope(env *notification.Envelope) {
	if env.Type != notification.EnvelopeNotification || env.Data == nil {
		return
	}
	c.mu.Lock()
	c.feed.Record(*env.Data, c.now())
	c.deliverLocked(*env.Data, SourceStream, env.Data.Remaining(c.now()), false)
	c.mu.Unlock()
}

// SaveSnapshot persists the still-live entries.
func (c *Controller) SaveSnapshot() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saveSnapshotLocked()
}

// Run drives the periodic work: snapshot saves while anything is visible
// and feed checks. It blocks until ctx is done, saving a final snapshot on
// the way out.
func (c *Controller) Run(ctx context.Context) {
	c.Restore()
	c.CheckFeed()

	snapshot := time.NewTicker(SnapshotInterval)
	feed := time.NewTicker(FeedCheckInterval)
	defer snapshot.Stop()
	defer feed.Stop()

	for {
		select {
		case <-snapshot.C:
			c.mu.Lock()
			if len(c.entries) > 0 {
				c.saveSnapshotLocked()
			}
			c.mu.Unlock()
		case <-feed.C:
			c.CheckFeed()
		case <-ctx.Done():
			c.SaveSnapshot()
			c.Close()
			return
		}
	}
}

// Close detaches the broadcast subscription and stops running timers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	for _, e := range c.entries {
		e.timerGen++
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
}

// StateOf reports the state of a key; Gone when unknown.
func (c *Controller) StateOf(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.state
	}
	return StateGone
}

// Remaining reports the live remaining time for a key.
func (c *Controller) Remaining(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.remainingAt(c.now())
	}
	return 0
}

// VisibleCount returns how many entries are currently Visible.
func (c *Controller) VisibleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleCountLocked()
}

func (c *Controller) visibleCountLocked() int {
	count := 0
	for _, e := range c.entries {
		if e.state == StateVisible {
			count++
		}
	}
	return count
}

func (c *Controller) oldestVisibleLocked() string {
	for _, key := range c.order {
		if e, ok := c.entries[key]; ok && e.state == StateVisible {
			return key
		}
	}
	return ""
}

// armTimerLocked schedules the countdown; the generation guard keeps a
// stopped timer's late firing from dismissing a rearmed entry.
func (c *Controller) armTimerLocked(e *entry, d time.Duration) {
	e.timerGen++
	gen := e.timerGen
	key := e.key
	e.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if cur, ok := c.entries[key]; ok && cur.timerGen == gen {
			c.dismissLocked(key, ReasonTimeout)
		}
	})
}

func (c *Controller) saveSnapshotLocked() {
	now := c.now()
	saved := make([]SavedEntry, 0, len(c.entries))
	for _, key := range c.order {
		e, ok := c.entries[key]
		if !ok || e.state != StateVisible {
			continue
		}
		remaining := e.remainingAt(now)
		if remaining <= 0 {
			continue
		}
		saved = append(saved, SavedEntry{
			ID:            e.key,
			Data:          e.n,
			StartTime:     e.startedAt.UnixMilli(),
			Duration:      e.duration.Milliseconds(),
			RemainingTime: remaining.Milliseconds(),
		})
	}
	c.snapshots.Save(saved)
}

// onBroadcast handles the cross-context broadcast key: payloads are whole
// notifications.
func (c *Controller) onBroadcast(payload []byte) {
	var n notification.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		slog.Warn("ignoring malformed broadcast payload", "error", err)
		return
	}
	c.Deliver(n, SourceBroadcast)
}
