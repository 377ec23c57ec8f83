// Package workflow ties trigger events to SKU extraction, folder
// resolution, and the favorites/recents registries, emitting typed UI
// events along the way.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mgodinho/skunav/internal/cache"
	"github.com/mgodinho/skunav/internal/domain"
	"github.com/mgodinho/skunav/internal/history"
	"github.com/mgodinho/skunav/internal/sku"
)

// State is the orchestrator's position in the trigger→resolve→present
// cycle.
type State int

const (
	StateIdle State = iota
	StateScanningClipboard
	StateResolving
	StateAwaitingAuth
	StatePresenting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanningClipboard:
		return "scanning-clipboard"
	case StateResolving:
		return "resolving"
	case StateAwaitingAuth:
		return "awaiting-auth"
	case StatePresenting:
		return "presenting"
	default:
		return "unknown"
	}
}

// skuPlaceholder in a favorite target path is replaced with the current
// SKU's folder location when navigating.
const skuPlaceholder = "{sku}"

// Orchestrator drives the trigger→scan→resolve→present workflow. Remote
// work runs on background goroutines so the caller (the UI control
// thread) never blocks; outcomes are delivered through the event sink.
type Orchestrator struct {
	clipboard domain.Clipboard
	detector  *sku.Detector
	cache     *cache.FolderCache
	history   *history.Service
	auth      domain.Authenticator
	paths     domain.PathResolver
	sink      Sink
	logger    *slog.Logger
	offline   bool

	session *Session

	mu         sync.Mutex
	state      State
	generation uint64
	currentSKU string
}

// New wires an orchestrator. sink may be nil (events are dropped).
func New(
	clipboard domain.Clipboard,
	detector *sku.Detector,
	folderCache *cache.FolderCache,
	hist *history.Service,
	auth domain.Authenticator,
	paths domain.PathResolver,
	sink Sink,
	offline bool,
	logger *slog.Logger,
) *Orchestrator {
	if sink == nil {
		sink = NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		clipboard: clipboard,
		detector:  detector,
		cache:     folderCache,
		history:   hist,
		auth:      auth,
		paths:     paths,
		sink:      sink,
		logger:    logger,
		offline:   offline,
		session:   &Session{},
		state:     StateIdle,
	}
	if auth != nil && auth.IsConnected() {
		o.session.setConnected(true)
	}
	return o
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Session exposes the connection state owned by the orchestrator.
func (o *Orchestrator) Session() *Session { return o.session }

// CurrentSKU returns the SKU driving the most recent cycle, if any.
func (o *Orchestrator) CurrentSKU() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentSKU
}

// Trigger starts a new workflow cycle and returns immediately. A trigger
// arriving while a previous resolution is still pending does not cancel
// the in-flight remote call; the orchestrator simply forgets its waiter
// so only the newest cycle drives what the user sees.
func (o *Orchestrator) Trigger(ctx context.Context) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.mu.Unlock()

	go o.runCycle(ctx, gen)
}

// TriggerFavorite handles a favorite hotkey press (slot 1-8). It bypasses
// extraction and resolves the favorite's path template under the current
// SKU's root folder, emitting the navigation asynchronously. Without a
// SKU context there is no root to resolve under, so every slot warns.
func (o *Orchestrator) TriggerFavorite(slot int) {
	fav, ok := o.history.FavoriteBySlot(slot)
	if !ok {
		o.sink.Emit(Event{
			Kind:    EventWarning,
			Message: fmt.Sprintf("no favorite bound to slot %d", slot),
		})
		return
	}

	current := o.CurrentSKU()
	if current == "" {
		o.sink.Emit(Event{
			Kind:    EventWarning,
			Message: "no SKU context yet; trigger a clipboard scan first",
		})
		return
	}
	target := strings.ReplaceAll(fav.TargetPath, skuPlaceholder, current)

	go o.navigateFavorite(fav, current, target)
}

// navigateFavorite resolves the SKU root through the cache, then walks the
// relative path to a concrete folder.
func (o *Orchestrator) navigateFavorite(fav domain.Favorite, skuValue, relPath string) {
	ctx := context.Background()

	root, err := o.cache.Resolve(ctx, skuValue, cache.ResolveOptions{})
	if err != nil {
		kind := EventError
		if errors.Is(err, domain.ErrFolderNotFound) {
			kind = EventWarning
		}
		o.sink.Emit(Event{
			Kind:    kind,
			Message: fmt.Sprintf("failed to resolve %s", skuValue),
			Err:     err,
		})
		return
	}

	rec := root
	if relPath != "" {
		if o.paths == nil {
			o.sink.Emit(Event{
				Kind:    EventWarning,
				Message: fmt.Sprintf("no path resolver configured for %q", relPath),
			})
			return
		}
		rec, err = o.paths.ResolveChild(ctx, root, relPath)
		if err != nil {
			o.sink.Emit(Event{
				Kind:    EventWarning,
				Message: fmt.Sprintf("could not resolve %q under %s", relPath, skuValue),
				Err:     err,
			})
			return
		}
	}

	o.logger.Info("favorite navigation",
		"slot", fav.HotkeySlot, "label", fav.Label, "folderId", rec.FolderID)
	o.sink.Emit(Event{
		Kind:    EventNavigate,
		Message: fav.Label,
		Target:  rec.URL(),
		Folder:  rec,
	})
}

// LoadExtras records additional detected SKUs into recents without
// resolving their folders. This is the accept path for EventExtrasFound.
func (o *Orchestrator) LoadExtras(skus []string) {
	var warned bool
	// Record in reverse so the first detected SKU ends up frontmost.
	for i := len(skus) - 1; i >= 0; i-- {
		if err := o.history.RecordRecent(skus[i]); err != nil {
			o.warnPersistence(err)
			warned = true
		}
	}
	if len(skus) > 0 && !warned {
		o.sink.Emit(Event{
			Kind:    EventSuccess,
			Message: fmt.Sprintf("loaded %d SKUs into recents", len(skus)),
		})
	}
}

// runCycle executes one trigger cycle under generation gen. Stale
// generations stop emitting as soon as they notice a newer trigger.
func (o *Orchestrator) runCycle(ctx context.Context, gen uint64) {
	defer o.setState(gen, StateIdle)

	if !o.setState(gen, StateScanningClipboard) {
		return
	}

	text, err := o.clipboard.Read()
	if err != nil {
		o.emit(gen, Event{Kind: EventError, Message: "failed to read clipboard", Err: err})
		return
	}

	matches := o.detector.Scan(text)
	if len(matches) == 0 {
		o.logger.Warn("no SKU found in clipboard")
		o.emit(gen, Event{Kind: EventWarning, Message: "no SKU found in clipboard", Err: domain.ErrNoSKU})
		return
	}

	primary := matches[0]
	o.setCurrentSKU(gen, primary.Value)
	o.logger.Info("SKU detected", "sku", primary.Value, "matches", len(matches))

	if !o.setState(gen, StateResolving) {
		return
	}

	if !o.offline && !o.session.Connected() {
		if !o.awaitAuth(ctx, gen) {
			return
		}
		if !o.setState(gen, StateResolving) {
			return
		}
	}

	rec, err := o.resolve(ctx, gen, primary.Value)
	if err != nil || rec == nil {
		return
	}

	if !o.setState(gen, StatePresenting) {
		return
	}
	o.emit(gen, Event{
		Kind:    EventNavigate,
		Message: primary.Value,
		Target:  rec.URL(),
		Folder:  rec,
	})
	if err := o.history.RecordRecent(primary.Value); err != nil {
		o.warnPersistence(err)
	}

	if extras := extraValues(matches, primary.Value); len(extras) > 0 {
		o.emit(gen, Event{
			Kind:    EventExtrasFound,
			Message: fmt.Sprintf("%d more SKUs detected", len(extras)),
			SKUs:    extras,
		})
	}
}

// resolve runs the cache lookup, detouring through AwaitingAuth once when
// the backend demands credentials; the resolution resumes automatically
// after a successful sign-in.
func (o *Orchestrator) resolve(ctx context.Context, gen uint64, value string) (*domain.FolderRecord, error) {
	for attempt := 0; ; attempt++ {
		rec, err := o.cache.Resolve(ctx, value, cache.ResolveOptions{})
		switch {
		case err == nil:
			return rec, nil

		case errors.Is(err, domain.ErrAuthRequired) && attempt == 0:
			o.session.setConnected(false)
			if !o.awaitAuth(ctx, gen) {
				return nil, err
			}
			if !o.setState(gen, StateResolving) {
				return nil, err
			}
			// Loop: retry the resolution with fresh credentials.

		case errors.Is(err, domain.ErrFolderNotFound):
			o.emit(gen, Event{
				Kind:    EventWarning,
				Message: fmt.Sprintf("no remote folder found for %s", value),
				Err:     err,
			})
			return nil, err

		case errors.Is(err, domain.ErrCancelled):
			o.emit(gen, Event{Kind: EventWarning, Message: "resolution cancelled", Err: err})
			return nil, err

		default:
			o.logger.Error("resolution failed", "sku", value, "error", err)
			o.emit(gen, Event{
				Kind:    EventError,
				Message: fmt.Sprintf("failed to resolve %s", value),
				Err:     err,
			})
			return nil, err
		}
	}
}

// awaitAuth runs the interactive sign-in. Returns true when the session
// is connected afterwards.
func (o *Orchestrator) awaitAuth(ctx context.Context, gen uint64) bool {
	if o.auth == nil {
		o.emit(gen, Event{
			Kind:    EventError,
			Message: "no authenticator configured",
			Err:     domain.ErrAuthRequired,
		})
		return false
	}
	if !o.setState(gen, StateAwaitingAuth) {
		return false
	}
	o.emit(gen, Event{Kind: EventInfo, Message: "not connected, connecting..."})
	o.session.setAuthPending(true)
	err := o.auth.Connect(ctx)
	o.session.setAuthPending(false)

	if err != nil {
		o.logger.Error("sign-in failed", "error", err)
		o.emit(gen, Event{Kind: EventError, Message: "sign-in failed or declined", Err: err})
		return false
	}
	o.session.setConnected(true)
	o.logger.Info("connected")
	return true
}

// extraValues returns the distinct SKU values beyond the primary one, in
// first-occurrence order.
func extraValues(matches []domain.SkuMatch, primary string) []string {
	seen := map[string]bool{primary: true}
	var extras []string
	for _, m := range matches {
		if !seen[m.Value] {
			seen[m.Value] = true
			extras = append(extras, m.Value)
		}
	}
	return extras
}

func (o *Orchestrator) warnPersistence(err error) {
	var warn *domain.PersistenceWarning
	if errors.As(err, &warn) {
		o.sink.Emit(Event{Kind: EventWarning, Message: warn.Error(), Err: warn})
		return
	}
	o.sink.Emit(Event{Kind: EventWarning, Message: err.Error(), Err: err})
}

// setState transitions to s if gen is still the active generation.
func (o *Orchestrator) setState(gen uint64, s State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return false
	}
	o.state = s
	return true
}

func (o *Orchestrator) setCurrentSKU(gen uint64, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen == o.generation {
		o.currentSKU = value
	}
}

// emit forwards ev to the sink unless a newer trigger superseded gen.
func (o *Orchestrator) emit(gen uint64, ev Event) {
	o.mu.Lock()
	stale := gen != o.generation
	o.mu.Unlock()
	if stale {
		return
	}
	o.sink.Emit(ev)
}
