package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"netcanvas/internal/canvas"
	"netcanvas/internal/domain"
	"netcanvas/internal/palette"
	"netcanvas/internal/raster"
	"netcanvas/internal/repository"
)

// ErrSessionNotFound is returned for unknown session IDs
var ErrSessionNotFound = errors.New("session not found")

// PointerAction selects the canvas handler for a pointer event
type PointerAction string

const (
	PointerDown        PointerAction = "down"
	PointerMove        PointerAction = "move"
	PointerUp          PointerAction = "up"
	PointerDoubleClick PointerAction = "double_click"
)

// SessionConfig holds what every new canvas is created with
type SessionConfig struct {
	Width             int
	Height            int
	Glyphs            []palette.GlyphEntry
	Colors            []palette.ColorEntry
	NativeContextMenu bool
	Fetcher           canvas.Fetcher
	Snapshots         canvas.SnapshotRenderer
	SurfaceOptions    []raster.Option
	// AssetWait bounds how long a frame request waits for in-flight fetches
	AssetWait time.Duration
}

// Session is one operator view of a map: a canvas, its raster surface and
// the commands emitted by the event being handled
type Session struct {
	ID        string
	MapID     string
	CreatedAt time.Time

	mu      sync.Mutex
	canvas  *canvas.Canvas
	surface *raster.Surface
	pending []domain.Command
}

// SessionInfo is the JSON view of a session
type SessionInfo struct {
	ID            string    `json:"id"`
	MapID         string    `json:"map_id"`
	State         string    `json:"state"`
	Zoom          float64   `json:"zoom"`
	ReadOnly      bool      `json:"read_only"`
	SelectedNodes []string  `json:"selected_nodes"`
	SelectedItems []string  `json:"selected_items"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionManager owns one canvas per session and applies the commands they emit
type SessionManager struct {
	maps     *MapService
	eventBus *EventBus
	cfg      SessionConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager and subscribes it to scene changes
func NewSessionManager(maps *MapService, eventBus *EventBus, cfg SessionConfig) *SessionManager {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	m := &SessionManager{
		maps:     maps,
		eventBus: eventBus,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
	maps.OnSceneChanged(m.ReloadMap)
	return m
}

// Open creates a session showing a map
func (m *SessionManager) Open(ctx context.Context, mapID string) (*SessionInfo, error) {
	info, err := m.maps.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	scene, err := m.maps.GetScene(ctx, mapID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		MapID:     mapID,
		CreatedAt: time.Now(),
		surface:   raster.New(m.cfg.Width, m.cfg.Height, m.cfg.SurfaceOptions...),
	}

	opts := []canvas.Option{
		canvas.WithEmitter(canvas.EmitterFunc(func(cmd domain.Command) {
			// Runs under s.mu; applied once the handler returns
			s.pending = append(s.pending, cmd)
		})),
		canvas.WithNativeContextMenu(m.cfg.NativeContextMenu),
	}
	if m.cfg.Fetcher != nil {
		opts = append(opts, canvas.WithFetcher(m.cfg.Fetcher))
	}
	if m.cfg.Snapshots != nil {
		opts = append(opts, canvas.WithSnapshotRenderer(m.cfg.Snapshots))
	}

	c := canvas.New(float64(m.cfg.Width), float64(m.cfg.Height), opts...)
	if len(m.cfg.Glyphs) > 0 {
		c.SetGlyphTable(m.cfg.Glyphs)
	}
	if len(m.cfg.Colors) > 0 {
		c.SetColorTable(m.cfg.Colors)
	}
	c.Load(scene, info.AssetBaseURL, info.ReadOnly)
	s.canvas = c

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("Opened session %s on map %s", s.ID, mapID)
	m.eventBus.Publish(Event{Type: EventSessionOpened, MapID: mapID, Payload: map[string]string{"session_id": s.ID}})

	return m.Info(s.ID)
}

// Close ends a session and cancels its asset fetches
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	s.mu.Lock()
	s.canvas.Close()
	s.mu.Unlock()

	log.Printf("Closed session %s", id)
	m.eventBus.Publish(Event{Type: EventSessionClosed, MapID: s.MapID, Payload: map[string]string{"session_id": id}})

	return nil
}

// CloseAll ends every session
func (m *SessionManager) CloseAll() {
	for _, info := range m.List() {
		m.Close(info.ID)
	}
}

// List returns every open session ordered by creation time
func (m *SessionManager) List() []SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		infos = append(infos, s.info())
		s.mu.Unlock()
	}
	return infos
}

// Info returns the current state of a session
func (m *SessionManager) Info(id string) (*SessionInfo, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	info := s.info()
	return &info, nil
}

func (s *Session) info() SessionInfo {
	return SessionInfo{
		ID:            s.ID,
		MapID:         s.MapID,
		State:         s.canvas.State().String(),
		Zoom:          s.canvas.Zoom(),
		ReadOnly:      s.canvas.ReadOnly(),
		SelectedNodes: s.canvas.SelectedNodes(),
		SelectedItems: s.canvas.SelectedItems(),
		CreatedAt:     s.CreatedAt,
	}
}

func (m *SessionManager) get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Pointer delivers a pointer event and returns the commands it produced
func (m *SessionManager) Pointer(ctx context.Context, id string, action PointerAction, ev canvas.Pointer) ([]domain.Command, error) {
	return m.dispatch(ctx, id, func(c *canvas.Canvas) error {
		var handle func(canvas.Pointer)
		switch action {
		case PointerDown:
			handle = c.PointerDown
		case PointerMove:
			handle = c.PointerMove
		case PointerUp:
			handle = c.PointerUp
		case PointerDoubleClick:
			handle = c.DoubleClick
		default:
			return fmt.Errorf("unknown pointer action %q", action)
		}
		handle(ev)
		return nil
	})
}

// Key delivers a key press and returns the commands it produced
func (m *SessionManager) Key(ctx context.Context, id string, key canvas.Key) ([]domain.Command, error) {
	return m.dispatch(ctx, id, func(c *canvas.Canvas) error {
		c.KeyDown(key)
		return nil
	})
}

// SelectNode forces a single-node selection
func (m *SessionManager) SelectNode(ctx context.Context, id, nodeID string) error {
	_, err := m.dispatch(ctx, id, func(c *canvas.Canvas) error {
		c.SelectNode(nodeID)
		return nil
	})
	return err
}

// dispatch runs fn under the session lock, then applies the commands it
// emitted. The lock is released first because applying a command reloads
// every session of the map, this one included.
func (m *SessionManager) dispatch(ctx context.Context, id string, fn func(c *canvas.Canvas) error) ([]domain.Command, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	err = fn(s.canvas)
	cmds := s.pending
	s.pending = nil
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	for _, cmd := range cmds {
		if err := m.maps.ApplyCommand(ctx, s.MapID, cmd); err != nil {
			return cmds, fmt.Errorf("session %s: %w", id, err)
		}
	}

	return cmds, nil
}

// Frame writes the session's current picture as PNG. The canvas repaints
// only when something changed since the previous frame.
func (m *SessionManager) Frame(ctx context.Context, id string, w io.Writer) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m.cfg.AssetWait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, m.cfg.AssetWait)
		if err := s.canvas.WaitAssets(waitCtx); err != nil {
			log.Printf("Session %s: assets still loading: %v", id, err)
		}
		cancel()
	}

	s.canvas.Tick(s.surface)

	return s.surface.EncodePNG(w)
}

// ReloadMap pushes the stored scene of a map into every session showing it.
// Sessions of a map that no longer exists are closed.
func (m *SessionManager) ReloadMap(ctx context.Context, mapID string) {
	m.mu.RLock()
	var targets []*Session
	for _, s := range m.sessions {
		if s.MapID == mapID {
			targets = append(targets, s)
		}
	}
	m.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	info, err := m.maps.GetMap(ctx, mapID)
	if errors.Is(err, repository.ErrNotFound) {
		for _, s := range targets {
			m.Close(s.ID)
		}
		return
	}
	if err != nil {
		log.Printf("Failed to reload map %s: %v", mapID, err)
		return
	}
	scene, err := m.maps.GetScene(ctx, mapID)
	if err != nil {
		log.Printf("Failed to reload map %s: %v", mapID, err)
		return
	}

	for _, s := range targets {
		s.mu.Lock()
		s.canvas.Load(scene, info.AssetBaseURL, info.ReadOnly)
		s.mu.Unlock()
	}
}
