package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"netcanvas/internal/codec"
	"netcanvas/internal/domain"
	"netcanvas/internal/repository"
)

// ErrReadOnly is returned when a mutating command targets a read-only map
var ErrReadOnly = errors.New("map is read-only")

// SceneListener is notified after a map's stored scene changes
type SceneListener func(ctx context.Context, mapID string)

// MapService provides business logic for maps and canvas commands
type MapService struct {
	repo     repository.Repository
	eventBus *EventBus

	mu        sync.RWMutex
	listeners []SceneListener
}

// NewMapService creates a new map service
func NewMapService(repo repository.Repository, eventBus *EventBus) *MapService {
	return &MapService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// OnSceneChanged registers a listener called synchronously after every scene mutation
func (s *MapService) OnSceneChanged(fn SceneListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *MapService) sceneChanged(ctx context.Context, mapID string) {
	s.mu.RLock()
	listeners := make([]SceneListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, mapID)
	}

	s.eventBus.Publish(Event{Type: EventSceneChanged, MapID: mapID})
}

// ListMaps returns metadata for all maps
func (s *MapService) ListMaps(ctx context.Context) ([]domain.MapInfo, error) {
	return s.repo.ListMaps(ctx)
}

// GetMap returns metadata for one map
func (s *MapService) GetMap(ctx context.Context, id string) (*domain.MapInfo, error) {
	return s.repo.GetMap(ctx, id)
}

// GetScene returns the stored scene of a map
func (s *MapService) GetScene(ctx context.Context, mapID string) (*domain.Scene, error) {
	return s.repo.GetScene(ctx, mapID)
}

// SaveMap creates or updates a map and replaces its scene
func (s *MapService) SaveMap(ctx context.Context, info *domain.MapInfo, scene *domain.Scene) error {
	if err := s.validateMap(info, scene); err != nil {
		return err
	}

	eventType := EventMapUpdated
	existing, err := s.repo.GetMap(ctx, info.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		eventType = EventMapCreated
	case err != nil:
		return err
	default:
		info.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.UpsertMap(ctx, info); err != nil {
		return err
	}
	if err := s.repo.ReplaceScene(ctx, info.ID, scene); err != nil {
		return err
	}

	s.eventBus.Publish(Event{Type: eventType, MapID: info.ID, Payload: info})
	s.sceneChanged(ctx, info.ID)

	return nil
}

// DeleteMap removes a map and its scene
func (s *MapService) DeleteMap(ctx context.Context, id string) error {
	if err := s.repo.DeleteMap(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{Type: EventMapDeleted, MapID: id})
	s.sceneChanged(ctx, id)

	return nil
}

// Import parses a document and stores it as a map. A non-empty mapID
// overrides the ID carried by the document.
func (s *MapService) Import(ctx context.Context, mapID, format string, r io.Reader) (*domain.MapInfo, error) {
	return s.importDocument(ctx, mapID, format, r, false)
}

// ImportFile imports a scene file. readOnly forces the map read-only
// regardless of what the document says.
func (s *MapService) ImportFile(ctx context.Context, path, mapID, format string, readOnly bool) (*domain.MapInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer f.Close()

	return s.importDocument(ctx, mapID, format, f, readOnly)
}

func (s *MapService) importDocument(ctx context.Context, mapID, format string, r io.Reader, readOnly bool) (*domain.MapInfo, error) {
	c, ok := codec.ForFormat(format)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	doc, err := c.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.Format(), err)
	}

	if mapID != "" {
		doc.ID = mapID
	}
	if doc.Name == "" {
		doc.Name = doc.ID
	}

	info := domain.NewMapInfo(doc.ID, doc.Name)
	info.AssetBaseURL = doc.AssetBaseURL
	info.ReadOnly = doc.ReadOnly || readOnly

	if err := s.SaveMap(ctx, info, doc.Scene); err != nil {
		return nil, err
	}

	log.Printf("Imported map %s (%s): %d nodes, %d links, %d items",
		info.ID, c.Format(), len(doc.Scene.Nodes), len(doc.Scene.Links), len(doc.Scene.Items))

	return info, nil
}

// Export writes a map in the requested format
func (s *MapService) Export(ctx context.Context, mapID, format string, w io.Writer) error {
	c, ok := codec.ForFormat(format)
	if !ok {
		return fmt.Errorf("unsupported format %q", format)
	}

	info, err := s.repo.GetMap(ctx, mapID)
	if err != nil {
		return err
	}
	scene, err := s.repo.GetScene(ctx, mapID)
	if err != nil {
		return err
	}

	return c.Export(&codec.Document{
		ID:           info.ID,
		Name:         info.Name,
		AssetBaseURL: info.AssetBaseURL,
		ReadOnly:     info.ReadOnly,
		Scene:        scene,
	}, w)
}

// ApplyCommand performs the storage effect of a canvas command and publishes it.
// Commands without a storage effect are only published.
func (s *MapService) ApplyCommand(ctx context.Context, mapID string, cmd domain.Command) error {
	info, err := s.repo.GetMap(ctx, mapID)
	if err != nil {
		return err
	}
	if info.ReadOnly && mutates(cmd) {
		return fmt.Errorf("%s on map %s: %w", cmd.Type(), mapID, ErrReadOnly)
	}

	changed := false
	switch c := cmd.(type) {
	case domain.UpdateNodesPos:
		err = s.repo.SaveNodePositions(ctx, mapID, c.Positions)
		changed = true
	case domain.UpdateItemsPos:
		err = s.repo.SaveItemPositions(ctx, mapID, c.Positions)
		changed = true
	case domain.DeleteNodes:
		err = s.repo.DeleteNodes(ctx, mapID, c.NodeIDs)
		changed = true
	case domain.EditLine:
		var created bool
		created, err = s.repo.ToggleLink(ctx, mapID, c.NodeID1, c.NodeID2)
		if err == nil {
			log.Printf("Map %s: link %s-%s %s", mapID, c.NodeID1, c.NodeID2, linkVerb(created))
		}
		changed = true
	case domain.Refresh:
		changed = true
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", cmd.Type(), err)
	}

	s.publishCommand(mapID, cmd)

	if changed {
		s.sceneChanged(ctx, mapID)
	}

	return nil
}

func (s *MapService) publishCommand(mapID string, cmd domain.Command) {
	data, err := domain.EncodeCommand(cmd)
	if err != nil {
		log.Printf("Failed to encode command %s: %v", cmd.Type(), err)
		return
	}
	s.eventBus.Publish(Event{
		Type:    EventCommand,
		MapID:   mapID,
		Payload: json.RawMessage(data),
	})
}

// ApplyStatus stores node states keyed by address and returns the maps that changed
func (s *MapService) ApplyStatus(ctx context.Context, states map[string]string) ([]string, error) {
	if len(states) == 0 {
		return nil, nil
	}

	mapIDs, err := s.repo.UpdateNodeStates(ctx, states)
	if err != nil {
		return nil, err
	}

	for _, id := range mapIDs {
		s.eventBus.Publish(Event{Type: EventStatusChanged, MapID: id})
		s.sceneChanged(ctx, id)
	}

	return mapIDs, nil
}

// ListAddressedNodes returns every node the status poller can probe
func (s *MapService) ListAddressedNodes(ctx context.Context) ([]domain.AddressedNode, error) {
	return s.repo.ListAddressedNodes(ctx)
}

// Validation helpers

func (s *MapService) validateMap(info *domain.MapInfo, scene *domain.Scene) error {
	if info == nil {
		return fmt.Errorf("map info required")
	}
	if err := domain.ValidateMapID(info.ID); err != nil {
		return err
	}
	if info.Name == "" {
		return fmt.Errorf("map name required")
	}
	if scene == nil {
		return fmt.Errorf("scene required")
	}

	seen := make(map[string]bool, len(scene.Nodes))
	for _, n := range scene.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node ID required")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node ID %s", n.ID)
		}
		seen[n.ID] = true
	}
	for _, l := range scene.Links {
		if l.NodeID1 == l.NodeID2 {
			return fmt.Errorf("link %s connects node %s to itself", l.ID, l.NodeID1)
		}
	}
	return nil
}

func mutates(cmd domain.Command) bool {
	switch cmd.(type) {
	case domain.UpdateNodesPos, domain.UpdateItemsPos, domain.DeleteNodes, domain.EditLine:
		return true
	}
	return false
}

func linkVerb(created bool) string {
	if created {
		return "created"
	}
	return "removed"
}
