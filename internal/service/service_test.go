package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"netcanvas/internal/domain"
	"netcanvas/internal/repository"
	"netcanvas/internal/repository/sqlite"
)

func newTestMapService(t *testing.T) (*MapService, *EventBus) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	bus := NewEventBus()
	return NewMapService(repo, bus), bus
}

func subscribe(bus *EventBus) chan Event {
	ch := make(chan Event, 64)
	bus.Subscribe(ch)
	return ch
}

func drainEvents(ch chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func eventsOfType(events []Event, typ EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func testScene() *domain.Scene {
	scene := domain.NewScene()
	a := domain.NewNode("a", "core", 100, 100, "router")
	a.Address = "10.0.0.1"
	b := domain.NewNode("b", "edge", 200, 100, "switch")
	b.Address = "10.0.0.2"
	c := domain.NewNode("c", "db", 300, 300, "database")
	scene.AddNode(*a)
	scene.AddNode(*b)
	scene.AddNode(*c)
	scene.AddLink(*domain.NewLink("a", "b"))
	return scene
}

func seedMap(t *testing.T, svc *MapService, id string, readOnly bool) {
	t.Helper()
	info := domain.NewMapInfo(id, "Map "+id)
	info.ReadOnly = readOnly
	if err := svc.SaveMap(context.Background(), info, testScene()); err != nil {
		t.Fatalf("failed to seed map %s: %v", id, err)
	}
}

func TestMapServiceValidateMap(t *testing.T) {
	svc := &MapService{}

	t.Run("valid map passes validation", func(t *testing.T) {
		if err := svc.validateMap(domain.NewMapInfo("lab", "Lab"), testScene()); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("bad ID fails validation", func(t *testing.T) {
		if err := svc.validateMap(domain.NewMapInfo("../etc", "Lab"), testScene()); err == nil {
			t.Error("expected error for bad map ID")
		}
	})

	t.Run("empty name fails validation", func(t *testing.T) {
		if err := svc.validateMap(domain.NewMapInfo("lab", ""), testScene()); err == nil {
			t.Error("expected error for empty name")
		}
	})

	t.Run("nil scene fails validation", func(t *testing.T) {
		if err := svc.validateMap(domain.NewMapInfo("lab", "Lab"), nil); err == nil {
			t.Error("expected error for nil scene")
		}
	})

	t.Run("duplicate node fails validation", func(t *testing.T) {
		scene := testScene()
		scene.AddNode(scene.Nodes[0])
		if err := svc.validateMap(domain.NewMapInfo("lab", "Lab"), scene); err == nil {
			t.Error("expected error for duplicate node")
		}
	})

	t.Run("self-loop fails validation", func(t *testing.T) {
		scene := testScene()
		scene.AddLink(*domain.NewLink("c", "c"))
		if err := svc.validateMap(domain.NewMapInfo("lab", "Lab"), scene); err == nil {
			t.Error("expected error for self-loop")
		}
	})
}

func TestSaveMap(t *testing.T) {
	svc, bus := newTestMapService(t)
	events := subscribe(bus)
	ctx := context.Background()

	var notified []string
	svc.OnSceneChanged(func(ctx context.Context, mapID string) {
		notified = append(notified, mapID)
	})

	seedMap(t, svc, "lab", false)
	first, err := svc.GetMap(ctx, "lab")
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}

	seedMap(t, svc, "lab", false)
	second, err := svc.GetMap(ctx, "lab")
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("expected created_at to survive an update, got %v then %v", first.CreatedAt, second.CreatedAt)
	}

	got := drainEvents(events)
	if n := len(eventsOfType(got, EventMapCreated)); n != 1 {
		t.Errorf("expected 1 map_created event, got %d", n)
	}
	if n := len(eventsOfType(got, EventMapUpdated)); n != 1 {
		t.Errorf("expected 1 map_updated event, got %d", n)
	}
	if len(notified) != 2 || notified[0] != "lab" {
		t.Errorf("expected listener called twice for lab, got %v", notified)
	}
}

func TestImportExport(t *testing.T) {
	svc, _ := newTestMapService(t)
	ctx := context.Background()

	doc := `
id: office
name: Office
background: floor.png
nodes:
  - id: gw
    name: Gateway
    x: 100
    y: 80
    icon: router
    state: up
    address: 192.168.1.1
  - id: nas
    name: NAS
    x: 300
    y: 80
    icon: database
links:
  - node_id1: gw
    node_id2: nas
`

	t.Run("import uses document ID", func(t *testing.T) {
		info, err := svc.Import(ctx, "", "yaml", strings.NewReader(doc))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if info.ID != "office" || info.Name != "Office" {
			t.Errorf("expected office/Office, got %s/%s", info.ID, info.Name)
		}

		scene, err := svc.GetScene(ctx, "office")
		if err != nil {
			t.Fatalf("GetScene failed: %v", err)
		}
		if len(scene.Nodes) != 2 || len(scene.Links) != 1 {
			t.Errorf("expected 2 nodes and 1 link, got %d and %d", len(scene.Nodes), len(scene.Links))
		}
		if scene.Background != "floor.png" {
			t.Errorf("expected background floor.png, got %q", scene.Background)
		}
	})

	t.Run("import with explicit ID", func(t *testing.T) {
		info, err := svc.Import(ctx, "office-copy", "yaml", strings.NewReader(doc))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if info.ID != "office-copy" {
			t.Errorf("expected office-copy, got %s", info.ID)
		}
	})

	t.Run("export round trips", func(t *testing.T) {
		var buf bytes.Buffer
		if err := svc.Export(ctx, "office", "json", &buf); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		info, err := svc.Import(ctx, "office-json", "json", &buf)
		if err != nil {
			t.Fatalf("re-import failed: %v", err)
		}
		scene, _ := svc.GetScene(ctx, info.ID)
		if len(scene.Nodes) != 2 || scene.Nodes[0].Address != "192.168.1.1" {
			t.Errorf("expected round-tripped nodes, got %+v", scene.Nodes)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		if _, err := svc.Import(ctx, "", "xml", strings.NewReader(doc)); err == nil {
			t.Error("expected error for xml import")
		}
		if err := svc.Export(ctx, "office", "xml", &bytes.Buffer{}); err == nil {
			t.Error("expected error for xml export")
		}
	})

	t.Run("document without ID", func(t *testing.T) {
		if _, err := svc.Import(ctx, "", "yaml", strings.NewReader("nodes: []\n")); err == nil {
			t.Error("expected error for document without ID")
		}
	})

	t.Run("export unknown map", func(t *testing.T) {
		err := svc.Export(ctx, "nope", "yaml", &bytes.Buffer{})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestApplyCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("node positions are stored", func(t *testing.T) {
		svc, _ := newTestMapService(t)
		seedMap(t, svc, "lab", false)

		cmd := domain.UpdateNodesPos{Positions: []domain.NodePosition{{NodeID: "a", X: 150, Y: 120}}}
		if err := svc.ApplyCommand(ctx, "lab", cmd); err != nil {
			t.Fatalf("ApplyCommand failed: %v", err)
		}

		scene, _ := svc.GetScene(ctx, "lab")
		if scene.Nodes[0].X != 150 || scene.Nodes[0].Y != 120 {
			t.Errorf("expected a at (150,120), got (%v,%v)", scene.Nodes[0].X, scene.Nodes[0].Y)
		}
	})

	t.Run("delete cascades links", func(t *testing.T) {
		svc, _ := newTestMapService(t)
		seedMap(t, svc, "lab", false)

		if err := svc.ApplyCommand(ctx, "lab", domain.DeleteNodes{NodeIDs: []string{"a"}}); err != nil {
			t.Fatalf("ApplyCommand failed: %v", err)
		}

		scene, _ := svc.GetScene(ctx, "lab")
		if len(scene.Nodes) != 2 {
			t.Errorf("expected 2 nodes, got %d", len(scene.Nodes))
		}
		if len(scene.Links) != 0 {
			t.Errorf("expected link to a removed, got %d links", len(scene.Links))
		}
	})

	t.Run("edit line toggles", func(t *testing.T) {
		svc, _ := newTestMapService(t)
		seedMap(t, svc, "lab", false)

		// a-b exists, so the first toggle removes it
		if err := svc.ApplyCommand(ctx, "lab", domain.EditLine{NodeID1: "b", NodeID2: "a"}); err != nil {
			t.Fatalf("ApplyCommand failed: %v", err)
		}
		scene, _ := svc.GetScene(ctx, "lab")
		if len(scene.Links) != 0 {
			t.Errorf("expected link removed, got %d links", len(scene.Links))
		}

		if err := svc.ApplyCommand(ctx, "lab", domain.EditLine{NodeID1: "b", NodeID2: "c"}); err != nil {
			t.Fatalf("ApplyCommand failed: %v", err)
		}
		scene, _ = svc.GetScene(ctx, "lab")
		if len(scene.Links) != 1 || !scene.Links[0].Connects("b", "c") {
			t.Errorf("expected link b-c, got %+v", scene.Links)
		}
	})

	t.Run("read-only map rejects mutations", func(t *testing.T) {
		svc, _ := newTestMapService(t)
		seedMap(t, svc, "ro", true)

		err := svc.ApplyCommand(ctx, "ro", domain.DeleteNodes{NodeIDs: []string{"a"}})
		if !errors.Is(err, ErrReadOnly) {
			t.Errorf("expected ErrReadOnly, got %v", err)
		}

		if err := svc.ApplyCommand(ctx, "ro", domain.NodeDoubleClicked{NodeID: "a"}); err != nil {
			t.Errorf("expected double-click allowed on read-only map, got %v", err)
		}
	})

	t.Run("notification commands are published only", func(t *testing.T) {
		svc, bus := newTestMapService(t)
		seedMap(t, svc, "lab", false)
		events := subscribe(bus)

		reloads := 0
		svc.OnSceneChanged(func(ctx context.Context, mapID string) { reloads++ })

		if err := svc.ApplyCommand(ctx, "lab", domain.ContextMenu{NodeID: "a", ScreenX: 5, ScreenY: 6}); err != nil {
			t.Fatalf("ApplyCommand failed: %v", err)
		}
		if reloads != 0 {
			t.Errorf("expected no reload for ContextMenu, got %d", reloads)
		}

		got := eventsOfType(drainEvents(events), EventCommand)
		if len(got) != 1 || got[0].MapID != "lab" {
			t.Fatalf("expected 1 command event for lab, got %+v", got)
		}
	})

	t.Run("refresh reloads", func(t *testing.T) {
		svc, _ := newTestMapService(t)
		seedMap(t, svc, "lab", false)

		reloads := 0
		svc.OnSceneChanged(func(ctx context.Context, mapID string) { reloads++ })

		if err := svc.ApplyCommand(ctx, "lab", domain.Refresh{}); err != nil {
			t.Fatalf("ApplyCommand failed: %v", err)
		}
		if reloads != 1 {
			t.Errorf("expected 1 reload, got %d", reloads)
		}
	})

	t.Run("unknown map", func(t *testing.T) {
		svc, _ := newTestMapService(t)
		err := svc.ApplyCommand(ctx, "nope", domain.Refresh{})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestApplyStatus(t *testing.T) {
	svc, bus := newTestMapService(t)
	ctx := context.Background()
	seedMap(t, svc, "lab", false)
	seedMap(t, svc, "dc", false)
	events := subscribe(bus)

	mapIDs, err := svc.ApplyStatus(ctx, map[string]string{"10.0.0.1": domain.StateDown})
	if err != nil {
		t.Fatalf("ApplyStatus failed: %v", err)
	}
	if len(mapIDs) != 2 || mapIDs[0] != "dc" || mapIDs[1] != "lab" {
		t.Errorf("expected [dc lab], got %v", mapIDs)
	}

	got := eventsOfType(drainEvents(events), EventStatusChanged)
	if len(got) != 2 {
		t.Errorf("expected 2 status events, got %d", len(got))
	}

	// Same state again changes nothing
	mapIDs, err = svc.ApplyStatus(ctx, map[string]string{"10.0.0.1": domain.StateDown})
	if err != nil {
		t.Fatalf("ApplyStatus failed: %v", err)
	}
	if len(mapIDs) != 0 {
		t.Errorf("expected no changed maps, got %v", mapIDs)
	}
}

func TestDeleteMap(t *testing.T) {
	svc, _ := newTestMapService(t)
	ctx := context.Background()
	seedMap(t, svc, "lab", false)

	if err := svc.DeleteMap(ctx, "lab"); err != nil {
		t.Fatalf("DeleteMap failed: %v", err)
	}
	if _, err := svc.GetMap(ctx, "lab"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteMap(ctx, "lab"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	// slow has no buffer and no reader; Publish must not block on it
	bus.Publish(Event{Type: EventMapCreated, MapID: "lab"})

	select {
	case e := <-fast:
		if e.MapID != "lab" {
			t.Errorf("expected lab, got %s", e.MapID)
		}
	default:
		t.Fatal("expected event on fast subscriber")
	}

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventMapDeleted})
	select {
	case e := <-fast:
		t.Errorf("expected no event after unsubscribe, got %+v", e)
	default:
	}
}

func TestImportFile(t *testing.T) {
	svc, _ := newTestMapService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "lab.json")
	doc := `{"id": "ignored", "name": "Lab", "nodes": [{"id": "a", "name": "a", "x": 1, "y": 2}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write scene file: %v", err)
	}

	info, err := svc.ImportFile(ctx, path, "lab", "json", true)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if info.ID != "lab" {
		t.Errorf("expected map id lab, got %s", info.ID)
	}
	if !info.ReadOnly {
		t.Error("expected forced read-only map")
	}

	if _, err := svc.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.json"), "x", "json", false); err == nil {
		t.Error("expected error for missing file")
	}
}
