package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"netcanvas/internal/domain"
	"netcanvas/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// seedMap creates a map with a small scene: a-b-c in a row, one link a-b
// and one item of each broad kind
func seedMap(t *testing.T, repo *Repository, id string) *domain.Scene {
	t.Helper()
	ctx := context.Background()

	info := domain.NewMapInfo(id, "Map "+id)
	info.AssetBaseURL = "http://assets.local/"
	assertNoError(t, repo.UpsertMap(ctx, info))

	scene := domain.NewScene()
	scene.Background = "floor.png"
	scene.AddNode(domain.Node{ID: "a", Name: "core", X: 100, Y: 100, Icon: "router", State: domain.StateUp, Address: "10.0.0.1"})
	scene.AddNode(domain.Node{ID: "b", Name: "edge", X: 200, Y: 100, Icon: "switch", State: domain.StateDown, Address: "10.0.0.2"})
	scene.AddNode(domain.Node{ID: "c", Name: "spare", X: 300, Y: 100, Icon: "server", State: domain.StateUnknown})
	scene.AddLink(domain.Link{ID: "ab", NodeID1: "a", NodeID2: "b", State1: domain.StateUp, Info: "10G", Width: 3})
	scene.AddItem(domain.Item{ID: "label", X: 10, Y: 10, Kind: domain.Text{Text: "Rack 1", FontSize: 14}})
	scene.AddItem(domain.Item{ID: "cpu", X: 400, Y: 10, Kind: domain.Sparkline{H: 20, Values: []float64{1, 2, 3}, Color: "up"}})
	scene.AddItem(domain.Item{ID: "box", X: 50, Y: 300, Kind: domain.Rectangle{W: 80, H: 40, Color: "#ff0000"}})
	assertNoError(t, repo.ReplaceScene(ctx, id, scene))

	return scene
}

// ============================================================================
// Map Tests
// ============================================================================

func TestMaps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		maps, err := repo.ListMaps(ctx)
		assertNoError(t, err)
		assertEqual(t, 0, len(maps))
	})

	t.Run("upsert and get", func(t *testing.T) {
		info := domain.NewMapInfo("core", "Core network")
		info.ReadOnly = true
		assertNoError(t, repo.UpsertMap(ctx, info))

		got, err := repo.GetMap(ctx, "core")
		assertNoError(t, err)
		assertEqual(t, "Core network", got.Name)
		assertEqual(t, true, got.ReadOnly)

		info.Name = "Core"
		info.ReadOnly = false
		assertNoError(t, repo.UpsertMap(ctx, info))
		got, err = repo.GetMap(ctx, "core")
		assertNoError(t, err)
		assertEqual(t, "Core", got.Name)
		assertEqual(t, false, got.ReadOnly)
	})

	t.Run("list is ordered", func(t *testing.T) {
		assertNoError(t, repo.UpsertMap(ctx, domain.NewMapInfo("access", "Access")))
		maps, err := repo.ListMaps(ctx)
		assertNoError(t, err)
		assertEqual(t, 2, len(maps))
		assertEqual(t, "access", maps[0].ID)
		assertEqual(t, "core", maps[1].ID)
	})

	t.Run("missing map", func(t *testing.T) {
		_, err := repo.GetMap(ctx, "nope")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.DeleteMap(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

// ============================================================================
// Scene Tests
// ============================================================================

func TestSceneRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	want := seedMap(t, repo, "site")

	got, err := repo.GetScene(ctx, "site")
	assertNoError(t, err)

	assertEqual(t, want.Background, got.Background)
	assertEqual(t, want.Nodes, got.Nodes)
	assertEqual(t, want.Links, got.Links)
	assertEqual(t, want.Items, got.Items)
}

func TestReplaceScene(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedMap(t, repo, "site")

	t.Run("replaces wholesale and keeps order", func(t *testing.T) {
		scene := domain.NewScene()
		scene.AddNode(domain.Node{ID: "z", Name: "z", X: 1, Y: 1})
		scene.AddNode(domain.Node{ID: "y", Name: "y", X: 2, Y: 2})
		scene.AddLink(domain.Link{NodeID1: "z", NodeID2: "y"})
		assertNoError(t, repo.ReplaceScene(ctx, "site", scene))

		got, err := repo.GetScene(ctx, "site")
		assertNoError(t, err)
		assertEqual(t, "", got.Background)
		assertEqual(t, 2, len(got.Nodes))
		assertEqual(t, "z", got.Nodes[0].ID)
		assertEqual(t, "y", got.Nodes[1].ID)
		assertEqual(t, domain.StateUnknown, got.Nodes[0].State)
		assertEqual(t, domain.LinkID("z", "y"), got.Links[0].ID)
		assertEqual(t, 0, len(got.Items))
	})

	t.Run("unknown map", func(t *testing.T) {
		err := repo.ReplaceScene(ctx, "nope", domain.NewScene())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rolls back on bad item", func(t *testing.T) {
		scene := domain.NewScene()
		scene.AddNode(domain.Node{ID: "q", Name: "q"})
		scene.AddItem(domain.Item{ID: "broken"})
		if err := repo.ReplaceScene(ctx, "site", scene); err == nil {
			t.Fatal("expected error for item without kind")
		}

		got, err := repo.GetScene(ctx, "site")
		assertNoError(t, err)
		assertEqual(t, "z", got.Nodes[0].ID)
	})
}

func TestDeleteMapCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedMap(t, repo, "site")

	assertNoError(t, repo.DeleteMap(ctx, "site"))

	var count int
	assertNoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count))
	assertEqual(t, 0, count)

	_, err := repo.GetScene(ctx, "site")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================================
// Command Effect Tests
// ============================================================================

func TestSavePositions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedMap(t, repo, "site")

	assertNoError(t, repo.SaveNodePositions(ctx, "site", []domain.NodePosition{
		{NodeID: "a", X: 150, Y: 120},
		{NodeID: "ghost", X: 1, Y: 1},
	}))
	assertNoError(t, repo.SaveItemPositions(ctx, "site", []domain.ItemPosition{
		{ItemID: "cpu", X: 420, Y: 30},
	}))

	scene, err := repo.GetScene(ctx, "site")
	assertNoError(t, err)

	a := scene.Node("a")
	assertEqual(t, 150.0, a.X)
	assertEqual(t, 120.0, a.Y)

	cpu := scene.Item("cpu")
	assertEqual(t, 420.0, cpu.X)
	assertEqual(t, 30.0, cpu.Y)
	assertEqual(t, []float64{1, 2, 3}, cpu.Kind.(domain.Sparkline).Values)
}

func TestDeleteNodes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedMap(t, repo, "site")

	assertNoError(t, repo.DeleteNodes(ctx, "site", []string{"b", "c"}))

	scene, err := repo.GetScene(ctx, "site")
	assertNoError(t, err)
	assertEqual(t, 1, len(scene.Nodes))
	assertEqual(t, "a", scene.Nodes[0].ID)
	assertEqual(t, 0, len(scene.Links))

	t.Run("empty list is a no-op", func(t *testing.T) {
		assertNoError(t, repo.DeleteNodes(ctx, "site", nil))
	})
}

func TestToggleLink(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedMap(t, repo, "site")

	t.Run("removes an existing link in either direction", func(t *testing.T) {
		created, err := repo.ToggleLink(ctx, "site", "b", "a")
		assertNoError(t, err)
		assertEqual(t, false, created)

		scene, err := repo.GetScene(ctx, "site")
		assertNoError(t, err)
		assertEqual(t, 0, len(scene.Links))
	})

	t.Run("creates a missing link", func(t *testing.T) {
		created, err := repo.ToggleLink(ctx, "site", "b", "c")
		assertNoError(t, err)
		assertEqual(t, true, created)

		created, err = repo.ToggleLink(ctx, "site", "a", "c")
		assertNoError(t, err)
		assertEqual(t, true, created)

		scene, err := repo.GetScene(ctx, "site")
		assertNoError(t, err)
		assertEqual(t, 2, len(scene.Links))
		assertEqual(t, domain.LinkID("b", "c"), scene.Links[0].ID)
		assertEqual(t, float64(domain.DefaultLinkWidth), scene.Links[0].Width)
		if !scene.Links[1].Connects("c", "a") {
			t.Errorf("expected second link a-c, got %+v", scene.Links[1])
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := repo.ToggleLink(ctx, "site", "a", "ghost")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("self link", func(t *testing.T) {
		if _, err := repo.ToggleLink(ctx, "site", "a", "a"); err == nil {
			t.Error("expected error for self link")
		}
	})
}

// ============================================================================
// Status Tests
// ============================================================================

func TestNodeStates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedMap(t, repo, "east")
	seedMap(t, repo, "west")

	nodes, err := repo.ListAddressedNodes(ctx)
	assertNoError(t, err)
	assertEqual(t, 4, len(nodes))
	assertEqual(t, domain.AddressedNode{MapID: "east", NodeID: "a", Address: "10.0.0.1"}, nodes[0])

	t.Run("reports maps that changed", func(t *testing.T) {
		changed, err := repo.UpdateNodeStates(ctx, map[string]string{
			"10.0.0.1": domain.StateUp,
			"10.0.0.2": domain.StateUp,
		})
		assertNoError(t, err)
		assertEqual(t, []string{"east", "west"}, changed)

		scene, err := repo.GetScene(ctx, "west")
		assertNoError(t, err)
		assertEqual(t, domain.StateUp, scene.Node("b").State)
	})

	t.Run("no change, no maps", func(t *testing.T) {
		changed, err := repo.UpdateNodeStates(ctx, map[string]string{"10.0.0.1": domain.StateUp})
		assertNoError(t, err)
		assertEqual(t, 0, len(changed))
	})

	t.Run("empty input", func(t *testing.T) {
		changed, err := repo.UpdateNodeStates(ctx, nil)
		assertNoError(t, err)
		assertEqual(t, 0, len(changed))
	})
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid", sql.NullString{String: "x", Valid: true}, "x"},
		{"null", sql.NullString{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestInClause(t *testing.T) {
	in, args := inClause([]string{"a", "b", "c"})
	assertEqual(t, "(?, ?, ?)", in)
	assertEqual(t, []interface{}{"a", "b", "c"}, args)
}
