package repository

import (
	"context"
	"errors"

	"netcanvas/internal/domain"
)

// ErrNotFound is returned when a map does not exist
var ErrNotFound = errors.New("not found")

// Repository defines the interface for map data access
type Repository interface {
	// Maps
	ListMaps(ctx context.Context) ([]domain.MapInfo, error)
	GetMap(ctx context.Context, id string) (*domain.MapInfo, error)
	UpsertMap(ctx context.Context, info *domain.MapInfo) error
	DeleteMap(ctx context.Context, id string) error

	// Scenes
	GetScene(ctx context.Context, mapID string) (*domain.Scene, error)
	ReplaceScene(ctx context.Context, mapID string, scene *domain.Scene) error

	// Command effects
	SaveNodePositions(ctx context.Context, mapID string, positions []domain.NodePosition) error
	SaveItemPositions(ctx context.Context, mapID string, positions []domain.ItemPosition) error
	DeleteNodes(ctx context.Context, mapID string, ids []string) error
	ToggleLink(ctx context.Context, mapID, nodeID1, nodeID2 string) (bool, error)

	// Status polling
	ListAddressedNodes(ctx context.Context) ([]domain.AddressedNode, error)
	UpdateNodeStates(ctx context.Context, states map[string]string) ([]string, error)

	// Close releases resources
	Close() error
}
