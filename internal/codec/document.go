package codec

import (
	"fmt"

	"netcanvas/internal/domain"
)

// fileDocument is the on-disk structure shared by the JSON and YAML codecs
type fileDocument struct {
	ID           string              `json:"id" yaml:"id"`
	Name         string              `json:"name" yaml:"name"`
	AssetBaseURL string              `json:"asset_base_url,omitempty" yaml:"asset_base_url,omitempty"`
	ReadOnly     bool                `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Background   string              `json:"background,omitempty" yaml:"background,omitempty"`
	Nodes        []fileNode          `json:"nodes" yaml:"nodes"`
	Links        []fileLink          `json:"links" yaml:"links"`
	Items        []domain.ItemRecord `json:"items" yaml:"items"`
}

type fileNode struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Icon    string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	State   string  `json:"state,omitempty" yaml:"state,omitempty"`
	Address string  `json:"address,omitempty" yaml:"address,omitempty"`
}

type fileLink struct {
	ID      string  `json:"id,omitempty" yaml:"id,omitempty"`
	NodeID1 string  `json:"node_id1" yaml:"node_id1"`
	NodeID2 string  `json:"node_id2" yaml:"node_id2"`
	State1  string  `json:"state1,omitempty" yaml:"state1,omitempty"`
	State2  string  `json:"state2,omitempty" yaml:"state2,omitempty"`
	Info    string  `json:"info,omitempty" yaml:"info,omitempty"`
	Width   float64 `json:"width,omitempty" yaml:"width,omitempty"`
}

func toFileDocument(doc *Document) fileDocument {
	scene := doc.Scene
	if scene == nil {
		scene = domain.NewScene()
	}

	fd := fileDocument{
		ID:           doc.ID,
		Name:         doc.Name,
		AssetBaseURL: doc.AssetBaseURL,
		ReadOnly:     doc.ReadOnly,
		Background:   scene.Background,
		Nodes:        make([]fileNode, 0, len(scene.Nodes)),
		Links:        make([]fileLink, 0, len(scene.Links)),
		Items:        make([]domain.ItemRecord, 0, len(scene.Items)),
	}

	for _, n := range scene.Nodes {
		fd.Nodes = append(fd.Nodes, fileNode{
			ID:      n.ID,
			Name:    n.Name,
			X:       n.X,
			Y:       n.Y,
			Icon:    n.Icon,
			State:   n.State,
			Address: n.Address,
		})
	}

	for _, l := range scene.Links {
		fd.Links = append(fd.Links, fileLink{
			ID:      l.ID,
			NodeID1: l.NodeID1,
			NodeID2: l.NodeID2,
			State1:  l.State1,
			State2:  l.State2,
			Info:    l.Info,
			Width:   l.Width,
		})
	}

	for _, it := range scene.Items {
		fd.Items = append(fd.Items, domain.RecordOf(it))
	}

	return fd
}

// toDocument validates and converts a parsed file. Node IDs must be unique
// and items must have a known type; links may dangle.
func (fd *fileDocument) toDocument() (*Document, error) {
	scene := domain.NewScene()
	scene.Background = fd.Background

	seen := make(map[string]bool, len(fd.Nodes))
	for _, fn := range fd.Nodes {
		if fn.ID == "" {
			return nil, fmt.Errorf("node without id")
		}
		if seen[fn.ID] {
			return nil, fmt.Errorf("duplicate node id %q", fn.ID)
		}
		seen[fn.ID] = true

		node := domain.NewNode(fn.ID, fn.Name, fn.X, fn.Y, fn.Icon)
		if fn.State != "" {
			node.State = fn.State
		}
		node.Address = fn.Address
		scene.AddNode(*node)
	}

	for _, fl := range fd.Links {
		link := domain.Link{
			ID:      fl.ID,
			NodeID1: fl.NodeID1,
			NodeID2: fl.NodeID2,
			State1:  fl.State1,
			State2:  fl.State2,
			Info:    fl.Info,
			Width:   fl.Width,
		}
		if link.ID == "" {
			link.ID = link.GenerateID()
		}
		scene.AddLink(link)
	}

	for _, rec := range fd.Items {
		item, err := rec.ToItem()
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", rec.ID, err)
		}
		scene.AddItem(item)
	}

	return &Document{
		ID:           fd.ID,
		Name:         fd.Name,
		AssetBaseURL: fd.AssetBaseURL,
		ReadOnly:     fd.ReadOnly,
		Scene:        scene,
	}, nil
}
