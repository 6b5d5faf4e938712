package codec

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"netcanvas/internal/domain"
)

func sampleDocument() *Document {
	scene := domain.NewScene()
	scene.Background = "floor.png"
	scene.AddNode(domain.Node{ID: "a", Name: "core", X: 100, Y: 100, Icon: "router", State: domain.StateUp, Address: "10.0.0.1"})
	scene.AddNode(domain.Node{ID: "b", Name: "edge", X: 300, Y: 100, Icon: "switch", State: domain.StateUnknown})
	scene.AddLink(domain.Link{ID: "l1", NodeID1: "a", NodeID2: "b", State2: domain.StateDown, Info: "10G", Width: 3})
	scene.AddItem(domain.Item{ID: "t", X: 10, Y: 10, Kind: domain.BoundText{Text: "rx {value}", Value: 12.5}})
	scene.AddItem(domain.Item{ID: "s", X: 10, Y: 60, Kind: domain.Sparkline{H: 30, Values: []float64{1, 4, 2}}})

	return &Document{ID: "core", Name: "Core", AssetBaseURL: "http://assets.local/", Scene: scene}
}

func TestCodecs(t *testing.T) {
	codecs := []interface {
		Importer
		Exporter
	}{NewJSONCodec(), NewYAMLCodec()}

	for _, c := range codecs {
		t.Run(c.Format(), func(t *testing.T) {
			want := sampleDocument()

			var buf bytes.Buffer
			if err := c.Export(want, &buf); err != nil {
				t.Fatalf("Export: %v", err)
			}
			got, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			if got.ID != want.ID || got.Name != want.Name || got.AssetBaseURL != want.AssetBaseURL {
				t.Errorf("expected metadata %+v, got %+v", want, got)
			}
			if !reflect.DeepEqual(want.Scene, got.Scene) {
				t.Errorf("expected scene %+v, got %+v", want.Scene, got.Scene)
			}
		})
	}
}

func TestYAMLParse(t *testing.T) {
	input := `
id: lab
name: Lab
nodes:
  - id: fw
    name: Firewall
    x: 50
    y: 60
    icon: firewall
  - id: sw
    name: Switch
    x: 150
    y: 60
links:
  - node_id1: fw
    node_id2: sw
items:
  - id: g
    type: bitmap_gauge
    x: 10
    y: 200
    height: 40
    value: 75
`

	doc, err := NewYAMLCodec().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fw := doc.Scene.Node("fw")
	if fw == nil || fw.State != domain.StateUnknown || fw.Icon != "firewall" {
		t.Errorf("unexpected firewall node %+v", fw)
	}
	if id := doc.Scene.Links[0].ID; id != domain.LinkID("fw", "sw") {
		t.Errorf("expected generated link id, got %q", id)
	}
	g, ok := doc.Scene.Items[0].Kind.(domain.Gauge)
	if !ok || g.H != 40 || g.Value != 75 {
		t.Errorf("unexpected gauge %+v", doc.Scene.Items[0].Kind)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}]}`},
		{"node without id", `{"nodes": [{"name": "x"}]}`},
		{"unknown item type", `{"items": [{"id": "i", "type": "hologram"}]}`},
		{"malformed", `{"nodes": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewJSONCodec().Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAnsibleImport(t *testing.T) {
	input := `
all:
  children:
    network:
      hosts:
        gw:
          ansible_host: 10.0.0.1
    servers:
      hosts:
        web:
          ansible_host: 10.0.0.10
        db:
          ansible_host: 10.0.0.11
          role: database
`

	doc, err := NewAnsibleCodec().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	scene := doc.Scene
	if len(scene.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(scene.Nodes))
	}
	if scene.Nodes[0].ID != "gw" || scene.Nodes[0].Icon != "router" || scene.Nodes[0].Address != "10.0.0.1" {
		t.Errorf("unexpected first node %+v", scene.Nodes[0])
	}
	if scene.Nodes[1].ID != "db" || scene.Nodes[1].Icon != "database" {
		t.Errorf("unexpected second node %+v", scene.Nodes[1])
	}
	if scene.Nodes[1].X == scene.Nodes[0].X {
		t.Error("expected nodes laid out on distinct grid cells")
	}

	if len(scene.Links) != 2 {
		t.Fatalf("expected 2 links to the router, got %d", len(scene.Links))
	}
	for _, l := range scene.Links {
		if l.NodeID2 != "gw" {
			t.Errorf("expected link to gw, got %+v", l)
		}
	}
}

func TestAnsibleExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewAnsibleCodec().Export(sampleDocument(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"routers:", "switchs:", "ansible_host: 10.0.0.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestForFormat(t *testing.T) {
	for _, f := range []string{"json", ".yml", "yaml", "ansible"} {
		if _, ok := ForFormat(f); !ok {
			t.Errorf("expected importer for %q", f)
		}
	}
	if _, ok := ForFormat("xml"); ok {
		t.Error("expected no importer for xml")
	}
}
