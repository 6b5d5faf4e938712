package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"netcanvas/internal/domain"
)

// Grid layout for imported inventories
const (
	gridOriginX = 80
	gridOriginY = 80
	gridStepX   = 120
	gridStepY   = 110
	gridColumns = 6
)

// AnsibleCodec handles Ansible inventory import/export
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]ansibleHost     `yaml:"hosts,omitempty"`
	Vars     map[string]interface{}     `yaml:"vars,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
	Vars  map[string]interface{} `yaml:"vars,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string                 `yaml:"ansible_host,omitempty"`
	Vars        map[string]interface{} `yaml:",inline"`
}

// Parse imports an inventory as a map: one node per host laid out on a grid
// group by group, each host linked to the router if the inventory has one
func (c *AnsibleCodec) Parse(r io.Reader) (*Document, error) {
	var inv ansibleInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse Ansible inventory: %w", err)
	}

	scene := domain.NewScene()
	seen := make(map[string]bool)
	var routerID string

	add := func(hostID, groupName string, host ansibleHost) {
		if seen[hostID] {
			return
		}
		seen[hostID] = true

		i := len(scene.Nodes)
		x := float64(gridOriginX + (i%gridColumns)*gridStepX)
		y := float64(gridOriginY + (i/gridColumns)*gridStepY)

		icon := c.inferIcon(groupName, host.Vars)
		node := domain.NewNode(hostID, hostID, x, y, icon)
		node.Address = host.AnsibleHost
		scene.AddNode(*node)

		if icon == "router" && routerID == "" {
			routerID = hostID
		}
	}

	// Process all groups
	for _, groupName := range sortedKeys(inv.All.Children) {
		group := inv.All.Children[groupName]
		for _, hostID := range sortedKeys(group.Hosts) {
			add(hostID, groupName, group.Hosts[hostID])
		}
	}

	// Process hosts in the 'all' group directly
	for _, hostID := range sortedKeys(inv.All.Hosts) {
		add(hostID, "all", inv.All.Hosts[hostID])
	}

	// Infer links - connect all hosts to the router if found
	if routerID != "" {
		for _, n := range scene.Nodes {
			if n.ID != routerID {
				scene.AddLink(*domain.NewLink(n.ID, routerID))
			}
		}
	}

	return &Document{Name: "Ansible inventory", Scene: scene}, nil
}

// inferIcon picks a glyph name from device_type, then role, then group name
func (c *AnsibleCodec) inferIcon(groupName string, vars map[string]interface{}) string {
	// First check device_type (explicit)
	if deviceType, ok := vars["device_type"].(string); ok {
		switch strings.ToLower(deviceType) {
		case "router", "gateway":
			return "router"
		case "switch":
			return "switch"
		case "access_point", "ap", "wifi":
			return "access-point"
		case "firewall":
			return "firewall"
		}
	}

	// Check role property
	if role, ok := vars["role"].(string); ok {
		roleLower := strings.ToLower(role)
		switch {
		case strings.Contains(roleLower, "router") || strings.Contains(roleLower, "gateway"):
			return "router"
		case strings.Contains(roleLower, "switch"):
			return "switch"
		case strings.Contains(roleLower, "firewall"):
			return "firewall"
		case strings.Contains(roleLower, "database") || strings.Contains(roleLower, "storage"):
			return "database"
		}
	}

	// Check group name
	groupLower := strings.ToLower(groupName)
	switch {
	case strings.Contains(groupLower, "router") || strings.Contains(groupLower, "network"):
		return "router"
	case strings.Contains(groupLower, "switch"):
		return "switch"
	case strings.Contains(groupLower, "firewall"):
		return "firewall"
	case strings.Contains(groupLower, "db") || strings.Contains(groupLower, "database"):
		return "database"
	case strings.Contains(groupLower, "desktop") || strings.Contains(groupLower, "workstation"):
		return "desktop"
	}

	// Default to server
	return "server"
}

// Export writes the nodes as an inventory grouped by icon
func (c *AnsibleCodec) Export(doc *Document, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	if doc.Scene != nil {
		for _, node := range doc.Scene.Nodes {
			groupName := node.Icon
			if groupName == "" {
				groupName = "server"
			}
			groupName = strings.ReplaceAll(groupName, "-", "_") + "s"

			group, ok := inv.All.Children[groupName]
			if !ok {
				group = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
			}
			group.Hosts[node.ID] = ansibleHost{AnsibleHost: node.Address}
			inv.All.Children[groupName] = group
		}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
