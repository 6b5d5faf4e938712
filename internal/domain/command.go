package domain

import (
	"encoding/json"
	"fmt"
)

// CommandType identifies an outbound canvas command
type CommandType string

const (
	CommandContextMenu       CommandType = "ContextMenu"
	CommandDeleteNodes       CommandType = "DeleteNodes"
	CommandUpdateNodesPos    CommandType = "UpdateNodesPos"
	CommandUpdateItemsPos    CommandType = "UpdateItemsPos"
	CommandNodeDoubleClicked CommandType = "NodeDoubleClicked"
	CommandItemDoubleClicked CommandType = "ItemDoubleClicked"
	CommandEditLine          CommandType = "EditLine"
	CommandRefresh           CommandType = "Refresh"
)

// Command is a request from the canvas to its host. The set of implementations is closed.
type Command interface {
	Type() CommandType
	isCommand()
}

// ContextMenu asks the host to open a menu for at most one entity at a screen position
type ContextMenu struct {
	NodeID  string  `json:"node_id,omitempty"`
	ItemID  string  `json:"item_id,omitempty"`
	ScreenX float64 `json:"screen_x"`
	ScreenY float64 `json:"screen_y"`
}

// DeleteNodes asks the host to delete nodes
type DeleteNodes struct {
	NodeIDs []string `json:"node_ids"`
}

// UpdateNodesPos commits node positions after a move
type UpdateNodesPos struct {
	Positions []NodePosition `json:"positions"`
}

// UpdateItemsPos commits item positions after a move
type UpdateItemsPos struct {
	Positions []ItemPosition `json:"positions"`
}

// NodeDoubleClicked reports that a single node was opened
type NodeDoubleClicked struct {
	NodeID string `json:"node_id"`
}

// ItemDoubleClicked reports that a single item was opened
type ItemDoubleClicked struct {
	ItemID string `json:"item_id"`
}

// EditLine asks the host to edit the link between two nodes
type EditLine struct {
	NodeID1 string `json:"node_id1"`
	NodeID2 string `json:"node_id2"`
}

// Refresh asks the host to push the scene again
type Refresh struct{}

func (ContextMenu) Type() CommandType { return CommandContextMenu }
func (DeleteNodes) Type() CommandType { return CommandDeleteNodes }
func (UpdateNodesPos) Type() CommandType { return CommandUpdateNodesPos }
func (UpdateItemsPos) Type() CommandType { return CommandUpdateItemsPos }
func (NodeDoubleClicked) Type() CommandType { return CommandNodeDoubleClicked }
func (ItemDoubleClicked) Type() CommandType { return CommandItemDoubleClicked }
func (EditLine) Type() CommandType { return CommandEditLine }
func (Refresh) Type() CommandType { return CommandRefresh }

func (ContextMenu) isCommand() {}
func (DeleteNodes) isCommand() {}
func (UpdateNodesPos) isCommand() {}
func (UpdateItemsPos) isCommand() {}
func (NodeDoubleClicked) isCommand() {}
func (ItemDoubleClicked) isCommand() {}
func (EditLine) isCommand() {}
func (Refresh) isCommand() {}

// CommandEnvelope is the JSON form of a Command
type CommandEnvelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeCommand wraps a command in its envelope
func EncodeCommand(cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.Type(), err)
	}
	return json.Marshal(CommandEnvelope{Type: cmd.Type(), Payload: payload})
}

// DecodeCommand unwraps an envelope into its concrete command
func DecodeCommand(data []byte) (Command, error) {
	var env CommandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode command envelope: %w", err)
	}

	var cmd Command
	switch env.Type {
	case CommandContextMenu:
		cmd = &ContextMenu{}
	case CommandDeleteNodes:
		cmd = &DeleteNodes{}
	case CommandUpdateNodesPos:
		cmd = &UpdateNodesPos{}
	case CommandUpdateItemsPos:
		cmd = &UpdateItemsPos{}
	case CommandNodeDoubleClicked:
		cmd = &NodeDoubleClicked{}
	case CommandItemDoubleClicked:
		cmd = &ItemDoubleClicked{}
	case CommandEditLine:
		cmd = &EditLine{}
	case CommandRefresh:
		return Refresh{}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
	}
	return deref(cmd), nil
}

func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *ContextMenu:
		return *c
	case *DeleteNodes:
		return *c
	case *UpdateNodesPos:
		return *c
	case *UpdateItemsPos:
		return *c
	case *NodeDoubleClicked:
		return *c
	case *ItemDoubleClicked:
		return *c
	case *EditLine:
		return *c
	}
	return cmd
}
