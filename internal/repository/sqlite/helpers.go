package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"netcanvas/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToFloat returns the value or 0
func nullToFloat(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

// floatToNull stores zero as NULL
func floatToNull(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to one of the scene tables:
// 1. Add field to the row struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update the columns constant - APPEND to end
// 4. Update toDomain() and the insert args helper
// 5. Add the column to migrate() in sqlite.go
// 6. Update relevant tests
//
// CRITICAL: Column order must match between the columns constant, scanArgs()
// and the insert args helper. INSERT statements prepend map_id and seq.

// ============================================================================
// Map Row Scanner
// ============================================================================

const mapColumns = `id, name, asset_base_url, read_only, created_at, updated_at`

type mapRow struct {
	ID           string
	Name         string
	AssetBaseURL sql.NullString
	ReadOnly     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *mapRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.Name, &r.AssetBaseURL, &r.ReadOnly, &r.CreatedAt, &r.UpdatedAt}
}

func (r *mapRow) toDomain() *domain.MapInfo {
	return &domain.MapInfo{
		ID:           r.ID,
		Name:         r.Name,
		AssetBaseURL: nullToString(r.AssetBaseURL),
		ReadOnly:     r.ReadOnly != 0,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ============================================================================
// Node Row Scanner
// ============================================================================

const nodeColumns = `id, name, x, y, icon, state, address`

type nodeRow struct {
	ID      string
	Name    string
	X       float64
	Y       float64
	Icon    sql.NullString
	State   sql.NullString
	Address sql.NullString
}

// scanArgs MUST match nodeColumns order exactly
func (r *nodeRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.Name, &r.X, &r.Y, &r.Icon, &r.State, &r.Address}
}

func (r *nodeRow) toDomain() domain.Node {
	state := nullToString(r.State)
	if state == "" {
		state = domain.StateUnknown
	}
	return domain.Node{
		ID:      r.ID,
		Name:    r.Name,
		X:       r.X,
		Y:       r.Y,
		Icon:    nullToString(r.Icon),
		State:   state,
		Address: nullToString(r.Address),
	}
}

func nodeInsertArgs(n *domain.Node) []interface{} {
	return []interface{}{
		n.ID,
		n.Name,
		n.X,
		n.Y,
		stringToNull(n.Icon),
		stringToNull(n.State),
		stringToNull(n.Address),
	}
}

// ============================================================================
// Link Row Scanner
// ============================================================================

const linkColumns = `id, node_id1, node_id2, state1, state2, info, width`

type linkRow struct {
	ID      string
	NodeID1 string
	NodeID2 string
	State1  sql.NullString
	State2  sql.NullString
	Info    sql.NullString
	Width   sql.NullFloat64
}

// scanArgs MUST match linkColumns order exactly
func (r *linkRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.NodeID1, &r.NodeID2, &r.State1, &r.State2, &r.Info, &r.Width}
}

func (r *linkRow) toDomain() domain.Link {
	return domain.Link{
		ID:      r.ID,
		NodeID1: r.NodeID1,
		NodeID2: r.NodeID2,
		State1:  nullToString(r.State1),
		State2:  nullToString(r.State2),
		Info:    nullToString(r.Info),
		Width:   nullToFloat(r.Width),
	}
}

func linkInsertArgs(l *domain.Link) []interface{} {
	return []interface{}{
		l.ID,
		l.NodeID1,
		l.NodeID2,
		stringToNull(l.State1),
		stringToNull(l.State2),
		stringToNull(l.Info),
		floatToNull(l.Width),
	}
}

// ============================================================================
// Item Row Scanner
// ============================================================================

// Items keep their variant fields as a JSON ItemRecord; x and y columns win
const itemColumns = `id, type, x, y, data`

type itemRow struct {
	ID   string
	Type string
	X    float64
	Y    float64
	Data []byte
}

// scanArgs MUST match itemColumns order exactly
func (r *itemRow) scanArgs() []interface{} {
	return []interface{}{&r.ID, &r.Type, &r.X, &r.Y, &r.Data}
}

func (r *itemRow) toDomain() (domain.Item, error) {
	var rec domain.ItemRecord
	if err := json.Unmarshal(r.Data, &rec); err != nil {
		return domain.Item{}, fmt.Errorf("unmarshal item data: %w", err)
	}
	rec.ID = r.ID
	rec.Type = domain.ItemType(r.Type)
	rec.X, rec.Y = r.X, r.Y
	return rec.ToItem()
}

func itemInsertArgs(it *domain.Item) ([]interface{}, error) {
	if it.Kind == nil {
		return nil, fmt.Errorf("item has no kind")
	}
	rec := domain.RecordOf(*it)
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	return []interface{}{it.ID, string(rec.Type), it.X, it.Y, data}, nil
}
