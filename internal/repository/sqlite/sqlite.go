package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"netcanvas/internal/domain"
	"netcanvas/internal/repository"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dbPath != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		asset_base_url TEXT,
		background TEXT,
		read_only INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS nodes (
		map_id TEXT NOT NULL,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		icon TEXT,
		state TEXT,
		address TEXT,
		PRIMARY KEY (map_id, id),
		FOREIGN KEY (map_id) REFERENCES maps(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS links (
		map_id TEXT NOT NULL,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		node_id1 TEXT NOT NULL,
		node_id2 TEXT NOT NULL,
		state1 TEXT,
		state2 TEXT,
		info TEXT,
		width REAL,
		PRIMARY KEY (map_id, id),
		FOREIGN KEY (map_id) REFERENCES maps(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS items (
		map_id TEXT NOT NULL,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		data JSON NOT NULL,
		PRIMARY KEY (map_id, id),
		FOREIGN KEY (map_id) REFERENCES maps(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_address ON nodes(address);
	CREATE INDEX IF NOT EXISTS idx_links_node1 ON links(map_id, node_id1);
	CREATE INDEX IF NOT EXISTS idx_links_node2 ON links(map_id, node_id2);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ListMaps returns every stored map ordered by ID
func (r *Repository) ListMaps(ctx context.Context) ([]domain.MapInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+mapColumns+` FROM maps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query maps: %w", err)
	}
	defer rows.Close()

	maps := make([]domain.MapInfo, 0)
	for rows.Next() {
		var row mapRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		maps = append(maps, *row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maps: %w", err)
	}
	return maps, nil
}

// GetMap returns map metadata or repository.ErrNotFound
func (r *Repository) GetMap(ctx context.Context, id string) (*domain.MapInfo, error) {
	var row mapRow
	err := r.db.QueryRowContext(ctx, `SELECT `+mapColumns+` FROM maps WHERE id = ?`, id).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("map %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query map: %w", err)
	}
	return row.toDomain(), nil
}

// UpsertMap creates or updates map metadata. The scene is left untouched.
func (r *Repository) UpsertMap(ctx context.Context, info *domain.MapInfo) error {
	now := time.Now()
	if info.CreatedAt.IsZero() {
		info.CreatedAt = now
	}
	info.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO maps (id, name, asset_base_url, read_only, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			asset_base_url = excluded.asset_base_url,
			read_only = excluded.read_only,
			updated_at = excluded.updated_at
	`, info.ID, info.Name, stringToNull(info.AssetBaseURL), boolToInt(info.ReadOnly), info.CreatedAt, info.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert map: %w", err)
	}
	return nil
}

// DeleteMap removes a map and its scene
func (r *Repository) DeleteMap(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM maps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete map: %w", err)
	}
	return requireRow(res, id)
}

// GetScene loads the scene of a map in stored collection order
func (r *Repository) GetScene(ctx context.Context, mapID string) (*domain.Scene, error) {
	scene := domain.NewScene()

	var background sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT background FROM maps WHERE id = ?`, mapID).Scan(&background)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("map %s: %w", mapID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query map: %w", err)
	}
	scene.Background = nullToString(background)

	// Load nodes
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes WHERE map_id = ? ORDER BY seq
	`, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		scene.AddNode(row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	// Load links
	linkRows, err := r.db.QueryContext(ctx, `
		SELECT `+linkColumns+` FROM links WHERE map_id = ? ORDER BY seq
	`, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var row linkRow
		if err := linkRows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		scene.AddLink(row.toDomain())
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	// Load items
	itemRows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE map_id = ? ORDER BY seq
	`, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var row itemRow
		if err := itemRows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", row.ID, err)
		}
		scene.AddItem(item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return scene, nil
}

// ReplaceScene replaces the whole scene of an existing map
func (r *Repository) ReplaceScene(ctx context.Context, mapID string, scene *domain.Scene) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE maps SET background = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, stringToNull(scene.Background), mapID)
	if err != nil {
		return fmt.Errorf("failed to update map: %w", err)
	}
	if err := requireRow(res, mapID); err != nil {
		return err
	}

	// Clear existing scene
	for _, table := range []string{"links", "items", "nodes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE map_id = ?`, mapID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Insert nodes
	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (map_id, seq, `+nodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	for i := range scene.Nodes {
		args := append([]interface{}{mapID, i}, nodeInsertArgs(&scene.Nodes[i])...)
		if _, err := nodeStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", scene.Nodes[i].ID, err)
		}
	}

	// Insert links
	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (map_id, seq, `+linkColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare link statement: %w", err)
	}
	defer linkStmt.Close()

	for i := range scene.Links {
		link := scene.Links[i]
		if link.ID == "" {
			link.ID = link.GenerateID()
		}
		args := append([]interface{}{mapID, i}, linkInsertArgs(&link)...)
		if _, err := linkStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert link %s: %w", link.ID, err)
		}
	}

	// Insert items
	itemStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (map_id, seq, `+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare item statement: %w", err)
	}
	defer itemStmt.Close()

	for i := range scene.Items {
		itemArgs, err := itemInsertArgs(&scene.Items[i])
		if err != nil {
			return fmt.Errorf("item %s: %w", scene.Items[i].ID, err)
		}
		args := append([]interface{}{mapID, i}, itemArgs...)
		if _, err := itemStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", scene.Items[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveNodePositions updates committed node positions. Unknown nodes are ignored.
func (r *Repository) SaveNodePositions(ctx context.Context, mapID string, positions []domain.NodePosition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE nodes SET x = ?, y = ? WHERE map_id = ? AND id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, pos := range positions {
		if _, err := stmt.ExecContext(ctx, pos.X, pos.Y, mapID, pos.NodeID); err != nil {
			return fmt.Errorf("failed to update position for %s: %w", pos.NodeID, err)
		}
	}

	if err := touchMap(ctx, tx, mapID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveItemPositions updates committed item positions. Unknown items are ignored.
func (r *Repository) SaveItemPositions(ctx context.Context, mapID string, positions []domain.ItemPosition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE items SET x = ?, y = ? WHERE map_id = ? AND id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, pos := range positions {
		if _, err := stmt.ExecContext(ctx, pos.X, pos.Y, mapID, pos.ItemID); err != nil {
			return fmt.Errorf("failed to update position for %s: %w", pos.ItemID, err)
		}
	}

	if err := touchMap(ctx, tx, mapID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteNodes removes nodes and every link touching them
func (r *Repository) DeleteNodes(ctx context.Context, mapID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	in, args := inClause(ids)
	linkArgs := append(append([]interface{}{mapID}, args...), args...)
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM links WHERE map_id = ? AND (node_id1 IN `+in+` OR node_id2 IN `+in+`)
	`, linkArgs...); err != nil {
		return fmt.Errorf("failed to delete links: %w", err)
	}

	nodeArgs := append([]interface{}{mapID}, args...)
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE map_id = ? AND id IN `+in, nodeArgs...); err != nil {
		return fmt.Errorf("failed to delete nodes: %w", err)
	}

	if err := touchMap(ctx, tx, mapID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ToggleLink removes the link between two nodes if there is one, otherwise
// creates it. It reports whether a link was created.
func (r *Repository) ToggleLink(ctx context.Context, mapID, nodeID1, nodeID2 string) (bool, error) {
	if nodeID1 == nodeID2 {
		return false, fmt.Errorf("cannot link node %s to itself", nodeID1)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM nodes WHERE map_id = ? AND id IN (?, ?)
	`, mapID, nodeID1, nodeID2).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check nodes: %w", err)
	}
	if count != 2 {
		return false, fmt.Errorf("link %s-%s: %w", nodeID1, nodeID2, repository.ErrNotFound)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM links WHERE map_id = ?
		AND ((node_id1 = ? AND node_id2 = ?) OR (node_id1 = ? AND node_id2 = ?))
	`, mapID, nodeID1, nodeID2, nodeID2, nodeID1)
	if err != nil {
		return false, fmt.Errorf("failed to delete link: %w", err)
	}

	created := false
	if n, _ := res.RowsAffected(); n == 0 {
		link := domain.NewLink(nodeID1, nodeID2)
		args := append([]interface{}{mapID, mapID}, linkInsertArgs(link)...)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO links (map_id, seq, `+linkColumns+`)
			VALUES (?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM links WHERE map_id = ?), ?, ?, ?, ?, ?, ?, ?)
		`, args...); err != nil {
			return false, fmt.Errorf("failed to insert link: %w", err)
		}
		created = true
	}

	if err := touchMap(ctx, tx, mapID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// ListAddressedNodes returns every node with a probe address, across all maps
func (r *Repository) ListAddressedNodes(ctx context.Context) ([]domain.AddressedNode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT map_id, id, address FROM nodes
		WHERE address IS NOT NULL AND address != ''
		ORDER BY map_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]domain.AddressedNode, 0)
	for rows.Next() {
		var n domain.AddressedNode
		if err := rows.Scan(&n.MapID, &n.NodeID, &n.Address); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return nodes, nil
}

// UpdateNodeStates sets the state of every node by address and returns the
// IDs of the maps where a state actually changed
func (r *Repository) UpdateNodeStates(ctx context.Context, states map[string]string) ([]string, error) {
	if len(states) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	changed := make(map[string]bool)
	for address, state := range states {
		rows, err := tx.QueryContext(ctx, `
			UPDATE nodes SET state = ?
			WHERE address = ? AND COALESCE(state, '') != ?
			RETURNING map_id
		`, state, address, state)
		if err != nil {
			return nil, fmt.Errorf("failed to update state for %s: %w", address, err)
		}
		for rows.Next() {
			var mapID string
			if err := rows.Scan(&mapID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan map id: %w", err)
			}
			changed[mapID] = true
		}
		rows.Close()
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	maps := make([]string, 0, len(changed))
	for id := range changed {
		maps = append(maps, id)
	}
	sort.Strings(maps)
	return maps, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func touchMap(ctx context.Context, tx *sql.Tx, mapID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE maps SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, mapID); err != nil {
		return fmt.Errorf("failed to touch map: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("map %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// inClause returns "(?, ?, ...)" and the matching arguments
func inClause(ids []string) (string, []interface{}) {
	marks := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return "(" + strings.Join(marks, ", ") + ")", args
}
