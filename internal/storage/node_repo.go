package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// NodeStore defines the interface for knowledge node storage operations.
type NodeStore interface {
	// GetAll returns every node in the graph.
	GetAll(ctx context.Context) ([]*KnowledgeNode, error)
	// GetByID returns a single node without loading the rest of the graph,
	// or ErrNotFound.
	GetByID(ctx context.Context, id string) (*KnowledgeNode, error)
	// Save inserts or replaces a single node.
	Save(ctx context.Context, node *KnowledgeNode) error
	// SaveAll persists the given nodes in one transaction. Concurrent readers
	// see either none or all of the batch.
	SaveAll(ctx context.Context, nodes []*KnowledgeNode) error
	// DeleteByID deletes a node by id.
	DeleteByID(ctx context.Context, id string) error
	// DeleteAll deletes every node.
	DeleteAll(ctx context.Context) error
}

// NodeRepo provides methods for knowledge node operations.
// It implements the NodeStore interface.
type NodeRepo struct {
	db *sql.DB
}

// NewNodeRepo creates a new NodeRepo.
func NewNodeRepo(db *sql.DB) *NodeRepo {
	return &NodeRepo{db: db}
}

func scanNode(scanner interface{ Scan(dest ...any) error }) (*KnowledgeNode, error) {
	var n KnowledgeNode
	var children string
	var parent sql.NullString

	if err := scanner.Scan(&n.ID, &n.Title, &children, &parent, &n.Depth); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(children), &n.Children); err != nil {
		return nil, fmt.Errorf("failed to decode node children: %w", err)
	}
	n.Parent = parent.String
	return &n, nil
}

// GetAll returns every node in the graph.
func (r *NodeRepo) GetAll(ctx context.Context) ([]*KnowledgeNode, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, children, parent, depth FROM knowledge_nodes")
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	nodes := []*KnowledgeNode{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// GetByID returns a single node by id, or ErrNotFound.
func (r *NodeRepo) GetByID(ctx context.Context, id string) (*KnowledgeNode, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, children, parent, depth FROM knowledge_nodes WHERE id = ?", id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query node: %w", err)
	}
	return n, nil
}

// Save inserts or replaces a single node.
func (r *NodeRepo) Save(ctx context.Context, node *KnowledgeNode) error {
	return saveNode(ctx, r.db, node)
}

// SaveAll persists the given nodes in one transaction.
func (r *NodeRepo) SaveAll(ctx context.Context, nodes []*KnowledgeNode) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin node transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, node := range nodes {
		if err := saveNode(ctx, tx, node); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit node transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveNode(ctx context.Context, db execer, node *KnowledgeNode) error {
	if node.ID == "" {
		return fmt.Errorf("node id is required")
	}
	if node.Title == "" {
		return fmt.Errorf("node title is required")
	}

	children, err := json.Marshal(emptyIfNil(node.Children))
	if err != nil {
		return fmt.Errorf("failed to encode node children: %w", err)
	}

	var parent any
	if node.Parent != "" {
		parent = node.Parent
	}

	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO knowledge_nodes (id, title, children, parent, depth)
		 VALUES (?, ?, ?, ?, ?)`,
		node.ID, node.Title, string(children), parent, node.Depth)
	if err != nil {
		return fmt.Errorf("failed to save node: %w", err)
	}
	return nil
}

// DeleteByID deletes a node by id.
func (r *NodeRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM knowledge_nodes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	return nil
}

// DeleteAll deletes every node.
func (r *NodeRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM knowledge_nodes"); err != nil {
		return fmt.Errorf("failed to delete nodes: %w", err)
	}
	return nil
}
