package graph

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxmitra/grievance/pkg/logger"
)

// Load populates the graph from the kb_graph_nodes and kb_graph_edges
// tables. It is called once at startup; a missing or empty store leaves
// the graph permanently empty, which every caller treats as "no boost".
func Load(ctx context.Context, pool *pgxpool.Pool) (*RelationGraph, error) {
	g := NewRelationGraph()

	rows, err := pool.Query(ctx, `SELECT label, entity_type FROM kb_graph_nodes`)
	if err != nil {
		return nil, fmt.Errorf("query graph nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var node Node
		if err := rows.Scan(&node.Label, &node.EntityType); err != nil {
			return nil, fmt.Errorf("scan graph node: %w", err)
		}
		g.AddNode(node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph nodes: %w", err)
	}

	edgeRows, err := pool.Query(ctx, `SELECT source, target, relation, weight FROM kb_graph_edges`)
	if err != nil {
		return nil, fmt.Errorf("query graph edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge Edge
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &edge.Relation, &edge.Weight); err != nil {
			return nil, fmt.Errorf("scan graph edge: %w", err)
		}
		g.AddEdge(edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph edges: %w", err)
	}

	logger.Info("[Graph] relation graph loaded", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	return g, nil
}
