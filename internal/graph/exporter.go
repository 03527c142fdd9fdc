package graph

import (
	"context"
	"fmt"
	"sort"

	"landed-titles/internal/suggest"
	"landed-titles/internal/titles"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// batchSize bounds the rows sent in one UNWIND statement.
const batchSize = 500

// Exporter writes the title hierarchy, cultural names and culture groups to Neo4j.
type Exporter struct {
	driver neo4j.DriverWithContext
}

// NewExporter creates a new graph exporter.
func NewExporter(driver neo4j.DriverWithContext) *Exporter {
	return &Exporter{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (e *Exporter) EnsureSchema(ctx context.Context) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Title) REQUIRE t.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Culture) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (g:CultureGroup) REQUIRE g.name IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// TitleRows flattens a tree into UNWIND rows: one per title and one per name.
func TitleRows(tree *titles.Tree) (titleRows, nameRows []map[string]any) {
	tree.Walk(func(t *titles.Title) bool {
		titleRows = append(titleRows, map[string]any{
			"id":     t.ID,
			"parent": t.ParentID,
			"tier":   string(titles.TierOf(t.ID)),
		})

		cultures := make([]string, 0, len(t.Names))
		for c := range t.Names {
			cultures = append(cultures, c)
		}
		sort.Strings(cultures)
		for _, c := range cultures {
			nameRows = append(nameRows, map[string]any{
				"title":   t.ID,
				"culture": c,
				"name":    t.Names[c],
			})
		}
		return true
	})
	return titleRows, nameRows
}

// ExportTree upserts Title nodes, PARENT_OF edges and NAMED_IN edges to Culture nodes.
func (e *Exporter) ExportTree(ctx context.Context, tree *titles.Tree) error {
	titleRows, nameRows := TitleRows(tree)

	session := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, batch := range chunk(titleRows) {
		if _, err := session.Run(ctx, `
			UNWIND $rows AS row
			MERGE (t:Title {id: row.id})
			SET t.tier = row.tier
		`, map[string]any{"rows": batch}); err != nil {
			return fmt.Errorf("upsert titles: %w", err)
		}
	}

	for _, batch := range chunk(titleRows) {
		if _, err := session.Run(ctx, `
			UNWIND $rows AS row
			WITH row WHERE row.parent <> ''
			MATCH (p:Title {id: row.parent})
			MATCH (t:Title {id: row.id})
			MERGE (p)-[:PARENT_OF]->(t)
		`, map[string]any{"rows": batch}); err != nil {
			return fmt.Errorf("link parents: %w", err)
		}
	}

	for _, batch := range chunk(nameRows) {
		if _, err := session.Run(ctx, `
			UNWIND $rows AS row
			MATCH (t:Title {id: row.title})
			MERGE (c:Culture {id: row.culture})
			MERGE (t)-[n:NAMED_IN]->(c)
			SET n.name = row.name
		`, map[string]any{"rows": batch}); err != nil {
			return fmt.Errorf("upsert names: %w", err)
		}
	}

	log.Info().Int("titles", len(titleRows)).Int("names", len(nameRows)).Msg("Exported title graph")
	return nil
}

// ExportGroups upserts CultureGroup nodes with MEMBER_OF edges carrying the culture's priority.
func (e *Exporter) ExportGroups(ctx context.Context, groups suggest.Groups) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, g := range groups.All() {
		_, err := session.Run(ctx, `
			MERGE (g:CultureGroup {name: $name})
			SET g.mode = $mode
			WITH g
			UNWIND range(0, size($cultures) - 1) AS i
			MERGE (c:Culture {id: $cultures[i]})
			MERGE (c)-[m:MEMBER_OF]->(g)
			SET m.priority = i
		`, map[string]any{
			"name":     g.Name,
			"mode":     g.Mode.String(),
			"cultures": g.Cultures,
		})
		if err != nil {
			log.Warn().Err(err).Str("group", g.Name).Msg("Failed to export culture group")
		}
	}

	log.Info().Int("groups", groups.Len()).Msg("Exported culture groups")
	return nil
}

func chunk(rows []map[string]any) [][]map[string]any {
	var out [][]map[string]any
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		out = append(out, rows[i:end])
	}
	return out
}
