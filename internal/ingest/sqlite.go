package ingest

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vietcare/health-rag/internal/document"
)

// Symptom is one row of the symptoms table.
type Symptom struct {
	ID          int64
	Name        string
	Description string
	Severity    string
}

// Disease is one row of the diseases table.
type Disease struct {
	ID             int64
	Name           string
	Description    string
	CommonSymptoms string
	Prevention     string
	SourceDocument string
}

// Recommendation is one row of the recommendations table joined with its
// symptom's name.
type Recommendation struct {
	ID          int64
	SymptomName string
	Text        string
	Priority    string
	Source      string
}

// KnowledgeDB reads curated health knowledge out of the SQLite database so it
// can be indexed alongside the document files.
type KnowledgeDB struct {
	db *sql.DB
}

// OpenKnowledgeDB opens the database read-only and verifies the connection.
func OpenKnowledgeDB(path string) (*KnowledgeDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}
	return &KnowledgeDB{db: db}, nil
}

// Close releases the underlying connection pool.
func (k *KnowledgeDB) Close() error {
	return k.db.Close()
}

// Symptoms returns every symptom row.
func (k *KnowledgeDB) Symptoms(ctx context.Context) ([]Symptom, error) {
	rows, err := k.db.QueryContext(ctx,
		`SELECT id, symptom_name, description, severity_level FROM symptoms`)
	if err != nil {
		return nil, fmt.Errorf("query symptoms: %w", err)
	}
	defer rows.Close()

	var out []Symptom
	for rows.Next() {
		var s Symptom
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Severity); err != nil {
			return nil, fmt.Errorf("scan symptom: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Diseases returns every disease row.
func (k *KnowledgeDB) Diseases(ctx context.Context) ([]Disease, error) {
	rows, err := k.db.QueryContext(ctx,
		`SELECT id, disease_name, description, common_symptoms, prevention, source_document FROM diseases`)
	if err != nil {
		return nil, fmt.Errorf("query diseases: %w", err)
	}
	defer rows.Close()

	var out []Disease
	for rows.Next() {
		var d Disease
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CommonSymptoms, &d.Prevention, &d.SourceDocument); err != nil {
			return nil, fmt.Errorf("scan disease: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Recommendations returns every recommendation row joined with the symptom it
// belongs to.
func (k *KnowledgeDB) Recommendations(ctx context.Context) ([]Recommendation, error) {
	rows, err := k.db.QueryContext(ctx,
		`SELECT r.id, s.symptom_name, r.recommendation_text, r.priority, r.source
		 FROM recommendations r
		 JOIN symptoms s ON r.symptom_id = s.id`)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var out []Recommendation
	for rows.Next() {
		var r Recommendation
		if err := rows.Scan(&r.ID, &r.SymptomName, &r.Text, &r.Priority, &r.Source); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Documents converts the full database contents into indexable documents.
// Each row becomes one document with a source label naming its table, so a
// retrieved answer can cite where the fact came from.
func (k *KnowledgeDB) Documents(ctx context.Context) ([]document.Document, error) {
	symptoms, err := k.Symptoms(ctx)
	if err != nil {
		return nil, err
	}
	diseases, err := k.Diseases(ctx)
	if err != nil {
		return nil, err
	}
	recommendations, err := k.Recommendations(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]document.Document, 0, len(symptoms)+len(diseases)+len(recommendations))
	for _, s := range symptoms {
		docs = append(docs, document.Document{
			Content: fmt.Sprintf("Symptom: %s\nDescription: %s\nSeverity: %s", s.Name, s.Description, s.Severity),
			Metadata: document.Metadata{
				Source: "database - symptoms",
				Type:   "symptom",
				ID:     s.ID,
				Title:  s.Name,
			},
		})
	}
	for _, d := range diseases {
		docs = append(docs, document.Document{
			Content: fmt.Sprintf("Disease: %s\nDescription: %s\nCommon symptoms: %s\nPrevention: %s",
				d.Name, d.Description, d.CommonSymptoms, d.Prevention),
			Metadata: document.Metadata{
				Source: fmt.Sprintf("database - diseases | %s", d.SourceDocument),
				Type:   "disease",
				ID:     d.ID,
				Title:  d.Name,
			},
		})
	}
	for _, r := range recommendations {
		docs = append(docs, document.Document{
			Content: fmt.Sprintf("Recommendation for '%s':\n%s\nPriority: %s", r.SymptomName, r.Text, r.Priority),
			Metadata: document.Metadata{
				Source: fmt.Sprintf("database - recommendations | %s", r.Source),
				Type:   "recommendation",
				ID:     r.ID,
				Title:  r.SymptomName,
			},
		})
	}
	return docs, nil
}
