package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Document type constants.
const (
	DocumentTypeImage = "image"
	DocumentTypeOther = "other"
)

var ErrDocumentNotFound = errors.New("document not found")

type Document struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Name      string
	URL       string
	Type      string
	Size      int64
	CreatedAt time.Time
}

type CreateDocumentParams struct {
	LeadID uuid.UUID
	Name   string
	URL    string
	Type   string
	Size   int64
}

func (r *Repository) CreateDocument(ctx context.Context, params CreateDocumentParams) (Document, error) {
	var doc Document
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (lead_id, name, url, type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, lead_id, name, url, type, size, created_at
	`, params.LeadID, params.Name, params.URL, params.Type, params.Size).Scan(
		&doc.ID,
		&doc.LeadID,
		&doc.Name,
		&doc.URL,
		&doc.Type,
		&doc.Size,
		&doc.CreatedAt,
	)
	return doc, err
}

func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	var doc Document
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, name, url, type, size, created_at
		FROM documents WHERE id = $1
	`, id).Scan(
		&doc.ID,
		&doc.LeadID,
		&doc.Name,
		&doc.URL,
		&doc.Type,
		&doc.Size,
		&doc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	return doc, err
}

func (r *Repository) ListDocuments(ctx context.Context, leadID uuid.UUID) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, name, url, type, size, created_at
		FROM documents
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		if err := rows.Scan(
			&doc.ID,
			&doc.LeadID,
			&doc.Name,
			&doc.URL,
			&doc.Type,
			&doc.Size,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return docs, nil
}

func (r *Repository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
