package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flocklens/flocklens/internal/core"
)

// ErrCredentialNotFound is returned when a label matches no stored credential.
var ErrCredentialNotFound = errors.New("credential not found")

// ListCredentials returns every stored credential, oldest first.
func (s *Store) ListCredentials(ctx context.Context) ([]core.CredentialRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, label, token, secret, created_at FROM credentials ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var records []core.CredentialRecord
	for rows.Next() {
		var (
			rec       core.CredentialRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Label, &rec.Token, &rec.Secret, &createdAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	return records, nil
}

// AddCredential stores one credential pair under a unique label.
func (s *Store) AddCredential(ctx context.Context, label, token, secret string) (*core.CredentialRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return nil, errors.New("credential label is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("credential token is required")
	}

	createdAt := time.Now().UTC()
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO credentials (label, token, secret, created_at) VALUES (?, ?, ?, ?)`,
		label, token, secret, createdAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("add credential %q: %w", label, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("add credential %q: %w", label, err)
	}

	return &core.CredentialRecord{
		ID:        id,
		Label:     label,
		Token:     token,
		Secret:    secret,
		CreatedAt: createdAt,
	}, nil
}

// RemoveCredential deletes the credential with the given label.
func (s *Store) RemoveCredential(ctx context.Context, label string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM credentials WHERE label = ?`, strings.TrimSpace(label))
	if err != nil {
		return fmt.Errorf("remove credential %q: %w", label, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove credential %q: %w", label, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrCredentialNotFound, label)
	}
	return nil
}

// GetCredential returns one credential by label.
func (s *Store) GetCredential(ctx context.Context, label string) (*core.CredentialRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	var (
		rec       core.CredentialRecord
		createdAt int64
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, label, token, secret, created_at FROM credentials WHERE label = ?`,
		strings.TrimSpace(label)).
		Scan(&rec.ID, &rec.Label, &rec.Token, &rec.Secret, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCredentialNotFound, label)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", label, err)
	}

	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &rec, nil
}
