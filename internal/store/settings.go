package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fleetrent/fleetrent/internal/settings"
)

// ReadSettings returns the stored record for topic, or an
// errdefs-classified error (NotFound when the topic was never written).
func (c *Client) ReadSettings(ctx context.Context, topic string) (settings.Record, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT fields, updated_at, updated_by FROM app_settings WHERE topic = $1`, topic)

	var payload []byte
	rec := settings.Record{Topic: topic}
	if err := row.Scan(&payload, &rec.UpdatedAt, &rec.UpdatedBy); err != nil {
		return settings.Record{}, classify("read settings "+topic, err)
	}
	if err := json.Unmarshal(payload, &rec.Fields); err != nil {
		return settings.Record{}, fmt.Errorf("decode settings %s: %w", topic, err)
	}
	return rec, nil
}

// WriteSettings upserts the record for topic. Settings rows are never
// deleted, only overwritten.
func (c *Client) WriteSettings(ctx context.Context, topic string, rec settings.Record) error {
	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode settings %s: %w", topic, err)
	}

	_, err = c.pool.Exec(ctx,
		`INSERT INTO app_settings (topic, fields, updated_at, updated_by)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (topic) DO UPDATE
		 SET fields = EXCLUDED.fields,
		     updated_at = EXCLUDED.updated_at,
		     updated_by = EXCLUDED.updated_by`,
		topic, payload, rec.UpdatedAt, rec.UpdatedBy)
	if err != nil {
		return classify("write settings "+topic, err)
	}
	return nil
}
