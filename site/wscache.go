package site

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-cached-table/record"
)

// WsCacheEntry is a cached web service response.
type WsCacheEntry struct {
	ID          string
	Data        string
	Key         string
	Component   string
	ComponentID *int64
	// ExpirationTime is a unix timestamp in milliseconds. Zero marks an
	// invalidated entry.
	ExpirationTime int64
}

// Expired reports whether the entry should be refetched at now.
func (e WsCacheEntry) Expired(now time.Time) bool {
	return now.UnixMilli() > e.ExpirationTime
}

// WsCacheEntryID derives the cache entry ID of a web service call from its
// method name and parameters.
func WsCacheEntryID(method string, params any) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return uuid.NewMD5(uuid.NameSpaceOID, append([]byte(method+":"), data...)).String(), nil
}

// PutWsCacheEntry stores entry, replacing any entry with the same ID.
func (s *Site) PutWsCacheEntry(ctx context.Context, entry WsCacheEntry) error {
	row := entry.row()
	err := s.wsCache.Insert(ctx, row)
	if !record.IsDuplicateKey(err) {
		return err
	}
	delete(row, "id")
	return s.wsCache.Update(ctx, row, record.Filter{"id": entry.ID})
}

// GetWsCacheEntry returns the entry stored under id, expired or not.
func (s *Site) GetWsCacheEntry(ctx context.Context, id string) (WsCacheEntry, error) {
	row, err := s.wsCache.GetOneByPrimaryKey(ctx, record.Key{"id": id})
	if err != nil {
		return WsCacheEntry{}, err
	}
	return entryFromRow(row), nil
}

func (e WsCacheEntry) row() record.Row {
	row := record.Row{
		"id":             e.ID,
		"data":           nullString(e.Data),
		"key":            nullString(e.Key),
		"component":      nullString(e.Component),
		"componentId":    nil,
		"expirationTime": e.ExpirationTime,
	}
	if e.ComponentID != nil {
		row["componentId"] = *e.ComponentID
	}
	return row
}

func entryFromRow(row record.Row) WsCacheEntry {
	e := WsCacheEntry{}
	e.ID, _ = row["id"].(string)
	e.Data, _ = row["data"].(string)
	e.Key, _ = row["key"].(string)
	e.Component, _ = row["component"].(string)
	if id, ok := row["componentId"].(int64); ok {
		e.ComponentID = &id
	}
	e.ExpirationTime, _ = row["expirationTime"].(int64)
	return e
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
