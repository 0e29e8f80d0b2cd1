package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// ExportFormat represents the JSON structure for backend snapshots.
// The CLI uses it to keep an in-memory cache between runs.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single stored key: cache entry, popularity counter or stat.
type ExportEntry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	ExpiresAt string `json:"expires_at,omitempty"` // RFC 3339; empty = no expiry
}

// Exporter writes MemoryBackend snapshots.
type Exporter struct {
	backend *MemoryBackend
}

// NewExporter creates a new snapshot exporter.
func NewExporter(backend *MemoryBackend) *Exporter {
	return &Exporter{backend: backend}
}

// Export writes the live (non-expired) keys to w in JSON format.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	export := ExportFormat{
		Version:    "1.0",
		ExportedAt: e.backend.now().UTC().Format(time.RFC3339),
		Entries:    e.backend.snapshot(),
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the snapshot to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(f, metadata)
}

// Importer loads snapshots into a MemoryBackend.
type Importer struct {
	backend *MemoryBackend
}

// NewImporter creates a new snapshot importer.
func NewImporter(backend *MemoryBackend) *Importer {
	return &Importer{backend: backend}
}

// Import reads a snapshot and restores every entry that has not expired
// since it was written. Remaining lifetimes are preserved.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	now := i.backend.now()
	for _, entry := range export.Entries {
		var ttl time.Duration
		if entry.ExpiresAt != "" {
			exp, err := time.Parse(time.RFC3339Nano, entry.ExpiresAt)
			if err != nil {
				result.Failed++
				continue
			}
			ttl = exp.Sub(now)
			if ttl <= 0 {
				result.Expired++
				continue
			}
		}
		if err := i.backend.Set(context.Background(), entry.Key, entry.Value, ttl); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports a snapshot from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Expired  int
	Failed   int
}

// snapshot returns the live entries sorted by key.
func (m *MemoryBackend) snapshot() []ExportEntry {
	now := m.now()

	m.mu.RLock()
	entries := make([]ExportEntry, 0, len(m.entries))
	for k, e := range m.entries {
		if e.expired(now) {
			continue
		}
		entry := ExportEntry{Key: k, Value: e.value}
		if !e.expiresAt.IsZero() {
			entry.ExpiresAt = e.expiresAt.UTC().Format(time.RFC3339Nano)
		}
		entries = append(entries, entry)
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}
