package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Export document identity. Bump DocumentVersion whenever the shape of
// Document changes.
const (
	DocumentType    = "TerminalNotebookTabs"
	DocumentVersion = 1
)

// Document is the self-describing export format.
type Document struct {
	Type    string  `json:"type"`
	Version int     `json:"version"`
	Tabs    []Entry `json:"tabs"`
}

// ImportTab is one tab offered for import. ID is informational only; the
// registry always assigns a fresh one.
type ImportTab struct {
	Label string
	ID    string
}

// Encode renders the document as indented JSON.
func (d Document) Encode() ([]byte, error) {
	if d.Tabs == nil {
		d.Tabs = []Entry{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseDocument validates an export document and returns its tabs. Any
// deviation from the expected shape fails with ErrImportFormat and yields no
// tabs at all.
func ParseDocument(data []byte) ([]ImportTab, error) {
	var raw struct {
		Type    *string         `json:"type"`
		Version *int            `json:"version"`
		Tabs    json.RawMessage `json:"tabs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	if raw.Type == nil || *raw.Type != DocumentType {
		return nil, fmt.Errorf("%w: type must be %q", ErrImportFormat, DocumentType)
	}
	if raw.Version != nil && (*raw.Version < 1 || *raw.Version > DocumentVersion) {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrImportFormat, *raw.Version)
	}
	trimmed := bytes.TrimSpace(raw.Tabs)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: tabs must be a list", ErrImportFormat)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	tabs := make([]ImportTab, 0, len(items))
	for i, item := range items {
		var tab struct {
			Label *string `json:"label"`
			ID    any     `json:"id"`
		}
		if err := json.Unmarshal(item, &tab); err != nil {
			return nil, fmt.Errorf("%w: tab %d: %v", ErrImportFormat, i, err)
		}
		if tab.Label == nil || !ValidLabel(*tab.Label) {
			return nil, fmt.Errorf("%w: tab %d has no label", ErrImportFormat, i)
		}
		id, _ := tab.ID.(string)
		tabs = append(tabs, ImportTab{Label: *tab.Label, ID: id})
	}
	return tabs, nil
}

// ImportTabsFrom converts entries into import candidates.
func ImportTabsFrom(entries []Entry) []ImportTab {
	tabs := make([]ImportTab, len(entries))
	for i, e := range entries {
		tabs[i] = ImportTab{Label: e.Label, ID: e.ID}
	}
	return tabs
}
