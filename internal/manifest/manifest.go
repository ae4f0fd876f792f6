package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/iconbatch/internal/icon"
)

const (
	// Dir is the manifest's directory relative to the pack root.
	Dir = "textures"

	// FileName is the manifest's file name.
	FileName = "item_texture.json"

	// TextureDataKey is the top-level key holding the icon entries.
	TextureDataKey = "texture_data"

	// IconDir is the pack-relative directory that entries point into.
	IconDir = "textures/items/"
)

// Entry is the value stored for each icon name.
type Entry struct {
	Textures string `json:"textures"`
}

// EntryFor returns the manifest entry for an icon named outputName.
func EntryFor(outputName string) Entry {
	return Entry{Textures: IconDir + icon.FileName(outputName)}
}

// MergeResult reports what Merge did.
type MergeResult struct {
	// Added counts names inserted by this merge.
	Added int `json:"added"`

	// Skipped counts names that were already present and left untouched.
	Skipped int `json:"skipped"`

	// Reset is true when an existing manifest could not be read or parsed
	// and was replaced by a fresh one.
	Reset bool `json:"reset,omitempty"`
}

// Manifest is an in-memory item_texture.json document.
type Manifest struct {
	// fields holds every top-level key except texture_data, verbatim.
	fields map[string]json.RawMessage

	// textures holds the texture_data entries, values verbatim.
	textures map[string]json.RawMessage
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{
		fields:   make(map[string]json.RawMessage),
		textures: make(map[string]json.RawMessage),
	}
}

// Path returns the manifest location for packRoot.
func Path(packRoot string) string {
	return filepath.Join(packRoot, Dir, FileName)
}

// Load reads the manifest at path. It always returns a usable manifest: a
// missing file yields an empty one with a nil error, while an unreadable or
// malformed file yields an empty one together with the error that caused
// the reset.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return New(), fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return New(), fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest document. A texture_data value that is not an
// object is replaced by an empty one.
func Parse(data []byte) (*Manifest, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return nil, err
	}

	m := New()
	for k, v := range top {
		if k == TextureDataKey {
			continue
		}
		m.fields[k] = v
	}

	if raw, ok := top[TextureDataKey]; ok {
		var textures map[string]json.RawMessage
		if err := json.Unmarshal(raw, &textures); err == nil && textures != nil {
			m.textures = textures
		}
	}
	return m, nil
}

// Has reports whether name already has an entry.
func (m *Manifest) Has(name string) bool {
	_, ok := m.textures[name]
	return ok
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.textures)
}

// Add inserts the default entry for name unless one exists. It returns
// false when the name was already present.
func (m *Manifest) Add(name string) bool {
	if m.Has(name) {
		return false
	}
	raw, _ := json.Marshal(EntryFor(name))
	m.textures[name] = raw
	return true
}

// Marshal serializes the manifest with 2-space indentation and keys in
// ascending order, followed by a newline.
func (m *Manifest) Marshal() ([]byte, error) {
	doc := make(map[string]any, len(m.fields)+1)
	for k, v := range m.fields {
		doc[k] = v
	}
	// encoding/json writes map keys in sorted order, which keeps
	// texture_data sorted without extra bookkeeping.
	doc[TextureDataKey] = m.textures

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the manifest to path, creating its directory if needed. The
// file is replaced atomically.
func (m *Manifest) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := atomicwriter.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest to %s: %w", path, err)
	}
	return nil
}

// Merge registers names in the manifest of packRoot. Existing entries are
// counted as skipped and never modified. When names is empty nothing is
// read or written.
//
// Only a failure to write the manifest is returned as an error; read and
// parse failures reset the manifest and are reported via MergeResult.Reset.
func Merge(packRoot string, names []string) (MergeResult, error) {
	var result MergeResult
	if len(names) == 0 {
		return result, nil
	}

	path := Path(packRoot)
	m, loadErr := Load(path)
	result.Reset = loadErr != nil

	for _, name := range names {
		if m.Add(name) {
			result.Added++
		} else {
			result.Skipped++
		}
	}

	if err := m.Save(path); err != nil {
		return result, err
	}
	return result, nil
}
