// Package manifest maintains the resource pack's item texture manifest,
// textures/item_texture.json, which maps icon names to texture paths:
//
//	{
//	  "texture_data": {
//	    "chest": { "textures": "textures/items/chest.icon.png" }
//	  }
//	}
//
// Merging is idempotent and first-writer-wins: an entry that already exists
// is never modified, new entries are appended, and the whole texture_data
// object is re-sorted by key on every write. Keys and values this tool does
// not know about are carried through unchanged.
//
// Manifest files are hand-edited by pack authors, so they are read as JSONC
// (comments and trailing commas allowed) via github.com/tidwall/jsonc. A file
// that still fails to parse is treated as empty rather than aborting a run.
package manifest
