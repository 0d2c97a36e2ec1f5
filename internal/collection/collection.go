// Package collection implements the codec between an opaque logical
// collection id and its (type, sourceId) tenant pair. Multitenant backends
// route every logical collection through one fixed physical collection and
// enforce isolation with a server-side filter derived from this pair.
//
// Two textual encodings exist and both must decode:
//
//	current: vh:<type>:<sourceId>        (sourceId may contain ':')
//	legacy:  vecthare_<type>_<sourceId>  (sourceId may contain '_')
//
// Only the first two delimiters are significant. Any other shape decodes to
// {chat, <entire input>} — Decode is total and never rejects an id.
package collection

import (
	"fmt"
	"strings"
)

// Well-known tenant types. SourceID semantics depend on the type: a chat id,
// a file path hash, or a world/lorebook name.
const (
	// TypeChat scopes a collection to one chat. Also the fallback type for
	// ids that match neither encoding.
	TypeChat = "chat"
	// TypeFile scopes a collection to one attached document.
	TypeFile = "file"
	// TypeWorld scopes a collection to one lorebook.
	TypeWorld = "world"
)

// currentPrefix is the first segment of the current encoding.
const currentPrefix = "vh"

// legacyPrefix is the first segment of the legacy encoding.
const legacyPrefix = "vecthare"

// Ref is the decoded tenant pair behind a logical collection id.
type Ref struct {
	// Type is the tenant type (chat, file, world, ...).
	Type string
	// SourceID identifies the tenant within its type.
	SourceID string
}

// Encode builds a current-format collection id from a tenant pair.
func Encode(typ, sourceID string) string {
	return fmt.Sprintf("%s:%s:%s", currentPrefix, typ, sourceID)
}

// Decode parses a collection id into its tenant pair. It is a total
// function: ids matching neither the current nor the legacy grammar decode
// to {TypeChat, id} rather than failing.
func Decode(id string) Ref {
	if parts := strings.SplitN(id, ":", 3); len(parts) == 3 && parts[0] == currentPrefix {
		return Ref{Type: parts[1], SourceID: parts[2]}
	}
	if parts := strings.SplitN(id, "_", 3); len(parts) == 3 && parts[0] == legacyPrefix {
		return Ref{Type: parts[1], SourceID: parts[2]}
	}
	return Ref{Type: TypeChat, SourceID: id}
}
