package docstore

import "github.com/standardbeagle/wspace/internal/wtypes"

// Document is the unit the store manages for one open path: its content,
// the version the client last pushed, which interned source it was parsed
// as, the parse outcome, and whether it is only open because a background
// scan opened it.
type Document struct {
	Content         string
	Version         int32
	SourceIndex     wtypes.SourceIndex
	Outcome         wtypes.ParseOutcome
	OpenedByScanner bool
	ProjectKey      wtypes.ProjectKey

	// PersistCache records whether this document's open requested that its
	// parse-acceleration helper be kept in the cache across edits. Carried
	// forward by every reparse so the workspace knows, without consulting
	// the original open call again, whether to pay the cache's lock
	// contention on this document's behalf.
	PersistCache bool
}

// clone returns a shallow copy. Documents are treated as immutable once
// published to the store; every mutation produces a new *Document rather
// than editing one in place, so a reader that loaded a pointer never
// observes a half-written value.
func (d *Document) clone() *Document {
	c := *d
	c.Outcome.Diagnostics = append([]wtypes.Diagnostic(nil), d.Outcome.Diagnostics...)
	return &c
}
