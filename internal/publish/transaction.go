package publish

import (
	"path"

	"github.com/mlevkov/pagekeeper/internal/cryptox"
)

// TextFile is a UTF-8 file to create or update (markdown, JSON documents).
type TextFile struct {
	Path    string
	Content string
}

// Asset is a binary file to create or update. Its path is deterministic:
// AssetPath derives it from the content hash, so identical bytes always
// land on the same repository path.
type Asset struct {
	Path string
	Data []byte
}

// Transaction is one atomic publish: every file change in it becomes
// visible in a single commit, or not at all. It is built fresh per publish
// action and discarded after success or failure; no retry state is kept.
type Transaction struct {
	Message string
	Texts   []TextFile
	Assets  []Asset
	Deletes []string
}

// AssetPath returns the deterministic repository path for asset bytes:
// "<dir>/<localHash><ext>". ext is taken from the original filename. The
// hash-derived name means a caller can compute the final path locally,
// before anything is uploaded.
func AssetPath(dir string, data []byte, originalName string) string {
	return path.Join(dir, cryptox.LocalHash(data)+path.Ext(originalName))
}

// dedupeTable maps the client-side content hash of already-handled bytes to
// the repository path chosen for them. Entries are valid only within one
// transaction; there is no cross-transaction or cross-session reuse check
// against already-uploaded remote content.
type dedupeTable map[string]string

// lookup returns the path previously chosen for this content hash, if any.
func (d dedupeTable) lookup(hash string) (string, bool) {
	p, ok := d[hash]
	return p, ok
}

func (d dedupeTable) record(hash, path string) {
	d[hash] = path
}
