package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Hash points at a blob for files
// and at a subtree for directories.
type TreeEntry struct {
	Name  string
	IsDir bool
	Mode  string
	Hash  Hash
}

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// Signature is an author or committer identity with a timestamp.
type Signature struct {
	Name      string
	Email     string
	Timestamp int64
}

// String renders the identity as "Name <email>".
func (s Signature) String() string {
	return s.Name + " <" + s.Email + ">"
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Signature string // optional hex signature (e.g. merge provenance)
	Message   string
}

// TagObj preserves annotated tag payload while tracking the referenced
// object so graph traversal can dereference the tag cheaply.
type TagObj struct {
	TargetHash Hash
	Data       []byte
}
