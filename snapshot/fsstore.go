package snapshot

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// manifestName is the msgpack manifest file written alongside each snapshot.
const manifestName = "manifest.msgpack"

// treeDirName holds the captured file tree within a snapshot directory.
const treeDirName = "tree"

// skipDirs are workspace directories never captured into a snapshot.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// manifest is the on-disk snapshot record, msgpack-encoded.
type manifest struct {
	Info  Info         `msgpack:"info"`
	Files []fileRecord `msgpack:"files"`
}

// fileRecord is one captured file within a snapshot.
type fileRecord struct {
	// Path is the workspace-relative path.
	Path string `msgpack:"path"`
	// Size is the captured size in bytes.
	Size int64 `msgpack:"size"`
	// Mode is the file mode at capture time.
	Mode uint32 `msgpack:"mode"`
}

// FSStore keeps snapshots as plain file trees under a root directory, one
// subdirectory per snapshot id, each with a msgpack manifest.
type FSStore struct {
	root    string
	workdir string
}

// NewFSStore creates a filesystem snapshot store.
// root is where snapshots are kept; workdir is the workspace captured and
// restored. root may live inside workdir; it is never captured.
func NewFSStore(root, workdir string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, wrapError("create", "", err)
	}
	return &FSStore{root: root, workdir: workdir}, nil
}

// Create captures the workspace under a new snapshot id.
func (s *FSStore) Create(ctx context.Context, label string) (*Info, error) {
	info := &Info{
		ID:        uuid.New().String(),
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}

	dir := filepath.Join(s.root, info.ID)
	treeDir := filepath.Join(dir, treeDirName)
	if err := os.MkdirAll(treeDir, 0o755); err != nil {
		return nil, wrapError("create", info.ID, err)
	}

	var files []fileRecord
	err := filepath.WalkDir(s.workdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(s.workdir, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			// Never capture snapshots into snapshots.
			if sameFile(path, s.root) {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(treeDir, rel), 0o755)
		}

		fi, statErr := d.Info()
		if statErr != nil {
			return statErr
		}
		if err := copyFile(path, filepath.Join(treeDir, rel), fi.Mode()); err != nil {
			return err
		}
		files = append(files, fileRecord{Path: rel, Size: fi.Size(), Mode: uint32(fi.Mode())})
		return nil
	})
	if err != nil {
		return nil, wrapError("create", info.ID, err)
	}

	m := manifest{Info: *info, Files: files}
	encoded, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, wrapError("create", info.ID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), encoded, 0o644); err != nil {
		return nil, wrapError("create", info.ID, err)
	}

	return info, nil
}

// Restore rewrites the workspace from the snapshot with the given id.
// Files are copied back in manifest order; paths that appeared after the
// snapshot are left in place (restore is additive-overwrite).
func (s *FSStore) Restore(ctx context.Context, id string) error {
	dir := filepath.Join(s.root, id)
	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return wrapError("restore", id, err)
	}

	var m manifest
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return &StoreError{Kind: ErrCorruptManifest, Op: "restore", ID: id, Err: err}
	}

	treeDir := filepath.Join(dir, treeDirName)
	for _, f := range m.Files {
		if ctx.Err() != nil {
			return wrapError("restore", id, ctx.Err())
		}
		dst := filepath.Join(s.workdir, f.Path)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return wrapError("restore", id, err)
		}
		if err := copyFile(filepath.Join(treeDir, f.Path), dst, fs.FileMode(f.Mode)); err != nil {
			return wrapError("restore", id, err)
		}
	}

	return nil
}

// List returns the Info of every stored snapshot, newest first.
func (s *FSStore) List() ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, wrapError("list", "", err)
	}

	var infos []Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.root, e.Name(), manifestName))
		if err != nil {
			continue // not a snapshot directory
		}
		var m manifest
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			continue
		}
		infos = append(infos, m.Info)
	}

	for i := 0; i < len(infos); i++ {
		for j := i + 1; j < len(infos); j++ {
			if infos[j].CreatedAt.After(infos[i].CreatedAt) {
				infos[i], infos[j] = infos[j], infos[i]
			}
		}
	}
	return infos, nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// sameFile reports whether two paths name the same location after cleaning.
func sameFile(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false
	}
	return aa == bb || strings.HasPrefix(aa+string(filepath.Separator), bb+string(filepath.Separator))
}

// Verify FSStore implements the store boundary.
var _ Store = (*FSStore)(nil)
