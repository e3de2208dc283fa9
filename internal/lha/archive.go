// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package lha

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"
)

// FS presents the members of an LHA/LZH archive as an fs.FS. Members
// compressed with -lh0- (stored) are exposed unmodified; -lh4- through
// -lh7- are decompressed on demand. Any other method identifier causes
// that member to be skipped with a logged warning rather than failing
// the whole archive, the same way a single unreadable StuffIt fork is
// skipped rather than aborting the whole volume.
type FS struct {
	root *entry
}

// New walks disk's member headers and builds an FS over them.
func New(disk io.ReaderAt) (*FS, error) {
	root := &entry{name: ".", isdir: true}

	var offset int64
	for {
		hdr, err := readMemberHeader(disk, offset)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lha: reading member at offset %d: %w", offset, err)
		}

		name := normalizeName(hdr.name)
		isDir := strings.HasSuffix(hdr.name, "/") || strings.HasSuffix(hdr.name, `\`) || hdr.attribute&0x10 != 0

		if isDir {
			ensureDir(root, name, hdr.modTime)
		} else if err := attachFile(root, name, disk, offset, hdr); err != nil {
			slog.Warn("LHA header read error", "err", err, "offset", offset)
		}

		offset += hdr.headerBytes + hdr.packedSize
	}

	return &FS{root: root}, nil
}

func attachFile(root *entry, name string, disk io.ReaderAt, offset int64, hdr *memberHeader) error {
	dataOffset := offset + hdr.headerBytes

	e := &entry{
		name:    path.Base(name),
		modTime: hdr.modTime,
		size:    hdr.originalSize,
	}

	switch {
	case hdr.method == "-lh0-":
		e.open = func() (io.ReadCloser, error) {
			return io.NopCloser(io.NewSectionReader(disk, dataOffset, hdr.packedSize)), nil
		}
	default:
		method, ok := MethodByID(hdr.method)
		if !ok {
			return fmt.Errorf("%s: %w", hdr.method, ErrMethod)
		}
		e.open = func() (io.ReadCloser, error) {
			packed := io.NewSectionReader(disk, dataOffset, hdr.packedSize)
			src := func(dest []byte) (int, error) { return packed.Read(dest) }
			return io.NopCloser(NewReader(src, method, hdr.originalSize, hdr.dataCRC, hdr.hasCRC)), nil
		}
	}

	attach(root, name, e)
	return nil
}

// ensureDir walks/creates the implicit directory chain down to name,
// setting its timestamp if this is the first time it's mentioned.
func ensureDir(root *entry, name string, modTime time.Time) *entry {
	if name == "." {
		root.modTime = modTime
		return root
	}

	at := root
	for _, c := range strings.Split(name, "/") {
		at = childOrCreate(at, c, true, modTime)
	}
	return at
}

// attach places leaf under name, creating any missing parent
// directories implicitly along the way.
func attach(root *entry, name string, leaf *entry) {
	dir, base := path.Split(name)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = "."
	}
	parent := ensureDir(root, dir, time.Time{})

	leaf.name = base
	if existing, ok := parent.childMap[base]; ok {
		*existing = *leaf
		return
	}
	if parent.childMap == nil {
		parent.childMap = make(map[string]*entry)
	}
	parent.childMap[base] = leaf
	parent.childSlice = append(parent.childSlice, leaf)
}

func childOrCreate(parent *entry, name string, isDir bool, modTime time.Time) *entry {
	if parent.childMap == nil {
		parent.childMap = make(map[string]*entry)
	}
	if c, ok := parent.childMap[name]; ok {
		if isDir && !c.isdir {
			c.isdir = true
		}
		return c
	}
	c := &entry{name: name, isdir: isDir, modTime: modTime}
	parent.childMap[name] = c
	parent.childSlice = append(parent.childSlice, c)
	return c
}

// normalizeName rewrites the backslash path separators LHA archives
// created on DOS/Windows tend to use, and strips any trailing slash
// used to flag a directory entry.
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimSuffix(name, "/")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "."
	}
	return path.Clean(name)
}

type entry struct {
	name     string
	isdir    bool
	modTime  time.Time
	size     int64
	open     func() (io.ReadCloser, error)
	childMap map[string]*entry
	childSlice []*entry
}

func (fsys *FS) Open(name string) (fs.File, error) {
	e, err := fsys.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if e.isdir {
		return &openDir{s: stat{e: e}}, nil
	}
	return &openFile{s: stat{e: e}}, nil
}

func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	e, err := fsys.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return stat{e: e}, nil
}

func (fsys *FS) lookup(name string) (*entry, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	e := fsys.root
	if name == "." {
		return e, nil
	}
	for _, c := range strings.Split(name, "/") {
		child, ok := e.childMap[c]
		if !ok {
			return nil, fs.ErrNotExist
		}
		e = child
	}
	return e, nil
}

type stat struct{ e *entry }

func (s stat) Name() string { return s.e.name }
func (s stat) IsDir() bool   { return s.e.isdir }
func (s stat) Size() int64  { return s.e.size }

func (s stat) Mode() fs.FileMode {
	if s.e.isdir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (s stat) Type() fs.FileMode        { return s.Mode().Type() }
func (s stat) ModTime() time.Time       { return s.e.modTime }
func (s stat) Sys() any                 { return nil }
func (s stat) Info() (fs.FileInfo, error) { return s, nil }

type openFile struct {
	s stat
	r io.ReadCloser
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.s, nil }

func (f *openFile) Read(p []byte) (int, error) {
	if f.r == nil {
		var err error
		f.r, err = f.s.e.open()
		if err != nil {
			return 0, err
		}
	}
	return f.r.Read(p)
}

func (f *openFile) Close() error {
	if f.r != nil {
		return f.r.Close()
	}
	return nil
}

type openDir struct {
	s stat
	i int
}

func (f *openDir) Stat() (fs.FileInfo, error) { return f.s, nil }
func (f *openDir) Read(p []byte) (int, error) { return 0, io.EOF }
func (f *openDir) Close() error                { return nil }

func (f *openDir) ReadDir(count int) ([]fs.DirEntry, error) {
	children := f.s.e.childSlice
	sorted := make([]*entry, len(children))
	copy(sorted, children)
	slices.SortFunc(sorted, func(a, b *entry) int { return strings.Compare(a.name, b.name) })

	remaining := len(sorted) - f.i
	if remaining == 0 {
		if count > 0 {
			return nil, io.EOF
		}
		return nil, nil
	}
	if count > 0 && remaining > count {
		remaining = count
	}

	list := make([]fs.DirEntry, remaining)
	for i := range list {
		list[i] = stat{e: sorted[f.i+i]}
	}
	f.i += remaining
	return list, nil
}
