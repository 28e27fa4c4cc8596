package nix

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/G-Node/nix-sub001/internal/validation"
	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/nix/store"
	"github.com/G-Node/nix-sub001/types"
	"github.com/google/uuid"
)

// root layout
const (
	nodeData     = "data"
	nodeMetadata = "metadata"
	attrFormat   = "format"
	attrVersion  = "version"
)

// File is the root of a container. It is either purely in-memory (NewFile)
// or bound to a file on disk (Open), in which case Flush persists it.
type File struct {
	root     *storage.Node
	store    *store.Store
	logger   *slog.Logger
	timeFunc func() time.Time
	storeOps []store.Option
}

// FileOption configures a File
type FileOption func(*File)

// WithTimeFunc sets the clock used for created_at and updated_at
func WithTimeFunc(fn func() time.Time) FileOption {
	return func(f *File) {
		f.timeFunc = fn
	}
}

// WithLogger sets the logger used by the file and its store
func WithLogger(logger *slog.Logger) FileOption {
	return func(f *File) {
		f.logger = logger
	}
}

// WithStoreOptions passes options through to the underlying store
func WithStoreOptions(opts ...store.Option) FileOption {
	return func(f *File) {
		f.storeOps = append(f.storeOps, opts...)
	}
}

func newFile(opts []FileOption) *File {
	f := &File{timeFunc: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	return f
}

// NewFile creates an empty in-memory file
func NewFile(opts ...FileOption) *File {
	f := newFile(opts)
	f.root = storage.NewRoot()
	f.initRoot()
	return f
}

// Open opens the container at path. ReadWrite creates the file on the first
// Flush when it does not exist yet; Overwrite discards existing content.
func Open(path string, mode FileMode, opts ...FileOption) (*File, error) {
	f := newFile(opts)
	storeOpts := append([]store.Option{store.WithLogger(f.logger), store.WithTimeFunc(f.timeFunc)}, f.storeOps...)
	s, root, err := store.Open(path, mode, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	f.store = s
	f.root = root

	if format, ok := root.String(attrFormat); ok {
		if format != FormatName {
			return nil, fmt.Errorf("%w: %s is not a %s file (format %q)", types.ErrInvalidDataType, path, FormatName, format)
		}
		f.logger.Debug("opened file", "path", path, "mode", mode.String(), "id", f.ID())
		return f, nil
	}
	if mode == ReadOnly {
		return nil, fmt.Errorf("%w: %s has no %s header", types.ErrUninitializedEntity, path, FormatName)
	}
	f.initRoot()
	f.logger.Debug("initialized file", "path", path, "mode", mode.String(), "id", f.ID())
	return f, nil
}

func (f *File) initRoot() {
	now := f.now()
	_ = f.root.SetAttr(attrFormat, FormatName)
	_ = f.root.SetAttr(attrVersion, FormatVersion)
	_ = f.root.SetAttr(attrID, uuid.NewString())
	_ = f.root.SetAttr(attrCreatedAt, now)
	_ = f.root.SetAttr(attrUpdatedAt, now)
	_, _ = f.root.RequireChild(nodeData)
	_, _ = f.root.RequireChild(nodeMetadata)
}

func (f *File) now() time.Time {
	return f.timeFunc().UTC()
}

// Flush writes the file to disk. In-memory files have nothing to flush.
func (f *File) Flush() error {
	if f.store == nil {
		return nil
	}
	_ = f.root.SetAttr(attrUpdatedAt, f.now())
	return f.store.Save(f.root)
}

// Close flushes writable files and releases the store
func (f *File) Close() error {
	if f.store == nil {
		return nil
	}
	if f.store.Mode() != ReadOnly {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	return f.store.Close()
}

// Path returns the file path, or "" for in-memory files
func (f *File) Path() string {
	if f.store == nil {
		return ""
	}
	return f.store.Path()
}

// ID returns the file identifier
func (f *File) ID() string {
	id, _ := f.root.String(attrID)
	return id
}

// Format returns the format name stored in the file header
func (f *File) Format() string {
	format, _ := f.root.String(attrFormat)
	return format
}

// Version returns the layout version stored in the file header
func (f *File) Version() []uint64 {
	v, _ := f.root.Size(attrVersion)
	return v
}

// CreatedAt returns the file creation time
func (f *File) CreatedAt() time.Time {
	t, _ := f.root.Time(attrCreatedAt)
	return t
}

// UpdatedAt returns the time of the last flush
func (f *File) UpdatedAt() time.Time {
	t, _ := f.root.Time(attrUpdatedAt)
	return t
}

func (f *File) blocks() collection {
	n, _ := f.root.Child(nodeData)
	return collection{node: n, file: f}
}

func (f *File) sections() collection {
	n, _ := f.root.Child(nodeMetadata)
	return collection{node: n, file: f}
}

// CreateBlock adds a new block with a unique name
func (f *File) CreateBlock(name, typ string) (*Block, error) {
	n, err := f.blocks().createNamed(name, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to create block: %w", err)
	}
	for _, sub := range []string{nodeDataArrays, nodeTags, nodeMultiTags, nodeGroups} {
		if _, err := n.CreateChild(sub); err != nil {
			return nil, err
		}
	}
	return newBlock(n, f), nil
}

// Block returns the block with the given name or id
func (f *File) Block(nameOrID string) (*Block, bool) {
	n, ok := f.blocks().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newBlock(n, f), true
}

// HasBlock reports whether a block with the given name or id exists
func (f *File) HasBlock(nameOrID string) bool {
	_, ok := f.blocks().lookup(nameOrID)
	return ok
}

// Blocks returns all blocks ordered by id
func (f *File) Blocks() []*Block {
	return wrapAll(f.blocks(), newBlock)
}

// BlockCount returns the number of blocks
func (f *File) BlockCount() int {
	return f.blocks().count()
}

// DeleteBlock removes a block with everything it owns
func (f *File) DeleteBlock(nameOrID string) bool {
	n, ok := f.blocks().remove(nameOrID)
	if ok {
		f.logger.Debug("deleted block", "id", n.Name())
	}
	return ok
}

// CreateSection adds a root metadata section
func (f *File) CreateSection(name, typ string) (*Section, error) {
	return createSection(f.sections(), name, typ)
}

// Section returns the root section with the given name or id
func (f *File) Section(nameOrID string) (*Section, bool) {
	n, ok := f.sections().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newSection(n, f), true
}

// HasSection reports whether a root section with the given name or id exists
func (f *File) HasSection(nameOrID string) bool {
	_, ok := f.sections().lookup(nameOrID)
	return ok
}

// Sections returns the root sections
func (f *File) Sections() []*Section {
	return wrapAll(f.sections(), newSection)
}

// SectionCount returns the number of root sections
func (f *File) SectionCount() int {
	return f.sections().count()
}

// DeleteSection removes a root section with its subsections and properties
func (f *File) DeleteSection(nameOrID string) bool {
	_, ok := f.sections().remove(nameOrID)
	return ok
}

// Validate checks the header and every entity in the file
func (f *File) Validate() validation.Result {
	conds := []validation.Condition{
		validation.Must(f, (*File).Format, validation.Equals(FormatName), "file format is not set correctly"),
		validation.Must(f, (*File).Version, validation.NotEmpty[uint64](), "file version is not set"),
		validation.Must(f, (*File).CreatedAt, validation.NotZeroTime, "date of creation is not set"),
	}
	for _, b := range f.Blocks() {
		conds = append(conds, validation.Nested(ValidateBlock(b)))
	}
	for _, s := range f.Sections() {
		conds = append(conds, validation.Nested(ValidateSection(s)))
	}
	return validation.Validate(conds...)
}
