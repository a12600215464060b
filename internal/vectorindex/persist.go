package vectorindex

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/carefinder/carefinder/internal/domain"
)

// FormatVersion is the on-disk format version written by Save.
const FormatVersion = 1

var magic = [4]byte{'C', 'F', 'V', 'I'}

// Default file names inside the index directory.
const (
	DefaultIndexFile    = "index.bin"
	DefaultMetadataFile = "metadata.json"
)

// Files names the blob and sidecar inside a directory.
type Files struct {
	Index    string
	Metadata string
}

func (f Files) withDefaults() Files {
	if f.Index == "" {
		f.Index = DefaultIndexFile
	}
	if f.Metadata == "" {
		f.Metadata = DefaultMetadataFile
	}
	return f
}

// Metadata is the JSON sidecar written next to the blob.
type Metadata struct {
	IDs          []string `json:"ids"`
	Dimension    int      `json:"dimension"`
	TotalVectors int      `json:"total_vectors"`
	IndexType    string   `json:"index_type"`
	Version      int      `json:"version"`
}

type header struct {
	Magic   [4]byte
	Version uint32
	Dim     uint32
	Count   uint64
}

// Save writes the blob and sidecar into dir. Each file is written to a
// temporary name and renamed, so readers never see a partial file.
func (x *Index) Save(dir string, files Files) error {
	files = files.withDefaults()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, files.Index), x.writeBlob); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	meta := Metadata{
		IDs:          x.ids,
		Dimension:    x.dim,
		TotalVectors: len(x.ids),
		IndexType:    IndexType,
		Version:      FormatVersion,
	}
	if meta.IDs == nil {
		meta.IDs = []string{}
	}
	err := writeAtomic(filepath.Join(dir, files.Metadata), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (x *Index) writeBlob(w io.Writer) error {
	h := header{Magic: magic, Version: FormatVersion, Dim: uint32(x.dim), Count: uint64(len(x.ids))}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	buf := make([]byte, 4*x.dim)
	for row := range len(x.ids) {
		for j, v := range x.data[row*x.dim : (row+1)*x.dim] {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads an index written by Save. Missing files yield an error wrapping
// domain.ErrIndexNotLoaded; a blob that disagrees with its sidecar yields
// domain.ErrIndexCorrupt.
func Load(dir string, files Files) (*Index, error) {
	files = files.withDefaults()

	metaRaw, err := os.ReadFile(filepath.Join(dir, files.Metadata))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s missing", domain.ErrIndexNotLoaded, files.Metadata)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", domain.ErrIndexCorrupt, err)
	}

	f, err := os.Open(filepath.Join(dir, files.Index))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s missing", domain.ErrIndexNotLoaded, files.Index)
		}
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer func() { _ = f.Close() }()

	return readBlob(bufio.NewReader(f), meta)
}

func readBlob(r io.Reader, meta Metadata) (*Index, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", domain.ErrIndexCorrupt, err)
	}
	switch {
	case h.Magic != magic:
		return nil, fmt.Errorf("%w: bad magic %q", domain.ErrIndexCorrupt, h.Magic[:])
	case h.Version != FormatVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrIndexCorrupt, h.Version)
	case h.Dim == 0:
		return nil, fmt.Errorf("%w: zero dimension", domain.ErrIndexCorrupt)
	case int(h.Dim) != meta.Dimension:
		return nil, fmt.Errorf("%w: dimension %d, sidecar says %d", domain.ErrIndexCorrupt, h.Dim, meta.Dimension)
	case h.Count != uint64(len(meta.IDs)):
		return nil, fmt.Errorf("%w: %d vectors, sidecar lists %d ids", domain.ErrIndexCorrupt, h.Count, len(meta.IDs))
	}

	dim := int(h.Dim)
	count := int(h.Count)
	x := &Index{dim: dim, ids: meta.IDs, data: make([]float32, count*dim)}
	buf := make([]byte, 4*dim)
	for row := range count {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrIndexCorrupt, row, err)
		}
		for j := range dim {
			x.data[row*dim+j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
	}
	if _, err := r.Read(make([]byte, 1)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing bytes after %d rows", domain.ErrIndexCorrupt, count)
	}
	return x, nil
}
