package cborstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"

	"github.com/idilsaglam/tada/internal/model"
)

// CBOR-backed storage. Single file holding an array of {completed, description}
// maps, rewritten whole on every save. No locking: two processes pointed at the
// same file will overwrite each other.

// DefaultPath is used when no data path is configured.
const DefaultPath = ".todo.dat"

var (
	ErrStorageWrite   = errors.New("storage write failed")
	ErrStorageCorrupt = errors.New("storage corrupt")
)

// WriteError means the list could not be written to Path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string        { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error        { return e.Err }
func (e *WriteError) Is(target error) bool { return target == ErrStorageWrite }

// CorruptError means Path exists and is non-empty but does not decode as a list.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string        { return fmt.Sprintf("corrupt store %s: %v", e.Path, e.Err) }
func (e *CorruptError) Unwrap() error        { return e.Err }
func (e *CorruptError) Is(target error) bool { return target == ErrStorageCorrupt }

// Gateway translates between an item sequence and its file representation.
type Gateway struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// New returns a Gateway with deterministic encoding.
func New() *Gateway {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	dec, err := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor dec mode: %v", err))
	}
	return &Gateway{enc: enc, dec: dec}
}

// ResolvePath expands a leading "~" to the home directory and makes the
// result absolute.
func ResolvePath(p string) (string, error) {
	if p == "" {
		p = DefaultPath
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	return abs, nil
}

// Load reads the list stored at path. A missing or empty file is the
// first-run state and yields an empty list.
func (g *Gateway) Load(path string) ([]model.Item, error) {
	p, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(b) == 0 {
		return []model.Item{}, nil
	}
	items, err := g.Decode(b)
	if err != nil {
		return nil, &CorruptError{Path: p, Err: err}
	}
	return items, nil
}

// Save overwrites the file at path with the full list. The bytes go to a
// temp file in the same directory first, so a failed save leaves the
// previous contents in place. The directory must already exist.
func (g *Gateway) Save(items []model.Item, path string) error {
	p, err := ResolvePath(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	b, err := g.Encode(items)
	if err != nil {
		return &WriteError{Path: p, Err: err}
	}
	if err := writeFile(p, b); err != nil {
		return &WriteError{Path: p, Err: err}
	}
	return nil
}

// Encode serializes items as a CBOR array. Descriptions must be valid UTF-8:
// the decoder rejects invalid text strings, so such a file could not be read
// back.
func (g *Gateway) Encode(items []model.Item) ([]byte, error) {
	if items == nil {
		items = []model.Item{}
	}
	for i, it := range items {
		if !utf8.ValidString(it.Description) {
			return nil, fmt.Errorf("item %d: description is not valid UTF-8", i)
		}
	}
	b, err := g.enc.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal: %w", err)
	}
	return b, nil
}

// record is the stored shape of an item. Pointer fields tell a missing key
// apart from a zero value.
type record struct {
	Completed   *bool   `cbor:"completed"`
	Description *string `cbor:"description"`
}

// CBOR major type 4 (array) in the top three bits of the initial byte.
const majorArray = 4

// Decode parses a CBOR array of items. Every record needs both keys; unknown
// map keys are ignored.
func (g *Gateway) Decode(b []byte) ([]model.Item, error) {
	if len(b) == 0 || b[0]>>5 != majorArray {
		return nil, errors.New("top level is not an array")
	}
	var recs []record
	if err := g.dec.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("cbor unmarshal: %w", err)
	}
	items := make([]model.Item, 0, len(recs))
	for i, r := range recs {
		if r.Completed == nil || r.Description == nil {
			return nil, fmt.Errorf("record %d: missing completed or description", i)
		}
		items = append(items, model.Item{Completed: *r.Completed, Description: *r.Description})
	}
	return items, nil
}

func writeFile(path string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
