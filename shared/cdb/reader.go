package cdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	gocdb "github.com/jbarham/go-cdb"
)

// Reader gives read-only access to a constant database.
type Reader struct {
	// mu serializes lookups: the underlying handle keeps its probe state
	// between FindStart and FindNext.
	mu     sync.Mutex
	db     *gocdb.Cdb
	r      io.ReaderAt
	size   int64
	closer io.Closer
}

// Open opens the database file at path. The header is validated before
// Open returns.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}

	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f

	return r, nil
}

// NewReader reads a database of the given size from r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	if size < headerSize || size > maxOffset {
		return nil, fmt.Errorf("%w: invalid size %d", ErrCorrupt, size)
	}

	var header [headerSize]byte
	if _, err := r.ReadAt(header[:], 0); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := 0; i < 256; i++ {
		pos, slots := readPair(header[i*8:])
		if pos < headerSize || int64(pos)+int64(slots)*slotSize > size {
			return nil, fmt.Errorf("%w: table %d out of bounds", ErrCorrupt, i)
		}
	}

	return &Reader{db: gocdb.New(r), r: r, size: size}, nil
}

// Close releases the underlying file, if the Reader owns one.
func (db *Reader) Close() error {
	if db.closer == nil {
		return nil
	}
	err := db.closer.Close()
	db.closer = nil
	return err
}

// Get returns the first value stored under key. The boolean reports whether
// the key exists.
func (db *Reader) Get(key []byte) ([]byte, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	value, err := db.db.Data(key)
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

// FindAll returns every value stored under key in insertion order.
func (db *Reader) FindAll(key []byte) ([][]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	values := make([][]byte, 0)
	db.db.FindStart()
	for {
		section, err := db.db.FindNext(key)
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find %q: %w", key, err)
		}

		value, err := io.ReadAll(section)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", key, err)
		}
		values = append(values, value)
	}
}

// ForEach walks every record in file order. Iteration stops at the first
// error returned by fn.
func (db *Reader) ForEach(fn func(key, value []byte) error) error {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(gocdb.Dump(pw, io.NewSectionReader(db.r, 0, db.size)))
	}()
	defer pr.Close()

	br := bufio.NewReader(pr)
	for {
		key, value, err := readDumpRecord(br)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
}

// readDumpRecord parses one "+klen,dlen:key->data\n" line of a dump. The
// blank line closing the dump is reported as io.EOF.
func readDumpRecord(br *bufio.Reader) ([]byte, []byte, error) {
	c, err := br.ReadByte()
	if err != nil {
		return nil, nil, dumpError(err)
	}
	if c == '\n' {
		return nil, nil, io.EOF
	}
	if c != '+' {
		return nil, nil, fmt.Errorf("%w: unexpected %q in dump", ErrCorrupt, c)
	}

	klen, err := readLength(br, ',')
	if err != nil {
		return nil, nil, err
	}
	vlen, err := readLength(br, ':')
	if err != nil {
		return nil, nil, err
	}

	buf := make([]byte, klen+2+vlen+1)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, nil, dumpError(err)
	}
	key, arrow, value, nl := buf[:klen], buf[klen:klen+2], buf[klen+2:klen+2+vlen], buf[len(buf)-1]
	if string(arrow) != "->" || nl != '\n' {
		return nil, nil, fmt.Errorf("%w: malformed dump record", ErrCorrupt)
	}
	return key, value, nil
}

func readLength(br *bufio.Reader, delim byte) (int, error) {
	s, err := br.ReadString(delim)
	if err != nil {
		return 0, dumpError(err)
	}
	n, err := strconv.ParseUint(s[:len(s)-1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad record length %q", ErrCorrupt, s)
	}
	return int(n), nil
}

func dumpError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated records", ErrCorrupt)
	}
	return fmt.Errorf("failed to walk database: %w", err)
}
