package cdb

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	gocdb "github.com/jbarham/go-cdb"
)

// Writer builds a new database. Records are collected by Add and the file is
// written by Close; a database is unreadable until then.
type Writer struct {
	ws     io.WriteSeeker
	closer io.Closer
	// records in the input format of gocdb.Make
	records bytes.Buffer
	size    uint64
}

// Create truncates or creates the file at path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f

	return w, nil
}

// NewWriter starts a database on ws, which must be positioned at its start.
func NewWriter(ws io.WriteSeeker) (*Writer, error) {
	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind database: %w", err)
	}
	return &Writer{ws: ws, size: headerSize}, nil
}

// Add appends one record. Adding an existing key keeps both values.
func (w *Writer) Add(key, value []byte) error {
	// record header, data and two hash slots per record
	size := w.size + 8 + uint64(len(key)) + uint64(len(value)) + 2*slotSize
	if size > maxOffset {
		return ErrTooLarge
	}
	w.size = size

	w.records.WriteByte('+')
	w.records.WriteString(strconv.Itoa(len(key)))
	w.records.WriteByte(',')
	w.records.WriteString(strconv.Itoa(len(value)))
	w.records.WriteByte(':')
	w.records.Write(key)
	w.records.WriteString("->")
	w.records.Write(value)
	w.records.WriteByte('\n')
	return nil
}

// Close writes the database, then closes the file when the Writer was
// obtained from Create.
func (w *Writer) Close() error {
	w.records.WriteByte('\n')
	err := gocdb.Make(w.ws, &w.records)
	if err != nil {
		err = fmt.Errorf("failed to write database: %w", err)
	}

	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
		w.closer = nil
	}
	return err
}
