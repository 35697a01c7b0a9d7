// Package cdb wraps github.com/jbarham/go-cdb with the access patterns of
// the post store: first value of a key, every value of a repeated key, a
// full walk in file order, and building a file record by record.
//
// File layout:
//
//	header   256 x (table position uint32, slot count uint32), little endian
//	records  (key length uint32, value length uint32, key, value) ...
//	tables   256 hash tables of (hash uint32, record position uint32) slots
package cdb

import (
	"encoding/binary"
	"errors"
)

const (
	headerSize = 256 * 8
	slotSize   = 8
	maxOffset  = 1<<32 - 1
)

var (
	// ErrCorrupt is returned when the file does not follow the layout.
	ErrCorrupt = errors.New("cdb: corrupt database")
	// ErrTooLarge is returned when a database would exceed 4GiB.
	ErrTooLarge = errors.New("cdb: database too large")
)

func readPair(b []byte) (uint32, uint32) {
	return binary.LittleEndian.Uint32(b), binary.LittleEndian.Uint32(b[4:])
}
