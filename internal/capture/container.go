package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chrissnell/motionsync/internal/syncerr"
)

// ContainerKind identifies the on-disk encoding of a capture file.
type ContainerKind string

const (
	ContainerMsgpack ContainerKind = "msgpack"
	ContainerSQLite  ContainerKind = "sqlite"
)

var (
	sqliteMagic = []byte("SQLite format 3\x00")
	hdf5Magic   = []byte("\x89HDF\r\n\x1a\n")
)

// ParseContainerKind maps a name to a ContainerKind.
func ParseContainerKind(s string) (ContainerKind, error) {
	switch ContainerKind(s) {
	case ContainerMsgpack, ContainerSQLite:
		return ContainerKind(s), nil
	}
	return "", fmt.Errorf("unsupported capture container %q (use msgpack or sqlite)", s)
}

// Probe inspects the leading bytes of path and reports its container.
func Probe(path string) (ContainerKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", syncerr.FileFormat(path, "cannot open capture", err)
	}
	defer f.Close()

	head := make([]byte, 16)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", syncerr.FileFormat(path, "cannot read capture header", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, sqliteMagic):
		return ContainerSQLite, nil
	case bytes.HasPrefix(head, hdf5Magic):
		return "", syncerr.FileFormat(path, "HDF5 captures must be converted with capture-convert first", nil)
	case n > 0 && isMsgpackMap(head[0]):
		return ContainerMsgpack, nil
	}
	return "", syncerr.FileFormat(path, "unrecognized capture container", nil)
}

func isMsgpackMap(b byte) bool {
	// fixmap, map16, map32
	return b&0xf0 == 0x80 || b == 0xde || b == 0xdf
}

// ReadDocument probes path and decodes it into a Document.
func ReadDocument(ctx context.Context, path string) (*Document, ContainerKind, error) {
	kind, err := Probe(path)
	if err != nil {
		return nil, "", err
	}

	var doc *Document
	switch kind {
	case ContainerSQLite:
		doc, err = readSQLite(ctx, path)
	default:
		doc, err = readMsgpack(path)
	}
	if err != nil {
		return nil, kind, err
	}
	return doc, kind, nil
}

// WriteDocument encodes doc to path using the given container.
func WriteDocument(ctx context.Context, path string, kind ContainerKind, doc *Document) error {
	switch kind {
	case ContainerSQLite:
		return WriteSQLite(ctx, path, doc)
	case ContainerMsgpack:
		return WriteMsgpack(path, doc)
	}
	return fmt.Errorf("unsupported capture container %q", kind)
}
