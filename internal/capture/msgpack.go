package capture

import (
	"bufio"
	"fmt"
	"os"

	"github.com/chrissnell/motionsync/internal/syncerr"
	"github.com/vmihailenco/msgpack/v5"
)

func readMsgpack(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, syncerr.FileFormat(path, "cannot open capture", err)
	}
	defer f.Close()

	var doc Document
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&doc); err != nil {
		return nil, syncerr.FileFormat(path, "malformed msgpack capture", err)
	}
	return &doc, nil
}

// WriteMsgpack encodes doc as a MessagePack capture file.
func WriteMsgpack(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := msgpack.NewEncoder(w).Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
