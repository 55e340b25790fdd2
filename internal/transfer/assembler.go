// Package transfer reassembles files streamed through a room.
package transfer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

var (
	ErrUnknownTransfer = errors.New("unknown transfer")
	ErrBadChunk        = errors.New("bad chunk")
	ErrSizeMismatch    = errors.New("size mismatch")
)

type key struct {
	sender core.SessionID
	file   domain.FileID
}

type pending struct {
	info     domain.FileInfo
	buf      bytes.Buffer
	received int
	total    int
}

// File is a completed transfer.
type File struct {
	Info   domain.FileInfo
	Sender core.SessionID
	Data   []byte
}

// Progress is reported after each accepted chunk.
type Progress struct {
	FileID   domain.FileID
	Received int
	Total    int
}

// Percent follows the web client: (index+1)/total, rounded down.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Received * 100 / p.Total
}

// Assembler keeps one pending buffer per (sender, file id). Chunks are
// appended in arrival order; the relay guarantees that order matches the
// sender's.
type Assembler struct {
	mu      sync.Mutex
	pending map[key]*pending
}

func NewAssembler() *Assembler {
	return &Assembler{pending: make(map[key]*pending)}
}

// Begin starts a transfer. A second Begin for the same file restarts it.
func (a *Assembler) Begin(sender core.SessionID, info domain.FileInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[key{sender, info.ID}] = &pending{info: info}
}

// Append decodes one base64 chunk onto the transfer.
func (a *Assembler) Append(sender core.SessionID, id domain.FileID, chunk string, index, total int) (Progress, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pending[key{sender, id}]
	if !ok {
		return Progress{}, fmt.Errorf("%w: %s", ErrUnknownTransfer, id)
	}
	if index != p.received {
		return Progress{}, fmt.Errorf("%w: got index %d, want %d", ErrBadChunk, index, p.received)
	}
	data, err := base64.StdEncoding.DecodeString(chunk)
	if err != nil {
		return Progress{}, fmt.Errorf("%w: %w", ErrBadChunk, err)
	}
	p.buf.Write(data)
	p.received++
	p.total = total
	return Progress{FileID: id, Received: p.received, Total: total}, nil
}

// Complete finalizes the transfer and forgets it whether or not it checks
// out. The assembled size must match the announced size.
func (a *Assembler) Complete(sender core.SessionID, id domain.FileID) (File, error) {
	a.mu.Lock()
	p, ok := a.pending[key{sender, id}]
	delete(a.pending, key{sender, id})
	a.mu.Unlock()
	if !ok {
		return File{}, fmt.Errorf("%w: %s", ErrUnknownTransfer, id)
	}
	if int64(p.buf.Len()) != p.info.Size {
		return File{}, fmt.Errorf("%w: got %d bytes, announced %d", ErrSizeMismatch, p.buf.Len(), p.info.Size)
	}
	return File{Info: p.info, Sender: sender, Data: p.buf.Bytes()}, nil
}

// Discard drops every transfer from sender, e.g. when they leave the room.
func (a *Assembler) Discard(sender core.SessionID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for k := range a.pending {
		if k.sender == sender {
			delete(a.pending, k)
			n++
		}
	}
	return n
}

func (a *Assembler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}
