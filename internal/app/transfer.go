package app

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
)

// TransferRelay fans file-transfer messages out to the sender's room mates.
// It keeps nothing: chunks are stamped with the sender and forwarded. Per
// recipient order follows from the room lock and the FIFO outbound queue.
type TransferRelay struct {
	dir *Directory
}

func NewTransferRelay(dir *Directory) *TransferRelay {
	return &TransferRelay{dir: dir}
}

func (t *TransferRelay) FileInfo(from core.MemberSession, code domain.RoomCode, info domain.FileInfo) (core.PublishResult, bool) {
	u := from.User()
	return t.dir.BroadcastFrom(from, code, Frame(protocol.EventFileInfo, protocol.FileInfoOut{
		FileInfo:   info,
		SenderID:   from.ID(),
		SenderName: u.DisplayName,
	}))
}

func (t *TransferRelay) FileChunk(from core.MemberSession, code domain.RoomCode, in protocol.FileChunkIn) (core.PublishResult, bool) {
	u := from.User()
	return t.dir.BroadcastFrom(from, code, Frame(protocol.EventFileChunk, protocol.FileChunkOut{
		FileID:      in.FileID,
		FileName:    in.FileName,
		Chunk:       in.Chunk,
		ChunkIndex:  in.ChunkIndex,
		TotalChunks: in.TotalChunks,
		SenderID:    from.ID(),
		SenderName:  u.DisplayName,
	}))
}

func (t *TransferRelay) FileComplete(from core.MemberSession, code domain.RoomCode, in protocol.FileCompleteIn) (core.PublishResult, bool) {
	u := from.User()
	return t.dir.BroadcastFrom(from, code, Frame(protocol.EventFileComplete, protocol.FileCompleteOut{
		FileID:     in.FileID,
		FileName:   in.FileName,
		SenderID:   from.ID(),
		SenderName: u.DisplayName,
	}))
}
