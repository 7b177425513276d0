package badger

import (
	"encoding/binary"

	"github.com/poiesic/docsearch/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec:"
	chunkRecordPrefix    = "chkrec:"
	chunkDocumentPrefix  = "chkdoc:"
	chunkIDSeq           = "chkseq"
)

// makeDocumentKey generates a key for a document by ID.
// The ID is written big-endian so lexicographic iteration order matches
// ascending ID order.
func makeDocumentKey(id core.ID) []byte {
	buf := make([]byte, len(documentRecordPrefix)+8)
	offset := copy(buf, documentRecordPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkKey generates a key for a chunk by ID. Chunk IDs come from a
// sequence, so big-endian keys make prefix iteration return chunks in
// insertion order.
func makeChunkKey(id core.ID) []byte {
	buf := make([]byte, len(chunkRecordPrefix)+8)
	offset := copy(buf, chunkRecordPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkDocumentKey generates a composite key for the document index.
// Format: prefix:documentID:chunkID
func makeChunkDocumentKey(documentId, chunkId core.ID) []byte {
	buf := make([]byte, len(chunkDocumentPrefix)+16)
	offset := copy(buf, chunkDocumentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkId))
	return buf
}

// makePartialChunkDocumentKey generates a partial key for document index scans.
// Format: prefix:documentID
func makePartialChunkDocumentKey(documentId core.ID) []byte {
	buf := make([]byte, len(chunkDocumentPrefix)+8)
	offset := copy(buf, chunkDocumentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentId))
	return buf
}
