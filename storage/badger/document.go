package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (r *DocumentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocument adds a document to storage.
func (r *DocumentRepository) AddDocument(ctx context.Context, document *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(document); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if document.Id == 0 {
			// Content-based IDs make re-adding an identical document an
			// overwrite instead of a duplicate.
			document.Id = core.IDFromContent(document.Filename + "\x00" + document.Contents)
		}
		document.InsertedAt = time.Now().UTC()

		key := makeDocumentKey(document.Id)
		if err := tx.Set(key, storage.MarshalDocument(document)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return document, err
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var document *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		document, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if document == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return document, nil
}

// GetDocuments retrieves multiple documents by their IDs.
// Missing documents are skipped without error.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	documents := make([]*core.Document, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			document, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if document != nil {
				documents = append(documents, document)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// ListDocuments retrieves all stored documents, ordered by ID.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var documents []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var document *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				document, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			documents = append(documents, document)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// DeleteDocument removes a document and cascades to its chunks.
// Returns the IDs of the removed chunks.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) ([]core.ID, error) {
	var chunkIds []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		document, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if document == nil {
			return storage.ErrNotFound
		}

		chunkIds, err = deleteChunksForDocument(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunkIds, nil
}

// readDocument reads a document by key, returning nil when absent.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var document *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		document, err = storage.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return document, nil
}
