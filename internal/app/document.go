package app

import (
	"slices"
	"sync"

	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/engine/scene"
)

// DocumentManager tracks open documents in the order they were opened.
//
// The manager is safe for concurrent use; the documents themselves are not
// and must be edited from one goroutine at a time.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[history.HostID]*scene.Document
	order     []history.HostID
	active    *scene.Document
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		documents: make(map[history.HostID]*scene.Document),
	}
}

// Add registers doc and makes it active.
func (dm *DocumentManager) Add(doc *scene.Document) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, exists := dm.documents[doc.ID()]; exists {
		return ErrDocumentAlreadyOpen
	}
	dm.documents[doc.ID()] = doc
	dm.order = append(dm.order, doc.ID())
	dm.active = doc
	return nil
}

// Get returns a document by id. An empty id returns the active document.
func (dm *DocumentManager) Get(id history.HostID) (*scene.Document, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	if id == "" {
		if dm.active == nil {
			return nil, ErrNoActiveDocument
		}
		return dm.active, nil
	}
	doc, ok := dm.documents[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Active returns the active document, or nil.
func (dm *DocumentManager) Active() *scene.Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// SetActive makes the document with id active.
func (dm *DocumentManager) SetActive(id history.HostID) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[id]
	if !ok {
		return ErrDocumentNotFound
	}
	dm.active = doc
	return nil
}

// Remove unregisters a document. When it was active, the most recently
// opened remaining document becomes active.
func (dm *DocumentManager) Remove(id history.HostID) (*scene.Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	delete(dm.documents, id)
	dm.order = slices.DeleteFunc(dm.order, func(x history.HostID) bool { return x == id })

	if dm.active == doc {
		dm.active = nil
		if n := len(dm.order); n > 0 {
			dm.active = dm.documents[dm.order[n-1]]
		}
	}
	return doc, nil
}

// List returns all open documents in open order.
func (dm *DocumentManager) List() []*scene.Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*scene.Document, 0, len(dm.order))
	for _, id := range dm.order {
		docs = append(docs, dm.documents[id])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}
