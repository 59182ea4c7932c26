package service

import (
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/docuflow/pdf2csv-api/internal/extract"
	"github.com/docuflow/pdf2csv-api/pkg/storage"
)

// DocumentRef points at one staged upload. Order in the manifest is the
// submission order and fixes batch membership for the whole job.
type DocumentRef struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	StoredName  string `json:"stored_name"`
}

// DocumentStore stages uploaded documents on disk between submission and
// batch processing so queued jobs survive a process restart.
type DocumentStore struct {
	storage *storage.LocalStorage
}

// NewDocumentStore constructs a document store over the uploads directory.
func NewDocumentStore(s *storage.LocalStorage) *DocumentStore {
	return &DocumentStore{storage: s}
}

// Save writes each document plus an ordered manifest under the job's
// directory.
func (d *DocumentStore) Save(jobID string, docs []extract.Document) error {
	refs := make([]DocumentRef, len(docs))
	for i, doc := range docs {
		stored := path.Join(jobID, fmt.Sprintf("%04d_%s", i, doc.Filename))
		if _, err := d.storage.Save(stored, doc.Content); err != nil {
			return fmt.Errorf("stage document %s: %w", doc.Filename, err)
		}
		refs[i] = DocumentRef{Filename: doc.Filename, ContentType: doc.ContentType, StoredName: stored}
	}
	payload, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if _, err := d.storage.Save(d.manifestPath(jobID), payload); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Manifest returns the job's staged documents in submission order.
func (d *DocumentStore) Manifest(jobID string) ([]DocumentRef, error) {
	file, err := d.storage.Open(d.manifestPath(jobID))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close() //nolint:errcheck
	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var refs []DocumentRef
	if err := json.Unmarshal(payload, &refs); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return refs, nil
}

// Load reads the staged content for a slice of refs (one batch).
func (d *DocumentStore) Load(refs []DocumentRef) ([]extract.Document, error) {
	docs := make([]extract.Document, len(refs))
	for i, ref := range refs {
		file, err := d.storage.Open(ref.StoredName)
		if err != nil {
			return nil, fmt.Errorf("open staged document %s: %w", ref.Filename, err)
		}
		content, err := io.ReadAll(file)
		file.Close() //nolint:errcheck,gosec
		if err != nil {
			return nil, fmt.Errorf("read staged document %s: %w", ref.Filename, err)
		}
		docs[i] = extract.Document{Filename: ref.Filename, ContentType: ref.ContentType, Content: content}
	}
	return docs, nil
}

// Purge removes a job's staged documents once the job is terminal.
func (d *DocumentStore) Purge(jobID string) error {
	refs, err := d.Manifest(jobID)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := d.storage.Delete(ref.StoredName); err != nil {
			return err
		}
	}
	return d.storage.Delete(d.manifestPath(jobID))
}

func (d *DocumentStore) manifestPath(jobID string) string {
	return path.Join(jobID, "manifest.json")
}
