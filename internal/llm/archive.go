package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ArchiveRecord is one prompt/response pair kept for diagnostics.
type ArchiveRecord struct {
	PromptType string    `json:"prompt_type"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ResponseArchive interface {
	Save(ctx context.Context, rec ArchiveRecord) error
}

// GCSArchive writes records as JSON objects into a Cloud Storage bucket.
type GCSArchive struct {
	client *storage.Client
	bucket string
}

// NewGCSArchive uses Application Default Credentials.
func NewGCSArchive(ctx context.Context, bucket string) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create storage client")
	}
	return &GCSArchive{client: client, bucket: bucket}, nil
}

func (a *GCSArchive) Save(ctx context.Context, rec ArchiveRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName(rec)).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(rec); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "encode archive record")
	}
	return errors.Wrap(w.Close(), "finalize archive upload")
}

func (a *GCSArchive) Close() error {
	return a.client.Close()
}

func objectName(rec ArchiveRecord) string {
	return fmt.Sprintf("llm-responses/%s/%s-%s.json",
		rec.CreatedAt.UTC().Format("2006/01/02"), rec.PromptType, uuid.NewString())
}
