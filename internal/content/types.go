package content

import (
	"context"
	"time"
)

// Record is the persisted description of one streamable file.
//
// Telegram uploads carry FileID and leave UpstreamURL empty; the download URL
// is derived from the Bot API on every request because Telegram file paths
// expire. Externally registered records carry UpstreamURL instead.
type Record struct {
	ID               string    `json:"id"`
	UpstreamURL      string    `json:"upstream_url,omitempty"`
	FileID           string    `json:"file_id,omitempty"`
	FileUniqueID     string    `json:"file_unique_id,omitempty"`
	FileName         string    `json:"file_name"`
	TotalLength      int64     `json:"total_length"`
	MimeType         string    `json:"mime_type"`
	OwnerID          int64     `json:"owner_id,omitempty"`
	ChatID           int64     `json:"chat_id,omitempty"`
	StorageChatID    int64     `json:"storage_chat_id,omitempty"`
	StorageMessageID int64     `json:"storage_message_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Stats summarizes stored content, optionally for one owner.
type Stats struct {
	OwnerCount int64 `json:"owner_count"`
	TotalCount int64 `json:"total_count"`
	TotalBytes int64 `json:"total_bytes"`
}

// Source is what the relay needs to serve a record.
type Source struct {
	ID          string
	URL         string
	TotalLength int64
	MimeHint    string
	FileName    string
}

// Getter loads a record by id.
type Getter interface {
	Get(ctx context.Context, id string) (Record, error)
}

// URLResolver turns a platform file reference into a downloadable URL.
type URLResolver interface {
	ResolveFileURL(ctx context.Context, fileID string) (string, error)
}
