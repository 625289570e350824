package host

import (
	"context"
	"errors"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// ErrNotFound is returned by Store lookups when nothing is stored for the
// requested key/client.
var ErrNotFound = errors.New("host: not found")

// Store is the abstract persistence interface the core consumes (spec
// §6): a host implements it over whatever backend it likes (Redis,
// Postgres, bbolt, ...). Shaped directly on the teacher's
// services/kv.Store — Get/Set/Delete/Close generalized from a flat
// string→string space into CSML's richer per-Client key spaces (memories,
// hold, conversation/interaction bookkeeping).
type Store interface {
	GetMemories(ctx context.Context, client Client) (map[string]*primitive.Literal, error)
	PutMemory(ctx context.Context, client Client, key string, value *primitive.Literal, ttlSeconds int64) error
	// ForgetMemory removes one key, or every memory when key == "*".
	ForgetMemory(ctx context.Context, client Client, key string) error

	GetHold(ctx context.Context, client Client) (*Hold, error)
	PutHold(ctx context.Context, client Client, h *Hold) error
	ClearHold(ctx context.Context, client Client) error

	AppendMessages(ctx context.Context, client Client, conversationID, interactionID, direction string, messages []Message) error
	OpenConversation(ctx context.Context, client Client, flow, step string, metadata map[string]interface{}) (string, error)
	CloseConversation(ctx context.Context, conversationID string) error
	RecordNode(ctx context.Context, conversationID, interactionID, flow, step, nextFlow, nextStep string) error

	Close() error
}

// BackendFactory creates a Store from a DSN / config string, mirroring the
// teacher's kv.BackendFactory registry pattern.
type BackendFactory func(dsn string) (Store, error)
