package host

import (
	"context"
	"sync"
	"time"

	"github.com/csml-sh/csml-engine/src/primitive"
)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendFactory{
		"memory": func(_ string) (Store, error) { return NewMemoryStore(10000, 30*time.Minute), nil },
	}
)

// RegisterStoreBackend registers a named Store backend factory — the same
// registry shape as the teacher's kv.RegisterBackend, generalized to
// host.Store.
func RegisterStoreBackend(name string, f BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = f
}

// OpenStore creates a Store using the named backend, falling back to
// "memory" when name is empty.
func OpenStore(name, dsn string) (Store, error) {
	if name == "" {
		name = "memory"
	}
	backendsMu.RLock()
	f, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, &unknownBackendError{name: name}
	}
	return f(dsn)
}

type unknownBackendError struct{ name string }

func (e *unknownBackendError) Error() string { return "host: unknown store backend " + e.name }

type memEntry struct {
	value     *primitive.Literal
	expiresAt time.Time
}

// MemoryStore is an in-memory Store with insertion-order eviction and TTL
// over memories (reads and overwrites do not refresh a key's position),
// direct ports of the teacher's services/kv.MemoryStore shape,
// plus per-client hold and conversation bookkeeping maps.
type MemoryStore struct {
	mu         sync.RWMutex
	memories   map[clientKey]map[string]memEntry
	holds      map[clientKey]*Hold
	order      []clientMemKey // first-insertion order across the whole store; the oldest is evicted first
	maxItems   int
	defaultTTL time.Duration

	conversations map[string]conversationState
	nextConvID    int
}

type clientKey struct{ botID, channelID, userID string }

type clientMemKey struct {
	client clientKey
	key    string
}

type conversationState struct {
	client Client
	flow   string
	step   string
	open   bool
}

func ck(c Client) clientKey { return clientKey{c.BotID, c.ChannelID, c.UserID} }

// NewMemoryStore creates an in-memory Store.
func NewMemoryStore(maxItems int, defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		memories:      map[clientKey]map[string]memEntry{},
		holds:         map[clientKey]*Hold{},
		order:         make([]clientMemKey, 0, maxItems),
		maxItems:      maxItems,
		defaultTTL:    defaultTTL,
		conversations: map[string]conversationState{},
	}
}

func (m *MemoryStore) GetMemories(_ context.Context, client Client) (map[string]*primitive.Literal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket := m.memories[ck(client)]
	out := make(map[string]*primitive.Literal, len(bucket))
	now := time.Now()
	for k, e := range bucket {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			continue
		}
		out[k] = e.value
	}
	return out, nil
}

func (m *MemoryStore) PutMemory(_ context.Context, client Client, key string, value *primitive.Literal, ttlSeconds int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl := m.defaultTTL
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	ckey := ck(client)
	bucket, ok := m.memories[ckey]
	if !ok {
		bucket = map[string]memEntry{}
		m.memories[ckey] = bucket
	}
	if _, exists := bucket[key]; !exists {
		if len(m.order) >= m.maxItems {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.memories[oldest.client], oldest.key)
		}
		m.order = append(m.order, clientMemKey{client: ckey, key: key})
	}
	bucket[key] = memEntry{value: value, expiresAt: exp}
	return nil
}

func (m *MemoryStore) ForgetMemory(_ context.Context, client Client, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ckey := ck(client)
	if key == "*" {
		delete(m.memories, ckey)
		return nil
	}
	delete(m.memories[ckey], key)
	return nil
}

func (m *MemoryStore) GetHold(_ context.Context, client Client) (*Hold, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.holds[ck(client)]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (m *MemoryStore) PutHold(_ context.Context, client Client, h *Hold) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holds[ck(client)] = h
	return nil
}

func (m *MemoryStore) ClearHold(_ context.Context, client Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holds, ck(client))
	return nil
}

func (m *MemoryStore) AppendMessages(_ context.Context, client Client, conversationID, interactionID, direction string, messages []Message) error {
	// Illustrative reference adapter: full message history persistence is
	// a host concern (spec §1 Non-goal on storage backends); this records
	// nothing beyond what conversation/hold state already tracks.
	return nil
}

func (m *MemoryStore) OpenConversation(_ context.Context, client Client, flow, step string, metadata map[string]interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextConvID++
	id := conversationIDFromSeq(m.nextConvID)
	m.conversations[id] = conversationState{client: client, flow: flow, step: step, open: true}
	return id, nil
}

func (m *MemoryStore) CloseConversation(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.conversations[conversationID]; ok {
		st.open = false
		m.conversations[conversationID] = st
	}
	return nil
}

func (m *MemoryStore) RecordNode(_ context.Context, conversationID, interactionID, flow, step, nextFlow, nextStep string) error {
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func conversationIDFromSeq(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{alphabet[n%len(alphabet)]}, buf...)
		n /= len(alphabet)
	}
	return "conv_" + string(buf)
}
