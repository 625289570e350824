// Package boltstore is an illustrative host.Store adapter over
// go.etcd.io/bbolt: the teacher's services/kv package ships a MemoryStore
// plus a RegisterBackend hook for a real backend; bbolt is the natural
// single "real" backend to demonstrate the same registry pattern here
// without dragging in a network service dependency.
package boltstore

import (
	"context"
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/primitive"
)

var (
	bucketMemories = []byte("memories")
	bucketHolds    = []byte("holds")
)

// Store persists memories and hold snapshots in a single bbolt file.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) a bbolt database at path and ensures its
// top-level buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMemories); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketHolds)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Register installs "bolt" as a host.Store backend name, dsn is the file
// path bbolt opens.
func Register() {
	host.RegisterStoreBackend("bolt", func(dsn string) (host.Store, error) {
		return Open(dsn)
	})
}

func clientKey(c host.Client) string {
	return c.BotID + "\x00" + c.ChannelID + "\x00" + c.UserID
}

type storedMemory struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt int64           `json:"expires_at,omitempty"`
}

func (s *Store) GetMemories(_ context.Context, client host.Client) (map[string]*primitive.Literal, error) {
	out := map[string]*primitive.Literal{}
	prefix := []byte(clientKey(client) + "\x00")
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketMemories).Cursor()
		now := time.Now().Unix()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var sm storedMemory
			if err := json.Unmarshal(v, &sm); err != nil {
				continue
			}
			if sm.ExpiresAt != 0 && now > sm.ExpiresAt {
				continue
			}
			lit, err := primitive.ParseJSON(sm.Value)
			if err != nil {
				continue
			}
			memKey := string(k[len(prefix):])
			out[memKey] = lit
		}
		return nil
	})
	return out, err
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (s *Store) PutMemory(_ context.Context, client host.Client, key string, value *primitive.Literal, ttlSeconds int64) error {
	data, err := json.Marshal(value.ToJSON())
	if err != nil {
		return err
	}
	sm := storedMemory{Value: data}
	if ttlSeconds > 0 {
		sm.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second).Unix()
	}
	encoded, err := json.Marshal(sm)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMemories).Put([]byte(clientKey(client)+"\x00"+key), encoded)
	})
}

func (s *Store) ForgetMemory(_ context.Context, client host.Client, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMemories)
		if key == "*" {
			prefix := []byte(clientKey(client) + "\x00")
			c := b.Cursor()
			for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			return nil
		}
		return b.Delete([]byte(clientKey(client) + "\x00" + key))
	})
}

func (s *Store) GetHold(_ context.Context, client host.Client) (*host.Hold, error) {
	var h *host.Hold
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketHolds).Get([]byte(clientKey(client)))
		if v == nil {
			return host.ErrNotFound
		}
		var snap boltHold
		if err := json.Unmarshal(v, &snap); err != nil {
			return err
		}
		h = snap.toHold()
		return nil
	})
	return h, err
}

func (s *Store) PutHold(_ context.Context, client host.Client, h *host.Hold) error {
	snap := holdToBolt(h)
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketHolds).Put([]byte(clientKey(client)), data)
	})
}

func (s *Store) ClearHold(_ context.Context, client host.Client) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketHolds).Delete([]byte(clientKey(client)))
	})
}

func (s *Store) AppendMessages(context.Context, host.Client, string, string, string, []host.Message) error {
	return nil
}

func (s *Store) OpenConversation(context.Context, host.Client, string, string, map[string]interface{}) (string, error) {
	return "", nil
}

func (s *Store) CloseConversation(context.Context, string) error { return nil }

func (s *Store) RecordNode(context.Context, string, string, string, string, string, string) error {
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// boltHold is the on-disk JSON form of a Hold snapshot (spec §6).
type boltHold struct {
	Hash       string          `json:"hash"`
	Index      boltHoldIndex   `json:"index"`
	StepVars   json.RawMessage `json:"step_vars"`
	StepName   string          `json:"step_name"`
	FlowName   string          `json:"flow_name"`
}

type boltHoldIndex struct {
	CommandIndex int   `json:"command_index"`
	LoopIndex    []int `json:"loop_index"`
}

func holdToBolt(h *host.Hold) boltHold {
	vars := map[string]interface{}{}
	for k, v := range h.StepVars {
		vars[k] = v.ToJSON()
	}
	data, _ := json.Marshal(vars)
	return boltHold{
		Hash:     h.Hash,
		Index:    boltHoldIndex{CommandIndex: h.CommandIndex, LoopIndex: h.LoopIndexStack},
		StepVars: data,
		StepName: h.StepName,
		FlowName: h.FlowName,
	}
}

func (b boltHold) toHold() *host.Hold {
	var raw map[string]interface{}
	_ = json.Unmarshal(b.StepVars, &raw)
	vars := map[string]*primitive.Literal{}
	for k, v := range raw {
		vars[k] = primitive.FromJSON(v)
	}
	return &host.Hold{
		CommandIndex:   b.Index.CommandIndex,
		LoopIndexStack: b.Index.LoopIndex,
		StepVars:       vars,
		StepName:       b.StepName,
		FlowName:       b.FlowName,
		Hash:           b.Hash,
	}
}
