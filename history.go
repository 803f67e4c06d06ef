package talon

import (
	"encoding/binary"
	"errors"

	bolt "go.etcd.io/bbolt"
)

// ErrNoMatchingCmd is returned when a history lookup finds nothing.
var ErrNoMatchingCmd = errors.New("no matching command in history")

var bucketCmd = []byte("cmd")

// HistoryStore persists dispatched command lines in a bbolt database,
// keyed by a monotonically increasing sequence number.
type HistoryStore struct {
	db *bolt.DB
}

// OpenHistory opens (creating if needed) the history database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCmd)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the underlying database.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// NextSeq returns the sequence number the next added command will get.
func (h *HistoryStore) NextSeq() (int, error) {
	var seq uint64
	err := h.db.View(func(tx *bolt.Tx) error {
		seq = tx.Bucket(bucketCmd).Sequence() + 1
		return nil
	})
	return int(seq), err
}

// Add appends a command line and returns its sequence number.
func (h *HistoryStore) Add(cmd string) (int, error) {
	var seq uint64
	err := h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCmd)
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(cmd))
	})
	return int(seq), err
}

// Cmd returns the command line with the given sequence number.
func (h *HistoryStore) Cmd(seq int) (string, error) {
	var cmd string
	err := h.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCmd).Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingCmd
		}
		cmd = string(v)
		return nil
	})
	return cmd, err
}

// Recent returns up to n most recent command lines, oldest first.
func (h *HistoryStore) Recent(n int) ([]string, error) {
	var cmds []string
	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCmd).Cursor()
		for k, v := c.Last(); k != nil && len(cmds) < n; k, v = c.Prev() {
			cmds = append(cmds, string(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(cmds)-1; i < j; i, j = i+1, j-1 {
		cmds[i], cmds[j] = cmds[j], cmds[i]
	}
	return cmds, nil
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
