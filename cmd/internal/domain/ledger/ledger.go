package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"nabha/cmd/internal/domain/entity"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

const (
	keyHeight     = "height_latest"
	keyEntryFmt   = "entry_%d"
	keyRecordFmt  = "record_%s"
	genesisPrevID = "0"
)

var ErrNotFound = errors.New("ledger entry not found")

var genesisPrevHash = strings.Repeat(genesisPrevID, 64)

// Entry is one link of the health record chain. Digest fingerprints the
// record as it was written; Hash seals the entry together with PrevHash.
type Entry struct {
	Height    int    `json:"height"`
	RecordID  string `json:"record_id"`
	PatientID string `json:"patient_id"`
	Digest    string `json:"digest"`
	PrevHash  string `json:"prev_hash"`
	Timestamp string `json:"timestamp"`
	Hash      string `json:"hash"`
}

type Report struct {
	Height   int  `json:"height"`
	Valid    bool `json:"valid"`
	BrokenAt *int `json:"broken_at,omitempty"`
}

// Ledger is an append-only hash chain of health records kept in LevelDB.
type Ledger struct {
	mu sync.Mutex
	db *leveldb.DB
}

// Open opens the ledger stored under path. An empty path keeps the chain in memory.
func Open(path string) (*Ledger, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Digest fingerprints a health record. The same record always yields the same digest.
func Digest(record *entity.HealthRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (l *Ledger) Append(record *entity.HealthRecord) (*Entry, error) {
	digest, err := Digest(record)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	height, err := l.height()
	if err != nil {
		return nil, err
	}

	prevHash := genesisPrevHash
	if height > 0 {
		prev, err := l.get(height - 1)
		if err != nil {
			return nil, err
		}
		prevHash = prev.Hash
	}

	entry := &Entry{
		Height:    height,
		RecordID:  record.ID,
		PatientID: record.PatientID,
		Digest:    digest,
		PrevHash:  prevHash,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	entry.Hash = entry.computeHash()

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(fmt.Sprintf(keyEntryFmt, height)), data)
	batch.Put([]byte(fmt.Sprintf(keyRecordFmt, record.ID)), []byte(strconv.Itoa(height)))
	batch.Put([]byte(keyHeight), []byte(strconv.Itoa(height+1)))
	if err := l.db.Write(batch, nil); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *Ledger) Height() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height()
}

func (l *Ledger) Get(height int) (*Entry, error) {
	return l.get(height)
}

func (l *Ledger) FindByRecordID(id string) (*Entry, error) {
	raw, err := l.db.Get([]byte(fmt.Sprintf(keyRecordFmt, id)), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	height, err := strconv.Atoi(string(raw))
	if err != nil {
		return nil, fmt.Errorf("corrupt record index for %s: %w", id, err)
	}
	return l.get(height)
}

// Verify walks the chain from genesis and checks every hash and back-link.
func (l *Ledger) Verify() (*Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	height, err := l.height()
	if err != nil {
		return nil, err
	}

	report := &Report{Height: height, Valid: true}
	prevHash := genesisPrevHash
	for i := 0; i < height; i++ {
		entry, err := l.get(i)
		if err != nil {
			return nil, err
		}
		if entry.PrevHash != prevHash || entry.computeHash() != entry.Hash {
			broken := i
			report.Valid = false
			report.BrokenAt = &broken
			return report, nil
		}
		prevHash = entry.Hash
	}
	return report, nil
}

func (l *Ledger) height() (int, error) {
	raw, err := l.db.Get([]byte(keyHeight), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(raw))
}

func (l *Ledger) get(height int) (*Entry, error) {
	raw, err := l.db.Get([]byte(fmt.Sprintf(keyEntryFmt, height)), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (e *Entry) computeHash() string {
	hdr := struct {
		Height    int    `json:"height"`
		RecordID  string `json:"record_id"`
		PatientID string `json:"patient_id"`
		Digest    string `json:"digest"`
		PrevHash  string `json:"prev_hash"`
		Timestamp string `json:"timestamp"`
	}{e.Height, e.RecordID, e.PatientID, e.Digest, e.PrevHash, e.Timestamp}

	data, _ := json.Marshal(hdr)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
