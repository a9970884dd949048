package bucket

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/morozRed/crashid/internal/crashid"
	"github.com/morozRed/crashid/internal/fileutil"
)

const (
	CurrentStoreVersion = "1"
	// MaxSamples caps how many sample references a bucket remembers.
	MaxSamples = 5
)

// Bucket aggregates every crash sharing one identifier.
type Bucket struct {
	Type      string    `json:"type"`
	Location  string    `json:"location,omitempty"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Samples   []string  `json:"samples,omitempty"`
}

// Identifier returns the identifier the bucket was created for.
func (b Bucket) Identifier() crashid.Identifier {
	return crashid.Identifier{Type: b.Type, Location: b.Location}
}

// Entry pairs a bucket with its key for ordered output.
type Entry struct {
	Key string `json:"key"`
	Bucket
}

// Store tracks crash buckets across runs
type Store struct {
	Version   string             `json:"version"`
	UpdatedAt time.Time          `json:"updated_at"`
	Buckets   map[string]*Bucket `json:"buckets"`
	// Hashes maps content hashes of recorded reports to their first sample.
	Hashes map[string]string `json:"hashes,omitempty"`
}

// NewStore creates a new empty store
func NewStore() *Store {
	return &Store{
		Version: CurrentStoreVersion,
		Buckets: make(map[string]*Bucket),
		Hashes:  make(map[string]string),
	}
}

// Load reads a store file. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStore(), nil
		}
		return nil, err
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, err
	}
	if store.Version == "" {
		store.Version = CurrentStoreVersion
	}
	if store.Buckets == nil {
		store.Buckets = make(map[string]*Bucket)
	}
	if store.Hashes == nil {
		store.Hashes = make(map[string]string)
	}
	return &store, nil
}

// Save writes the store to path, skipping the write when nothing changed.
func (s *Store) Save(path string) (bool, error) {
	if s.Version == "" {
		s.Version = CurrentStoreVersion
	}
	if s.Buckets == nil {
		s.Buckets = make(map[string]*Bucket)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return false, err
	}
	return fileutil.WriteIfChanged(path, append(data, '\n'))
}

// Record counts one occurrence of id. sample names where the crash came
// from (a file path, a report ID); repeated samples are stored once.
func (s *Store) Record(id crashid.Identifier, sample string, at time.Time) *Bucket {
	key := id.Key()
	b, ok := s.Buckets[key]
	if !ok {
		b = &Bucket{
			Type:      id.Type,
			Location:  id.Location,
			FirstSeen: at,
			LastSeen:  at,
		}
		s.Buckets[key] = b
	}

	b.Count++
	if at.Before(b.FirstSeen) {
		b.FirstSeen = at
	}
	if at.After(b.LastSeen) {
		b.LastSeen = at
	}
	if sample != "" {
		b.Samples = fileutil.AppendUnique(b.Samples, sample, MaxSamples)
	}
	if at.After(s.UpdatedAt) {
		s.UpdatedAt = at
	}
	return b
}

// Recorded returns the sample first recorded with content hash.
func (s *Store) Recorded(hash string) (string, bool) {
	sample, ok := s.Hashes[hash]
	return sample, ok
}

// MarkRecorded remembers hash so the same report is not counted again.
func (s *Store) MarkRecorded(hash, sample string) {
	if hash == "" {
		return
	}
	if s.Hashes == nil {
		s.Hashes = make(map[string]string)
	}
	if _, ok := s.Hashes[hash]; !ok {
		s.Hashes[hash] = sample
	}
}

// Total returns the number of recorded occurrences.
func (s *Store) Total() int {
	total := 0
	for _, b := range s.Buckets {
		total += b.Count
	}
	return total
}

// Sorted returns buckets by descending count, then key.
func (s *Store) Sorted() []Entry {
	out := make([]Entry, 0, len(s.Buckets))
	for key, b := range s.Buckets {
		out = append(out, Entry{Key: key, Bucket: *b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Key < out[j].Key
		}
		return out[i].Count > out[j].Count
	})
	return out
}
