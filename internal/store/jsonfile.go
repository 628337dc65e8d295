package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// JSONFile stores all items as one JSON array in a file. Every write rewrites
// the whole file.
//
// The mutex serializes the read-modify-write cycle inside one process only.
// Two processes sharing a file can still lose updates.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile opens (and if needed creates) a JSON item file.
func NewJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			return nil, fmt.Errorf("creating data file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking data file: %w", err)
	}
	return &JSONFile{path: path}, nil
}

// flexID decodes ids written either as numbers or, by older releases, as
// numeric strings.
type flexID int64

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %s: %w", data, err)
	}
	*id = flexID(n)
	return nil
}

// fileRecord is one element of the JSON array.
type fileRecord struct {
	ID            flexID `json:"id"`
	Type          string `json:"type"`
	ItemName      string `json:"itemName"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	StudentNumber string `json:"studentNumber"`
	Image         string `json:"image"`
	CreatedAt     any    `json:"createdAt"`
	Returned      any    `json:"returned"`
}

func recordFromItem(it model.Item) fileRecord {
	return fileRecord{
		ID:            flexID(it.ID),
		Type:          it.Type,
		ItemName:      it.ItemName,
		Description:   it.Description,
		Location:      it.Location,
		Name:          it.Name,
		Email:         it.Email,
		StudentNumber: it.StudentNumber,
		Image:         it.Image,
		CreatedAt:     it.CreatedAt.UTC().Format(time.RFC3339Nano),
		Returned:      it.Returned,
	}
}

func (r fileRecord) item(now time.Time) model.Item {
	return model.Item{
		ID:            int64(r.ID),
		ItemName:      r.ItemName,
		Description:   r.Description,
		Location:      r.Location,
		Name:          r.Name,
		Email:         r.Email,
		StudentNumber: r.StudentNumber,
		Type:          normalizeType(r.Type),
		Image:         r.Image,
		CreatedAt:     parseTimestamp(r.CreatedAt, now),
		Returned:      parseBool(r.Returned),
	}
}

// read loads every record. Callers must hold mu.
func (s *JSONFile) read() ([]fileRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding data file: %w", err)
	}
	return records, nil
}

// write replaces the file atomically. Callers must hold mu.
func (s *JSONFile) write(records []fileRecord) error {
	if records == nil {
		records = []fileRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

// indexOf returns the position of id in records, or -1.
func indexOf(records []fileRecord, id int64) int {
	for i, r := range records {
		if int64(r.ID) == id {
			return i
		}
	}
	return -1
}

// Name implements Backend.
func (s *JSONFile) Name() string { return "json" }

// Ping implements Backend.
func (s *JSONFile) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read()
	return err
}

// Create implements Backend. Ids are millisecond timestamps, bumped past the
// current maximum so they stay unique and increasing.
func (s *JSONFile) Create(ctx context.Context, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	id := item.CreatedAt.UnixMilli()
	for _, r := range records {
		if int64(r.ID) >= id {
			id = int64(r.ID) + 1
		}
	}
	item.ID = id

	// Newest first, like the listing.
	records = append([]fileRecord{recordFromItem(*item)}, records...)
	return s.write(records)
}

// List implements Backend.
func (s *JSONFile) List(ctx context.Context) ([]model.Item, error) {
	s.mu.Lock()
	records, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]model.Item, 0, len(records))
	for _, r := range records {
		items = append(items, r.item(now))
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

// Get implements Backend.
func (s *JSONFile) Get(ctx context.Context, id int64) (*model.Item, error) {
	s.mu.Lock()
	records, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	i := indexOf(records, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	item := records[i].item(time.Now())
	return &item, nil
}

// Update implements Backend.
func (s *JSONFile) Update(ctx context.Context, id int64, f model.ItemFields) error {
	return s.modify(id, func(r *fileRecord) {
		r.ItemName = f.ItemName
		r.Description = f.Description
		r.Location = f.Location
		r.Name = f.Name
		r.Email = f.Email
		r.StudentNumber = f.StudentNumber
		r.Type = f.Type
	})
}

// MarkReturned implements Backend.
func (s *JSONFile) MarkReturned(ctx context.Context, id int64) error {
	return s.modify(id, func(r *fileRecord) { r.Returned = true })
}

// Delete implements Backend.
func (s *JSONFile) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return ErrNotFound
	}
	records = append(records[:i], records[i+1:]...)
	return s.write(records)
}

// modify applies fn to the record with the given id and rewrites the file.
func (s *JSONFile) modify(id int64, fn func(*fileRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return ErrNotFound
	}
	fn(&records[i])
	return s.write(records)
}
