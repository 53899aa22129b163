package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/example/recallbox/pkg/models"
)

type key struct {
	user int64
	item string
}

type fakeStore struct {
	mu      sync.Mutex
	records map[key]models.ProgressRecord
	items   map[string]models.ReviewableItem
	nextID  int64

	failWith error
	creates  int
	updates  int
	batches  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[key]models.ProgressRecord),
		items:   make(map[string]models.ReviewableItem),
	}
}

func (f *fakeStore) FindByUserAndItem(_ context.Context, userID int64, itemID string) (*models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.records[key{userID, itemID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) Create(_ context.Context, p *models.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{p.UserID, p.ItemID}
	if _, ok := f.records[k]; ok {
		return ErrProgressExists
	}
	f.nextID++
	p.ID = f.nextID
	f.records[k] = *p
	f.creates++
	return nil
}

func (f *fakeStore) CreateBatch(_ context.Context, records []*models.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range records {
		if _, ok := f.records[key{p.UserID, p.ItemID}]; ok {
			return fmt.Errorf("duplicate %s", p.ItemID)
		}
	}
	for _, p := range records {
		f.nextID++
		p.ID = f.nextID
		f.records[key{p.UserID, p.ItemID}] = *p
	}
	f.batches++
	return nil
}

func (f *fakeStore) Update(_ context.Context, p *models.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{p.UserID, p.ItemID}
	if _, ok := f.records[k]; !ok {
		return ErrProgressNotFound
	}
	f.records[k] = *p
	f.updates++
	return nil
}

func (f *fakeStore) FindAllByUser(_ context.Context, userID int64) ([]models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProgressRecord
	for k, p := range f.records {
		if k.user == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindDueForUser(ctx context.Context, userID int64, asOf string) ([]models.ProgressRecord, error) {
	all, _ := f.FindAllByUser(ctx, userID)
	var out []models.ProgressRecord
	for _, p := range all {
		if p.IsDue(asOf) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) Stats(_ context.Context, userID int64, asOf string, containerID string) (models.ProgressStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return models.ProgressStats{}, f.failWith
	}
	var ps models.ProgressStats
	for k, p := range f.records {
		it, ok := f.items[k.item]
		if k.user != userID || !ok || (containerID != "" && it.ContainerID != containerID) {
			continue
		}
		ps.Progressed++
		if p.IsDue(asOf) {
			ps.DueCount++
		}
		ps.Boxes[p.BoxLevel-1]++
	}
	return ps, nil
}

type fakeInventory struct {
	store   *fakeStore
	answers []models.Answer
	failErr error
}

func (i *fakeInventory) add(item models.ReviewableItem) {
	i.store.mu.Lock()
	defer i.store.mu.Unlock()
	i.store.items[item.ID] = item
}

func (i *fakeInventory) GetItem(_ context.Context, itemID string) (*models.ReviewableItem, error) {
	i.store.mu.Lock()
	defer i.store.mu.Unlock()
	it, ok := i.store.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (i *fakeInventory) FindBySource(_ context.Context, ref models.SourceRef) (*models.ReviewableItem, error) {
	i.store.mu.Lock()
	defer i.store.mu.Unlock()
	for _, it := range i.store.items {
		if it.ItemType == ref.Type && it.SourceID() == ref.ID {
			return &it, nil
		}
	}
	return nil, nil
}

func (i *fakeInventory) CountItems(ctx context.Context, userID int64, containerID string) (int, error) {
	if i.failErr != nil {
		return 0, i.failErr
	}
	items, _ := i.ListItems(ctx, userID, containerID)
	return len(items), nil
}

func (i *fakeInventory) ListItems(_ context.Context, userID int64, containerID string) ([]models.ReviewableItem, error) {
	i.store.mu.Lock()
	defer i.store.mu.Unlock()
	var out []models.ReviewableItem
	for _, it := range i.store.items {
		if it.UserID == userID && (containerID == "" || it.ContainerID == containerID) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (i *fakeInventory) ListAnsweredItemIDs(_ context.Context, userID int64, containerID string) ([]string, error) {
	var out []string
	for _, a := range i.answers {
		if a.UserID == userID && a.ContainerID == containerID {
			out = append(out, a.ItemID)
		}
	}
	return out, nil
}

func (i *fakeInventory) RecordAnswer(_ context.Context, a *models.Answer) error {
	if i.failErr != nil {
		return i.failErr
	}
	i.answers = append(i.answers, *a)
	return nil
}

var errStoreDown = errors.New("store down")

func strPtr(s string) *string { return &s }

func question(id string, userID int64, container string) models.ReviewableItem {
	return models.ReviewableItem{
		ID:          id,
		UserID:      userID,
		ContainerID: container,
		ItemType:    models.ItemTypeQuestion,
		QuestionID:  strPtr("q-" + id),
		Prompt:      "prompt " + id,
		Answer:      "answer " + id,
	}
}

func flashcard(id string, userID int64, container string) models.ReviewableItem {
	return models.ReviewableItem{
		ID:          id,
		UserID:      userID,
		ContainerID: container,
		ItemType:    models.ItemTypeFlashcard,
		FlashcardID: strPtr("f-" + id),
		Prompt:      "front " + id,
		Answer:      "back " + id,
	}
}
