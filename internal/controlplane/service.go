// Package controlplane provides the HTTP API and service layer for the timeline.
package controlplane

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fentz26/timeline/internal/audit"
	"github.com/fentz26/timeline/internal/cache"
	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/store"
	"github.com/fentz26/timeline/internal/timeline"
)

// Service provides the timeline business logic on top of the item store.
type Service struct {
	store   *store.Store
	audit   *audit.Recorder
	views   *timeline.Cache
	layouts cache.Cache
}

// NewService creates a new control plane service. layouts may be nil to
// disable the derived-layout cache.
func NewService(s *store.Store, rec *audit.Recorder, views *timeline.Cache, layouts cache.Cache) *Service {
	return &Service{
		store:   s,
		audit:   rec,
		views:   views,
		layouts: layouts,
	}
}

// --- Item Operations ---

// LoadItems replaces the store contents with items.
func (s *Service) LoadItems(items []models.Item) (int64, error) {
	inputs := map[string]interface{}{"count": len(items), "items": items}
	rev, err := s.store.Load(items)
	if err != nil {
		s.audit.Rejected(models.ChangeLoad, "", inputs, err)
		return 0, err
	}
	s.audit.Record(models.ChangeLoad, "", inputs, audit.OutcomeApplied, fmt.Sprintf("%d items", len(items)))
	log.Info("items loaded into store", "count", len(items), "revision", rev)
	return rev, nil
}

// Snapshot returns the current revision and items.
func (s *Service) Snapshot() (store.Snapshot, error) {
	return s.store.Snapshot()
}

// GetItem retrieves an item by id.
func (s *Service) GetItem(id string) (*models.Item, error) {
	return s.store.GetItem(id)
}

// RenameItem renames an item and records the change.
func (s *Service) RenameItem(id, name string) error {
	inputs := map[string]string{"id": id, "name": name}
	if err := s.store.RenameItem(id, name); err != nil {
		s.audit.Rejected(models.ChangeRename, id, inputs, err)
		return err
	}
	s.audit.Applied(models.ChangeRename, id, inputs)
	log.Debug("item renamed", "id", id)
	return nil
}

// RescheduleItem moves an item to new dates and records the change.
func (s *Service) RescheduleItem(id, start, end string) error {
	inputs := map[string]string{"id": id, "start": start, "end": end}
	if err := s.store.RescheduleItem(id, start, end); err != nil {
		s.audit.Rejected(models.ChangeReschedule, id, inputs, err)
		return err
	}
	s.audit.Applied(models.ChangeReschedule, id, inputs)
	log.Debug("item rescheduled", "id", id, "start", start, "end", end)
	return nil
}

// Changes returns recent change records, optionally for one item.
func (s *Service) Changes(itemID string, limit int) ([]models.ChangeRecord, error) {
	return s.store.ListChanges(itemID, limit)
}

// --- Layout Operations ---

// View returns the memoized view of the current revision.
func (s *Service) View() (timeline.View, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return timeline.View{}, err
	}
	return s.views.Get(snap.Revision, func() []models.Item { return snap.Items }), nil
}

// LayoutJSON returns the encoded layout document, served from the layout
// cache when the same items were laid out before.
func (s *Service) LayoutJSON(ctx context.Context, strict bool) ([]byte, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:r%d", cache.Key(snap.Items, strict), snap.Revision)

	if s.layouts != nil {
		data, ok, err := s.layouts.Get(ctx, key)
		if err != nil {
			log.Error("layout cache get failed", err, "key", key)
		} else if ok {
			return data, nil
		}
	}

	opts := timeline.Options{Strict: strict}
	var view timeline.View
	if s.views.Options() == opts {
		view = s.views.Get(snap.Revision, func() []models.Item { return snap.Items })
	} else {
		view = timeline.Build(snap.Revision, snap.Items, opts)
	}
	data, err := json.Marshal(view.Document())
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}

	if s.layouts != nil {
		if err := s.layouts.Set(ctx, key, data); err != nil {
			log.Error("layout cache set failed", err, "key", key)
		}
	}
	return data, nil
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
