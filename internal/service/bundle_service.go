// FILE: internal/service/bundle_service.go
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"staticlink-core/internal/constant"
	"staticlink-core/internal/dto"
	"staticlink-core/internal/entity"
	"staticlink-core/internal/pkg/logger"
	"staticlink-core/internal/pkg/validation"
	"staticlink-core/internal/repository/specification"
	"staticlink-core/internal/repository/unitofwork"
)

// IBundleService is the single source of truth for all bundles. Operations
// on a missing bundle id are silent no-ops: the UI tolerates races between
// render and action. Underlying persistence failures propagate unmodified.
type IBundleService interface {
	Create(ctx context.Context, req *dto.CreateBundleRequest) (uuid.UUID, error)
	Import(ctx context.Context, req *dto.ImportBundleRequest) (uuid.UUID, error)
	Duplicate(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Bundle, error)
	GetAll(ctx context.Context) ([]*entity.Bundle, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateBundleRequest) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SoftDeleteMany(ctx context.Context, ids []uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	RestoreMany(ctx context.Context, ids []uuid.UUID) error
	PermanentlyDelete(ctx context.Context, id uuid.UUID) error
	PermanentlyDeleteMany(ctx context.Context, ids []uuid.UUID) error
	ArchiveMany(ctx context.Context, ids []uuid.UUID) error
	UnarchiveMany(ctx context.Context, ids []uuid.UUID) error
	Merge(ctx context.Context, req *dto.MergeBundlesRequest) (uuid.UUID, error)

	AddItem(ctx context.Context, bundleId uuid.UUID, req *dto.AddItemRequest) (uuid.UUID, error)
	AddItems(ctx context.Context, bundleId uuid.UUID, reqs []*dto.AddItemRequest) error
	UpdateItem(ctx context.Context, bundleId, itemId uuid.UUID, req *dto.UpdateItemRequest) error
	DuplicateItem(ctx context.Context, bundleId, itemId uuid.UUID) (uuid.UUID, error)
	RemoveItem(ctx context.Context, bundleId, itemId uuid.UUID) error
	RemoveItems(ctx context.Context, bundleId uuid.UUID, itemIds []uuid.UUID) error
	MoveItem(ctx context.Context, bundleId uuid.UUID, fromIndex, toIndex int) error

	SetPassword(ctx context.Context, id uuid.UUID, password string) error
	VerifyPassword(ctx context.Context, id uuid.UUID, password string) (bool, error)
	ClearPassword(ctx context.Context, id uuid.UUID) error
}

type bundleService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	sysLogger        logger.ILogger

	// One mutex per bundle id serializes the read-modify-write sequence so
	// concurrent mutations of the same record cannot interleave. Distinct
	// ids never contend.
	locks sync.Map
}

func NewBundleService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
) IBundleService {
	return &bundleService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		sysLogger:        sysLogger,
	}
}

func (s *bundleService) lock(id uuid.UUID) func() {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// mutate runs fn inside the per-bundle critical section. A nil bundle means
// the id does not exist and fn is skipped. When fn reports a change the
// bundle's UpdatedAt is refreshed, the record saved and a change event
// published.
func (s *bundleService) mutate(ctx context.Context, id uuid.UUID, op string, fn func(b *entity.Bundle) (bool, error)) error {
	unlock := s.lock(id)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	bundle, err := uow.BundleRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if bundle == nil {
		return nil
	}

	changed, err := fn(bundle)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	bundle.UpdatedAt = time.Now()
	if err := uow.BundleRepository().Update(ctx, bundle); err != nil {
		return err
	}

	s.publishChange(ctx, id, op)
	return nil
}

func (s *bundleService) publishChange(ctx context.Context, id uuid.UUID, op string) {
	msg := dto.BundleChangedMessage{
		BundleId:  id,
		Operation: op,
		At:        time.Now(),
	}
	payload, _ := json.Marshal(msg)
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.sysLogger.Warn("bundle", "Failed to publish change event", map[string]interface{}{
			"bundle_id": id.String(),
			"operation": op,
			"error":     err.Error(),
		})
	}
}

func (s *bundleService) createBundle(ctx context.Context, op, title string, items []entity.Item) (uuid.UUID, error) {
	now := time.Now()
	bundle := entity.Bundle{
		Id:        uuid.New(),
		Title:     title,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BundleRepository().Create(ctx, &bundle); err != nil {
		return uuid.Nil, err
	}

	s.publishChange(ctx, bundle.Id, op)
	return bundle.Id, nil
}

func (s *bundleService) Create(ctx context.Context, req *dto.CreateBundleRequest) (uuid.UUID, error) {
	if err := validation.ValidateRequest(req); err != nil {
		return uuid.Nil, err
	}
	return s.createBundle(ctx, "create", req.Title, make([]entity.Item, 0))
}

func (s *bundleService) Import(ctx context.Context, req *dto.ImportBundleRequest) (uuid.UUID, error) {
	if err := validation.ValidateRequest(req); err != nil {
		return uuid.Nil, err
	}
	items := make([]entity.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = item.Clone()
		// QR payloads arrive with ids and timestamps stripped.
		if items[i].Id == uuid.Nil {
			items[i].Id = uuid.New()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = time.Now()
		}
	}
	return s.createBundle(ctx, "import", req.Title, items)
}

func (s *bundleService) Duplicate(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	src, err := uow.BundleRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return uuid.Nil, err
	}
	if src == nil {
		return uuid.Nil, nil
	}

	now := time.Now()
	copy := entity.Bundle{
		Id:           uuid.New(),
		Title:        src.Title + constant.CopySuffix,
		Items:        src.CloneItems(),
		IsPinned:     src.IsPinned,
		IsArchived:   src.IsArchived,
		IsLocked:     src.IsLocked,
		PasswordHash: src.PasswordHash,
		// A duplicate of a deleted bundle comes back undeleted.
		IsDeleted: false,
		DeletedAt: nil,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uow.BundleRepository().Create(ctx, &copy); err != nil {
		return uuid.Nil, err
	}
	s.publishChange(ctx, copy.Id, "duplicate")
	return copy.Id, nil
}

func (s *bundleService) Get(ctx context.Context, id uuid.UUID) (*entity.Bundle, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.BundleRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *bundleService) GetAll(ctx context.Context) ([]*entity.Bundle, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.BundleRepository().FindAll(ctx, specification.OrderBy{Field: "updated_at", Desc: true})
}

func (s *bundleService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateBundleRequest) error {
	if err := validation.ValidateRequest(req); err != nil {
		return err
	}
	return s.mutate(ctx, id, "update", func(b *entity.Bundle) (bool, error) {
		if req.Title != nil {
			b.Title = *req.Title
		}
		if req.IsPinned != nil {
			b.IsPinned = *req.IsPinned
		}
		if req.IsLocked != nil {
			b.IsLocked = *req.IsLocked
		}
		if req.Items != nil {
			b.Items = *req.Items
		}
		return true, nil
	})
}

func (s *bundleService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, "soft_delete", func(b *entity.Bundle) (bool, error) {
		if b.IsDeleted {
			return false, nil
		}
		now := time.Now()
		b.IsDeleted = true
		b.DeletedAt = &now
		// A bundle cannot sit pinned inside the recycle bin.
		b.IsPinned = false
		return true, nil
	})
}

func (s *bundleService) SoftDeleteMany(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := s.SoftDelete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *bundleService) Restore(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, "restore", func(b *entity.Bundle) (bool, error) {
		if !b.IsDeleted {
			return false, nil
		}
		b.IsDeleted = false
		b.DeletedAt = nil
		return true, nil
	})
}

func (s *bundleService) RestoreMany(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := s.Restore(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *bundleService) PermanentlyDelete(ctx context.Context, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BundleRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, id, "permanent_delete")
	return nil
}

func (s *bundleService) PermanentlyDeleteMany(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := s.PermanentlyDelete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *bundleService) ArchiveMany(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		err := s.mutate(ctx, id, "archive", func(b *entity.Bundle) (bool, error) {
			if b.IsArchived && !b.IsPinned {
				return false, nil
			}
			b.IsArchived = true
			// Archived bundles never show in the pinned section.
			b.IsPinned = false
			return true, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *bundleService) UnarchiveMany(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		err := s.mutate(ctx, id, "unarchive", func(b *entity.Bundle) (bool, error) {
			if !b.IsArchived {
				// Already unarchived: leave the record untouched, no
				// spurious UpdatedAt bump.
				return false, nil
			}
			b.IsArchived = false
			return true, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *bundleService) Merge(ctx context.Context, req *dto.MergeBundlesRequest) (uuid.UUID, error) {
	if err := validation.ValidateRequest(req); err != nil {
		return uuid.Nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items := make([]entity.Item, 0)
	for _, id := range req.Ids {
		src, err := uow.BundleRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return uuid.Nil, err
		}
		if src == nil {
			continue
		}
		// Item ids are scoped per bundle, so deep copies keep them.
		items = append(items, src.CloneItems()...)
	}

	title := req.Title
	if title == "" {
		title = constant.MergedDefaultTitle
	}
	return s.createBundle(ctx, "merge", title, items)
}

// Item operations. Each refreshes the owning bundle's UpdatedAt on success.

func (s *bundleService) AddItem(ctx context.Context, bundleId uuid.UUID, req *dto.AddItemRequest) (uuid.UUID, error) {
	if err := validation.ValidateRequest(req); err != nil {
		return uuid.Nil, err
	}

	var itemId uuid.UUID
	err := s.mutate(ctx, bundleId, "add_item", func(b *entity.Bundle) (bool, error) {
		item := entity.NewItem(req.Type, req.Title, req.Details)
		item.Color = req.Color
		itemId = item.Id

		if req.Position != nil && *req.Position >= 0 && *req.Position < len(b.Items) {
			pos := *req.Position
			b.Items = append(b.Items[:pos], append([]entity.Item{item}, b.Items[pos:]...)...)
		} else {
			b.Items = append(b.Items, item)
		}
		return true, nil
	})
	return itemId, err
}

func (s *bundleService) AddItems(ctx context.Context, bundleId uuid.UUID, reqs []*dto.AddItemRequest) error {
	for _, req := range reqs {
		if err := validation.ValidateRequest(req); err != nil {
			return err
		}
	}
	return s.mutate(ctx, bundleId, "add_items", func(b *entity.Bundle) (bool, error) {
		for _, req := range reqs {
			item := entity.NewItem(req.Type, req.Title, req.Details)
			item.Color = req.Color
			b.Items = append(b.Items, item)
		}
		return len(reqs) > 0, nil
	})
}

func (s *bundleService) UpdateItem(ctx context.Context, bundleId, itemId uuid.UUID, req *dto.UpdateItemRequest) error {
	return s.mutate(ctx, bundleId, "update_item", func(b *entity.Bundle) (bool, error) {
		idx := b.ItemIndex(itemId)
		if idx < 0 {
			return false, nil
		}
		item := &b.Items[idx]
		if req.Title != nil {
			item.Title = *req.Title
		}
		if req.Color != nil {
			item.Color = *req.Color
		}
		if req.IsPinned != nil {
			item.IsPinned = *req.IsPinned
		}
		if req.Details != nil {
			item.Details = req.Details
		}
		return true, nil
	})
}

func (s *bundleService) DuplicateItem(ctx context.Context, bundleId, itemId uuid.UUID) (uuid.UUID, error) {
	var newId uuid.UUID
	err := s.mutate(ctx, bundleId, "duplicate_item", func(b *entity.Bundle) (bool, error) {
		idx := b.ItemIndex(itemId)
		if idx < 0 {
			return false, nil
		}
		copy := b.Items[idx].Clone()
		copy.Id = uuid.New()
		copy.Title += constant.CopySuffix
		copy.IsPinned = false
		copy.CreatedAt = time.Now()
		newId = copy.Id

		// Insert immediately after the original.
		b.Items = append(b.Items[:idx+1], append([]entity.Item{copy}, b.Items[idx+1:]...)...)
		return true, nil
	})
	return newId, err
}

func (s *bundleService) RemoveItem(ctx context.Context, bundleId, itemId uuid.UUID) error {
	return s.RemoveItems(ctx, bundleId, []uuid.UUID{itemId})
}

func (s *bundleService) RemoveItems(ctx context.Context, bundleId uuid.UUID, itemIds []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool, len(itemIds))
	for _, id := range itemIds {
		drop[id] = true
	}
	return s.mutate(ctx, bundleId, "remove_items", func(b *entity.Bundle) (bool, error) {
		kept := make([]entity.Item, 0, len(b.Items))
		for _, item := range b.Items {
			if !drop[item.Id] {
				kept = append(kept, item)
			}
		}
		if len(kept) == len(b.Items) {
			return false, nil
		}
		b.Items = kept
		return true, nil
	})
}

func (s *bundleService) MoveItem(ctx context.Context, bundleId uuid.UUID, fromIndex, toIndex int) error {
	return s.mutate(ctx, bundleId, "move_item", func(b *entity.Bundle) (bool, error) {
		n := len(b.Items)
		if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n || fromIndex == toIndex {
			return false, nil
		}
		item := b.Items[fromIndex]
		rest := append(b.Items[:fromIndex:fromIndex], b.Items[fromIndex+1:]...)
		b.Items = append(rest[:toIndex:toIndex], append([]entity.Item{item}, rest[toIndex:]...)...)
		return true, nil
	})
}

// Password gating. The hash only gates UI access; the stored data itself is
// not encrypted.

func (s *bundleService) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.mutate(ctx, id, "set_password", func(b *entity.Bundle) (bool, error) {
		h := string(hash)
		b.PasswordHash = &h
		b.IsLocked = true
		return true, nil
	})
}

func (s *bundleService) VerifyPassword(ctx context.Context, id uuid.UUID, password string) (bool, error) {
	bundle, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if bundle == nil {
		return false, nil
	}
	if bundle.PasswordHash == nil {
		return true, nil
	}
	err = bcrypt.CompareHashAndPassword([]byte(*bundle.PasswordHash), []byte(password))
	return err == nil, nil
}

func (s *bundleService) ClearPassword(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, "clear_password", func(b *entity.Bundle) (bool, error) {
		b.PasswordHash = nil
		b.IsLocked = false
		return true, nil
	})
}
