package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticlink-core/internal/constant"
	"staticlink-core/internal/dto"
	"staticlink-core/internal/entity"
	"staticlink-core/internal/pkg/logger"
	"staticlink-core/internal/repository/unitofwork"
	"staticlink-core/pkg/database"
)

func newTestService(t *testing.T) IBundleService {
	t.Helper()

	db, err := database.NewGormDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	publisher := NewPublisherService(constant.BundleChangedTopic, pubSub)
	return NewBundleService(unitofwork.NewRepositoryFactory(db), publisher, logger.NewNopLogger())
}

func mustCreate(t *testing.T, svc IBundleService, title string) uuid.UUID {
	t.Helper()
	id, err := svc.Create(context.Background(), &dto.CreateBundleRequest{Title: title})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	return id
}

func mustGet(t *testing.T, svc IBundleService, id uuid.UUID) *entity.Bundle {
	t.Helper()
	b, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

func addLink(t *testing.T, svc IBundleService, bundleId uuid.UUID, title, url string) uuid.UUID {
	t.Helper()
	details, err := json.Marshal(entity.Link{URL: url})
	require.NoError(t, err)
	id, err := svc.AddItem(context.Background(), bundleId, &dto.AddItemRequest{
		Type:    entity.ItemTypeLink,
		Title:   title,
		Details: details,
	})
	require.NoError(t, err)
	return id
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), &dto.CreateBundleRequest{Title: ""})
	assert.Error(t, err)
}

func TestUpdateSetsTitleAndBumpsUpdatedAt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Before")
	before := mustGet(t, svc, id).UpdatedAt

	time.Sleep(5 * time.Millisecond)
	title := "After"
	require.NoError(t, svc.Update(ctx, id, &dto.UpdateBundleRequest{Title: &title}))

	b := mustGet(t, svc, id)
	assert.Equal(t, "After", b.Title)
	assert.True(t, b.UpdatedAt.After(before), "updatedAt must be refreshed")
	assert.False(t, b.UpdatedAt.Before(b.CreatedAt))
}

func TestUpdateMissingBundleIsNoOp(t *testing.T) {
	svc := newTestService(t)
	title := "ghost"
	err := svc.Update(context.Background(), uuid.New(), &dto.UpdateBundleRequest{Title: &title})
	assert.NoError(t, err)
}

func TestSoftDeleteThenRestore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Trip")
	addLink(t, svc, id, "site", "https://x.com")
	pinned := true
	require.NoError(t, svc.Update(ctx, id, &dto.UpdateBundleRequest{IsPinned: &pinned}))

	require.NoError(t, svc.SoftDelete(ctx, id))
	deleted := mustGet(t, svc, id)
	assert.True(t, deleted.IsDeleted)
	require.NotNil(t, deleted.DeletedAt)
	assert.False(t, deleted.IsPinned, "deleted bundles are force-unpinned")

	require.NoError(t, svc.Restore(ctx, id))
	restored := mustGet(t, svc, id)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
	assert.False(t, restored.IsArchived)
	assert.Len(t, restored.Items, 1, "items survive the recycle bin round trip")
}

func TestRestoreKeepsArchivedFlag(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Old stuff")
	require.NoError(t, svc.ArchiveMany(ctx, []uuid.UUID{id}))
	require.NoError(t, svc.SoftDelete(ctx, id))
	require.NoError(t, svc.Restore(ctx, id))

	b := mustGet(t, svc, id)
	assert.True(t, b.IsArchived, "restore only resets deletion fields")
	assert.False(t, b.IsDeleted)
}

func TestArchiveForcesUnpin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Pinned")
	pinned := true
	require.NoError(t, svc.Update(ctx, id, &dto.UpdateBundleRequest{IsPinned: &pinned}))

	require.NoError(t, svc.ArchiveMany(ctx, []uuid.UUID{id}))
	b := mustGet(t, svc, id)
	assert.True(t, b.IsArchived)
	assert.False(t, b.IsPinned)
}

func TestUnarchiveIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Plain")
	before := mustGet(t, svc, id)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.UnarchiveMany(ctx, []uuid.UUID{id}))

	after := mustGet(t, svc, id)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "no spurious updatedAt bump on a no-op")
}

func TestPermanentlyDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Gone")
	require.NoError(t, svc.PermanentlyDelete(ctx, id))

	b, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, b, "no tombstone is kept")
}

func TestDuplicateBundle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Trip")
	addLink(t, svc, id, "site", "https://x.com")
	require.NoError(t, svc.SoftDelete(ctx, id))

	copyId, err := svc.Duplicate(ctx, id)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, copyId)
	require.NotEqual(t, id, copyId)

	dup := mustGet(t, svc, copyId)
	assert.Equal(t, "Trip"+constant.CopySuffix, dup.Title)
	assert.False(t, dup.IsDeleted, "a duplicate of a deleted bundle is undeleted")
	assert.Nil(t, dup.DeletedAt)
	assert.Len(t, dup.Items, 1)

	// Deep copy: mutating the duplicate leaves the source untouched.
	require.NoError(t, svc.RemoveItem(ctx, copyId, dup.Items[0].Id))
	assert.Len(t, mustGet(t, svc, id).Items, 1)
}

func TestDuplicateMissingBundle(t *testing.T) {
	svc := newTestService(t)
	copyId, err := svc.Duplicate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, copyId)
}

func TestMergeLeavesSourcesUntouched(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b1 := mustCreate(t, svc, "One")
	addLink(t, svc, b1, "a", "https://a.com")
	addLink(t, svc, b1, "b", "https://b.com")
	b2 := mustCreate(t, svc, "Two")
	addLink(t, svc, b2, "c", "https://c.com")

	mergedId, err := svc.Merge(ctx, &dto.MergeBundlesRequest{Ids: []uuid.UUID{b1, b2}, Title: "Merged"})
	require.NoError(t, err)

	merged := mustGet(t, svc, mergedId)
	assert.Equal(t, "Merged", merged.Title)
	assert.Len(t, merged.Items, 3)
	assert.Equal(t, "a", merged.Items[0].Title, "source order is preserved")
	assert.Equal(t, "c", merged.Items[2].Title)

	assert.Len(t, mustGet(t, svc, b1).Items, 2)
	assert.Len(t, mustGet(t, svc, b2).Items, 1)
}

func TestImportAssignsFreshIdentity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := entity.WrapItem(entity.ItemTypeNote, "n", entity.Note{Text: "hi"})
	require.NoError(t, err)
	item.Id = uuid.Nil // as stripped QR payloads arrive

	id, err := svc.Import(ctx, &dto.ImportBundleRequest{Title: "Imported", Items: []entity.Item{item}})
	require.NoError(t, err)

	b := mustGet(t, svc, id)
	assert.Equal(t, "Imported", b.Title)
	require.Len(t, b.Items, 1)
	assert.NotEqual(t, uuid.Nil, b.Items[0].Id)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestItemScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Trip")
	linkId := addLink(t, svc, id, "x", "https://x.com")

	noteDetails, err := json.Marshal(entity.Note{Text: "hi"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, &dto.AddItemRequest{Type: entity.ItemTypeNote, Title: "note", Details: noteDetails})
	require.NoError(t, err)

	assert.Len(t, mustGet(t, svc, id).Items, 2)

	dupId, err := svc.DuplicateItem(ctx, id, linkId)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, dupId)
	assert.NotEqual(t, linkId, dupId)

	b := mustGet(t, svc, id)
	require.Len(t, b.Items, 3)
	// Inserted immediately after the original.
	assert.Equal(t, linkId, b.Items[0].Id)
	assert.Equal(t, dupId, b.Items[1].Id)
	assert.Equal(t, "x"+constant.CopySuffix, b.Items[1].Title)
	assert.False(t, b.Items[1].IsPinned)
}

func TestUpdateItemShallowMerge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Trip")
	itemId := addLink(t, svc, id, "old", "https://x.com")

	title := "new"
	pinned := true
	require.NoError(t, svc.UpdateItem(ctx, id, itemId, &dto.UpdateItemRequest{Title: &title, IsPinned: &pinned}))

	b := mustGet(t, svc, id)
	item := b.Items[0]
	assert.Equal(t, "new", item.Title)
	assert.True(t, item.IsPinned)

	var link entity.Link
	require.NoError(t, json.Unmarshal(item.Details, &link))
	assert.Equal(t, "https://x.com", link.URL, "unspecified fields are preserved")

	// Unknown item id: silent no-op.
	require.NoError(t, svc.UpdateItem(ctx, id, uuid.New(), &dto.UpdateItemRequest{Title: &title}))
}

func TestRemoveItems(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Trip")
	a := addLink(t, svc, id, "a", "https://a.com")
	addLink(t, svc, id, "b", "https://b.com")
	c := addLink(t, svc, id, "c", "https://c.com")

	require.NoError(t, svc.RemoveItems(ctx, id, []uuid.UUID{a, c}))
	b := mustGet(t, svc, id)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "b", b.Items[0].Title)
}

func TestMoveItem(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Trip")
	addLink(t, svc, id, "A", "https://a.com")
	addLink(t, svc, id, "B", "https://b.com")
	addLink(t, svc, id, "C", "https://c.com")

	require.NoError(t, svc.MoveItem(ctx, id, 0, 2))

	b := mustGet(t, svc, id)
	titles := []string{b.Items[0].Title, b.Items[1].Title, b.Items[2].Title}
	assert.Equal(t, []string{"B", "C", "A"}, titles)

	// Out-of-range indices are no-ops.
	require.NoError(t, svc.MoveItem(ctx, id, 0, 99))
	assert.Equal(t, "B", mustGet(t, svc, id).Items[0].Title)
}

func TestPasswordGate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, svc, "Secret")

	ok, err := svc.VerifyPassword(ctx, id, "anything")
	require.NoError(t, err)
	assert.True(t, ok, "no password set means no gate")

	require.NoError(t, svc.SetPassword(ctx, id, "hunter2"))
	b := mustGet(t, svc, id)
	assert.True(t, b.IsLocked)
	require.NotNil(t, b.PasswordHash)
	assert.NotContains(t, *b.PasswordHash, "hunter2")

	ok, err = svc.VerifyPassword(ctx, id, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, id, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.ClearPassword(ctx, id))
	b = mustGet(t, svc, id)
	assert.False(t, b.IsLocked)
	assert.Nil(t, b.PasswordHash)
}

func TestConcurrentItemAddsDoNotDropWrites(t *testing.T) {
	svc := newTestService(t)

	id := mustCreate(t, svc, "Busy")

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			addLink(t, svc, id, "item", "https://x.com")
		}()
	}
	wg.Wait()

	assert.Len(t, mustGet(t, svc, id).Items, n)
}
