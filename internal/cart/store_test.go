package cart

import (
	"math"
	"sync"
	"testing"

	"github.com/dujiao-next/storefront-cart/internal/models"
)

func newLine(productID, colorID, storageID string, quantity int, price int64) models.CartLineItem {
	return models.CartLineItem{
		ProductID:      productID,
		ProductName:    "iPhone " + productID,
		UnitPrice:      price,
		ColorVariant:   models.ColorVariant{ColorID: colorID, ColorName: "Red", ColorSwatch: "#FF0000"},
		StorageVariant: models.StorageVariant{StorageID: storageID, StorageName: "256GB"},
		Quantity:       quantity,
		ImageURL:       "https://cdn.example.com/" + productID + ".png",
	}
}

func sumQuantities(items []models.CartLineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func TestAddItemMergesSameIdentityFirstPriceWins(t *testing.T) {
	persist := NewMemoryPersistence()
	store := NewStore(persist)

	store.AddItem(newLine("P1", "C1", "S1", 1, 1000))
	store.AddItem(newLine("P1", "C1", "S1", 2, 999))

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("quantity want 3 got %d", items[0].Quantity)
	}
	if items[0].UnitPrice != 1000 {
		t.Fatalf("first price should win, got %d", items[0].UnitPrice)
	}
	if !persist.Stored() {
		t.Fatalf("non-empty cart should be persisted")
	}
}

func TestAddItemMergeSumsAllQuantities(t *testing.T) {
	store := NewStore(nil)
	quantities := []int{1, 4, 2, 7, 3}
	want := 0
	for _, q := range quantities {
		store.AddItem(newLine("P1", "C1", "S1", q, 500))
		want += q
	}
	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected exactly one line for identity, got %d", len(items))
	}
	if items[0].Quantity != want {
		t.Fatalf("quantity want %d got %d", want, items[0].Quantity)
	}
}

func TestAddItemCoercesNonPositiveQuantityToOne(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 0, 100))
	store.AddItem(newLine("P2", "C1", "S1", -3, 100))

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("add must never drop a request, got %d lines", len(items))
	}
	for _, item := range items {
		if item.Quantity != 1 {
			t.Fatalf("quantity for %s want 1 got %d", item.ProductID, item.Quantity)
		}
	}
}

func TestAddItemDistinctVariantsAppendInOrder(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 1, 100))
	store.AddItem(newLine("P1", "C2", "S1", 1, 100))
	store.AddItem(newLine("P1", "C1", "S2", 1, 100))
	store.AddItem(newLine("P0", "C1", "S1", 1, 100))

	items := store.Items()
	want := []models.LineIdentity{
		models.NewLineIdentity("P1", "C1", "S1"),
		models.NewLineIdentity("P1", "C2", "S1"),
		models.NewLineIdentity("P1", "C1", "S2"),
		models.NewLineIdentity("P0", "C1", "S1"),
	}
	if len(items) != len(want) {
		t.Fatalf("line count want %d got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].Identity() != id {
			t.Fatalf("line %d want %s got %s", i, id, items[i].Identity())
		}
	}
}

func TestRemoveItemKeepsOtherLines(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 2, 100))
	store.AddItem(newLine("P2", "C2", "S2", 1, 100))

	store.RemoveItem("P1", "C1", "S1")

	items := store.Items()
	if len(items) != 1 || items[0].Identity() != models.NewLineIdentity("P2", "C2", "S2") {
		t.Fatalf("unexpected lines after remove: %+v", items)
	}
	if items[0].Quantity != 1 {
		t.Fatalf("remaining quantity want 1 got %d", items[0].Quantity)
	}
	if store.Count() != 1 {
		t.Fatalf("count want 1 got %d", store.Count())
	}
}

func TestRemoveItemAbsentIsNoop(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 2, 100))
	notified := 0
	store.Subscribe(func([]models.CartLineItem) { notified++ })

	store.RemoveItem("P1", "C1", "S9")

	if store.Count() != 2 {
		t.Fatalf("count want 2 got %d", store.Count())
	}
	if notified != 0 {
		t.Fatalf("absent removal should not notify, got %d", notified)
	}
}

func TestRemoveLastItemClearsSlot(t *testing.T) {
	persist := NewMemoryPersistence()
	store := NewStore(persist)
	store.AddItem(newLine("P1", "C1", "S1", 2, 100))

	store.RemoveItem("P1", "C1", "S1")

	if persist.Stored() {
		t.Fatalf("emptied cart should clear the slot instead of storing []")
	}
	if store.Count() != 0 {
		t.Fatalf("count want 0 got %d", store.Count())
	}
}

func TestUpdateQuantityReplaces(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 2, 100))

	store.UpdateQuantity("P1", "C1", "S1", 7)

	items := store.Items()
	if items[0].Quantity != 7 {
		t.Fatalf("quantity should be replaced, want 7 got %d", items[0].Quantity)
	}
}

func TestUpdateQuantityNonPositiveRemovesLine(t *testing.T) {
	for _, q := range []int{0, -1, -50} {
		store := NewStore(nil)
		store.AddItem(newLine("P1", "C1", "S1", 2, 100))
		store.AddItem(newLine("P2", "C1", "S1", 1, 100))

		store.UpdateQuantity("P1", "C1", "S1", q)

		for _, item := range store.Items() {
			if item.Identity() == models.NewLineIdentity("P1", "C1", "S1") {
				t.Fatalf("quantity %d should remove the line", q)
			}
		}
		if store.Count() != 1 {
			t.Fatalf("count want 1 got %d", store.Count())
		}
	}
}

func TestUpdateQuantityToZeroEmptiesCartAndSlot(t *testing.T) {
	persist := NewMemoryPersistence()
	store := NewStore(persist)
	store.AddItem(newLine("P1", "C1", "S1", 5, 100))

	store.UpdateQuantity("P1", "C1", "S1", 0)

	if len(store.Items()) != 0 {
		t.Fatalf("cart should be empty")
	}
	if persist.Stored() {
		t.Fatalf("slot should be absent, not stored as []")
	}
}

func TestUpdateQuantityAbsentIsNoop(t *testing.T) {
	persist := NewMemoryPersistence()
	store := NewStore(persist)

	store.UpdateQuantity("P1", "C1", "S1", 3)

	if len(store.Items()) != 0 {
		t.Fatalf("update must not create lines")
	}
	if persist.Stored() {
		t.Fatalf("noop update must not write storage")
	}
}

func TestClearEmptyCartIsNoop(t *testing.T) {
	persist := NewMemoryPersistence()
	store := NewStore(persist)
	notified := 0
	store.Subscribe(func([]models.CartLineItem) { notified++ })

	store.Clear()

	if persist.Stored() {
		t.Fatalf("storage should remain absent")
	}
	if notified != 0 {
		t.Fatalf("clearing an empty cart should not notify")
	}
	if store.Count() != 0 {
		t.Fatalf("count want 0 got %d", store.Count())
	}
}

func TestClearRemovesLinesAndSlot(t *testing.T) {
	persist := NewMemoryPersistence()
	store := NewStore(persist)
	store.AddItem(newLine("P1", "C1", "S1", 1, 100))
	store.AddItem(newLine("P2", "C1", "S1", 1, 100))
	var last []models.CartLineItem
	store.Subscribe(func(snapshot []models.CartLineItem) { last = snapshot })

	store.Clear()

	if len(store.Items()) != 0 || persist.Stored() {
		t.Fatalf("clear should empty memory and storage")
	}
	if last == nil || len(last) != 0 {
		t.Fatalf("listener should receive an empty snapshot, got %+v", last)
	}
}

func TestCountInvariantAcrossOperations(t *testing.T) {
	store := NewStore(nil)
	check := func(step string) {
		t.Helper()
		if got, want := store.Count(), sumQuantities(store.Items()); got != want {
			t.Fatalf("%s: count %d != sum %d", step, got, want)
		}
	}
	check("empty")
	store.AddItem(newLine("P1", "C1", "S1", 2, 100))
	check("add")
	store.AddItem(newLine("P2", "C1", "S1", 3, 100))
	check("add second")
	store.UpdateQuantity("P2", "C1", "S1", 1)
	check("update")
	store.RemoveItem("P1", "C1", "S1")
	check("remove")
	store.UpdateQuantity("P2", "C1", "S1", 0)
	check("update to zero")
	if store.Count() != 0 {
		t.Fatalf("count after emptying want 0 got %d", store.Count())
	}
}

func TestTotalUsesSnapshotPrices(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 2, 1000))
	store.AddItem(newLine("P2", "C1", "S1", 1, 250))
	if store.Total() != 2250 {
		t.Fatalf("total want 2250 got %d", store.Total())
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 2, 100))

	items := store.Items()
	items[0].Quantity = 99
	items = append(items, newLine("P9", "C9", "S9", 1, 1))

	if store.Count() != 2 {
		t.Fatalf("mutating a snapshot must not change the store, count=%d", store.Count())
	}
}

func TestNewStoreHydratesFromPersistence(t *testing.T) {
	persist := NewMemoryPersistence(
		newLine("P1", "C1", "S1", 1, 100),
		newLine("P1", "C1", "S1", 2, 100),
		newLine("P2", "C1", "S1", 0, 100),
	)
	store := NewStore(persist)

	items := store.Items()
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("hydration should merge duplicates and drop empty lines, got %+v", items)
	}
}

func TestSubscribeReceivesLatestSnapshot(t *testing.T) {
	store := NewStore(nil)
	var snapshots [][]models.CartLineItem
	unsubscribe := store.Subscribe(func(snapshot []models.CartLineItem) {
		snapshots = append(snapshots, snapshot)
	})

	store.AddItem(newLine("P1", "C1", "S1", 1, 100))
	store.AddItem(newLine("P1", "C1", "S1", 1, 100))
	store.UpdateQuantity("P1", "C1", "S1", 5)

	if len(snapshots) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(snapshots))
	}
	if snapshots[2][0].Quantity != 5 {
		t.Fatalf("last snapshot quantity want 5 got %d", snapshots[2][0].Quantity)
	}

	snapshots[2][0].Quantity = 42
	if store.Items()[0].Quantity != 5 {
		t.Fatalf("listener snapshot must be a copy")
	}

	unsubscribe()
	unsubscribe()
	store.AddItem(newLine("P2", "C1", "S1", 1, 100))
	if len(snapshots) != 3 {
		t.Fatalf("unsubscribed listener should not be called")
	}
	if store.SubscriberCount() != 0 {
		t.Fatalf("subscriber count want 0 got %d", store.SubscriberCount())
	}
}

func TestListenerCanReadStore(t *testing.T) {
	store := NewStore(nil)
	var seen int
	store.Subscribe(func([]models.CartLineItem) {
		seen = store.Count()
	})
	store.AddItem(newLine("P1", "C1", "S1", 4, 100))
	if seen != 4 {
		t.Fatalf("listener read count want 4 got %d", seen)
	}
}

func TestConcurrentAddsKeepSingleLine(t *testing.T) {
	store := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddItem(newLine("P1", "C1", "S1", 2, 100))
		}()
	}
	wg.Wait()

	items := store.Items()
	if len(items) != 1 || items[0].Quantity != 100 {
		t.Fatalf("concurrent adds should merge into one line of 100, got %+v", items)
	}
}

func TestAddItemMergeStopsAtLineLimit(t *testing.T) {
	persist := NewMemoryPersistence()
	store := NewStore(persist)

	store.AddItem(newLine("P1", "C1", "S1", math.MaxInt, 1000))
	store.AddItem(newLine("P1", "C1", "S1", 2, 1000))

	items := store.Items()
	if len(items) != 1 || items[0].Quantity != models.MaxLineQuantity {
		t.Fatalf("quantity should stop at %d, got %+v", models.MaxLineQuantity, items)
	}
	if store.Count() != models.MaxLineQuantity {
		t.Fatalf("count want %d got %d", models.MaxLineQuantity, store.Count())
	}
	if store.Total() != int64(models.MaxLineQuantity)*1000 {
		t.Fatalf("unexpected total %d", store.Total())
	}

	// 重新加载后与内存一致
	reloaded := NewStore(persist)
	if got := reloaded.Items(); len(got) != 1 || got[0].Quantity != models.MaxLineQuantity {
		t.Fatalf("reload should keep the capped line, got %+v", got)
	}
}

func TestUpdateQuantityCapsAtLineLimit(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", 1, 100))
	store.UpdateQuantity("P1", "C1", "S1", math.MaxInt)

	items := store.Items()
	if len(items) != 1 || items[0].Quantity != models.MaxLineQuantity {
		t.Fatalf("update should cap quantity, got %+v", items)
	}
}

func TestTotalDoesNotOverflow(t *testing.T) {
	store := NewStore(nil)
	store.AddItem(newLine("P1", "C1", "S1", models.MaxLineQuantity, math.MaxInt64/2))
	store.AddItem(newLine("P2", "C1", "S1", models.MaxLineQuantity, math.MaxInt64/2))

	if store.Total() != math.MaxInt64 {
		t.Fatalf("total should saturate, got %d", store.Total())
	}
	if store.Count() != 2*models.MaxLineQuantity {
		t.Fatalf("unexpected count %d", store.Count())
	}
}
