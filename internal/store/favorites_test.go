package store

import (
	"context"
	"testing"

	"github.com/chancenmarket/chancen/internal/db"
)

func TestFavoritesLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := createTestUser(t, database, "seller")
	buyer := createTestUser(t, database, "buyer")
	first := createTestListing(t, database, seller, "Fahrrad", "other", 150)
	second := createTestListing(t, database, seller, "Lampe", "furniture", 25)

	added, err := AddFavorite(ctx, database, buyer.ID, first.ID)
	if err != nil || !added {
		t.Fatalf("AddFavorite: added=%v err=%v", added, err)
	}
	added, err = AddFavorite(ctx, database, buyer.ID, first.ID)
	if err != nil {
		t.Fatalf("AddFavorite again: %v", err)
	}
	if added {
		t.Error("expected duplicate favorite to report false")
	}
	AddFavorite(ctx, database, buyer.ID, second.ID)

	ok, _ := IsFavorite(ctx, database, buyer.ID, first.ID)
	if !ok {
		t.Error("expected listing to be a favorite")
	}
	ok, _ = IsFavorite(ctx, database, seller.ID, first.ID)
	if ok {
		t.Error("expected favorites to be per user")
	}

	favs, err := ListFavorites(ctx, database, buyer.ID)
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(favs) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(favs))
	}
	if favs[0].ID != second.ID {
		t.Errorf("expected most recent favorite first, got %q", favs[0].Title)
	}

	removed, err := RemoveFavorite(ctx, database, buyer.ID, first.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveFavorite: removed=%v err=%v", removed, err)
	}
	removed, _ = RemoveFavorite(ctx, database, buyer.ID, first.ID)
	if removed {
		t.Error("expected second remove to report false")
	}
}
