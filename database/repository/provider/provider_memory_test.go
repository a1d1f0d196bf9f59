package providerRepo

import (
	"context"
	"errors"
	"testing"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

func TestFindActiveByServiceExactMatch(t *testing.T) {
	repo := NewMemoryProviderRepo(
		models.ProviderCatalogEntry{ID: "p1", Services: []string{"Deep House Cleaning"}, Active: true},
		models.ProviderCatalogEntry{ID: "p2", Services: []string{"Deep Cleaning"}, Active: true},
		models.ProviderCatalogEntry{ID: "p3", Services: []string{"Deep House Cleaning", "Laundry"}, Active: false},
		models.ProviderCatalogEntry{ID: "p4", Services: []string{"deep house cleaning"}, Active: true},
		models.ProviderCatalogEntry{ID: "p5", Services: []string{"Laundry", "Deep House Cleaning"}, Active: true},
	)

	got, err := repo.FindActiveByService(context.Background(), "Deep House Cleaning")
	if err != nil {
		t.Fatalf("FindActiveByService: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p5" {
		t.Fatalf("got %+v, want p1 and p5", got)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewMemoryProviderRepo()
	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("err = %v, want ErrProviderNotFound", err)
	}
}
