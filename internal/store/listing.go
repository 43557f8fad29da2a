package store

import (
	"github.com/google/btree"

	"github.com/efreitasn/marketcore/internal/domain"
)

// arenaDegree is the B-tree degree shared by the id-keyed arenas.
const arenaDegree = 32

func listingLess(a, b *domain.Listing) bool { return a.ID < b.ID }

// ListingStore is the append-only sequence of listings. Listing ids are
// allocated monotonically, so ascending id order is insertion order; the
// B-tree turns the id lookup into O(log n) without changing that order.
//
// ListingStore is not safe for concurrent use; the engine serialises access.
type ListingStore struct {
	listings *btree.BTreeG[*domain.Listing]
}

// NewListingStore creates an empty ListingStore.
func NewListingStore() *ListingStore {
	return &ListingStore{
		listings: btree.NewG[*domain.Listing](arenaDegree, listingLess),
	}
}

// Append adds a listing to the end of the sequence.
func (s *ListingStore) Append(l *domain.Listing) {
	s.listings.ReplaceOrInsert(l)
}

// Get retrieves a listing by id. It returns domain.ErrInvalidListing if no
// listing has that id. The returned pointer is the stored record.
func (s *ListingStore) Get(id uint64) (*domain.Listing, error) {
	l, ok := s.listings.Get(&domain.Listing{ID: id})
	if !ok {
		return nil, domain.ErrInvalidListing
	}
	return l, nil
}

// All returns copies of every listing in sequence order.
// Returns an empty slice if there are none.
func (s *ListingStore) All() []domain.Listing {
	return s.filter(func(*domain.Listing) bool { return true })
}

// BySeller returns copies of the listings published by p, in sequence order.
func (s *ListingStore) BySeller(p domain.Principal) []domain.Listing {
	return s.filter(func(l *domain.Listing) bool { return l.Seller == p })
}

// Len returns the number of listings.
func (s *ListingStore) Len() int {
	return s.listings.Len()
}

func (s *ListingStore) filter(keep func(*domain.Listing) bool) []domain.Listing {
	result := make([]domain.Listing, 0)
	s.listings.Ascend(func(l *domain.Listing) bool {
		if keep(l) {
			result = append(result, *l)
		}
		return true
	})
	return result
}
