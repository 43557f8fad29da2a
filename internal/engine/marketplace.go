package engine

import (
	"fmt"
	"sync"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/store"
)

// Marketplace is the transactional core. It owns every arena and the id
// allocator, and runs each public operation to completion under a single
// lock. A failing operation leaves all state exactly as it found it.
type Marketplace struct {
	mu       sync.Mutex
	users    *store.UserStore
	products *store.ProductStore
	listings *store.ListingStore
	orders   *store.OrderStore
	ids      *domain.IDAllocator

	// version is bumped after every successful mutation.
	version uint64
}

// New creates an empty marketplace.
func New() *Marketplace {
	return &Marketplace{
		users:    store.NewUserStore(),
		products: store.NewProductStore(),
		listings: store.NewListingStore(),
		orders:   store.NewOrderStore(),
		ids:      domain.NewIDAllocator(),
	}
}

// State is a full copy of the marketplace, as exported for persistence.
type State struct {
	Users    []domain.User
	Products []domain.Product
	Listings []domain.Listing
	Orders   []domain.Order
	Counters domain.Counters
}

// Version returns the mutation counter. It changes iff state changed.
func (m *Marketplace) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Snapshot returns a deep copy of the whole state together with the version
// it was taken at.
func (m *Marketplace) Snapshot() (State, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		Users:    m.users.All(),
		Products: m.products.All(),
		Listings: m.listings.All(),
		Orders:   m.orders.All(),
		Counters: m.ids.Counters(),
	}, m.version
}

// Restore rebuilds a marketplace from a previously exported State. The state
// is rejected as a whole unless:
//   - principals and product, listing and order ids are unique;
//   - every id lies below its counter;
//   - listings and order items name issued products;
//   - listing sellers and order parties are registered;
//   - each user's listing and order ids resolve to records that involve them.
func Restore(st State) (*Marketplace, error) {
	m := New()
	m.ids = domain.RestoreIDAllocator(st.Counters)

	for i := range st.Users {
		u := st.Users[i].Clone()
		if err := m.users.Create(&u); err != nil {
			return nil, fmt.Errorf("restore user %q: %w", u.Principal, err)
		}
	}

	for i := range st.Products {
		p := st.Products[i]
		if p.ID >= st.Counters.NextProductID {
			return nil, fmt.Errorf("restore product %d: id beyond counter %d", p.ID, st.Counters.NextProductID)
		}
		if _, err := m.products.Get(p.ID); err == nil {
			return nil, fmt.Errorf("restore product %d: duplicate id", p.ID)
		}
		m.products.Insert(&p)
	}

	for i := range st.Listings {
		l := st.Listings[i]
		if l.ID >= st.Counters.NextListingID {
			return nil, fmt.Errorf("restore listing %d: id beyond counter %d", l.ID, st.Counters.NextListingID)
		}
		if _, err := m.listings.Get(l.ID); err == nil {
			return nil, fmt.Errorf("restore listing %d: duplicate id", l.ID)
		}
		if !m.ids.ProductIssued(l.ProductID) {
			return nil, fmt.Errorf("restore listing %d: %w", l.ID, domain.ErrInvalidProduct)
		}
		if !m.users.Exists(l.Seller) {
			return nil, fmt.Errorf("restore listing %d: seller %q: %w", l.ID, l.Seller, domain.ErrUserNotFound)
		}
		m.listings.Append(&l)
	}

	for i := range st.Orders {
		o := st.Orders[i].Clone()
		if o.ID >= st.Counters.NextOrderID {
			return nil, fmt.Errorf("restore order %d: id beyond counter %d", o.ID, st.Counters.NextOrderID)
		}
		if _, err := m.orders.Get(o.ID); err == nil {
			return nil, fmt.Errorf("restore order %d: duplicate id", o.ID)
		}
		if !m.users.Exists(o.Buyer) || !m.users.Exists(o.Seller) {
			return nil, fmt.Errorf("restore order %d: %w", o.ID, domain.ErrUserNotFound)
		}
		for _, it := range o.Items {
			if !m.ids.ProductIssued(it.ProductID) {
				return nil, fmt.Errorf("restore order %d: product %d: %w", o.ID, it.ProductID, domain.ErrInvalidProduct)
			}
		}
		m.orders.Append(&o)
	}

	for i := range st.Users {
		u := &st.Users[i]
		for _, id := range u.ListingIDs {
			l, err := m.listings.Get(id)
			if err != nil {
				return nil, fmt.Errorf("restore user %q: listing %d: %w", u.Principal, id, err)
			}
			if l.Seller != u.Principal {
				return nil, fmt.Errorf("restore user %q: listing %d belongs to %q", u.Principal, id, l.Seller)
			}
		}
		for _, id := range u.OrderIDs {
			o, err := m.orders.Get(id)
			if err != nil {
				return nil, fmt.Errorf("restore user %q: order %d: %w", u.Principal, id, err)
			}
			if o.Buyer != u.Principal && o.Seller != u.Principal {
				return nil, fmt.Errorf("restore user %q: order %d does not involve them", u.Principal, id)
			}
		}
	}

	return m, nil
}

// commit marks a successful mutation. Callers hold m.mu.
func (m *Marketplace) commit() {
	m.version++
}
