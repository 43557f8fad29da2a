// Package persist maps marketplace state onto a go-datastore keyspace.
//
// Layout:
//
//	/users/<hex(principal)>   user profile and back-references
//	/products/<id>            immutable product
//	/listings/<id>            listing with current stock
//	/orders/<id>              order
//	/meta/counters            next product, listing and order ids
//
// Ids are zero-padded to 20 digits so key order equals id order.
package persist

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/engine"
)

var (
	usersPrefix    = ds.NewKey("/users")
	productsPrefix = ds.NewKey("/products")
	listingsPrefix = ds.NewKey("/listings")
	ordersPrefix   = ds.NewKey("/orders")
	countersKey    = ds.NewKey("/meta/counters")
)

func userKey(p domain.Principal) ds.Key {
	return usersPrefix.ChildString(hex.EncodeToString([]byte(p)))
}

func idKey(prefix ds.Key, id uint64) ds.Key {
	return prefix.ChildString(fmt.Sprintf("%020d", id))
}

// Save writes the whole state in one batch. Entities are never deleted, so
// overwriting every key is enough to bring the datastore up to date.
func Save(ctx context.Context, d ds.Batching, st engine.State) error {
	b, err := d.Batch(ctx)
	if err != nil {
		return fmt.Errorf("open batch: %w", err)
	}

	put := func(k ds.Key, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		if err := b.Put(ctx, k, raw); err != nil {
			return fmt.Errorf("put %s: %w", k, err)
		}
		return nil
	}

	for i, u := range st.Users {
		if err := put(userKey(u.Principal), toUserRecord(i, u)); err != nil {
			return err
		}
	}
	for _, p := range st.Products {
		if err := put(idKey(productsPrefix, p.ID), toProductRecord(p)); err != nil {
			return err
		}
	}
	for _, l := range st.Listings {
		if err := put(idKey(listingsPrefix, l.ID), toListingRecord(l)); err != nil {
			return err
		}
	}
	for _, o := range st.Orders {
		if err := put(idKey(ordersPrefix, o.ID), toOrderRecord(o)); err != nil {
			return err
		}
	}
	c := st.Counters
	if err := put(countersKey, countersRecord{
		NextProductID: c.NextProductID,
		NextListingID: c.NextListingID,
		NextOrderID:   c.NextOrderID,
	}); err != nil {
		return err
	}

	if err := b.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Load reads a state previously written by Save. found is false when the
// datastore holds no marketplace yet.
func Load(ctx context.Context, d ds.Datastore) (st engine.State, found bool, err error) {
	raw, err := d.Get(ctx, countersKey)
	if errors.Is(err, ds.ErrNotFound) {
		return engine.State{}, false, nil
	}
	if err != nil {
		return engine.State{}, false, fmt.Errorf("get %s: %w", countersKey, err)
	}
	var c countersRecord
	if err := json.Unmarshal(raw, &c); err != nil {
		return engine.State{}, false, fmt.Errorf("decode %s: %w", countersKey, err)
	}
	st.Counters = domain.Counters{
		NextProductID: c.NextProductID,
		NextListingID: c.NextListingID,
		NextOrderID:   c.NextOrderID,
	}

	var users []userRecord
	if err := scan(ctx, d, usersPrefix, func(r userRecord) error {
		users = append(users, r)
		return nil
	}); err != nil {
		return engine.State{}, false, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Seq < users[j].Seq })
	st.Users = make([]domain.User, 0, len(users))
	for _, r := range users {
		u, err := r.toDomain()
		if err != nil {
			return engine.State{}, false, fmt.Errorf("user %q: %w", r.Principal, err)
		}
		st.Users = append(st.Users, u)
	}

	st.Products = []domain.Product{}
	if err := scan(ctx, d, productsPrefix, func(r productRecord) error {
		p, err := r.toDomain()
		if err != nil {
			return fmt.Errorf("product %d: %w", r.ID, err)
		}
		st.Products = append(st.Products, p)
		return nil
	}); err != nil {
		return engine.State{}, false, err
	}

	st.Listings = []domain.Listing{}
	if err := scan(ctx, d, listingsPrefix, func(r listingRecord) error {
		st.Listings = append(st.Listings, r.toDomain())
		return nil
	}); err != nil {
		return engine.State{}, false, err
	}

	st.Orders = []domain.Order{}
	if err := scan(ctx, d, ordersPrefix, func(r orderRecord) error {
		o, err := r.toDomain()
		if err != nil {
			return fmt.Errorf("order %d: %w", r.ID, err)
		}
		st.Orders = append(st.Orders, o)
		return nil
	}); err != nil {
		return engine.State{}, false, err
	}

	return st, true, nil
}

// scan decodes every value under prefix in key order.
func scan[T any](ctx context.Context, d ds.Datastore, prefix ds.Key, fn func(T) error) error {
	res, err := d.Query(ctx, query.Query{
		Prefix: prefix.String(),
		Orders: []query.Order{query.OrderByKey{}},
	})
	if err != nil {
		return fmt.Errorf("query %s: %w", prefix, err)
	}
	entries, err := res.Rest()
	if err != nil {
		return fmt.Errorf("query %s: %w", prefix, err)
	}
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return fmt.Errorf("decode %s: %w", e.Key, err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
