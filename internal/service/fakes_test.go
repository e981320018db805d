package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// fakeState is the whole in-memory database. It is copied on transaction
// start and restored on rollback.
type fakeState struct {
	events    map[int64]model.Event
	users     map[int64]model.User
	products  map[int64]model.Product
	prices    map[int64]model.ProductPrice
	taxes     map[int64]model.TaxOrFee
	rules     map[int64]*model.AgeCategoryRule
	orders    map[int64]model.Order
	items     []model.OrderItem
	attendees []model.Attendee
	nextID    int64
}

func (s fakeState) clone() fakeState {
	c := s
	c.events = maps.Clone(s.events)
	c.users = maps.Clone(s.users)
	c.products = maps.Clone(s.products)
	c.prices = maps.Clone(s.prices)
	c.taxes = maps.Clone(s.taxes)
	c.rules = maps.Clone(s.rules)
	c.orders = maps.Clone(s.orders)
	c.items = slices.Clone(s.items)
	c.attendees = slices.Clone(s.attendees)
	return c
}

type txMarker struct{}

// fakeDB serializes transactions on one mutex, which stands in for the row
// lock taken on the price.
type fakeDB struct {
	mu    sync.Mutex
	state fakeState

	failAttendeeCreate error
}

func newFakeDB() *fakeDB {
	return &fakeDB{state: fakeState{
		events:   map[int64]model.Event{},
		users:    map[int64]model.User{},
		products: map[int64]model.Product{},
		prices:   map[int64]model.ProductPrice{},
		taxes:    map[int64]model.TaxOrFee{},
		rules:    map[int64]*model.AgeCategoryRule{},
		orders:   map[int64]model.Order{},
		nextID:   1000,
	}}
}

func (db *fakeDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	snapshot := db.state.clone()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		db.state = snapshot
		return err
	}
	return nil
}

// view runs fn holding the lock unless ctx already belongs to a transaction.
func (db *fakeDB) view(ctx context.Context, fn func(s *fakeState)) {
	if ctx.Value(txMarker{}) == nil {
		db.mu.Lock()
		defer db.mu.Unlock()
	}
	fn(&db.state)
}

func (db *fakeDB) id() int64 {
	db.state.nextID++
	return db.state.nextID
}

// snapshot returns a copy of the committed state.
func (db *fakeDB) snapshot() fakeState {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.clone()
}

type fakeEvents struct{ *fakeDB }

func (f fakeEvents) FindByID(ctx context.Context, id int64) (*model.Event, error) {
	var (
		e  model.Event
		ok bool
	)
	f.view(ctx, func(s *fakeState) { e, ok = s.events[id] })
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return &e, nil
}

type fakeUsers struct{ *fakeDB }

func (f fakeUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var (
		u  model.User
		ok bool
	)
	f.view(ctx, func(s *fakeState) { u, ok = s.users[id] })
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

type fakeProducts struct{ *fakeDB }

func (f fakeProducts) FindTicket(ctx context.Context, eventID, productID int64) (*model.Product, error) {
	var (
		p  model.Product
		ok bool
	)
	f.view(ctx, func(s *fakeState) {
		p, ok = s.products[productID]
		if !ok || p.EventID != eventID || p.ProductType != model.ProductTypeTicket {
			ok = false
			return
		}
		p.Prices = nil
		for _, id := range slices.Sorted(maps.Keys(s.prices)) {
			if s.prices[id].ProductID == p.ID {
				p.Prices = append(p.Prices, s.prices[id])
			}
		}
	})
	if !ok {
		return nil, model.ErrNotFound
	}
	return &p, nil
}

func (f fakeProducts) ExistsForEvent(ctx context.Context, eventID, productID int64) (bool, error) {
	var ok bool
	f.view(ctx, func(s *fakeState) {
		p, found := s.products[productID]
		ok = found && p.EventID == eventID
	})
	return ok, nil
}

func (f fakeProducts) LockQuantityRemaining(ctx context.Context, productID, priceID int64) (int, error) {
	var (
		pp model.ProductPrice
		ok bool
	)
	f.view(ctx, func(s *fakeState) { pp, ok = s.prices[priceID] })
	if !ok || pp.ProductID != productID {
		return 0, model.ErrInvalidProductPriceID
	}
	return pp.Remaining(), nil
}

func (f fakeProducts) IncreaseQuantitySold(ctx context.Context, priceID int64) (bool, error) {
	var updated bool
	f.view(ctx, func(s *fakeState) {
		pp, ok := s.prices[priceID]
		if !ok || pp.Remaining() <= 0 {
			return
		}
		pp.QuantitySold++
		s.prices[priceID] = pp
		updated = true
	})
	return updated, nil
}

type fakeOrders struct{ *fakeDB }

func (f fakeOrders) Create(ctx context.Context, o *model.Order) error {
	f.view(ctx, func(s *fakeState) {
		o.ID = f.id()
		s.orders[o.ID] = *o
	})
	return nil
}

func (f fakeOrders) AddItem(ctx context.Context, item *model.OrderItem) error {
	f.view(ctx, func(s *fakeState) {
		item.ID = f.id()
		s.items = append(s.items, *item)
	})
	return nil
}

func (f fakeOrders) Items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var out []model.OrderItem
	f.view(ctx, func(s *fakeState) {
		for _, it := range s.items {
			if it.OrderID == orderID {
				out = append(out, it)
			}
		}
	})
	return out, nil
}

func (f fakeOrders) UpdateTotals(ctx context.Context, o *model.Order) error {
	var err error
	f.view(ctx, func(s *fakeState) {
		if _, ok := s.orders[o.ID]; !ok {
			err = model.ErrNotFound
			return
		}
		s.orders[o.ID] = *o
	})
	return err
}

type fakeAttendees struct{ *fakeDB }

func (f fakeAttendees) Create(ctx context.Context, a *model.Attendee) error {
	if f.failAttendeeCreate != nil {
		return f.failAttendeeCreate
	}
	f.view(ctx, func(s *fakeState) {
		a.ID = f.id()
		s.attendees = append(s.attendees, *a)
	})
	return nil
}

func (f fakeAttendees) ListPublic(ctx context.Context, eventID int64) ([]model.PublicAttendee, error) {
	out := []model.PublicAttendee{}
	f.view(ctx, func(s *fakeState) {
		for _, a := range s.attendees {
			if a.EventID == eventID {
				out = append(out, model.PublicAttendee{FirstName: a.FirstName, LastName: a.LastName, ClubName: a.ClubName, AgeCategory: a.AgeCategory})
			}
		}
	})
	return out, nil
}

type fakeTaxes struct{ *fakeDB }

func (f fakeTaxes) FindTaxesAndFees(ctx context.Context, ids []int64) ([]model.TaxOrFee, error) {
	var out []model.TaxOrFee
	f.view(ctx, func(s *fakeState) {
		for _, id := range ids {
			if t, ok := s.taxes[id]; ok {
				out = append(out, t)
			}
		}
	})
	return out, nil
}

// fakeRules keeps the assigned rule per ticket.
type fakeRules struct{ *fakeDB }

func (f fakeRules) FindAssignment(ctx context.Context, ticketID int64) (*model.Assignment, error) {
	var (
		rule *model.AgeCategoryRule
		ok   bool
	)
	f.view(ctx, func(s *fakeState) { rule, ok = s.rules[ticketID] })
	if !ok {
		return nil, model.ErrNotFound
	}
	return &model.Assignment{TicketID: ticketID, RuleID: rule.ID}, nil
}

func (f fakeRules) FindRule(ctx context.Context, id int64) (*model.AgeCategoryRule, error) {
	var found *model.AgeCategoryRule
	f.view(ctx, func(s *fakeState) {
		for _, rule := range s.rules {
			if rule.ID == id {
				found = rule
			}
		}
	})
	if found == nil {
		return nil, model.ErrNotFound
	}
	return found, nil
}

var errBoom = errors.New("boom")
