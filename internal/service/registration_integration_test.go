//go:build integration

package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/agecategory"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/database"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/events"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/inventory"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/pricing"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/repository"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/service"
	"github.com/Shivanand-hulikatti/attendee-registration/internal/testutil/containers"
)

func TestRegistrationAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.NewPostgres(t)
	pool := pg.Pool
	ctx := context.Background()

	var eventID, ticketID, priceID, vatID int64
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO events (title, currency) VALUES ('City Run', 'EUR') RETURNING id`).Scan(&eventID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO products (event_id, title) VALUES ($1, '10k') RETURNING id`, eventID).Scan(&ticketID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO product_prices (product_id, price, initial_quantity_available) VALUES ($1, 20, 1) RETURNING id`, ticketID).Scan(&priceID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO taxes_and_fees (name, type, calculation_type, rate) VALUES ('VAT', 'TAX', 'PERCENTAGE', 23) RETURNING id`).Scan(&vatID))

	tx := database.NewTransactor(pool)
	products := repository.NewProductRepository(pool)
	rules := repository.NewRuleRepository(pool)
	outbox := repository.NewOutboxRepository(pool)
	orders := repository.NewOrderRepository(pool)
	attendees := repository.NewAttendeeRepository(pool)

	ruleSvc := service.NewRuleService(tx, rules, products, nil)
	_, err := ruleSvc.AssignTicketRule(ctx, eventID, ticketID, model.AssignRuleRequest{
		Name: "Youth",
		Rule: model.Document{Bins: []model.Bin{{Min: 0, Max: 17, AgeCategory: "U18"}}},
	})
	require.NoError(t, err)

	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	svc := service.NewRegistrationService(service.RegistrationDeps{
		Tx:         tx,
		Events:     repository.NewEventRepository(pool),
		Users:      repository.NewUserRepository(pool),
		Products:   products,
		Orders:     orders,
		Attendees:  attendees,
		Taxes:      pricing.NewCalculator(repository.NewTaxRepository(pool)),
		Inventory:  inventory.NewResolver(products),
		Categories: agecategory.NewResolver(rules, agecategory.WithClock(func() time.Time { return now })),
		Notifier:   events.NewNotifier(outbox),
		Dispatcher: events.NewDispatcher(outbox),
	})

	send := true
	req := model.RegisterAttendeeRequest{
		ProductID:             ticketID,
		Email:                 "ana@example.com",
		FirstName:             "Ana",
		ClubName:              "Porto Runners",
		BirthDate:             "2010-01-05",
		Gender:                "F",
		AmountPaid:            decimal.NewFromInt(20),
		Locale:                "pt",
		SendConfirmationEmail: &send,
		TaxesAndFees:          []model.TaxAndFeeRequest{{TaxOrFeeID: vatID, Amount: decimal.RequireFromString("4.6")}},
	}

	const workers = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		soldOut   atomic.Int32
		winner    atomic.Pointer[model.Attendee]
		start     = make(chan struct{})
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			a, err := svc.Register(ctx, eventID, req)
			switch {
			case err == nil:
				successes.Add(1)
				winner.Store(a)
			case errors.Is(err, model.ErrNoTicketsAvailable):
				soldOut.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), soldOut.Load())

	var sold, orderCount, attendeeCount, outboxCount int
	require.NoError(t, pool.QueryRow(ctx, `SELECT quantity_sold FROM product_prices WHERE id = $1`, priceID).Scan(&sold))
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&orderCount))
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM attendees`).Scan(&attendeeCount))
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox`).Scan(&outboxCount))
	assert.Equal(t, 1, sold)
	assert.Equal(t, 1, orderCount, "losers leave no orders behind")
	assert.Equal(t, 1, attendeeCount)
	assert.Equal(t, 2, outboxCount, "status change and ORDER_CREATED for the winner only")

	a := winner.Load()
	require.NotNil(t, a)
	require.NotNil(t, a.AgeCategory)
	assert.Equal(t, "FU18", *a.AgeCategory)

	var orderGross decimal.Decimal
	require.NoError(t, pool.QueryRow(ctx, `SELECT total_gross FROM orders WHERE id = $1`, a.OrderID).Scan(&orderGross))
	items, err := orders.Items(ctx, a.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, orderGross.Equal(items[0].TotalGross))
	assert.True(t, orderGross.Equal(decimal.RequireFromString("24.6")))

	rollup, err := json.Marshal(items[0].TaxesAndFeesRollup)
	require.NoError(t, err)
	assert.Contains(t, string(rollup), `"VAT"`)
}
