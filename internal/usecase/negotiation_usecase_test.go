package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/internal/store"
	"artisanmarket/pkg/errors"
)

// In-memory repository fakes. They clone on the way in and out, the way the
// Firestore adapters rehydrate documents, so a caller's later mutations never
// leak into stored state.

type fakeNegotiationRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*entity.Negotiation
}

func newFakeNegotiationRepo() *fakeNegotiationRepo {
	return &fakeNegotiationRepo{items: make(map[string]*entity.Negotiation)}
}

func cloneNegotiation(n *entity.Negotiation) *entity.Negotiation {
	c := *n
	c.History = append([]entity.NegotiationEvent(nil), n.History...)
	if n.FinalPrice != nil {
		final := *n.FinalPrice
		c.FinalPrice = &final
	}
	if n.ExpiresAt != nil {
		at := *n.ExpiresAt
		c.ExpiresAt = &at
	}
	return &c
}

func (r *fakeNegotiationRepo) Create(ctx context.Context, negotiation *entity.Negotiation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	negotiation.ID = fmt.Sprintf("neg-%d", r.seq)
	r.items[negotiation.ID] = cloneNegotiation(negotiation)
	return nil
}

func (r *fakeNegotiationRepo) GetByID(ctx context.Context, id string) (*entity.Negotiation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Negotiation", nil)
	}
	return cloneNegotiation(n), nil
}

func (r *fakeNegotiationRepo) Update(ctx context.Context, negotiation *entity.Negotiation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[negotiation.ID]; !ok {
		return errors.NotFound("Negotiation", nil)
	}
	r.items[negotiation.ID] = cloneNegotiation(negotiation)
	return nil
}

func (r *fakeNegotiationRepo) FindActiveByTarget(ctx context.Context, customerID string, target entity.NegotiationTarget) (*entity.Negotiation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.CustomerID == customerID && n.Target == target && n.Status.Active() {
			return cloneNegotiation(n), nil
		}
	}
	return nil, nil
}

func (r *fakeNegotiationRepo) ListByUser(ctx context.Context, userID string, role entity.NegotiationActor, query repository.NegotiationQuery, limit, offset int) ([]*entity.Negotiation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Negotiation
	for _, n := range r.items {
		if role == entity.ActorCustomer && n.CustomerID != userID {
			continue
		}
		if role == entity.ActorArtisan && n.ArtisanID != userID {
			continue
		}
		if query.Status != "" && n.Status != query.Status {
			continue
		}
		matched = append(matched, cloneNegotiation(n))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeNegotiationRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Negotiation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var overdue []*entity.Negotiation
	for _, n := range r.items {
		if n.Status.Active() && n.ExpiresAt != nil && now.After(*n.ExpiresAt) {
			overdue = append(overdue, cloneNegotiation(n))
			if len(overdue) == limit {
				break
			}
		}
	}
	return overdue, nil
}

func (r *fakeNegotiationRepo) Stats(ctx context.Context, userID string, role entity.NegotiationActor, dateFrom, dateTo *time.Time) (*entity.NegotiationStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &entity.NegotiationStats{}
	for _, n := range r.items {
		if role == entity.ActorCustomer && n.CustomerID != userID {
			continue
		}
		if role == entity.ActorArtisan && n.ArtisanID != userID {
			continue
		}
		stats.TotalNegotiations++
		switch n.Status {
		case entity.NegotiationPending, entity.NegotiationCounterOffered:
			stats.PendingNegotiations++
		case entity.NegotiationAccepted, entity.NegotiationCompleted:
			stats.AcceptedNegotiations++
		case entity.NegotiationRejected:
			stats.RejectedNegotiations++
		case entity.NegotiationExpired:
			stats.ExpiredNegotiations++
		}
	}
	return stats, nil
}

type fakeProductRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{items: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) put(p *entity.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *p
	r.items[p.ID] = &c
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.put(product)
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	c := *p
	return &c, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.put(product)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter map[string]interface{}, sort string, limit, offset int) ([]*entity.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) SoftDelete(ctx context.Context, id string) error { return nil }

func (r *fakeProductRepo) IncrementViews(ctx context.Context, id string) error { return nil }

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) put(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *u
	r.items[u.ID] = &c
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.put(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.put(user)
	return nil
}

type negotiationFixture struct {
	uc       *NegotiationUseCase
	negRepo  *fakeNegotiationRepo
	products *fakeProductRepo
	users    *fakeUserRepo
	bus      *store.Bus
}

func newNegotiationFixture(t *testing.T) *negotiationFixture {
	t.Helper()

	negRepo := newFakeNegotiationRepo()
	products := newFakeProductRepo()
	users := newFakeUserRepo()
	bus := store.NewBus()

	users.put(&entity.User{ID: "cust-1", Username: "nguyenan", FullName: "Nguyễn An", Role: entity.RoleCustomer})
	users.put(&entity.User{ID: "art-1", Username: "gombattrang", Role: entity.RoleArtisan, ShopName: "Gốm Bát Tràng"})

	products.put(&entity.Product{
		ID:               "prod-1",
		ArtisanID:        "art-1",
		Name:             "Bình gốm men lam",
		Price:            1_000_000,
		Stock:            10,
		Status:           "active",
		AllowNegotiation: true,
		Variants: []entity.ProductVariant{
			{ID: "var-1", Name: "Men rạn", Price: 500_000, DiscountPrice: 450_000, Stock: 5},
		},
	})

	return &negotiationFixture{
		uc:       NewNegotiationUseCase(negRepo, products, users, nil, bus),
		negRepo:  negRepo,
		products: products,
		users:    users,
		bus:      bus,
	}
}

func (f *negotiationFixture) create(t *testing.T, price float64) *NegotiationResponse {
	t.Helper()
	resp, err := f.uc.CreateNegotiation(context.Background(), "cust-1", CreateNegotiationInput{
		ProductID:     "prod-1",
		ProposedPrice: price,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateNegotiation(t *testing.T) {
	f := newNegotiationFixture(t)

	var events []store.Event
	sub := f.bus.Subscribe(func(e store.Event) { events = append(events, e) })
	defer sub.Unsubscribe()

	resp, err := f.uc.CreateNegotiation(context.Background(), "cust-1", CreateNegotiationInput{
		ProductID:      "prod-1",
		ProposedPrice:  850_000,
		Quantity:       2,
		CustomerReason: "Mua tặng mẹ",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.NegotiationPending, resp.Status)
	assert.Equal(t, 1_000_000.0, resp.OriginalPrice)
	assert.Equal(t, 850_000.0, resp.ProposedPrice)
	assert.Nil(t, resp.FinalPrice)
	assert.Equal(t, 2, resp.Quantity)
	assert.Equal(t, "art-1", resp.ArtisanID)
	assert.Equal(t, "Gốm Bát Tràng", resp.Artisan.DisplayName)
	assert.Equal(t, 950_000.0, resp.Bounds.MaxNegotiablePrice)

	require.Len(t, resp.History, 1)
	assert.Equal(t, entity.ActionPropose, resp.History[0].Action)
	assert.Equal(t, entity.ActorCustomer, resp.History[0].Actor)

	// Default lifetime is three days
	require.NotNil(t, resp.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(3*24*time.Hour), *resp.ExpiresAt, time.Minute)

	require.Len(t, events, 1)
	assert.Equal(t, store.EventNegotiationCreated, events[0].Type)
	assert.Equal(t, resp.ID, events[0].Summary.ID)
	assert.Equal(t, "cust-1", events[0].Summary.Customer.ID)
}

func TestCreateNegotiation_VariantPrice(t *testing.T) {
	f := newNegotiationFixture(t)

	// The variant's discounted price, not the base product price, bounds
	// the exchange
	resp, err := f.uc.CreateNegotiation(context.Background(), "cust-1", CreateNegotiationInput{
		ProductID:     "prod-1",
		VariantID:     "var-1",
		ProposedPrice: 400_000,
	})
	require.NoError(t, err)

	assert.Equal(t, 450_000.0, resp.OriginalPrice)
	assert.Equal(t, "var-1", resp.Target.VariantID)
}

func TestCreateNegotiation_UnknownVariant(t *testing.T) {
	f := newNegotiationFixture(t)

	_, err := f.uc.CreateNegotiation(context.Background(), "cust-1", CreateNegotiationInput{
		ProductID:     "prod-1",
		VariantID:     "var-missing",
		ProposedPrice: 400_000,
	})

	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestCreateNegotiation_OwnProduct(t *testing.T) {
	f := newNegotiationFixture(t)

	_, err := f.uc.CreateNegotiation(context.Background(), "art-1", CreateNegotiationInput{
		ProductID:     "prod-1",
		ProposedPrice: 850_000,
	})

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCreateNegotiation_NegotiationDisabled(t *testing.T) {
	f := newNegotiationFixture(t)
	f.products.put(&entity.Product{
		ID: "prod-2", ArtisanID: "art-1", Name: "Khay tre", Price: 200_000,
		Stock: 3, Status: "active", AllowNegotiation: false,
	})

	_, err := f.uc.CreateNegotiation(context.Background(), "cust-1", CreateNegotiationInput{
		ProductID:     "prod-2",
		ProposedPrice: 180_000,
	})

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCreateNegotiation_BelowFloor(t *testing.T) {
	f := newNegotiationFixture(t)

	_, err := f.uc.CreateNegotiation(context.Background(), "cust-1", CreateNegotiationInput{
		ProductID:     "prod-1",
		ProposedPrice: 650_000,
	})

	require.True(t, errors.Is(err, "VALIDATION_ERROR"))
	appErr := err.(*errors.AppError)
	fields := appErr.Details.(map[string]string)
	assert.Contains(t, fields, "proposedPrice")
}

func TestCreateNegotiation_DuplicateActive(t *testing.T) {
	f := newNegotiationFixture(t)
	first := f.create(t, 850_000)

	_, err := f.uc.CreateNegotiation(context.Background(), "cust-1", CreateNegotiationInput{
		ProductID:     "prod-1",
		ProposedPrice: 800_000,
	})

	require.True(t, errors.Is(err, "CONFLICT"))
	// The conflict carries the active negotiation's id so the caller can
	// refetch instead of failing
	assert.Equal(t, first.ID, err.(*errors.AppError).Details)
}

func TestRespondToNegotiation_ArtisanAccepts(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	var events []store.Event
	sub := f.bus.Subscribe(func(e store.Event) { events = append(events, e) })
	defer sub.Unsubscribe()

	resp, err := f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{
		Action:  "accept",
		Message: "Được bạn nhé",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.NegotiationAccepted, resp.Status)
	require.NotNil(t, resp.FinalPrice)
	assert.Equal(t, 850_000.0, *resp.FinalPrice)
	assert.Equal(t, "Được bạn nhé", resp.ArtisanResponse)

	require.Len(t, events, 1)
	assert.Equal(t, store.EventNegotiationUpdated, events[0].Type)
	assert.Equal(t, entity.NegotiationAccepted, events[0].Summary.Status)
}

func TestRespondToNegotiation_CounterRound(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	// Artisan counters above the ask
	countered, err := f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{
		Action:       "counter",
		CounterPrice: 920_000,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationCounterOffered, countered.Status)
	// The customer's original ask stays on record
	assert.Equal(t, 850_000.0, countered.ProposedPrice)
	assert.Equal(t, 920_000.0, countered.CurrentOffer())

	// Customer accepts the counter; the final price is the counter, not
	// the original ask
	accepted, err := f.uc.RespondToNegotiation(context.Background(), "cust-1", created.ID, RespondToNegotiationInput{
		Action: "accept",
	})
	require.NoError(t, err)
	require.NotNil(t, accepted.FinalPrice)
	assert.Equal(t, 920_000.0, *accepted.FinalPrice)
}

func TestRespondToNegotiation_CustomerCounterReturnsControl(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	_, err := f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{
		Action:       "counter",
		CounterPrice: 930_000,
	})
	require.NoError(t, err)

	// The customer may meet the artisan partway: anything strictly above
	// their own retained ask is valid, even below the artisan's counter
	resp, err := f.uc.RespondToNegotiation(context.Background(), "cust-1", created.ID, RespondToNegotiationInput{
		Action:       "counter",
		CounterPrice: 900_000,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.NegotiationPending, resp.Status)
	assert.Equal(t, 900_000.0, resp.ProposedPrice)
	assert.Equal(t, entity.ActorArtisan, resp.Responder())
}

func TestRespondToNegotiation_CustomerCounterMustImproveOwnAsk(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	_, err := f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{
		Action:       "counter",
		CounterPrice: 930_000,
	})
	require.NoError(t, err)

	// Countering at or below the retained ask would widen the gap
	for _, price := range []float64{850_000, 800_000} {
		_, err := f.uc.RespondToNegotiation(context.Background(), "cust-1", created.ID, RespondToNegotiationInput{
			Action:       "counter",
			CounterPrice: price,
		})
		assert.True(t, errors.Is(err, "VALIDATION_ERROR"), "counter at %v", price)
	}
}

func TestRespondToNegotiation_TurnEnforcement(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	// The customer cannot act while their own offer is pending
	_, err := f.uc.RespondToNegotiation(context.Background(), "cust-1", created.ID, RespondToNegotiationInput{
		Action: "accept",
	})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// A third party cannot act at all
	_, err = f.uc.RespondToNegotiation(context.Background(), "someone-else", created.ID, RespondToNegotiationInput{
		Action: "accept",
	})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestRespondToNegotiation_TerminalState(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	_, err := f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{Action: "reject"})
	require.NoError(t, err)

	_, err = f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{Action: "accept"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestRespondToNegotiation_InvalidAction(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	_, err := f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{Action: "haggle"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestRespondToNegotiation_ExpiredOnTouch(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	// Force the deadline into the past
	stored, err := f.negRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	stored.ExpiresAt = &past
	require.NoError(t, f.negRepo.Update(context.Background(), stored))

	_, err = f.uc.RespondToNegotiation(context.Background(), "art-1", created.ID, RespondToNegotiationInput{Action: "accept"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// The lazy expiry was persisted
	after, err := f.negRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationExpired, after.Status)
	assert.Equal(t, entity.ActionExpire, after.History[len(after.History)-1].Action)
}

func TestCancelNegotiation(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	// Only the customer may cancel
	_, err := f.uc.CancelNegotiation(context.Background(), "art-1", created.ID, "")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	resp, err := f.uc.CancelNegotiation(context.Background(), "cust-1", created.ID, "Đổi ý")
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationRejected, resp.Status)
	assert.Equal(t, entity.ActionCancel, resp.History[len(resp.History)-1].Action)

	// A second cancel finds nothing active
	_, err = f.uc.CancelNegotiation(context.Background(), "cust-1", created.ID, "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestGetNegotiation_PartyOnly(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)

	resp, err := f.uc.GetNegotiation(context.Background(), "cust-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	_, err = f.uc.GetNegotiation(context.Background(), "someone-else", created.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestCheckExistingNegotiation(t *testing.T) {
	f := newNegotiationFixture(t)
	ctx := context.Background()
	target := entity.NegotiationTarget{ProductID: "prod-1"}

	result, err := f.uc.CheckExistingNegotiation(ctx, "cust-1", target)
	require.NoError(t, err)
	assert.False(t, result.HasActive)
	assert.Nil(t, result.Negotiation)

	created := f.create(t, 850_000)

	result, err = f.uc.CheckExistingNegotiation(ctx, "cust-1", target)
	require.NoError(t, err)
	assert.True(t, result.HasActive)
	assert.Equal(t, created.ID, result.Negotiation.ID)

	// A stale active negotiation is expired on sight and reported absent
	stored, err := f.negRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	stored.ExpiresAt = &past
	require.NoError(t, f.negRepo.Update(ctx, stored))

	result, err = f.uc.CheckExistingNegotiation(ctx, "cust-1", target)
	require.NoError(t, err)
	assert.False(t, result.HasActive)

	after, err := f.negRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationExpired, after.Status)
}

func TestListNegotiations(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)
	ctx := context.Background()
	query := repository.NegotiationQuery{}

	sent, total, err := f.uc.ListNegotiations(ctx, "cust-1", entity.ActorCustomer, query, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, sent, 1)
	assert.Equal(t, created.ID, sent[0].ID)
	assert.Equal(t, "Bình gốm men lam", sent[0].ProductName)

	received, _, err := f.uc.ListNegotiations(ctx, "art-1", entity.ActorArtisan, query, 20, 0)
	require.NoError(t, err)
	require.Len(t, received, 1)

	// The received surface is artisan-only
	_, _, err = f.uc.ListNegotiations(ctx, "cust-1", entity.ActorArtisan, query, 20, 0)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestListMine(t *testing.T) {
	f := newNegotiationFixture(t)
	ctx := context.Background()
	query := repository.NegotiationQuery{}

	// art-1 receives one negotiation and sends another as a customer of art-2
	received := f.create(t, 850_000)

	f.users.put(&entity.User{ID: "art-2", Username: "theucam", Role: entity.RoleArtisan, ShopName: "Thêu Cẩm"})
	f.products.put(&entity.Product{
		ID: "prod-3", ArtisanID: "art-2", Name: "Tranh thêu tay", Price: 2_000_000,
		Stock: 2, Status: "active", AllowNegotiation: true,
	})
	sent, err := f.uc.CreateNegotiation(ctx, "art-1", CreateNegotiationInput{
		ProductID:     "prod-3",
		ProposedPrice: 1_700_000,
	})
	require.NoError(t, err)

	mine, total, err := f.uc.ListMine(ctx, "art-1", query, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, mine, 2)
	ids := []string{mine[0].ID, mine[1].ID}
	assert.ElementsMatch(t, []string{received.ID, sent.ID}, ids)

	// A plain customer gets their sent side without tripping the
	// artisan-only gate
	mine, total, err = f.uc.ListMine(ctx, "cust-1", query, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, received.ID, mine[0].ID)

	// Pagination past the end is empty, not an error
	mine, _, err = f.uc.ListMine(ctx, "art-1", query, 20, 5)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCompleteNegotiation(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)
	ctx := context.Background()

	// Only an accepted negotiation can complete
	_, err := f.uc.CompleteNegotiation(ctx, created.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.uc.RespondToNegotiation(ctx, "art-1", created.ID, RespondToNegotiationInput{Action: "accept"})
	require.NoError(t, err)

	completed, err := f.uc.CompleteNegotiation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationCompleted, completed.Status)
	require.NotNil(t, completed.FinalPrice)
	assert.Equal(t, 850_000.0, *completed.FinalPrice)
}

func TestExpireOverdue(t *testing.T) {
	f := newNegotiationFixture(t)
	created := f.create(t, 850_000)
	ctx := context.Background()

	stored, err := f.negRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	stored.ExpiresAt = &past
	require.NoError(t, f.negRepo.Update(ctx, stored))

	var events []store.Event
	sub := f.bus.Subscribe(func(e store.Event) { events = append(events, e) })
	defer sub.Unsubscribe()

	require.NoError(t, f.uc.ExpireOverdue(ctx))

	after, err := f.negRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationExpired, after.Status)

	require.Len(t, events, 1)
	assert.Equal(t, entity.NegotiationExpired, events[0].Summary.Status)
}

func TestGetPriceBounds(t *testing.T) {
	f := newNegotiationFixture(t)
	ctx := context.Background()

	bounds, err := f.uc.GetPriceBounds(ctx, "prod-1", "")
	require.NoError(t, err)
	assert.Equal(t, 700_000.0, bounds.MinNegotiablePrice)
	assert.Equal(t, 950_000.0, bounds.MaxNegotiablePrice)

	bounds, err = f.uc.GetPriceBounds(ctx, "prod-1", "var-1")
	require.NoError(t, err)
	assert.Equal(t, 450_000.0, bounds.CurrentPrice)
}
