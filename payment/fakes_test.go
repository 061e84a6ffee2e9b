package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"shawarma-station-me/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type fakeCardGateway struct {
	mu           sync.Mutex
	session      *CardSession
	sessionErr   error
	status       *CardStatus
	statusErr    error
	sessionCalls int
	statusCalls  int
	lastSession  CardSessionRequest

	// Optional rendezvous for holding a CreateSession call on the wire:
	// sessionStarted receives once the call is in flight, sessionUnblock
	// releases it.
	sessionStarted chan struct{}
	sessionUnblock chan struct{}
}

func (g *fakeCardGateway) CreateSession(ctx context.Context, req CardSessionRequest) (*CardSession, error) {
	g.mu.Lock()
	g.sessionCalls++
	g.lastSession = req
	started, unblock := g.sessionStarted, g.sessionUnblock
	session, err := g.session, g.sessionErr
	g.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if unblock != nil {
		<-unblock
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (g *fakeCardGateway) CheckStatus(ctx context.Context, orderRef string) (*CardStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.status, nil
}

type fakeCliqGateway struct {
	mu            sync.Mutex
	initiateErr   error
	confirmRef    string
	confirmErr    error
	initiateCalls int
	confirmCalls  int
	lastOTP       string

	// confirmHook runs while the confirm call is on the wire, before the
	// response is returned.
	confirmHook func()
}

func (g *fakeCliqGateway) Initiate(ctx context.Context, amount decimal.Decimal, mobile string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initiateCalls++
	return g.initiateErr
}

func (g *fakeCliqGateway) Confirm(ctx context.Context, amount decimal.Decimal, mobile, otp string) (string, error) {
	g.mu.Lock()
	g.confirmCalls++
	g.lastOTP = otp
	hook := g.confirmHook
	ref, err := g.confirmRef, g.confirmErr
	g.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return "", err
	}
	return ref, nil
}

// fakeOrderRepo enforces the same payment-ref uniqueness the real table does.
type fakeOrderRepo struct {
	mu        sync.Mutex
	created   []*models.Order
	createErr error
	refs      map[string]bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{refs: make(map[string]bool)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if ref := order.Payment.TransactionRef; ref != "" {
		if r.refs[ref] {
			return nil, fmt.Errorf("order already exists for payment reference %s", ref)
		}
		r.refs[ref] = true
	}
	order.ID = int64(len(r.created) + 1)
	r.created = append(r.created, order)
	return order, nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("order not found")
}

func (r *fakeOrderRepo) List(ctx context.Context, from, to *string) ([]models.OrderListItem, error) {
	return nil, nil
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

type fakeCartRepo struct {
	mu      sync.Mutex
	carts   map[string]models.Cart
	cleared []string
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]models.Cart)}
}

func (r *fakeCartRepo) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return &models.Cart{UserID: userID}, nil
	}
	return &cart, nil
}

func (r *fakeCartRepo) ClearCart(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	r.cleared = append(r.cleared, userID)
	return nil
}

type fakeProductRepo struct {
	products map[int64]models.Product
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product not found")
	}
	return &p, nil
}

func (r *fakeProductRepo) ListAvailable(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

type fakeLocationRepo struct {
	areas map[int64]models.DeliveryArea
}

func (r *fakeLocationRepo) List(ctx context.Context) ([]models.DeliveryArea, error) {
	var out []models.DeliveryArea
	for _, a := range r.areas {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeLocationRepo) GetByID(ctx context.Context, id int64) (*models.DeliveryArea, error) {
	a, ok := r.areas[id]
	if !ok {
		return nil, fmt.Errorf("delivery area not found")
	}
	return &a, nil
}
