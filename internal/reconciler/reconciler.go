package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CartGateway is the remote cart resource. Every mutating call except ClearCart
// returns the server's authoritative snapshot.
type CartGateway interface {
	GetCart(ctx context.Context) (*domain.CartSnapshot, error)
	AddItem(ctx context.Context, foodID domain.ID, quantity int) (*domain.CartSnapshot, error)
	UpdateItem(ctx context.Context, lineID domain.ID, quantity int) (*domain.CartSnapshot, error)
	RemoveItem(ctx context.Context, lineID domain.ID) (*domain.CartSnapshot, error)
	ClearCart(ctx context.Context) error
}

type Session interface {
	Authenticated() bool
	Epoch() uint64
	Subscribe(func(*domain.User)) func()
}

// Reconciler owns the cached cart of the active session. The server is the only
// source of cart values: every successful call replaces the whole snapshot.
type Reconciler struct {
	gw   CartGateway
	sess Session
	log  logrus.FieldLogger

	mu         sync.RWMutex
	snapshot   *domain.CartSnapshot
	refreshing int // refreshes in flight

	unsubscribe func()
}

func New(gw CartGateway, sess Session, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{
		gw:   gw,
		sess: sess,
		log:  log,
	}
}

// Attach refreshes now and again on every session identity change.
func (r *Reconciler) Attach(ctx context.Context) {
	r.mu.Lock()
	if r.unsubscribe != nil {
		r.mu.Unlock()
		return
	}
	r.unsubscribe = r.sess.Subscribe(func(*domain.User) {
		r.Refresh(ctx)
	})
	r.mu.Unlock()

	r.Refresh(ctx)
}

// Close detaches from the session and drops the cached cart.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.snapshot = nil
	r.refreshing = 0
}

// Refresh never fails: a fetch error is logged and the previous snapshot stays visible.
func (r *Reconciler) Refresh(ctx context.Context) {
	epoch := r.sess.Epoch()
	if !r.sess.Authenticated() {
		r.mu.Lock()
		r.snapshot = nil
		r.mu.Unlock()
		return
	}

	r.beginRefresh()
	defer r.endRefresh()

	snap, err := r.gw.GetCart(ctx)
	if err != nil {
		r.log.WithError(err).Error("failed to fetch cart")
		return
	}
	r.applyServerSnapshot(epoch, snap)
}

func (r *Reconciler) AddToCart(ctx context.Context, foodID domain.ID, quantity int) (*domain.CartSnapshot, error) {
	if foodID == "" {
		return nil, fmt.Errorf("add to cart: empty food id: %w", domain.ErrInvalidArgument)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("add to cart: quantity %d: %w", quantity, domain.ErrInvalidArgument)
	}

	epoch := r.sess.Epoch()
	snap, err := r.gw.AddItem(ctx, foodID, quantity)
	if err != nil {
		return nil, err
	}
	if !r.applyServerSnapshot(epoch, snap) {
		return nil, fmt.Errorf("add to cart: session changed: %w", domain.ErrUnauthenticated)
	}
	return snap.Clone(), nil
}

// UpdateItem ignores quantities below 1; removal is RemoveItem's job.
func (r *Reconciler) UpdateItem(ctx context.Context, lineID domain.ID, quantity int) error {
	if quantity < 1 {
		return nil
	}

	epoch := r.sess.Epoch()
	snap, err := r.gw.UpdateItem(ctx, lineID, quantity)
	if err != nil {
		return err
	}
	r.applyServerSnapshot(epoch, snap)
	return nil
}

func (r *Reconciler) RemoveItem(ctx context.Context, lineID domain.ID) error {
	epoch := r.sess.Epoch()
	snap, err := r.gw.RemoveItem(ctx, lineID)
	if err != nil {
		return err
	}
	r.applyServerSnapshot(epoch, snap)
	return nil
}

// ClearCart writes the empty snapshot locally once the server confirms, without refetching.
func (r *Reconciler) ClearCart(ctx context.Context) error {
	epoch := r.sess.Epoch()
	if err := r.gw.ClearCart(ctx); err != nil {
		return err
	}
	r.applyServerSnapshot(epoch, domain.EmptySnapshot())
	return nil
}

// applyServerSnapshot is the only writer of a fetched snapshot. Responses issued under a
// previous session are dropped and false is returned; otherwise the latest completion wins.
func (r *Reconciler) applyServerSnapshot(epoch uint64, snap *domain.CartSnapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess.Epoch() != epoch {
		r.log.WithField("epoch", epoch).Debug("discarding cart response from a previous session")
		return false
	}
	r.snapshot = snap.Clone()
	return true
}

func (r *Reconciler) beginRefresh() {
	r.mu.Lock()
	r.refreshing++
	r.mu.Unlock()
}

func (r *Reconciler) endRefresh() {
	r.mu.Lock()
	if r.refreshing > 0 {
		r.refreshing--
	}
	r.mu.Unlock()
}

// Snapshot returns a copy of the current cart, nil when there is no session.
func (r *Reconciler) Snapshot() *domain.CartSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Clone()
}

func (r *Reconciler) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshing > 0
}

func (r *Reconciler) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return 0
	}
	return r.snapshot.TotalItems
}

func (r *Reconciler) Total() decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return decimal.Zero
	}
	return r.snapshot.TotalPrice
}
