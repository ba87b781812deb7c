package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"camera-rental-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory rendition of the postgres store with the same
// conditional-update semantics. Keys in fail make the named call return the
// error, e.g. "Reserve:2" or "Rental.Update". Hooks run once, just before the
// named call, outside the lock.
type memStore struct {
	mu        sync.Mutex
	nextID    int32
	customers map[int32]domain.Customer
	types     map[int32]domain.EquipmentType
	equipment map[int32]domain.Equipment
	rentals   map[int32]domain.Rental
	details   map[int32][]domain.RentalDetail
	payments  map[int32]domain.Payment
	fail      map[string]error
	hooks     map[string]func()
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    100,
		customers: make(map[int32]domain.Customer),
		types:     make(map[int32]domain.EquipmentType),
		equipment: make(map[int32]domain.Equipment),
		rentals:   make(map[int32]domain.Rental),
		details:   make(map[int32][]domain.RentalDetail),
		payments:  make(map[int32]domain.Payment),
		fail:      make(map[string]error),
		hooks:     make(map[string]func()),
	}
}

func (s *memStore) failOn(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[key] = err
}

func (s *memStore) before(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[key] = fn
}

func (s *memStore) runHook(key string) {
	s.mu.Lock()
	fn := s.hooks[key]
	delete(s.hooks, key)
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *memStore) injected(key string) error {
	return s.fail[key]
}

func (s *memStore) id() int32 {
	s.nextID++
	return s.nextID
}

func (s *memStore) equipmentStatus(id int32) domain.EquipmentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment[id].Status
}

func (s *memStore) rentalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rentals)
}

func (s *memStore) detailsOf(rentalID int32) map[int32]domain.RentalDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int32]domain.RentalDetail)
	for _, d := range s.details[rentalID] {
		out[d.EquipmentID] = d
	}
	return out
}

func (s *memStore) rental(id int32) domain.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rentals[id]
}

// expand must be called with mu held.
func (s *memStore) expand(e domain.Equipment) *domain.Equipment {
	if et, ok := s.types[e.TypeID]; ok {
		e.Type = &et
	}
	return &e
}

type memCustomers struct{ *memStore }

func (r memCustomers) Create(ctx context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	r.customers[c.ID] = *c
	return nil
}

func (r memCustomers) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("customer %d not found", id))
	}
	return &c, nil
}

func (r memCustomers) Update(ctx context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = *c
	return nil
}

func (r memCustomers) Delete(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

func (r memCustomers) List(ctx context.Context, status string) ([]domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Customer
	for _, c := range r.customers {
		if status == "" || string(c.Status) == status {
			out = append(out, c)
		}
	}
	return out, nil
}

type memEquipment struct{ *memStore }

func (r memEquipment) Create(ctx context.Context, e *domain.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.id()
	r.equipment[e.ID] = *e
	return nil
}

func (r memEquipment) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.equipment[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("equipment %d not found", id))
	}
	return r.expand(e), nil
}

func (r memEquipment) Update(ctx context.Context, e *domain.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.equipment[e.ID]
	if !ok {
		return domain.NewNotFoundError(fmt.Sprintf("equipment %d not found", e.ID))
	}
	next := *e
	next.Type = nil
	if cur.Status == domain.EquipmentStatusRented {
		next.Status = cur.Status
	}
	r.equipment[e.ID] = next
	return nil
}

func (r memEquipment) Delete(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.equipment, id)
	return nil
}

func (r memEquipment) List(ctx context.Context, status string) ([]domain.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Equipment
	for _, e := range r.equipment {
		if status == "" || string(e.Status) == status {
			out = append(out, *r.expand(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEquipment) Reserve(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(fmt.Sprintf("Reserve:%d", id)); err != nil {
		return err
	}
	e, ok := r.equipment[id]
	if !ok {
		return domain.NewNotFoundError(fmt.Sprintf("equipment %d not found", id))
	}
	if e.Status != domain.EquipmentStatusAvailable {
		return domain.NewConflictError(fmt.Sprintf("equipment %d is not available", id))
	}
	e.Status = domain.EquipmentStatusRented
	r.equipment[id] = e
	return nil
}

func (r memEquipment) Release(ctx context.Context, id int32) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(fmt.Sprintf("Release:%d", id)); err != nil {
		return false, err
	}
	e, ok := r.equipment[id]
	if !ok || e.Status != domain.EquipmentStatusRented {
		return false, nil
	}
	e.Status = domain.EquipmentStatusAvailable
	r.equipment[id] = e
	return true, nil
}

func (r memEquipment) SetCondition(ctx context.Context, id int32, condition domain.EquipmentCondition, status domain.EquipmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(fmt.Sprintf("SetCondition:%d", id)); err != nil {
		return err
	}
	e := r.equipment[id]
	e.Condition = condition
	e.Status = status
	r.equipment[id] = e
	return nil
}

func (r memEquipment) SyncStatusWithRentals(ctx context.Context) (int64, error) {
	return 0, nil
}

type memRentals struct{ *memStore }

func (r memRentals) Create(ctx context.Context, rt *domain.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("Rental.Create"); err != nil {
		return err
	}
	rt.ID = r.id()
	stored := *rt
	stored.Customer, stored.Details = nil, nil
	r.rentals[rt.ID] = stored
	return nil
}

func (r memRentals) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.rentals[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("rental %d not found", id))
	}
	if c, ok := r.customers[rt.CustomerID]; ok {
		rt.Customer = &c
	}
	return &rt, nil
}

func (r memRentals) Update(ctx context.Context, rt *domain.Rental) error {
	r.runHook("Rental.Update")
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("Rental.Update"); err != nil {
		return err
	}
	cur, ok := r.rentals[rt.ID]
	if !ok || !cur.Status.IsOpen() {
		return domain.NewConflictError(fmt.Sprintf("rental %d is no longer open", rt.ID))
	}
	stored := *rt
	stored.Customer, stored.Details = nil, nil
	stored.Status = cur.Status
	stored.EquipmentReleased = cur.EquipmentReleased
	r.rentals[rt.ID] = stored
	return nil
}

func (r memRentals) Delete(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rentals[id]; !ok {
		return domain.NewNotFoundError(fmt.Sprintf("rental %d not found", id))
	}
	delete(r.rentals, id)
	delete(r.details, id)
	return nil
}

func (r memRentals) List(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Rental
	for _, rt := range r.rentals {
		if status == "" || string(rt.Status) == status {
			out = append(out, rt)
		}
	}
	return out, int32(len(out)), nil
}

func (r memRentals) TransitionStatus(ctx context.Context, id int32, from []domain.RentalStatus, to domain.RentalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("Rental.TransitionStatus"); err != nil {
		return err
	}
	rt, ok := r.rentals[id]
	if !ok {
		return domain.NewNotFoundError(fmt.Sprintf("rental %d not found", id))
	}
	for _, st := range from {
		if rt.Status == st {
			rt.Status = to
			r.rentals[id] = rt
			return nil
		}
	}
	return domain.NewConflictError(fmt.Sprintf("rental %d is %s", id, rt.Status))
}

func (r memRentals) Reopen(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.rentals[id]
	if !ok || rt.Status != domain.RentalStatusCompleted {
		return domain.NewConflictError(fmt.Sprintf("rental %d is not completed", id))
	}
	rt.Status = domain.RentalStatusActive
	rt.EquipmentReleased = true
	r.rentals[id] = rt
	return nil
}

func (r memRentals) MarkOverdue(ctx context.Context, asOf time.Time) ([]int32, error) {
	return nil, nil
}

func (r memRentals) CreateDetails(ctx context.Context, details []domain.RentalDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("Rental.CreateDetails"); err != nil {
		return err
	}
	for _, d := range details {
		d.ID = r.id()
		d.Equipment = nil
		r.details[d.RentalID] = append(r.details[d.RentalID], d)
	}
	return nil
}

func (r memRentals) ListDetails(ctx context.Context, rentalID int32) ([]domain.RentalDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RentalDetail, 0, len(r.details[rentalID]))
	for _, d := range r.details[rentalID] {
		if e, ok := r.equipment[d.EquipmentID]; ok {
			d.Equipment = r.expand(e)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r memRentals) UpsertDetail(ctx context.Context, detail *domain.RentalDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(fmt.Sprintf("UpsertDetail:%d", detail.EquipmentID)); err != nil {
		return err
	}
	d := *detail
	d.Equipment = nil
	rows := r.details[d.RentalID]
	for i := range rows {
		if rows[i].EquipmentID == d.EquipmentID {
			d.ID = rows[i].ID
			rows[i] = d
			return nil
		}
	}
	d.ID = r.id()
	r.details[d.RentalID] = append(rows, d)
	return nil
}

func (r memRentals) DeleteDetail(ctx context.Context, rentalID, equipmentID int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(fmt.Sprintf("DeleteDetail:%d", equipmentID)); err != nil {
		return err
	}
	rows := r.details[rentalID]
	for i := range rows {
		if rows[i].EquipmentID == equipmentID {
			r.details[rentalID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("rental detail not found")
}

func (r memRentals) DeleteDetails(ctx context.Context, rentalID int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.details, rentalID)
	return nil
}

type memPayments struct{ *memStore }

func (r memPayments) Create(ctx context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("Payment.Create"); err != nil {
		return err
	}
	p.ID = r.id()
	stored := *p
	stored.Rental = nil
	r.payments[p.ID] = stored
	return nil
}

func (r memPayments) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("payment %d not found", id))
	}
	if rt, ok := r.rentals[p.RentalID]; ok {
		if c, ok := r.customers[rt.CustomerID]; ok {
			rt.Customer = &c
		}
		p.Rental = &rt
	}
	return &p, nil
}

func (r memPayments) Delete(ctx context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[id]; !ok {
		return domain.NewNotFoundError(fmt.Sprintf("payment %d not found", id))
	}
	delete(r.payments, id)
	return nil
}

func (r memPayments) List(ctx context.Context, page, pageSize int32) ([]domain.Payment, int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out, int32(len(out)), nil
}

func (r memPayments) ListByRental(ctx context.Context, rentalID int32) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.RentalID == rentalID {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockNotifier records workflow notifications.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RentalCreated(ctx context.Context, rental *domain.Rental, customer *domain.Customer) {
	m.Called(ctx, rental, customer)
}

func (m *MockNotifier) PaymentRecorded(ctx context.Context, payment *domain.Payment, customer *domain.Customer, receipt []byte) {
	m.Called(ctx, payment, customer, receipt)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("RCPT-%04d", g.n)
}
