package testutil

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

// ErrInjected error que devuelven las escrituras marcadas con FailItem.
var ErrInjected = errors.New("fallo inyectado")

// Store almacenamiento en memoria que cumple los puertos de repositorio.
// RunOrder hace snapshot de pedidos y líneas y lo restaura si fn falla.
type Store struct {
	mu         sync.Mutex
	users      map[string]*entity.User
	roles      map[string]*entity.Role
	units      map[string]*entity.Unit
	categories map[string]*entity.Category
	products   map[string]*entity.Product
	orders     map[string]*entity.Order
	items      map[string]*entity.OrderItem // clave: orderID|productID
	failItems  map[string]error
	itemWrites int
}

// NewStore crea un Store con los roles admin y client sembrados.
func NewStore() *Store {
	s := &Store{
		users:      map[string]*entity.User{},
		roles:      map[string]*entity.Role{},
		units:      map[string]*entity.Unit{},
		categories: map[string]*entity.Category{},
		products:   map[string]*entity.Product{},
		orders:     map[string]*entity.Order{},
		items:      map[string]*entity.OrderItem{},
		failItems:  map[string]error{},
	}
	s.roles[AdminRoleID] = &entity.Role{ID: AdminRoleID, Name: entity.RoleAdmin, TypeUser: entity.RoleTypeStaff}
	s.roles[ClientRoleID] = &entity.Role{ID: ClientRoleID, Name: entity.RoleClient, TypeUser: entity.RoleTypeCustomer}
	return s
}

// IDs fijos de los roles sembrados.
const (
	AdminRoleID  = "00000000-0000-0000-0000-0000000000a1"
	ClientRoleID = "00000000-0000-0000-0000-0000000000c1"
)

// FailItem hace que toda escritura de línea para productID devuelva err (ErrInjected si es nil).
func (s *Store) FailItem(productID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	s.failItems[productID] = err
}

// ItemWrites cuenta las escrituras de líneas (CreateItem + UpsertItem) exitosas.
func (s *Store) ItemWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemWrites
}

// ItemsOf devuelve producto -> cantidad de las líneas del pedido.
func (s *Store) ItemsOf(orderID string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, it := range s.items {
		if it.OrderID == orderID {
			out[it.ProductID] = it.Quantity
		}
	}
	return out
}

// OrderCount número de cabeceras guardadas.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// PutUnit agrega una unidad.
func (s *Store) PutUnit(u *entity.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[u.ID] = u
}

// PutCategory agrega una categoría.
func (s *Store) PutCategory(c *entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// PutProduct agrega un producto.
func (s *Store) PutProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

// PutUser agrega un usuario.
func (s *Store) PutUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

func (s *Store) Users() repository.UserRepository { return userRepo{s} }
func (s *Store) Roles() repository.RoleRepository { return roleRepo{s} }
func (s *Store) Catalog() repository.CatalogRepository { return catalogRepo{s} }
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }
func (s *Store) Orders() repository.OrderRepository { return orderRepo{s} }

// RunOrder ejecuta fn con repositorios en memoria; si fn falla restaura pedidos y líneas.
func (s *Store) RunOrder(ctx context.Context, fn func(repository.OrderRepository, repository.CatalogRepository) error) error {
	s.mu.Lock()
	orders := cloneMap(s.orders)
	items := cloneMap(s.items)
	writes := s.itemWrites
	s.mu.Unlock()

	if err := fn(orderRepo{s}, catalogRepo{s}); err != nil {
		s.mu.Lock()
		s.orders = orders
		s.items = items
		s.itemWrites = writes
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func itemKey(orderID, productID string) string { return orderID + "|" + productID }

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

// ── usuarios ─────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.users {
		if x.CivilID == u.CivilID {
			return domain.ErrCivilIDAlreadyExists
		}
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, x := range r.s.users {
		if id == u.ID {
			continue
		}
		if x.CivilID == u.CivilID {
			return domain.ErrCivilIDAlreadyExists
		}
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	for _, o := range r.s.orders {
		if o.ClientID == id {
			return domain.ErrInUse
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r userRepo) find(match func(*entity.User) bool) *entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r userRepo) GetByCivilID(_ context.Context, civilID string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.CivilID == civilID }), nil
}

func (r userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := slices.Collect(maps.Values(r.s.users))
	sort.Slice(list, func(i, j int) bool { return list[i].CivilID < list[j].CivilID })
	return page(list, limit, offset), nil
}

// ── roles ────────────────────────────────────────────────────────────────────

type roleRepo struct{ s *Store }

func (r roleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.roles[id], nil
}

func (r roleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.roles {
		if x.Name == name {
			return x, nil
		}
	}
	return nil, nil
}

func (r roleRepo) GetByNameAndType(_ context.Context, name string, typeUser int) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.roles {
		if x.Name == name && x.TypeUser == typeUser {
			return x, nil
		}
	}
	return nil, nil
}

// ── catálogo ─────────────────────────────────────────────────────────────────

type catalogRepo struct{ s *Store }

func (r catalogRepo) GetProductByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r catalogRepo) GetProductByName(_ context.Context, name string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r catalogRepo) GetUnitByName(_ context.Context, name string) (*entity.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.units {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return nil, nil
}

func (r catalogRepo) GetCategoryByName(_ context.Context, name string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (r catalogRepo) ListProducts(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := slices.Collect(maps.Values(r.s.products))
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.products {
		if strings.EqualFold(x.Name, p.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

// ── pedidos ──────────────────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r orderRepo) List(_ context.Context, limit, offset int) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := slices.Collect(maps.Values(r.s.orders))
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r orderRepo) Update(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r orderRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func (r orderRepo) writeItem(item *entity.OrderItem, mustBeNew bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err, ok := r.s.failItems[item.ProductID]; ok {
		return err
	}
	if _, ok := r.s.orders[item.OrderID]; !ok {
		return domain.ErrNotFound
	}
	key := itemKey(item.OrderID, item.ProductID)
	if prev, ok := r.s.items[key]; ok {
		if mustBeNew {
			return domain.ErrDuplicate
		}
		prev.Quantity = item.Quantity
	} else {
		cp := *item
		r.s.items[key] = &cp
	}
	r.s.itemWrites++
	return nil
}

func (r orderRepo) CreateItem(_ context.Context, item *entity.OrderItem) error {
	return r.writeItem(item, true)
}

func (r orderRepo) UpsertItem(_ context.Context, item *entity.OrderItem) error {
	return r.writeItem(item, false)
}

func (r orderRepo) DeleteItem(_ context.Context, orderID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, itemKey(orderID, productID))
	return nil
}

func (r orderRepo) DeleteItemsByOrder(_ context.Context, orderID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, it := range r.s.items {
		if it.OrderID == orderID {
			delete(r.s.items, k)
			n++
		}
	}
	return n, nil
}

func (r orderRepo) ListItems(_ context.Context, orderID string) ([]*entity.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.OrderItem, 0)
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
