// Package testutil provides an in-process fake of the grocery api for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

const (
	AdminEmail    = "admin@grocery.com"
	AdminPassword = "admin123"
	UserEmail     = "user@grocery.com"
	UserPassword  = "user123"

	LoginFailedMessage = "Login failed: Invalid credentials"
	RegisteredMessage  = "User registered successfully"
	PlaceOrderMessage  = "Failed to place order"
)

var signingKey = []byte("storefront-test-secret")

type Product struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ID       int64   `json:"id"`
	Quantity int     `json:"quantity"`
}

type OrderItem struct {
	Product  Product `json:"product"`
	Price    float64 `json:"price"`
	ID       int64   `json:"id"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	OrderDate   string      `json:"orderDate"`
	Status      string      `json:"status"`
	OrderItems  []OrderItem `json:"orderItems"`
	TotalAmount float64     `json:"totalAmount"`
	ID          int64       `json:"id"`
	owner       string
}

type User struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	password      string
	role          string
	ID            int64 `json:"id"`
}

// Backend is a fake api served from httptest. Handlers mimic the status
// codes and bodies of the real api.
type Backend struct {
	server *httptest.Server

	mu          sync.Mutex
	users       []User
	products    map[int64]Product
	orders      []Order
	sessions    map[string]string
	requests    []string
	nextID      int64
	failOrders  bool
	tokenExpiry time.Duration
	onOrder     func()
	loginStatus int
}

func NewBackend() *Backend {
	b := &Backend{
		users: []User{
			{ID: 1, Name: "Admin", Email: AdminEmail, password: AdminPassword, role: "ROLE_ADMIN"},
			{ID: 2, Name: "Jane Doe", Email: UserEmail, password: UserPassword, role: "ROLE_USER", Address: "1 Market St", ContactNumber: "0800"},
		},
		products: map[int64]Product{
			1: {ID: 1, Name: "Milk", Price: 2.50, Quantity: 10},
			2: {ID: 2, Name: "Bread", Price: 1.25, Quantity: 5},
			3: {ID: 3, Name: "Eggs", Price: 3.99, Quantity: 0},
		},
		sessions:    map[string]string{},
		nextID:      100,
		tokenExpiry: time.Hour,
		loginStatus: http.StatusBadRequest,
	}

	router := mux.NewRouter()
	router.Use(b.record)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", b.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", b.register).Methods(http.MethodPost)
	api.HandleFunc("/products", b.findProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/search", b.searchProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", b.findProductByID).Methods(http.MethodGet)
	api.HandleFunc("/orders", b.authenticated(b.placeOrder)).Methods(http.MethodPost)
	api.HandleFunc("/orders/my-history", b.authenticated(b.orderHistory)).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}", b.authenticated(b.findOrderByID)).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/products", b.admin(b.findProducts)).Methods(http.MethodGet)
	admin.HandleFunc("/products", b.admin(b.insertProduct)).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id:[0-9]+}", b.admin(b.updateProduct)).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id:[0-9]+}", b.admin(b.removeProduct)).Methods(http.MethodDelete)
	admin.HandleFunc("/users/search", b.admin(b.searchUsers)).Methods(http.MethodGet)

	b.server = httptest.NewServer(router)
	return b
}

func (b *Backend) Close() { b.server.Close() }

// URL is the api base url to hand to the gateway.
func (b *Backend) URL() string { return b.server.URL + "/api" }

// Requests returns every "METHOD /path" received so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *Backend) Count(method, path string) int {
	want := method + " /api" + path
	n := 0
	for _, r := range b.Requests() {
		if r == want {
			n++
		}
	}
	return n
}

// RevokeSessions makes every issued token unknown, so the next
// authenticated request is answered with 401.
func (b *Backend) RevokeSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = map[string]string{}
}

func (b *Backend) FailOrders(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOrders = fail
}

// LoginFailureStatus sets the status code a failed login is answered with.
func (b *Backend) LoginFailureStatus(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginStatus = code
}

// OnOrder runs fn while an order request is being handled, before the
// order is answered.
func (b *Backend) OnOrder(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onOrder = fn
}

func (b *Backend) Orders() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Order(nil), b.orders...)
}

func (b *Backend) Product(id int64) (Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	return p, ok
}

// IssueToken signs a token for email expiring after ttl. A negative ttl
// yields an already expired token.
func IssueToken(email string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("failed signing token with error=%s", err.Error()))
	}
	return token
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (b *Backend) caller(r *http.Request) (User, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return User{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.sessions[token]
	if !ok {
		return User{}, false
	}
	for _, u := range b.users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}

func (b *Backend) authenticated(next func(http.ResponseWriter, *http.Request, User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := b.caller(r)
		if !ok {
			writeJson(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next(w, r, user)
	}
}

func (b *Backend) admin(next http.HandlerFunc) http.HandlerFunc {
	return b.authenticated(func(w http.ResponseWriter, r *http.Request, user User) {
		if user.role != "ROLE_ADMIN" {
			writeJson(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
			return
		}
		next(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, LoginFailedMessage)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == body.Email && u.password == body.Password {
			token := IssueToken(u.Email, b.tokenExpiry)
			b.sessions[token] = u.Email
			writeJson(w, http.StatusOK, map[string]string{
				"token": token,
				"email": u.Email,
				"name":  u.Name,
				"role":  u.role,
			})
			return
		}
	}
	writeText(w, b.loginStatus, LoginFailedMessage)
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		Address       string `json:"address"`
		ContactNumber string `json:"contactNumber"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, "Registration failed: malformed body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == body.Email {
			writeText(w, http.StatusBadRequest, "Registration failed: Email already in use")
			return
		}
	}
	b.nextID++
	b.users = append(b.users, User{
		ID:            b.nextID,
		Name:          body.Name,
		Email:         body.Email,
		Address:       body.Address,
		ContactNumber: body.ContactNumber,
		password:      body.Password,
		role:          "ROLE_USER",
	})
	writeText(w, http.StatusOK, RegisteredMessage)
}

func (b *Backend) sortedProducts(match func(Product) bool) []Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	products := []Product{}
	for _, p := range b.products {
		if match(p) {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (b *Backend) findProducts(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, http.StatusOK, b.sortedProducts(func(Product) bool { return true }))
}

func (b *Backend) searchProducts(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	writeJson(w, http.StatusOK, b.sortedProducts(func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Name), name)
	}))
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (b *Backend) findProductByID(w http.ResponseWriter, r *http.Request) {
	product, ok := b.Product(pathID(r))
	if !ok {
		writeJson(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	writeJson(w, http.StatusOK, product)
}

func (b *Backend) insertProduct(w http.ResponseWriter, r *http.Request) {
	product := Product{}
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	b.nextID++
	product.ID = b.nextID
	b.products[product.ID] = product
	b.mu.Unlock()
	writeJson(w, http.StatusOK, product)
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	product := Product{}
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[id]; !ok {
		writeJson(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	product.ID = id
	b.products[id] = product
	writeJson(w, http.StatusOK, product)
}

func (b *Backend) removeProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[id]; !ok {
		writeJson(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	delete(b.products, id)
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) searchUsers(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	b.mu.Lock()
	defer b.mu.Unlock()
	users := []User{}
	for _, u := range b.users {
		if strings.Contains(strings.ToLower(u.Name), name) {
			users = append(users, u)
		}
	}
	writeJson(w, http.StatusOK, users)
}

func (b *Backend) placeOrder(w http.ResponseWriter, r *http.Request, user User) {
	body := struct {
		Items []struct {
			ProductID int64 `json:"productId"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, PlaceOrderMessage)
		return
	}

	b.mu.Lock()
	onOrder := b.onOrder
	b.mu.Unlock()
	if onOrder != nil {
		onOrder()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOrders || len(body.Items) == 0 {
		writeText(w, http.StatusInternalServerError, PlaceOrderMessage)
		return
	}
	b.nextID++
	order := Order{
		ID:        b.nextID,
		OrderDate: time.Now().Format("2006-01-02T15:04:05"),
		Status:    "PLACED",
		owner:     user.Email,
	}
	for _, item := range body.Items {
		product, ok := b.products[item.ProductID]
		if !ok {
			writeText(w, http.StatusBadRequest, PlaceOrderMessage)
			return
		}
		b.nextID++
		order.OrderItems = append(order.OrderItems, OrderItem{
			ID:       b.nextID,
			Product:  product,
			Quantity: item.Quantity,
			Price:    product.Price,
		})
		order.TotalAmount += product.Price * float64(item.Quantity)
	}
	b.orders = append(b.orders, order)
	writeJson(w, http.StatusOK, order)
}

func (b *Backend) orderHistory(w http.ResponseWriter, _ *http.Request, user User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	orders := []Order{}
	for _, o := range b.orders {
		if o.owner == user.Email {
			orders = append(orders, o)
		}
	}
	writeJson(w, http.StatusOK, orders)
}

func (b *Backend) findOrderByID(w http.ResponseWriter, r *http.Request, user User) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.orders {
		if o.ID == id && o.owner == user.Email {
			writeJson(w, http.StatusOK, o)
			return
		}
	}
	writeJson(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
}
