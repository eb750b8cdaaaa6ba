// Package apitest runs an in-process products backend speaking the JSend
// envelope, for tests of the client, the store and the command line.
package apitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/internal/schema"
	"github.com/utafrali/productconsole/pkg/health"
	"github.com/utafrali/productconsole/pkg/jsend"
	"github.com/utafrali/productconsole/pkg/middleware"
	"github.com/utafrali/productconsole/pkg/validator"
)

// CodeStorage is the error envelope code for unexpected handler failures.
const CodeStorage = 5001

// Request is a request as the backend received it.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type cannedResponse struct {
	status int
	body   string
}

// Server is a fake products backend. The zero value is not usable; call
// NewServer.
type Server struct {
	*httptest.Server

	logger *slog.Logger
	health *health.Registry

	mu         sync.Mutex
	products   map[string]domain.Product
	order      []string
	token      string
	signingKey []byte
	canned     []cannedResponse
	requests   []Request
	now        func() time.Time
}

// NewServer starts a backend serving /products and /healthz. It is closed
// when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		health:   health.NewRegistry(),
		products: make(map[string]domain.Product),
		now:      time.Now,
	}
	s.health.RegisterCritical("catalog", func(context.Context) error { return nil })

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Tracing("apitest"))
	r.Use(middleware.RequestLogging(s.logger))
	r.Use(s.record)

	r.Get("/healthz", s.health.ReadinessHandler())

	r.Route("/products", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.replayCanned)
		r.Get("/", s.listProducts)
		r.Post("/", s.createProduct)
		r.Get("/{id}", s.getProduct)
		r.Patch("/{id}", s.updateProduct)
		r.Delete("/{id}", s.deleteProduct)
	})
	return r
}

// URL returns the base URL the client should be configured with.
func (s *Server) URL() string {
	return s.Server.URL
}

// RequireToken makes /products answer 401 unless the request carries token,
// or a JWT signed with SigningKey, as its bearer credential.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if s.signingKey == nil {
		s.signingKey = []byte("apitest-signing-key")
	}
}

// IssueToken returns an HS256 token for subject accepted by RequireToken.
func (s *Server) IssueToken(subject string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	if s.signingKey == nil {
		s.signingKey = []byte("apitest-signing-key")
	}
	key := s.signingKey
	s.mu.Unlock()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": "admin",
		"iss":  "apitest",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Respond queues a raw response for the next /products request, bypassing
// the handlers. Queued responses are served in order.
func (s *Server) Respond(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned = append(s.canned, cannedResponse{status: status, body: body})
}

// Seed stores products as if they had been created, in order.
func (s *Server) Seed(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if _, ok := s.products[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
	}
}

// Products returns the stored products in creation order.
func (s *Server) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) listLocked() []domain.Product {
	out := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	guarded := middleware.BearerAuth(s.validateToken)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		required := s.token != ""
		s.mu.Unlock()

		if !required {
			next.ServeHTTP(w, r)
			return
		}
		guarded.ServeHTTP(w, r)
	})
}

func (s *Server) validateToken(token string) (*middleware.Claims, error) {
	s.mu.Lock()
	static, key := s.token, s.signingKey
	s.mu.Unlock()

	if token == static {
		return &middleware.Claims{Subject: "static"}, nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	sub, _ := claims.GetSubject()
	role, _ := claims["role"].(string)
	return &middleware.Claims{Subject: sub, Role: role}, nil
}

func (s *Server) replayCanned(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var canned *cannedResponse
		if len(s.canned) > 0 {
			c := s.canned[0]
			s.canned = s.canned[1:]
			canned = &c
		}
		s.mu.Unlock()

		if canned == nil {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(strings.TrimSpace(canned.body), "{") {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(canned.status)
		_, _ = io.WriteString(w, canned.body)
	})
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	jsend.WriteSuccess(w, http.StatusOK, s.Products())
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()

	if !ok {
		writeNotFound(w)
		return
	}
	jsend.WriteSuccess(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in schema.ProductInput
	if err := validator.DecodeJSON(r.Body, &in); err != nil {
		jsend.WriteFail(w, http.StatusBadRequest, jsend.FailData{Message: "Invalid request data"})
		return
	}

	req, err := schema.CreateProduct(in)
	if err != nil {
		writeValidation(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skuTakenLocked(req.SKU, "") {
		jsend.WriteFail(w, http.StatusConflict, jsend.FailData{Message: "Product with this SKU already exists"})
		return
	}

	now := s.now().UTC()
	p := domain.Product{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Price:         req.Price,
		Currency:      req.Currency,
		StockQuantity: req.StockQuantity,
		Category:      req.Category,
		Images:        req.Images,
		IsActive:      true,
		Brand:         req.Brand,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)

	jsend.WriteSuccess(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in schema.ProductInput
	if err := validator.DecodeJSON(r.Body, &in); err != nil {
		jsend.WriteFail(w, http.StatusBadRequest, jsend.FailData{Message: "Invalid request data"})
		return
	}

	req, err := schema.UpdateProduct(in)
	if err != nil {
		writeValidation(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		writeNotFound(w)
		return
	}
	if req.SKU != nil && s.skuTakenLocked(*req.SKU, id) {
		jsend.WriteFail(w, http.StatusConflict, jsend.FailData{Message: "Product with this SKU already exists"})
		return
	}

	p = req.Apply(p)
	p.UpdatedAt = s.now().UTC()
	s.products[id] = p

	jsend.WriteSuccess(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		writeNotFound(w)
		return
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) skuTakenLocked(sku, exceptID string) bool {
	for id, p := range s.products {
		if id != exceptID && p.SKU == sku {
			return true
		}
	}
	return false
}

func writeNotFound(w http.ResponseWriter) {
	jsend.WriteFail(w, http.StatusNotFound, jsend.FailData{Message: "Product not found"})
}

func writeValidation(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		jsend.WriteFail(w, http.StatusUnprocessableEntity, jsend.FailData{
			Message: "Validation failed",
			Errors:  valErr.FieldErrors(),
		})
		return
	}
	jsend.WriteError(w, http.StatusInternalServerError, err.Error(), jsend.Code(CodeStorage), nil)
}
