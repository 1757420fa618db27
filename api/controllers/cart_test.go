package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/middleware"
	cartsvc "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/cart"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
)

type stubCartService struct {
	view *cartsvc.View
	err  error

	gotUniversityID uuid.UUID
	gotUpdate       cartsvc.UpdateItemInput
}

func (s *stubCartService) GetCart(_ context.Context, _, universityID uuid.UUID) (*cartsvc.View, error) {
	s.gotUniversityID = universityID
	return s.view, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ cartsvc.AddItemInput) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) UpdateItem(_ context.Context, input cartsvc.UpdateItemInput) (*cartsvc.View, error) {
	s.gotUpdate = input
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _ cartsvc.RemoveItemInput) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) Clear(_ context.Context, _ uuid.UUID) error {
	return s.err
}

func authedContext(ctx context.Context, userID, universityID uuid.UUID) context.Context {
	ctx = middleware.WithUserID(ctx, userID.String())
	return middleware.WithUniversityID(ctx, universityID.String())
}

func requestWithItemID(method, url, itemID string, body *strings.Reader) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, body)
	}
	rc := chi.NewRouteContext()
	rc.URLParams.Add("itemId", itemID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCartFetchSuccess(t *testing.T) {
	buyerID := uuid.New()
	campusID := uuid.New()
	view := &cartsvc.View{
		Order: models.Order{
			ID:           uuid.New(),
			BuyerID:      buyerID,
			UniversityID: campusID,
			Status:       enums.OrderStatusCart,
		},
	}
	stub := &stubCartService{view: view}
	handler := CartFetch(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/cart", nil)
	req = req.WithContext(authedContext(req.Context(), buyerID, campusID))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.gotUniversityID != campusID {
		t.Fatalf("expected university %s passed to service, got %s", campusID, stub.gotUniversityID)
	}

	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Order.ID != view.Order.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.Order.ID)
	}
}

func TestCartAddItemRejectsBadProductID(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/cart/items", strings.NewReader(`{"product_id":"not-a-uuid","quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(authedContext(req.Context(), uuid.New(), uuid.New()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateItemRequiresQuantityParam(t *testing.T) {
	stub := &stubCartService{view: &cartsvc.View{}}
	handler := CartUpdateItem(stub, nil)

	itemID := uuid.New()
	req := requestWithItemID(http.MethodPut, "/api/orders/cart/items/"+itemID.String(), itemID.String(), nil)
	req = req.WithContext(authedContext(req.Context(), uuid.New(), uuid.New()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code got %s", payload.Error.Code)
	}
}

func TestCartUpdateItemZeroQuantityPassesThrough(t *testing.T) {
	stub := &stubCartService{view: &cartsvc.View{}}
	handler := CartUpdateItem(stub, nil)

	buyerID := uuid.New()
	itemID := uuid.New()
	req := requestWithItemID(http.MethodPut, "/api/orders/cart/items/"+itemID.String()+"?quantity=0", itemID.String(), nil)
	req = req.WithContext(authedContext(req.Context(), buyerID, uuid.New()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.gotUpdate.ItemID != itemID {
		t.Fatalf("expected item %s got %s", itemID, stub.gotUpdate.ItemID)
	}
	if stub.gotUpdate.BuyerID != buyerID {
		t.Fatalf("expected buyer %s got %s", buyerID, stub.gotUpdate.BuyerID)
	}
	if stub.gotUpdate.Quantity != 0 {
		t.Fatalf("expected quantity 0 got %d", stub.gotUpdate.Quantity)
	}
}

func TestCartClearMapsServiceError(t *testing.T) {
	stub := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "missing")}
	handler := CartClear(stub, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/cart", nil)
	req = req.WithContext(authedContext(req.Context(), uuid.New(), uuid.New()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
