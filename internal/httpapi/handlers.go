package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/elbara99/ai-counter-cafeteria/internal/checkout"
	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
	"github.com/elbara99/ai-counter-cafeteria/internal/exporter"
)

type AddItemRequestDTO struct {
	ProductID int64 `json:"productId"`
}

type CartResponseDTO struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

type ExportResponseDTO struct {
	File string `json:"file"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Catalog.Products())
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	items := s.deps.Cart.Items()
	respondJSON(w, http.StatusOK, CartResponseDTO{
		Items: items,
		Total: s.deps.Cart.Total(),
		Count: len(items),
	})
}

// addCartItem is the manual fallback for when a product will not scan.
func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, ok := s.deps.Catalog.ByID(req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "no such product in the catalog")
		return
	}

	item := s.deps.Cart.AddItem(product, 0)
	respondJSON(w, http.StatusCreated, item)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "item id must be an integer")
		return
	}

	// Removing an absent id is a no-op, not an error.
	s.deps.Cart.RemoveItem(id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.deps.Cart.Clear()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) completeOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.deps.Checkout.CompleteOrder(r.Context())
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) || errors.Is(err, exporter.ErrEmptyOrder) {
			respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
			return
		}
		respondError(w, http.StatusInternalServerError, "checkout_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// listOrders serves the archived order history, newest first. Without a
// working archive the history is simply empty.
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	if s.deps.Orders == nil {
		respondJSON(w, http.StatusOK, []domain.OrderExport{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	list, err := s.deps.Orders.ListOrders(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "archive_failed", err.Error())
		return
	}
	if list == nil {
		list = []domain.OrderExport{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Stats.Snapshot())
}

func (s *Server) resetStats(w http.ResponseWriter, r *http.Request) {
	s.deps.Stats.Reset(r.Context())
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) {
	path, err := s.deps.Checkout.ExportSession()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ExportResponseDTO{File: path})
}
