package cart

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopfront-backend/api/middleware"
	"github.com/angelmondragon/shopfront-backend/api/responses"
	"github.com/angelmondragon/shopfront-backend/api/validators"
	cartsvc "github.com/angelmondragon/shopfront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

// cartOp runs one cart operation for the authenticated user.
type cartOp func(r *http.Request, userID uuid.UUID) (*cartsvc.View, error)

// serve resolves the caller, runs op and renders the resulting cart with status.
func serve(svc cartsvc.Service, logg *logger.Logger, status int, op cartOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := op(r, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, newResponse(view))
	}
}

// CartFetch returns the caller's cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, http.StatusOK, func(r *http.Request, userID uuid.UUID) (*cartsvc.View, error) {
		return svc.GetCart(r.Context(), userID)
	})
}

// CartAddItem adds quantity of a product, creating the cart on first use.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, http.StatusCreated, func(r *http.Request, userID uuid.UUID) (*cartsvc.View, error) {
		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		return svc.AddItem(r.Context(), userID, productID, payload.Quantity)
	})
}

// CartUpdateItem sets the absolute quantity of a line; zero removes it.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, http.StatusOK, func(r *http.Request, userID uuid.UUID) (*cartsvc.View, error) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		var payload UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.UpdateItemQuantity(r.Context(), userID, productID, *payload.Quantity)
	})
}

// CartRemoveItem drops a line. Removing an absent product is not an error.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, http.StatusOK, func(r *http.Request, userID uuid.UUID) (*cartsvc.View, error) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		return svc.RemoveItem(r.Context(), userID, productID)
	})
}

// CartClear empties the cart but keeps it.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, http.StatusOK, func(r *http.Request, userID uuid.UUID) (*cartsvc.View, error) {
		return svc.ClearCart(r.Context(), userID)
	})
}

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
