package controllers

import (
	"net/http"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/middleware"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/responses"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/validators"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/checkout"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/logger"
)

type checkoutRequest struct {
	DeliveryMethod  string  `json:"delivery_method" validate:"required"`
	DeliveryNotes   *string `json:"delivery_notes" validate:"omitempty,max=500"`
	ShippingAddress *string `json:"shipping_address" validate:"omitempty,max=500"`
}

// Checkout submits the buyer's cart for payment.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseDeliveryMethod(req.DeliveryMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery method"))
			return
		}

		order, err := svc.Submit(r.Context(), checkout.SubmitInput{
			BuyerID:         middleware.UserUUIDFromContext(r.Context()),
			DeliveryMethod:  method,
			DeliveryNotes:   req.DeliveryNotes,
			ShippingAddress: req.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
