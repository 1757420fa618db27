package controllers

import (
	"net/http"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/middleware"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/responses"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/validators"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/paymentmethods"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/logger"
)

type addPaymentMethodRequest struct {
	MethodType  string  `json:"method_type" validate:"required"`
	Token       string  `json:"token" validate:"required,max=200"`
	LastFour    *string `json:"last_four" validate:"omitempty,len=4"`
	CardBrand   *string `json:"card_brand" validate:"omitempty,max=50"`
	ExpiryMonth *int    `json:"expiry_month" validate:"omitempty,min=1,max=12"`
	ExpiryYear  *int    `json:"expiry_year" validate:"omitempty,min=2000,max=2100"`
	BillingName *string `json:"billing_name" validate:"omitempty,max=200"`
	BillingZip  *string `json:"billing_zip" validate:"omitempty,max=20"`
	SetDefault  bool    `json:"set_default"`
}

func PaymentMethodAdd(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		methodType, err := enums.ParsePaymentMethodType(req.MethodType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method type"))
			return
		}

		method, err := svc.Add(r.Context(), paymentmethods.AddInput{
			UserID:      middleware.UserUUIDFromContext(r.Context()),
			MethodType:  methodType,
			Token:       req.Token,
			LastFour:    req.LastFour,
			CardBrand:   req.CardBrand,
			ExpiryMonth: req.ExpiryMonth,
			ExpiryYear:  req.ExpiryYear,
			BillingName: req.BillingName,
			BillingZip:  req.BillingZip,
			SetDefault:  req.SetDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, method)
	}
}

func PaymentMethodList(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methods, err := svc.List(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, methods)
	}
}

func PaymentMethodDetail(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methodID, err := parseIDParam(r, "methodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.Get(r.Context(), middleware.UserUUIDFromContext(r.Context()), methodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, method)
	}
}

func PaymentMethodSetDefault(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methodID, err := parseIDParam(r, "methodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.SetDefault(r.Context(), middleware.UserUUIDFromContext(r.Context()), methodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, method)
	}
}

func PaymentMethodDelete(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methodID, err := parseIDParam(r, "methodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.UserUUIDFromContext(r.Context()), methodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
