package paymentmethods

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddInput registers a tokenized instrument for a user.
type AddInput struct {
	UserID      uuid.UUID
	MethodType  enums.PaymentMethodType
	Token       string
	LastFour    *string
	CardBrand   *string
	ExpiryMonth *int
	ExpiryYear  *int
	BillingName *string
	BillingZip  *string
	SetDefault  bool
}

// Service manages a user's stored payment instruments.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.PaymentMethod, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
	Get(ctx context.Context, userID, methodID uuid.UUID) (*models.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, methodID uuid.UUID) (*models.PaymentMethod, error)
	Delete(ctx context.Context, userID, methodID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds the payment methods service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment methods repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		now:  time.Now,
	}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.PaymentMethod, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.MethodType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method type")
	}
	if input.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway token required")
	}
	if (input.ExpiryMonth == nil) != (input.ExpiryYear == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry month and year go together")
	}
	if input.ExpiryMonth != nil && (*input.ExpiryMonth < 1 || *input.ExpiryMonth > 12) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry month out of range")
	}

	var created *models.PaymentMethod
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountActiveByUser(ctx, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payment methods")
		}

		// the first stored method always becomes the default
		makeDefault := input.SetDefault || count == 0
		if makeDefault && count > 0 {
			if err := repo.ClearDefault(ctx, input.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default method")
			}
		}

		method := &models.PaymentMethod{
			UserID:      input.UserID,
			MethodType:  input.MethodType,
			Token:       input.Token,
			LastFour:    input.LastFour,
			CardBrand:   input.CardBrand,
			ExpiryMonth: input.ExpiryMonth,
			ExpiryYear:  input.ExpiryYear,
			BillingName: input.BillingName,
			BillingZip:  input.BillingZip,
			IsDefault:   makeDefault,
			IsActive:    true,
		}
		if method.IsExpired(s.now()) {
			return pkgerrors.New(pkgerrors.CodeValidation, "card is expired")
		}

		created, err = repo.Create(ctx, method)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment method")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	methods, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}
	return methods, nil
}

func (s *service) Get(ctx context.Context, userID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.findOwned(ctx, s.repo, userID, methodID)
}

func (s *service) SetDefault(ctx context.Context, userID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var updated *models.PaymentMethod
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		method, err := s.findOwned(ctx, repo, userID, methodID)
		if err != nil {
			return err
		}
		if method.IsDefault {
			updated = method
			return nil
		}

		if err := repo.ClearDefault(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default method")
		}
		if err := repo.Update(ctx, method.ID, map[string]any{"is_default": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default method")
		}
		method.IsDefault = true
		updated = method
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deactivates the method. Rows are kept because transactions reference
// them.
func (s *service) Delete(ctx context.Context, userID, methodID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		method, err := s.findOwned(ctx, repo, userID, methodID)
		if err != nil {
			return err
		}

		updates := map[string]any{"is_active": false, "is_default": false}
		if err := repo.Update(ctx, method.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate payment method")
		}
		return nil
	})
}

// findOwned loads an active method and verifies it belongs to the user.
// Deactivated or foreign methods read as not found.
func (s *service) findOwned(ctx context.Context, repo Repository, userID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	method, err := repo.FindByID(ctx, methodID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}
	if method.UserID != userID || !method.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
	}
	return method, nil
}
