package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/shopify"
)

const (
	msgSignUpFailed    = "An error occurred. Please try again."
	msgLogInFailed     = "Invalid email or password."
	msgNoAddressOnFile = "No default address set."
)

type CustomerAPI interface {
	CreateCustomer(ctx context.Context, input shopify.CustomerCreateInput) ([]domain.UserError, error)
	CreateAccessToken(ctx context.Context, email, password string) (*domain.AccessToken, []domain.UserError, error)
	UpdateCustomerAddress(ctx context.Context, accessToken, addressID string, address domain.AddressInput) ([]domain.UserError, error)
	GetCustomer(ctx context.Context, accessToken string) (*domain.Customer, error)
}

type SignUpInput struct {
	FirstName string `json:"firstName" validate:"max=100" label:"First name"`
	LastName  string `json:"lastName" validate:"max=100" label:"Last name"`
	Email     string `json:"email" validate:"required,email" label:"Email"`
	Password  string `json:"password" validate:"required,min=8,max=100" label:"Password"`
}

type LogInInput struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// CustomerService handles signup, login and the account page. Authentication
// itself is the commerce platform's; this only relays its answers.
type CustomerService struct {
	api CustomerAPI
}

func NewCustomerService(api CustomerAPI) *CustomerService {
	return &CustomerService{api: api}
}

// SignUp registers a customer. Rejections come back as *UserErrors.
func (s *CustomerService) SignUp(ctx context.Context, in SignUpInput) error {
	if err := validateInput(in); err != nil {
		return err
	}

	userErrs, err := s.api.CreateCustomer(ctx, shopify.CustomerCreateInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		logger.FromContext(ctx).Error("customer create failed", zap.Error(err))
		return &UserErrors{Errors: []domain.UserError{{Message: msgSignUpFailed}}, Cause: err}
	}
	if len(userErrs) > 0 {
		return &UserErrors{Errors: userErrs}
	}
	return nil
}

// LogIn exchanges credentials for a customer access token.
func (s *CustomerService) LogIn(ctx context.Context, in LogInInput) (*domain.AccessToken, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	token, userErrs, err := s.api.CreateAccessToken(ctx, in.Email, in.Password)
	if err != nil {
		logger.FromContext(ctx).Error("customer access token create failed", zap.Error(err))
		return nil, &UserErrors{Errors: []domain.UserError{{Message: msgLogInFailed}}, Cause: err}
	}
	if len(userErrs) > 0 {
		return nil, &UserErrors{Errors: userErrs}
	}
	return token, nil
}

// Account loads the customer behind the access token. ErrUnauthenticated means
// the token is no longer valid and the session should be dropped.
func (s *CustomerService) Account(ctx context.Context, accessToken string) (*domain.Customer, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}
	customer, err := s.api.GetCustomer(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrUnauthenticated
	}
	return customer, nil
}

// UpdateAddress edits the customer's default address.
func (s *CustomerService) UpdateAddress(ctx context.Context, accessToken, addressID string, address domain.AddressInput) error {
	if accessToken == "" {
		return ErrUnauthenticated
	}
	if addressID == "" {
		return newUserError(msgNoAddressOnFile)
	}
	if err := validateInput(address); err != nil {
		return err
	}

	userErrs, err := s.api.UpdateCustomerAddress(ctx, accessToken, addressID, address)
	if err != nil {
		logger.FromContext(ctx).Error("customer address update failed", zap.Error(err))
		return fmt.Errorf("update address: %w", err)
	}
	if len(userErrs) > 0 {
		return &UserErrors{Errors: userErrs}
	}
	return nil
}

// AsUserErrors extracts the customer-facing errors from err.
func AsUserErrors(err error) (*UserErrors, bool) {
	var ue *UserErrors
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
