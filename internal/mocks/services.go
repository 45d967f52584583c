package mocks

import (
	"context"

	"katagaki/internal/model"

	"github.com/stretchr/testify/mock"
)

type TitleServiceMock struct {
	mock.Mock
}

func NewTitleServiceMock() *TitleServiceMock {
	return &TitleServiceMock{}
}

func (m *TitleServiceMock) Search(ctx context.Context, filter model.TitleFilter) ([]*model.Title, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Title), args.Error(1)
}

func (m *TitleServiceMock) GetByID(ctx context.Context, id string) (*model.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

func (m *TitleServiceMock) VerifyNumbering(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *TitleServiceMock) Holders(ctx context.Context, id string) ([]*model.TitleHolder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TitleHolder), args.Error(1)
}

func (m *TitleServiceMock) Create(ctx context.Context, principal model.Principal, params model.CreateTitleParams) (*model.Title, error) {
	args := m.Called(ctx, principal, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

func (m *TitleServiceMock) Update(ctx context.Context, principal model.Principal, id string, params model.UpdateTitleParams) (*model.Title, error) {
	args := m.Called(ctx, principal, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

func (m *TitleServiceMock) Delete(ctx context.Context, principal model.Principal, id string) error {
	args := m.Called(ctx, principal, id)
	return args.Error(0)
}

type UserServiceMock struct {
	mock.Mock
}

func NewUserServiceMock() *UserServiceMock {
	return &UserServiceMock{}
}

func (m *UserServiceMock) Register(ctx context.Context, principal model.Principal, displayName, email string) (*model.User, error) {
	args := m.Called(ctx, principal, displayName, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserServiceMock) GetMe(ctx context.Context, principal model.Principal) (*model.User, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserServiceMock) RoleOf(ctx context.Context, userID string) (model.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Role), args.Error(1)
}

func (m *UserServiceMock) UpdateProfile(ctx context.Context, principal model.Principal, params model.UpdateProfileParams) (*model.User, error) {
	args := m.Called(ctx, principal, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserServiceMock) List(ctx context.Context, principal model.Principal, role model.Role) ([]*model.UserSummary, error) {
	args := m.Called(ctx, principal, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserSummary), args.Error(1)
}

func (m *UserServiceMock) ChangeRole(ctx context.Context, principal model.Principal, userID string, role model.Role) (*model.User, error) {
	args := m.Called(ctx, principal, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type RightServiceMock struct {
	mock.Mock
}

func NewRightServiceMock() *RightServiceMock {
	return &RightServiceMock{}
}

func (m *RightServiceMock) ListMine(ctx context.Context, principal model.Principal) ([]*model.RightView, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RightView), args.Error(1)
}

func (m *RightServiceMock) List(ctx context.Context, principal model.Principal) ([]*model.RightView, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RightView), args.Error(1)
}

func (m *RightServiceMock) FindBySession(ctx context.Context, principal model.Principal, sessionID string) (*model.RightView, error) {
	args := m.Called(ctx, principal, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RightView), args.Error(1)
}

func (m *RightServiceMock) Revoke(ctx context.Context, principal model.Principal, id string) (*model.Right, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Right), args.Error(1)
}

type ProposalServiceMock struct {
	mock.Mock
}

func NewProposalServiceMock() *ProposalServiceMock {
	return &ProposalServiceMock{}
}

func (m *ProposalServiceMock) Submit(ctx context.Context, principal model.Principal, proposedTitle, reason string) (*model.Proposal, error) {
	args := m.Called(ctx, principal, proposedTitle, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Proposal), args.Error(1)
}

func (m *ProposalServiceMock) ListMine(ctx context.Context, principal model.Principal) ([]*model.Proposal, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Proposal), args.Error(1)
}

func (m *ProposalServiceMock) List(ctx context.Context, principal model.Principal, status model.ProposalStatus) ([]*model.Proposal, error) {
	args := m.Called(ctx, principal, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Proposal), args.Error(1)
}

func (m *ProposalServiceMock) Review(ctx context.Context, principal model.Principal, id string, status model.ProposalStatus) (*model.Proposal, error) {
	args := m.Called(ctx, principal, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Proposal), args.Error(1)
}

func (m *ProposalServiceMock) TitleDraft(ctx context.Context, principal model.Principal, id string) (*model.TitleDraft, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TitleDraft), args.Error(1)
}

func (m *ProposalServiceMock) Delete(ctx context.Context, principal model.Principal, id string) error {
	args := m.Called(ctx, principal, id)
	return args.Error(0)
}

type CheckoutServiceMock struct {
	mock.Mock
}

func NewCheckoutServiceMock() *CheckoutServiceMock {
	return &CheckoutServiceMock{}
}

func (m *CheckoutServiceMock) CreateSession(ctx context.Context, principal model.Principal, req model.CheckoutRequest, origin string) (*model.CheckoutSession, error) {
	args := m.Called(ctx, principal, req, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSession), args.Error(1)
}

type EntitlementServiceMock struct {
	mock.Mock
}

func NewEntitlementServiceMock() *EntitlementServiceMock {
	return &EntitlementServiceMock{}
}

func (m *EntitlementServiceMock) GrantFromCheckout(ctx context.Context, completion *model.CheckoutCompletion) (*model.Right, error) {
	args := m.Called(ctx, completion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Right), args.Error(1)
}

func (m *EntitlementServiceMock) ProcessCompletion(ctx context.Context, completion *model.CheckoutCompletion) (model.GrantOutcome, error) {
	args := m.Called(ctx, completion)
	return args.Get(0).(model.GrantOutcome), args.Error(1)
}

type CategoryServiceMock struct {
	mock.Mock
}

func NewCategoryServiceMock() *CategoryServiceMock {
	return &CategoryServiceMock{}
}

func (m *CategoryServiceMock) List(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Category), args.Error(1)
}

func (m *CategoryServiceMock) GetByID(ctx context.Context, id string) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *CategoryServiceMock) Create(ctx context.Context, principal model.Principal, params model.CreateCategoryParams) (*model.Category, error) {
	args := m.Called(ctx, principal, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *CategoryServiceMock) Update(ctx context.Context, principal model.Principal, id string, params model.UpdateCategoryParams) (*model.Category, error) {
	args := m.Called(ctx, principal, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *CategoryServiceMock) Delete(ctx context.Context, principal model.Principal, id string) error {
	args := m.Called(ctx, principal, id)
	return args.Error(0)
}
