package mocks

import (
	"context"
	"time"

	"katagaki/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type TitleRepositoryMock struct {
	mock.Mock
}

func NewTitleRepositoryMock() *TitleRepositoryMock {
	return &TitleRepositoryMock{}
}

func (m *TitleRepositoryMock) LatestOfficialNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *TitleRepositoryMock) Search(ctx context.Context, filter model.TitleFilter) ([]*model.Title, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Title), args.Error(1)
}

func (m *TitleRepositoryMock) FindByID(ctx context.Context, id string) (*model.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

func (m *TitleRepositoryMock) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Title, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*model.Title), args.Error(1)
}

func (m *TitleRepositoryMock) Update(ctx context.Context, id string, params model.UpdateTitleParams) (*model.Title, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

func (m *TitleRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TitleRepositoryMock) ListHolders(ctx context.Context, id string, now time.Time) ([]*model.TitleHolder, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TitleHolder), args.Error(1)
}

func (m *TitleRepositoryMock) Create(ctx context.Context, tx pgx.Tx, params model.CreateTitleParams, officialNumber string) (*model.Title, error) {
	args := m.Called(ctx, tx, params, officialNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

func (m *TitleRepositoryMock) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id string) (*model.Title, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

func (m *TitleRepositoryMock) IncrementPurchased(ctx context.Context, tx pgx.Tx, id string) (*model.Title, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Title), args.Error(1)
}

type SequenceRepositoryMock struct {
	mock.Mock
}

func NewSequenceRepositoryMock() *SequenceRepositoryMock {
	return &SequenceRepositoryMock{}
}

func (m *SequenceRepositoryMock) Next(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	args := m.Called(ctx, tx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SequenceRepositoryMock) Current(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type CategoryRepositoryMock struct {
	mock.Mock
}

func NewCategoryRepositoryMock() *CategoryRepositoryMock {
	return &CategoryRepositoryMock{}
}

func (m *CategoryRepositoryMock) Create(ctx context.Context, params model.CreateCategoryParams) (*model.Category, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *CategoryRepositoryMock) List(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Category), args.Error(1)
}

func (m *CategoryRepositoryMock) FindByID(ctx context.Context, id string) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *CategoryRepositoryMock) Update(ctx context.Context, id string, params model.UpdateCategoryParams) (*model.Category, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *CategoryRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func NewUserRepositoryMock() *UserRepositoryMock {
	return &UserRepositoryMock{}
}

func (m *UserRepositoryMock) Upsert(ctx context.Context, params model.UpsertUserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepositoryMock) List(ctx context.Context, role model.Role, now time.Time) ([]*model.UserSummary, error) {
	args := m.Called(ctx, role, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserSummary), args.Error(1)
}

func (m *UserRepositoryMock) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, id string, params model.UpdateProfileParams) (*model.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepositoryMock) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepositoryMock) SetStripeCustomerID(ctx context.Context, id string, customerID string) error {
	args := m.Called(ctx, id, customerID)
	return args.Error(0)
}

func (m *UserRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type RightRepositoryMock struct {
	mock.Mock
}

func NewRightRepositoryMock() *RightRepositoryMock {
	return &RightRepositoryMock{}
}

func (m *RightRepositoryMock) List(ctx context.Context) ([]*model.Right, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Right), args.Error(1)
}

func (m *RightRepositoryMock) ListByUser(ctx context.Context, userID string) ([]*model.Right, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Right), args.Error(1)
}

func (m *RightRepositoryMock) FindByID(ctx context.Context, id string) (*model.Right, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Right), args.Error(1)
}

func (m *RightRepositoryMock) FindByPaymentReference(ctx context.Context, reference string) (*model.Right, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Right), args.Error(1)
}

func (m *RightRepositoryMock) SetActive(ctx context.Context, id string, active bool) (*model.Right, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Right), args.Error(1)
}

func (m *RightRepositoryMock) Create(ctx context.Context, tx pgx.Tx, right *model.Right) (*model.Right, error) {
	args := m.Called(ctx, tx, right)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Right), args.Error(1)
}

func (m *RightRepositoryMock) FindByPaymentReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (*model.Right, error) {
	args := m.Called(ctx, tx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Right), args.Error(1)
}

type ProposalRepositoryMock struct {
	mock.Mock
}

func NewProposalRepositoryMock() *ProposalRepositoryMock {
	return &ProposalRepositoryMock{}
}

func (m *ProposalRepositoryMock) Create(ctx context.Context, params model.CreateProposalParams) (*model.Proposal, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Proposal), args.Error(1)
}

func (m *ProposalRepositoryMock) List(ctx context.Context, status model.ProposalStatus) ([]*model.Proposal, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Proposal), args.Error(1)
}

func (m *ProposalRepositoryMock) ListByUser(ctx context.Context, userID string) ([]*model.Proposal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Proposal), args.Error(1)
}

func (m *ProposalRepositoryMock) FindByID(ctx context.Context, id string) (*model.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Proposal), args.Error(1)
}

func (m *ProposalRepositoryMock) Review(ctx context.Context, id string, status model.ProposalStatus, reviewer string, at time.Time) (*model.Proposal, error) {
	args := m.Called(ctx, id, status, reviewer, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Proposal), args.Error(1)
}

func (m *ProposalRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
