package transfer

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loyaltyware/walletcore/internal/domain"
	"github.com/loyaltyware/walletcore/internal/usecase/stagedop"
)

type sliceProducer struct {
	stages []domain.OperationStage
	pos    int
}

func (p *sliceProducer) Next(ctx context.Context) (domain.OperationStage, error) {
	if p.pos < len(p.stages) {
		s := p.stages[p.pos]
		p.pos++
		return s, nil
	}
	return domain.OperationStage{}, io.EOF
}

type mockLedgerClient struct {
	mock.Mock
}

func (m *mockLedgerClient) Summary(ctx context.Context, address string) (*domain.Summary, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockLedgerClient) UnpayablePointBalance(ctx context.Context, phone string) (string, error) {
	args := m.Called(ctx, phone)
	return args.String(0), args.Error(1)
}

func (m *mockLedgerClient) ChangeToPayablePoint(ctx context.Context, phone string) domain.StageProducer {
	args := m.Called(ctx, phone)
	return args.Get(0).(domain.StageProducer)
}

func (m *mockLedgerClient) Transfer(ctx context.Context, to, rawAmount string) domain.StageProducer {
	args := m.Called(ctx, to, rawAmount)
	return args.Get(0).(domain.StageProducer)
}

func (m *mockLedgerClient) TransferMainChain(ctx context.Context, to, rawAmount string) domain.StageProducer {
	args := m.Called(ctx, to, rawAmount)
	return args.Get(0).(domain.StageProducer)
}

func (m *mockLedgerClient) MainChainTransferHistory(ctx context.Context, address string) ([]domain.MainChainTransfer, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MainChainTransfer), args.Error(1)
}

func doneStages() domain.StageProducer {
	return &sliceProducer{stages: []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageSent, TxHash: "0xfeed"},
		{Key: domain.StageDone},
	}}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		balance string
		fee     string
		want    string
		wantErr error
	}{
		{name: "typical", amount: "10", balance: "100", fee: "0.5", want: "9.5"},
		{name: "exact balance", amount: "100", balance: "100", fee: "0.5", want: "99.5"},
		{name: "amount equals fee", amount: "0.5", balance: "100", fee: "0.5", wantErr: ErrBelowFee},
		{name: "amount below fee", amount: "0.1", balance: "100", fee: "0.5", wantErr: ErrBelowFee},
		{name: "insufficient balance", amount: "101", balance: "100", fee: "0.5", wantErr: ErrInsufficientBalance},
		{name: "fractional exactness", amount: "0.3", balance: "1", fee: "0.1", want: "0.2"},
		{name: "malformed amount", amount: "ten", balance: "100", fee: "0.5", wantErr: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quote(tt.amount, tt.balance, tt.fee)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMainChain_SendsRawTokenAmount(t *testing.T) {
	ledger := new(mockLedgerClient)
	ledger.On("TransferMainChain", mock.Anything, "0xdest", "1500000000000000000").Return(doneStages())

	svc := NewService(ledger, stagedop.NewExecutor(nil), "0xsrc")
	err := svc.MainChain(context.Background(), "0xdest", "1.5")

	require.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestSideChain_SendsRawTokenAmount(t *testing.T) {
	ledger := new(mockLedgerClient)
	ledger.On("Transfer", mock.Anything, "0xdest", "2000000000000000000").Return(doneStages())

	svc := NewService(ledger, stagedop.NewExecutor(nil), "0xsrc")
	err := svc.SideChain(context.Background(), "0xdest", "2")

	require.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestMainChain_MalformedAmountSkipsRelay(t *testing.T) {
	ledger := new(mockLedgerClient)

	svc := NewService(ledger, stagedop.NewExecutor(nil), "0xsrc")
	err := svc.MainChain(context.Background(), "0xdest", "1.5.5")

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	ledger.AssertNotCalled(t, "TransferMainChain", mock.Anything, mock.Anything, mock.Anything)
}

func TestMainChain_IncompleteSequence(t *testing.T) {
	ledger := new(mockLedgerClient)
	ledger.On("TransferMainChain", mock.Anything, mock.Anything, mock.Anything).Return(domain.StageProducer(&sliceProducer{
		stages: []domain.OperationStage{
			{Key: domain.StagePrepared},
			{Key: domain.StageSent},
		},
	}))

	svc := NewService(ledger, stagedop.NewExecutor(nil), "0xsrc")
	err := svc.MainChain(context.Background(), "0xdest", "1")

	var opErr *domain.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, domain.IncompleteSequence, opErr.Kind)
	assert.Len(t, opErr.Stages, 2)
}

func TestSummary(t *testing.T) {
	ledger := new(mockLedgerClient)
	ledger.On("Summary", mock.Anything, "0xsrc").Return(&domain.Summary{
		TokenSymbol:      "KIOS",
		MainChainBalance: "5000000000000000000",
		TransferFee:      "100000000000000000",
	}, nil)

	svc := NewService(ledger, stagedop.NewExecutor(nil), "0xsrc")
	got, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "KIOS", got.TokenSymbol)
}
