package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mwangi-george/virtual-wallet-app/internal/notification"
)

// UserDirectory resolves the account status of transfer recipients. It is
// implemented by the identity repository. Implementations return
// ErrRecipientNotFound when no such user exists; any other error is treated
// as a lookup infrastructure failure.
type UserDirectory interface {
	ActorByID(ctx context.Context, id string) (Actor, error)
}

// Service is the ledger engine. Every balance mutation runs inside a single
// unit of work obtained from the store: validate, mutate, append transaction
// rows, commit. Nothing else in the application writes balances or
// transactions.
type Service struct {
	store    Store
	users    UserDirectory
	notifier notification.Notifier
	logger   *slog.Logger
	currency string
}

// NewService builds a ledger engine around the given store.
func NewService(store Store, users UserDirectory, notifier notification.Notifier, logger *slog.Logger, currency string) *Service {
	return &Service{store: store, users: users, notifier: notifier, logger: logger, currency: currency}
}

// CreateForUser provisions a zero-balance wallet at signup.
func (s *Service) CreateForUser(ctx context.Context, userID string) (Wallet, error) {
	w := Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Balance:   decimal.Zero,
		Currency:  s.currency,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateWallet(ctx, w); err != nil {
		return Wallet{}, s.unavailable("create wallet", userID, err)
	}
	return w, nil
}

// Deposit credits the actor's wallet and appends a Deposit transaction.
// The core places no upper bound on deposits.
func (s *Service) Deposit(ctx context.Context, actor Actor, amount decimal.Decimal) (Receipt, error) {
	if err := validateActor(actor); err != nil {
		return Receipt{}, err
	}
	if err := validateAmount(amount); err != nil {
		return Receipt{}, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Receipt{}, s.unavailable("deposit", actor.ID, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	w, err := tx.WalletForUpdate(ctx, actor.ID)
	if err != nil {
		return Receipt{}, s.storeErr("deposit", actor.ID, err)
	}

	now := time.Now().UTC()
	newBalance := w.Balance.Add(amount)
	if err := s.apply(ctx, tx, w.ID, newBalance, now, Transaction{
		ID:        uuid.NewString(),
		WalletID:  w.ID,
		Kind:      KindDeposit,
		Amount:    amount,
		CreatedAt: now,
	}); err != nil {
		return Receipt{}, s.unavailable("deposit", actor.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, s.unavailable("deposit", actor.ID, err)
	}
	return Receipt{AmountMoved: amount, WalletBalance: newBalance}, nil
}

// Withdraw debits the actor's wallet and appends a Withdraw transaction.
// Fails with InsufficientFundsError when the balance cannot cover the amount.
func (s *Service) Withdraw(ctx context.Context, actor Actor, amount decimal.Decimal) (Receipt, error) {
	return s.debit(ctx, actor, amount, KindWithdraw, nil)
}

// Purchase debits the actor's wallet and appends a Purchase transaction
// carrying the spending category.
func (s *Service) Purchase(ctx context.Context, actor Actor, amount decimal.Decimal, category string) (Receipt, error) {
	return s.debit(ctx, actor, amount, KindPurchase, &category)
}

func (s *Service) debit(ctx context.Context, actor Actor, amount decimal.Decimal, kind Kind, category *string) (Receipt, error) {
	if err := validateActor(actor); err != nil {
		return Receipt{}, err
	}
	if err := validateAmount(amount); err != nil {
		return Receipt{}, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Receipt{}, s.unavailable(string(kind), actor.ID, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	w, err := tx.WalletForUpdate(ctx, actor.ID)
	if err != nil {
		return Receipt{}, s.storeErr(string(kind), actor.ID, err)
	}
	if amount.GreaterThan(w.Balance) {
		return Receipt{}, &InsufficientFundsError{Balance: w.Balance}
	}

	now := time.Now().UTC()
	newBalance := w.Balance.Sub(amount)
	if err := s.apply(ctx, tx, w.ID, newBalance, now, Transaction{
		ID:        uuid.NewString(),
		WalletID:  w.ID,
		Kind:      kind,
		Amount:    amount,
		Category:  category,
		CreatedAt: now,
	}); err != nil {
		return Receipt{}, s.unavailable(string(kind), actor.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, s.unavailable(string(kind), actor.ID, err)
	}
	return Receipt{AmountMoved: amount, WalletBalance: newBalance}, nil
}

// Transfer moves funds from the actor's wallet to the recipient's. The debit,
// the credit, the sender's Transfer row and the recipient's Receive row all
// commit as one unit of work; no partial state is ever visible.
//
// Validation order is part of the contract: actor status, then funds, then
// recipient existence, then recipient status.
func (s *Service) Transfer(ctx context.Context, actor Actor, recipientUserID string, amount decimal.Decimal, category string) (Receipt, error) {
	if err := validateActor(actor); err != nil {
		return Receipt{}, err
	}
	if err := validateAmount(amount); err != nil {
		return Receipt{}, err
	}

	// Funds precheck against committed state so callers get the most
	// specific error first. The authoritative check runs again under locks.
	w, err := s.store.WalletByUser(ctx, actor.ID)
	if err != nil {
		return Receipt{}, s.storeErr("transfer", actor.ID, err)
	}
	if amount.GreaterThan(w.Balance) {
		return Receipt{}, &InsufficientFundsError{Balance: w.Balance}
	}

	recipient, err := s.users.ActorByID(ctx, recipientUserID)
	if err != nil {
		if errors.Is(err, ErrRecipientNotFound) {
			return Receipt{}, ErrRecipientNotFound
		}
		return Receipt{}, s.unavailable("transfer", actor.ID, err)
	}
	if !recipient.Active {
		return Receipt{}, ErrRecipientInactive
	}
	if !recipient.Verified {
		return Receipt{}, ErrRecipientUnverified
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Receipt{}, s.unavailable("transfer", actor.ID, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	sender, target, err := tx.WalletsForUpdate(ctx, actor.ID, recipient.ID)
	if err != nil {
		return Receipt{}, s.storeErr("transfer", actor.ID, err)
	}
	if amount.GreaterThan(sender.Balance) {
		return Receipt{}, &InsufficientFundsError{Balance: sender.Balance}
	}

	now := time.Now().UTC()
	senderBalance := sender.Balance.Sub(amount)
	targetStart := target.Balance
	if target.ID == sender.ID {
		// Self-transfer nets to zero but still records both rows.
		targetStart = senderBalance
	}
	targetBalance := targetStart.Add(amount)

	if err := s.apply(ctx, tx, sender.ID, senderBalance, now, Transaction{
		ID:        uuid.NewString(),
		WalletID:  sender.ID,
		Kind:      KindTransfer,
		Amount:    amount,
		Category:  &category,
		CreatedAt: now,
	}); err != nil {
		return Receipt{}, s.unavailable("transfer", actor.ID, err)
	}
	if err := s.apply(ctx, tx, target.ID, targetBalance, now, Transaction{
		ID:        uuid.NewString(),
		WalletID:  target.ID,
		Kind:      KindReceive,
		Amount:    amount,
		CreatedAt: now,
	}); err != nil {
		return Receipt{}, s.unavailable("transfer", actor.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, s.unavailable("transfer", actor.ID, err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransferReceived,
			Destination: recipient.ID,
			Body:        fmt.Sprintf("You received %s %s", s.currency, amount),
		})
	}

	return Receipt{AmountMoved: amount, WalletBalance: senderBalance}, nil
}

// Balance returns the actor's current wallet balance without mutating state.
func (s *Service) Balance(ctx context.Context, actor Actor) (Balance, error) {
	if err := validateActor(actor); err != nil {
		return Balance{}, err
	}
	w, err := s.store.WalletByUser(ctx, actor.ID)
	if err != nil {
		return Balance{}, s.storeErr("balance", actor.ID, err)
	}
	return Balance{WalletID: w.ID, Amount: w.Balance, Currency: w.Currency, AsOf: time.Now().UTC()}, nil
}

// History lists the actor's committed transactions, optionally narrowed by
// kind, category and date range.
func (s *Service) History(ctx context.Context, actor Actor, filter TransactionFilter) ([]Transaction, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	w, err := s.store.WalletByUser(ctx, actor.ID)
	if err != nil {
		return nil, s.storeErr("history", actor.ID, err)
	}
	filter.WalletID = w.ID
	entries, err := s.store.Transactions(ctx, filter)
	if err != nil {
		return nil, s.unavailable("history", actor.ID, err)
	}
	return entries, nil
}

// apply writes the new balance and appends one ledger entry within the
// current unit of work.
func (s *Service) apply(ctx context.Context, tx Tx, walletID string, balance decimal.Decimal, at time.Time, entry Transaction) error {
	if err := tx.UpdateBalance(ctx, walletID, balance, at); err != nil {
		return err
	}
	return tx.InsertTransaction(ctx, entry)
}

// storeErr passes wallet lookup failures through and collapses everything
// else into ErrLedgerUnavailable.
func (s *Service) storeErr(op, userID string, err error) error {
	switch {
	case errors.Is(err, ErrWalletNotFound),
		errors.Is(err, ErrRecipientNotFound):
		return err
	default:
		return s.unavailable(op, userID, err)
	}
}

func (s *Service) unavailable(op, userID string, err error) error {
	if s.logger != nil {
		s.logger.Error("ledger operation failed", "op", op, "user_id", userID, "error", err)
	}
	return ErrLedgerUnavailable
}

func validateActor(actor Actor) error {
	if !actor.Active {
		return ErrActorInactive
	}
	if !actor.Verified {
		return ErrActorUnverified
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	// Amounts are minor-unit safe: at most two decimal places.
	if !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}
