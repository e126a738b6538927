package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/clock"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/database"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/payment"
)

var errOverflow = errors.New("amount overflows uint64")

type ledgerService struct {
	// mu sequences state-changing operations: one at a time, each seeing
	// the state left by the previous one.
	mu sync.Mutex

	store     database.Store
	clock     clock.Clock
	rail      payment.Rail
	publisher Publisher
	recorder  Recorder
	custody   entity.CustodyMode
	now       func() time.Time
}

type Option func(*ledgerService)

func WithPublisher(p Publisher) Option {
	return func(s *ledgerService) { s.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(s *ledgerService) { s.recorder = r }
}

// WithCustody selects who receives purchase payments and funds refunds.
// Defaults to the event organizer.
func WithCustody(mode entity.CustodyMode) Option {
	return func(s *ledgerService) { s.custody = mode }
}

func WithNow(now func() time.Time) Option {
	return func(s *ledgerService) { s.now = now }
}

// NewLedgerService creates the ledger. The platform configuration must
// already be initialized in store.
func NewLedgerService(store database.Store, clk clock.Clock, rail payment.Rail, opts ...Option) Ledger {
	s := &ledgerService{
		store:   store,
		clock:   clk,
		rail:    rail,
		custody: entity.CustodyOrganizer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// submit applies a single operation at the current height.
func (s *ledgerService) submit(ctx context.Context, op Operation) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	height, err := s.clock.Height(ctx)
	if err != nil {
		return OperationResult{Type: op.Type}, fmt.Errorf("read height: %w", err)
	}
	return s.execute(ctx, height, "", op)
}

func (s *ledgerService) ApplyBatch(ctx context.Context, ops []Operation) (*BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	height, err := s.clock.Height(ctx)
	if err != nil {
		return nil, fmt.Errorf("read height: %w", err)
	}

	batch := &BatchResult{
		BatchID: uuid.NewString(),
		Height:  height,
		Results: make([]OperationResult, 0, len(ops)),
	}
	for i, op := range ops {
		res, _ := s.execute(ctx, height, batch.BatchID, op)
		res.Index = i
		batch.Results = append(batch.Results, res)
	}

	logrus.WithFields(logrus.Fields{
		"batch_id": batch.BatchID,
		"height":   height,
		"size":     len(ops),
	}).Info("Batch applied")
	return batch, nil
}

// execute runs op and then logs, journals and publishes its outcome.
// Callers hold s.mu.
func (s *ledgerService) execute(ctx context.Context, height uint64, batchID string, op Operation) (OperationResult, error) {
	var (
		res    = OperationResult{Type: op.Type}
		notice *entity.LedgerEvent
		err    error
	)

	if op.Caller == "" {
		err = fmt.Errorf("%w: missing caller identity", entity.ErrNotAuthorized)
	} else {
		switch op.Type {
		case OpCreateEvent:
			res.EventID, notice, err = s.createEvent(ctx, height, op.Caller, op.Event)
		case OpPurchaseTicket:
			res.TicketID, notice, err = s.purchaseTicket(ctx, height, op.Caller, op.EventID)
			res.EventID = op.EventID
		case OpValidateTicket:
			notice, err = s.validateTicket(ctx, op.Caller, op.TicketID)
			res.TicketID = op.TicketID
		case OpRefundTicket:
			notice, err = s.refundTicket(ctx, height, op.Caller, op.TicketID)
			res.TicketID = op.TicketID
		case OpUpdatePlatformFee:
			notice, err = s.updatePlatformFee(ctx, op.Caller, op.Value)
		case OpUpdateMinTicketPrice:
			notice, err = s.updateMinTicketPrice(ctx, op.Caller, op.Value)
		default:
			err = fmt.Errorf("%w: unknown operation %q", entity.ErrInvalidOperation, op.Type)
		}
	}

	code, _ := entity.CodeOf(err)
	res.Success = err == nil
	res.Code = code
	if err != nil {
		res.Error = err.Error()
	}

	fields := logrus.Fields{
		"op":     op.Type,
		"caller": op.Caller,
		"height": height,
	}
	if batchID != "" {
		fields["batch_id"] = batchID
	}
	if res.EventID != 0 {
		fields["event_id"] = res.EventID
	}
	if res.TicketID != 0 {
		fields["ticket_id"] = res.TicketID
	}
	if err != nil {
		fields["code"] = code
		logrus.WithFields(fields).Warnf("Operation rejected: %v", err)
	} else {
		logrus.WithFields(fields).Info("Operation applied")
	}

	s.record(ctx, height, batchID, op, res)
	if err == nil && notice != nil {
		notice.Height = height
		notice.Caller = op.Caller
		s.publish(ctx, notice)
	}
	return res, err
}

func (s *ledgerService) record(ctx context.Context, height uint64, batchID string, op Operation, res OperationResult) {
	if s.recorder == nil {
		return
	}

	args := op
	args.Caller = ""
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte("{}")
	}

	rec := entity.OperationRecord{
		BatchID:   batchID,
		Height:    height,
		Caller:    op.Caller,
		Operation: string(op.Type),
		Arguments: string(raw),
		Code:      res.Code,
		Error:     res.Error,
		At:        s.now().UTC(),
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		logrus.WithField("op", op.Type).Errorf("Failed to journal operation: %v", err)
	}
}

func (s *ledgerService) publish(ctx context.Context, notice *entity.LedgerEvent) {
	if s.publisher == nil {
		return
	}

	notice.ID = uuid.NewString()
	notice.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, *notice); err != nil {
		logrus.WithFields(logrus.Fields{
			"event_type": notice.Type,
			"event_id":   notice.EventID,
			"ticket_id":  notice.TicketID,
		}).Warnf("Failed to publish ledger event: %v", err)
	}
}

// counterparty returns the identity that receives purchase payments and
// funds refunds for event.
func (s *ledgerService) counterparty(cfg *entity.PlatformConfig, event *entity.Event) string {
	if s.custody == entity.CustodyPlatform {
		return cfg.Owner
	}
	return event.Organizer
}

// transfer moves amount on the payment rail. Zero amounts and self
// transfers move nothing and always succeed.
func (s *ledgerService) transfer(ctx context.Context, from, to string, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	if err := s.rail.Transfer(ctx, from, to, amount); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}
	return nil
}

// compensate reverses a completed transfer whose operation failed to
// commit.
func (s *ledgerService) compensate(ctx context.Context, from, to string, amount uint64, cause error) {
	fields := logrus.Fields{"from": from, "to": to, "amount": amount}
	if err := s.transfer(context.WithoutCancel(ctx), from, to, amount); err != nil {
		logrus.WithFields(fields).Errorf("Compensating transfer failed after %v: %v", cause, err)
		return
	}
	logrus.WithFields(fields).Warnf("Transfer reversed after failed commit: %v", cause)
}

func addUint64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errOverflow
	}
	return sum, nil
}

func (s *ledgerService) Quiesce(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *ledgerService) Height(ctx context.Context) (uint64, error) {
	return s.clock.Height(ctx)
}
