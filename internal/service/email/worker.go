package email

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/adapter/queue"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/internal/service/checkout"
)

// Worker listens for completed sales and mails the rendered receipt to the
// customer, when one is attached and has an email on file. Delivery is
// best-effort: a failure is logged and never surfaces to the sale.
type Worker struct {
	mq        queue.MessageQueue
	checkouts ports.CheckoutService
	customers ports.CustomerRepository
	receipts  ports.ReceiptService
	sender    ports.EmailSender
	log       *zap.Logger
}

func NewWorker(mq queue.MessageQueue, checkouts ports.CheckoutService, customers ports.CustomerRepository, receipts ports.ReceiptService, sender ports.EmailSender, log *zap.Logger) *Worker {
	return &Worker{
		mq:        mq,
		checkouts: checkouts,
		customers: customers,
		receipts:  receipts,
		sender:    sender,
		log:       log,
	}
}

// Start subscribes to the sale feed. Handlers run on the queue's delivery
// goroutine.
func (w *Worker) Start() error {
	return w.mq.Subscribe(checkout.SubjectSaleCompleted, func(data []byte) error {
		if err := w.handle(context.Background(), data); err != nil {
			w.log.Warn("Receipt email not delivered", zap.Error(err))
		}
		return nil
	})
}

func (w *Worker) handle(ctx context.Context, data []byte) error {
	var evt checkout.SaleCompletedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("decode sale event: %w", err)
	}
	if evt.CustomerRef == "" {
		return nil
	}

	customer, err := w.customers.FindByID(ctx, evt.CustomerRef)
	if err != nil {
		return fmt.Errorf("find customer %s: %w", evt.CustomerRef, err)
	}
	if customer == nil || customer.Email == "" {
		return nil
	}

	tx, err := w.checkouts.GetTransaction(ctx, evt.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", evt.TransactionID, err)
	}
	if tx == nil {
		return fmt.Errorf("transaction %s not found", evt.TransactionID)
	}

	body := w.receipts.Render(w.receipts.Format(tx))
	subject := fmt.Sprintf("Seu cupom fiscal %s", tx.ID)
	if err := w.sender.Send(ctx, customer.Email, subject, body); err != nil {
		return fmt.Errorf("send receipt to %s: %w", customer.Email, err)
	}

	w.log.Info("Receipt emailed",
		zap.String("transaction_id", tx.ID),
		zap.String("customer_id", customer.ID),
	)
	return nil
}
