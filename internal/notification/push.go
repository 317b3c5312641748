package notification

import (
	"context"
	"sync"
	"time"

	"github.com/intranet-lab/backend/config"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/api/expo"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

const defaultPushBatchSize = 100

type PushResult struct {
	Success int
	Total   int
}

// PushDispatcher delivers one notification to every active device of a user
// through the push provider. Success means the provider acknowledged receipt
// of the message, not that the device displayed it.
type PushDispatcher struct {
	deviceRepo repository.DeviceRepository
	provider   expo.IEndpoint

	batchSize    int
	timeout      time.Duration
	checkReceipt bool
}

func NewPushDispatcher(
	deviceRepo repository.DeviceRepository,
	provider expo.IEndpoint,
	cfg config.PushConfigs,
) *PushDispatcher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultPushBatchSize
	}

	return &PushDispatcher{
		deviceRepo:   deviceRepo,
		provider:     provider,
		batchSize:    batchSize,
		timeout:      cfg.Timeout,
		checkReceipt: cfg.CheckReceipt,
	}
}

// providerContext bounds one provider call. A hung call fails its own batch
// only; other batches and the live channel keep going.
func (d *PushDispatcher) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, d.timeout)
}

// Dispatch sends to all active devices of the user. A user with no device
// yields 0/0, which is not an error. Malformed tokens count as immediate
// failures and never reach the provider. A provider failure for one batch
// does not abort the other batches.
func (d *PushDispatcher) Dispatch(
	ctx context.Context, userID, title, body string, data map[string]string,
) PushResult {
	devices, err := d.deviceRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get devices of %s: %v", userID, err)
		return PushResult{}
	}

	if len(devices) == 0 {
		return PushResult{Success: 0, Total: 0}
	}

	tokens := []string{}
	for _, device := range devices {
		if !expo.IsPushToken(device.Token) {
			xcontext.Logger(ctx).Warnf("Malformed push token of user %s on %s", userID, device.Platform)
			continue
		}

		tokens = append(tokens, device.Token)
	}

	var mutex sync.Mutex
	success := 0
	ticketIDs := []string{}

	eg, egCtx := errgroup.WithContext(ctx)
	for begin := 0; begin < len(tokens); begin += d.batchSize {
		end := begin + d.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}

		batch := tokens[begin:end]
		eg.Go(func() error {
			sendCtx, cancel := d.providerContext(egCtx)
			defer cancel()

			tickets, err := d.provider.Send(sendCtx, []expo.PushMessage{{
				To:    batch,
				Title: title,
				Body:  body,
				Data:  data,
				Sound: "default",
			}})
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot submit push batch: %v", err)
				return nil
			}

			mutex.Lock()
			defer mutex.Unlock()
			for i, ticket := range tickets {
				if ticket.Status == expo.TicketStatusOK {
					success++
					ticketIDs = append(ticketIDs, ticket.ID)
					continue
				}

				xcontext.Logger(ctx).Warnf("Push rejected for user %s: %s (%s)",
					userID, ticket.Message, ticket.Details.Error)

				if i < len(batch) && ticket.Details.Error == expo.ErrDeviceNotRegistered {
					if err := d.deviceRepo.DeactivateByToken(ctx, batch[i]); err != nil {
						xcontext.Logger(ctx).Warnf("Cannot deactivate token: %v", err)
					}
				}
			}

			return nil
		})
	}

	eg.Wait()

	if d.checkReceipt && len(ticketIDs) > 0 {
		d.checkReceipts(ctx, ticketIDs)
	}

	return PushResult{Success: success, Total: len(devices)}
}

// checkReceipts is a best-effort secondary check. A missing or failed receipt
// is logged, never surfaced as a dispatch failure.
func (d *PushDispatcher) checkReceipts(ctx context.Context, ticketIDs []string) {
	receiptCtx, cancel := d.providerContext(ctx)
	defer cancel()

	receipts, err := d.provider.GetReceipts(receiptCtx, ticketIDs)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get push receipts: %v", err)
		return
	}

	for id, receipt := range receipts {
		if receipt.Status != expo.TicketStatusOK {
			xcontext.Logger(ctx).Warnf("Push receipt %s reported %s (%s)",
				id, receipt.Status, receipt.Details.Error)
		}
	}
}
