package testutil

import (
	"context"

	"github.com/intranet-lab/backend/pkg/api/expo"
)

// MockPushProvider records every submitted message and answers with the
// configured functions, defaulting to one ok ticket per recipient.
type MockPushProvider struct {
	SendFunc        func(ctx context.Context, messages []expo.PushMessage) ([]expo.PushTicket, error)
	GetReceiptsFunc func(ctx context.Context, ticketIDs []string) (map[string]expo.PushReceipt, error)

	SentMessages []expo.PushMessage
}

func (m *MockPushProvider) Send(
	ctx context.Context, messages []expo.PushMessage,
) ([]expo.PushTicket, error) {
	m.SentMessages = append(m.SentMessages, messages...)

	if m.SendFunc != nil {
		return m.SendFunc(ctx, messages)
	}

	tickets := []expo.PushTicket{}
	for _, message := range messages {
		for range message.To {
			tickets = append(tickets, expo.PushTicket{Status: expo.TicketStatusOK})
		}
	}

	return tickets, nil
}

func (m *MockPushProvider) GetReceipts(
	ctx context.Context, ticketIDs []string,
) (map[string]expo.PushReceipt, error) {
	if m.GetReceiptsFunc != nil {
		return m.GetReceiptsFunc(ctx, ticketIDs)
	}

	return map[string]expo.PushReceipt{}, nil
}
