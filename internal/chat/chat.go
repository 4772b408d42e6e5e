package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-watch-orders/internal/orders"
	"github.com/google/uuid"
)

// AnyPeer lets a customer address whoever is on the admin side.
const AnyPeer = "any"

type Log interface {
	Messages(ctx context.Context) []orders.ChatMessage
	AppendMessage(ctx context.Context, m orders.ChatMessage) error
}

type Service struct {
	Log Log
	Now func() time.Time
}

func (s *Service) Send(ctx context.Context, senderID, receiverID, text string) (orders.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return orders.ChatMessage{}, fmt.Errorf("%w: empty message", orders.ErrInvalidInput)
	}
	if senderID == "" || receiverID == "" {
		return orders.ChatMessage{}, fmt.Errorf("%w: sender and receiver are required", orders.ErrInvalidInput)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	m := orders.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  now(),
	}
	if err := s.Log.AppendMessage(ctx, m); err != nil {
		return orders.ChatMessage{}, err
	}
	return m, nil
}

// Conversation returns what viewer sees when talking to peer.
func (s *Service) Conversation(ctx context.Context, viewer, peer string) []orders.ChatMessage {
	return Visible(s.Log.Messages(ctx), viewer, peer)
}

// Visible filters the shared log down to one conversation. Messages a
// viewer sent to AnyPeer show up in every conversation of that viewer, and
// the admin sees everything addressed to it.
func Visible(all []orders.ChatMessage, viewer, peer string) []orders.ChatMessage {
	var out []orders.ChatMessage
	for _, m := range all {
		mine := m.SenderID == viewer && (m.ReceiverID == peer || peer == AnyPeer)
		theirs := m.ReceiverID == viewer && (m.SenderID == peer || viewer == orders.AdminID)
		if mine || theirs {
			out = append(out, m)
		}
	}
	return out
}

// Peers lists everyone who wrote to viewer, in first-contact order.
func Peers(all []orders.ChatMessage, viewer string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range all {
		if m.ReceiverID != viewer && !(viewer == orders.AdminID && m.ReceiverID == AnyPeer) {
			continue
		}
		if m.SenderID == viewer || seen[m.SenderID] {
			continue
		}
		seen[m.SenderID] = true
		out = append(out, m.SenderID)
	}
	return out
}
