package notification

import (
	"context"
	"errors"
	"fmt"

	providerRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/provider"
	residentRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/resident"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

const (
	TargetResident = "resident"
	TargetProvider = "provider"
)

var ErrNoPushTarget = errors.New("recipient has no FCM token")

// NotificationService delivers fire-and-forget pushes. Callers treat any
// error as a logged failure, never as a reason to roll back.
type NotificationService interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Pusher is the part of *messaging.Client the service uses.
type Pusher interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	providers providerRepo.ProviderRepository
	residents residentRepo.ResidentRepository
	pusher    Pusher
	logger    *zap.Logger
}

// NewDefaultNotificationService wires the token lookups and the push client.
// A nil pusher logs notifications instead of sending them.
func NewDefaultNotificationService(
	providers providerRepo.ProviderRepository,
	residents residentRepo.ResidentRepository,
	pusher Pusher,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if providers == nil || residents == nil {
		return nil, fmt.Errorf("notification service initialization error: provider or resident repository is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{
		providers: providers,
		residents: residents,
		pusher:    pusher,
		logger:    logger,
	}, nil
}

func (s *DefaultNotificationService) Notify(ctx context.Context, n models.Notification) error {
	token, err := s.lookupToken(ctx, n)
	if err != nil {
		return err
	}

	data := make(map[string]string, len(n.Data)+3)
	for k, v := range n.Data {
		data[k] = v
	}
	data["type"] = n.Type
	data["role"] = n.Target
	data["notificationId"] = n.ID

	if s.pusher == nil {
		s.logger.Info("Push notification (log only)",
			zap.String("target", n.Target),
			zap.String("targetId", n.TargetID),
			zap.String("type", n.Type),
			zap.String("title", n.Title),
		)
		return nil
	}

	msg := buildMessage(token, n, data)
	if _, err := s.pusher.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message to %s %s: %w", n.Target, n.TargetID, err)
	}
	return nil
}

func (s *DefaultNotificationService) lookupToken(ctx context.Context, n models.Notification) (string, error) {
	switch n.Target {
	case TargetProvider:
		p, err := s.providers.GetByID(ctx, n.TargetID)
		if err != nil {
			return "", fmt.Errorf("could not find provider %s: %w", n.TargetID, err)
		}
		if p.FCMToken == "" && s.pusher != nil {
			return "", fmt.Errorf("provider %s: %w", n.TargetID, ErrNoPushTarget)
		}
		return p.FCMToken, nil
	case TargetResident:
		r, err := s.residents.GetByID(ctx, n.TargetID)
		if err != nil {
			return "", fmt.Errorf("could not find resident %s: %w", n.TargetID, err)
		}
		if r.FCMToken == "" && s.pusher != nil {
			return "", fmt.Errorf("resident %s: %w", n.TargetID, ErrNoPushTarget)
		}
		return r.FCMToken, nil
	default:
		return "", fmt.Errorf("unknown notification target %q", n.Target)
	}
}

// buildMessage sends provider job offers at high priority so they surface
// on a locked device.
func buildMessage(token string, n models.Notification, data map[string]string) *messaging.Message {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
	}
	if n.Target != TargetProvider {
		return msg
	}
	msg.Android = &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			ChannelID: "high_priority",
			Sound:     "default",
		},
	}
	msg.APNS = &messaging.APNSConfig{
		Headers: map[string]string{
			"apns-priority":  "10",
			"apns-push-type": "alert",
		},
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{Sound: "default"},
		},
	}
	return msg
}
