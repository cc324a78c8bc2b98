package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type SubscribeOutcome int

const (
	SubscriptionCreated SubscribeOutcome = iota + 1
	SubscriptionReactivated
)

type SubscribeResult struct {
	Subscriber models.Subscriber
	Outcome    SubscribeOutcome
}

type SubscriberService struct {
	store    *database.Store
	notifier Notifier
	Now      func() time.Time
}

func NewSubscriberService(store *database.Store, notifier Notifier) *SubscriberService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SubscriberService{store: store, notifier: notifier, Now: time.Now}
}

func (s *SubscriberService) normalize(req SubscribeRequest) (string, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return "", err
	}
	if err := checkEmailShape(req.Email); err != nil {
		return "", err
	}
	return req.Email, nil
}

// Subscribe creates a subscriber, reactivates an inactive one, or reports a
// conflict for an active one. Lookup and write share one transaction.
func (s *SubscriberService) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResult, error) {
	email, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	var result SubscribeResult
	err = s.store.WithTransaction(ctx, func(tx *database.Store) error {
		existing, err := findSubscriber(ctx, tx, email)
		if err != nil {
			return err
		}
		now := s.Now().UTC()

		if existing == nil {
			sub := models.Subscriber{Email: email, IsActive: true, SubscribedAt: now}
			if err := tx.Create(ctx, &sub); err != nil {
				return err
			}
			result = SubscribeResult{Subscriber: sub, Outcome: SubscriptionCreated}
			return nil
		}

		if existing.IsActive {
			return &SubscriptionConflict{SubscriberID: existing.ID}
		}

		existing.IsActive = true
		existing.UnsubscribedAt = nil
		existing.SubscribedAt = now
		if err := tx.Save(ctx, existing); err != nil {
			return err
		}
		result = SubscribeResult{Subscriber: *existing, Outcome: SubscriptionReactivated}
		return nil
	})

	if err != nil {
		var conflict *SubscriptionConflict
		switch {
		case errors.As(err, &conflict):
			metrics.RecordSubscription("duplicate")
			return nil, conflict
		case database.Classify(err) == database.KindConflict:
			// lost an insert race with a concurrent request
			metrics.RecordSubscription("duplicate")
			return nil, s.raceConflict(ctx, email)
		}
		metrics.RecordSubscription("error")
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	event := models.EventSubscriberCreated
	outcome := "created"
	if result.Outcome == SubscriptionReactivated {
		event = models.EventSubscriberReactivated
		outcome = "reactivated"
	}
	metrics.RecordSubscription(outcome)
	utils.InfoLogger.Printf("Subscriber %d %s", result.Subscriber.ID, outcome)
	notify(ctx, s.notifier, models.NewSubscriberEvent(event, result.Subscriber))
	return &result, nil
}

// Unsubscribe deactivates an address. Unsubscribing an inactive address is a no-op.
func (s *SubscriberService) Unsubscribe(ctx context.Context, req SubscribeRequest) (*models.Subscriber, error) {
	email, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	var sub *models.Subscriber
	changed := false
	err = s.store.WithTransaction(ctx, func(tx *database.Store) error {
		existing, err := findSubscriber(ctx, tx, email)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrSubscriberNotFound
		}
		sub = existing
		if !existing.IsActive {
			return nil
		}
		now := s.Now().UTC()
		existing.IsActive = false
		existing.UnsubscribedAt = &now
		changed = true
		return tx.Save(ctx, existing)
	})
	if err != nil {
		if errors.Is(err, ErrSubscriberNotFound) {
			return nil, err
		}
		metrics.RecordSubscription("error")
		return nil, fmt.Errorf("unsubscribe: %w", err)
	}

	if changed {
		metrics.RecordSubscription("unsubscribed")
		utils.InfoLogger.Printf("Subscriber %d unsubscribed", sub.ID)
		notify(ctx, s.notifier, models.NewSubscriberEvent(models.EventSubscriberUnsubscribed, *sub))
	}
	return sub, nil
}

// List returns subscribers, optionally filtered by active flag.
func (s *SubscriberService) List(ctx context.Context, active *bool) ([]models.Subscriber, error) {
	query := "SELECT * FROM subscribers"
	var args []interface{}
	if active != nil {
		query += " WHERE is_active = ?"
		args = append(args, *active)
	}
	query += " ORDER BY subscribed_at DESC, id DESC"

	subs := []models.Subscriber{}
	if err := s.store.Query(ctx, &subs, query, args...); err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}

// raceConflict reads back the row a concurrent request committed so the
// conflict carries its ID like the sequential path does.
func (s *SubscriberService) raceConflict(ctx context.Context, email string) *SubscriptionConflict {
	conflict := &SubscriptionConflict{}
	existing, err := findSubscriber(ctx, s.store, email)
	if err != nil {
		utils.ErrorLogger.Warnf("Reading back subscriber after conflict: %v", err)
		return conflict
	}
	if existing != nil {
		conflict.SubscriberID = existing.ID
	}
	return conflict
}

func findSubscriber(ctx context.Context, tx *database.Store, email string) (*models.Subscriber, error) {
	var rows []models.Subscriber
	if err := tx.Query(ctx, &rows, "SELECT * FROM subscribers WHERE email = ? LIMIT 1", email); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
