package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/metrics"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RelationshipLimits bounds how many requests and friends a user may have.
type RelationshipLimits struct {
	MaxPendingRequests int64
	MaxFriends         int64
}

type RelationshipService struct {
	db               *gorm.DB
	relRepo          repositories.RelationshipRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	limits           RelationshipLimits
	log              logrus.FieldLogger
}

func NewRelationshipService(
	db *gorm.DB,
	relRepo repositories.RelationshipRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	limits RelationshipLimits,
	log logrus.FieldLogger,
) *RelationshipService {
	return &RelationshipService{
		db:               db,
		relRepo:          relRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		limits:           limits,
		log:              log,
	}
}

// SendRequest creates a pending request from requesterID to receiverID and
// returns its id. If receiverID already has a pending request to
// requesterID, that request is accepted instead and its id is returned.
func (s *RelationshipService) SendRequest(ctx context.Context, requesterID, receiverID uint) (id uint, err error) {
	defer func() { metrics.RecordRelationshipTransition("send", outcomeOf(err)) }()

	if requesterID == receiverID {
		return 0, apperrors.InvalidOperation("cannot send a friend request to yourself")
	}

	autoAccepted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rels := s.relRepo.WithTx(tx)

		receiver, err := s.userRepo.WithTx(tx).GetUserByID(ctx, receiverID)
		if err != nil {
			return fmt.Errorf("looking up receiver: %w", err)
		}
		if receiver == nil {
			return apperrors.NotFound("User")
		}

		existing, err := rels.FindBetween(ctx, requesterID, receiverID, models.RelationshipPending, models.RelationshipAccepted)
		if err != nil {
			return fmt.Errorf("looking up relationship: %w", err)
		}
		if existing != nil {
			if existing.Status == models.RelationshipAccepted {
				return apperrors.Conflict("Relationship", "you are already friends")
			}
			if existing.RequesterID == requesterID {
				return apperrors.Conflict("Relationship", "a pending friend request already exists")
			}

			// The receiver asked first: accept their request.
			if err := s.checkFriendCeiling(ctx, rels, requesterID, receiverID); err != nil {
				return err
			}
			ok, err := rels.Respond(ctx, existing.ID, models.RelationshipAccepted, time.Now())
			if err != nil {
				return fmt.Errorf("accepting request: %w", err)
			}
			if !ok {
				return apperrors.Conflict("Relationship", "friend request was already answered")
			}
			if err := s.notify(ctx, tx, models.NotificationFriendAccepted, requesterID, existing.RequesterID, existing.ID,
				"accepted your friend request"); err != nil {
				return err
			}
			id = existing.ID
			autoAccepted = true
			return nil
		}

		pending, err := rels.CountSentPending(ctx, requesterID)
		if err != nil {
			return fmt.Errorf("counting pending requests: %w", err)
		}
		if pending >= s.limits.MaxPendingRequests {
			return apperrors.InvalidOperation("too many pending friend requests")
		}
		if err := s.checkFriendCeiling(ctx, rels, requesterID, receiverID); err != nil {
			return err
		}

		req := &models.RelationshipRequest{
			RequesterID: requesterID,
			ReceiverID:  receiverID,
			Status:      models.RelationshipPending,
		}
		if err := rels.CreateRequest(ctx, req); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("Relationship", "a pending friend request already exists")
			}
			return fmt.Errorf("creating request: %w", err)
		}
		if err := s.notify(ctx, tx, models.NotificationFriendRequest, requesterID, receiverID, req.ID,
			"sent you a friend request"); err != nil {
			return err
		}
		id = req.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":    id,
		"requester_id":  requesterID,
		"receiver_id":   receiverID,
		"auto_accepted": autoAccepted,
	}).Info("friend request sent")
	return id, nil
}

// Accept turns a pending request addressed to userID into a friendship.
func (s *RelationshipService) Accept(ctx context.Context, userID, requestID uint) (req *models.RelationshipRequest, err error) {
	defer func() { metrics.RecordRelationshipTransition("accept", outcomeOf(err)) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rels := s.relRepo.WithTx(tx)

		req, err = s.loadForResponse(ctx, rels, userID, requestID)
		if err != nil {
			return err
		}
		if err := s.checkFriendCeiling(ctx, rels, req.RequesterID, req.ReceiverID); err != nil {
			return err
		}
		if err := s.respond(ctx, rels, req, models.RelationshipAccepted); err != nil {
			return err
		}
		return s.notify(ctx, tx, models.NotificationFriendAccepted, userID, req.RequesterID, req.ID,
			"accepted your friend request")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"request_id": req.ID, "user_id": userID}).Info("friend request accepted")
	return req, nil
}

// Reject declines a pending request addressed to userID.
func (s *RelationshipService) Reject(ctx context.Context, userID, requestID uint) (req *models.RelationshipRequest, err error) {
	defer func() { metrics.RecordRelationshipTransition("reject", outcomeOf(err)) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rels := s.relRepo.WithTx(tx)

		req, err = s.loadForResponse(ctx, rels, userID, requestID)
		if err != nil {
			return err
		}
		return s.respond(ctx, rels, req, models.RelationshipRejected)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Cancel withdraws a pending request sent by userID.
func (s *RelationshipService) Cancel(ctx context.Context, userID, requestID uint) (err error) {
	defer func() { metrics.RecordRelationshipTransition("cancel", outcomeOf(err)) }()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rels := s.relRepo.WithTx(tx)

		req, err := rels.GetRequestByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("loading request: %w", err)
		}
		if req == nil {
			return apperrors.NotFound("Friend request")
		}
		if req.RequesterID != userID {
			return apperrors.Forbidden("only the sender can cancel a friend request")
		}
		if req.Status != models.RelationshipPending {
			return apperrors.InvalidOperation("friend request is not pending")
		}

		ok, err := rels.DeleteRequest(ctx, req.ID, models.RelationshipPending)
		if err != nil {
			return fmt.Errorf("deleting request: %w", err)
		}
		if !ok {
			return apperrors.Conflict("Relationship", "friend request was already answered")
		}
		return nil
	})
}

// Remove ends the friendship between userID and otherID, whichever of them
// sent the original request.
func (s *RelationshipService) Remove(ctx context.Context, userID, otherID uint) (err error) {
	defer func() { metrics.RecordRelationshipTransition("remove", outcomeOf(err)) }()

	if userID == otherID {
		return apperrors.InvalidOperation("cannot unfriend yourself")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rels := s.relRepo.WithTx(tx)

		friendship, err := rels.FindBetween(ctx, userID, otherID, models.RelationshipAccepted)
		if err != nil {
			return fmt.Errorf("looking up friendship: %w", err)
		}
		if friendship == nil {
			return apperrors.NotFound("Friendship")
		}

		ok, err := rels.DeleteRequest(ctx, friendship.ID, models.RelationshipAccepted)
		if err != nil {
			return fmt.Errorf("deleting friendship: %w", err)
		}
		if !ok {
			return apperrors.NotFound("Friendship")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "other_id": otherID}).Info("friendship removed")
	return nil
}

func (s *RelationshipService) ListReceived(ctx context.Context, userID uint, p query.Params) (query.Page[models.RelationshipView], error) {
	views, total, err := s.relRepo.ListReceived(ctx, userID, p)
	if err != nil {
		return query.Page[models.RelationshipView]{}, fmt.Errorf("listing received requests: %w", err)
	}
	return query.NewPage(views, p, total), nil
}

func (s *RelationshipService) ListSent(ctx context.Context, userID uint, p query.Params) (query.Page[models.RelationshipView], error) {
	views, total, err := s.relRepo.ListSent(ctx, userID, p)
	if err != nil {
		return query.Page[models.RelationshipView]{}, fmt.Errorf("listing sent requests: %w", err)
	}
	return query.NewPage(views, p, total), nil
}

func (s *RelationshipService) ListFriends(ctx context.Context, userID uint, p query.Params) (query.Page[models.RelationshipView], error) {
	views, total, err := s.relRepo.ListFriends(ctx, userID, p)
	if err != nil {
		return query.Page[models.RelationshipView]{}, fmt.Errorf("listing friends: %w", err)
	}
	return query.NewPage(views, p, total), nil
}

func (s *RelationshipService) loadForResponse(ctx context.Context, rels repositories.RelationshipRepository, userID, requestID uint) (*models.RelationshipRequest, error) {
	req, err := rels.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("loading request: %w", err)
	}
	if req == nil {
		return nil, apperrors.NotFound("Friend request")
	}
	if req.ReceiverID != userID {
		return nil, apperrors.Forbidden("only the receiver can respond to a friend request")
	}
	if req.Status != models.RelationshipPending {
		return nil, apperrors.InvalidOperation("friend request is not pending")
	}
	return req, nil
}

func (s *RelationshipService) respond(ctx context.Context, rels repositories.RelationshipRepository, req *models.RelationshipRequest, status models.RelationshipStatus) error {
	now := time.Now()
	ok, err := rels.Respond(ctx, req.ID, status, now)
	if err != nil {
		return fmt.Errorf("updating request: %w", err)
	}
	if !ok {
		return apperrors.Conflict("Relationship", "friend request was already answered")
	}
	req.Status = status
	req.RespondedAt = &now
	return nil
}

func (s *RelationshipService) checkFriendCeiling(ctx context.Context, rels repositories.RelationshipRepository, userIDs ...uint) error {
	for _, userID := range userIDs {
		count, err := rels.CountFriends(ctx, userID)
		if err != nil {
			return fmt.Errorf("counting friends: %w", err)
		}
		if count >= s.limits.MaxFriends {
			return apperrors.InvalidOperation(fmt.Sprintf("user %d has reached the friend limit", userID))
		}
	}
	return nil
}

func (s *RelationshipService) notify(ctx context.Context, tx *gorm.DB, kind models.NotificationType, actorID, recipientID, requestID uint, message string) error {
	err := s.notificationRepo.WithTx(tx).CreateNotification(ctx, &models.Notification{
		Type:        kind,
		ActorID:     actorID,
		RecipientID: recipientID,
		TargetID:    requestID,
		TargetType:  "relationship_request",
		Message:     message,
	})
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}
