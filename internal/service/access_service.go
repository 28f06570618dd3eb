package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/repository"
)

// AccessDecision is the gate's answer to a join request.
type AccessDecision int

const (
	AccessApproved AccessDecision = iota
	AccessDeniedUnregistered
	AccessDeniedNoGrant
)

// AccessService is the synchronous gate for inbound join requests. It is a
// pure read against the ledger; side effects (approve/decline calls and
// notifications) belong to the caller.
type AccessService struct {
	userRepo *repository.UserRepository
	subRepo  *repository.SubscriptionRepository
}

func NewAccessService(userRepo *repository.UserRepository, subRepo *repository.SubscriptionRepository) *AccessService {
	return &AccessService{
		userRepo: userRepo,
		subRepo:  subRepo,
	}
}

// Check decides whether the requesting Telegram identity may join a
// protected destination.
func (s *AccessService) Check(telegramID int64) (AccessDecision, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AccessDeniedUnregistered, nil
		}
		return AccessDeniedNoGrant, err
	}

	sub, err := s.subRepo.ActiveByUserID(user.ID)
	if err != nil {
		return AccessDeniedNoGrant, err
	}
	if sub == nil {
		return AccessDeniedNoGrant, nil
	}
	return AccessApproved, nil
}
