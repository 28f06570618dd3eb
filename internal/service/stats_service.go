package service

import (
	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/model/dto"
	"github.com/obunabot/obuna_go_server/internal/repository"
)

type StatsService struct {
	userRepo *repository.UserRepository
	payRepo  *repository.PaymentRepository
	subRepo  *repository.SubscriptionRepository
	destRepo *repository.DestinationRepository
}

func NewStatsService(
	userRepo *repository.UserRepository,
	payRepo *repository.PaymentRepository,
	subRepo *repository.SubscriptionRepository,
	destRepo *repository.DestinationRepository,
) *StatsService {
	return &StatsService{
		userRepo: userRepo,
		payRepo:  payRepo,
		subRepo:  subRepo,
		destRepo: destRepo,
	}
}

// Overview collects the counters shown in the admin menu and dashboard.
func (s *StatsService) Overview() (*dto.StatsResponse, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	pending, err := s.payRepo.CountByStatus(model.PaymentStatusPending)
	if err != nil {
		return nil, err
	}
	approved, err := s.payRepo.CountByStatus(model.PaymentStatusApproved)
	if err != nil {
		return nil, err
	}
	rejected, err := s.payRepo.CountByStatus(model.PaymentStatusRejected)
	if err != nil {
		return nil, err
	}
	active, err := s.subRepo.CountActive()
	if err != nil {
		return nil, err
	}
	dests, err := s.destRepo.CountActive()
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		Users:            users,
		PaymentsPending:  pending,
		PaymentsApproved: approved,
		PaymentsRejected: rejected,
		ActiveGrants:     active,
		Destinations:     dests,
	}, nil
}
