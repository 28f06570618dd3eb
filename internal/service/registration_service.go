package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/repository"
)

type RegistrationService struct {
	userRepo *repository.UserRepository
}

func NewRegistrationService(userRepo *repository.UserRepository) *RegistrationService {
	return &RegistrationService{userRepo: userRepo}
}

// GetOrCreateUser creates the user on first submission and refreshes
// name/phone/handle on every resubmission. Users are never deleted.
func (s *RegistrationService) GetOrCreateUser(telegramID int64, firstName, lastName, phone, username string) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		user = &model.User{
			TelegramID: telegramID,
			FirstName:  firstName,
			LastName:   lastName,
			Phone:      phone,
			Username:   username,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	err = s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"phone":      phone,
		"username":   username,
	})
	if err != nil {
		return nil, err
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Phone = phone
	user.Username = username
	return user, nil
}
