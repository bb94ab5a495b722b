package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"go.uber.org/zap"
)

type CreateParticipantInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

type ParticipantService interface {
	CreateParticipant(ctx context.Context, input CreateParticipantInput) (*models.Participant, error)
	GetParticipant(ctx context.Context, key string) (*models.Participant, error)
	ListParticipants(ctx context.Context) []*models.Participant
}

type participantService struct {
	c Collaborators
}

func NewParticipantService(c Collaborators) ParticipantService {
	return &participantService{c: c.withDefaults()}
}

func (s *participantService) CreateParticipant(ctx context.Context, input CreateParticipantInput) (*models.Participant, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	p := &models.Participant{
		Key:       s.c.Keys.NewKey(),
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		CreatedAt: s.c.Clock(),
	}
	if err := s.c.Store.AddParticipant(p); err != nil {
		if errors.Is(err, repositories.ErrEmailConflict) {
			return nil, ErrParticipantEmailConflict
		}
		return nil, err
	}
	copied := *p
	if err := s.c.Persister.SaveParticipant(ctx, &copied); err != nil {
		s.c.Logger.Error("persist participant", zap.String("participant_key", p.Key), zap.Error(err))
	}
	s.c.Logger.Info("participant created", zap.String("participant_key", p.Key))
	return &copied, nil
}

func (s *participantService) GetParticipant(ctx context.Context, key string) (*models.Participant, error) {
	p, err := s.c.Store.Participant(key)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if p.Ghost {
		return nil, ErrParticipantNotFound
	}
	unlock := s.c.Store.LockParticipants(p.Key)
	defer unlock()
	copied := *p
	return &copied, nil
}

func (s *participantService) ListParticipants(ctx context.Context) []*models.Participant {
	participants := s.c.Store.ListParticipants()
	out := make([]*models.Participant, 0, len(participants))
	for _, p := range participants {
		unlock := s.c.Store.LockParticipants(p.Key)
		copied := *p
		unlock()
		out = append(out, &copied)
	}
	return out
}
