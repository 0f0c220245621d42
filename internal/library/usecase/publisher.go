package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type PublisherInput struct {
	ID           int64
	Name         string `validate:"required,max=255"`
	Address      string `validate:"required"`
	Website      string `validate:"required,url"`
	ContactEmail string `validate:"omitempty,email,max=255"`
	Description  string
}

func (in *PublisherInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Website = strings.TrimSpace(in.Website)
	in.ContactEmail = strings.ToLower(strings.TrimSpace(in.ContactEmail))
	in.Description = strings.TrimSpace(in.Description)
}

func (s *Usecase) ListPublishers(ctx context.Context, in ListInput) (*entity.PageResult[entity.Publisher], error) {
	ctx, span := s.startSpan(ctx, "ListPublishers")
	defer span.End()

	out, err := s.repoDB.ListPublishers(ctx, in.page())
	if err != nil {
		return nil, repoError(ctx, err, "list", "publisher", 0)
	}

	return out, nil
}

func (s *Usecase) GetPublisher(ctx context.Context, id int64) (*entity.Publisher, error) {
	ctx, span := s.startSpan(ctx, "GetPublisher")
	defer span.End()

	pub, err := s.repoDB.GetPublisher(ctx, id)
	if err != nil {
		return nil, repoError(ctx, err, "get", "publisher", id)
	}

	return pub, nil
}

func (s *Usecase) CreatePublisher(ctx context.Context, in PublisherInput) (*entity.Publisher, error) {
	ctx, span := s.startSpan(ctx, "CreatePublisher")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actCreate); err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	pub := entity.Publisher{
		ID:           s.uid.Generate(),
		Name:         in.Name,
		Address:      in.Address,
		Website:      in.Website,
		ContactEmail: in.ContactEmail,
		Description:  in.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repoDB.CreatePublisher(ctx, pub); err != nil {
		return nil, repoError(ctx, err, actCreate, "publisher", pub.ID)
	}

	return &pub, nil
}

func (s *Usecase) UpdatePublisher(ctx context.Context, in PublisherInput) (*entity.Publisher, error) {
	ctx, span := s.startSpan(ctx, "UpdatePublisher")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actUpdate); err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	pub, err := s.repoDB.GetPublisher(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "publisher", in.ID)
	}

	pub.Name = in.Name
	pub.Address = in.Address
	pub.Website = in.Website
	pub.ContactEmail = in.ContactEmail
	pub.Description = in.Description
	pub.UpdatedAt = s.clock.Now()

	if err := s.repoDB.UpdatePublisher(ctx, *pub); err != nil {
		return nil, repoError(ctx, err, actUpdate, "publisher", in.ID)
	}

	return pub, nil
}

func (s *Usecase) DeletePublisher(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "DeletePublisher")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actDelete); err != nil {
		return err
	}

	if err := s.repoDB.DeletePublisher(ctx, id); err != nil {
		return repoError(ctx, err, actDelete, "publisher", id)
	}

	return nil
}
