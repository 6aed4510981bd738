package catalog

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/daap14/catalog-api/internal/apperror"
	"github.com/daap14/catalog-api/internal/auth"
)

// ErrOwnerInactive is returned when the owning demo user is missing or inactive.
var ErrOwnerInactive = errors.New("demo user not found or inactive")

const (
	msgNotFound      = "Catalog not found"
	msgDuplicateName = "Catalog with this name already exists"
	msgOwnerInactive = "Demo user not found or inactive"
)

// Service implements catalog operations for one owner at a time. Failures
// are returned as *apperror.Error or as wrapped store errors.
type Service struct {
	repo    Repository
	members auth.MemberRepository
}

// NewService creates a new catalog Service.
func NewService(repo Repository, members auth.MemberRepository) *Service {
	return &Service{repo: repo, members: members}
}

// List returns one page of the owner's active catalogs.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*ListResponse, error) {
	result, err := s.repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, errors.Wrap(err, "listing catalogs")
	}

	return &ListResponse{
		Catalogs: result.Catalogs,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      result.Total,
			TotalPages: totalPages(result.Total, q.Limit),
		},
	}, nil
}

// Get returns an active catalog owned by ownerID.
func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (*Catalog, error) {
	c, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.NotFound(msgNotFound, err)
		}
		return nil, errors.Wrap(err, "fetching catalog")
	}
	return c, nil
}

// Create inserts a catalog after checking the owner has no active catalog
// with the same name. The check and the insert are separate store calls.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Catalog, error) {
	taken, err := s.repo.NameTaken(ctx, ownerID, in.Name, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating catalog")
	}
	if taken {
		return nil, apperror.Conflict(msgDuplicateName, nil)
	}

	description := in.Description
	if description != nil && *description == "" {
		description = nil
	}

	c := &Catalog{
		DemoUserID:  ownerID,
		Name:        in.Name,
		Description: description,
		CatalogData: in.CatalogData,
		IsActive:    true,
		Version:     1,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return nil, apperror.Conflict(msgDuplicateName, err)
		}
		return nil, errors.Wrap(err, "creating catalog")
	}

	return c, nil
}

// Update applies the fields present in in. Replacing catalog data bumps the
// version by one; name and description changes leave it alone.
func (s *Service) Update(ctx context.Context, id, ownerID uuid.UUID, in UpdateInput) (*Catalog, error) {
	existing, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != existing.Name {
		taken, err := s.repo.NameTaken(ctx, ownerID, *in.Name, &id)
		if err != nil {
			return nil, errors.Wrap(err, "updating catalog")
		}
		if taken {
			return nil, apperror.Conflict(msgDuplicateName, nil)
		}
	}

	fields := UpdateFields{
		Name:           in.Name,
		Description:    in.Description,
		DescriptionSet: in.DescriptionSet,
	}
	if in.CatalogData != nil {
		next := existing.Version + 1
		fields.CatalogData = in.CatalogData
		fields.Version = &next
	}

	c, err := s.repo.Update(ctx, id, ownerID, fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, apperror.NotFound(msgNotFound, err)
		case errors.Is(err, ErrDuplicateName):
			return nil, apperror.Conflict(msgDuplicateName, err)
		}
		return nil, errors.Wrap(err, "updating catalog")
	}

	return c, nil
}

// Delete soft-deletes an active catalog owned by ownerID.
func (s *Service) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id, ownerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.NotFound(msgNotFound, err)
		}
		return errors.Wrap(err, "deleting catalog")
	}

	return nil
}

// ValidateDemoUser confirms ownerID is an active demo user.
func (s *Service) ValidateDemoUser(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := s.members.FindActiveDemoUser(ctx, ownerID); err != nil {
		if !errors.Is(err, auth.ErrMemberNotFound) {
			err = errors.Wrap(err, "looking up demo user")
		}
		return apperror.NotFound(msgOwnerInactive, errors.WithMessage(ErrOwnerInactive, err.Error()))
	}
	return nil
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
