package drug

import (
	"context"
	"fmt"
)

// Service provides drug catalog business logic.
type Service struct {
	repo        Repository
	fixturePath string
	observer    SeedObserver
}

// NewService creates a new drug service. observer may be nil.
func NewService(repo Repository, fixturePath string, observer SeedObserver) *Service {
	return &Service{repo: repo, fixturePath: fixturePath, observer: observer}
}

// ListPage returns one page of drugs matching company together with the filtered total.
func (s *Service) ListPage(ctx context.Context, company string, p Pagination) (Page, error) {
	q := Query{Company: company, Limit: p.Limit, Offset: p.Offset()}

	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return Page{}, err
	}

	drugs, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, err
	}
	if drugs == nil {
		drugs = []Drug{}
	}

	return Page{
		Data: drugs,
		Meta: PageMeta{
			Total:      total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: TotalPages(total, p.Limit),
		},
	}, nil
}

// ListAll returns every drug matching company.
func (s *Service) ListAll(ctx context.Context, company string) ([]Drug, error) {
	drugs, err := s.repo.List(ctx, Query{Company: company})
	if err != nil {
		return nil, err
	}
	if drugs == nil {
		drugs = []Drug{}
	}
	return drugs, nil
}

// GetByCode returns the first drug with the given code.
func (s *Service) GetByCode(ctx context.Context, code string) (Drug, error) {
	return s.repo.GetByCode(ctx, code)
}

// Reseed replaces the stored dataset with the fixture contents.
func (s *Service) Reseed(ctx context.Context) (int, error) {
	count, err := s.reseed(ctx)
	if s.observer != nil {
		s.observer.ObserveSeed(count, err)
	}
	return count, err
}

func (s *Service) reseed(ctx context.Context) (int, error) {
	drugs, err := LoadFixture(s.fixturePath)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.Replace(ctx, drugs)
	if err != nil {
		return 0, fmt.Errorf("replace drugs: %w", err)
	}
	return count, nil
}
