package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/metrics"
)

const defaultSearchLimit = 20

// FieldCipher encrypts the sensitive pair. *cipher.FieldCipher implements it.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// EmployeeService is the only path between the HTTP layer and the employee
// store. Values handed to the repository are always ciphertext.
type EmployeeService interface {
	Create(ctx context.Context, in domain.EmployeeInput) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	Update(ctx context.Context, id int64, in domain.EmployeeInput) error
	Delete(ctx context.Context, id int64) error
	CountAll(ctx context.Context) (int, error)
	CountByDepartment(ctx context.Context) (map[string]int, error)
	List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.EmployeeSummary, error)
	Search(ctx context.Context, query string) ([]domain.EmployeeSearchHit, error)
}

type employeeService struct {
	repo    domain.EmployeeRepository
	cipher  FieldCipher
	catalog *domain.Catalog
	indexer domain.EmployeeIndexer
}

// NewEmployeeService wires the service. indexer may be nil, in which case
// Search returns domain.ErrSearchDisabled.
func NewEmployeeService(repo domain.EmployeeRepository, cipher FieldCipher, catalog *domain.Catalog, indexer domain.EmployeeIndexer) EmployeeService {
	return &employeeService{
		repo:    repo,
		cipher:  cipher,
		catalog: catalog,
		indexer: indexer,
	}
}

func (s *employeeService) Create(ctx context.Context, in domain.EmployeeInput) (int64, error) {
	in = in.Normalize()
	if err := in.Validate(s.catalog, true); err != nil {
		return 0, err
	}
	s.checkPosition(ctx, in.Profile)

	rec, err := s.seal(in)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return 0, err
	}

	s.index(ctx, id, in.Profile)
	return id, nil
}

func (s *employeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ssn, err := s.open(ctx, id, rec.EncryptedSSN)
	if err != nil {
		return nil, err
	}
	bank, err := s.open(ctx, id, rec.EncryptedBankAccount)
	if err != nil {
		return nil, err
	}

	return &domain.Employee{
		ID:                   rec.ID,
		Profile:              rec.Profile,
		SocialSecurityNumber: ssn,
		BankAccount:          bank,
	}, nil
}

func (s *employeeService) Update(ctx context.Context, id int64, in domain.EmployeeInput) error {
	in = in.Normalize()
	if err := in.Validate(s.catalog, false); err != nil {
		return err
	}
	s.checkPosition(ctx, in.Profile)

	rec, err := s.seal(in)
	if err != nil {
		return err
	}
	rec.ID = id

	if err := s.repo.Update(ctx, rec); err != nil {
		return err
	}

	s.index(ctx, id, in.Profile)
	return nil
}

func (s *employeeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteEmployee(ctx, id); err != nil {
			metrics.SearchIndexErrors.WithLabelValues("delete").Inc()
			logger.WarnLog(ctx, "failed to remove employee %d from search index: %v", id, err)
		}
	}
	return nil
}

func (s *employeeService) CountAll(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *employeeService) CountByDepartment(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByDepartment(ctx)
}

func (s *employeeService) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.EmployeeSummary, error) {
	filter.Department = strings.TrimSpace(filter.Department)
	filter.Name = strings.TrimSpace(filter.Name)
	if filter.Department != "" && !s.catalog.HasDepartment(filter.Department) {
		return nil, &domain.ValidationError{Field: "department", Reason: "is not a known department"}
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.EmployeeSummary, 0, len(records))
	for _, rec := range records {
		ssn, err := s.open(ctx, rec.ID, rec.EncryptedSSN)
		if err != nil {
			return nil, err
		}
		bank, err := s.open(ctx, rec.ID, rec.EncryptedBankAccount)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.EmployeeSummary{
			ID:                rec.ID,
			Profile:           rec.Profile,
			MaskedSSN:         domain.MaskTail(ssn, 4),
			MaskedBankAccount: domain.MaskTail(bank, 4),
		})
	}
	return summaries, nil
}

func (s *employeeService) Search(ctx context.Context, query string) ([]domain.EmployeeSearchHit, error) {
	if s.indexer == nil {
		return nil, domain.ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Field: "q", Reason: "is required"}
	}
	return s.indexer.SearchEmployees(ctx, query, defaultSearchLimit)
}

// checkPosition logs positions outside the department's usual list. They are
// still accepted.
func (s *employeeService) checkPosition(ctx context.Context, p domain.Profile) {
	if p.Position == "" || s.catalog.IsListedPosition(p.Department, p.Position) {
		return
	}
	logger.WarnLog(ctx, "position %q is not listed for %s", p.Position, p.Department)
}

// seal encrypts whichever half of the sensitive pair is present.
func (s *employeeService) seal(in domain.EmployeeInput) (*domain.EmployeeRecord, error) {
	rec := &domain.EmployeeRecord{Profile: in.Profile}

	if in.SocialSecurityNumber != "" {
		ct, err := s.cipher.Encrypt(in.SocialSecurityNumber)
		if err != nil {
			return nil, err
		}
		rec.EncryptedSSN = ct
	}
	if in.BankAccount != "" {
		ct, err := s.cipher.Encrypt(in.BankAccount)
		if err != nil {
			return nil, err
		}
		rec.EncryptedBankAccount = ct
	}
	return rec, nil
}

func (s *employeeService) open(ctx context.Context, id int64, ciphertext string) (string, error) {
	pt, err := s.cipher.Decrypt(ciphertext)
	if err != nil {
		metrics.DecryptionFailures.Inc()
		logger.ErrorLog(ctx, fmt.Sprintf("failed to decrypt sensitive field of employee %d", id), err)
		return "", err
	}
	return pt, nil
}

func (s *employeeService) index(ctx context.Context, id int64, p domain.Profile) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexEmployee(ctx, id, p); err != nil {
		metrics.SearchIndexErrors.WithLabelValues("index").Inc()
		logger.WarnLog(ctx, "failed to index employee %d: %v", id, err)
	}
}
