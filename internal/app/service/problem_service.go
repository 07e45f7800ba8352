package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ocpe/internal/common"
	"ocpe/internal/domain/model"
	"ocpe/internal/domain/repository"

	"github.com/gosimple/slug"
)

// maxCodeLength matches problems.code. Transliteration can make a code longer
// than the name it came from.
const maxCodeLength = 255

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type CreateProblemRequest struct {
	Name        string `form:"name" validate:"required,max=100"`
	Title       string `form:"title" validate:"required"`
	Description string `form:"description" validate:"required"`
	TestInput   string `form:"test_input" validate:"required"`
	TestOutput  string `form:"test_output" validate:"required"`
	Score       int    `form:"score" validate:"required,min=1,max=1000"`
}

// CreateProblem stores a new practice problem on behalf of actor, who must hold
// CapCreateProblem.
func (s *ProblemService) CreateProblem(ctx context.Context, actor model.Identity, req CreateProblemRequest) (*model.Problem, error) {
	if !actor.Can(model.CapCreateProblem) {
		return nil, fmt.Errorf("%s may not create problems: %w", actor.Role, common.ErrForbidden)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Title = strings.TrimSpace(req.Title)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	code := slug.Make(req.Name)
	if code == "" {
		return nil, common.NewValidationError("name", "Name must contain letters or digits.")
	}
	if len(code) > maxCodeLength {
		return nil, common.NewValidationError("name", "Name is too long.")
	}

	problem := &model.Problem{
		Code:        code,
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		TestInput:   req.TestInput,
		TestOutput:  req.TestOutput,
		Score:       req.Score,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.problemRepo.Create(ctx, problem); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewValidationError("name", "A problem with this name already exists.")
		}
		return nil, common.Errorf("failed to create problem in DB: %w", err)
	}

	log.Printf("INFO: judge %q added problem %d (%s)", actor.Username, problem.ID, problem.Code)
	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context) ([]model.Problem, error) {
	return s.problemRepo.List(ctx)
}

func (s *ProblemService) GetProblem(ctx context.Context, id int64) (*model.Problem, error) {
	if id <= 0 {
		return nil, common.ErrNotFound
	}
	return s.problemRepo.FindByID(ctx, id)
}
