package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"pairlens/internal/cache"
	"pairlens/internal/config"
	"pairlens/internal/model"
	"pairlens/internal/repository"
)

// Generation states. The path is strictly sequential with no branching
// back; Failed is reachable from any running state.
const (
	StateInit   = "init"
	StateMerged = "merged"
	StateFailed = "failed"
)

func passRunningState(n int) string { return fmt.Sprintf("pass%d_running", n) }
func passDoneState(n int) string    { return fmt.Sprintf("pass%d_done", n) }

// Broadcaster pushes generation progress to connected watchers. The
// websocket hub implements it.
type Broadcaster interface {
	BroadcastProgress(partnershipID, msgType string, payload interface{})
}

// EventPublisher emits report lifecycle events to downstream consumers.
type EventPublisher interface {
	ReportCompleted(partnershipID, reportID string)
	ReportFailed(partnershipID, category, message string)
}

// Progress message types pushed over the broadcaster.
const (
	MsgPassStarted   = "pass_started"
	MsgPassCompleted = "pass_completed"
	MsgReportReady   = "report_ready"
	MsgReportFailed  = "report_failed"
)

// ReportService owns the report-generation pipeline: request validation,
// profile fetch, base-report assembly, the three sequential generation
// passes, the merge, and the hand-off to persistence.
type ReportService struct {
	profileRepo repository.ProfileRepo
	reportRepo  repository.ReportRepo
	reportCache cache.ReportCache
	provider    Generator
	prompts     *PromptAssembler
	passes      []Pass
	logger      *log.Logger

	broadcaster Broadcaster    // optional
	events      EventPublisher // optional
}

// NewReportService creates a new report service
func NewReportService(
	profileRepo repository.ProfileRepo,
	reportRepo repository.ReportRepo,
	reportCache cache.ReportCache,
	provider Generator,
	prompts *PromptAssembler,
	models config.GeminiModels,
	logger *log.Logger,
) *ReportService {
	return &ReportService{
		profileRepo: profileRepo,
		reportRepo:  reportRepo,
		reportCache: reportCache,
		provider:    provider,
		prompts:     prompts,
		passes:      Passes(models),
		logger:      logger,
	}
}

// SetBroadcaster injects the progress broadcaster.
func (s *ReportService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetEventPublisher injects the lifecycle event publisher.
func (s *ReportService) SetEventPublisher(p EventPublisher) {
	s.events = p
}

// PartnershipID derives the stable identifier for a user pair. The pair is
// ordered before joining so both orderings of the same couple yield one
// partnership.
func PartnershipID(user1ID, user2ID string) string {
	ids := []string{user1ID, user2ID}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// Generate runs the whole pipeline for one couple and returns the persisted
// final report. Any failure below the request boundary aborts the attempt;
// nothing partial is persisted.
func (s *ReportService) Generate(ctx context.Context, req model.GenerateReportRequest) (*model.FinalReport, error) {
	r1, r2, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	partnershipID := PartnershipID(req.User1ID, req.User2ID)
	state := StateInit

	fail := func(err error) (*model.FinalReport, error) {
		category := CategoryOf(err)
		s.logger.Error("report generation failed",
			"partnership", partnershipID, "state", state, "category", category, "error", err)
		s.notify(partnershipID, MsgReportFailed, map[string]any{
			"state":    StateFailed,
			"from":     state,
			"category": string(category),
		})
		if s.events != nil {
			s.events.ReportFailed(partnershipID, string(category), err.Error())
		}
		return nil, err
	}

	profile1, err := s.fetchProfile(ctx, req.User1ID)
	if err != nil {
		return fail(err)
	}
	profile2, err := s.fetchProfile(ctx, req.User2ID)
	if err != nil {
		return fail(err)
	}

	base, err := BuildBaseReport(r1, r2, *profile1, *profile2)
	if err != nil {
		return fail(validationError("scoring failed: %v", err))
	}
	baseMap, err := base.ToMap()
	if err != nil {
		return fail(pipelineError(CategoryValidation, "serialize base report", err))
	}

	s.logger.Info("base report built", "partnership", partnershipID,
		"mindset1", base.Mindset[model.Person1].Classification,
		"mindset2", base.Mindset[model.Person2].Classification)

	var fragments []model.PassFragment
	for i, pass := range s.passes {
		state = passRunningState(i + 1)
		s.notify(partnershipID, MsgPassStarted, map[string]any{
			"pass":  pass.Name,
			"state": state,
		})

		pc := PromptContext{
			Person1Name:      profile1.Name,
			Person2Name:      profile2.Name,
			Person1Responses: FilterResponses(r1, pass.Categories),
			Person2Responses: FilterResponses(r2, pass.Categories),
			BaseReport:       baseMap,
			Fragments:        fragments,
		}
		prompt, err := s.prompts.Assemble(pass.Name, pc)
		if err != nil {
			return fail(pipelineError(CategoryConfiguration, "assemble prompt for pass "+pass.Name, err))
		}

		raw, err := s.provider.Generate(ctx, pass.Model, prompt)
		if err != nil {
			return fail(err)
		}

		fragment, err := ExtractJSON(raw)
		if err != nil {
			return fail(pipelineError(CategoryMalformedResponse, "parse pass "+pass.Name+" output", err))
		}

		fragments = append(fragments, fragment)
		state = passDoneState(i + 1)
		s.logger.Info("pass completed", "partnership", partnershipID,
			"pass", pass.Name, "keys", len(fragment))
		s.notify(partnershipID, MsgPassCompleted, map[string]any{
			"pass":  pass.Name,
			"state": state,
		})
	}

	merged := Merge(baseMap, fragments...)
	state = StateMerged

	final := &model.FinalReport{
		ID:            uuid.New().String(),
		PartnershipID: partnershipID,
		Report:        merged,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.reportRepo.Save(ctx, final); err != nil {
		return fail(pipelineError(CategoryPersistence, "persist final report", err))
	}
	if s.reportCache != nil {
		if err := s.reportCache.Set(ctx, final); err != nil {
			s.logger.Warn("report cache write failed", "partnership", partnershipID, "error", err)
		}
	}

	s.notify(partnershipID, MsgReportReady, map[string]any{
		"reportId": final.ID,
		"state":    state,
	})
	if s.events != nil {
		s.events.ReportCompleted(partnershipID, final.ID)
	}

	s.logger.Info("report ready", "partnership", partnershipID, "report", final.ID)
	return final, nil
}

// GetReport returns a previously generated report, read through the cache.
func (s *ReportService) GetReport(ctx context.Context, partnershipID string) (*model.FinalReport, error) {
	if s.reportCache != nil {
		cached, err := s.reportCache.Get(ctx, partnershipID)
		if err != nil {
			s.logger.Warn("report cache read failed", "partnership", partnershipID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	report, err := s.reportRepo.GetByPartnershipID(ctx, partnershipID)
	if err != nil {
		return nil, err
	}
	if report != nil && s.reportCache != nil {
		if err := s.reportCache.Set(ctx, report); err != nil {
			s.logger.Warn("report cache fill failed", "partnership", partnershipID, "error", err)
		}
	}
	return report, nil
}

// validate enforces the request preconditions before any pipeline stage
// runs: both response maps present and non-empty, both ids present.
func (s *ReportService) validate(req model.GenerateReportRequest) (model.ResponseSet, model.ResponseSet, error) {
	if req.User1ID == "" || req.User2ID == "" {
		return nil, nil, validationError("both user ids are required")
	}
	if req.User1ID == req.User2ID {
		return nil, nil, validationError("a partnership requires two distinct users")
	}
	if len(req.Person1Responses) == 0 {
		return nil, nil, validationError("person1_responses must be present and non-empty")
	}
	if len(req.Person2Responses) == 0 {
		return nil, nil, validationError("person2_responses must be present and non-empty")
	}

	r1, err := toResponseSet(req.Person1Responses)
	if err != nil {
		return nil, nil, validationError("person1_responses: %v", err)
	}
	r2, err := toResponseSet(req.Person2Responses)
	if err != nil {
		return nil, nil, validationError("person2_responses: %v", err)
	}
	return r1, r2, nil
}

func (s *ReportService) fetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pipelineError(CategoryProfileFetch, "fetch profile for "+userID, err)
	}
	if profile == nil {
		return nil, pipelineError(CategoryProfileFetch, "no profile found for "+userID, nil)
	}
	return profile, nil
}

func (s *ReportService) notify(partnershipID, msgType string, payload map[string]any) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastProgress(partnershipID, msgType, payload)
}

// toResponseSet converts the wire shape (stringified question ids) to the
// internal id-keyed map.
func toResponseSet(raw map[string]any) (model.ResponseSet, error) {
	set := make(model.ResponseSet, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("question id %q is not numeric", key)
		}
		set[id] = value
	}
	return set, nil
}
