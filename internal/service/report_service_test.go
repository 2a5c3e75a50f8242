package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairlens/internal/model"
)

type fakeGenerator struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
	models  []string
}

func (f *fakeGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.models = append(f.models, model)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "{}", nil
}

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
	err      error
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[userID], nil
}

type fakeReportRepo struct {
	saved   []*model.FinalReport
	saveErr error
	stored  map[string]*model.FinalReport
}

func (f *fakeReportRepo) Save(_ context.Context, report *model.FinalReport) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, report)
	if f.stored == nil {
		f.stored = make(map[string]*model.FinalReport)
	}
	f.stored[report.PartnershipID] = report
	return nil
}

func (f *fakeReportRepo) GetByPartnershipID(_ context.Context, partnershipID string) (*model.FinalReport, error) {
	return f.stored[partnershipID], nil
}

type fakeReportCache struct {
	entries map[string]*model.FinalReport
	getErr  error
	setErr  error
}

func (f *fakeReportCache) Get(_ context.Context, partnershipID string) (*model.FinalReport, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[partnershipID], nil
}

func (f *fakeReportCache) Set(_ context.Context, report *model.FinalReport) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.entries == nil {
		f.entries = make(map[string]*model.FinalReport)
	}
	f.entries[report.PartnershipID] = report
	return nil
}

type progressEvent struct {
	partnership string
	msgType     string
	payload     map[string]any
}

type fakeBroadcaster struct {
	events []progressEvent
}

func (f *fakeBroadcaster) BroadcastProgress(partnershipID, msgType string, payload interface{}) {
	p, _ := payload.(map[string]any)
	f.events = append(f.events, progressEvent{partnershipID, msgType, p})
}

type fakePublisher struct {
	completed [][2]string
	failed    [][3]string
}

func (f *fakePublisher) ReportCompleted(partnershipID, reportID string) {
	f.completed = append(f.completed, [2]string{partnershipID, reportID})
}

func (f *fakePublisher) ReportFailed(partnershipID, category, message string) {
	f.failed = append(f.failed, [3]string{partnershipID, category, message})
}

func fullResponses(val float64) map[string]any {
	ids := []int{}
	for _, span := range [][2]int{
		{21, 28}, {31, 38}, {41, 55}, {61, 78},
		{101, 110}, {151, 160}, {171, 200}, {211, 250},
	} {
		for id := span[0]; id <= span[1]; id++ {
			ids = append(ids, id)
		}
	}
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		out[strconv.Itoa(id)] = val
	}
	return out
}

func newTestService(t *testing.T, gen Generator) (*ReportService, *fakeReportRepo, *fakeReportCache) {
	t.Helper()

	profiles := &fakeProfileRepo{profiles: map[string]*model.Profile{
		"u1": {UserID: "u1", Name: "Ada", Age: 31},
		"u2": {UserID: "u2", Name: "Bo", Age: 28},
	}}
	repo := &fakeReportRepo{}
	cache := &fakeReportCache{}

	prompts, err := NewPromptAssembler("")
	require.NoError(t, err)

	svc := NewReportService(profiles, repo, cache, gen, prompts, testModels(), log.New(io.Discard))
	return svc, repo, cache
}

func validRequest() model.GenerateReportRequest {
	return model.GenerateReportRequest{
		User1ID:          "u1",
		User2ID:          "u2",
		Person1Responses: fullResponses(4),
		Person2Responses: fullResponses(3),
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		`Sure! {"personality_narrative": "steady and warm"}`,
		`{"wellbeing_narrative": "resilient", "momentum": {"summary": "rising"}}`,
		`{"communication_narrative": "direct", "love": {"narrative": "tender"}}`,
	}}
	svc, repo, cache := newTestService(t, gen)

	bcast := &fakeBroadcaster{}
	pub := &fakePublisher{}
	svc.SetBroadcaster(bcast)
	svc.SetEventPublisher(pub)

	final, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, final)

	assert.Equal(t, "u1:u2", final.PartnershipID)
	assert.NotEmpty(t, final.ID)
	assert.False(t, final.CreatedAt.IsZero())

	// three passes ran on their configured models
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, []string{"model-a", "model-b", "model-c"}, gen.models)

	// base sections survive the merge
	assert.Contains(t, final.Report, "couple")
	assert.Contains(t, final.Report, "mindset")
	assert.Contains(t, final.Report, "dynamics")
	assert.Contains(t, final.Report, "social_support")

	// pass fragments land at the top level
	assert.Equal(t, "steady and warm", final.Report["personality_narrative"])
	assert.Equal(t, "resilient", final.Report["wellbeing_narrative"])
	assert.Equal(t, "direct", final.Report["communication_narrative"])

	// momentum and love merge one level deep: scoring keys stay, narrative joins
	momentum := final.Report["momentum"].(map[string]any)
	assert.Contains(t, momentum, "energy")
	assert.Contains(t, momentum, "closeness")
	assert.Equal(t, "rising", momentum["summary"])

	love := final.Report["love"].(map[string]any)
	assert.Contains(t, love, "expression")
	assert.Equal(t, "tender", love["narrative"])

	// persisted and cached
	require.Len(t, repo.saved, 1)
	assert.Same(t, final, repo.saved[0])
	assert.Same(t, final, cache.entries["u1:u2"])

	// lifecycle event
	require.Len(t, pub.completed, 1)
	assert.Equal(t, "u1:u2", pub.completed[0][0])
	assert.Empty(t, pub.failed)

	// progress stream: 3 started, 3 completed, then ready
	var types []string
	for _, e := range bcast.events {
		assert.Equal(t, "u1:u2", e.partnership)
		types = append(types, e.msgType)
	}
	assert.Equal(t, []string{
		MsgPassStarted, MsgPassCompleted,
		MsgPassStarted, MsgPassCompleted,
		MsgPassStarted, MsgPassCompleted,
		MsgReportReady,
	}, types)
}

func TestGenerateLaterPassSeesEarlierFragments(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		`{"personality_narrative": "FIRST_FRAGMENT_MARKER"}`,
		`{"momentum": {"summary": "SECOND_FRAGMENT_MARKER"}}`,
		`{"communication_narrative": "done"}`,
	}}
	svc, _, _ := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, gen.prompts, 3)
	assert.NotContains(t, gen.prompts[0], "FIRST_FRAGMENT_MARKER")
	assert.Contains(t, gen.prompts[1], "FIRST_FRAGMENT_MARKER")
	assert.Contains(t, gen.prompts[2], "FIRST_FRAGMENT_MARKER")
	assert.Contains(t, gen.prompts[2], "SECOND_FRAGMENT_MARKER")
}

func TestGenerateValidation(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeGenerator{})

	cases := []struct {
		name string
		req  model.GenerateReportRequest
	}{
		{"missing user id", model.GenerateReportRequest{
			User2ID:          "u2",
			Person1Responses: fullResponses(3),
			Person2Responses: fullResponses(3),
		}},
		{"same user twice", model.GenerateReportRequest{
			User1ID:          "u1",
			User2ID:          "u1",
			Person1Responses: fullResponses(3),
			Person2Responses: fullResponses(3),
		}},
		{"empty person1 responses", model.GenerateReportRequest{
			User1ID:          "u1",
			User2ID:          "u2",
			Person2Responses: fullResponses(3),
		}},
		{"non-numeric question id", model.GenerateReportRequest{
			User1ID:          "u1",
			User2ID:          "u2",
			Person1Responses: map[string]any{"abc": 3},
			Person2Responses: fullResponses(3),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, CategoryValidation, CategoryOf(err))
		})
	}
}

func TestGenerateOutOfScaleValue(t *testing.T) {
	svc, repo, _ := newTestService(t, &fakeGenerator{})

	req := validRequest()
	req.Person1Responses["21"] = 9

	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, CategoryOf(err))
	assert.Empty(t, repo.saved)
}

func TestGenerateMissingProfile(t *testing.T) {
	gen := &fakeGenerator{}
	svc, repo, _ := newTestService(t, gen)

	req := validRequest()
	req.User2ID = "u9"

	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, CategoryProfileFetch, CategoryOf(err))
	assert.Zero(t, gen.calls)
	assert.Empty(t, repo.saved)
}

func TestGenerateProviderFailureAborts(t *testing.T) {
	gen := &fakeGenerator{
		replies: []string{`{"personality_narrative": "ok"}`},
		errs: []error{nil,
			pipelineError(CategoryProviderRateLimit, "rate limit retry budget exhausted", nil),
		},
	}
	svc, repo, cache := newTestService(t, gen)

	bcast := &fakeBroadcaster{}
	pub := &fakePublisher{}
	svc.SetBroadcaster(bcast)
	svc.SetEventPublisher(pub)

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, CategoryProviderRateLimit, CategoryOf(err))

	// nothing partial persisted
	assert.Empty(t, repo.saved)
	assert.Empty(t, cache.entries)

	// failure is announced with the state it happened in
	last := bcast.events[len(bcast.events)-1]
	assert.Equal(t, MsgReportFailed, last.msgType)
	assert.Equal(t, StateFailed, last.payload["state"])
	assert.Equal(t, "pass2_running", last.payload["from"])

	require.Len(t, pub.failed, 1)
	assert.Equal(t, string(CategoryProviderRateLimit), pub.failed[0][1])
}

func TestGenerateMalformedPassOutput(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"I refuse to answer with JSON."}}
	svc, repo, _ := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, CategoryMalformedResponse, CategoryOf(err))
	assert.Empty(t, repo.saved)
}

func TestGeneratePersistenceFailure(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{}`, `{}`, `{}`}}
	svc, repo, _ := newTestService(t, gen)
	repo.saveErr = errors.New("mongo down")

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, CategoryPersistence, CategoryOf(err))
}

func TestGenerateCacheFailureIsNonFatal(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{}`, `{}`, `{}`}}
	svc, repo, cache := newTestService(t, gen)
	cache.setErr = errors.New("redis down")

	final, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, final)
	assert.Len(t, repo.saved, 1)
}

func TestPartnershipIDIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, PartnershipID("u1", "u2"), PartnershipID("u2", "u1"))
	assert.Equal(t, "a:b", PartnershipID("b", "a"))
}

func TestGetReportCacheHit(t *testing.T) {
	svc, repo, cache := newTestService(t, &fakeGenerator{})

	cached := &model.FinalReport{ID: "r1", PartnershipID: "u1:u2"}
	cache.entries = map[string]*model.FinalReport{"u1:u2": cached}

	got, err := svc.GetReport(context.Background(), "u1:u2")
	require.NoError(t, err)
	assert.Same(t, cached, got)
	assert.Empty(t, repo.stored)
}

func TestGetReportCacheMissFillsFromRepo(t *testing.T) {
	svc, repo, cache := newTestService(t, &fakeGenerator{})

	stored := &model.FinalReport{ID: "r1", PartnershipID: "u1:u2"}
	repo.stored = map[string]*model.FinalReport{"u1:u2": stored}

	got, err := svc.GetReport(context.Background(), "u1:u2")
	require.NoError(t, err)
	assert.Same(t, stored, got)
	assert.Same(t, stored, cache.entries["u1:u2"])
}

func TestGetReportCacheErrorFallsThrough(t *testing.T) {
	svc, repo, cache := newTestService(t, &fakeGenerator{})
	cache.getErr = errors.New("redis down")

	stored := &model.FinalReport{ID: "r1", PartnershipID: "u1:u2"}
	repo.stored = map[string]*model.FinalReport{"u1:u2": stored}

	got, err := svc.GetReport(context.Background(), "u1:u2")
	require.NoError(t, err)
	assert.Same(t, stored, got)
}

func TestGetReportNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeGenerator{})

	got, err := svc.GetReport(context.Background(), "nobody:here")
	require.NoError(t, err)
	assert.Nil(t, got)
}
