package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tailor/internal/config"
	"tailor/internal/errors"
	"tailor/internal/store"
	"tailor/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// State identifies a generation pipeline stage.
type State string

const (
	StateExtractingFacts State = "extracting_facts"
	StateDrafting        State = "drafting"
	StateScoring         State = "scoring"
	StateAnalyzing       State = "analyzing"
	StateReformatting    State = "reformatting"
	StateRescoring       State = "rescoring"
	StateAccepted        State = "accepted"
	StateFailed          State = "failed"
)

// StageTimeouts carries the per-stage deadlines, taken from the
// per-operation AI timeouts.
type StageTimeouts struct {
	Extract  time.Duration
	Draft    time.Duration
	Analyze  time.Duration
	Reformat time.Duration
}

// Orchestrator drives a generation run through the explicit state
// machine: extract facts, draft, score, optionally refine once
// (analyze, reformat, rescore), then persist. The best successfully
// produced content is checkpointed at every stage; refinement failures
// fall back to the draft rather than failing the run.
type Orchestrator struct {
	extractor   *FactExtractor
	drafter     *DraftGenerator
	analyzer    *ComplianceAnalyzer
	reformatter *ComplianceReformatter
	store       *store.Store
	policy      config.PipelineConfig
	timeouts    StageTimeouts
	logger      *errors.Logger
}

// NewOrchestrator wires the pipeline components over a store.
func NewOrchestrator(
	extractor *FactExtractor,
	drafter *DraftGenerator,
	analyzer *ComplianceAnalyzer,
	reformatter *ComplianceReformatter,
	st *store.Store,
	policy config.PipelineConfig,
	timeouts StageTimeouts,
	logger *errors.Logger,
) *Orchestrator {
	return &Orchestrator{
		extractor:   extractor,
		drafter:     drafter,
		analyzer:    analyzer,
		reformatter: reformatter,
		store:       st,
		policy:      policy,
		timeouts:    timeouts,
		logger:      logger,
	}
}

// runState tracks the checkpointed progress of one generation run.
type runState struct {
	state   State
	facts   types.JobFacts
	content string
	match   types.KeywordMatch
	refined bool
}

func (o *Orchestrator) transition(run *runState, to State) {
	o.logger.Debug("Pipeline state transition",
		"from", string(run.state),
		"to", string(to))
	run.state = to
}

// Generate runs the full pipeline for one request and persists the
// accepted result. Validation failures reject before any completion
// call; a draft failure is fatal; refinement failures degrade to the
// draft checkpoint.
func (o *Orchestrator) Generate(ctx context.Context, userID string, req types.GenerateRequest) (*types.GenerateResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"User ID is required", nil)
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Job description is required", nil)
	}

	style := req.Style
	if style == "" {
		style = "professional"
	}

	tracer := otel.Tracer("tailor.pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.generate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("input.job_length", len(req.JobDescription)),
		attribute.String("input.style", style),
	)

	docs, err := o.store.Documents.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeDatabaseFailed,
			"Failed to load source documents", err)
	}

	run := &runState{}

	// Fact extraction degrades to configured fallbacks on failure.
	o.transition(run, StateExtractingFacts)
	extractCtx, cancelExtract := context.WithTimeout(ctx, o.timeouts.Extract)
	run.facts, _ = o.extractor.Extract(extractCtx, req.JobDescription)
	cancelExtract()

	// Drafting is the one stage with no fallback.
	o.transition(run, StateDrafting)
	draftCtx, cancelDraft := context.WithTimeout(ctx, o.timeouts.Draft)
	draft, _, err := o.drafter.Draft(draftCtx, req.JobDescription, style, req.Profile, docs)
	cancelDraft()
	if err != nil {
		o.transition(run, StateFailed)
		return nil, err
	}
	run.content = draft

	o.transition(run, StateScoring)
	run.match = ScoreKeywords(req.JobDescription, run.content)
	span.SetAttributes(attribute.Int("draft.ats_score", run.match.Score))

	if o.policy.AlwaysRefine || run.match.Score < o.policy.RefineThreshold {
		o.refine(ctx, run, req.JobDescription, docs)
	}

	o.transition(run, StateAccepted)
	result, err := o.persist(ctx, userID, req.JobDescription, style, run, len(docs))
	if err != nil {
		o.transition(run, StateFailed)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("final.ats_score", result.ATSScore),
		attribute.Bool("final.refined", result.Refined),
	)
	return result, nil
}

// refine runs the analyze/reformat/rescore chain at most once. Any
// failure, including a fabrication-guard rejection, keeps the draft
// checkpoint untouched.
func (o *Orchestrator) refine(ctx context.Context, run *runState, jobDescription string, docs []types.SourceDocument) {
	verification := RenderVerificationContext(docs)

	o.transition(run, StateAnalyzing)
	analyzeCtx, cancelAnalyze := context.WithTimeout(ctx, o.timeouts.Analyze)
	report, _, err := o.analyzer.Analyze(analyzeCtx, types.AnalyzeComplianceInput{
		JobTitle:         run.facts.Title,
		Company:          run.facts.Company,
		JobDescription:   jobDescription,
		ResumeContent:    run.content,
		DocumentsContext: verification,
		ATSScore:         run.match.Score,
	})
	cancelAnalyze()
	if err != nil {
		o.logger.Warn("Compliance analysis failed, keeping draft",
			"ats_score", run.match.Score,
			"error", err.Error())
		return
	}

	o.transition(run, StateReformatting)
	corpus := verification + "\n" + jobDescription
	reformatCtx, cancelReformat := context.WithTimeout(ctx, o.timeouts.Reformat)
	refined, _, err := o.reformatter.Reformat(reformatCtx, types.ReformatResumeInput{
		JobTitle:         run.facts.Title,
		Company:          run.facts.Company,
		JobDescription:   jobDescription,
		ResumeContent:    run.content,
		DocumentsContext: verification,
		Analysis:         report.Raw,
	}, report, corpus)
	cancelReformat()
	if err != nil {
		o.logger.Warn("Reformatting failed, keeping draft",
			"ats_score", run.match.Score,
			"error", err.Error())
		return
	}

	o.transition(run, StateRescoring)
	match := ScoreKeywords(jobDescription, refined)
	o.logger.Info("Refined resume accepted",
		"previous_score", run.match.Score,
		"refined_score", match.Score)

	run.content = refined
	run.match = match
	run.refined = true
}

// persist writes the job posting, then the resume. A posting insert that
// survives a failed resume insert is left in place.
func (o *Orchestrator) persist(ctx context.Context, userID, jobDescription, style string, run *runState, docCount int) (*types.GenerateResult, error) {
	now := time.Now().UTC()

	keywords := run.match.Universe
	if len(keywords) > o.policy.MaxKeywords {
		keywords = keywords[:o.policy.MaxKeywords]
	}

	posting := types.JobPosting{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: jobDescription,
		Title:       run.facts.Title,
		Company:     run.facts.Company,
		Keywords:    keywords,
		CreatedAt:   now,
	}
	if err := o.store.JobPostings.Create(ctx, posting); err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeDatabaseFailed,
			"Failed to save job posting", err)
	}

	title := run.facts.Title
	if run.facts.Company != "" {
		title = fmt.Sprintf("%s at %s", run.facts.Title, run.facts.Company)
	}

	resume := types.GeneratedResume{
		ID:           uuid.NewString(),
		UserID:       userID,
		JobPostingID: &posting.ID,
		Title:        title,
		Content:      run.content,
		ATSScore:     run.match.Score,
		Style:        style,
		Metadata: types.ResumeMetadata{
			KeywordsMatched: len(run.match.Matched),
			KeywordsTotal:   len(run.match.Universe),
			Refined:         run.refined,
			DocumentCount:   docCount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.store.Resumes.Create(ctx, resume); err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeDatabaseFailed,
			"Failed to save generated resume", err)
	}

	o.logger.Info("Generation run accepted",
		"resume_id", resume.ID,
		"title", title,
		"ats_score", run.match.Score,
		"refined", run.refined,
		"keywords_matched", len(run.match.Matched),
		"keywords_total", len(run.match.Universe))

	return &types.GenerateResult{
		ResumeID: resume.ID,
		Title:    title,
		Content:  run.content,
		ATSScore: run.match.Score,
		Style:    style,
		Refined:  run.refined,
	}, nil
}
