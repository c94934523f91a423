package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/config"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

var (
	ErrLLMDisabled        = errors.New("llm is not configured")
	ErrLLMInvalidResponse = errors.New("llm returned an invalid response")
)

// maxPromptInput caps raw page and email text sent to the model.
const maxPromptInput = 20000

// NoChange is the classification for emails that do not move an application.
const NoChange = "NO_CHANGE"

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini. Without an API key the service is
// returned disabled and every call fails with ErrLLMDisabled.
func NewLLMService(ctx context.Context, cfg *config.LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return &LLMService{}, nil
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.Client != nil
}

func (s *LLMService) generate(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrLLMDisabled
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt,
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return stripCodeFence(resp), nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company": "Name of the company (e.g., Google, StartupInc)",
    "position": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "jobType": "One of Full-time, Part-time, Contract, Internship, Freelance",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "skills": [{"name": "Go", "required": true}],
    "salary": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails turns a raw job posting into the JSON object described
// by jobExtractionPrompt.
func (s *LLMService) ExtractJobDetails(ctx context.Context, raw string) (json.RawMessage, error) {
	resp, err := s.generate(ctx, fmt.Sprintf(jobExtractionPrompt, truncate(raw)))
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(resp)) {
		return nil, fmt.Errorf("%w: job details are not JSON", ErrLLMInvalidResponse)
	}
	return json.RawMessage(resp), nil
}

const emailStatusPrompt = `
You track job applications. Read the email below about an application at %s and decide the application's new status.

Answer with JSON only: {"status": "...", "summary": "..."}
- "status" is one of: applied, interview, assessment, offer, rejected, NO_CHANGE
- interview: the candidate is invited to or scheduled for an interview
- assessment: a take-home, coding test or online assessment is requested
- offer: an offer is extended
- rejected: the company declines to move forward
- NO_CHANGE: acknowledgements, newsletters, or anything that does not change the status
- "summary" is one short sentence describing the email.

### SUBJECT:
%s

### BODY:
%s
`

// EmailAnalysis is the model's reading of a recruiting email.
type EmailAnalysis struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

// Target returns the status the email moves the application to, or false
// when the email carries no status change.
func (a EmailAnalysis) Target() (models.Status, bool) {
	st := models.Status(strings.ToLower(strings.TrimSpace(a.Status)))
	if !st.Valid() {
		return "", false
	}
	return st, true
}

func (s *LLMService) AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (EmailAnalysis, error) {
	resp, err := s.generate(ctx, fmt.Sprintf(emailStatusPrompt, company, subject, truncate(body)))
	if err != nil {
		return EmailAnalysis{}, err
	}

	var analysis EmailAnalysis
	if err := json.Unmarshal([]byte(resp), &analysis); err != nil {
		return EmailAnalysis{}, fmt.Errorf("%w: %v", ErrLLMInvalidResponse, err)
	}
	if _, ok := analysis.Target(); !ok {
		analysis.Status = NoChange
	}
	return analysis, nil
}

const jobRolePrompt = `
A candidate applied to several positions. Decide which one the email below is about.

### POSITIONS:
%s
### SUBJECT:
%s

### BODY:
%s

Answer with JSON only: {"index": N} where N is the number of the matching position, or {"index": -1} if none clearly matches.
`

// IdentifyJobRole picks which of positions an email refers to. It returns
// the zero-based index, or -1 when the model cannot tell.
func (s *LLMService) IdentifyJobRole(ctx context.Context, positions []string, subject, body string) (int, error) {
	var list strings.Builder
	for i, p := range positions {
		fmt.Fprintf(&list, "%d. %s\n", i, p)
	}

	resp, err := s.generate(ctx, fmt.Sprintf(jobRolePrompt, list.String(), subject, truncate(body)))
	if err != nil {
		return -1, err
	}

	var result struct {
		Index *int `json:"index"`
	}
	if err := json.Unmarshal([]byte(resp), &result); err != nil || result.Index == nil {
		return -1, fmt.Errorf("%w: no position index", ErrLLMInvalidResponse)
	}
	if *result.Index < 0 || *result.Index >= len(positions) {
		return -1, nil
	}
	return *result.Index, nil
}

func truncate(s string) string {
	if len(s) <= maxPromptInput {
		return s
	}
	return strings.ToValidUTF8(s[:maxPromptInput], "")
}

// stripCodeFence removes a ```json fence some models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
