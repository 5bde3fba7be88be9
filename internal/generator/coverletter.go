// Package generator produces tailored cover letters with the Gemini API
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"linkedin-easyapply/internal/config"
	"linkedin-easyapply/internal/models"
)

// descriptionPromptLimit caps how much of the job description goes into the
// prompt. Long postings blow up latency without improving the letter.
const descriptionPromptLimit = 4000

// CoverLetterGenerator wraps the Gemini client
type CoverLetterGenerator struct {
	client *genai.Client
	config *config.GeneratorConfig
	logger zerolog.Logger
}

// NewCoverLetterGenerator creates a generator backed by the Gemini API
func NewCoverLetterGenerator(ctx context.Context, apiKey string, cfg *config.GeneratorConfig, logger zerolog.Logger) (*CoverLetterGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &CoverLetterGenerator{
		client: client,
		config: cfg,
		logger: logger.With().Str("component", "generator").Logger(),
	}, nil
}

// Close releases the underlying client
func (g *CoverLetterGenerator) Close() error {
	return g.client.Close()
}

// Generate produces a cover letter for the job, tailored to the applicant
// profile. The result is plain text, clamped to the configured length.
func (g *CoverLetterGenerator) Generate(ctx context.Context, job *models.JobDetails, profile models.ApplicantProfile) (string, error) {
	g.logger.Info().
		Str("jobID", job.JobID).
		Str("title", job.Title).
		Msg("Generating cover letter")

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.config.TimeoutSeconds)*time.Second)
	defer cancel()

	model := g.client.GenerativeModel(g.config.Model)
	model.SetTemperature(0.7)

	prompt := BuildPrompt(job, profile, g.config.MaxLetterChars)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	letter := extractText(resp)
	if letter == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	letter = ClampLetter(letter, g.config.MaxLetterChars)

	g.logger.Info().Int("chars", len(letter)).Msg("Cover letter generated")
	return letter, nil
}

// BuildPrompt assembles the generation prompt from the job posting and the
// applicant profile
func BuildPrompt(job *models.JobDetails, profile models.ApplicantProfile, maxChars int) string {
	var b strings.Builder

	b.WriteString("Write a concise, professional cover letter for the job application below.\n")
	fmt.Fprintf(&b, "Keep it under %d characters. ", maxChars)
	b.WriteString("Plain text only, no placeholders, no markdown, no subject line. ")
	b.WriteString("Write in the first person and match the language of the job description.\n\n")

	fmt.Fprintf(&b, "Job title: %s\n", job.Title)
	fmt.Fprintf(&b, "Company: %s\n", job.Company)
	if job.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", job.Location)
	}

	if job.Recruiter != "" {
		fmt.Fprintf(&b, "Hiring contact: %s\n", job.Recruiter)
	}

	if job.Description != "" {
		desc := truncateOnRune(job.Description, descriptionPromptLimit)
		fmt.Fprintf(&b, "\nJob description:\n%s\n", desc)
	}

	b.WriteString("\nApplicant:\n")
	fmt.Fprintf(&b, "Name: %s\n", profile.FullName)
	if profile.City != "" {
		fmt.Fprintf(&b, "Based in: %s\n", profile.City)
	}
	if profile.YearsExp != "" {
		fmt.Fprintf(&b, "Years of experience: %s\n", profile.YearsExp)
	}
	if profile.Summary != "" {
		fmt.Fprintf(&b, "Background: %s\n", profile.Summary)
	}

	return b.String()
}

// ClampLetter trims the letter to the limit, cutting at the last sentence
// boundary when one exists so the text never ends mid-word
func ClampLetter(letter string, maxChars int) string {
	letter = strings.TrimSpace(letter)
	if maxChars <= 0 || len(letter) <= maxChars {
		return letter
	}

	clipped := truncateOnRune(letter, maxChars)
	if idx := strings.LastIndex(clipped, "."); idx > maxChars/2 {
		return strings.TrimSpace(clipped[:idx+1])
	}
	return strings.TrimSpace(clipped)
}

// truncateOnRune cuts s to at most max bytes without splitting a rune
func truncateOnRune(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// extractText flattens a Gemini response to its text parts
func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}

	return strings.TrimSpace(b.String())
}
