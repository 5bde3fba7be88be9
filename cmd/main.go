// LinkedIn Easy Apply Tool - Educational Purpose Only
// This tool demonstrates browser automation techniques and anti-detection patterns.
// DO NOT use this on live LinkedIn accounts - it violates their Terms of Service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"linkedin-easyapply/internal/browser"
	"linkedin-easyapply/internal/config"
	"linkedin-easyapply/internal/easyapply"
	"linkedin-easyapply/internal/generator"
	"linkedin-easyapply/internal/linkedin/auth"
	"linkedin-easyapply/internal/linkedin/jobs"
	"linkedin-easyapply/internal/models"
	"linkedin-easyapply/internal/stealth"
	"linkedin-easyapply/internal/storage"
)

// Version info
const (
	AppName    = "linkedin-easyapply"
	AppVersion = "1.0.0"
)

// Command line flags
var (
	configPath = flag.String("config", "./config/config.yaml", "Path to config file")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	headless   = flag.Bool("headless", false, "Run in headless mode")
	maxJobs    = flag.Int("max-jobs", 0, "Override the number of jobs to process")
)

// App holds all application dependencies
type App struct {
	config           *config.Config
	logger           zerolog.Logger
	db               *storage.Database
	browser          *browser.Browser
	sessionManager   *browser.SessionManager
	stealth          *stealth.Controller
	authenticator    *auth.Authenticator
	searcher         *jobs.Searcher
	engine           *easyapply.Engine
	generator        *generator.CoverLetterGenerator
	applicationStore *storage.ApplicationStore
	statsStore       *storage.StatsStore
}

func main() {
	flag.Parse()

	printBanner()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]

	app, err := NewApp()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer app.Cleanup()

	app.setupSignalHandler()

	var cmdErr error
	switch command {
	case "login":
		cmdErr = app.cmdLogin()
	case "search":
		cmdErr = app.cmdSearch()
	case "apply":
		cmdErr = app.cmdApply()
	case "run":
		cmdErr = app.cmdRun()
	case "status":
		cmdErr = app.cmdStatus()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		app.logger.Error().Err(cmdErr).Msg("Command failed")
		os.Exit(1)
	}
}

// NewApp creates and initializes the application
func NewApp() (*App, error) {
	app := &App{}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.config = cfg

	// Override with command line flags
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *headless {
		cfg.Browser.Headless = true
	}
	if *maxJobs > 0 {
		cfg.Search.MaxJobs = *maxJobs
	}

	app.setupLogging()
	app.logger.Info().Str("version", AppVersion).Msg("Starting application")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.db = db

	app.applicationStore = storage.NewApplicationStore(db)
	app.statsStore = storage.NewStatsStore(db)

	app.stealth = stealth.NewController(&cfg.Stealth, &cfg.Session, app.logger)
	app.sessionManager = browser.NewSessionManager(cfg.Storage.CookiesPath, app.logger)

	app.engine = easyapply.NewEngine(
		&cfg.Apply,
		cfg.Keywords,
		easyapply.FieldDefaults{
			City:  cfg.Profile.City,
			Phone: cfg.Profile.Phone,
			Years: cfg.Profile.YearsExp,
		},
		app.stealth,
		app.logger,
	)

	app.logger.Info().Msg("Application initialized")
	return app, nil
}

// initBrowser initializes the browser (lazy initialization)
func (app *App) initBrowser() error {
	if app.browser != nil {
		return nil
	}

	app.logger.Info().Msg("Initializing browser")

	b, err := browser.NewBrowser(&app.config.Browser, app.stealth, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	app.browser = b

	if err := app.sessionManager.LoadCookies(b.Browser()); err != nil {
		app.logger.Warn().Err(err).Msg("Failed to load saved cookies")
	}

	app.authenticator = auth.NewAuthenticator(b, app.sessionManager, app.stealth, app.logger)
	app.searcher = jobs.NewSearcher(b, app.statsStore, &app.config.Search, app.stealth, app.logger)

	return nil
}

// restartBrowser tears the browser down and brings a fresh one up. The
// session limiter asks for this when its per-session ceilings are hit.
func (app *App) restartBrowser() error {
	app.logger.Info().Msg("Restarting browser session")

	if app.browser != nil {
		app.sessionManager.SaveCookies(app.browser.Browser())
		app.browser.Close()
		app.browser = nil
	}

	if err := app.initBrowser(); err != nil {
		return err
	}

	if err := app.ensureLoggedIn(); err != nil {
		return err
	}

	app.stealth.Session().ResetSession()
	return nil
}

// initGenerator creates the cover-letter generator on first use
func (app *App) initGenerator() error {
	if app.generator != nil {
		return nil
	}

	gen, err := generator.NewCoverLetterGenerator(
		context.Background(),
		app.config.GeminiAPIKey,
		&app.config.Generator,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize cover-letter generator: %w", err)
	}
	app.generator = gen
	return nil
}

// setupLogging configures the logger
func (app *App) setupLogging() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	level := zerolog.InfoLevel
	switch app.config.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	app.logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Logger = app.logger
}

// setupSignalHandler handles graceful shutdown
func (app *App) setupSignalHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		app.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		app.Cleanup()
		os.Exit(0)
	}()
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	app.logger.Info().Msg("Cleaning up resources")

	if app.browser != nil {
		app.sessionManager.SaveCookies(app.browser.Browser())
		app.browser.Close()
	}

	if app.generator != nil {
		app.generator.Close()
	}

	if app.db != nil {
		app.db.Close()
	}
}

// cmdLogin handles the login command
func (app *App) cmdLogin() error {
	app.logger.Info().Msg("=== Login Command ===")

	if err := app.config.ValidateForLogin(); err != nil {
		return err
	}

	if err := app.initBrowser(); err != nil {
		return err
	}

	result, err := app.authenticator.Login(app.config.LinkedInEmail, app.config.LinkedInPassword)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if result.Success {
		app.logger.Info().Msg("Login successful!")
		if result.SessionSaved {
			app.logger.Info().Msg("Session saved for future use")
		}
	} else {
		if result.CheckpointType != models.CheckpointNone {
			app.logger.Warn().
				Str("checkpoint", string(result.CheckpointType)).
				Msg("Security checkpoint detected")
			fmt.Println("\n" + auth.GetCheckpointInstructions(result.CheckpointType))
			fmt.Println("\nPlease complete the verification in the browser window.")

			page, _ := app.browser.GetPage()
			if err := app.authenticator.WaitForManualResolution(page, 5*time.Minute); err != nil {
				return fmt.Errorf("checkpoint not resolved: %w", err)
			}
			app.logger.Info().Msg("Checkpoint resolved!")
		} else {
			return fmt.Errorf("login failed: %s", result.ErrorMessage)
		}
	}

	return nil
}

// ensureLoggedIn verifies the session and logs in when it is stale
func (app *App) ensureLoggedIn() error {
	valid, err := app.authenticator.VerifySession()
	if err != nil || !valid {
		app.logger.Info().Msg("Session invalid, logging in first")
		return app.cmdLogin()
	}
	return nil
}

// cmdSearch handles the search command
func (app *App) cmdSearch() error {
	app.logger.Info().Msg("=== Search Command ===")

	if err := app.config.ValidateForSearch(); err != nil {
		return err
	}

	if err := app.initBrowser(); err != nil {
		return err
	}

	if err := app.ensureLoggedIn(); err != nil {
		return err
	}

	cards, err := app.searcher.Search(app.searchParams())
	if err != nil {
		return fmt.Errorf("job search failed: %w", err)
	}

	fmt.Printf("\nFound %d jobs:\n", len(cards))
	for i, card := range cards {
		fmt.Printf("  %2d. %s @ %s (%s)\n", i+1, card.Title, card.Company, card.Location)
	}

	return nil
}

// cmdApply handles the apply command: search, then apply to every job the
// rate limiter and daily budget permit
func (app *App) cmdApply() error {
	app.logger.Info().Msg("=== Apply Command ===")

	if err := app.config.ValidateForSearch(); err != nil {
		return err
	}
	if err := app.config.ValidateForApply(); err != nil {
		return err
	}

	if err := app.initBrowser(); err != nil {
		return err
	}

	if err := app.ensureLoggedIn(); err != nil {
		return err
	}

	if !app.stealth.IsWithinSchedule() {
		app.logger.Info().Msg("Outside business hours")
		if app.config.Stealth.BusinessHoursOnly {
			fmt.Println("Waiting for business hours...")
			app.stealth.WaitForSchedule()
		}
	}

	cards, err := app.searcher.Search(app.searchParams())
	if err != nil {
		return fmt.Errorf("job search failed: %w", err)
	}
	if len(cards) == 0 {
		app.logger.Info().Msg("No jobs to process")
		return nil
	}

	applied := 0
	for i, card := range cards {
		canApply, remaining, err := app.statsStore.CanApply(app.config.Session.DailyApplicationsLimit)
		if err != nil {
			app.logger.Warn().Err(err).Msg("Failed to check daily budget")
		} else if !canApply {
			app.logger.Info().Msg("Daily application budget exhausted, stopping")
			break
		} else {
			app.logger.Debug().Int("remaining", remaining).Msg("Daily budget checked")
		}

		if err := app.awaitJobSlot(); err != nil {
			app.logger.Error().Err(err).Msg("Could not obtain a job slot, stopping")
			break
		}

		app.logger.Info().
			Int("job", i+1).
			Int("of", len(cards)).
			Str("title", card.Title).
			Str("company", card.Company).
			Msg("Processing job")

		success, err := app.processJob(card)
		if err != nil {
			app.logger.Warn().Err(err).Str("jobID", card.JobID).Msg("Job processing failed")
			continue
		}
		if success {
			applied++
		}
	}

	app.logger.Info().Int("applied", applied).Int("jobs", len(cards)).Msg("Apply run completed")
	return nil
}

// awaitJobSlot consults the session limiter until it permits the next job,
// waiting out cooldowns and restarting the browser session when asked
func (app *App) awaitJobSlot() error {
	for attempt := 0; attempt < 3; attempt++ {
		switch decision := app.stealth.Session().BeforeJob(); decision {
		case stealth.DecisionPermit:
			return nil

		case stealth.DecisionCooldown:
			wait := app.stealth.Session().CooldownRemaining() + time.Second
			app.logger.Info().Dur("wait", wait).Msg("In cooldown, waiting it out")
			time.Sleep(wait)

		case stealth.DecisionRestartSession:
			if err := app.restartBrowser(); err != nil {
				return fmt.Errorf("session restart failed: %w", err)
			}

		default:
			return fmt.Errorf("unexpected limiter decision: %s", decision)
		}
	}

	return fmt.Errorf("limiter never permitted a job slot")
}

// processJob runs the full per-job pipeline. The returned bool reports
// whether an application was submitted.
func (app *App) processJob(card models.JobCard) (bool, error) {
	// Skip jobs that already reached a terminal state in a previous run
	existing, err := app.applicationStore.GetByURL(card.URL)
	if err != nil {
		return false, err
	}
	if existing != nil && storage.IsTerminal(existing.Status) {
		app.logger.Info().
			Str("jobID", card.JobID).
			Str("status", string(existing.Status)).
			Msg("Job already settled, skipping")
		return false, nil
	}

	record := existing
	if record == nil {
		record = &models.JobApplication{
			LinkedInJobID: card.JobID,
			JobTitle:      card.Title,
			CompanyName:   card.Company,
			JobURL:        card.URL,
			Location:      card.Location,
			Status:        models.StatusViewed,
		}
	}
	if err := app.applicationStore.Save(record); err != nil {
		return false, err
	}

	page, err := app.browser.GetPage()
	if err != nil {
		return false, err
	}

	if err := app.searcher.OpenJob(page, card); err != nil {
		app.handleBlockSignal()
		return false, err
	}

	result := app.engine.LocateApplyButton(page)
	switch result.State {
	case easyapply.ApplyButtonAlreadyApplied:
		app.applicationStore.UpdateStatus(record.ID, models.StatusSkipped, "already applied")
		return false, nil

	case easyapply.ApplyButtonNotFound:
		app.applicationStore.UpdateStatus(record.ID, models.StatusManualReview, "apply button not found")
		return false, nil
	}

	if !result.IsEasyApply {
		app.applicationStore.UpdateStatus(record.ID, models.StatusManualReview, "external application")
		return false, nil
	}

	if _, err := app.engine.ClickWithFallback(page, result.Element); err != nil {
		app.applicationStore.UpdateStatus(record.ID, models.StatusError, "apply button unclickable")
		return false, err
	}

	// First pass runs without a cover letter; most applications never ask
	// for one
	outcome, err := app.engine.RunEasyApply(page, easyapply.ApplyRequest{
		ResumePath: app.config.Profile.ResumePath,
	})
	if err != nil {
		app.captureFailure(page, card)
		app.applicationStore.UpdateStatus(record.ID, models.StatusError, err.Error())
		return false, err
	}

	letter := ""
	if !outcome.Success && outcome.CoverLetterNeeded && app.config.Apply.GenerateCoverLetter {
		letter, err = app.generateLetter(page, card)
		if err != nil {
			app.logger.Warn().Err(err).Msg("Cover letter generation failed, continuing without one")
		}

		if letter != "" {
			retry, retryErr := app.retryWithCoverLetter(page, card, letter)
			if retryErr != nil {
				app.logger.Warn().Err(retryErr).Msg("Retry with cover letter failed")
			} else if retry != nil {
				outcome = retry
			}
		}
	}

	// The record is committed before the limiter hears about the result, so
	// a crash between the two never loses a submitted application
	if outcome.Success {
		notes := ""
		if outcome.CoverLetterLowConfidence && outcome.CoverLetterUsed {
			notes = "cover letter field identified with low confidence"
		}
		if err := app.applicationStore.MarkApplied(record.ID, outcome.CoverLetterUsed, letter, notes); err != nil {
			return false, err
		}
		if err := app.statsStore.IncrementApplications(); err != nil {
			app.logger.Warn().Err(err).Msg("Failed to update application stats")
		}

		app.stealth.Session().OnSuccess()
		app.logger.Info().
			Str("jobID", card.JobID).
			Int("steps", outcome.StepsTaken).
			Bool("coverLetter", outcome.CoverLetterUsed).
			Msg("Application submitted")
		return true, nil
	}

	app.captureFailure(page, card)

	if outcome.CoverLetterNeeded && letter == "" {
		app.applicationStore.UpdateStatus(record.ID, models.StatusManualReview,
			"cover letter required but none could be generated")
		return false, nil
	}

	app.applicationStore.UpdateStatus(record.ID, models.StatusFailed,
		fmt.Sprintf("gave up after %d steps", outcome.StepsTaken))
	return false, nil
}

// generateLetter scrapes the job details and produces a tailored cover letter
func (app *App) generateLetter(page *rod.Page, card models.JobCard) (string, error) {
	if err := app.initGenerator(); err != nil {
		return "", err
	}

	details, err := app.searcher.FetchJobDetails(page, card)
	if err != nil {
		return "", err
	}

	return app.generator.Generate(context.Background(), details, app.config.Profile)
}

// retryWithCoverLetter reopens the job and runs the modal again with the
// generated letter
func (app *App) retryWithCoverLetter(page *rod.Page, card models.JobCard, letter string) (*models.ApplyOutcome, error) {
	app.logger.Info().Str("jobID", card.JobID).Msg("Retrying application with cover letter")

	if err := app.searcher.OpenJob(page, card); err != nil {
		app.handleBlockSignal()
		return nil, err
	}

	result := app.engine.LocateApplyButton(page)
	if result.State != easyapply.ApplyButtonFound || !result.IsEasyApply {
		return nil, fmt.Errorf("apply button no longer available (%s)", result.State)
	}

	if _, err := app.engine.ClickWithFallback(page, result.Element); err != nil {
		return nil, err
	}

	return app.engine.RunEasyApply(page, easyapply.ApplyRequest{
		ResumePath:  app.config.Profile.ResumePath,
		CoverLetter: letter,
	})
}

// handleBlockSignal records a block and lets the limiter decide the backoff
func (app *App) handleBlockSignal() {
	if err := app.statsStore.IncrementBlocks(); err != nil {
		app.logger.Warn().Err(err).Msg("Failed to record block")
	}

	if !app.stealth.Session().OnBlockSignal() {
		app.logger.Warn().
			Dur("cooldown", app.stealth.Session().CooldownRemaining()).
			Msg("Block threshold reached, cooldown active")
	}
}

// captureFailure saves a screenshot of the page for later diagnosis
func (app *App) captureFailure(page *rod.Page, card models.JobCard) {
	filename := filepath.Join(app.config.Browser.ScreenshotDir,
		fmt.Sprintf("apply-failure-%s-%d.png", card.JobID, time.Now().Unix()))
	if err := app.browser.TakeScreenshot(page, filename); err != nil {
		app.logger.Debug().Err(err).Msg("Failed to capture screenshot")
	}
}

// searchParams builds the search parameters from configuration
func (app *App) searchParams() models.SearchParams {
	return models.SearchParams{
		Keywords:  app.config.Search.Keywords,
		Location:  app.config.Search.Location,
		EasyApply: app.config.Search.EasyApplyOnly,
		PostedAge: app.config.Search.PostedAge,
	}
}

// cmdRun handles the full automation run
func (app *App) cmdRun() error {
	app.logger.Info().Msg("=== Full Automation Run ===")

	if err := app.initBrowser(); err != nil {
		return err
	}

	if err := app.cmdLogin(); err != nil {
		return err
	}

	app.logger.Info().Msg("Starting application cycle")

	if err := app.cmdApply(); err != nil {
		app.logger.Warn().Err(err).Msg("Apply run failed")
	}

	app.cmdStatus()

	return nil
}

// cmdStatus prints current status and statistics
func (app *App) cmdStatus() error {
	fmt.Println("\n========== Status ==========")

	total, _ := app.applicationStore.Count()
	applied, _ := app.applicationStore.CountByStatus(models.StatusApplied)
	skipped, _ := app.applicationStore.CountByStatus(models.StatusSkipped)
	manual, _ := app.applicationStore.CountByStatus(models.StatusManualReview)
	failed, _ := app.applicationStore.CountByStatus(models.StatusFailed)

	fmt.Printf("\nApplications:\n")
	fmt.Printf("  Total tracked:   %d\n", total)
	fmt.Printf("  Applied:         %d\n", applied)
	fmt.Printf("  Skipped:         %d\n", skipped)
	fmt.Printf("  Manual review:   %d\n", manual)
	fmt.Printf("  Failed:          %d\n", failed)

	stats, _ := app.statsStore.GetOrCreateToday()
	fmt.Printf("\nToday's Activity:\n")
	fmt.Printf("  Applications sent: %d / %d\n", stats.ApplicationsSent, app.config.Session.DailyApplicationsLimit)
	fmt.Printf("  Jobs viewed:       %d\n", stats.JobsViewed)
	fmt.Printf("  Blocks detected:   %d\n", stats.BlocksDetected)

	fmt.Printf("\nSession:\n")
	if app.sessionManager.HasSavedSession() {
		age, _ := app.sessionManager.GetSessionAge()
		fmt.Printf("  Saved session: %s ago\n", age.Round(time.Minute))
		fmt.Printf("  Valid: %v\n", app.sessionManager.IsSessionValid())
	} else {
		fmt.Printf("  No saved session\n")
	}

	fmt.Println("\n============================")
	return nil
}

// printBanner prints the application banner
func printBanner() {
	fmt.Println(`
╔═══════════════════════════════════════════════════════════════╗
║          LinkedIn Easy Apply Tool - v` + AppVersion + `                   ║
║                                                               ║
║  ⚠️  EDUCATIONAL PURPOSE ONLY - DO NOT USE IN PRODUCTION  ⚠️  ║
║                                                               ║
║  This tool violates LinkedIn's Terms of Service.              ║
║  Using it on real accounts may result in permanent bans.      ║
╚═══════════════════════════════════════════════════════════════╝`)
}

// printUsage prints usage information
func printUsage() {
	fmt.Println(`
Usage: linkedin-easyapply [options] <command>

Commands:
  login     Authenticate with LinkedIn and save session
  search    Search for Easy Apply jobs matching criteria
  apply     Search and apply to matching jobs
  run       Full cycle (login → search → apply → status)
  status    Show current statistics and status
  help      Show this help message

Options:
  -config string    Path to config file (default "./config/config.yaml")
  -log-level string Log level: debug, info, warn, error
  -headless         Run browser in headless mode
  -max-jobs int     Override the number of jobs to process

Examples:
  linkedin-easyapply login
  linkedin-easyapply search
  linkedin-easyapply -log-level debug apply
  linkedin-easyapply -max-jobs 5 run

Configuration:
  1. Copy .env.example to .env and add your LinkedIn credentials
  2. Set GEMINI_API_KEY to enable cover-letter generation
  3. Edit config/config.yaml to customize search and session limits
  4. Run 'linkedin-easyapply login' to authenticate

For more information, see README.md`)
}
