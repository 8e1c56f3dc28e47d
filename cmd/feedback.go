package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/learning"
	"github.com/prasukj7-arch/internmatch/internal/logger"
	"github.com/prasukj7-arch/internmatch/internal/store"
)

const promptDone = "done"

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Review pending applications interactively as a recruiter",
	Run: func(_ *cobra.Command, _ []string) {
		runFeedback()
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().StringP("recruiter", "r", "recruiter-001", "recruiter identifier recorded with each review")

	viper.BindPFlag("recruiter-id", feedbackCmd.Flags().Lookup("recruiter"))
}

func runFeedback() {
	ctx := context.Background()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		cobra.CheckErr(err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	if config.Database == nil || config.Database.DSN == "" {
		log.Fatal("a database is required to review applications",
			zap.String("hint", "set the 'database.dsn' key in the configuration file"))
	}

	st, err := store.NewPostgres(config.Database.DSN)
	if err != nil {
		log.Fatal("connecting to the database", zap.Error(err))
	}

	learner := learning.NewLearner(st, log)
	restoreLearner(learner, config.LearningState, log)

	recruiterID := viper.GetString("recruiter-id")

	for {
		app, err := pickApplication(ctx, st)
		if err != nil {
			if errors.Is(err, errNoPending) {
				log.Info("no pending applications left")
				break
			}
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, errDone) {
				break
			}
			log.Fatal("selecting an application", zap.Error(err))
		}

		fb, err := collectReview(app, recruiterID)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				break
			}
			log.Fatal("collecting the review", zap.Error(err))
		}

		if err := st.UpdateApplicationStatus(ctx, app.ID, fb.Decision, recruiterID); err != nil {
			log.Fatal("updating the application", zap.Error(err))
		}
		if err := st.SaveFeedback(ctx, fb); err != nil {
			log.Fatal("saving the feedback", zap.Error(err))
		}

		learner.ProcessFeedback(ctx, fb)

		log.Info("application reviewed",
			zap.String("application_id", app.ID),
			zap.String("decision", fb.Decision))
	}

	persistLearner(learner, config.LearningState, log)
}

var (
	errNoPending = errors.New("no pending applications")
	errDone      = errors.New("done requested")
)

func pickApplication(ctx context.Context, st store.Store) (*store.Application, error) {
	pending, err := st.PendingApplications(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, errNoPending
	}

	items := make([]string, 0, len(pending)+1)
	for _, app := range pending {
		items = append(items, fmt.Sprintf("%s %s / %s / %s", app.ID, app.Profile.Name, app.Company, app.Title))
	}
	items = append(items, promptDone)

	prompt := promptui.Select{
		Label: "Choose an application and press ENTER",
		Items: items,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == promptDone {
		return nil, errDone
	}

	id := strings.Split(selected, " ")[0]
	for _, app := range pending {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, fmt.Errorf("there is no such application id %s", id)
}

func collectReview(app *store.Application, recruiterID string) (*store.Feedback, error) {
	decisionPrompt := promptui.Select{
		Label: "Decision",
		Items: []string{store.DecisionAccepted, store.DecisionRejected},
	}
	_, decision, err := decisionPrompt.Run()
	if err != nil {
		return nil, err
	}

	scorePrompt := promptui.Prompt{
		Label: "Recommendation score (1-10)",
		Validate: func(input string) error {
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > 10 {
				return errors.New("enter a number between 1 and 10")
			}
			return nil
		},
	}
	scoreRaw, err := scorePrompt.Run()
	if err != nil {
		return nil, err
	}
	score, _ := strconv.Atoi(scoreRaw)

	text, err := (&promptui.Prompt{Label: "Feedback text"}).Run()
	if err != nil {
		return nil, err
	}

	strengths, err := promptList("Strengths (comma separated)")
	if err != nil {
		return nil, err
	}
	gaps, err := promptList("Skill gaps (comma separated)")
	if err != nil {
		return nil, err
	}
	improvements, err := promptList("Areas for improvement (comma separated)")
	if err != nil {
		return nil, err
	}

	return &store.Feedback{
		ApplicationID:       app.ID,
		CandidateID:         app.CandidateID,
		RecruiterID:         recruiterID,
		Decision:            decision,
		Text:                text,
		Strengths:           strengths,
		SkillGaps:           gaps,
		AreasForImprovement: improvements,
		Score:               score,
	}, nil
}

func promptList(label string) ([]string, error) {
	raw, err := (&promptui.Prompt{Label: label}).Run()
	if err != nil {
		return nil, err
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}
