package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/orghealth/ascent/config"
	"github.com/orghealth/ascent/database"
	_ "github.com/orghealth/ascent/docs" // Swagger docs
	adminctrl "github.com/orghealth/ascent/internal/controller/admin"
	publicctrl "github.com/orghealth/ascent/internal/controller/public"
	"github.com/orghealth/ascent/internal/logger"
	"github.com/orghealth/ascent/internal/middleware"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/orghealth/ascent/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Ascent Team Assessment API
// @version 1.0
// @description Multi-tenant team assessment platform: admins run Likert surveys across their teams and purchase a rendered PDF Final Report.
// @contact.name API Support
// @contact.email support@orghealth.example
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			service.NewRedisClient,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewTeamRepository,
			repository.NewTeamMemberRepository,
			repository.NewQuestionRepository,
			repository.NewAssessmentRepository,
			repository.NewParticipantRepository,
			repository.NewAnswerRepository,
			repository.NewFinalReportRepository,
			repository.NewPromoRepository,
			repository.NewInsightRepository,
		),

		fx.Provide(
			service.NewAuthService,
			service.NewMailer,
			service.NewDraftStore,
			service.NewTeamService,
			service.NewAssessmentService,
			service.NewSurveyService,
			service.NewScoringService,
			service.NewInsightService,
			service.NewChartService,
			service.NewReportBuilder,
			service.NewDocRaptorClient,
			service.NewStorageService,
			service.NewReportService,
			service.NewPromoService,
			service.NewPaymentService,
		),

		fx.Provide(
			publicctrl.NewAuthController,
			publicctrl.NewSurveyController,
			publicctrl.NewWebhookController,
			adminctrl.NewTeamController,
			adminctrl.NewAssessmentController,
			adminctrl.NewPaymentController,
			adminctrl.NewReportController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(SeedReferenceData),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	authService service.AuthService,
	authCtrl *publicctrl.AuthController,
	surveyCtrl *publicctrl.SurveyController,
	webhookCtrl *publicctrl.WebhookController,
	teamCtrl *adminctrl.TeamController,
	assessmentCtrl *adminctrl.AssessmentController,
	paymentCtrl *adminctrl.PaymentController,
	reportCtrl *adminctrl.ReportController,
) {
	api := router.Group("/api/v1")
	{
		api.POST("/auth/signup", authCtrl.Signup)
		api.POST("/auth/login", authCtrl.Login)

		// Token-gated participant surveys; no account needed.
		api.GET("/surveys/:token", surveyCtrl.GetSurvey)
		api.POST("/surveys/:token", surveyCtrl.SubmitSurvey)

		api.POST("/webhooks/stripe", webhookCtrl.StripeWebhook)
	}

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(authService))
	{
		authed.DELETE("/auth/account", authCtrl.DeleteAccount)

		authed.POST("/teams", teamCtrl.CreateTeam)
		authed.GET("/teams", teamCtrl.ListTeams)
		authed.GET("/teams/:team_id", teamCtrl.GetTeam)
		authed.PUT("/teams/:team_id", teamCtrl.RenameTeam)
		authed.DELETE("/teams/:team_id", teamCtrl.DeleteTeam)
		authed.POST("/teams/:team_id/members", teamCtrl.AddMember)
		authed.PUT("/members/:member_id", teamCtrl.UpdateMember)
		authed.DELETE("/members/:member_id", teamCtrl.DeleteMember)

		authed.POST("/assessments/drafts", assessmentCtrl.CreateDraft)
		authed.POST("/assessments", assessmentCtrl.Launch)
		authed.GET("/assessments", assessmentCtrl.Overview)
		authed.GET("/assessments/:assessment_id", assessmentCtrl.GetAssessment)
		authed.DELETE("/assessments/:assessment_id", assessmentCtrl.DeleteAssessment)
		authed.POST("/participants/:participant_id/resend", assessmentCtrl.ResendInvite)

		authed.POST("/assessments/:assessment_id/checkout", paymentCtrl.StartCheckout)
		authed.POST("/assessments/:assessment_id/promo-preview", paymentCtrl.PreviewPromo)
		authed.POST("/payments/:payment_intent_id/confirm", paymentCtrl.ConfirmPayment)

		authed.GET("/assessments/:assessment_id/report/status", reportCtrl.ReportStatus)
		authed.GET("/assessments/:assessment_id/report/download", reportCtrl.DownloadReport)
		authed.GET("/reports", reportCtrl.ListReports)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Ascent API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Team{},
		&model.TeamMember{},
		&model.Peak{},
		&model.Question{},
		&model.Assessment{},
		&model.Participant{},
		&model.Answer{},
		&model.FinalReport{},
		&model.PromoCode{},
		&model.Redemption{},
		&model.PeakInsight{},
		&model.PeakAction{},
		&model.ResultsSummary{},
		&model.UniformRangeSummary{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

// SeedReferenceData inserts the four peaks and their question bank on first
// boot. Existing rows are left untouched.
func SeedReferenceData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Peak{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Info().Msg("Seeding peaks and question bank...")

	peaks := map[string]string{
		model.PeakCollaborativeCulture:     "Collaborative Culture",
		model.PeakLeadershipAccountability: "Leadership Accountability",
		model.PeakStrategicMomentum:        "Strategic Momentum",
		model.PeakTalentMagnetism:          "Talent Magnetism",
	}

	questions := map[string][]string{
		model.PeakCollaborativeCulture: {
			"Team members openly share information that others need to do their work.",
			"Disagreements on this team are surfaced and worked through rather than avoided.",
			"People on this team ask for help without worrying how it will look.",
			"Decisions that affect the whole team are made with input from the whole team.",
			"Team members give each other candid feedback in a constructive way.",
		},
		model.PeakLeadershipAccountability: {
			"Leaders on this team follow through on the commitments they make.",
			"When something goes wrong, leaders own the outcome instead of assigning blame.",
			"Expectations for each role on this team are clear and consistently applied.",
			"Leaders address underperformance promptly and fairly.",
			"Leaders model the standards of behavior they expect from everyone else.",
		},
		model.PeakStrategicMomentum: {
			"This team has a clear picture of where it is headed over the next year.",
			"Priorities are stable enough that work started is usually work finished.",
			"The team regularly reviews progress against its goals and adjusts course.",
			"Day-to-day work on this team connects visibly to the larger strategy.",
			"This team makes decisions at the pace the business requires.",
		},
		model.PeakTalentMagnetism: {
			"Talented people want to join this team.",
			"Team members see a path to grow their skills and careers here.",
			"Strong performance on this team is recognized and rewarded.",
			"People rarely leave this team for avoidable reasons.",
			"New team members are set up to succeed from their first week.",
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, code := range model.CanonicalPeakOrder {
			peak := model.Peak{Code: code, Name: peaks[code]}
			if err := tx.Create(&peak).Error; err != nil {
				return err
			}
			for i, text := range questions[code] {
				q := model.Question{PeakID: peak.ID, Text: text, Order: i + 1}
				if err := tx.Create(&q).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
