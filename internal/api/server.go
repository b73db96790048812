package api

import (
	"fmt"
	"time"

	"github.com/SundayYogurt/visa_service/config"
	"github.com/SundayYogurt/visa_service/infra/queue"
	"github.com/SundayYogurt/visa_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/visa_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/helper/utils"
	"github.com/SundayYogurt/visa_service/internal/interfaces"
	"github.com/SundayYogurt/visa_service/internal/repository"
	"github.com/SundayYogurt/visa_service/internal/services"
	"github.com/SundayYogurt/visa_service/pkg/cloudinary"
	"github.com/SundayYogurt/visa_service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// migrateLockID serialises AutoMigrate across replicas starting at the same time.
const migrateLockID int64 = 20260315

type Server struct {
	App      *fiber.App
	DB       *gorm.DB
	Producer *queue.Producer
	cfg      config.Config
}

func NewServer(cfg config.Config) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      "visa-service",
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    25 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// ---------- Middleware ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.AccessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.ResponseError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	}))

	// ---------- DB ----------
	logLevel := gormlogger.Warn
	if cfg.Env == "prod" {
		logLevel = gormlogger.Error
	}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	logger.Info().Msg("database connected")

	if err := migrate(db); err != nil {
		return nil, err
	}

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword)
	var producer interfaces.ProducerHandler
	if kafkaProducer != nil {
		producer = kafkaProducer
	} else {
		logger.Warn().Msg("KAFKA_BROKER not set, notifications disabled")
	}

	var uploader interfaces.Uploader
	if cld, err := cloudinary.New(cfg.CloudinaryUrl); err != nil {
		logger.Warn().Err(err).Msg("cloudinary not configured, uploads disabled")
	} else {
		uploader = cloudinary.NewCloudinaryUploader(cld)
	}

	authHelper := helper.SetupAuth(cfg.AccessSecret, helper.NewTokenCache(cfg.TokenCacheTTL))

	// ---------- Repositories ----------
	countryRepo := repository.NewCountryRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// ---------- Services ----------
	catalogSvc := services.NewCatalogService(countryRepo, requirementRepo, auditRepo)
	documentSvc := services.NewDocumentService(
		documentRepo,
		requirementRepo,
		verificationRepo,
		countryRepo,
		studentRepo,
		auditRepo,
		uploader,
		producer,
	)
	verificationSvc := services.NewVerificationService(
		verificationRepo,
		countryRepo,
		staffRepo,
		studentRepo,
		auditRepo,
		producer,
	)
	ticketSvc := services.NewTicketService(ticketRepo, studentRepo, staffRepo, auditRepo, producer)

	// ---------- Handlers ----------
	portals := handlers.Portals{
		Student:   app.Group("/api/student", middleware.AuthMiddleware(authHelper, domain.RoleStudent)),
		Associate: app.Group("/api/associate", middleware.AuthMiddleware(authHelper, domain.RoleAssociate, domain.RoleDirector)),
	}
	handlers.NewCatalogHandler(catalogSvc, authHelper).SetupRoutes(portals)
	handlers.NewVerificationHandler(verificationSvc, authHelper).SetupRoutes(portals)
	handlers.NewDocumentHandler(documentSvc, authHelper).SetupRoutes(portals)
	handlers.NewTicketHandler(ticketSvc, authHelper).SetupRoutes(portals)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return &Server{App: app, DB: db, Producer: kafkaProducer, cfg: cfg}, nil
}

func (s *Server) Listen() error {
	logger.Info().Str("addr", s.cfg.ServerPort).Msg("listening")
	return s.App.Listen(s.cfg.ServerPort)
}

// Shutdown drains in-flight requests and releases the producer and database.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.App.ShutdownWithTimeout(timeout)
	if cerr := s.Producer.Close(); cerr != nil {
		logger.Warn().Err(cerr).Msg("close kafka producer")
	}
	if sqlDB, derr := s.DB.DB(); derr == nil {
		_ = sqlDB.Close()
	}
	return err
}

func migrate(db *gorm.DB) error {
	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		return fmt.Errorf("migration lock: %w", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.Staff{},
		&domain.Student{},
		&domain.Country{},
		&domain.DocumentRequirement{},
		&domain.VerificationRequest{},
		&domain.StudentDocument{},
		&domain.Ticket{},
		&domain.TicketMessage{},
		&domain.AuditLog{},
	); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	logger.Info().Msg("migration successful")
	return nil
}
