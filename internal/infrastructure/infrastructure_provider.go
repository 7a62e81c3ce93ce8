package infrastructure

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/domain/kyc"
	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/domain/ticket"
	"betline-server/services/support-api/internal/infrastructure/crontab"
	"betline-server/services/support-api/internal/infrastructure/database"
	"betline-server/services/support-api/internal/infrastructure/database/repository/betrepo"
	"betline-server/services/support-api/internal/infrastructure/database/repository/playerrepo"
	"betline-server/services/support-api/internal/infrastructure/database/repository/sessionrepo"
	"betline-server/services/support-api/internal/infrastructure/logger"
	"betline-server/services/support-api/internal/infrastructure/nlpclient"
	"betline-server/services/support-api/internal/infrastructure/ocrclient"
	"betline-server/services/support-api/internal/infrastructure/search"
	"betline-server/services/support-api/internal/infrastructure/vision"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Run migrations if AUTO_MIGRATE is enabled
	if cfg.AutoMigrate {
		log.Info().Msg("Running database migrations...")
		if err := database.Migration(db, "support_api."); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
		log.Info().Msg("Database migrations completed successfully")
	}

	return db, nil
}

// ProvideExtractionGateway assembles the capability fallback chains. The
// vision provider leads every image chain with the OCR service behind it,
// and the web-grounded generator leads answering with the plain model
// behind it.
func ProvideExtractionGateway(
	cfg *config.Config,
	visionClient *vision.Client,
	nlpClient *nlpclient.Client,
	ocrClient *ocrclient.Client,
) *extraction.Gateway {
	searchClient := search.NewClient(cfg)
	webGenerator := search.NewGenerator(searchClient, visionClient)

	return extraction.NewGateway(
		nlpClient,
		nlpClient,
		[]extraction.TicketIDExtractor{visionClient, ocrClient},
		[]extraction.DocumentFieldExtractor{visionClient, ocrClient},
		visionClient,
		visionClient,
		[]extraction.AnswerGenerator{webGenerator, visionClient},
	)
}

// ProvideCrontab schedules the idle-session sweep and collaborator health
// probes.
func ProvideCrontab(sessions *session.Service, nlpClient *nlpclient.Client, ocrClient *ocrclient.Client) *crontab.Crontab {
	return crontab.NewCrontab(sessions, []crontab.HealthProbe{nlpClient, ocrClient})
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// Database
	ProvideDatabase,

	// Repositories
	sessionrepo.NewRepository,
	wire.Bind(new(session.Repository), new(*sessionrepo.Repository)),
	betrepo.NewRepository,
	wire.Bind(new(ticket.LedgerRepository), new(*betrepo.Repository)),
	playerrepo.NewRepository,
	wire.Bind(new(kyc.PlayerRepository), new(*playerrepo.Repository)),

	// Extraction collaborators
	vision.NewClient,
	nlpclient.NewClient,
	ocrclient.NewClient,
	ProvideExtractionGateway,

	// Logger
	logger.GetLogger,

	// Crontab for session sweep and health probes
	ProvideCrontab,
)
