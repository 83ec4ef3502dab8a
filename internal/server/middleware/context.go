package middleware

import (
	"github.com/taxmitra/grievance/internal/storage"
	"github.com/taxmitra/grievance/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/taxmitra/grievance/pkg/ai"
	oai "github.com/taxmitra/grievance/pkg/ai/ollama"
	gai "github.com/taxmitra/grievance/pkg/ai/openai"
	"github.com/taxmitra/grievance/pkg/graph"
	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/store"
	storepgx "github.com/taxmitra/grievance/pkg/store/pgx"
	"github.com/taxmitra/grievance/pkg/workflow"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

type App struct {
	DBConn         *pgxpool.Pool
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	S3             *s3.Client
	AiClient       ai.TaxAIClient
	Sessions       store.SessionStore
	Index          store.VectorIndex
	Pipeline       *workflow.Pipeline
	KBMeta         *storage.KBMetadata
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	s3 *s3.Client,
	g *graph.RelationGraph,
	kbMeta *storage.KBMetadata,
	masterAPIKey string,
	masterUserID int64,
	masterUserRole string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			adapter := util.GetEnv("AI_ADAPTER")
			var aiClient ai.TaxAIClient

			switch adapter {
			case "ollama":
				client, err := oai.NewTaxOllamaClient(oai.NewTaxOllamaClientParams{
					EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
					CompletionModel: util.GetEnv("AI_CHAT_MODEL"),
					ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

					BaseURL: util.GetEnv("AI_CHAT_URL"),
					ApiKey:  util.GetEnv("AI_CHAT_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
				})
				if err != nil {
					logger.Fatal("Failed to create Ollama client", "err", err)
				}
				aiClient = client
			default:
				aiClient = gai.NewTaxOpenAIClient(gai.NewTaxOpenAIClientParams{
					EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
					CompletionModel: util.GetEnv("AI_CHAT_MODEL"),
					ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

					EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
					EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
					ChatURL:      util.GetEnv("AI_CHAT_URL"),
					ChatKey:      util.GetEnv("AI_CHAT_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
				})
			}

			taxStore := storepgx.NewTaxDBStorage(db)
			pipeline := workflow.NewPipelineFromEnv(workflow.NewPipelineFromEnvParams{
				AIClient: aiClient,
				Index:    taxStore,
				Graph:    g,
			})

			app := &App{
				DBConn:         db,
				Queue:          queue,
				Key:            key,
				S3:             s3,
				AiClient:       aiClient,
				Sessions:       taxStore,
				Index:          taxStore,
				Pipeline:       pipeline,
				KBMeta:         kbMeta,
				MasterAPIKey:   masterAPIKey,
				MasterUserID:   masterUserID,
				MasterUserRole: masterUserRole,
			}
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
