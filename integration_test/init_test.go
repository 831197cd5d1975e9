package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/invoicebox/backend/api"
	"github.com/invoicebox/backend/infra"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/repositories/httpmodels"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

const (
	testDbLifetime = 120 // seconds
	testUser       = "postgres"
	testPassword   = "pwd"
	testDbName     = "invoicebox"
)

var (
	testServer *httptest.Server
	mailbox    *fakeMailbox
)

// fakeMailbox stands in for the mail provider and keeps the last link sent per template and recipient
type fakeMailbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *fakeMailbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req httpmodels.HTTPMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	link, _ := req.Template.Data["link"].(string)

	m.mu.Lock()
	for _, to := range req.To {
		m.links[req.Template.Alias+":"+to] = link
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(httpmodels.HTTPMailResponse{Id: "test"})
}

// tokenSentTo returns the token carried by the last link of the given template sent to email
func (m *fakeMailbox) tokenSentTo(purpose models.NotificationPurpose, email string) string {
	m.mu.Lock()
	link := m.links[string(purpose)+":"+email]
	m.mu.Unlock()

	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("token")
}

func testTokenConfiguration() models.TokenConfiguration {
	policies := map[models.TokenPurpose]models.TokenPolicy{
		models.TokenPurposeAccess: {Secret: []byte("access-secret"), Lifetime: 15 * time.Minute},
	}
	for _, purpose := range models.SingleUseTokenPurposes {
		policies[purpose] = models.TokenPolicy{
			Secret:   []byte(string(purpose) + "-secret"),
			Lifetime: time.Hour,
		}
	}
	return models.TokenConfiguration{Issuer: "invoicebox-test", Policies: policies}
}

func TestMain(m *testing.M) {
	ctx := context.Background()
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		log.Printf("Could not connect to Docker, skipping the integration tests: %s", err)
		os.Exit(0)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			fmt.Sprintf("POSTGRES_PASSWORD=%s", testPassword),
			fmt.Sprintf("POSTGRES_USER=%s", testUser),
			fmt.Sprintf("POSTGRES_DB=%s", testDbName),
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}
	if err = resource.Expire(testDbLifetime); err != nil {
		log.Fatalf("Could not set container lifetime: %s", err)
	}
	pool.MaxWait = testDbLifetime * time.Second

	hostAndPort := resource.GetHostPort("5432/tcp")
	pgConfig := infra.PgConfig{
		ConnectionString: fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
			testUser, testPassword, hostAndPort, testDbName),
	}

	logger := utils.NewLogger("text")
	ctx = utils.StoreLoggerInContext(ctx, logger)

	telemetry := infra.NoopTelemetry()
	dbPool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		telemetry.TracerProvider, pgConfig.MaxPoolConnections)
	if err != nil {
		log.Fatalf("Could not create connection pool: %s", err)
	}
	if err = pool.Retry(func() error {
		return dbPool.Ping(ctx)
	}); err != nil {
		log.Fatalf("Could not connect to db: %s", err)
	}

	if err = repositories.NewMigrater(pgConfig).Run(ctx); err != nil {
		log.Fatalf("Could not run migrations: %s", err)
	}

	mailbox = &fakeMailbox{links: make(map[string]string)}
	mailServer := httptest.NewServer(mailbox)

	appUrl := "http://localhost:3000"
	repos := repositories.NewRepositories(dbPool,
		repositories.WithTokenConfiguration(testTokenConfiguration()),
		repositories.WithMailer(models.MailerConfiguration{
			ApiUrl:      mailServer.URL,
			ApiKey:      "test-key",
			SenderEmail: "no-reply@invoicebox.test",
		}),
	)
	uc := usecases.NewUsecases(repos,
		usecases.WithApiVersion("test"),
		usecases.WithAppUrl(appUrl),
		usecases.WithInboundMail(models.InboundMailConfiguration{MailDomain: "in.invoicebox.test"}),
	)
	if err = uc.NewRoleRegistry().EnsureDefaultRoles(ctx); err != nil {
		log.Fatalf("Could not create the default roles: %s", err)
	}

	apiConfig := api.Configuration{
		Env:            "development",
		AppName:        "invoicebox-backend-test",
		AppUrl:         appUrl,
		Port:           "0",
		DefaultTimeout: 10 * time.Second,
		LoginRateLimit: 100,
		LoginBurst:     100,
	}
	deps := api.InitDependencies(apiConfig, uc)
	router := api.InitRouterMiddlewares(ctx, apiConfig, deps.SegmentClient, telemetry)
	server := api.NewServer(router, apiConfig, uc, deps.Authentication, api.WithLocalTest(true))
	testServer = httptest.NewServer(server.Handler)

	code := m.Run()

	testServer.Close()
	mailServer.Close()
	dbPool.Close()
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge resource: %s", err)
	}

	os.Exit(code)
}
