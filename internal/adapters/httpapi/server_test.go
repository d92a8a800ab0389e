package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-registry/internal/adapters/fs"
	"github.com/trebuchet-org/treb-registry/internal/adapters/sqlite"
	"github.com/trebuchet-org/treb-registry/internal/components"
	"github.com/trebuchet-org/treb-registry/internal/config"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

var (
	admin    = common.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	deployer = common.HexToAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
)

type testEnv struct {
	cfg     *config.RuntimeConfig
	store   *fs.StateStoreAdapter
	audit   *sqlite.Store
	catalog *components.Catalog
	log     *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.RuntimeConfig{DataDir: t.TempDir(), From: admin, Admin: admin, Deployer: deployer, NonInteractive: true}
	audit, err := sqlite.Open(context.Background(), filepath.Join(cfg.DataDir, "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = audit.Close() })
	return &testEnv{
		cfg:     cfg,
		store:   fs.NewStateStoreAdapter(cfg),
		audit:   audit,
		catalog: components.NewCatalog(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) session() *usecase.RegistrySession {
	return usecase.NewRegistrySession(e.cfg, e.store, e.audit, e.catalog, e.log)
}

// seed registers a direct BMI and a proxied REWARDS_GENERATOR from a separate
// session. REWARDS_GENERATOR stays uninjected since its dependency is missing.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	m := &domain.Manifest{Components: map[string]domain.ManifestComponent{
		"BMI":               {Artifact: components.TokenArtifact, Init: &domain.ManifestCall{Method: "initialize", Arg: "BMI"}},
		"REWARDS_GENERATOR": {Artifact: components.RewardsGeneratorArtifact, Proxy: true},
	}}
	_, err := usecase.NewApplyManifest(e.session(), nil, e.catalog, usecase.NopProgress{}).
		Run(context.Background(), usecase.ApplyManifestParams{Manifest: m, SkipInject: true})
	require.NoError(t, err)
}

func (e *testEnv) server() *Server {
	session := e.session()
	handler := NewHandler(
		session,
		usecase.NewListComponents(session),
		usecase.NewShowComponent(session, e.catalog),
		usecase.NewResolveComponent(session),
		usecase.NewManageRoles(session, e.cfg, nil),
		usecase.NewListEvents(e.audit),
		e.log,
	)
	return New(&ServerConfig{Log: e.log, GracefulShutdownDuration: time.Second}, handler)
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestHealthAndDrain(t *testing.T) {
	router := newTestEnv(t).server().Router()
	var body map[string]string

	assert.Equal(t, http.StatusOK, get(t, router, "/livez", &body))
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz", &body))

	assert.Equal(t, http.StatusOK, get(t, router, "/drain", &body))
	assert.Equal(t, "draining", body["status"])
	assert.Equal(t, http.StatusOK, get(t, router, "/drain", &body))
	assert.Equal(t, "already draining", body["status"])
	assert.Equal(t, http.StatusServiceUnavailable, get(t, router, "/readyz", &body))

	assert.Equal(t, http.StatusOK, get(t, router, "/undrain", &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, http.StatusOK, get(t, router, "/undrain", &body))
	assert.Equal(t, "already ready", body["status"])
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz", &body))
}

func TestComponentsAPI(t *testing.T) {
	env := newTestEnv(t)
	router := env.server().Router()

	// Empty registry first; the server picks up later changes by itself
	var list usecase.ComponentListResult
	require.Equal(t, http.StatusOK, get(t, router, "/api/components", &list))
	assert.Empty(t, list.Components)

	env.seed(t)

	require.Equal(t, http.StatusOK, get(t, router, "/api/components", &list))
	assert.Equal(t, usecase.ComponentSummary{Total: 2, Direct: 1, Proxied: 1}, list.Summary)

	require.Equal(t, http.StatusOK, get(t, router, "/api/components?kind=PROXIED", &list))
	require.Len(t, list.Components, 1)
	assert.Equal(t, domain.RewardsGenerator, list.Components[0].Name)

	var details usecase.ComponentDetails
	require.Equal(t, http.StatusOK, get(t, router, "/api/components/REWARDS_GENERATOR", &details))
	assert.Equal(t, components.RewardsGeneratorArtifact, details.Artifact)
	assert.Contains(t, details.Bindings, domain.BMICoverStaking)

	var impl usecase.ResolveComponentResult
	require.Equal(t, http.StatusOK, get(t, router, "/api/components/REWARDS_GENERATOR/implementation", &impl))
	assert.Equal(t, list.Components[0].Implementation, impl.Address)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/components/USDT", &errBody))
	assert.Contains(t, errBody["error"], "USDT")
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/components/lower", &errBody))
	assert.Equal(t, http.StatusConflict, get(t, router, "/api/components/BMI/implementation", &errBody))
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/components?kind=OTHER", &errBody))
}

func TestRolesAndEventsAPI(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	router := env.server().Router()

	var role map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/api/roles/REGISTRY_ADMIN/"+admin.Hex(), &role))
	assert.Equal(t, true, role["hasRole"])
	require.Equal(t, http.StatusOK, get(t, router, "/api/roles/REGISTRY_ADMIN/"+deployer.Hex(), &role))
	assert.Equal(t, false, role["hasRole"])

	var errBody map[string]string
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/roles/REGISTRY_ADMIN/nope", &errBody))

	var events []domain.AuditEvent
	require.Equal(t, http.StatusOK, get(t, router, "/api/events?type=ComponentAdded", &events))
	require.Len(t, events, 2)
	assert.Equal(t, domain.BMI, events[0].Name)
	assert.Equal(t, domain.RewardsGenerator, events[1].Name)

	require.Equal(t, http.StatusOK, get(t, router, "/api/events?limit=1", &events))
	require.Len(t, events, 1)
	first := events[0].Seq

	require.Equal(t, http.StatusOK, get(t, router, "/api/events?after=1000", &events))
	assert.Empty(t, events)

	require.Equal(t, http.StatusOK, get(t, router, "/api/events?account="+admin.Hex(), &events))
	assert.NotEmpty(t, events)
	assert.Equal(t, first, events[0].Seq)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/events?after=x", &errBody))
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/events?limit=0", &errBody))
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	srv := env.server()
	srv.cfg.ListenAddr = "127.0.0.1:0"
	srv.srv.Addr = srv.cfg.ListenAddr

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, srv.isReady.Load())
}
