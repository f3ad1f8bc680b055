package pages

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/cadastro/internal/apiclient"
	"github.com/odyssey-erp/cadastro/internal/cep"
	"github.com/odyssey-erp/cadastro/internal/masterdata/customers"
	"github.com/odyssey-erp/cadastro/internal/masterdata/products"
	"github.com/odyssey-erp/cadastro/internal/records"
	"github.com/odyssey-erp/cadastro/internal/shared"
	"github.com/odyssey-erp/cadastro/internal/view"
	_ "github.com/odyssey-erp/cadastro/testing"
)

// backend is an in-memory REST collection server.
type backend struct {
	mu       sync.Mutex
	items    map[string][]map[string]any
	nextID   int
	failCode int
	failBody string
	// failMethod limits the failure to one HTTP method when set.
	failMethod string
	requests   []string
	bodies     []map[string]any
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	if b.failCode != 0 && (b.failMethod == "" || b.failMethod == r.Method) {
		w.WriteHeader(b.failCode)
		_, _ = io.WriteString(w, b.failBody)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	collection := parts[0]
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && len(parts) == 1:
		items := b.items[collection]
		if items == nil {
			items = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(items)
	case r.Method == http.MethodGet:
		for _, item := range b.items[collection] {
			if idOf(item) == parts[1] {
				_ = json.NewEncoder(w).Encode(item)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.bodies = append(b.bodies, body)
		b.nextID++
		body["id"] = b.nextID
		b.items[collection] = append(b.items[collection], body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodPut:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.bodies = append(b.bodies, body)
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodDelete:
		kept := b.items[collection][:0]
		for _, item := range b.items[collection] {
			if idOf(item) != parts[1] {
				kept = append(kept, item)
			}
		}
		b.items[collection] = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

func (b *backend) fail(code int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCode, b.failBody = code, body
}

func (b *backend) failOn(method string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMethod, b.failCode = method, code
}

func (b *backend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *backend) lastBody() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.bodies) == 0 {
		return nil
	}
	return b.bodies[len(b.bodies)-1]
}

func idOf(item map[string]any) string {
	switch v := item["id"].(type) {
	case float64:
		return strconv.Itoa(int(v))
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	}
	return ""
}

type stubLookup struct {
	addr cep.Address
	err  error
}

func (s stubLookup) Lookup(_ context.Context, code string) (cep.Address, error) {
	if _, err := cep.Normalize(code); err != nil {
		return cep.Address{}, err
	}
	return s.addr, s.err
}

type auditRow struct {
	Action   string
	Entity   string
	EntityID string
}

// auditTrail records the rows the audit logger inserts.
type auditTrail struct {
	mu   sync.Mutex
	rows []auditRow
}

func (a *auditTrail) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, auditRow{Action: args[1].(string), Entity: args[2].(string), EntityID: args[3].(string)})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (a *auditTrail) entries() []auditRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditRow(nil), a.rows...)
}

type harness struct {
	backend *backend
	audit   *auditTrail
	session *shared.Session
	router  chi.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := &backend{items: map[string][]map[string]any{
		"clientes": {
			{"id": 5, "nome": "Ana", "cpf": "11144477735", "email": "ana@example.com", "endereco": map[string]any{"cep": "01001-000", "cidade": "São Paulo", "estado": "SP", "pais": "Brasil"}},
			{"id": 7, "nome": "Bruno", "cpf": "52998224725", "email": "bruno@example.com", "endereco": map[string]any{"cep": "20040-002", "cidade": "Rio de Janeiro", "estado": "RJ", "pais": "Brasil"}},
		},
		"produtos": {},
	}, nextID: 100}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	api, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	engine, err := view.NewEngine()
	require.NoError(t, err)

	sm := shared.NewSessionManager(nil, "cadastro_session", 0, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	trail := &auditTrail{}
	deps := &Deps{
		Templates: engine,
		CSRF:      shared.NewCSRFManager("test-secret"),
		Vault:     shared.NewTokenVault("test-secret"),
		Audit:     shared.NewAuditLogger(trail, nil),
	}
	validator := records.NewValidator()
	lookup := stubLookup{addr: cep.Address{PostalCode: "01001-000", Street: "Praça da Sé", District: "Sé", City: "São Paulo", State: "SP"}}
	clientPages := NewEntity(deps, customers.Descriptor(), api, lookup, validator)
	productPages := NewEntity(deps, products.Descriptor(), api, nil, validator)
	deps.Nav = []view.NavItem{{Label: "Início", Path: "/"}, clientPages.NavItem(), productPages.NavItem()}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
		})
	})
	for _, m := range []Mounter{clientPages, productPages, NewHome(deps, deps.Nav[1:]), NewToken(deps), NewPostalCode(lookup)} {
		m.MountRoutes(r)
	}
	return &harness{backend: b, audit: trail, session: sess, router: r}
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func validProduct() url.Values {
	return url.Values{
		"nome":       {"Caneta"},
		"descricao":  {"Azul"},
		"preco":      {"10,50"},
		"quantidade": {"3"},
		"acao":       {"salvar"},
	}
}

func TestListRendersRows(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/listar-clientes")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Lista de Clientes")
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "Bruno")
	assert.Contains(t, body, "Ver Endereço")
	assert.Contains(t, body, "111.444.777-35")
}

func TestListSearchFiltersRows(t *testing.T) {
	h := newHarness(t)
	body := h.get("/listar-clientes?q=bruno").Body.String()
	assert.Contains(t, body, "Bruno")
	assert.NotContains(t, body, `data-id="5"`)
}

func TestListAsksBeforeDeleting(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/listar-clientes?excluir=7")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Confirmar Exclusão")
	assert.Contains(t, body, "Tem certeza que deseja excluir o cliente")
	assert.Contains(t, body, `action="/listar-clientes/excluir/7"`)
	assert.NotContains(t, h.backend.seen(), "DELETE /clientes/7")
}

func TestListUnknownSelection(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/listar-clientes?excluir=999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registro não encontrado.")
}

func TestListShowsAddressInfo(t *testing.T) {
	h := newHarness(t)
	body := h.get("/listar-clientes?info=5").Body.String()
	assert.Contains(t, body, "Endereço do Cliente")
	assert.Contains(t, body, "São Paulo")
}

func TestDeleteRedirectsAndShowsNoticeOnce(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/listar-clientes/excluir/7", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/listar-clientes", rec.Header().Get("Location"))
	assert.Contains(t, h.backend.seen(), "DELETE /clientes/7")

	body := h.get("/listar-clientes").Body.String()
	assert.Contains(t, body, "Cliente excluído com sucesso!")
	assert.Contains(t, body, `data-dismiss-after="2000"`)
	assert.NotContains(t, body, `data-id="7"`)
	assert.Contains(t, body, `data-id="5"`)

	body = h.get("/listar-clientes").Body.String()
	assert.NotContains(t, body, "Cliente excluído com sucesso!")
}

func TestDeleteAuditsRecordID(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/listar-clientes/excluir/7", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []auditRow{{Action: shared.AuditDelete, Entity: "clientes", EntityID: "7"}}, h.audit.entries())
}

func TestDeleteFailureKeepsDialog(t *testing.T) {
	h := newHarness(t)
	h.backend.failOn(http.MethodDelete, http.StatusServiceUnavailable)

	rec := h.post("/listar-clientes/excluir/7", url.Values{})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Não foi possível excluir o cliente. Tente novamente.")
	assert.Contains(t, body, "Confirmar Exclusão")
	assert.Contains(t, body, `data-id="7"`)
	assert.NotContains(t, body, "Cliente excluído com sucesso!")
}

func TestDeleteUnknownRecord(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/listar-clientes/excluir/abc", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, h.backend.seen(), "DELETE /clientes/abc")
}

func TestDeleteRejectsUnsafeID(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/listar-clientes/excluir/..", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.backend.seen())
}

func TestListBackendFailureShowsBanner(t *testing.T) {
	h := newHarness(t)
	h.backend.fail(http.StatusInternalServerError, "")
	rec := h.get("/listar-clientes")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Não foi possível carregar a lista de clientes.")
}

func TestExportReturnsWorkbook(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/listar-clientes/exportar.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "clientes.xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestCreateProductShowsSuccessDialog(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/add-produtos", validProduct())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Produto adicionado com sucesso!")
	assert.Contains(t, body, "Adicionar outro Produto")
	assert.Contains(t, h.backend.seen(), "POST /produtos")
	assert.Equal(t, 10.5, h.backend.lastBody()["preco"])
	assert.Equal(t, []auditRow{{Action: shared.AuditCreate, Entity: "produtos", EntityID: "101"}}, h.audit.entries())
}

func TestCreateRejectsUnparsablePrice(t *testing.T) {
	h := newHarness(t)
	form := validProduct()
	form.Set("preco", "dez")
	rec := h.post("/add-produtos", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ocorreu um ou mais erros:")
	assert.Empty(t, h.backend.seen())
}

func TestCreateBackendValidationMessages(t *testing.T) {
	h := newHarness(t)
	h.backend.fail(http.StatusBadRequest, `{"cpf":"CPF inválido","email":"Email já cadastrado"}`)
	form := url.Values{
		"nome":                 {"Carla"},
		"cpf":                  {"111.444.777-35"},
		"email":                {"carla@example.com"},
		"endereco.cep":         {"01001-000"},
		"endereco.logradouro":  {"Praça da Sé"},
		"endereco.numero":      {"1"},
		"endereco.bairro":      {"Sé"},
		"endereco.cidade":      {"São Paulo"},
		"endereco.estado":      {"SP"},
		"endereco.pais":        {"Brasil"},
		"endereco.complemento": {""},
		"acao":                 {"salvar"},
	}
	rec := h.post("/add-clientes", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "CPF inválido")
	assert.Contains(t, body, "Email já cadastrado")
	assert.Less(t, strings.Index(body, "CPF inválido"), strings.Index(body, "Email já cadastrado"))
}

func TestCreateServerErrorShowsGenericMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.fail(http.StatusInternalServerError, `{"detail":"boom"}`)
	rec := h.post("/add-produtos", validProduct())
	assert.Contains(t, rec.Body.String(), records.ServerErrorMessage)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCloseSuccessRedirectsToList(t *testing.T) {
	h := newHarness(t)
	form := validProduct()
	form.Set("acao", "fechar")
	rec := h.post("/add-produtos", form)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/listar-produtos", rec.Header().Get("Location"))
}

func TestAddAnotherRendersEmptyForm(t *testing.T) {
	h := newHarness(t)
	form := validProduct()
	form.Set("acao", "outro")
	rec := h.post("/add-produtos", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `value="Caneta"`)
	assert.Empty(t, h.backend.seen())
}

func TestPostalCodeActionFillsAddress(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/add-clientes", url.Values{
		"nome":         {"Carla"},
		"endereco.cep": {"01001-000"},
		"acao":         {"cep"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Praça da Sé"`)
	assert.Contains(t, body, `value="Carla"`)
	assert.NotContains(t, body, "Ocorreu um ou mais erros:")
}

func TestEditLoadsRecord(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/edit-clientes/5")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Editar Cliente")
	assert.Contains(t, body, `value="Ana"`)
	assert.Contains(t, body, `action="/edit-clientes/5"`)
}

func TestHelpTooltipOpensFromQuery(t *testing.T) {
	h := newHarness(t)
	body := h.get("/add-produtos?ajuda=1").Body.String()
	assert.Contains(t, body, "Nesta tela, você pode adicionar um novo produto ao sistema.")
	assert.NotContains(t, body, `id="form-help" class="tooltip" hidden`)
}

func TestPostalCodeEndpoint(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/cep/01001000")
	require.Equal(t, http.StatusOK, rec.Code)
	var addr cep.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addr))
	assert.Equal(t, "São Paulo", addr.City)

	rec = h.get("/cep/123")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenPageStoresCredentials(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/token", url.Values{"operador": {" maria "}, "token": {"abc"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "maria", h.session.Operator())

	ctx := shared.ContextWithSession(context.Background(), h.session)
	token, err := shared.SessionCredentials{Vault: shared.NewTokenVault("test-secret")}.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	rec = h.post("/token/limpar", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	token, err = shared.SessionCredentials{Vault: shared.NewTokenVault("test-secret")}.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestHomeListsSections(t *testing.T) {
	h := newHarness(t)
	body := h.get("/").Body.String()
	assert.Contains(t, body, `href="/listar-clientes"`)
	assert.Contains(t, body, `href="/listar-produtos"`)
}
