package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maidclient/internal/client"
	"maidclient/internal/config"
	"maidclient/internal/message"
	"maidclient/internal/routing"
)

// okVault answers every request with success and a fixed health figure.
func okVault(availableSize uint64) routing.VaultFunc {
	return func(_ string, data []byte) ([]byte, bool) {
		env, err := message.DecodeEnvelope(data)
		if err != nil {
			return nil, false
		}
		respKind, ok := env.Kind.ResponseKind()
		if !ok {
			return nil, false
		}
		var frame []byte
		if respKind == message.KindPmidHealthResponse {
			frame, err = message.EncodeEnvelope(respKind, env.ID, message.PmidHealthResponse{
				Result:        message.ReturnCode{Code: message.CodeOK},
				AvailableSize: availableSize,
			})
		} else {
			frame, err = message.EncodeEnvelope(respKind, env.ID, message.CreateAccountResponse{
				Result: message.ReturnCode{Code: message.CodeOK},
			})
		}
		if err != nil {
			return nil, false
		}
		return frame, true
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.SweepInterval = 10 * time.Millisecond

	var c *client.Client
	lb := routing.NewLoopback(cfg.GroupSize, func(data []byte) {
		c.HandleMessage(data)
	}, nil)
	for _, id := range []string{"v1", "v2", "v3", "v4"} {
		lb.AddVault(id, okVault(777))
	}

	var err error
	c, err = client.New(cfg, lb, nil)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	t.Cleanup(c.Close)

	srv := httptest.NewServer(New(c).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateAccountEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/accounts", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var body struct {
		MaidName string `json:"maid_name"`
		Outcome  string `json:"outcome"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.MaidName == "" {
		t.Error("response missing maid_name")
	}
	if body.Outcome != "created" {
		t.Errorf("outcome = %q, want created", body.Outcome)
	}
}

func TestPmidHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/pmids/some-pmid/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		AvailableSize uint64 `json:"available_size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.AvailableSize != 777 {
		t.Errorf("available_size = %d, want 777", body.AvailableSize)
	}
}

func TestRegisterPmidEndpoint_Validation(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/pmids", "application/json",
		strings.NewReader(`{"maid_name":""}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Pending int `json:"pending_operations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Pending != 0 {
		t.Errorf("pending_operations = %d, want 0", body.Pending)
	}
}

func TestRemoveAccountEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/accounts/some-maid", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
