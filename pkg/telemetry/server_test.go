package telemetry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/JH-ESCL/helimix/pkg/heli"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	m, err := heli.NewMixer(heli.DefaultParams(), nil)
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	return NewServer(heli.NewLoop(m, heli.LogOutput{}), "0")
}

func get(t *testing.T, s *Server, path string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func postJSON(t *testing.T, s *Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func TestServer_Status(t *testing.T) {
	s := testServer(t)
	resp := get(t, s, "/api/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code: %d", resp.StatusCode)
	}
	var status heli.LoopStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.RotorState != "stop" {
		t.Errorf("rotor state: got %q, want stop", status.RotorState)
	}
	if status.MotorMask == 0 {
		t.Error("motor mask empty")
	}
}

func TestServer_PreArm(t *testing.T) {
	s := testServer(t)
	resp := get(t, s, "/api/prearm")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code: %d", resp.StatusCode)
	}
	var body struct {
		OK     bool   `json:"ok"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK {
		t.Errorf("pre-arm failed: %s", body.Reason)
	}
}

func TestServer_Command(t *testing.T) {
	s := testServer(t)
	resp := postJSON(t, s, "/api/command", map[string]float64{
		"roll": 0.1, "pitch": -0.2, "collective": 0.6, "yaw": 0.3,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code: %d", resp.StatusCode)
	}
	status := s.loop.Snapshot()
	if status.Roll != 0.1 || status.Pitch != -0.2 || status.Collective != 0.6 || status.Yaw != 0.3 {
		t.Errorf("commands not applied: %+v", status)
	}
}

func TestServer_Rotor(t *testing.T) {
	s := testServer(t)
	resp := postJSON(t, s, "/api/rotor", map[string]float64{"desired": 0.8})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code: %d", resp.StatusCode)
	}
	if got := s.loop.Mixer().DesiredRotorSpeed(); got != 0.8 {
		t.Errorf("desired rotor speed: got %v, want 0.8", got)
	}
}

func TestServer_Inject(t *testing.T) {
	s := testServer(t)
	resp := postJSON(t, s, "/api/inject/excitation", map[string]bool{"enabled": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code: %d", resp.StatusCode)
	}
	if !s.loop.Mixer().InjectorEnabled(heli.InjectExcitation) {
		t.Error("injector not enabled")
	}

	resp = postJSON(t, s, "/api/inject/bogus", map[string]bool{"enabled": true})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown injector: status %d, want 404", resp.StatusCode)
	}
}

func TestServer_PublishWithoutSubscribersIsNoop(t *testing.T) {
	s := testServer(t)
	// No websocket clients: must return without queueing work.
	s.PublishStatus(s.loop.Snapshot())
	if s.statusHub.ClientCount() != 0 {
		t.Error("unexpected subscriber")
	}
}
