package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// startHub runs a hub over an httptest server and returns it with its controls.
func startHub(t *testing.T) (controls.Controls, Remote, *httptest.Server) {
	t.Helper()
	ctrl := controls.NewControls()
	r := NewRemote(ctrl)
	srv := httptest.NewServer(r.Handler())
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return ctrl, r, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readValues reads one frame and decodes it.
func readValues(t *testing.T, conn *websocket.Conn) (int, map[string]any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	values, err := DecodeValues(messageType, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return messageType, values
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSnapshotOnConnect(t *testing.T) {
	_, r, srv := startHub(t)
	conn := dial(t, srv, "")

	messageType, values := readValues(t, conn)
	if messageType != websocket.BinaryMessage {
		t.Errorf("expected a binary frame, got %d", messageType)
	}
	if values[controls.KeyTessellations] != float64(controls.DefaultTessellations) {
		t.Errorf("unexpected tessellations %v", values[controls.KeyTessellations])
	}
	if values[controls.KeyBackground] != true {
		t.Errorf("unexpected background %v", values[controls.KeyBackground])
	}
	if r.Clients() != 1 {
		t.Errorf("expected one client, got %d", r.Clients())
	}
}

func TestJSONUpdateIsBroadcast(t *testing.T) {
	ctrl, _, srv := startHub(t)
	a := dial(t, srv, "")
	b := dial(t, srv, "")
	readValues(t, a)
	readValues(t, b)

	if err := a.WriteMessage(websocket.TextMessage, []byte(`{"tesselations": 3, "colorRGB": [1, 2, 3]}`)); err != nil {
		t.Fatal(err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		_, values := readValues(t, conn)
		if values[controls.KeyTessellations] != float64(3) {
			t.Errorf("expected a broadcast with 3 tessellations, got %v", values)
		}
	}
	if ctrl.ColorRGB() != [3]int{1, 2, 3} {
		t.Errorf("unexpected color %v", ctrl.ColorRGB())
	}
}

func TestBinaryStructUpdate(t *testing.T) {
	ctrl, _, srv := startHub(t)
	conn := dial(t, srv, "")
	readValues(t, conn)

	st, err := structpb.NewStruct(map[string]any{
		controls.KeyDeformation: false,
		controls.KeyLoadScene:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatal(err)
	}

	_, values := readValues(t, conn)
	if values[controls.KeyDeformation] != false {
		t.Errorf("expected deformation off in the broadcast, got %v", values)
	}
	if ctrl.Deformation() {
		t.Error("expected deformation off")
	}
	if !ctrl.TakeLoadScene() {
		t.Error("expected a pending scene load")
	}
}

func TestLocalChangesReachClients(t *testing.T) {
	ctrl, _, srv := startHub(t)
	conn := dial(t, srv, "?format=json")

	messageType, _ := readValues(t, conn)
	if messageType != websocket.TextMessage {
		t.Fatalf("expected a text frame for a json client, got %d", messageType)
	}

	ctrl.SetBackground(false)
	messageType, values := readValues(t, conn)
	if messageType != websocket.TextMessage {
		t.Errorf("expected a text frame, got %d", messageType)
	}
	if values[controls.KeyBackground] != false {
		t.Errorf("expected background off, got %v", values)
	}
}

func TestClientsNeverSeeOlderState(t *testing.T) {
	ctrl, _, srv := startHub(t)
	if err := ctrl.SetColorRGB(0, 0, 0); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 255; i++ {
			if err := ctrl.SetColorRGB(i, 0, 0); err != nil {
				t.Errorf("set color: %v", err)
				return
			}
			if i%32 == 0 {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	conns := make([]*websocket.Conn, 0, 4)
	for i := 0; i < 4; i++ {
		conns = append(conns, dial(t, srv, ""))
		time.Sleep(time.Millisecond)
	}
	<-done

	for i, conn := range conns {
		last := -1
		for last < 255 {
			_, values := readValues(t, conn)
			rgb, ok := values[controls.KeyColorRGB].([]any)
			if !ok || len(rgb) != 3 {
				t.Fatalf("client %d: unexpected color %v", i, values[controls.KeyColorRGB])
			}
			red := int(rgb[0].(float64))
			if red < last {
				t.Fatalf("client %d: red went back from %d to %d", i, last, red)
			}
			last = red
		}
	}
}

func TestRejectedUpdateGetsError(t *testing.T) {
	ctrl, _, srv := startHub(t)
	conn := dial(t, srv, "")
	readValues(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"tesselations": 42}`)); err != nil {
		t.Fatal(err)
	}
	messageType, values := readValues(t, conn)
	if messageType != websocket.TextMessage {
		t.Errorf("expected a text error frame, got %d", messageType)
	}
	if _, ok := values["error"]; !ok {
		t.Errorf("expected an error field, got %v", values)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`not json`)); err != nil {
		t.Fatal(err)
	}
	if _, values := readValues(t, conn); values["error"] == nil {
		t.Errorf("expected an error for malformed json, got %v", values)
	}
	if ctrl.Tessellations() != controls.DefaultTessellations {
		t.Errorf("rejected updates must not change the controls, got %d", ctrl.Tessellations())
	}
}

func TestDisconnectRemovesClient(t *testing.T) {
	_, r, srv := startHub(t)
	conn := dial(t, srv, "")
	readValues(t, conn)

	conn.Close()
	waitFor(t, "the client to be removed", func() bool { return r.Clients() == 0 })
}

func TestPanelPage(t *testing.T) {
	_, _, srv := startHub(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), Path) {
		t.Errorf("unexpected panel response %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDecodeValuesRejectsUnknownFrames(t *testing.T) {
	if _, err := DecodeValues(websocket.PingMessage, nil); err == nil {
		t.Error("expected an error for a ping frame")
	}
}
