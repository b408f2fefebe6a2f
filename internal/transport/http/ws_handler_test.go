package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mcq-assessment-service/internal/auth"
)

func TestProgressWebSocketAnswerFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1", auth.RoleUser)

	u := "ws" + env.server.URL[len("http"):] + "/api/mcqs/progress/live?access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msgType, payload := readNext(conn, t, "snapshot")
	if payload == nil {
		t.Fatalf("expected snapshot payload, got nil (type %s)", msgType)
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId":     "q1",
			"selectedOption": 1,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	answerSeen := false
	progressSeen := false
	for i := 0; i < 2; i++ {
		typ, p := readNext(conn, t, "")
		switch typ {
		case "answerResult":
			answerSeen = true
			if p["pointsEarned"] != float64(10) {
				t.Fatalf("expected 10 points, got %v", p["pointsEarned"])
			}
		case "progress":
			progressSeen = true
			if p["type"] != "attemptRecorded" {
				t.Fatalf("unexpected progress event %v", p)
			}
		}
	}
	if !answerSeen || !progressSeen {
		t.Fatalf("expected answerResult and progress, got answerResult=%v progress=%v", answerSeen, progressSeen)
	}
}

func TestProgressWebSocketRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	u := "ws" + env.server.URL[len("http"):] + "/api/mcqs/progress/live"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
