package http

import (
	"encoding/json"
	"net/http"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/auth"
	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
	TimeTaken      int    `json:"timeTaken"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeProgressWS streams the caller's progress events. Clients may also submit answers
// over the socket with {"type":"answer"} messages.
func (h *Handler) ServeProgressWS(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	log := config.WithContext(r.Context()).WithField("user_id", userID)

	snapshot, err := h.assessments.Progress(r.Context(), userID, domain.ProgressFilter{})
	if err != nil {
		writeError(w, r, "fetch progress", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.assessments.Hub().Subscribe(userID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "progress", Payload: ev}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// push gives up once the writer has stopped on a failed write.
	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	push(outboundMessage[any]{Type: "snapshot", Payload: snapshot})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			res, err := h.assessments.Submit(r.Context(), userID, app.Submission{
				QuestionID:     payload.QuestionID,
				SelectedOption: payload.SelectedOption,
				TimeTaken:      payload.TimeTaken,
			})
			if err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			push(outboundMessage[any]{Type: "answerResult", Payload: res})
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
