package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/akolanti/DocsBot/internal/adapter"
	"github.com/akolanti/DocsBot/internal/adapter/utils"
	"github.com/akolanti/DocsBot/internal/api"
	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/internal/domain/chatmodel"
	"github.com/akolanti/DocsBot/internal/rag"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

var logRH *logger_i.Logger

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// EventsHandler godoc
// @Summary      Ask a question
// @Description  Accepts a chat message event, answers it against the synced documentation and returns the answer with citations.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.EventRequest    true  "Message text and optional thread ID"
// @Success      200      {object}  api.AnswerResponse  "The answer with outcome and citations"
// @Failure      400      {object}  api.AnswerResponse  "Invalid request data"
// @Failure      504      {object}  api.AnswerResponse  "Answer timed out"
// @Router       /events [post]
func EventsHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.EventRequest
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the Events handler reader :", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Event Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ThreadID, "Bad Request")
		return
	}

	cleaned := rag.CleanQuestion(requestData.Text)
	if cleaned == "" {
		logRH.Warn("Empty question after cleanup", "raw:", requestData.Text)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ThreadID, "Bad Request")
		return
	}

	threadID := requestData.ThreadID
	if threadID == "" {
		threadID = utils.GetNewUUID()
		logRH.Debug(" New thread : ", "threadID:", threadID)
	}

	reply := EnqueueQuestion(chatmodel.Question{
		ThreadID: threadID,
		Text:     cleaned,
		Sender:   requestData.Sender,
		TraceID:  request.Context().Value(config.TRACE_ID_KEY).(string),
	})

	select {
	case answer := <-reply:
		writeJsonResponse(w, http.StatusOK, adapter.ToAnswerResponse(threadID, answer))
	case <-request.Context().Done():
		logRH.Warn("Caller gave up before the answer was ready", "threadId", threadID)
	}
}

// SyncTriggerHandler godoc
// @Summary      Trigger a document sync
// @Description  Kicks off one sync cycle outside the schedule and returns immediately.
// @Tags         Sync
// @Produce      json
// @Success      202  {object}  api.SyncStatusResponse  "Sync accepted"
// @Router       /sync [post]
func SyncTriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	TriggerSync(r.Context().Value(config.TRACE_ID_KEY).(string))

	documentID, state, revision, lastSyncedAt := SyncStatus()
	writeJsonResponse(w, http.StatusAccepted, adapter.ToSyncStatusResponse(documentID, state, revision, lastSyncedAt))
}

// SyncStatusHandler godoc
// @Summary      Get sync status
// @Description  Reports the document's sync state and the revision of the last successful sync.
// @Tags         Sync
// @Produce      json
// @Success      200  {object}  api.SyncStatusResponse  "Current sync state"
// @Router       /sync [get]
func SyncStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	documentID, state, revision, lastSyncedAt := SyncStatus()
	writeJsonResponse(w, http.StatusOK, adapter.ToSyncStatusResponse(documentID, state, revision, lastSyncedAt))
}
