package api

import (
	"net/http"

	"eventportal/internal/schema"
)

type QuestionResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (d Dependencies) getThread(w http.ResponseWriter, r *http.Request) {
	id, ok := d.recordID(w, r)
	if !ok {
		return
	}

	chats, err := d.Chats.Thread(r.Context(), id)
	if err != nil {
		d.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (d Dependencies) postQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := d.recordID(w, r)
	if !ok {
		return
	}

	var q schema.Question
	if err := d.Questions.Decode(r.Body, &q); err != nil {
		d.writeServiceError(w, r, err)
		return
	}

	created, err := d.Chats.Ask(r.Context(), id, q.QuestionText)
	if err != nil {
		d.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, QuestionResponse{
		Message: "Question submitted",
		ID:      created,
	})
}
