package calls

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/purrscribe/backend/internal/models"
)

type fakeEnricher struct{ store *Store }

func (f *fakeEnricher) Transcribe(ctx context.Context, id string) (models.CallRecording, error) {
	return f.store.UpdateByID(id, func(r *models.CallRecording) {
		r.Transcription = "transcript"
		r.Status = models.ReviewStatusPending
	})
}

func (f *fakeEnricher) Summarize(ctx context.Context, id string) (models.CallRecording, error) {
	return f.store.UpdateByID(id, func(r *models.CallRecording) {
		r.Transcription = "transcript"
		r.Summary = "summary"
		if r.Status == "" {
			r.Status = models.ReviewStatusPending
		}
	})
}

type fakeReviewer struct{ store *Store }

func (f *fakeReviewer) Approve(ctx context.Context, id, approver string) (models.CallRecording, error) {
	return f.store.UpdateByID(id, func(r *models.CallRecording) {
		r.Status = models.ReviewStatusApproved
		r.ApprovedBy = approver
	})
}

func (f *fakeReviewer) Reject(ctx context.Context, id string) (models.CallRecording, error) {
	return f.store.UpdateByID(id, func(r *models.CallRecording) {
		r.Status = models.ReviewStatusRejected
		r.ApprovedBy = ""
		r.ApprovedDate = nil
	})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := NewStore(NewMemoryAudioStore(), nil)
	h := NewHandler(store, &fakeEnricher{store}, &fakeReviewer{store}, 1024*1024, nil)

	r := gin.New()
	r.GET("/calls", h.List)
	r.POST("/calls", h.Create)
	r.GET("/calls/:id", h.GetByID)
	r.DELETE("/calls/:id", h.Delete)
	r.POST("/calls/:id/transcribe", h.Transcribe)
	r.POST("/calls/:id/summarize", h.Summarize)
	r.POST("/calls/:id/approve", h.Approve)
	r.POST("/calls/:id/reject", h.Reject)
	r.GET("/calls/:id/audio-url", h.AudioURL)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("bad response body %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func seedRecording(t *testing.T, store *Store, petName string) models.CallRecording {
	t.Helper()
	rec, err := store.Create(context.Background(), models.CallMetadata{PetID: "p1", PetName: petName}, []byte("wav"))
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestListEmpty(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/calls", nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestCreateMultipart(t *testing.T) {
	r, store := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("audio", "call.wav")
	part.Write([]byte("wav-bytes"))
	mw.WriteField("pet_id", "p1")
	mw.WriteField("pet_name", "Max")
	mw.WriteField("owner_name", "Jane Doe")
	mw.WriteField("duration", "42")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/calls", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	var rec models.CallRecording
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.PetName != "Max" || rec.Duration != 42 || rec.AudioURL == "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if store.Len() != 1 {
		t.Fatalf("store holds %d recordings", store.Len())
	}
}

func TestCreateWithoutAudioFails(t *testing.T) {
	r, _ := newTestRouter(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("pet_name", "Max")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/calls", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestGetUnknownRecording(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/calls/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestListByPetQuery(t *testing.T) {
	r, store := newTestRouter(t)
	seedRecording(t, store, "Max")
	store.Create(context.Background(), models.CallMetadata{PetID: "p2", PetName: "Bella"}, nil)

	w, env := doJSON(t, r, http.MethodGet, "/calls?pet_id=p1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var list []models.CallRecording
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].PetName != "Max" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestDeleteThenNotFound(t *testing.T) {
	r, store := newTestRouter(t)
	rec := seedRecording(t, store, "Max")

	w, _ := doJSON(t, r, http.MethodDelete, "/calls/"+rec.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodDelete, "/calls/"+rec.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status %d, want 404", w.Code)
	}
}

func TestTranscribeEndpoint(t *testing.T) {
	r, store := newTestRouter(t)
	rec := seedRecording(t, store, "Max")

	w, env := doJSON(t, r, http.MethodPost, "/calls/"+rec.ID+"/transcribe", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var got models.CallRecording
	json.Unmarshal(env.Data, &got)
	if got.Transcription == "" || got.Status != models.ReviewStatusPending {
		t.Fatalf("unexpected record: %+v", got)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/calls/nope/transcribe", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id status %d, want 404", w.Code)
	}
}

func TestApproveRequiresApprover(t *testing.T) {
	r, store := newTestRouter(t)
	rec := seedRecording(t, store, "Max")

	w, _ := doJSON(t, r, http.MethodPost, "/calls/"+rec.ID+"/approve", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}

	body, _ := json.Marshal(ApproveRequest{ApprovedBy: "dr.smith@clinic.test"})
	w, env := doJSON(t, r, http.MethodPost, "/calls/"+rec.ID+"/approve", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var got models.CallRecording
	json.Unmarshal(env.Data, &got)
	if got.ApprovedBy != "dr.smith@clinic.test" || got.Status != models.ReviewStatusApproved {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestAudioURLWithoutSigner(t *testing.T) {
	r, store := newTestRouter(t)
	rec := seedRecording(t, store, "Max")

	w, env := doJSON(t, r, http.MethodGet, "/calls/"+rec.ID+"/audio-url", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var out map[string]string
	json.Unmarshal(env.Data, &out)
	if out["audio_url"] != rec.AudioURL {
		t.Fatalf("audio url %q, want %q", out["audio_url"], rec.AudioURL)
	}

	noAudio, _ := store.Create(context.Background(), models.CallMetadata{PetName: "Bella"}, nil)
	w, _ = doJSON(t, r, http.MethodGet, "/calls/"+noAudio.ID+"/audio-url", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("no-audio status %d, want 400", w.Code)
	}
}
